package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// Client represents a Prometheus query client.
type Client struct {
	api     v1.API
	timeout time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithTimeout bounds every call made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a new Prometheus query client.
func NewClient(addr string, opts ...Option) (*Client, error) {
	client, err := api.NewClient(api.Config{
		Address: addr,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		api: v1.NewAPI(client),
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Query performs an instant query and returns the result.
func (c *Client) Query(ctx context.Context, query string, ts time.Time) (model.Value, v1.Warnings, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.api.Query(ctx, query, ts)
}

// Targets returns the active and dropped scrape targets.
func (c *Client) Targets(ctx context.Context) (v1.TargetsResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.api.Targets(ctx)
}
