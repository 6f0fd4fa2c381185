// Package dms talks to the management system's HTTP API for element lookup
// and partial table reads.
package dms

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/resty.v1"

	"github.com/kekexiaoai/healthdetail/pkg/element"
	"github.com/kekexiaoai/healthdetail/pkg/inspection"
)

const (
	lookupElementsPath = "/api/elements/lookup"
	partialTablePath   = "/api/tables/partial"
)

type Config struct {
	URL         string
	AccessToken string
	Timeout     time.Duration
	Insecure    bool
}

// Client implements both element.Inventory and inspection.TableSource.
type Client struct {
	baseURL     string
	accessToken string
	client      *resty.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	tr := http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.Insecure}}
	cl := http.Client{Transport: &tr, Timeout: timeout}

	return &Client{
		baseURL:     strings.TrimRight(cfg.URL, "/"),
		accessToken: cfg.AccessToken,
		client:      resty.NewWithClient(&cl),
	}
}

func (c *Client) makeRequest(ctx context.Context) *resty.Request {
	req := c.client.R().SetContext(ctx)
	req.SetHeader("Content-Type", "application/json")
	if c.accessToken != "" {
		req.SetHeader("Authorization", "Bearer "+c.accessToken)
	}
	return req
}

// LookupElements implements element.Inventory.
func (c *Client) LookupElements(ctx context.Context, q element.Query) ([]element.Ref, error) {
	resp, err := c.makeRequest(ctx).SetBody(q).Post(c.baseURL + lookupElementsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to look up elements for protocol %s/%s: %w", q.ProtocolName, q.ProtocolVersion, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("failed to look up elements for protocol %s/%s: status code %d %s", q.ProtocolName, q.ProtocolVersion, resp.StatusCode(), resp.String())
	}

	var refs []element.Ref
	if err := json.Unmarshal(resp.Body(), &refs); err != nil {
		return nil, fmt.Errorf("failed to decode element lookup response: %w", err)
	}
	return refs, nil
}

type partialTableResponse struct {
	Value *inspection.ParameterValue `json:"value"`
}

// GetPartialTable implements inspection.TableSource. A 404 means the element
// has no such table and is reported as an empty response.
func (c *Client) GetPartialTable(ctx context.Context, req inspection.TableRequest) (*inspection.ParameterValue, error) {
	resp, err := c.makeRequest(ctx).SetBody(req).Post(c.baseURL + partialTablePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get table %d of element %d/%d: %w", req.ParameterID, req.AgentID, req.ElementID, err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		log.Debugf("table %d of element %d/%d not found", req.ParameterID, req.AgentID, req.ElementID)
		return nil, nil
	default:
		return nil, fmt.Errorf("failed to get table %d of element %d/%d: status code %d %s", req.ParameterID, req.AgentID, req.ElementID, resp.StatusCode(), resp.String())
	}

	var out partialTableResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to decode table response: %w", err)
	}
	return out.Value, nil
}
