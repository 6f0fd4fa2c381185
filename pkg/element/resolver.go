// Package element resolves managed elements by protocol identity against an
// external inventory.
package element

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Ref identifies one managed element.
type Ref struct {
	AgentID         int    `json:"dmaId"`
	ElementID       int    `json:"elementId"`
	ProtocolName    string `json:"protocolName"`
	ProtocolVersion string `json:"protocolVersion"`
	Name            string `json:"name,omitempty"`
}

// Key returns the "agent/element" pair used in logs.
func (r Ref) Key() string {
	return fmt.Sprintf("%d/%d", r.AgentID, r.ElementID)
}

// Query selects elements running a given protocol.
type Query struct {
	ProtocolName    string `json:"protocolName"`
	ProtocolVersion string `json:"protocolVersion"`
	IncludeStopped  bool   `json:"includeStopped"`
}

// Inventory is the external element lookup.
type Inventory interface {
	LookupElements(ctx context.Context, q Query) ([]Ref, error)
}

// InventoryFunc adapts a function to Inventory.
type InventoryFunc func(ctx context.Context, q Query) ([]Ref, error)

func (f InventoryFunc) LookupElements(ctx context.Context, q Query) ([]Ref, error) {
	return f(ctx, q)
}

type Resolver struct {
	inventory Inventory
	logger    log.FieldLogger
}

type Option func(*Resolver)

// WithLogger sets the logger used for absorbed lookup failures.
func WithLogger(l log.FieldLogger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

func NewResolver(inv Inventory, opts ...Option) *Resolver {
	r := &Resolver{
		inventory: inv,
		logger:    log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve issues one inventory query. Lookup failures are logged and reported
// as an empty result, the same as no match.
func (r *Resolver) Resolve(ctx context.Context, protocolName, protocolVersion string, includeStopped bool) (refs []Ref) {
	q := Query{
		ProtocolName:    protocolName,
		ProtocolVersion: protocolVersion,
		IncludeStopped:  includeStopped,
	}
	logger := r.logger.WithFields(log.Fields{
		"protocol": protocolName,
		"version":  protocolVersion,
	})

	defer func() {
		if rec := recover(); rec != nil {
			logger.Warnf("element lookup panicked: %v", rec)
			refs = []Ref{}
		}
	}()

	if r.inventory == nil {
		logger.Warn("no element inventory configured")
		return []Ref{}
	}

	found, err := r.inventory.LookupElements(ctx, q)
	if err != nil {
		logger.Warnf("element lookup failed: %v", err)
		return []Ref{}
	}
	if found == nil {
		return []Ref{}
	}
	return found
}
