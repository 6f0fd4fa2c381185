package element

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	tests := map[string]struct {
		inventory Inventory
		want      []Ref
	}{
		"single match": {
			inventory: InventoryFunc(func(ctx context.Context, q Query) ([]Ref, error) {
				return []Ref{{AgentID: 1, ElementID: 2, ProtocolName: q.ProtocolName, ProtocolVersion: q.ProtocolVersion}}, nil
			}),
			want: []Ref{{AgentID: 1, ElementID: 2, ProtocolName: "HC", ProtocolVersion: "Production"}},
		},
		"lookup error is absorbed": {
			inventory: InventoryFunc(func(context.Context, Query) ([]Ref, error) {
				return nil, errors.New("connection refused")
			}),
			want: []Ref{},
		},
		"nil result": {
			inventory: InventoryFunc(func(context.Context, Query) ([]Ref, error) {
				return nil, nil
			}),
			want: []Ref{},
		},
		"panic is absorbed": {
			inventory: InventoryFunc(func(context.Context, Query) ([]Ref, error) {
				panic("boom")
			}),
			want: []Ref{},
		},
		"no inventory": {
			inventory: nil,
			want:      []Ref{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewResolver(test.inventory)
			got := r.Resolve(context.Background(), "HC", "Production", false)
			require.NotNil(t, got)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestResolver_PassesQuery(t *testing.T) {
	var seen Query
	r := NewResolver(InventoryFunc(func(_ context.Context, q Query) ([]Ref, error) {
		seen = q
		return nil, nil
	}))

	r.Resolve(context.Background(), "Skyline Health Check Manager", "Production", true)

	assert.Equal(t, Query{
		ProtocolName:    "Skyline Health Check Manager",
		ProtocolVersion: "Production",
		IncludeStopped:  true,
	}, seen)
}

func TestRef_Key(t *testing.T) {
	assert.Equal(t, "12/345", Ref{AgentID: 12, ElementID: 345}.Key())
}
