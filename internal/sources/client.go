// Package sources contains the external platform collectors. Each client is
// a thin, stateless adapter over a third-party API that returns tagged
// RawData; all policy (retries, quotas, persistence) lives with the caller.
package sources

import (
	"context"
	"fmt"

	"github.com/jonathan/trendcast/internal/types"
)

// Client collects raw data from one external platform. Parameters are the
// configuration's opaque source-specific map, passed through unmodified.
type Client interface {
	SourceType() types.SourceType
	Collect(ctx context.Context, params map[string]any) (*types.RawData, error)
}

// Registry maps source types to their collectors.
type Registry struct {
	clients map[types.SourceType]Client
}

// NewRegistry builds a registry from the given clients.
func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: make(map[types.SourceType]Client)}
	for _, c := range clients {
		r.clients[c.SourceType()] = c
	}
	return r
}

// For returns the client for a source type.
func (r *Registry) For(st types.SourceType) (Client, error) {
	c, ok := r.clients[st]
	if !ok {
		return nil, fmt.Errorf("no collector registered for source type %q", st)
	}
	return c, nil
}
