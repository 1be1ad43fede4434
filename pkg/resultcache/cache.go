// Package resultcache provides an optional read-through cache of
// finished classifications keyed by normalized query, with in-memory
// and Redis backends behind one interface.
package resultcache

import (
	"context"
	"fmt"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
)

// Cache stores finished classifications for identical queries.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached classification for key, if present.
	Get(ctx context.Context, key string) (*hazmat.Classification, bool)
	// Set stores the classification under key.
	Set(ctx context.Context, key string, c *hazmat.Classification)
	// Close releases backend resources.
	Close() error
}

// New builds the configured cache backend. A disabled config yields a
// no-op cache so callers need no nil checks.
func New(cfg config.ResultCacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return noopCache{}, nil
	}
	switch cfg.Backend {
	case "", "memory":
		return newMemoryCache(cfg), nil
	case "redis":
		return newRedisCache(cfg)
	default:
		return nil, fmt.Errorf("unknown result cache backend %q", cfg.Backend)
	}
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*hazmat.Classification, bool) { return nil, false }
func (noopCache) Set(context.Context, string, *hazmat.Classification)       {}
func (noopCache) Close() error                                              { return nil }
