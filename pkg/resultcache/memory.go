package resultcache

import (
	"context"
	"sync"
	"time"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/metrics"
)

type memoryEntry struct {
	value     hazmat.Classification
	expiresAt time.Time
}

// memoryCache is a bounded in-process cache with TTL expiry and FIFO
// eviction.
type memoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	order      []string
	maxEntries int
	ttl        time.Duration
}

func newMemoryCache(cfg config.ResultCacheConfig) *memoryCache {
	return &memoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: cfg.MaxEntries,
		ttl:        time.Duration(cfg.TTLSeconds) * time.Second,
	}
}

func (c *memoryCache) Get(_ context.Context, key string) (*hazmat.Classification, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		metrics.RecordCacheOperation("memory", "get", "miss")
		return nil, false
	}
	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		// Reap the expired entry so it stops occupying capacity and
		// cannot push live keys out via FIFO eviction.
		c.mu.Lock()
		if cur, still := c.entries[key]; still && time.Now().After(cur.expiresAt) {
			delete(c.entries, key)
			c.dropFromOrder(key)
		}
		c.mu.Unlock()
		metrics.RecordCacheOperation("memory", "get", "miss")
		return nil, false
	}
	metrics.RecordCacheOperation("memory", "get", "hit")
	value := entry.value
	return &value, true
}

// dropFromOrder removes key from the FIFO order. Caller holds mu.
func (c *memoryCache) dropFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *memoryCache) Set(_ context.Context, key string, v *hazmat.Classification) {
	if v == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		if c.maxEntries > 0 && len(c.order) >= c.maxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = memoryEntry{value: *v, expiresAt: time.Now().Add(c.ttl)}
	metrics.RecordCacheOperation("memory", "set", "success")
}

func (c *memoryCache) Close() error { return nil }
