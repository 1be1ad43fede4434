package resultcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/metrics"
)

const redisKeyPrefix = "hazmat:classification:"

// redisCache shares classification results across processes. Backend
// failures degrade to misses; the cache never fails a classification.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newRedisCache(cfg config.ResultCacheConfig) (*redisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return &redisCache{
		client: client,
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
	}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) (*hazmat.Classification, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		metrics.RecordCacheOperation("redis", "get", "miss")
		return nil, false
	}
	if err != nil {
		logging.Warnf("Result cache read failed: %v", err)
		metrics.RecordCacheOperation("redis", "get", "error")
		return nil, false
	}
	var out hazmat.Classification
	if err := json.Unmarshal(data, &out); err != nil {
		logging.Warnf("Result cache entry corrupt for %q: %v", key, err)
		metrics.RecordCacheOperation("redis", "get", "error")
		return nil, false
	}
	metrics.RecordCacheOperation("redis", "get", "hit")
	return &out, true
}

func (c *redisCache) Set(ctx context.Context, key string, v *hazmat.Classification) {
	if v == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		metrics.RecordCacheOperation("redis", "set", "error")
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		logging.Warnf("Result cache write failed: %v", err)
		metrics.RecordCacheOperation("redis", "set", "error")
		return
	}
	metrics.RecordCacheOperation("redis", "set", "success")
}

func (c *redisCache) Close() error { return c.client.Close() }
