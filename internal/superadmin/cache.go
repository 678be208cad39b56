package superadmin

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss signals that no cached snapshot is available.
var ErrCacheMiss = errors.New("superadmin: cache miss")

// Cache stores one metrics snapshot with an expiry.
type Cache interface {
	Get(ctx context.Context) (Metrics, error)
	Set(ctx context.Context, m Metrics, ttl time.Duration) error
}

const cacheKey = "scanid:superadmin:dashboard_metrics"

// RedisCache keeps the snapshot as a JSON value under a single key.
type RedisCache struct {
	client *redis.Client
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context) (Metrics, error) {
	raw, err := c.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Metrics{}, ErrCacheMiss
	}
	if err != nil {
		return Metrics{}, err
	}
	var m Metrics
	if err := json.Unmarshal(raw, &m); err != nil {
		return Metrics{}, err
	}
	return m, nil
}

func (c *RedisCache) Set(ctx context.Context, m Metrics, ttl time.Duration) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey, raw, ttl).Err()
}
