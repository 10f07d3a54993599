package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
)

// RedisCache stores JSON cache entries in Redis under prayer.CacheKey.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client, ttl time.Duration, opts ...Option) *RedisCache {
	o := applyOptions(opts)
	return &RedisCache{client: client, ttl: ttlOrDefault(ttl), now: o.now}
}

// Get returns the entry if present and still valid. Redis expiry normally
// removes stale keys first; the timestamp check covers clock skew and
// entries written with a longer TTL.
func (c *RedisCache) Get(ctx context.Context, cityCode, providerID string) (prayer.ProviderResult, bool, error) {
	raw, err := c.client.Get(ctx, prayer.CacheKey(cityCode, providerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if !entry.Valid(c.now(), c.ttl, cityCode, providerID) {
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set writes the entry with the cache TTL as Redis expiry.
func (c *RedisCache) Set(ctx context.Context, cityCode, providerID string, data prayer.ProviderResult) error {
	payload, err := json.Marshal(newEntry(cityCode, providerID, data, c.now()))
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.client.Set(ctx, prayer.CacheKey(cityCode, providerID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
