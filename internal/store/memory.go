package store

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
)

// MemoryCache is a concurrency-safe in-memory implementation of prayer.Cache.
type MemoryCache struct {
	mu sync.RWMutex

	// key: prayer.CacheKey(city, provider)
	data map[string]CacheEntry

	ttl time.Duration
	now func() time.Time
}

// NewMemoryCache creates a MemoryCache. A ttl <= 0 selects DefaultTTL.
func NewMemoryCache(ttl time.Duration, opts ...Option) *MemoryCache {
	o := applyOptions(opts)
	return &MemoryCache{
		data: make(map[string]CacheEntry),
		ttl:  ttlOrDefault(ttl),
		now:  o.now,
	}
}

// Get returns the cached result if it is still fresh.
func (c *MemoryCache) Get(_ context.Context, cityCode, providerID string) (prayer.ProviderResult, bool, error) {
	key := prayer.CacheKey(cityCode, providerID)

	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()

	if !ok || !entry.Valid(c.now(), c.ttl, cityCode, providerID) {
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set stores data for the pair, replacing any earlier entry, and drops expired ones.
func (c *MemoryCache) Set(_ context.Context, cityCode, providerID string, data prayer.ProviderResult) error {
	now := c.now()
	key := prayer.CacheKey(cityCode, providerID)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = newEntry(cityCode, providerID, data, now)

	// Enforce retention by age.
	for k, e := range c.data {
		if now.UnixMilli()-e.Timestamp >= c.ttl.Milliseconds() {
			delete(c.data, k)
		}
	}
	return nil
}

// Len returns the number of stored entries, fresh or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
