package store

import (
	"time"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
)

// DefaultTTL is how long a cached schedule is reused.
const DefaultTTL = 7 * 24 * time.Hour

// CacheEntry is the stored form of a provider result.
type CacheEntry struct {
	Data      prayer.ProviderResult `json:"data"`
	Timestamp int64                 `json:"timestamp"` // epoch millis
	CityCode  string                `json:"cityCode"`
	Provider  string                `json:"provider"`
}

func newEntry(cityCode, providerID string, data prayer.ProviderResult, now time.Time) CacheEntry {
	return CacheEntry{
		Data:      data,
		Timestamp: now.UnixMilli(),
		CityCode:  cityCode,
		Provider:  providerID,
	}
}

// Valid reports whether the entry may answer a query for (cityCode, providerID) at now.
func (e CacheEntry) Valid(now time.Time, ttl time.Duration, cityCode, providerID string) bool {
	if e.CityCode != cityCode || e.Provider != providerID || len(e.Data) == 0 {
		return false
	}
	return now.UnixMilli()-e.Timestamp < ttl.Milliseconds()
}

// Option configures a cache backend.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used for timestamps and expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
