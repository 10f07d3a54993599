package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
)

// SQLiteCache persists cache entries in a local SQLite file.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Stats summarises cache usage. Hits and misses accumulate across processes
// sharing the database file.
type Stats struct {
	Entries int64
	Hits    int64
	Misses  int64
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS cache_entries (
		cache_key TEXT PRIMARY KEY,
		city_code TEXT NOT NULL,
		provider TEXT NOT NULL,
		payload BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cache_counters (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL DEFAULT 0
	)`,
	`INSERT OR IGNORE INTO cache_counters (name, value) VALUES ('hits', 0), ('misses', 0)`,
}

const (
	counterHits   = "hits"
	counterMisses = "misses"
)

// NewSQLiteCache opens (and migrates) the database at path.
func NewSQLiteCache(path string, ttl time.Duration, opts ...Option) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	// One connection serialises writers inside the process; busy_timeout
	// covers other processes sharing the file.
	db.SetMaxOpenConns(1)

	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate cache db: %w", err)
		}
	}

	o := applyOptions(opts)
	return &SQLiteCache{db: db, ttl: ttlOrDefault(ttl), now: o.now}, nil
}

// Get returns the cached result for the pair if it is still fresh.
func (c *SQLiteCache) Get(ctx context.Context, cityCode, providerID string) (prayer.ProviderResult, bool, error) {
	var payload []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM cache_entries WHERE cache_key = ?`,
		prayer.CacheKey(cityCode, providerID),
	).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		c.count(ctx, counterMisses)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if !entry.Valid(c.now(), c.ttl, cityCode, providerID) {
		c.count(ctx, counterMisses)
		return nil, false, nil
	}

	c.count(ctx, counterHits)
	return entry.Data, true, nil
}

// count bumps a usage counter. Counters are informational, so a failed
// update does not fail the lookup.
func (c *SQLiteCache) count(ctx context.Context, name string) {
	_, _ = c.db.ExecContext(ctx, `UPDATE cache_counters SET value = value + 1 WHERE name = ?`, name)
}

// Set stores the result, replacing any earlier entry for the pair.
func (c *SQLiteCache) Set(ctx context.Context, cityCode, providerID string, data prayer.ProviderResult) error {
	entry := newEntry(cityCode, providerID, data, c.now())
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (cache_key, city_code, provider, payload, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		prayer.CacheKey(cityCode, providerID), cityCode, providerID, payload, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Stats returns the entry count and the stored hit/miss counters.
func (c *SQLiteCache) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := c.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM cache_entries),
			COALESCE((SELECT value FROM cache_counters WHERE name = 'hits'), 0),
			COALESCE((SELECT value FROM cache_counters WHERE name = 'misses'), 0)`,
	).Scan(&st.Entries, &st.Hits, &st.Misses)
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return st, nil
}

// Clear removes cache entries. If expiredOnly is true, only expired entries
// are removed; otherwise the hit/miss counters are reset as well.
func (c *SQLiteCache) Clear(ctx context.Context, expiredOnly bool) (int64, error) {
	if expiredOnly {
		cutoff := c.now().UnixMilli() - c.ttl.Milliseconds()
		res, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE created_at <= ?`, cutoff)
		if err != nil {
			return 0, fmt.Errorf("cache clear: %w", err)
		}
		return res.RowsAffected()
	}

	res, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries`)
	if err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, `UPDATE cache_counters SET value = 0`); err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database connection.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
