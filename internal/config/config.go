package config

import (
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer/providers"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheSQLite = "sqlite"
)

// AppConfig is the server configuration. Every field is read from the
// environment variable named in its tag, without a prefix.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   string `envconfig:"PORT" default:"8080"`

	// HTTPTimeout bounds every outbound request; 0 disables the limit.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"20s"`

	// Cities refreshed in the background so first requests hit the cache.
	WarmCities   []string      `envconfig:"WARM_CITIES"`
	WarmInterval time.Duration `envconfig:"WARM_INTERVAL" default:"6h"`

	// Processed separately in Load so their keys carry no CACHE_/PROVIDERS_ prefix.
	Cache     CacheConfig      `ignored:"true"`
	Providers ProviderSettings `ignored:"true"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string        `envconfig:"CACHE_BACKEND" default:"memory"`
	TTL           time.Duration `envconfig:"CACHE_TTL" default:"168h"`
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SQLitePath    string        `envconfig:"SQLITE_PATH" default:"prayer-times.db"`
}

// ProviderSettings holds upstream endpoints and tuning.
type ProviderSettings struct {
	MaxRetries        int      `envconfig:"PROVIDER_MAX_RETRIES" default:"0"`
	DiyanetBaseURL    string   `envconfig:"DIYANET_BASE_URL"`
	EmushafBaseURL    string   `envconfig:"EMUSHAF_BASE_URL"`
	NamazVaktiMirrors []string `envconfig:"NAMAZVAKTI_MIRRORS"`
	AladhanBaseURL    string   `envconfig:"ALADHAN_BASE_URL"`
	AladhanDays       int      `envconfig:"ALADHAN_DAYS" default:"7"`
	AladhanMethod     int      `envconfig:"ALADHAN_METHOD" default:"13"`
	AladhanRPS        float64  `envconfig:"ALADHAN_RPS" default:"4"`
}

// Load reads a .env file when present and then the environment.
func Load() (*AppConfig, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	for _, target := range []interface{}{cfg, &cfg.Cache, &cfg.Providers} {
		if err := envconfig.Process("", target); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis, CacheSQLite:
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q: want memory, redis or sqlite", c.Cache.Backend)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("invalid HTTP_TIMEOUT: must not be negative")
	}
	if c.Providers.MaxRetries < 0 {
		return fmt.Errorf("invalid PROVIDER_MAX_RETRIES: must not be negative")
	}
	return nil
}

// HTTPClient returns the shared client for outbound provider calls.
func (c *AppConfig) HTTPClient() *http.Client {
	return &http.Client{Timeout: c.HTTPTimeout}
}

// ProviderConfig maps the environment onto adapter settings.
func (c *AppConfig) ProviderConfig() providers.Config {
	return providers.Config{
		DiyanetBaseURL:    c.Providers.DiyanetBaseURL,
		EmushafBaseURL:    c.Providers.EmushafBaseURL,
		NamazVaktiMirrors: c.Providers.NamazVaktiMirrors,
		Aladhan: providers.AladhanConfig{
			BaseURL: c.Providers.AladhanBaseURL,
			Days:    c.Providers.AladhanDays,
			Method:  c.Providers.AladhanMethod,
			RPS:     c.Providers.AladhanRPS,
		},
	}
}
