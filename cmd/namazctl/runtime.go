package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/i474232898/prayer-times-aggregation/internal/config"
	"github.com/i474232898/prayer-times-aggregation/internal/logging"
	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
	"github.com/i474232898/prayer-times-aggregation/internal/prayer/providers"
	"github.com/i474232898/prayer-times-aggregation/internal/store"
)

// runtime is what every network command needs: config, cache and resolver.
type runtime struct {
	cfg      *config.ClientConfig
	cache    *store.SQLiteCache
	service  *prayer.Service
	log      zerolog.Logger
	city     string
	provider string
}

func setup(g *globalFlags) (*runtime, error) {
	cfg, err := config.LoadClient(g.configPath)
	if err != nil {
		return nil, err
	}

	city, err := resolveCity(firstNonEmpty(g.city, cfg.City))
	if err != nil {
		return nil, err
	}
	provider := firstNonEmpty(g.provider, cfg.Provider, prayer.AutoProvider)
	if !prayer.KnownProvider(provider) {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	logger := logging.NewConsole(os.Stderr, g.verbose)

	if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	cache, err := store.NewSQLiteCache(cfg.Cache.Path, cfg.Cache.TTL)
	if err != nil {
		return nil, err
	}

	provs := providers.All(providers.Options{
		Client: &http.Client{Timeout: cfg.Timeout},
		Logger: logger,
	}, cfg.ProviderConfig())

	return &runtime{
		cfg:      cfg,
		cache:    cache,
		service:  prayer.NewService(provs, cache, logger),
		log:      logger,
		city:     city,
		provider: provider,
	}, nil
}

func (r *runtime) Close() {
	_ = r.cache.Close()
}

// resolveCity accepts either a registry code or a province name.
func resolveCity(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("no city given; use --city or set city in the config file")
	}
	if code, ok := prayer.CityCode(v); ok {
		return code, nil
	}
	return v, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
