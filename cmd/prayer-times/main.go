package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpapi "github.com/i474232898/prayer-times-aggregation/internal/api/http"
	"github.com/i474232898/prayer-times-aggregation/internal/config"
	"github.com/i474232898/prayer-times-aggregation/internal/logging"
	"github.com/i474232898/prayer-times-aggregation/internal/metrics"
	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
	"github.com/i474232898/prayer-times-aggregation/internal/prayer/providers"
	"github.com/i474232898/prayer-times-aggregation/internal/scheduler"
	"github.com/i474232898/prayer-times-aggregation/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.New(cfg.AppEnv)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.MustRegister(registry)

	cache, closeCache, err := newCache(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Cache.Backend).Msg("failed to open cache")
	}
	defer closeCache()

	// Adapters share one HTTP client; each keeps its own circuit breaker.
	provs := providers.All(providers.Options{
		Client:     cfg.HTTPClient(),
		MaxRetries: cfg.Providers.MaxRetries,
		Logger:     logger,
	}, cfg.ProviderConfig())

	service := prayer.NewService(provs, cache, logger)

	warmer := scheduler.New(cfg.WarmCities, cfg.WarmInterval, service, logger)
	if err := warmer.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start cache warmer")
	}
	defer warmer.Stop()

	metricsHandler := adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	app := httpapi.NewApp(service, logger, metricsHandler)

	go func() {
		logger.Info().Str("port", cfg.Port).Str("cache", cfg.Cache.Backend).Msg("listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during shutdown")
	}
}

func newCache(cfg *config.AppConfig, logger zerolog.Logger) (prayer.Cache, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		cache := store.NewRedisCache(client, cfg.Cache.TTL)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cache.Ping(ctx); err != nil {
			// The service still answers from upstream; cache errors are logged per request.
			logger.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("redis unreachable")
		}
		return cache, func() { _ = client.Close() }, nil

	case config.CacheSQLite:
		cache, err := store.NewSQLiteCache(cfg.Cache.SQLitePath, cfg.Cache.TTL)
		if err != nil {
			return nil, nil, err
		}
		return cache, func() { _ = cache.Close() }, nil
	}

	return store.NewMemoryCache(cfg.Cache.TTL), func() {}, nil
}
