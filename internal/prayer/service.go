package prayer

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/i474232898/prayer-times-aggregation/internal/metrics"
)

// Service resolves a city's schedule from the registered providers and
// keeps the last good result per (city, selector) in an optional cache.
type Service struct {
	providers map[string]Provider
	cache     Cache
	log       zerolog.Logger
}

// NewService creates a new Service. cache may be nil.
func NewService(providers []Provider, cache Cache, logger zerolog.Logger) *Service {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Service{
		providers: byName,
		cache:     cache,
		log:       logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve returns the schedule for cityCode. With the "auto" selector the
// providers are tried in AutoOrder and the first non-empty result wins; any
// other selector names the single provider to ask. A fresh cache entry for
// the same (city, selector) short-circuits the network entirely.
func (s *Service) Resolve(ctx context.Context, cityCode, selector string) (Resolution, error) {
	if selector == "" {
		selector = AutoProvider
	}

	if data, ok := s.lookup(ctx, cityCode, selector); ok {
		return Resolution{Provider: selector, Cached: true, Days: data}, nil
	}

	return s.Refresh(ctx, cityCode, selector)
}

// Refresh behaves like Resolve but skips the cache read. A successful result
// is written back to the cache.
func (s *Service) Refresh(ctx context.Context, cityCode, selector string) (Resolution, error) {
	if selector == "" {
		selector = AutoProvider
	}

	res, err := s.fetch(ctx, cityCode, selector)
	if err != nil {
		return Resolution{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cityCode, selector, res.Days); err != nil {
			s.log.Warn().Err(err).Str("city", cityCode).Str("selector", selector).Msg("cache write failed")
		}
	}
	return res, nil
}

func (s *Service) fetch(ctx context.Context, cityCode, selector string) (Resolution, error) {
	auto := selector == AutoProvider
	order := []string{selector}
	if auto {
		order = AutoOrder
	}

	s.log.Debug().Str("city", cityCode).Str("selector", selector).Strs("order", order).Msg("resolving prayer times")

	var failures []Attempt
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			failures = append(failures, Attempt{Provider: id, Reason: err.Error()})
			break
		}

		data, err := s.try(ctx, id, cityCode)
		if err == nil {
			if len(failures) > 0 {
				s.log.Info().Str("city", cityCode).Str("provider", id).Int("skipped", len(failures)).Msg("served by fallback provider")
			}
			return Resolution{Provider: id, Days: data, Failures: failures}, nil
		}

		s.log.Warn().Err(err).Str("city", cityCode).Str("provider", id).Msg("provider failed")
		failures = append(failures, Attempt{Provider: id, Reason: err.Error()})
		if !auto {
			break
		}
	}

	metrics.ResolveFailures.WithLabelValues(selector).Inc()
	return Resolution{}, &AggregationError{Selector: selector, Attempts: failures}
}

// try invokes one provider and turns an empty result into an error.
func (s *Service) try(ctx context.Context, id, cityCode string) (ProviderResult, error) {
	p, ok := s.providers[id]
	if !ok {
		return nil, ErrUnknownProvider
	}

	start := time.Now()
	data, err := p.Fetch(ctx, cityCode)
	metrics.ProviderFetchSeconds.WithLabelValues(id).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.ProviderFetches.WithLabelValues(id, "error").Inc()
		return nil, err
	case len(data) == 0:
		metrics.ProviderFetches.WithLabelValues(id, "empty").Inc()
		return nil, NewNoDataError(id, "provider returned an empty result")
	}
	metrics.ProviderFetches.WithLabelValues(id, "success").Inc()
	return data, nil
}

func (s *Service) lookup(ctx context.Context, cityCode, selector string) (ProviderResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, cityCode, selector)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Str("city", cityCode).Str("selector", selector).Msg("cache read failed")
		return nil, false
	case !ok || len(data) == 0:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	s.log.Debug().Str("city", cityCode).Str("selector", selector).Msg("using cached prayer times")
	return data, true
}

// DayView is a resolved schedule narrowed to one day with its countdown.
type DayView struct {
	Provider string         `json:"provider"`
	Cached   bool           `json:"cached"`
	Day      PrayerTime     `json:"day"`
	Next     NextPrayerInfo `json:"next"`
}

// Today resolves the schedule, picks the record for now's date (falling back
// to the first day) and computes the next prayer.
func (s *Service) Today(ctx context.Context, cityCode, selector string, now time.Time) (DayView, error) {
	res, err := s.Resolve(ctx, cityCode, selector)
	if err != nil {
		return DayView{}, err
	}

	day, ok := SelectDayOrFirst(res.Days, now)
	if !ok {
		return DayView{}, NewNoDataError(res.Provider, "no day in result")
	}

	next, err := NextPrayer(day, now)
	if err != nil {
		return DayView{}, NewMalformedError(res.Provider, "invalid prayer time", err)
	}

	return DayView{
		Provider: res.Provider,
		Cached:   res.Cached,
		Day:      day,
		Next:     next,
	}, nil
}
