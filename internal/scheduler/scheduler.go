package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
)

// Refresher is the part of prayer.Service the warmer needs.
type Refresher interface {
	Refresh(ctx context.Context, cityCode, selector string) (prayer.Resolution, error)
}

// Scheduler periodically refreshes cached prayer times for configured cities.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	cities    []string
	interval  time.Duration
	log       zerolog.Logger
}

// New creates a new Scheduler.
func New(cities []string, interval time.Duration, service Refresher, logger zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.Local)
	return &Scheduler{
		scheduler: s,
		service:   service,
		cities:    cities,
		interval:  interval,
		log:       logger.With().Str("component", "warmer").Logger(),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		s.log.Info().Msg("no cities configured; nothing to warm")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every configured city in turn with the auto selector and
// returns how many succeeded.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	s.log.Info().Int("cities", len(s.cities)).Msg("warming prayer time cache")

	ok := 0
	for _, city := range s.cities {
		if ctx.Err() != nil {
			break
		}
		res, err := s.service.Refresh(ctx, city, prayer.AutoProvider)
		if err != nil {
			s.log.Warn().Err(err).Str("city", city).Msg("warm failed")
			continue
		}
		ok++
		s.log.Debug().Str("city", city).Str("provider", res.Provider).Int("days", len(res.Days)).Msg("warmed")
	}

	s.log.Info().Int("ok", ok).Int("total", len(s.cities)).Msg("cache warm completed")
	return ok
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
