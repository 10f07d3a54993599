package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
)

// AladhanConfig tunes the multi-day Aladhan adapter.
type AladhanConfig struct {
	BaseURL string
	// Days is the number of consecutive days requested, starting today.
	Days int
	// Method is the Aladhan calculation method; 13 is Diyanet.
	Method int
	// RPS paces the sequential day requests; <= 0 disables pacing.
	RPS float64
}

// AladhanProvider issues one timingsByCity request per day.
type AladhanProvider struct {
	name    string
	cfg     AladhanConfig
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	now     func() time.Time
	log     zerolog.Logger
}

func NewAladhanProvider(opts Options, cfg AladhanConfig) *AladhanProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.aladhan.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Days <= 0 {
		cfg.Days = 7
	}
	if cfg.Method <= 0 {
		cfg.Method = 13
	}

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}

	return &AladhanProvider{
		name:    prayer.AladhanProvider,
		cfg:     cfg,
		httpCfg: opts.httpConfig(),
		circuit: newBreaker("aladhan"),
		limiter: rate.NewLimiter(limit, 1),
		now:     opts.clock(),
		log:     opts.Logger.With().Str("provider", prayer.AladhanProvider).Logger(),
	}
}

func (p *AladhanProvider) Name() string {
	return p.name
}

type aladhanResponse struct {
	Code int `json:"code"`
	Data *struct {
		Timings *struct {
			Imsak   string `json:"Imsak"`
			Sunrise string `json:"Sunrise"`
			Dhuhr   string `json:"Dhuhr"`
			Asr     string `json:"Asr"`
			Maghrib string `json:"Maghrib"`
			Isha    string `json:"Isha"`
		} `json:"timings"`
		Date struct {
			Gregorian struct {
				Date string `json:"date"` // DD-MM-YYYY
			} `json:"gregorian"`
			Hijri struct {
				Day   string `json:"day"`
				Month struct {
					En string `json:"en"`
				} `json:"month"`
				Year string `json:"year"`
			} `json:"hijri"`
		} `json:"date"`
	} `json:"data"`
}

// Fetch requests each day in turn. Failed days are skipped; the call fails
// only when no day succeeded.
func (p *AladhanProvider) Fetch(ctx context.Context, cityCode string) (prayer.ProviderResult, error) {
	city := prayer.CityName(cityCode)
	start := p.now()

	result := make(prayer.ProviderResult, 0, p.cfg.Days)
	var lastErr error

	for i := 0; i < p.cfg.Days; i++ {
		if err := p.limiter.Wait(ctx); err != nil {
			lastErr = err
			break
		}

		date := start.AddDate(0, 0, i)
		day, err := p.fetchDay(ctx, city, date)
		if err != nil {
			p.log.Debug().Err(err).Str("date", date.Format("2006-01-02")).Msg("skipping day")
			lastErr = err
			continue
		}
		result = append(result, day)
	}

	if len(result) == 0 {
		return nil, &prayer.ProviderError{
			Provider: p.name,
			Kind:     prayer.ErrNoUsableData,
			Reason:   "aladhan returned no days",
			Err:      lastErr,
		}
	}
	return result, nil
}

func (p *AladhanProvider) fetchDay(ctx context.Context, city string, date time.Time) (prayer.PrayerTime, error) {
	values := url.Values{}
	values.Set("city", city)
	values.Set("country", "Turkey")
	values.Set("method", strconv.Itoa(p.cfg.Method))

	dateParam := fmt.Sprintf("%d-%d-%d", date.Day(), int(date.Month()), date.Year())
	u := fmt.Sprintf("%s/v1/timingsByCity/%s?%s", p.cfg.BaseURL, dateParam, values.Encode())

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, func() (*http.Request, error) {
		return newGetRequest(u, "application/json")
	})
	if err != nil {
		return prayer.PrayerTime{}, prayer.NewNetworkError(p.name, "aladhan request failed", err)
	}

	body, err := readBody(resp)
	if err != nil {
		return prayer.PrayerTime{}, prayer.NewNetworkError(p.name, "aladhan read failed", err)
	}

	var payload aladhanResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return prayer.PrayerTime{}, prayer.NewMalformedError(p.name, "aladhan returned invalid JSON", err)
	}
	if payload.Data == nil || payload.Data.Timings == nil {
		return prayer.PrayerTime{}, prayer.NewMalformedError(p.name, "aladhan response has no timings", nil)
	}

	t := payload.Data.Timings
	d := payload.Data.Date

	gregorian := prayer.TurkishDate(date)
	if d.Gregorian.Date != "" {
		gregorian = strings.ReplaceAll(d.Gregorian.Date, "-", ".")
	}

	var hijri string
	if d.Hijri.Day != "" {
		hijri = strings.TrimSpace(d.Hijri.Day + " " + d.Hijri.Month.En + " " + d.Hijri.Year)
	}

	day := prayer.PrayerTime{
		GregorianDate: gregorian,
		HijriDate:     hijri,
		Imsak:         t.Imsak,
		Sunrise:       t.Sunrise,
		Noon:          t.Dhuhr,
		Afternoon:     t.Asr,
		Sunset:        t.Maghrib,
		Night:         t.Isha,
	}.Normalize()

	if err := day.Validate(); err != nil {
		return prayer.PrayerTime{}, prayer.NewMalformedError(p.name, "aladhan returned incomplete timings", err)
	}
	return day, nil
}
