package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
)

// DefaultNamazVaktiMirrors are tried in order. {code} and {name} are replaced
// with the query-escaped city code and city name.
var DefaultNamazVaktiMirrors = []string{
	"https://namaz-vakti-api.herokuapp.com/data?region={code}",
	"https://namaz-vakti-api.vercel.app/api/timings?city={name}",
	"https://namazvakitleri-api.netlify.app/api/timings?city={name}",
}

// NamazVaktiProvider queries a community API that is deployed on several mirrors
// with two different response shapes.
type NamazVaktiProvider struct {
	name     string
	mirrors  []string
	httpCfg  HTTPClientConfig
	circuits []*gobreaker.CircuitBreaker // one per mirror
	now      func() time.Time
	log      zerolog.Logger
}

func NewNamazVaktiProvider(opts Options, mirrors []string) *NamazVaktiProvider {
	if len(mirrors) == 0 {
		mirrors = DefaultNamazVaktiMirrors
	}
	circuits := make([]*gobreaker.CircuitBreaker, len(mirrors))
	for i := range mirrors {
		circuits[i] = newBreaker(fmt.Sprintf("namazvakti-%d", i))
	}
	return &NamazVaktiProvider{
		name:     prayer.NamazVaktiProvider,
		mirrors:  mirrors,
		httpCfg:  opts.httpConfig(),
		circuits: circuits,
		now:      opts.clock(),
		log:      opts.Logger.With().Str("provider", prayer.NamazVaktiProvider).Logger(),
	}
}

func (p *NamazVaktiProvider) Name() string {
	return p.name
}

// namazVaktiPayload covers both shapes: {"times": {...}, "hicri": ...} and
// {"timings": {...}, "date": {"hijri": {"date": ...}}}.
type namazVaktiPayload struct {
	Hicri string `json:"hicri"`
	Times *struct {
		Imsak  string `json:"imsak"`
		Gunes  string `json:"gunes"`
		Ogle   string `json:"ogle"`
		Ikindi string `json:"ikindi"`
		Aksam  string `json:"aksam"`
		Yatsi  string `json:"yatsi"`
	} `json:"times"`
	Timings *struct {
		Imsak   string `json:"Imsak"`
		Sunrise string `json:"Sunrise"`
		Dhuhr   string `json:"Dhuhr"`
		Asr     string `json:"Asr"`
		Maghrib string `json:"Maghrib"`
		Isha    string `json:"Isha"`
	} `json:"timings"`
	Date struct {
		Hijri struct {
			Date string `json:"date"`
		} `json:"hijri"`
	} `json:"date"`
}

func (pl namazVaktiPayload) toPrayerTime(today string) (prayer.PrayerTime, bool) {
	var day prayer.PrayerTime
	switch {
	case pl.Times != nil:
		day = prayer.PrayerTime{
			GregorianDate: today,
			HijriDate:     pl.Hicri,
			Imsak:         pl.Times.Imsak,
			Sunrise:       pl.Times.Gunes,
			Noon:          pl.Times.Ogle,
			Afternoon:     pl.Times.Ikindi,
			Sunset:        pl.Times.Aksam,
			Night:         pl.Times.Yatsi,
		}
	case pl.Timings != nil:
		day = prayer.PrayerTime{
			GregorianDate: today,
			HijriDate:     pl.Date.Hijri.Date,
			Imsak:         pl.Timings.Imsak,
			Sunrise:       pl.Timings.Sunrise,
			Noon:          pl.Timings.Dhuhr,
			Afternoon:     pl.Timings.Asr,
			Sunset:        pl.Timings.Maghrib,
			Night:         pl.Timings.Isha,
		}
	default:
		return prayer.PrayerTime{}, false
	}
	return day.Normalize(), true
}

// Fetch walks the mirrors in order and returns the first recognised answer.
// It fails only once every mirror has failed, reporting the last reason.
func (p *NamazVaktiProvider) Fetch(ctx context.Context, cityCode string) (prayer.ProviderResult, error) {
	today := prayer.TurkishDate(p.now())
	var lastErr error

	for i, tmpl := range p.mirrors {
		u := expandMirror(tmpl, cityCode)
		day, err := p.fetchMirror(ctx, i, u, today)
		if err == nil {
			return prayer.ProviderResult{day}, nil
		}
		p.log.Debug().Err(err).Str("url", u).Msg("mirror failed")
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	if lastErr == nil {
		lastErr = prayer.NewNoDataError(p.name, "no namazvakti mirrors configured")
	}
	return nil, lastErr
}

func (p *NamazVaktiProvider) fetchMirror(ctx context.Context, i int, u, today string) (prayer.PrayerTime, error) {
	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuits[i], func() (*http.Request, error) {
		return newGetRequest(u, "application/json")
	})
	if err != nil {
		return prayer.PrayerTime{}, prayer.NewNetworkError(p.name, "namazvakti mirror "+hostOf(u)+" failed", err)
	}

	body, err := readBody(resp)
	if err != nil {
		return prayer.PrayerTime{}, prayer.NewNetworkError(p.name, "namazvakti read failed", err)
	}

	var payload namazVaktiPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return prayer.PrayerTime{}, prayer.NewMalformedError(p.name, "namazvakti returned invalid JSON", err)
	}

	day, ok := payload.toPrayerTime(today)
	if !ok {
		return prayer.PrayerTime{}, prayer.NewMalformedError(p.name, "namazvakti response has neither times nor timings", nil)
	}
	if err := day.Validate(); err != nil {
		return prayer.PrayerTime{}, prayer.NewMalformedError(p.name, "namazvakti returned incomplete times", err)
	}
	return day, nil
}

func expandMirror(tmpl, cityCode string) string {
	r := strings.NewReplacer(
		"{code}", url.QueryEscape(cityCode),
		"{name}", url.QueryEscape(prayer.CityName(cityCode)),
	)
	return r.Replace(tmpl)
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
