package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
)

// EmushafProvider reads the multi-day vakitler endpoint of ezanvakti.emushaf.net.
type EmushafProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

func NewEmushafProvider(opts Options, baseURL string) *EmushafProvider {
	if baseURL == "" {
		baseURL = "https://ezanvakti.emushaf.net"
	}
	return &EmushafProvider{
		name:    prayer.EmushafProvider,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: opts.httpConfig(),
		circuit: newBreaker("emushaf"),
		log:     opts.Logger.With().Str("provider", prayer.EmushafProvider).Logger(),
	}
}

func (p *EmushafProvider) Name() string {
	return p.name
}

type emushafDay struct {
	MiladiTarihKisa string `json:"MiladiTarihKisa"`
	MiladiTarihUzun string `json:"MiladiTarihUzun"`
	HicriTarihKisa  string `json:"HicriTarihKisa"`
	HicriTarihUzun  string `json:"HicriTarihUzun"`
	Imsak           string `json:"Imsak"`
	Gunes           string `json:"Gunes"`
	Ogle            string `json:"Ogle"`
	Ikindi          string `json:"Ikindi"`
	Aksam           string `json:"Aksam"`
	Yatsi           string `json:"Yatsi"`
}

func (d emushafDay) toPrayerTime() prayer.PrayerTime {
	date := d.MiladiTarihKisa
	if date == "" {
		date = d.MiladiTarihUzun
	}
	hijri := d.HicriTarihUzun
	if hijri == "" {
		hijri = d.HicriTarihKisa
	}
	return prayer.PrayerTime{
		GregorianDate: date,
		HijriDate:     hijri,
		Imsak:         d.Imsak,
		Sunrise:       d.Gunes,
		Noon:          d.Ogle,
		Afternoon:     d.Ikindi,
		Sunset:        d.Aksam,
		Night:         d.Yatsi,
	}.Normalize()
}

// Fetch returns every day the endpoint lists; picking today is left to the caller.
func (p *EmushafProvider) Fetch(ctx context.Context, cityCode string) (prayer.ProviderResult, error) {
	u := p.baseURL + "/vakitler/" + url.PathEscape(cityCode)
	p.log.Debug().Str("url", u).Msg("fetching schedule")

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, func() (*http.Request, error) {
		return newGetRequest(u, "application/json")
	})
	if err != nil {
		return nil, prayer.NewNetworkError(p.name, "emushaf request failed", err)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, prayer.NewNetworkError(p.name, "emushaf read failed", err)
	}

	var payload []emushafDay
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, prayer.NewMalformedError(p.name, "emushaf did not return a JSON array", err)
	}
	if len(payload) == 0 {
		return nil, prayer.NewMalformedError(p.name, "emushaf returned an empty array", nil)
	}

	result := make(prayer.ProviderResult, 0, len(payload))
	for i, d := range payload {
		day := d.toPrayerTime()
		if err := day.Validate(); err != nil {
			p.log.Debug().Err(err).Int("index", i).Msg("dropping invalid day")
			continue
		}
		result = append(result, day)
	}
	if len(result) == 0 {
		return nil, prayer.NewMalformedError(p.name, "emushaf returned no valid days", nil)
	}
	return result, nil
}
