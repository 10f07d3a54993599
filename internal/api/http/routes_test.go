package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
	"github.com/i474232898/prayer-times-aggregation/internal/store"
)

type stubProvider struct {
	name string
	days prayer.ProviderResult
	err  error
}

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) Fetch(context.Context, string) (prayer.ProviderResult, error) {
	return s.days, s.err
}

func today() prayer.ProviderResult {
	return prayer.ProviderResult{{
		GregorianDate: prayer.TurkishDate(time.Now()),
		Imsak:         "05:00",
		Sunrise:       "06:30",
		Noon:          "13:00",
		Afternoon:     "16:30",
		Sunset:        "19:45",
		Night:         "21:15",
	}}
}

func down(name string) stubProvider {
	return stubProvider{name: name, err: prayer.NewNetworkError(name, "HTTP 503", nil)}
}

func newTestApp(providers ...prayer.Provider) *fiber.App {
	svc := prayer.NewService(providers, store.NewMemoryCache(0), zerolog.Nop())
	return NewApp(svc, zerolog.Nop(), nil)
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload["error"]
}

// TestPrayerTimesValidation verifies that bad query parameters are rejected
// before any provider is contacted.
func TestPrayerTimesValidation(t *testing.T) {
	app := newTestApp(stubProvider{name: prayer.DiyanetProvider, days: today()})

	resp, body := get(t, app, "/api/v1/prayer-times")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "cityCode is required", errorMessage(t, body))

	resp, body = get(t, app, "/api/v1/prayer-times?cityCode=9541&provider=bogus")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, `unknown provider "bogus"`, errorMessage(t, body))
}

func TestPrayerTimesAutoFallback(t *testing.T) {
	app := newTestApp(
		down(prayer.DiyanetProvider),
		stubProvider{name: prayer.AladhanProvider, days: today()},
	)

	resp, body := get(t, app, "/api/v1/prayer-times?cityCode=9541")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, prayer.AladhanProvider, resp.Header.Get("X-Prayer-Provider"))
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))

	var days []map[string]string
	require.NoError(t, json.Unmarshal(body, &days))
	require.Len(t, days, 1)
	assert.Equal(t, "13:00", days[0]["Ogle"])
	assert.Equal(t, "19:45", days[0]["Aksam"])

	// Same query again is answered from the cache.
	resp, _ = get(t, app, "/api/prayer-times?cityCode=9541&provider=auto")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))
}

func TestPrayerTimesAllProvidersFail(t *testing.T) {
	app := newTestApp(
		down(prayer.DiyanetProvider),
		down(prayer.AladhanProvider),
		down(prayer.EmushafProvider),
		down(prayer.NamazVaktiProvider),
	)

	resp, body := get(t, app, "/api/v1/prayer-times?cityCode=9541")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t,
		"no provider returned data: diyanet: HTTP 503; aladhan: HTTP 503; emushaf: HTTP 503; namazvakti: HTTP 503",
		errorMessage(t, body))
}

func TestPrayerTimesExplicitProviderFailure(t *testing.T) {
	app := newTestApp(
		stubProvider{name: prayer.DiyanetProvider, days: today()},
		down(prayer.EmushafProvider),
	)

	resp, body := get(t, app, "/api/v1/prayer-times?cityCode=9541&provider=emushaf")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "emushaf returned no data: HTTP 503", errorMessage(t, body))
}

func TestToday(t *testing.T) {
	app := newTestApp(stubProvider{name: prayer.DiyanetProvider, days: today()})

	resp, body := get(t, app, "/api/v1/prayer-times/today?cityCode=9541")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view struct {
		Provider string `json:"provider"`
		Day      struct {
			Noon string `json:"Ogle"`
		} `json:"day"`
		Next struct {
			Name      string  `json:"name"`
			Remaining string  `json:"remaining"`
			Progress  float64 `json:"progress"`
		} `json:"next"`
	}
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, prayer.DiyanetProvider, view.Provider)
	assert.Equal(t, "13:00", view.Day.Noon)
	assert.NotEmpty(t, view.Next.Name)
	assert.NotEmpty(t, view.Next.Remaining)
	assert.GreaterOrEqual(t, view.Next.Progress, 0.0)
	assert.LessOrEqual(t, view.Next.Progress, 100.0)
}

func TestTodayMalformedDay(t *testing.T) {
	days := today()
	days[0].Noon = "bogus"
	app := newTestApp(stubProvider{name: prayer.DiyanetProvider, days: days})

	resp, body := get(t, app, "/api/v1/prayer-times/today?cityCode=9541&provider=diyanet")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, `diyanet: invalid prayer time: noon: invalid time "bogus"`, errorMessage(t, body))
}

func TestCatalogEndpoints(t *testing.T) {
	app := newTestApp()

	resp, body := get(t, app, "/api/v1/cities")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cities []prayer.City
	require.NoError(t, json.Unmarshal(body, &cities))
	assert.Len(t, cities, 81)

	resp, body = get(t, app, "/api/v1/providers")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var providers []prayer.ProviderInfo
	require.NoError(t, json.Unmarshal(body, &providers))
	require.Len(t, providers, 5)
	assert.Equal(t, prayer.AutoProvider, providers[0].ID)

	resp, _ = get(t, app, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}
