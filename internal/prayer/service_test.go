package prayer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
	"github.com/i474232898/prayer-times-aggregation/internal/store"
)

type fakeProvider struct {
	name  string
	days  prayer.ProviderResult
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(_ context.Context, _ string) (prayer.ProviderResult, error) {
	f.calls++
	return f.days, f.err
}

var oneDay = prayer.ProviderResult{{
	GregorianDate: "17.10.2026",
	Imsak:         "05:00",
	Sunrise:       "06:30",
	Noon:          "13:00",
	Afternoon:     "16:30",
	Sunset:        "19:45",
	Night:         "21:15",
}}

func failing(name, reason string) *fakeProvider {
	return &fakeProvider{name: name, err: prayer.NewNetworkError(name, reason, nil)}
}

func newProviders() (diyanet, aladhan, emushaf, namazvakti *fakeProvider) {
	return &fakeProvider{name: prayer.DiyanetProvider},
		&fakeProvider{name: prayer.AladhanProvider},
		&fakeProvider{name: prayer.EmushafProvider},
		&fakeProvider{name: prayer.NamazVaktiProvider}
}

func newService(cache prayer.Cache, providers ...*fakeProvider) *prayer.Service {
	list := make([]prayer.Provider, 0, len(providers))
	for _, p := range providers {
		list = append(list, p)
	}
	return prayer.NewService(list, cache, zerolog.Nop())
}

func TestResolveAutoFallsThroughInOrder(t *testing.T) {
	diyanet := failing(prayer.DiyanetProvider, "HTTP 503")
	aladhan := &fakeProvider{name: prayer.AladhanProvider, days: oneDay}
	emushaf := &fakeProvider{name: prayer.EmushafProvider, days: oneDay}
	namazvakti := &fakeProvider{name: prayer.NamazVaktiProvider, days: oneDay}

	svc := newService(nil, diyanet, aladhan, emushaf, namazvakti)

	res, err := svc.Resolve(context.Background(), "9541", prayer.AutoProvider)
	require.NoError(t, err)

	assert.Equal(t, prayer.AladhanProvider, res.Provider)
	assert.False(t, res.Cached)
	assert.Equal(t, oneDay, res.Days)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, prayer.DiyanetProvider, res.Failures[0].Provider)
	assert.Equal(t, "HTTP 503", res.Failures[0].Reason)

	assert.Equal(t, 1, diyanet.calls)
	assert.Equal(t, 1, aladhan.calls)
	assert.Zero(t, emushaf.calls, "providers after the winner must not be called")
	assert.Zero(t, namazvakti.calls)
}

func TestResolveFirstProviderServesWithoutFailures(t *testing.T) {
	diyanet, aladhan, emushaf, namazvakti := newProviders()
	diyanet.days = oneDay

	svc := newService(nil, diyanet, aladhan, emushaf, namazvakti)

	res, err := svc.Resolve(context.Background(), "9541", "")
	require.NoError(t, err)
	assert.Equal(t, prayer.DiyanetProvider, res.Provider)
	assert.Empty(t, res.Failures)
	assert.Zero(t, aladhan.calls)
}

func TestResolveTreatsEmptyResultAsFailure(t *testing.T) {
	diyanet, aladhan, emushaf, namazvakti := newProviders()
	diyanet.days = prayer.ProviderResult{}
	emushaf.days = oneDay

	svc := newService(nil, diyanet, aladhan, emushaf, namazvakti)

	res, err := svc.Resolve(context.Background(), "9541", prayer.AutoProvider)
	require.NoError(t, err)
	assert.Equal(t, prayer.EmushafProvider, res.Provider)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, prayer.DiyanetProvider, res.Failures[0].Provider)
	assert.Equal(t, prayer.AladhanProvider, res.Failures[1].Provider)
}

func TestResolveAllFail(t *testing.T) {
	svc := newService(nil,
		failing(prayer.DiyanetProvider, "timeout"),
		failing(prayer.AladhanProvider, "HTTP 500"),
		&fakeProvider{name: prayer.EmushafProvider, err: prayer.NewMalformedError(prayer.EmushafProvider, "expected a JSON array", nil)},
		failing(prayer.NamazVaktiProvider, "connection refused"),
	)

	_, err := svc.Resolve(context.Background(), "9541", prayer.AutoProvider)
	require.Error(t, err)

	var aggErr *prayer.AggregationError
	require.True(t, errors.As(err, &aggErr))
	assert.Equal(t, prayer.AutoProvider, aggErr.Selector)

	got := make([]string, 0, len(aggErr.Attempts))
	for _, a := range aggErr.Attempts {
		got = append(got, a.Provider)
	}
	assert.Equal(t, prayer.AutoOrder, got)
	assert.Equal(t, "expected a JSON array", aggErr.Reasons()[prayer.EmushafProvider])
	assert.Equal(t,
		"no provider returned data: diyanet: timeout; aladhan: HTTP 500; emushaf: expected a JSON array; namazvakti: connection refused",
		err.Error())
}

func TestResolveExplicitProviderDoesNotFallThrough(t *testing.T) {
	diyanet, aladhan, emushaf, namazvakti := newProviders()
	diyanet.days = oneDay
	emushaf.err = prayer.NewNetworkError(prayer.EmushafProvider, "HTTP 502", nil)

	svc := newService(nil, diyanet, aladhan, emushaf, namazvakti)

	_, err := svc.Resolve(context.Background(), "9541", prayer.EmushafProvider)
	require.Error(t, err)
	assert.Equal(t, "emushaf returned no data: HTTP 502", err.Error())
	assert.Zero(t, diyanet.calls)
	assert.Equal(t, 1, emushaf.calls)

	emushaf.err = nil
	emushaf.days = oneDay
	res, err := svc.Resolve(context.Background(), "9541", prayer.EmushafProvider)
	require.NoError(t, err)
	assert.Equal(t, prayer.EmushafProvider, res.Provider)
	assert.Zero(t, diyanet.calls)
}

func TestResolveUnknownProvider(t *testing.T) {
	svc := newService(nil, newProvidersSlice()...)

	_, err := svc.Resolve(context.Background(), "9541", "bogus")
	require.Error(t, err)

	var aggErr *prayer.AggregationError
	require.True(t, errors.As(err, &aggErr))
	assert.Equal(t, "bogus returned no data: unknown provider", err.Error())
}

func newProvidersSlice() []*fakeProvider {
	d, a, e, n := newProviders()
	return []*fakeProvider{d, a, e, n}
}

func TestResolveUsesCacheBeforeNetwork(t *testing.T) {
	cache := store.NewMemoryCache(0)
	diyanet, aladhan, emushaf, namazvakti := newProviders()
	diyanet.days = oneDay

	svc := newService(cache, diyanet, aladhan, emushaf, namazvakti)
	ctx := context.Background()

	first, err := svc.Resolve(ctx, "9541", prayer.AutoProvider)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Resolve(ctx, "9541", prayer.AutoProvider)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, prayer.AutoProvider, second.Provider)
	assert.Equal(t, oneDay, second.Days)
	assert.Equal(t, 1, diyanet.calls, "a fresh cache entry must skip the providers")

	// Entries are keyed by selector, so an explicit request is a miss.
	_, err = svc.Resolve(ctx, "9541", prayer.DiyanetProvider)
	require.NoError(t, err)
	assert.Equal(t, 2, diyanet.calls)
}

func TestResolveCacheExpiresAfterTTL(t *testing.T) {
	now := time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)
	cache := store.NewMemoryCache(store.DefaultTTL, store.WithClock(func() time.Time { return now }))
	diyanet, aladhan, emushaf, namazvakti := newProviders()
	diyanet.days = oneDay

	svc := newService(cache, diyanet, aladhan, emushaf, namazvakti)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "9541", prayer.AutoProvider)
	require.NoError(t, err)

	now = now.Add(6 * 24 * time.Hour)
	res, err := svc.Resolve(ctx, "9541", prayer.AutoProvider)
	require.NoError(t, err)
	assert.True(t, res.Cached)

	now = now.Add(2 * 24 * time.Hour)
	res, err = svc.Resolve(ctx, "9541", prayer.AutoProvider)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 2, diyanet.calls)
}

func TestRefreshBypassesCache(t *testing.T) {
	cache := store.NewMemoryCache(0)
	diyanet, aladhan, emushaf, namazvakti := newProviders()
	diyanet.days = oneDay

	svc := newService(cache, diyanet, aladhan, emushaf, namazvakti)
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "9541", prayer.AutoProvider)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, "9541", prayer.AutoProvider)
	require.NoError(t, err)
	assert.Equal(t, 2, diyanet.calls)

	data, ok, err := cache.Get(ctx, "9541", prayer.AutoProvider)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, oneDay, data)
}

func TestResolveFailureIsNotCached(t *testing.T) {
	cache := store.NewMemoryCache(0)
	svc := newService(cache, failing(prayer.DiyanetProvider, "HTTP 500"))

	_, err := svc.Resolve(context.Background(), "9541", prayer.DiyanetProvider)
	require.Error(t, err)
	assert.Zero(t, cache.Len())
}

func TestResolveHonoursCancelledContext(t *testing.T) {
	diyanet, aladhan, emushaf, namazvakti := newProviders()
	diyanet.days = oneDay
	svc := newService(nil, diyanet, aladhan, emushaf, namazvakti)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Resolve(ctx, "9541", prayer.AutoProvider)
	require.Error(t, err)
	assert.Zero(t, diyanet.calls)
}

func TestToday(t *testing.T) {
	diyanet, aladhan, emushaf, namazvakti := newProviders()
	diyanet.days = append(prayer.ProviderResult{{
		GregorianDate: "16.10.2026",
		Imsak:         "04:59",
		Sunrise:       "06:29",
		Noon:          "13:01",
		Afternoon:     "16:31",
		Sunset:        "19:47",
		Night:         "21:16",
	}}, oneDay...)

	svc := newService(nil, diyanet, aladhan, emushaf, namazvakti)
	now := time.Date(2026, time.October, 17, 18, 0, 0, 0, time.UTC)

	view, err := svc.Today(context.Background(), "9541", prayer.AutoProvider, now)
	require.NoError(t, err)
	assert.Equal(t, prayer.DiyanetProvider, view.Provider)
	assert.Equal(t, "17.10.2026", view.Day.GregorianDate)
	assert.Equal(t, prayer.Sunset, view.Next.Name)
	assert.Equal(t, "19:45", view.Next.Time)
	assert.Equal(t, "1s 45dk", view.Next.RemainingLabel)
}

func TestTodayPropagatesResolveError(t *testing.T) {
	svc := newService(nil, failing(prayer.DiyanetProvider, "HTTP 500"))

	_, err := svc.Today(context.Background(), "9541", prayer.DiyanetProvider, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diyanet returned no data")
}

func TestTodayMalformedDayIsProviderError(t *testing.T) {
	diyanet := &fakeProvider{name: prayer.DiyanetProvider, days: prayer.ProviderResult{{
		GregorianDate: "17.10.2026",
		Imsak:         "05:00",
		Sunrise:       "06:30",
		Noon:          "bogus",
		Afternoon:     "16:30",
		Sunset:        "19:45",
		Night:         "21:15",
	}}}
	svc := newService(nil, diyanet)

	_, err := svc.Today(context.Background(), "9541", prayer.DiyanetProvider,
		time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, errors.Is(err, prayer.ErrMalformedResponse))

	var perr *prayer.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, prayer.DiyanetProvider, perr.Provider)
	assert.Equal(t, `invalid prayer time: noon: invalid time "bogus"`, perr.Error())
}
