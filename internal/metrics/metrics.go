package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ProviderFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prayer_provider_fetches_total",
		Help: "Provider adapter invocations by outcome (success, empty, error).",
	}, []string{"provider", "outcome"})

	ProviderFetchSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prayer_provider_fetch_seconds",
		Help:    "Duration of a provider adapter invocation.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30},
	}, []string{"provider"})

	UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prayer_upstream_requests_total",
		Help: "Outbound HTTP requests to upstream services by status class.",
	}, []string{"provider", "status"})

	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prayer_cache_lookups_total",
		Help: "Cache lookups by result (hit, miss, error).",
	}, []string{"result"})

	ResolveFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prayer_resolve_failures_total",
		Help: "Resolve calls where no provider yielded data.",
	}, []string{"selector"})
)

// MustRegister registers all collectors.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		ProviderFetches,
		ProviderFetchSeconds,
		UpstreamRequests,
		CacheLookups,
		ResolveFailures,
	)
}
