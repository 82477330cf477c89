package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every stockcheck collector. It is separate from the
// default registry so tests and embedding programs do not collide.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	UpstreamRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "stockcheck_upstream_requests_total",
		Help: "Quote strategy calls by source and outcome.",
	}, []string{"source", "outcome"})

	CacheLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "stockcheck_quote_cache_lookups_total",
		Help: "Quote cache lookups by result (hit, miss, stale).",
	}, []string{"result"})

	ValuationDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "stockcheck_valuation_duration_seconds",
		Help:    "Wall time of a full valuation pass.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
