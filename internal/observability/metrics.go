package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "neo_impact"

// Metrics holds the Prometheus counters and histograms for the service.
type Metrics struct {
	// Upstream catalog metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: provider={neows,ssodnet,sbdb}, outcome={success,error,not_found}
	UpstreamDuration *prometheus.HistogramVec // labels: provider

	// Cache metrics.
	CacheLookups *prometheus.CounterVec // labels: kind={neo,neo_raw,feed,browse,physical,enrichment,impact}, result={hit,miss,error}

	// Result metrics.
	EnrichmentResults *prometheus.CounterVec // labels: source={ssodnet,sbdb,estimate,failed}
	ImpactEstimates   *prometheus.CounterVec // labels: target, outcome={success,invalid,error}
	PublishErrors     prometheus.Counter

	HTTPRequests *prometheus.CounterVec // labels: route, code
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.EnrichmentResults,
		m.ImpactEstimates,
		m.PublishErrors,
		m.HTTPRequests,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream catalog requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream catalog request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"provider"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Read-through cache lookups by kind and result.",
		}, []string{"kind", "result"}),
		EnrichmentResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_results_total",
			Help:      "Resolved enrichments by overall source.",
		}, []string{"source"}),
		ImpactEstimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "impact_estimates_total",
			Help:      "Impact estimates by target and outcome.",
		}, []string{"target", "outcome"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Enrichments that could not be published to Kafka.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
	}
}
