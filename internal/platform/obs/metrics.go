package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ocean_query"

// Metrics holds the Prometheus collectors for query resolution.
type Metrics struct {
	Queries         *prometheus.CounterVec // labels: outcome={ok,no_parameter,no_data,store_error,error}
	Fallbacks       *prometheus.CounterVec // labels: kind={year,location}
	ResolveDuration prometheus.Histogram
	IndexSearches   *prometheus.CounterVec // labels: outcome={hit,empty,short,error,load_error}
	CacheLookups    *prometheus.CounterVec // labels: result={hit,miss,error}
}

func newMetrics() *Metrics {
	return &Metrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Resolved queries by outcome.",
		}, []string{"outcome"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Year or location substitutions applied during resolution.",
		}, []string{"kind"}),
		ResolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Duration of a full query resolution.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		IndexSearches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_searches_total",
			Help:      "Vector index searches by outcome.",
		}, []string{"outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Metadata cache lookups by result.",
		}, []string{"result"}),
	}
}

// NewMetrics creates the collectors and registers them with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.Queries, m.Fallbacks, m.ResolveDuration, m.IndexSearches, m.CacheLookups)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can build
// as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
