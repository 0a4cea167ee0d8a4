package metrics

import "github.com/prometheus/client_golang/prometheus"

// Per-domain retrieval Prometheus metrics.
var (
	RetrievalSearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guestsearch",
			Name:      "retrieval_searches_total",
			Help:      "Total number of domain similarity searches",
		},
		[]string{"domain", "status"}, // status: "success" / "error" / "skipped"
	)

	RetrievalSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "guestsearch",
			Name:      "retrieval_search_duration_seconds",
			Help:      "Domain similarity search duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"domain"},
	)

	RetrievalResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guestsearch",
			Name:      "retrieval_results_total",
			Help:      "Total results returned per domain",
		},
		[]string{"domain"},
	)

	RetrievalDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guestsearch",
			Name:      "retrieval_degraded_total",
			Help:      "Domain searches downgraded to an empty result after a storage error",
		},
		[]string{"domain"},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers Prometheus retrieval metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalSearchesTotal)
	prometheus.MustRegister(RetrievalSearchDuration)
	prometheus.MustRegister(RetrievalResultsTotal)
	prometheus.MustRegister(RetrievalDegradedTotal)
	retrievalMetricsRegistered = true
}
