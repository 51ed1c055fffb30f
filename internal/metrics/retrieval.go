package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	DocumentLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexrag",
			Name:      "document_loads_total",
			Help:      "Total number of document collection loads",
		},
		[]string{"status"}, // "ok" / "error"
	)

	DocumentLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lexrag",
			Name:      "document_load_duration_seconds",
			Help:      "Document collection load duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	DocumentsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lexrag",
			Name:      "documents_active",
			Help:      "Number of documents in the active collection",
		},
	)

	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexrag",
			Name:      "queries_total",
			Help:      "Total number of knowledge base queries",
		},
		[]string{"outcome"}, // "answered" / "fallback"
	)

	QuerySources = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lexrag",
			Name:      "query_sources",
			Help:      "Number of sources cited per query",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers Prometheus retrieval metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(DocumentLoadsTotal)
	prometheus.MustRegister(DocumentLoadDuration)
	prometheus.MustRegister(DocumentsActive)
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(QuerySources)
	retrievalMetricsRegistered = true
}
