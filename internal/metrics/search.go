package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and service-token Prometheus metrics.
var (
	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trace",
			Name:      "search_queries_total",
			Help:      "Total number of search queries",
		},
		[]string{"scope", "order"},
	)

	SearchMatches = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trace",
			Name:      "search_matches",
			Help:      "Number of records matched per query",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		},
		[]string{"scope"},
	)

	CatalogRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trace",
			Name:      "catalog_records",
			Help:      "Records in the loaded search index, synthesized ones included",
		},
	)

	ServiceTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trace",
			Name:      "service_tokens_total",
			Help:      "Service token issuance attempts by outcome",
		},
		[]string{"result"}, // "issued" / "anonymous" / "disabled" / "error"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search and token metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchQueriesTotal)
	prometheus.MustRegister(SearchMatches)
	prometheus.MustRegister(CatalogRecords)
	prometheus.MustRegister(ServiceTokensTotal)
	searchMetricsRegistered = true
}
