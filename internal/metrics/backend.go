package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backend API client Prometheus metrics.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trace",
			Name:      "backend_requests_total",
			Help:      "Total number of backend API requests",
		},
		[]string{"method", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trace",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend API request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method"},
	)

	BackendErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trace",
			Name:      "backend_errors_total",
			Help:      "Total backend API errors",
		},
		[]string{"error_type"}, // "auth_required" / "not_configured" / "transport" / "status"
	)
)

var backendMetricsRegistered bool

// RegisterBackendMetrics registers backend client metrics. Must be called once from main.
func RegisterBackendMetrics() {
	if backendMetricsRegistered {
		return
	}
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(BackendErrorsTotal)
	backendMetricsRegistered = true
}
