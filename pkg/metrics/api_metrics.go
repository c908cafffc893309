// Package metrics provides Prometheus metrics for the recipe API client and the development backend.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for client operations.
const (
	OutcomeSuccess      = "success"
	OutcomeHTTPError    = "http_error"
	OutcomeNetworkError = "network_error"
	OutcomeUnconfigured = "unconfigured"
)

var (
	// clientRequestsTotal records API client operations.
	// Labels:
	//   - operation: login, fetch_recipes, create_recipe, update_recipe, delete_recipe
	//   - outcome: success, http_error, network_error, unconfigured
	clientRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recetas_client_requests_total",
			Help: "Total number of recipe API client operations",
		},
		[]string{"operation", "outcome"},
	)

	// clientRequestDuration records the wall time of operations that reached the network.
	// Buckets top out just above the fixed 10s request timeout.
	clientRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recetas_client_request_duration_seconds",
			Help:    "Duration of recipe API client requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 12},
		},
		[]string{"operation"},
	)

	// serverRequestsTotal records requests handled by the development backend.
	// Labels:
	//   - route: gin route pattern (e.g. "/recipes/:id")
	//   - method: HTTP method
	//   - status: HTTP status code
	serverRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recetas_devserver_requests_total",
			Help: "Total number of requests served by the development backend",
		},
		[]string{"route", "method", "status"},
	)
)

func init() {
	prometheus.MustRegister(clientRequestsTotal)
	prometheus.MustRegister(clientRequestDuration)
	prometheus.MustRegister(serverRequestsTotal)
}

// RecordClientRequest records one API client operation.
func RecordClientRequest(operation, outcome string) {
	clientRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordClientDuration records the duration of one API client request.
func RecordClientDuration(operation string, durationSeconds float64) {
	clientRequestDuration.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordServerRequest records one request served by the development backend.
func RecordServerRequest(route, method, status string) {
	serverRequestsTotal.WithLabelValues(route, method, status).Inc()
}
