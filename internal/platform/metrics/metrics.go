package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booking_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	registrationOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_registration_operations_total",
		Help: "Registration workflow operations by outcome (ok or error code)",
	}, []string{"operation", "result"})

	clientOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_client_operations_total",
		Help: "Client directory operations by outcome (ok or error code)",
	}, []string{"operation", "result"})

	storeTxDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booking_store_tx_duration_seconds",
		Help:    "Duration of entity store transactions",
		Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"operation"})

	eventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_event_publish_failures_total",
		Help: "Domain events that could not be delivered",
	}, []string{"type"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveRegistration counts a registration workflow outcome.
func ObserveRegistration(operation, result string) {
	registrationOps.WithLabelValues(operation, result).Inc()
}

// ObserveClientOperation counts a client directory outcome.
func ObserveClientOperation(operation, result string) {
	clientOps.WithLabelValues(operation, result).Inc()
}

// ObserveStoreTx records how long a store transaction took, measured from start.
func ObserveStoreTx(operation string, start time.Time) {
	storeTxDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func IncEventPublishFailure(eventType string) {
	eventPublishFailures.WithLabelValues(eventType).Inc()
}

func IncRateLimited() {
	rateLimited.Inc()
}
