// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderCalls counts provider API invocations by operation and outcome.
	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wainbox_provider_calls_total",
			Help: "Provider API calls by operation and result",
		},
		[]string{"operation", "result"},
	)

	ProviderRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wainbox_provider_retries_total",
			Help: "Provider API retries after transient failures",
		},
		[]string{"operation"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wainbox_provider_call_duration_seconds",
			Help:    "Provider API call duration including retries",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	// CacheLookups counts cache reads by table and outcome (hit, miss, stale).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wainbox_cache_lookups_total",
			Help: "TTL cache lookups",
		},
		[]string{"table", "result"},
	)

	ResolveFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wainbox_conversation_resolve_failures_total",
			Help: "Conversations rendered with fallback data after a resolution failure",
		},
		[]string{"stage"},
	)

	HandlerPanics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wainbox_http_handler_panics_total",
			Help: "Handler panics recovered by the HTTP middleware",
		},
		[]string{"route"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wainbox_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "status"},
	)
)

// RecordProviderCall records the outcome of one provider operation.
func RecordProviderCall(operation, result string, seconds float64) {
	ProviderCalls.WithLabelValues(operation, result).Inc()
	ProviderLatency.WithLabelValues(operation).Observe(seconds)
}

// RecordCacheLookup records a cache read outcome.
func RecordCacheLookup(table, result string) {
	CacheLookups.WithLabelValues(table, result).Inc()
}

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, route, status string, seconds float64) {
	RequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

func RecordPanic(route string) {
	HandlerPanics.WithLabelValues(route).Inc()
}
