// Package metrics holds the Prometheus collectors of the storefront client.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Requests sent to the storefront API by final outcome.",
		},
		[]string{"method", "status"},
	)

	apiRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "api",
			Name:      "retries_total",
			Help:      "Retried attempts after network errors or timeouts.",
		},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of storefront API calls including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"method"},
	)

	cacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Query cache events (hit, miss, dedup, invalidate, refetch, discard).",
		},
		[]string{"event"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests served to the UI.",
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	Registry.MustRegister(apiRequests, apiRetries, apiDuration, cacheEvents, httpRequests)
}

// RecordAPIRequest records the final outcome of one executor call.
// status 0 means the request never got a response.
func RecordAPIRequest(method string, status int, elapsed time.Duration) {
	apiRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	apiDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func RecordAPIRetry() {
	apiRetries.Inc()
}

func RecordCacheEvent(event string) {
	cacheEvents.WithLabelValues(event).Inc()
}

func RecordHTTPRequest(method, route string, status int) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
