package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ── HTTP request metrics (RED method) ──────────────────────────────────

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "traffic_dashboard",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status_code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "traffic_dashboard",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "traffic_dashboard",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being processed.",
	})
)

// ── Lookup metrics ─────────────────────────────────────────────────────

var (
	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "traffic_dashboard",
		Subsystem: "lookup",
		Name:      "total",
		Help:      "Total number of traffic lookups per mode and outcome.",
	}, []string{"mode", "outcome"})

	LookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "traffic_dashboard",
		Subsystem: "lookup",
		Name:      "duration_seconds",
		Help:      "Duration of a traffic lookup per mode in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"mode"})
)

// ── Upstream provider metrics ──────────────────────────────────────────

var (
	UpstreamResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "traffic_dashboard",
		Subsystem: "upstream",
		Name:      "responses_total",
		Help:      "Upstream provider responses by status class.",
	}, []string{"status_class"})

	UpstreamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "traffic_dashboard",
		Subsystem: "upstream",
		Name:      "duration_seconds",
		Help:      "Upstream provider round-trip time in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	NormalizeFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "traffic_dashboard",
		Subsystem: "upstream",
		Name:      "normalize_fallback_total",
		Help:      "Canonical fields that fell back to their zero value during normalization.",
	}, []string{"field"})
)

// ── Recent lookup history ──────────────────────────────────────────────

var (
	HistoryErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "traffic_dashboard",
		Subsystem: "history",
		Name:      "errors_total",
		Help:      "Recent-lookup history operations that failed.",
	}, []string{"op"})
)

// StatusClass buckets an HTTP status code into "2xx", "4xx", etc.
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "other"
	}
}
