// Package metrics provides Prometheus metrics collection for the document API.
// It exports HTTP server metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// plus corpus pipeline metrics:
//   - documents_parsed_total: Counter with document type label
//   - document_parse_failures_total: Counter for skipped documents
//   - classifications_computed_total: Counter with condition label
//
// All metrics are automatically registered with the Prometheus default registry
// during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Number of live rate limiter buckets (idle buckets are swept every 30 minutes)",
		},
	)

	DocumentsParsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_parsed_total",
			Help: "Documents parsed into the corpus, by document type",
		},
		[]string{"type"},
	)

	DocumentParseFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "document_parse_failures_total",
			Help: "Documents skipped because loading or parsing failed",
		},
	)

	ClassificationsComputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifications_computed_total",
			Help: "Pediatric classifications computed, by matched condition",
		},
		[]string{"condition"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(DocumentsParsed)
	prometheus.MustRegister(DocumentParseFailures)
	prometheus.MustRegister(ClassificationsComputed)
}
