package panggil

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the request lifecycle:
// per-attempt outcomes, retries, token refreshes and the in-flight gauge.
// It implements both PerfTracker and BusyIndicator so one collector can be
// wired into the client for every measurable concern. Safe for concurrent
// use.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge

	retriesTotal   *prometheus.CounterVec
	refreshesTotal *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
}

// NewMetricsCollector creates a collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "panggil_requests_total",
				Help: "Total number of HTTP attempts made",
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "panggil_request_duration_seconds",
				Help:    "Duration of successful HTTP responses in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"label"},
		),
		requestsInFlight: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "panggil_requests_in_flight",
				Help: "Number of logical calls currently in flight",
			},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "panggil_retries_total",
				Help: "Total number of retry attempts",
			},
			[]string{"method", "endpoint"},
		),
		refreshesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "panggil_token_refreshes_total",
				Help: "Total number of token refresh settlements by outcome",
			},
			[]string{"outcome"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "panggil_errors_total",
				Help: "Total number of classified errors surfaced to callers",
			},
			[]string{"kind", "method", "endpoint"},
		),
	}
}

// RecordAttempt records one settled transport attempt.
func (mc *MetricsCollector) RecordAttempt(method, endpoint string, statusCode int) {
	mc.requestsTotal.WithLabelValues(method, strconv.Itoa(statusCode), endpoint).Inc()
}

// RecordRetry records one scheduled retry.
func (mc *MetricsCollector) RecordRetry(method, endpoint string) {
	mc.retriesTotal.WithLabelValues(method, endpoint).Inc()
}

// RecordRefresh records a token refresh settlement. Outcome is one of
// "success", "empty" or "failure".
func (mc *MetricsCollector) RecordRefresh(outcome string) {
	mc.refreshesTotal.WithLabelValues(outcome).Inc()
}

// RecordError records an error escalated to the caller.
func (mc *MetricsCollector) RecordError(kind Kind, method, endpoint string) {
	mc.errorsTotal.WithLabelValues(string(kind), method, endpoint).Inc()
}

// Track implements PerfTracker; label is "{method}:{url}".
func (mc *MetricsCollector) Track(label string, duration time.Duration) {
	mc.requestDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// Increment implements BusyIndicator.
func (mc *MetricsCollector) Increment() {
	mc.requestsInFlight.Inc()
}

// Decrement implements BusyIndicator.
func (mc *MetricsCollector) Decrement() {
	mc.requestsInFlight.Dec()
}
