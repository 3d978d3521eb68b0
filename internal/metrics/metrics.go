package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/matchqueue/internal/model"
)

const namespace = "mmq"

// Metrics holds the Prometheus collectors for one server instance.
// Each instance owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	outcomes     *prometheus.CounterVec
	queueDepth   *prometheus.GaugeVec
	passDuration prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// New creates a Metrics instance with a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matchmaking",
			Name:      "outcomes_total",
			Help:      "Matchmaking decisions by queue, result and rejection reason",
		}, []string{"queue", "result", "reason"}),
		queueDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "matchmaking",
			Name:      "queue_depth",
			Help:      "Entries waiting in each matchmaking queue",
		}, []string{"queue"}),
		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "matchmaking",
			Name:      "pass_duration_seconds",
			Help:      "Duration of matchmaking drain passes in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests received",
		}, []string{"method", "route", "status"}),
		httpLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TrackActiveSessions exposes count as the mmq_sessions_active gauge.
// It must be called at most once per instance.
func (m *Metrics) TrackActiveSessions(count func() int) {
	promauto.With(m.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Sessions currently held by the session table",
	}, func() float64 {
		return float64(count())
	})
}

// ObserveOutcome counts one matchmaking decision
func (m *Metrics) ObserveOutcome(outcome model.Outcome) {
	m.outcomes.WithLabelValues(string(outcome.Kind), string(outcome.Result), string(outcome.Reason)).Inc()
}

// SetQueueDepth records the current length of a queue
func (m *Metrics) SetQueueDepth(kind model.QueueKind, depth int) {
	m.queueDepth.WithLabelValues(string(kind)).Set(float64(depth))
}

// ObservePass records how long a drain pass took
func (m *Metrics) ObservePass(d time.Duration) {
	m.passDuration.Observe(d.Seconds())
}

// ObserveHTTPRequest records one served request
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	labels := prometheus.Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpLatency.With(labels).Observe(d.Seconds())
}
