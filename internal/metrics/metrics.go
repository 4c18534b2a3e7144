package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kiddolearn/kiddo-player/internal/playback"
)

const namespace = "kiddo_player"

// Metrics holds Prometheus counters and gauges for the playback controller.  It implements playback.Recorder.
type Metrics struct {
	registry          *prometheus.Registry
	handlesCreated    prometheus.Counter
	handlesDestroyed  prometheus.Counter
	liveHandles       prometheus.Gauge
	failures          *prometheus.CounterVec
	staleEvents       prometheus.Counter
	autoplayRejected  prometheus.Counter
	progressReports   prometheus.Counter
	lastProgress      prometheus.Gauge
	requestsTotal     prometheus.Counter
	requestErrorTotal prometheus.Counter
}

var _ playback.Recorder = (*Metrics)(nil)

// New creates and registers the player metrics on a private registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		handlesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_handles_created_total",
			Help:      "Total number of playback engine handles created",
		}),
		handlesDestroyed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_handles_destroyed_total",
			Help:      "Total number of playback engine handles destroyed",
		}),
		liveHandles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "engine_handles_live",
			Help:      "Number of playback engine handles currently alive",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_failures_total",
			Help:      "Total number of transitions into the errored state, by failure kind",
		}, []string{"kind"}),
		staleEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_events_total",
			Help:      "Total number of notifications dropped because they came from a superseded engine",
		}),
		autoplayRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autoplay_rejections_total",
			Help:      "Total number of refused play commands",
		}),
		progressReports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progress_reports_total",
			Help:      "Total number of progress callback invocations",
		}),
		lastProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "progress_percent",
			Help:      "Last reported playback progress in percent",
		}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_requests_total",
			Help:      "Total number of HTTP requests received by the status server",
		}),
		requestErrorTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_errors_total",
			Help:      "Total number of status server responses with error status (4xx or 5xx)",
		}),
	}

	registry.MustRegister(
		m.handlesCreated,
		m.handlesDestroyed,
		m.liveHandles,
		m.failures,
		m.staleEvents,
		m.autoplayRejected,
		m.progressReports,
		m.lastProgress,
		m.requestsTotal,
		m.requestErrorTotal,
	)

	return m
}

// HandleCreated records a new engine handle
func (m *Metrics) HandleCreated() {
	m.handlesCreated.Inc()
	m.liveHandles.Inc()
}

// HandleDestroyed records a released engine handle
func (m *Metrics) HandleDestroyed() {
	m.handlesDestroyed.Inc()
	m.liveHandles.Dec()
}

// Failure records an entry into the errored state
func (m *Metrics) Failure(kind playback.ErrorKind) {
	m.failures.WithLabelValues(string(kind)).Inc()
}

// StaleEvent records a dropped notification from a superseded handle
func (m *Metrics) StaleEvent() {
	m.staleEvents.Inc()
}

// AutoplayRejected records a refused play command
func (m *Metrics) AutoplayRejected() {
	m.autoplayRejected.Inc()
}

// ProgressReported records one progress callback
func (m *Metrics) ProgressReported(percent int) {
	m.progressReports.Inc()
	m.lastProgress.Set(float64(percent))
}

// Handler returns an http.Handler that serves the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
