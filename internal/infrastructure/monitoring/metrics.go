package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/labelboard/backend/internal/shared/types"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Remote annotation API metrics
	RemoteCalls    *prometheus.CounterVec
	RemoteDuration *prometheus.HistogramVec

	// Orchestration metrics
	PollCycles      prometheus.Counter
	ActionsInvoked  *prometheus.CounterVec
	ActionDuration  *prometheus.HistogramVec
	SessionMode     *prometheus.GaugeVec
	LastErrorsGauge prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSEvents      *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a metrics collector registered on reg; a nil registerer
// uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "labelboard_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "labelboard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		RemoteCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "labelboard_remote_calls_total",
				Help: "Outbound annotation API calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		RemoteDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "labelboard_remote_call_duration_seconds",
				Help:    "Outbound annotation API call duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),

		PollCycles: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "labelboard_poll_cycles_total",
				Help: "Project metadata refresh cycles executed",
			},
		),
		ActionsInvoked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "labelboard_actions_invoked_total",
				Help: "Bulk actions invoked by action id and outcome",
			},
			[]string{"action", "outcome"},
		),
		ActionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "labelboard_action_duration_seconds",
				Help:    "Bulk action pipeline duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"action"},
		),
		SessionMode: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "labelboard_session_mode",
				Help: "Current session mode (1 for the active mode, 0 otherwise)",
			},
			[]string{"mode"},
		),
		LastErrorsGauge: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "labelboard_last_errors",
				Help: "Operations whose most recent call failed operationally",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "labelboard_ws_connections",
				Help: "Connected websocket clients",
			},
		),
		WSEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "labelboard_ws_events_total",
				Help: "Events broadcast to websocket clients by type",
			},
			[]string{"type"},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "labelboard_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
	}
}

// RecordHTTPRequest records one inbound request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRemoteCall records one outbound annotation API call
func (m *Metrics) RecordRemoteCall(operation, outcome string, duration time.Duration) {
	m.RemoteCalls.WithLabelValues(operation, outcome).Inc()
	m.RemoteDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordPollCycle records one metadata refresh cycle
func (m *Metrics) RecordPollCycle() {
	m.PollCycles.Inc()
}

// RecordAction records one bulk action invocation
func (m *Metrics) RecordAction(action, outcome string, duration time.Duration) {
	m.ActionsInvoked.WithLabelValues(action, outcome).Inc()
	m.ActionDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// SetMode flags the active session mode
func (m *Metrics) SetMode(mode types.Mode) {
	for _, known := range []types.Mode{types.ModeBrowsing, types.ModeLabelStream} {
		v := 0.0
		if known == mode {
			v = 1.0
		}
		m.SessionMode.WithLabelValues(string(known)).Set(v)
	}
}

// SetLastErrors tracks how many operations currently carry a recorded error
func (m *Metrics) SetLastErrors(n int) {
	m.LastErrorsGauge.Set(float64(n))
}

// RecordWSEvent counts one broadcast event
func (m *Metrics) RecordWSEvent(eventType string) {
	m.WSEvents.WithLabelValues(eventType).Inc()
}

// UpdateUptime refreshes the uptime gauge
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
