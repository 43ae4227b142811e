// Package metrics provides Prometheus metrics collection for the application.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Command metrics
	CommandsTotal *prometheus.CounterVec

	// Call metrics
	CallsStartedTotal *prometheus.CounterVec
	CallDuration      prometheus.Histogram

	// Transcript metrics
	TranscriptEntriesTotal *prometheus.CounterVec

	// Notice metrics
	NoticesTotal *prometheus.CounterVec

	// WebSocket metrics
	WSConnectionsActive prometheus.Gauge

	// Registry used for this metrics instance (nil means default registry)
	registry prometheus.Gatherer
}

// NewMetrics creates a new Metrics instance with all collectors registered.
func NewMetrics() *Metrics {
	m := newMetricsWithRegistry(prometheus.DefaultRegisterer)
	m.registry = prometheus.DefaultGatherer
	return m
}

// NewMetricsWithRegistry creates metrics using a custom registry (for testing).
func NewMetricsWithRegistry(reg *prometheus.Registry) *Metrics {
	m := newMetricsWithRegistry(reg)
	m.registry = reg
	return m
}

func newMetricsWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "softphone_commands_total",
				Help: "Total number of softphone commands by name and outcome",
			},
			[]string{"command", "outcome"}, // outcome: "ok", "rejected"
		),

		CallsStartedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "softphone_calls_started_total",
				Help: "Total number of calls started by direction",
			},
			[]string{"direction"}, // "inbound", "outbound"
		),
		CallDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "softphone_call_duration_seconds",
				Help:    "Duration of completed calls",
				Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200},
			},
		),

		TranscriptEntriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "softphone_transcript_entries_total",
				Help: "Total number of transcript entries by speaker",
			},
			[]string{"speaker"}, // "agent", "customer"
		),

		NoticesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "softphone_notices_total",
				Help: "Total number of notices published by severity",
			},
			[]string{"severity"},
		),

		WSConnectionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "softphone_ws_connections_active",
				Help: "Number of active WebSocket connections",
			},
		),
	}
}

// Handler returns the Prometheus HTTP handler for scraping metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordCommand records a softphone command and its outcome.
func (m *Metrics) RecordCommand(command, outcome string) {
	m.CommandsTotal.WithLabelValues(command, outcome).Inc()
}

// RecordCallStarted records a call starting in the given direction.
func (m *Metrics) RecordCallStarted(direction string) {
	m.CallsStartedTotal.WithLabelValues(direction).Inc()
}

// RecordCallEnded records the duration of a completed call.
func (m *Metrics) RecordCallEnded(duration time.Duration) {
	m.CallDuration.Observe(duration.Seconds())
}

// RecordTranscriptEntry records one transcript entry being appended.
func (m *Metrics) RecordTranscriptEntry(speaker string) {
	m.TranscriptEntriesTotal.WithLabelValues(speaker).Inc()
}

// RecordNotice records a published notice.
func (m *Metrics) RecordNotice(severity string) {
	m.NoticesTotal.WithLabelValues(severity).Inc()
}

// SetWSConnections sets the current number of WebSocket connections.
func (m *Metrics) SetWSConnections(count int) {
	m.WSConnectionsActive.Set(float64(count))
}
