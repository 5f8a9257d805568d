package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the diagnosis pipeline.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsInFlight  prometheus.Gauge
	ValidationsTotal  *prometheus.CounterVec
	ExecutionsTotal   *prometheus.CounterVec
	ExecutionDuration *prometheus.HistogramVec
	ActiveExecutions  prometheus.Gauge
	LLMRequestsTotal  *prometheus.CounterVec
	LLMLatency        *prometheus.HistogramVec
	SecurityEvents    *prometheus.CounterVec
	CommandSizeBytes  prometheus.Histogram
	OutputSizeBytes   prometheus.Histogram
}

// NewMetrics creates and registers all Prometheus metrics using a dedicated registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "netcopilot",
				Subsystem: "api",
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being processed.",
			},
		),

		ValidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "netcopilot",
				Name:      "validations_total",
				Help:      "Total command validations by verdict reason.",
			},
			[]string{"reason"},
		),

		ExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "netcopilot",
				Name:      "executions_total",
				Help:      "Total command executions by leading token and status.",
			},
			[]string{"command", "status"},
		),

		ExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "netcopilot",
				Name:      "execution_duration_seconds",
				Help:      "Duration of command executions in seconds.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"command"},
		),

		ActiveExecutions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "netcopilot",
				Name:      "active_executions",
				Help:      "Number of currently running command subprocesses.",
			},
		),

		LLMRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "netcopilot",
				Name:      "llm_requests_total",
				Help:      "Total explanation requests by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),

		LLMLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "netcopilot",
				Name:      "llm_request_duration_seconds",
				Help:      "Duration of explanation provider calls.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider"},
		),

		SecurityEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "netcopilot",
				Name:      "security_events_total",
				Help:      "Total suspicious-command patterns detected.",
			},
			[]string{"type"},
		),

		CommandSizeBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "netcopilot",
				Name:      "command_size_bytes",
				Help:      "Size of submitted command text in bytes.",
				Buckets:   prometheus.ExponentialBuckets(8, 2, 8),
			},
		),

		OutputSizeBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "netcopilot",
				Name:      "output_size_bytes",
				Help:      "Size of captured command output in bytes.",
				Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
			},
		),
	}

	reg.MustRegister(
		m.RequestsInFlight,
		m.ValidationsTotal,
		m.ExecutionsTotal,
		m.ExecutionDuration,
		m.ActiveExecutions,
		m.LLMRequestsTotal,
		m.LLMLatency,
		m.SecurityEvents,
		m.CommandSizeBytes,
		m.OutputSizeBytes,
	)

	return m
}

// RecordValidation records a validation verdict.
func (m *Metrics) RecordValidation(reason string) {
	m.ValidationsTotal.WithLabelValues(reason).Inc()
}

// RecordExecution records metrics for a completed execution.
func (m *Metrics) RecordExecution(cmd, status string, durationSec float64) {
	m.ExecutionsTotal.WithLabelValues(cmd, status).Inc()
	m.ExecutionDuration.WithLabelValues(cmd).Observe(durationSec)
}

// RecordLLM records an explanation provider call.
func (m *Metrics) RecordLLM(provider, outcome string, durationSec float64) {
	m.LLMRequestsTotal.WithLabelValues(provider, outcome).Inc()
	m.LLMLatency.WithLabelValues(provider).Observe(durationSec)
}

// RecordSecurityEvent records a detected suspicious pattern.
func (m *Metrics) RecordSecurityEvent(eventType string) {
	m.SecurityEvents.WithLabelValues(eventType).Inc()
}
