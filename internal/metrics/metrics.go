package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics. A nil *Metrics is valid and records
// nothing, so the lookup engine can run without a registry in tests.
type Metrics struct {
	lookupsTotal    *prometheus.CounterVec
	lookupDuration  *prometheus.HistogramVec
	lookupsInFlight prometheus.Gauge
	retriesTotal    *prometheus.CounterVec
	toolCallsTotal  *prometheus.CounterVec
}

// New creates a new metrics instance registered with the default registry.
func New() *Metrics {
	return &Metrics{
		lookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domain_agent_lookups_total",
				Help: "Total number of completed domain lookups",
			},
			[]string{"status", "method"},
		),
		lookupDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "domain_agent_lookup_duration_seconds",
				Help:    "Domain lookup duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		lookupsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "domain_agent_lookups_in_flight",
				Help: "Number of lookups currently in flight",
			},
		),
		retriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domain_agent_lookup_retries_total",
				Help: "Total number of rate-limit-triggered lookup retries",
			},
			[]string{"method"},
		),
		toolCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domain_agent_tool_calls_total",
				Help: "Total number of tool invocations",
			},
			[]string{"tool", "outcome"},
		),
	}
}

// RecordLookup records one completed lookup.
func (m *Metrics) RecordLookup(status, method string, duration time.Duration) {
	if m == nil {
		return
	}
	m.lookupsTotal.WithLabelValues(status, method).Inc()
	m.lookupDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// LookupStarted marks a lookup as in flight.
func (m *Metrics) LookupStarted() {
	if m == nil {
		return
	}
	m.lookupsInFlight.Inc()
}

// LookupFinished marks an in-flight lookup as done.
func (m *Metrics) LookupFinished() {
	if m == nil {
		return
	}
	m.lookupsInFlight.Dec()
}

// RecordRetry records one rate-limit-triggered retry of an upstream call.
func (m *Metrics) RecordRetry(method string) {
	if m == nil {
		return
	}
	m.retriesTotal.WithLabelValues(method).Inc()
}

// RecordToolCall records one tool invocation and its outcome.
func (m *Metrics) RecordToolCall(tool, outcome string) {
	if m == nil {
		return
	}
	m.toolCallsTotal.WithLabelValues(tool, outcome).Inc()
}
