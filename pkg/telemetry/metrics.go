package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters of one CLI run in a private registry.
type Metrics struct {
	config   MetricsConfig
	registry *prometheus.Registry

	commands            *prometheus.CounterVec
	commandDuration     *prometheus.HistogramVec
	connectorsGenerated *prometheus.CounterVec
	connectorsValidated *prometheus.CounterVec
	findings            *prometheus.CounterVec
	policyViolations    *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	namespace := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total number of commands run",
			},
			[]string{"command", "status"},
		),
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Duration of command execution in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		connectorsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connectors_generated_total",
				Help:      "Total number of connector resources generated",
			},
			[]string{"connector_class"},
		),
		connectorsValidated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connectors_validated_total",
				Help:      "Total number of connector configurations validated",
			},
			[]string{"result"},
		),
		findings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_findings_total",
				Help:      "Total number of validation findings by error kind",
			},
			[]string{"kind"},
		),
		policyViolations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_violations_total",
				Help:      "Total number of policy violations",
			},
			[]string{"policy", "severity"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.commands,
		m.commandDuration,
		m.connectorsGenerated,
		m.connectorsValidated,
		m.findings,
		m.policyViolations,
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return m, nil
}

// RecordCommand records a finished command.
func (m *Metrics) RecordCommand(command, status string, duration time.Duration) {
	m.commands.WithLabelValues(command, status).Inc()
	m.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordGenerated counts a generated connector resource.
func (m *Metrics) RecordGenerated(connectorClass string) {
	m.connectorsGenerated.WithLabelValues(connectorClass).Inc()
}

// RecordValidated counts a validated connector configuration.
func (m *Metrics) RecordValidated(valid bool) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	m.connectorsValidated.WithLabelValues(result).Inc()
}

// RecordFinding counts a validation failure by error kind.
func (m *Metrics) RecordFinding(kind string) {
	m.findings.WithLabelValues(kind).Inc()
}

// RecordPolicyViolation counts a policy violation.
func (m *Metrics) RecordPolicyViolation(policy, severity string) {
	m.policyViolations.WithLabelValues(policy, severity).Inc()
}

// WriteTextfile writes all metrics to the configured textfile. It is a no-op
// when no textfile is configured.
func (m *Metrics) WriteTextfile() error {
	if m.config.Textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(m.config.Textfile, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Timer measures the duration of an operation.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
