package telemetry

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ethics_pipeline"

// Evaluation outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Metrics records pipeline runs and per-plugin evaluations.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	runs        *prometheus.CounterVec
	evaluations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which is useful in tests.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome (completed, degraded, partial).",
		}, []string{"outcome"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plugin_evaluations_total",
			Help:      "Plugin evaluations by plugin and outcome.",
		}, []string{"plugin", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plugin_evaluation_duration_seconds",
			Help:      "Plugin evaluation latency.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"plugin"}),
	}

	if reg == nil {
		return m, nil
	}
	var err error
	if m.runs, err = register(reg, m.runs); err != nil {
		return nil, err
	}
	if m.evaluations, err = register(reg, m.evaluations); err != nil {
		return nil, err
	}
	if m.latency, err = register(reg, m.latency); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, reusing the collector already registered under
// the same descriptor so that several managers can share a registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordEvaluation records one plugin evaluation.
func (m *Metrics) RecordEvaluation(plugin, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(plugin, outcome).Inc()
	if outcome != OutcomeSkipped {
		m.latency.WithLabelValues(plugin).Observe(d.Seconds())
	}
}

// RecordRun records one finished run.
func (m *Metrics) RecordRun(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}

// Runs returns the run counter, labelled by outcome.
func (m *Metrics) Runs() *prometheus.CounterVec {
	return m.runs
}

// Evaluations returns the evaluation counter, labelled by plugin and outcome.
func (m *Metrics) Evaluations() *prometheus.CounterVec {
	return m.evaluations
}
