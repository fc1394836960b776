package domain

import (
	"time"
)

// RunEvent describes one pipeline run for observers: timing and per-step
// outcome. It is published after the run and is not part of the result.
type RunEvent struct {
	Type      RunEventType  `json:"type"`
	RunID     string        `json:"run_id"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration_ns"`
	Kind      string        `json:"action_kind"`
	Steps     []StepReport  `json:"steps"`
	Score     *float64      `json:"score,omitempty"`
	Partial   bool          `json:"partial,omitempty"`
}

// RunEventType identifies the type of run event.
type RunEventType string

const (
	RunEventCompleted RunEventType = "run.completed"
	RunEventDegraded  RunEventType = "run.degraded"
	RunEventPartial   RunEventType = "run.partial"
)

// StepReport is the per-plugin entry of a RunEvent.
type StepReport struct {
	PluginID string        `json:"plugin"`
	Priority int           `json:"priority"`
	Duration time.Duration `json:"duration_ns"`
	Changed  bool          `json:"changed"`
	Error    string        `json:"error,omitempty"`
}

// Failures counts the steps that recorded an error.
func (e *RunEvent) Failures() int {
	n := 0
	for _, s := range e.Steps {
		if s.Error != "" {
			n++
		}
	}
	return n
}
