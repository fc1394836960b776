// Package ports defines the core interfaces of the evaluation pipeline.
// This file contains the plugin contract and the aggregation policies.
package ports

import (
	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
)

// Plugin evaluates an action along one dimension.
//
// Evaluate must be a pure function of its inputs: no I/O and no state shared
// between calls. It returns a verdict whose Action may equal the input, or a
// *domain.PluginEvaluationError when the input cannot be processed.
type Plugin interface {
	Evaluate(action domain.Action, env domain.Context) (*domain.Verdict, error)
}

// PluginFunc adapts a function to the Plugin interface.
type PluginFunc func(action domain.Action, env domain.Context) (*domain.Verdict, error)

// Evaluate calls f.
func (f PluginFunc) Evaluate(action domain.Action, env domain.Context) (*domain.Verdict, error) {
	return f(action, env)
}

// Proposal is one plugin's value for an attribute during a run.
type Proposal struct {
	PluginID string
	Priority int
	Weight   float64
	Value    domain.Value
}

// MergePolicy resolves an attribute that one or more plugins have set
// during a run. proposals are in evaluation order and never empty.
type MergePolicy interface {
	// Name returns the configuration name of the policy.
	Name() string
	// Resolve returns the value the attribute takes after the latest proposal.
	Resolve(attribute string, proposals []Proposal) domain.Value
}

// WeightedScore is one verdict's score with the weight of its plugin.
type WeightedScore struct {
	PluginID string
	Priority int
	Weight   float64
	Score    float64
}

// ScoreRule combines per-plugin scores into the run score.
type ScoreRule interface {
	// Name returns the configuration name of the rule.
	Name() string
	// Combine folds scores, which are in evaluation order and never empty.
	Combine(scores []WeightedScore) float64
}
