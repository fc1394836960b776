// Package score provides the rules that combine per-plugin scores.
package score

import (
	"fmt"

	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
)

// Rule names accepted in configuration.
const (
	NameSum         = "sum"
	NameWeightedSum = "weighted_sum"
)

// Sum implements ports.ScoreRule by adding the scores.
// This is the default rule.
type Sum struct{}

// NewSum creates the sum rule.
func NewSum() *Sum {
	return &Sum{}
}

// Name implements ports.ScoreRule.
func (*Sum) Name() string { return NameSum }

// Combine returns the sum of the scores.
func (*Sum) Combine(scores []ports.WeightedScore) float64 {
	var total float64
	for _, s := range scores {
		total += s.Score
	}
	return total
}

// WeightedSum implements ports.ScoreRule by adding each score multiplied by
// its plugin's weight.
type WeightedSum struct{}

// NewWeightedSum creates the weighted sum rule.
func NewWeightedSum() *WeightedSum {
	return &WeightedSum{}
}

// Name implements ports.ScoreRule.
func (*WeightedSum) Name() string { return NameWeightedSum }

// Combine returns the weighted sum of the scores.
func (*WeightedSum) Combine(scores []ports.WeightedScore) float64 {
	var total float64
	for _, s := range scores {
		total += s.Score * s.Weight
	}
	return total
}

// ByName returns the rule registered under name. An empty name selects the
// default sum rule.
func ByName(name string) (ports.ScoreRule, error) {
	switch name {
	case "", NameSum:
		return NewSum(), nil
	case NameWeightedSum:
		return NewWeightedSum(), nil
	default:
		return nil, fmt.Errorf("unknown score rule %q (must be %s or %s)", name, NameSum, NameWeightedSum)
	}
}

var (
	_ ports.ScoreRule = (*Sum)(nil)
	_ ports.ScoreRule = (*WeightedSum)(nil)
)
