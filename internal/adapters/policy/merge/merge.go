// Package merge provides the attribute merge policies of the aggregator.
package merge

import (
	"fmt"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
)

// Policy names accepted in configuration.
const (
	NameOverwrite = "overwrite"
	NameAverage   = "average"
	NameWeighted  = "weighted"
)

// Overwrite implements ports.MergePolicy with sequential-overwrite semantics:
// the latest plugin to set an attribute wins.
// This is the default policy.
type Overwrite struct{}

// NewOverwrite creates the overwrite policy.
func NewOverwrite() *Overwrite {
	return &Overwrite{}
}

// Name implements ports.MergePolicy.
func (*Overwrite) Name() string { return NameOverwrite }

// Resolve returns the latest proposal.
func (*Overwrite) Resolve(_ string, proposals []ports.Proposal) domain.Value {
	return proposals[len(proposals)-1].Value
}

// Average implements ports.MergePolicy by taking the mean of every value
// proposed for a numeric attribute. Booleans fall back to last-wins.
type Average struct{}

// NewAverage creates the average policy.
func NewAverage() *Average {
	return &Average{}
}

// Name implements ports.MergePolicy.
func (*Average) Name() string { return NameAverage }

// Resolve returns the arithmetic mean of the proposals.
func (*Average) Resolve(_ string, proposals []ports.Proposal) domain.Value {
	last := proposals[len(proposals)-1].Value
	if anyBool(proposals) {
		return last
	}

	var sum float64
	for _, p := range proposals {
		f, _ := p.Value.Float()
		sum += f
	}
	return domain.Number(sum / float64(len(proposals)))
}

// Weighted implements ports.MergePolicy by taking the mean of the proposals
// weighted by each plugin's descriptor weight. Booleans, and proposals whose
// weights sum to zero, fall back to last-wins.
type Weighted struct{}

// NewWeighted creates the weighted policy.
func NewWeighted() *Weighted {
	return &Weighted{}
}

// Name implements ports.MergePolicy.
func (*Weighted) Name() string { return NameWeighted }

// Resolve returns the weighted mean of the proposals.
func (*Weighted) Resolve(_ string, proposals []ports.Proposal) domain.Value {
	last := proposals[len(proposals)-1].Value
	if anyBool(proposals) {
		return last
	}

	var sum, total float64
	for _, p := range proposals {
		f, _ := p.Value.Float()
		sum += f * p.Weight
		total += p.Weight
	}
	if total == 0 {
		return last
	}
	return domain.Number(sum / total)
}

func anyBool(proposals []ports.Proposal) bool {
	for _, p := range proposals {
		if p.Value.IsBool() {
			return true
		}
	}
	return false
}

// ByName returns the policy registered under name. An empty name selects
// the default overwrite policy.
func ByName(name string) (ports.MergePolicy, error) {
	switch name {
	case "", NameOverwrite:
		return NewOverwrite(), nil
	case NameAverage:
		return NewAverage(), nil
	case NameWeighted:
		return NewWeighted(), nil
	default:
		return nil, fmt.Errorf("unknown merge policy %q (must be %s, %s or %s)", name, NameOverwrite, NameAverage, NameWeighted)
	}
}

// Ensure the policies implement the interface.
var (
	_ ports.MergePolicy = (*Overwrite)(nil)
	_ ports.MergePolicy = (*Average)(nil)
	_ ports.MergePolicy = (*Weighted)(nil)
)
