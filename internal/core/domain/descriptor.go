package domain

import (
	"fmt"
	"math"
)

// DefaultWeight is the weight a descriptor gets when none is configured.
const DefaultWeight = 1.0

// Descriptor identifies a plugin implementation and where it runs in the
// pipeline.
type Descriptor struct {
	// ID is the instance identifier. Defaults to Type when empty.
	ID string `json:"id" yaml:"id"`

	// Type is the catalog key of the factory that builds the plugin.
	Type string `json:"type" yaml:"type"`

	// Priority orders evaluation: lower runs first, ties keep registration order.
	Priority int `json:"priority" yaml:"priority"`

	// Enabled is nil when unset, which means enabled.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Weight is used by the weighted merge policy and score rule.
	// Nil means DefaultWeight.
	Weight *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`

	// Params is handed to the factory as-is.
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Identifier returns ID, falling back to Type.
func (d Descriptor) Identifier() string {
	if d.ID != "" {
		return d.ID
	}
	return d.Type
}

// IsEnabled reports whether the descriptor is enabled.
func (d Descriptor) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// EffectiveWeight returns the configured weight or DefaultWeight.
func (d Descriptor) EffectiveWeight() float64 {
	if d.Weight == nil {
		return DefaultWeight
	}
	return *d.Weight
}

// Validate checks the fields that do not depend on the plugin catalog.
func (d Descriptor) Validate() error {
	if d.Type == "" {
		return fmt.Errorf("descriptor %q: type cannot be empty", d.ID)
	}
	if d.Weight != nil {
		w := *d.Weight
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("descriptor %q: weight must be finite, got %v", d.Identifier(), w)
		}
		if w < 0 {
			return fmt.Errorf("descriptor %q: weight must not be negative, got %v", d.Identifier(), w)
		}
	}
	return nil
}
