// Package adjust provides a plugin that updates one numeric attribute
// arithmetically, optionally scaled by a context value.
//
//	- id: collaboration
//	  type: adjust
//	  params:
//	    attribute: selfishness
//	    op: subtract
//	    context_key: collaboration_level
//	    coefficient: 0.5
//	    min: 0
package adjust

import (
	"errors"
	"fmt"
	"math"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
	"github.com/tjfontaine/ethics-pipeline/internal/plugin/registry"
	"github.com/tjfontaine/ethics-pipeline/internal/plugins/params"
)

// Type is the catalog key of the plugin.
const Type = "adjust"

// Operations.
const (
	OpAdd      = "add"
	OpSubtract = "subtract"
	OpMultiply = "multiply"
	OpSet      = "set"
)

// Params configures the plugin. Boolean attributes and context values
// read as 1 or 0.
//
// The operand is Coefficient times either the context value at ContextKey
// or Value. Exactly one of ContextKey and Value must be set.
type Params struct {
	Attribute   string   `mapstructure:"attribute"`
	Op          string   `mapstructure:"op"`
	Value       *float64 `mapstructure:"value"`
	ContextKey  string   `mapstructure:"context_key"`
	Coefficient *float64 `mapstructure:"coefficient"`

	// DefaultContext is used when ContextKey is absent from the context.
	DefaultContext *float64 `mapstructure:"default_context"`
	// Initial is used when Attribute is absent from the action.
	Initial *float64 `mapstructure:"initial"`

	Min *float64 `mapstructure:"min"`
	Max *float64 `mapstructure:"max"`
}

// Validate checks the params.
func (p Params) Validate() error {
	if p.Attribute == "" {
		return errors.New("attribute is required")
	}
	switch p.Op {
	case OpAdd, OpSubtract, OpMultiply, OpSet:
	case "":
		return errors.New("op is required")
	default:
		return fmt.Errorf("unknown op %q (must be add, subtract, multiply or set)", p.Op)
	}
	if (p.ContextKey == "") == (p.Value == nil) {
		return errors.New("exactly one of context_key and value is required")
	}
	if p.DefaultContext != nil && p.ContextKey == "" {
		return errors.New("default_context requires context_key")
	}
	if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
		return fmt.Errorf("min %v is greater than max %v", *p.Min, *p.Max)
	}
	return nil
}

// Plugin applies the adjustment.
type Plugin struct {
	p Params
}

// New creates the plugin from validated params.
func New(p Params) (*Plugin, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Coefficient == nil {
		p.Coefficient = params.Float(1)
	}
	return &Plugin{p: p}, nil
}

// Evaluate implements ports.Plugin.
func (pl *Plugin) Evaluate(action domain.Action, env domain.Context) (*domain.Verdict, error) {
	p := pl.p

	operand, source, err := pl.operand(env)
	if err != nil {
		return nil, err
	}

	current, ok := action.Float(p.Attribute)
	switch {
	case ok:
	case p.Op == OpSet:
	case p.Initial != nil:
		current = *p.Initial
	default:
		return nil, domain.MissingAttribute(p.Attribute)
	}

	var next float64
	switch p.Op {
	case OpAdd:
		next = current + operand
	case OpSubtract:
		next = current - operand
	case OpMultiply:
		next = current * operand
	case OpSet:
		next = operand
	}
	if math.IsNaN(next) || math.IsInf(next, 0) {
		return nil, domain.EvaluationErrorf("%s %s produced %v", p.Op, p.Attribute, next)
	}
	if p.Min != nil {
		next = math.Max(next, *p.Min)
	}
	if p.Max != nil {
		next = math.Min(next, *p.Max)
	}

	return domain.NewVerdict(action.WithNumber(p.Attribute, next)).
		WithRationale(fmt.Sprintf("%s: %s %g (%s) -> %g", p.Attribute, p.Op, operand, source, next)), nil
}

func (pl *Plugin) operand(env domain.Context) (float64, string, error) {
	p := pl.p
	if p.ContextKey == "" {
		return *p.Coefficient * *p.Value, "constant", nil
	}

	v, ok := env.Float(p.ContextKey)
	if !ok {
		if p.DefaultContext == nil {
			return 0, "", domain.MissingContext(p.ContextKey)
		}
		v = *p.DefaultContext
	}
	return *p.Coefficient * v, fmt.Sprintf("%g x %s", *p.Coefficient, p.ContextKey), nil
}

// Create builds the plugin from a descriptor.
func Create(desc domain.Descriptor) (ports.Plugin, error) {
	var p Params
	if err := params.Decode(desc.Params, &p); err != nil {
		return nil, err
	}
	return New(p)
}

// ValidateParams checks descriptor params without building the plugin.
func ValidateParams(raw map[string]any) error {
	var p Params
	if err := params.Decode(raw, &p); err != nil {
		return err
	}
	return p.Validate()
}

// RegisterFactory registers the plugin with the catalog.
func RegisterFactory(c *registry.Catalog) {
	c.Register(registry.Factory{
		Type:           Type,
		Description:    "Adds, subtracts, multiplies or sets a numeric attribute, optionally scaled by a context value",
		Create:         Create,
		ValidateParams: ValidateParams,
	})
}

var _ ports.Plugin = (*Plugin)(nil)
