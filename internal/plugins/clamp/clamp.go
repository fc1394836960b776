// Package clamp provides a plugin that bounds numeric attributes.
package clamp

import (
	"fmt"
	"math"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
	"github.com/tjfontaine/ethics-pipeline/internal/plugin/registry"
	"github.com/tjfontaine/ethics-pipeline/internal/plugins/params"
)

// Type is the catalog key of the plugin.
const Type = "clamp"

// Params configures the plugin. An empty Attributes list clamps every
// numeric attribute. Listed attributes that are absent are ignored.
type Params struct {
	Attributes []string `mapstructure:"attributes"`
	Min        *float64 `mapstructure:"min"`
	Max        *float64 `mapstructure:"max"`
}

func (p *Params) defaults() {
	if p.Min == nil {
		p.Min = params.Float(0)
	}
	if p.Max == nil {
		p.Max = params.Float(1)
	}
}

// Validate checks the params after defaults are applied.
func (p Params) Validate() error {
	p.defaults()
	if *p.Min > *p.Max {
		return fmt.Errorf("min %v is greater than max %v", *p.Min, *p.Max)
	}
	for i, a := range p.Attributes {
		if a == "" {
			return fmt.Errorf("attributes[%d] is empty", i)
		}
	}
	return nil
}

// Plugin clamps attributes into [Min, Max].
type Plugin struct {
	attrs    []string
	min, max float64
}

// New creates the plugin.
func New(p Params) (*Plugin, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.defaults()
	return &Plugin{attrs: p.Attributes, min: *p.Min, max: *p.Max}, nil
}

// Evaluate implements ports.Plugin. Boolean attributes are left alone.
func (pl *Plugin) Evaluate(action domain.Action, _ domain.Context) (*domain.Verdict, error) {
	names := pl.attrs
	if len(names) == 0 {
		names = action.Keys()
	}

	out := action
	var reasons []string
	for _, name := range names {
		v, ok := action.Attribute(name)
		if !ok {
			continue
		}
		f, ok := v.Float()
		if !ok {
			continue
		}
		if math.IsNaN(f) {
			return nil, domain.EvaluationErrorf("attribute %q is NaN", name)
		}
		c := math.Min(math.Max(f, pl.min), pl.max)
		if c != f {
			out = out.WithNumber(name, c)
			reasons = append(reasons, fmt.Sprintf("%s: %g clamped to %g", name, f, c))
		}
	}
	return domain.NewVerdict(out).WithRationale(reasons...), nil
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
		Description:    "Clamps numeric attributes into a range, [0, 1] by default",
		Create:         Create,
		ValidateParams: ValidateParams,
	})
}

var _ ports.Plugin = (*Plugin)(nil)
