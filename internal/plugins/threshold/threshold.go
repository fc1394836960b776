// Package threshold provides a plugin that compares a numeric attribute to
// a threshold, records the outcome as a boolean flag and contributes a
// score.
package threshold

import (
	"errors"
	"fmt"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
	"github.com/tjfontaine/ethics-pipeline/internal/plugin/registry"
	"github.com/tjfontaine/ethics-pipeline/internal/plugins/params"
)

// Type is the catalog key of the plugin.
const Type = "threshold"

// Params configures the plugin.
type Params struct {
	Attribute string  `mapstructure:"attribute"`
	Threshold float64 `mapstructure:"threshold"`
	// Inclusive treats a value equal to Threshold as above it.
	Inclusive bool `mapstructure:"inclusive"`
	// Flag is the boolean attribute set to the outcome. Defaults to
	// "<attribute>_above".
	Flag       string   `mapstructure:"flag"`
	ScoreAbove *float64 `mapstructure:"score_above"`
	ScoreBelow *float64 `mapstructure:"score_below"`
}

// Validate checks the params.
func (p Params) Validate() error {
	if p.Attribute == "" {
		return errors.New("attribute is required")
	}
	if p.Flag != "" && p.Flag == p.Attribute {
		return fmt.Errorf("flag must differ from attribute %q", p.Attribute)
	}
	return nil
}

// Plugin evaluates the threshold.
type Plugin struct {
	p Params
}

// New creates the plugin.
func New(p Params) (*Plugin, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Flag == "" {
		p.Flag = p.Attribute + "_above"
	}
	return &Plugin{p: p}, nil
}

// Evaluate implements ports.Plugin.
func (pl *Plugin) Evaluate(action domain.Action, _ domain.Context) (*domain.Verdict, error) {
	p := pl.p

	value, ok := action.Float(p.Attribute)
	if !ok {
		return nil, domain.MissingAttribute(p.Attribute)
	}

	above := value > p.Threshold || (p.Inclusive && value == p.Threshold)

	v := domain.NewVerdict(action.WithBool(p.Flag, above))
	if above {
		v.WithRationale(fmt.Sprintf("%s %g is above %g", p.Attribute, value, p.Threshold))
		if p.ScoreAbove != nil {
			v.WithScore(*p.ScoreAbove)
		}
	} else {
		v.WithRationale(fmt.Sprintf("%s %g is not above %g", p.Attribute, value, p.Threshold))
		if p.ScoreBelow != nil {
			v.WithScore(*p.ScoreBelow)
		}
	}
	return v, nil
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
		Description:    "Flags and scores a numeric attribute against a threshold",
		Create:         Create,
		ValidateParams: ValidateParams,
	})
}

var _ ports.Plugin = (*Plugin)(nil)
