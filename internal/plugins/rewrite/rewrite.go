// Package rewrite provides a plugin that edits an action's content and
// kind, optionally only for one kind and when a condition attribute holds.
package rewrite

import (
	"errors"
	"fmt"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
	"github.com/tjfontaine/ethics-pipeline/internal/plugin/registry"
	"github.com/tjfontaine/ethics-pipeline/internal/plugins/params"
)

// Type is the catalog key of the plugin.
const Type = "rewrite"

// Params configures the plugin.
type Params struct {
	// Kind restricts the rewrite to actions of this kind.
	Kind string `mapstructure:"kind"`
	// When names an attribute that must be truthy. Absent means false.
	When string `mapstructure:"when"`

	Prefix  string `mapstructure:"prefix"`
	Suffix  string `mapstructure:"suffix"`
	SetKind string `mapstructure:"set_kind"`
}

// Validate checks the params.
func (p Params) Validate() error {
	if p.Prefix == "" && p.Suffix == "" && p.SetKind == "" {
		return errors.New("one of prefix, suffix or set_kind is required")
	}
	return nil
}

// Plugin applies the rewrite.
type Plugin struct {
	p Params
}

// New creates the plugin.
func New(p Params) (*Plugin, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Plugin{p: p}, nil
}

// Evaluate implements ports.Plugin. Actions that do not match are returned
// unchanged.
func (pl *Plugin) Evaluate(action domain.Action, _ domain.Context) (*domain.Verdict, error) {
	p := pl.p

	if p.Kind != "" && action.Kind() != p.Kind {
		return domain.NewVerdict(action), nil
	}
	if p.When != "" {
		v, ok := action.Attribute(p.When)
		if !ok || !v.Truthy() {
			return domain.NewVerdict(action), nil
		}
	}

	out := action.WithContent(p.Prefix + action.Content() + p.Suffix)
	verdict := domain.NewVerdict(out)
	if p.Prefix != "" || p.Suffix != "" {
		verdict.WithRationale("content rewritten")
	}
	if p.SetKind != "" && p.SetKind != action.Kind() {
		verdict.Action = verdict.Action.WithKind(p.SetKind)
		verdict.WithRationale(fmt.Sprintf("kind %s -> %s", action.Kind(), p.SetKind))
	}
	return verdict, nil
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
		Description:    "Prefixes or suffixes content and changes kind, optionally guarded by kind and an attribute",
		Create:         Create,
		ValidateParams: ValidateParams,
	})
}

var _ ports.Plugin = (*Plugin)(nil)
