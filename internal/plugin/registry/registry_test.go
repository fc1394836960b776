package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
)

func identity() ports.Plugin {
	return ports.PluginFunc(func(a domain.Action, _ domain.Context) (*domain.Verdict, error) {
		return domain.NewVerdict(a), nil
	})
}

func testCatalog() *Catalog {
	c := NewCatalog()
	c.Register(Factory{
		Type:        "noop",
		Description: "returns the action unchanged",
		Create: func(domain.Descriptor) (ports.Plugin, error) {
			return identity(), nil
		},
	})
	c.Register(Factory{
		Type: "strict",
		Create: func(domain.Descriptor) (ports.Plugin, error) {
			return identity(), nil
		},
		ValidateParams: func(params map[string]any) error {
			if _, ok := params["required"]; !ok {
				return errors.New("required param missing")
			}
			return nil
		},
	})
	c.Register(Factory{
		Type: "broken",
		Create: func(domain.Descriptor) (ports.Plugin, error) {
			return nil, errors.New("cannot build")
		},
	})
	c.Register(Factory{
		Type: "nil",
		Create: func(domain.Descriptor) (ports.Plugin, error) {
			return nil, nil
		},
	})
	return c
}

func TestCatalog_ListSorted(t *testing.T) {
	c := testCatalog()
	got := strings.Join(c.Types(), ",")
	if got != "broken,nil,noop,strict" {
		t.Errorf("Types() = %s", got)
	}
	if !c.IsRegistered("noop") {
		t.Error("noop should be registered")
	}
	if c.IsRegistered("missing") {
		t.Error("missing should not be registered")
	}
}

func TestCatalog_RegisterPanics(t *testing.T) {
	tests := []struct {
		name    string
		factory Factory
	}{
		{name: "empty type", factory: Factory{Create: func(domain.Descriptor) (ports.Plugin, error) { return nil, nil }}},
		{name: "nil create", factory: Factory{Type: "x"}},
		{name: "duplicate", factory: Factory{Type: "noop", Create: func(domain.Descriptor) (ports.Plugin, error) { return nil, nil }}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCatalog()
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			c.Register(tt.factory)
		})
	}
}

func TestCatalog_Create(t *testing.T) {
	tests := []struct {
		name     string
		desc     domain.Descriptor
		wantKind domain.ConfigurationErrorKind
	}{
		{name: "ok", desc: domain.Descriptor{Type: "noop"}},
		{name: "ok with params", desc: domain.Descriptor{Type: "strict", Params: map[string]any{"required": true}}},
		{name: "empty type", desc: domain.Descriptor{ID: "x"}, wantKind: domain.ConfigErrorMalformed},
		{name: "unknown type", desc: domain.Descriptor{Type: "pkg.module:Class"}, wantKind: domain.ConfigErrorUnknownType},
		{name: "invalid params", desc: domain.Descriptor{Type: "strict"}, wantKind: domain.ConfigErrorMalformed},
		{name: "factory error", desc: domain.Descriptor{Type: "broken"}, wantKind: domain.ConfigErrorInstantiation},
		{name: "nil plugin", desc: domain.Descriptor{Type: "nil"}, wantKind: domain.ConfigErrorInstantiation},
	}

	c := testCatalog()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.Create(tt.desc)
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if p == nil {
					t.Fatal("expected plugin")
				}
				return
			}

			var ce *domain.ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigurationError, got %T (%v)", err, err)
			}
			if ce.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", ce.Kind, tt.wantKind)
			}
			if err := c.Validate(tt.desc); err == nil && tt.wantKind != domain.ConfigErrorInstantiation {
				t.Error("Validate() should reject the descriptor too")
			}
		})
	}
}
