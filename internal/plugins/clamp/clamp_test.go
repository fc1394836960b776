package clamp

import (
	"testing"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
)

func TestEvaluate(t *testing.T) {
	in := domain.NewAction("decision", "", map[string]domain.Value{
		"harm":     domain.Number(1.4),
		"fairness": domain.Number(-0.2),
		"benefit":  domain.Number(0.5),
		"urgent":   domain.Bool(true),
	})

	tests := []struct {
		name   string
		params map[string]any
		want   map[string]domain.Value
	}{
		{
			name:   "all numeric into unit range",
			params: nil,
			want: map[string]domain.Value{
				"harm": domain.Number(1), "fairness": domain.Number(0),
				"benefit": domain.Number(0.5), "urgent": domain.Bool(true),
			},
		},
		{
			name:   "listed only",
			params: map[string]any{"attributes": []any{"harm", "missing"}},
			want: map[string]domain.Value{
				"harm": domain.Number(1), "fairness": domain.Number(-0.2),
				"benefit": domain.Number(0.5), "urgent": domain.Bool(true),
			},
		},
		{
			name:   "custom range",
			params: map[string]any{"min": -1, "max": 0.4},
			want: map[string]domain.Value{
				"harm": domain.Number(0.4), "fairness": domain.Number(-0.2),
				"benefit": domain.Number(0.4), "urgent": domain.Bool(true),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Create(domain.Descriptor{Type: Type, Params: tt.params})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			v, err := p.Evaluate(in, domain.Context{})
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			want := domain.NewAction("decision", "", tt.want)
			if !v.Action.Equal(want) {
				t.Errorf("Action = %v, want %v", v.Action, want)
			}
		})
	}
}

func TestEvaluate_NoChangeNoRationale(t *testing.T) {
	p, _ := New(Params{})
	in := domain.NewAction("decision", "", map[string]domain.Value{"harm": domain.Number(0.3)})

	v, err := p.Evaluate(in, domain.Context{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !v.Action.Equal(in) || len(v.Rationale) != 0 {
		t.Errorf("unexpected verdict: %+v", v)
	}
}

func TestValidateParams(t *testing.T) {
	if err := ValidateParams(map[string]any{"min": 2}); err == nil {
		t.Error("expected error when min exceeds default max")
	}
	if err := ValidateParams(map[string]any{"attributes": []any{""}}); err == nil {
		t.Error("expected error for empty attribute name")
	}
	if err := ValidateParams(map[string]any{"max": 5}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
