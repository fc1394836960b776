package score

import (
	"testing"

	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
)

func TestCombine(t *testing.T) {
	scores := []ports.WeightedScore{
		{PluginID: "a", Weight: 2, Score: 0.5},
		{PluginID: "b", Weight: 1, Score: 0.25},
		{PluginID: "c", Weight: 0, Score: 10},
	}

	tests := []struct {
		name string
		rule ports.ScoreRule
		want float64
	}{
		{name: "sum", rule: NewSum(), want: 10.75},
		{name: "weighted sum", rule: NewWeightedSum(), want: 1.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Combine(scores); got != tt.want {
				t.Errorf("Combine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", NameSum, NameWeightedSum} {
		if _, err := ByName(name); err != nil {
			t.Errorf("ByName(%q) error = %v", name, err)
		}
	}
	if _, err := ByName("median"); err == nil {
		t.Error("expected error for unknown rule")
	}
}
