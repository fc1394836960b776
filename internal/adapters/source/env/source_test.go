package env

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    []domain.Descriptor
		wantErr bool
	}{
		{name: "empty", value: "", want: []domain.Descriptor{}},
		{name: "blank entries", value: " , ,", want: []domain.Descriptor{}},
		{
			name:  "type only",
			value: "adjust",
			want:  []domain.Descriptor{{Type: "adjust", Priority: DefaultPriority}},
		},
		{
			name:  "mixed",
			value: "adjust:1, fairness=clamp:-5 ,gate=threshold",
			want: []domain.Descriptor{
				{Type: "adjust", Priority: 1},
				{ID: "fairness", Type: "clamp", Priority: -5},
				{ID: "gate", Type: "threshold", Priority: DefaultPriority},
			},
		},
		{name: "bad priority", value: "adjust:high", wantErr: true},
		{name: "empty type", value: "x=:1", wantErr: true},
		{name: "empty id", value: "=adjust", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSource_Descriptors(t *testing.T) {
	t.Setenv(DefaultVar, "adjust:2,clamp:1")

	got, err := New().Descriptors(context.Background())
	if err != nil {
		t.Fatalf("Descriptors() error = %v", err)
	}
	if len(got) != 2 || got[0].Type != "adjust" || got[1].Priority != 1 {
		t.Errorf("Descriptors() = %+v", got)
	}
}

func TestSource_MalformedIsConfigurationError(t *testing.T) {
	lookup := func(string) (string, bool) { return "adjust:x", true }

	_, err := New(WithVar("CUSTOM"), WithLookup(lookup)).Descriptors(context.Background())
	var ce *domain.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want ConfigurationError", err)
	}
	if ce.Kind != domain.ConfigErrorMalformed {
		t.Errorf("Kind = %q, want %q", ce.Kind, domain.ConfigErrorMalformed)
	}
}
