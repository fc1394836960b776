package params

import (
	"testing"
)

type sample struct {
	Name  string   `mapstructure:"name"`
	Ratio *float64 `mapstructure:"ratio"`
	Keys  []string `mapstructure:"keys"`
}

func TestDecode(t *testing.T) {
	var s sample
	err := Decode(map[string]any{"name": "harm", "ratio": "0.5", "keys": []any{"a", "b"}}, &s)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if s.Name != "harm" || s.Ratio == nil || *s.Ratio != 0.5 || len(s.Keys) != 2 {
		t.Errorf("Decode() = %+v", s)
	}
}

func TestDecode_NilParams(t *testing.T) {
	var s sample
	if err := Decode(nil, &s); err != nil {
		t.Fatalf("Decode(nil) error = %v", err)
	}
	if s.Ratio != nil {
		t.Error("expected unset ratio")
	}
}

func TestDecode_UnknownKey(t *testing.T) {
	var s sample
	if err := Decode(map[string]any{"nmae": "typo"}, &s); err == nil {
		t.Error("expected error for unknown key")
	}
}
