package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestActionFromMap(t *testing.T) {
	a, err := ActionFromMap(map[string]any{
		"type":        "decision",
		"content":     "share the data",
		"selfishness": 1,
		"urgent":      true,
		"attributes":  map[string]any{"fairness": 0.5},
	})
	if err != nil {
		t.Fatalf("ActionFromMap: %v", err)
	}
	if a.Kind() != "decision" || a.Content() != "share the data" {
		t.Errorf("kind/content = %q/%q", a.Kind(), a.Content())
	}
	if diff := cmp.Diff([]string{"fairness", "selfishness", "urgent"}, a.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if f, _ := a.Float("selfishness"); f != 1 {
		t.Errorf("selfishness = %v, want 1", f)
	}
	if f, _ := a.Float("urgent"); f != 1 {
		t.Errorf("urgent as float = %v, want 1", f)
	}
}

func TestActionFromMap_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
	}{
		{"non-string kind", map[string]any{"kind": 3}},
		{"non-string content", map[string]any{"content": true}},
		{"string attribute", map[string]any{"label": "x"}},
		{"attributes not a map", map[string]any{"attributes": []any{1}}},
		{"nested string attribute", map[string]any{"attributes": map[string]any{"label": "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ActionFromMap(tt.in); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestAction_Immutable(t *testing.T) {
	orig := NewAction("message", "hi", map[string]Value{"selfishness": Number(0.9)})

	changed := orig.WithNumber("selfishness", 0.1).
		WithBool("flagged", true).
		WithKind("warning").
		WithContent("careful").
		WithoutAttribute("selfishness")

	if f, _ := orig.Float("selfishness"); f != 0.9 {
		t.Errorf("original selfishness = %v, want 0.9", f)
	}
	if orig.Has("flagged") || orig.Kind() != "message" || orig.Content() != "hi" {
		t.Errorf("original modified: %v", orig.ToMap())
	}
	if changed.Has("selfishness") || !changed.Has("flagged") || changed.Kind() != "warning" {
		t.Errorf("changed = %v", changed.ToMap())
	}

	attrs := orig.Attributes()
	attrs["selfishness"] = Number(0)
	if f, _ := orig.Float("selfishness"); f != 0.9 {
		t.Error("Attributes() exposed the internal map")
	}
}

func TestAction_Equal(t *testing.T) {
	a := NewAction("k", "c", map[string]Value{"x": Number(1)})
	tests := []struct {
		name string
		b    Action
		want bool
	}{
		{"same", NewAction("k", "c", map[string]Value{"x": Number(1)}), true},
		{"different kind", a.WithKind("other"), false},
		{"different content", a.WithContent("other"), false},
		{"bool vs number", NewAction("k", "c", map[string]Value{"x": Bool(true)}), false},
		{"extra attribute", a.WithNumber("y", 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAction_JSON(t *testing.T) {
	a := NewAction("message", "hi", map[string]Value{"selfishness": Number(0.85), "ok": Bool(false)})
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"kind":"message","content":"hi","attributes":{"ok":false,"selfishness":0.85}}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back Action
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(a) {
		t.Errorf("decoded %v, want %v", back.ToMap(), a.ToMap())
	}
}

func TestValue(t *testing.T) {
	if _, ok := Bool(true).Float(); ok {
		t.Error("Float on a bool should report !ok")
	}
	if _, ok := Number(1).Bool(); ok {
		t.Error("Bool on a number should report !ok")
	}
	if !Number(-2).Truthy() || Number(0).Truthy() || Bool(false).Truthy() {
		t.Error("unexpected truthiness")
	}
	if Bool(true).AsFloat() != 1 || Bool(false).AsFloat() != 0 {
		t.Error("booleans should read as 1 and 0")
	}
	if Number(0.5).String() != "0.5" || Bool(true).String() != "true" {
		t.Error("unexpected String output")
	}

	var v Value
	if err := json.Unmarshal([]byte(`"text"`), &v); err == nil {
		t.Error("expected error decoding a string")
	}
	if err := json.Unmarshal([]byte(`12`), &v); err != nil || !v.Equal(Number(12)) {
		t.Errorf("decoded %v, %v", v, err)
	}
}

func TestContext(t *testing.T) {
	c, err := ContextFromMap(map[string]any{"collaboration_level": 0.1, "public": true})
	if err != nil {
		t.Fatal(err)
	}
	if f, ok := c.Float("collaboration_level"); !ok || f != 0.1 {
		t.Errorf("Float = %v, %v", f, ok)
	}
	if flag, ok := c.Flag("public"); !ok || !flag {
		t.Errorf("Flag = %v, %v", flag, ok)
	}
	if _, ok := c.Float("missing"); ok {
		t.Error("missing key reported present")
	}
	if diff := cmp.Diff([]string{"collaboration_level", "public"}, c.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	var back Context
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Len() != 2 || !back.Has("public") {
		t.Errorf("decoded context = %s", data)
	}

	if _, err := ContextFromMap(map[string]any{"name": "x"}); err == nil {
		t.Error("expected error for a string value")
	}
}

func TestDescriptor(t *testing.T) {
	disabled := false
	negative := -1.0
	tests := []struct {
		name       string
		d          Descriptor
		identifier string
		enabled    bool
		weight     float64
		wantErr    bool
	}{
		{"defaults", Descriptor{Type: "clamp"}, "clamp", true, DefaultWeight, false},
		{"explicit id", Descriptor{ID: "bounds", Type: "clamp", Enabled: &disabled}, "bounds", false, DefaultWeight, false},
		{"missing type", Descriptor{ID: "x"}, "x", true, DefaultWeight, true},
		{"negative weight", Descriptor{Type: "clamp", Weight: &negative}, "clamp", true, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Identifier(); got != tt.identifier {
				t.Errorf("Identifier = %q, want %q", got, tt.identifier)
			}
			if got := tt.d.IsEnabled(); got != tt.enabled {
				t.Errorf("IsEnabled = %v, want %v", got, tt.enabled)
			}
			if got := tt.d.EffectiveWeight(); got != tt.weight {
				t.Errorf("EffectiveWeight = %v, want %v", got, tt.weight)
			}
			if err := tt.d.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDescriptor_RejectsNonFiniteWeight(t *testing.T) {
	for _, w := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		d := Descriptor{Type: "clamp", Weight: &w}
		if err := d.Validate(); err == nil {
			t.Errorf("Validate(weight=%v) = nil, want error", w)
		}
	}
}

func TestAction_IsZero(t *testing.T) {
	if !(Action{}).IsZero() {
		t.Error("zero Action: IsZero = false")
	}
	if NewAction("", "", nil).IsZero() {
		t.Error("NewAction with no fields: IsZero = true")
	}
	if (Action{}).WithContent("x").IsZero() {
		t.Error("action with content: IsZero = true")
	}
}

func TestPipelineResult_Lookup(t *testing.T) {
	r := &PipelineResult{
		Verdicts: []Verdict{{PluginID: "a"}},
		Failures: []PluginFailure{{PluginID: "b", Message: "boom"}},
	}
	if !r.Failed() {
		t.Error("Failed = false, want true")
	}
	if _, ok := r.Verdict("a"); !ok {
		t.Error("verdict a not found")
	}
	if f, ok := r.Failure("b"); !ok || f.Message != "boom" {
		t.Errorf("Failure(b) = %+v, %v", f, ok)
	}
	if _, ok := r.Verdict("b"); ok {
		t.Error("failed plugin reported a verdict")
	}
}

func TestRunEvent_Failures(t *testing.T) {
	e := &RunEvent{Steps: []StepReport{{PluginID: "a"}, {PluginID: "b", Error: "x"}, {PluginID: "c", Error: "y"}}}
	if got := e.Failures(); got != 2 {
		t.Errorf("Failures = %d, want 2", got)
	}
}
