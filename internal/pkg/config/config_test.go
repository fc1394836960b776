package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Pipeline.MergePolicy != DefaultMergePolicy {
			t.Errorf("merge policy = %q, want %q", cfg.Pipeline.MergePolicy, DefaultMergePolicy)
		}
		if cfg.Pipeline.ScoreRule != DefaultScoreRule {
			t.Errorf("score rule = %q, want %q", cfg.Pipeline.ScoreRule, DefaultScoreRule)
		}
		if cfg.Pipeline.BatchConcurrency != DefaultBatchConcurrency {
			t.Errorf("batch concurrency = %d, want %d", cfg.Pipeline.BatchConcurrency, DefaultBatchConcurrency)
		}
		if cfg.Logging.Level != DefaultLogLevel {
			t.Errorf("log level = %q, want %q", cfg.Logging.Level, DefaultLogLevel)
		}
		if cfg.Telemetry.SampleRatio != DefaultSampleRatio {
			t.Errorf("sample ratio = %v, want %v", cfg.Telemetry.SampleRatio, DefaultSampleRatio)
		}
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	})

	t.Run("plugins from file", func(t *testing.T) {
		path := writeConfig(t, `
pipeline:
  merge_policy: average
  plugins:
    - id: autonomy
      type: adjust
      priority: 10
      weight: 2
      params:
        attribute: selfishness
        context_key: collaboration_level
        coefficient: 0.5
    - type: clamp
      priority: 20
      enabled: false
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Pipeline.MergePolicy != "average" {
			t.Errorf("merge policy = %q, want average", cfg.Pipeline.MergePolicy)
		}
		descs := cfg.Descriptors()
		if len(descs) != 2 {
			t.Fatalf("got %d descriptors, want 2", len(descs))
		}
		if descs[0].Identifier() != "autonomy" || descs[0].Priority != 10 {
			t.Errorf("first descriptor = %+v", descs[0])
		}
		if descs[0].EffectiveWeight() != 2 {
			t.Errorf("weight = %v, want 2", descs[0].EffectiveWeight())
		}
		if descs[0].Params["attribute"] != "selfishness" {
			t.Errorf("params = %v", descs[0].Params)
		}
		if descs[1].Identifier() != "clamp" {
			t.Errorf("second identifier = %q, want clamp", descs[1].Identifier())
		}
		if descs[1].IsEnabled() {
			t.Error("second descriptor should be disabled")
		}
	})

	t.Run("env var override", func(t *testing.T) {
		t.Setenv("ETHICS_PIPELINE__SCORE_RULE", "weighted_sum")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Pipeline.ScoreRule != "weighted_sum" {
			t.Errorf("score rule = %q, want weighted_sum", cfg.Pipeline.ScoreRule)
		}
	})
}

func TestValidate(t *testing.T) {
	negative := -1.0
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  Config{Pipeline: PipelineConfig{Plugins: []PluginConfig{{Type: "clamp"}}}},
		},
		{
			name:    "missing type",
			cfg:     Config{Pipeline: PipelineConfig{Plugins: []PluginConfig{{ID: "x"}}}},
			wantErr: true,
		},
		{
			name:    "negative weight",
			cfg:     Config{Pipeline: PipelineConfig{Plugins: []PluginConfig{{Type: "clamp", Weight: &negative}}}},
			wantErr: true,
		},
		{
			name:    "negative concurrency",
			cfg:     Config{Pipeline: PipelineConfig{BatchConcurrency: -2}},
			wantErr: true,
		},
		{
			name:    "sample ratio above one",
			cfg:     Config{Telemetry: TelemetryConfig{SampleRatio: 1.5}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "test-value")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple substitution",
			input: "${TEST_VAR}",
			want:  "test-value",
		},
		{
			name:  "substitution in string",
			input: "prefix-${TEST_VAR}-suffix",
			want:  "prefix-test-value-suffix",
		},
		{
			name:  "no substitution",
			input: "plain-string",
			want:  "plain-string",
		},
		{
			name:  "undefined var",
			input: "${UNDEFINED_VAR}",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := substituteEnvVars(tt.input)
			if got != tt.want {
				t.Errorf("substituteEnvVars() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubstituteParams(t *testing.T) {
	t.Setenv("PREFIX_TEXT", "Humble proposal: ")

	params := substituteParams(map[string]any{
		"prefix": "${PREFIX_TEXT}",
		"nested": map[string]any{"v": "${PREFIX_TEXT}"},
		"n":      3,
	})

	if params["prefix"] != "Humble proposal: " {
		t.Errorf("prefix = %q", params["prefix"])
	}
	if nested := params["nested"].(map[string]any); nested["v"] != "Humble proposal: " {
		t.Errorf("nested = %q", nested["v"])
	}
	if params["n"] != 3 {
		t.Errorf("n = %v", params["n"])
	}
}
