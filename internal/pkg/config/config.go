package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// ETHICS_PIPELINE__MERGE_POLICY=average.
const EnvPrefix = "ETHICS_"

// Defaults applied when a key is absent from every source.
const (
	DefaultMergePolicy      = "overwrite"
	DefaultScoreRule        = "sum"
	DefaultBatchConcurrency = 8
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultServiceName      = "ethics-pipeline"
	DefaultSampleRatio      = 1.0
)

type Config struct {
	Pipeline  PipelineConfig  `koanf:"pipeline"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Store     StoreConfig     `koanf:"store"`
}

type PipelineConfig struct {
	MergePolicy      string         `koanf:"merge_policy"` // overwrite, average, weighted
	ScoreRule        string         `koanf:"score_rule"`   // sum, weighted_sum
	BatchConcurrency int            `koanf:"batch_concurrency"`
	Plugins          []PluginConfig `koanf:"plugins"`
}

// PluginConfig is the configuration block of one plugin instance.
type PluginConfig struct {
	ID       string         `koanf:"id"`
	Type     string         `koanf:"type"`
	Priority int            `koanf:"priority"`
	Enabled  *bool          `koanf:"enabled"`
	Weight   *float64       `koanf:"weight"`
	Params   map[string]any `koanf:"params"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text, json
}

type TelemetryConfig struct {
	Tracing     bool    `koanf:"tracing"` // spans written to stderr
	ServiceName string  `koanf:"service_name"`
	SampleRatio float64 `koanf:"sample_ratio"`
}

// StoreConfig points at an optional SQLite table of plugin descriptors that
// is loaded instead of pipeline.plugins when Path is set.
type StoreConfig struct {
	Path string `koanf:"path"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads configuration from the YAML file at path (skipped when path is
// empty or the file does not exist), then applies ETHICS_ environment
// overrides and defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// File not found is OK, we'll use env vars
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	// Load environment variables (can override file config)
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	defaults := map[string]any{
		"pipeline.merge_policy":      DefaultMergePolicy,
		"pipeline.score_rule":        DefaultScoreRule,
		"pipeline.batch_concurrency": DefaultBatchConcurrency,
		"logging.level":              DefaultLogLevel,
		"logging.format":             DefaultLogFormat,
		"telemetry.service_name":     DefaultServiceName,
		"telemetry.sample_ratio":     DefaultSampleRatio,
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	for i := range cfg.Pipeline.Plugins {
		cfg.Pipeline.Plugins[i].Params = substituteParams(cfg.Pipeline.Plugins[i].Params)
	}

	return &cfg, nil
}

// Descriptor converts the block into a plugin descriptor.
func (p PluginConfig) Descriptor() domain.Descriptor {
	return domain.Descriptor{
		ID:       p.ID,
		Type:     p.Type,
		Priority: p.Priority,
		Enabled:  p.Enabled,
		Weight:   p.Weight,
		Params:   p.Params,
	}
}

// Descriptors returns the configured plugins in declaration order.
func (c *Config) Descriptors() []domain.Descriptor {
	out := make([]domain.Descriptor, len(c.Pipeline.Plugins))
	for i, p := range c.Pipeline.Plugins {
		out[i] = p.Descriptor()
	}
	return out
}

// Validate checks the settings that do not depend on the plugin catalog.
func (c *Config) Validate() error {
	if c.Pipeline.BatchConcurrency < 0 {
		return fmt.Errorf("pipeline.batch_concurrency must not be negative, got %d", c.Pipeline.BatchConcurrency)
	}
	if r := c.Telemetry.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.sample_ratio must be within [0,1], got %g", r)
	}
	for i, p := range c.Pipeline.Plugins {
		if err := p.Descriptor().Validate(); err != nil {
			return fmt.Errorf("pipeline.plugins[%d]: %w", i, err)
		}
	}
	return nil
}

// substituteParams replaces ${VAR} references in string parameters.
func substituteParams(params map[string]any) map[string]any {
	for k, v := range params {
		switch val := v.(type) {
		case string:
			params[k] = substituteEnvVars(val)
		case map[string]any:
			params[k] = substituteParams(val)
		}
	}
	return params
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
