package pipeline

import (
	"github.com/tjfontaine/ethics-pipeline/internal/adapters/policy/merge"
	"github.com/tjfontaine/ethics-pipeline/internal/adapters/policy/score"
	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/pkg/config"
	"github.com/tjfontaine/ethics-pipeline/internal/plugin/registry"
)

// NewManagerFromConfig creates a manager from configuration and loads the
// configured plugins. Options in opts override those derived from cfg.
func NewManagerFromConfig(cfg *config.Config, catalog *registry.Catalog, opts ...Option) (*Manager, error) {
	base, err := PolicyOptions(cfg.Pipeline)
	if err != nil {
		return nil, err
	}
	base = append(base, WithCatalog(catalog))

	m := NewManager(append(base, opts...)...)
	if err := m.LoadFromDefault(cfg.Descriptors()); err != nil {
		return nil, err
	}
	return m, nil
}

// PolicyOptions resolves the merge policy, score rule and batch limit named
// in pipeline configuration.
func PolicyOptions(cfg config.PipelineConfig) ([]Option, error) {
	mp, err := merge.ByName(cfg.MergePolicy)
	if err != nil {
		return nil, domain.NewConfigurationError(domain.ConfigErrorMalformed, "", err)
	}
	sr, err := score.ByName(cfg.ScoreRule)
	if err != nil {
		return nil, domain.NewConfigurationError(domain.ConfigErrorMalformed, "", err)
	}
	return []Option{
		WithMergePolicy(mp),
		WithScoreRule(sr),
		WithBatchConcurrency(cfg.BatchConcurrency),
	}, nil
}
