// Package file provides a descriptor source that reads the plugins block of
// a YAML configuration file.
package file

import (
	"context"
	"fmt"
	"os"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
	"github.com/tjfontaine/ethics-pipeline/internal/pkg/config"
)

// Source reads pipeline.plugins from a configuration file on every call,
// so each load sees the current file contents.
type Source struct {
	path string
}

// New creates a file source.
func New(path string) *Source {
	return &Source{path: path}
}

// Descriptors implements ports.DescriptorSource. A missing or malformed
// file is a source error; an invalid descriptor is a malformed error.
func (s *Source) Descriptors(ctx context.Context) ([]domain.Descriptor, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, domain.NewConfigurationError(domain.ConfigErrorSource, "", err)
	}

	cfg, err := config.Load(s.path)
	if err != nil {
		return nil, domain.NewConfigurationError(domain.ConfigErrorSource, "", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, &domain.ConfigurationError{
			Kind:    domain.ConfigErrorMalformed,
			Message: fmt.Sprintf("invalid plugins in %s", s.path),
			Err:     err,
		}
	}
	return cfg.Descriptors(), nil
}

var _ ports.DescriptorSource = (*Source)(nil)
