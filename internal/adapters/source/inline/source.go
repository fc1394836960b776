// Package inline provides a descriptor source backed by a fixed list.
package inline

import (
	"context"
	"maps"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
)

// Source returns the descriptors it was built with, in order.
type Source struct {
	descriptors []domain.Descriptor
}

// New creates a source from descriptors. The slice is copied.
func New(descriptors ...domain.Descriptor) *Source {
	return &Source{descriptors: clone(descriptors)}
}

// Descriptors implements ports.DescriptorSource.
func (s *Source) Descriptors(ctx context.Context) ([]domain.Descriptor, error) {
	return clone(s.descriptors), nil
}

func clone(in []domain.Descriptor) []domain.Descriptor {
	out := make([]domain.Descriptor, len(in))
	for i, d := range in {
		d.Params = maps.Clone(d.Params)
		out[i] = d
	}
	return out
}

var _ ports.DescriptorSource = (*Source)(nil)
