package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
)

// Store is an in-memory implementation of ports.StorageProvider.
type Store struct {
	mu          sync.RWMutex
	descriptors []domain.Descriptor
}

var _ ports.StorageProvider = (*Store)(nil)

// New creates a new in-memory store
func New() *Store {
	return &Store{}
}

func (s *Store) Descriptors(ctx context.Context) ([]domain.Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDescriptors(s.descriptors), nil
}

func (s *Store) SaveDescriptors(ctx context.Context, descriptors []domain.Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.descriptors = cloneDescriptors(descriptors)
	return nil
}

func (s *Store) Close() error {
	return nil
}

func cloneDescriptors(in []domain.Descriptor) []domain.Descriptor {
	out := make([]domain.Descriptor, len(in))
	for i, d := range in {
		d.Params = maps.Clone(d.Params)
		out[i] = d
	}
	return out
}
