package ports

import (
	"context"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
)

// StorageProvider persists the descriptor list of a pipeline so that it can
// be loaded as a DescriptorSource. Descriptors come back in the order they
// were saved. Run results are never stored.
// Implementations: SQLite, in-memory.
type StorageProvider interface {
	DescriptorSource

	// SaveDescriptors replaces the stored descriptors.
	SaveDescriptors(ctx context.Context, descriptors []domain.Descriptor) error

	Close() error
}
