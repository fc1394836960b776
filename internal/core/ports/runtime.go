package ports

import (
	"context"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/pkg/config"
)

// ConfigProvider loads and manages configuration.
// Implementations: file-based with hot reload (default).
type ConfigProvider interface {
	Load(ctx context.Context) (*config.Config, error)
	Watch(ctx context.Context, onChange func(*config.Config)) error
	Close() error
}

// DescriptorSource supplies the ordered plugin descriptors of a pipeline.
// Implementations: inline list, config file, environment, SQLite table.
type DescriptorSource interface {
	Descriptors(ctx context.Context) ([]domain.Descriptor, error)
}

// EventPublisher publishes run events.
// Implementations: direct (handler, structured log, fan-out).
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.RunEvent) error
	Close() error
}
