package runtime

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tjfontaine/ethics-pipeline/internal/adapters/events/direct"
	envsource "github.com/tjfontaine/ethics-pipeline/internal/adapters/source/env"
	filesource "github.com/tjfontaine/ethics-pipeline/internal/adapters/source/file"
	"github.com/tjfontaine/ethics-pipeline/internal/adapters/source/inline"
	"github.com/tjfontaine/ethics-pipeline/internal/adapters/storage/sqlite"
	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
	"github.com/tjfontaine/ethics-pipeline/internal/plugin/registry"
	"github.com/tjfontaine/ethics-pipeline/internal/storage/memory"
)

// Option is a functional option for configuring a Runtime.
type Option func(*Runtime) error

// WithFileConfig uses file-based configuration with hot-reload. The
// provider is created by New, after every option has been applied.
func WithFileConfig(path string) Option {
	return func(r *Runtime) error {
		if path == "" {
			return fmt.Errorf("config path cannot be empty")
		}
		r.configPath = path
		r.config = nil
		return nil
	}
}

// WithConfigProvider uses a custom configuration provider.
func WithConfigProvider(provider ports.ConfigProvider) Option {
	return func(r *Runtime) error {
		r.config = provider
		r.configPath = ""
		return nil
	}
}

// WithDescriptorSource loads the pipeline from src instead of the
// configuration. The source is read again on every reload.
func WithDescriptorSource(src ports.DescriptorSource) Option {
	return func(r *Runtime) error {
		if src == nil {
			return fmt.Errorf("descriptor source cannot be nil")
		}
		r.source = src
		return nil
	}
}

// WithDescriptors loads a fixed list of plugins.
func WithDescriptors(descriptors ...domain.Descriptor) Option {
	return WithDescriptorSource(inline.New(descriptors...))
}

// WithPluginsFile loads pipeline.plugins from a separate YAML file.
func WithPluginsFile(path string) Option {
	return func(r *Runtime) error {
		if path == "" {
			return fmt.Errorf("plugins file path cannot be empty")
		}
		r.source = filesource.New(path)
		return nil
	}
}

// WithEnvPlugins loads the plugin list from the ETHICS_PLUGINS environment
// variable.
func WithEnvPlugins() Option {
	return WithDescriptorSource(envsource.New())
}

// WithSQLite loads plugin descriptors from the SQLite database at path
// instead of pipeline.plugins.
func WithSQLite(path string) Option {
	return func(r *Runtime) error {
		provider, err := sqlite.NewProvider(path)
		if err != nil {
			return fmt.Errorf("create sqlite storage: %w", err)
		}
		r.storage = provider
		return nil
	}
}

// WithMemoryStorage loads plugin descriptors from an in-memory store,
// initially empty. Fill it through Storage before Start.
func WithMemoryStorage() Option {
	return func(r *Runtime) error {
		r.storage = memory.New()
		return nil
	}
}

// WithStorageProvider loads plugin descriptors from a custom store.
func WithStorageProvider(provider ports.StorageProvider) Option {
	return func(r *Runtime) error {
		if provider == nil {
			return fmt.Errorf("storage provider cannot be nil")
		}
		r.storage = provider
		return nil
	}
}

// WithEventHandler delivers every run event to handler, in the goroutine
// that ran the action, in addition to the structured log.
func WithEventHandler(handler direct.Handler) Option {
	return func(r *Runtime) error {
		publisher, err := direct.NewPublisher(handler)
		if err != nil {
			return fmt.Errorf("create direct publisher: %w", err)
		}
		r.handler = publisher
		r.events = nil
		return nil
	}
}

// WithLogEvents only logs run events. This is the default.
func WithLogEvents() Option {
	return func(r *Runtime) error {
		r.handler = nil
		r.events = nil
		return nil
	}
}

// WithEventPublisher uses a custom event publisher.
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(r *Runtime) error {
		if publisher == nil {
			return fmt.Errorf("event publisher cannot be nil")
		}
		r.handler = nil
		r.events = publisher
		return nil
	}
}

// WithLogger sets a custom logger. It applies to every adapter New builds,
// regardless of option order.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		r.logger = logger
		return nil
	}
}

// WithCatalog resolves plugin descriptors against a custom catalog instead
// of the built-in one.
func WithCatalog(catalog *registry.Catalog) Option {
	return func(r *Runtime) error {
		if catalog == nil {
			return fmt.Errorf("catalog cannot be nil")
		}
		r.catalog = catalog
		return nil
	}
}

// WithMetricsRegisterer registers pipeline metrics with reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(r *Runtime) error {
		r.registerer = reg
		return nil
	}
}

// WithoutWatch disables configuration hot-reload.
func WithoutWatch() Option {
	return func(r *Runtime) error {
		r.watch = false
		return nil
	}
}
