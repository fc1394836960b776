// Package runtime wires configuration, storage, events and telemetry around
// a pipeline manager and keeps it current as configuration changes.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tjfontaine/ethics-pipeline/internal/adapters/config/file"
	"github.com/tjfontaine/ethics-pipeline/internal/adapters/events/direct"
	"github.com/tjfontaine/ethics-pipeline/internal/adapters/storage/sqlite"
	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
	"github.com/tjfontaine/ethics-pipeline/internal/pipeline"
	"github.com/tjfontaine/ethics-pipeline/internal/pkg/config"
	"github.com/tjfontaine/ethics-pipeline/internal/plugin/registry"
	"github.com/tjfontaine/ethics-pipeline/internal/registration"
	"github.com/tjfontaine/ethics-pipeline/internal/telemetry"
)

// Runtime is the embeddable entry point of the ethics pipeline.
// It owns the configuration provider, descriptor storage and event
// publisher, builds a pipeline manager from the loaded configuration and
// rebuilds it when the configuration changes. A reload that fails keeps the
// previous pipeline.
type Runtime struct {
	// Dependencies (injected via options)
	config     ports.ConfigProvider
	configPath string
	handler    *direct.Publisher
	storage    ports.StorageProvider
	source     ports.DescriptorSource
	events     ports.EventPublisher
	catalog    *registry.Catalog
	registerer prometheus.Registerer
	logger     *slog.Logger
	watch      bool

	// Internal state
	metrics        *telemetry.Metrics
	shutdownTracer func(context.Context) error
	manager        *pipeline.Manager

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
}

// New creates a Runtime with the given options. A config provider is
// required; the built-in plugin catalog is used unless WithCatalog is given.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		logger: slog.Default(),
		watch:  true,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if r.configPath != "" {
		provider, err := file.NewProvider(r.configPath, file.WithLogger(r.logger))
		if err != nil {
			return nil, fmt.Errorf("create file config provider: %w", err)
		}
		r.config = provider
	}
	if r.config == nil {
		return nil, fmt.Errorf("config provider required (use WithFileConfig or WithConfigProvider)")
	}
	if r.events == nil {
		r.events = direct.NewLogPublisher(r.logger)
		if r.handler != nil {
			r.events = direct.Multi{r.handler, r.events}
		}
	}
	if r.catalog == nil {
		r.catalog = registration.NewCatalog()
	}
	if r.registerer != nil {
		metrics, err := telemetry.NewMetrics(r.registerer)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		r.metrics = metrics
	}

	return r, nil
}

// Start loads the configuration, builds the pipeline and, unless disabled,
// starts watching for configuration changes.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ctx, r.cancel = context.WithCancel(ctx)

	cfg, err := r.config.Load(r.ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if r.storage == nil && cfg.Store.Path != "" {
		provider, err := sqlite.NewProvider(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		r.storage = provider
	}
	if cfg.Telemetry.Tracing && r.shutdownTracer == nil {
		shutdown, err := telemetry.InitTracer(telemetry.TracerConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			SampleRatio: cfg.Telemetry.SampleRatio,
			Logger:      r.logger,
		})
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		r.shutdownTracer = shutdown
	}

	manager, err := r.buildManager(r.ctx, cfg)
	if err != nil {
		return fmt.Errorf("load pipeline: %w", err)
	}
	r.manager = manager

	if r.watch {
		if err := r.config.Watch(r.ctx, r.onConfigChange); err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
	}

	r.logger.Info("runtime started",
		slog.Int("plugins", len(manager.Plugins())),
		slog.String("merge_policy", cfg.Pipeline.MergePolicy),
		slog.String("score_rule", cfg.Pipeline.ScoreRule))

	return nil
}

// buildManager creates a manager for cfg and loads its plugins. A
// descriptor source option wins over the descriptor store, which wins over
// pipeline.plugins.
func (r *Runtime) buildManager(ctx context.Context, cfg *config.Config) (*pipeline.Manager, error) {
	opts, err := pipeline.PolicyOptions(cfg.Pipeline)
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		pipeline.WithCatalog(r.catalog),
		pipeline.WithLogger(r.logger),
		pipeline.WithPublisher(r.events),
		pipeline.WithMetrics(r.metrics),
	)

	m := pipeline.NewManager(opts...)
	switch {
	case r.source != nil:
		err = m.LoadFromSource(ctx, r.source)
	case r.storage != nil:
		err = m.LoadFromSource(ctx, r.storage)
	default:
		err = m.LoadFromDefault(cfg.Descriptors())
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Runtime) onConfigChange(cfg *config.Config) {
	r.logger.Info("config changed, reloading pipeline")
	if err := r.reload(cfg); err != nil {
		r.logger.Error("failed to reload pipeline, keeping previous",
			slog.String("error", err.Error()))
	}
}

// reload swaps in a pipeline built from cfg. On error the running pipeline
// is left in place.
func (r *Runtime) reload(cfg *config.Config) error {
	r.mu.RLock()
	ctx := r.ctx
	r.mu.RUnlock()
	if ctx == nil {
		return fmt.Errorf("runtime not started")
	}

	manager, err := r.buildManager(ctx, cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.manager = manager
	r.mu.Unlock()

	r.logger.Info("reload complete", slog.Int("plugins", len(manager.Plugins())))
	return nil
}

// Manager returns the current pipeline manager, or nil before Start.
// The returned manager stays valid after a reload; it just no longer
// receives configuration changes.
func (r *Runtime) Manager() *pipeline.Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.manager
}

// ProcessAction runs an action through the current pipeline.
func (r *Runtime) ProcessAction(ctx context.Context, action domain.Action, env domain.Context) (*domain.PipelineResult, error) {
	m := r.Manager()
	if m == nil {
		return nil, domain.ErrPipelineNotLoaded
	}
	return m.ProcessAction(ctx, action, env)
}

// Storage returns the descriptor storage, or nil when none is configured.
func (r *Runtime) Storage() ports.StorageProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.storage
}

// Shutdown stops watching configuration and releases every resource. Close
// errors are joined and returned after all resources have been closed.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Info("shutting down runtime")

	if r.cancel != nil {
		r.cancel()
	}

	steps := []closeStep{
		{"events", closer(r.events)},
		{"storage", closer(r.storage)},
		{"config", closer(r.config)},
	}
	if r.shutdownTracer != nil {
		steps = append(steps, closeStep{"tracer", func() error { return r.shutdownTracer(ctx) }})
	}

	var errs []error
	for _, step := range steps {
		if step.close == nil {
			continue
		}
		if err := step.close(); err != nil {
			r.logger.Error("failed to close "+step.name, slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("close %s: %w", step.name, err))
		}
	}

	r.logger.Info("runtime shutdown complete")
	return errors.Join(errs...)
}

type closeStep struct {
	name  string
	close func() error
}

func closer(c interface{ Close() error }) func() error {
	if c == nil {
		return nil
	}
	return c.Close
}
