package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
	"github.com/tjfontaine/ethics-pipeline/internal/plugin/registry"
	"github.com/tjfontaine/ethics-pipeline/internal/telemetry"
)

// DefaultBatchConcurrency bounds ProcessBatch when no limit is configured.
const DefaultBatchConcurrency = 8

// ErrPluginNotFound is returned by Enable for an unregistered identifier.
var ErrPluginNotFound = errors.New("plugin not found")

// Request is one action/context pair of a batch.
type Request struct {
	Action  domain.Action
	Context domain.Context
}

// Manager owns the active plugin registry and runs actions through it.
//
// Loads build a new registry and swap it in only on success, so a failed
// reload leaves the previous pipeline serving. All methods are safe for
// concurrent use.
type Manager struct {
	catalog          *registry.Catalog
	logger           *slog.Logger
	mergePolicy      ports.MergePolicy
	scoreRule        ports.ScoreRule
	publisher        ports.EventPublisher
	metrics          *telemetry.Metrics
	tracer           trace.Tracer
	batchConcurrency int

	aggregator *Aggregator

	mu  sync.RWMutex
	reg *Registry
}

// Option configures a Manager.
type Option func(*Manager)

// WithCatalog sets the plugin catalog used to resolve descriptors.
func WithCatalog(c *registry.Catalog) Option {
	return func(m *Manager) {
		m.catalog = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithMergePolicy sets how attribute proposals are resolved.
func WithMergePolicy(p ports.MergePolicy) Option {
	return func(m *Manager) {
		m.mergePolicy = p
	}
}

// WithScoreRule sets how plugin scores are combined.
func WithScoreRule(r ports.ScoreRule) Option {
	return func(m *Manager) {
		m.scoreRule = r
	}
}

// WithPublisher sets the publisher that receives a RunEvent per run.
func WithPublisher(p ports.EventPublisher) Option {
	return func(m *Manager) {
		m.publisher = p
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(mt *telemetry.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// WithTracerProvider sets the tracer provider for run and plugin spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Manager) {
		m.tracer = tp.Tracer(telemetry.InstrumentationName)
	}
}

// WithBatchConcurrency bounds the number of concurrent runs in ProcessBatch.
func WithBatchConcurrency(n int) Option {
	return func(m *Manager) {
		m.batchConcurrency = n
	}
}

// NewManager creates a manager with no pipeline loaded.
func NewManager(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.catalog == nil {
		m.catalog = registry.NewCatalog()
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.tracer == nil {
		m.tracer = telemetry.Tracer()
	}
	if m.batchConcurrency <= 0 {
		m.batchConcurrency = DefaultBatchConcurrency
	}
	m.aggregator = NewAggregator(AggregatorConfig{
		MergePolicy: m.mergePolicy,
		ScoreRule:   m.scoreRule,
		Logger:      m.logger,
		Metrics:     m.metrics,
		Tracer:      m.tracer,
	})
	return m
}

// Catalog returns the catalog descriptors are resolved against. Custom
// factories registered on it are available to the next load.
func (m *Manager) Catalog() *registry.Catalog {
	return m.catalog
}

// LoadFromDefault builds the pipeline from in-memory descriptors.
func (m *Manager) LoadFromDefault(descriptors []domain.Descriptor) error {
	reg, err := LoadRegistry(m.catalog, descriptors)
	if err != nil {
		m.logger.Error("pipeline load failed", slog.String("error", err.Error()))
		return err
	}
	m.swap(reg)
	return nil
}

// LoadFromSource builds the pipeline from the descriptors a source returns.
// Source errors are reported as configuration errors of kind source.
func (m *Manager) LoadFromSource(ctx context.Context, source ports.DescriptorSource) error {
	descriptors, err := source.Descriptors(ctx)
	if err != nil {
		if !domain.IsConfigurationError(err) {
			err = domain.NewConfigurationError(domain.ConfigErrorSource, "", err)
		}
		m.logger.Error("pipeline source failed", slog.String("error", err.Error()))
		return err
	}
	return m.LoadFromDefault(descriptors)
}

func (m *Manager) swap(reg *Registry) {
	m.mu.Lock()
	m.reg = reg
	m.mu.Unlock()

	m.logger.Info("pipeline loaded", slog.Int("plugins", reg.Len()))
}

func (m *Manager) current() *Registry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reg
}

// Loaded reports whether a pipeline is available.
func (m *Manager) Loaded() bool {
	return m.current() != nil
}

// ProcessAction runs one action through the pipeline. Plugin failures are
// reported in the result; the only error is domain.ErrPipelineNotLoaded.
func (m *Manager) ProcessAction(ctx context.Context, action domain.Action, env domain.Context) (*domain.PipelineResult, error) {
	reg := m.current()
	if reg == nil {
		return nil, domain.ErrPipelineNotLoaded
	}
	return m.process(ctx, reg, action, env), nil
}

// ProcessBatch runs independent requests concurrently against the same
// pipeline. Results are in request order.
func (m *Manager) ProcessBatch(ctx context.Context, reqs []Request) ([]*domain.PipelineResult, error) {
	reg := m.current()
	if reg == nil {
		return nil, domain.ErrPipelineNotLoaded
	}

	results := make([]*domain.PipelineResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.batchConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = m.process(gctx, reg, req.Action, req.Context)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (m *Manager) process(ctx context.Context, reg *Registry, action domain.Action, env domain.Context) *domain.PipelineResult {
	ctx, span := m.tracer.Start(ctx, "pipeline.process", trace.WithAttributes(
		attribute.String("action.kind", action.Kind()),
		attribute.Int("pipeline.plugins", reg.Len()),
	))
	defer span.End()

	start := time.Now()
	result, steps := m.aggregator.Aggregate(ctx, reg.Active(), action, env)

	event := &domain.RunEvent{
		Type:      runEventType(result),
		RunID:     uuid.NewString(),
		Timestamp: start.UTC(),
		Duration:  time.Since(start),
		Kind:      action.Kind(),
		Steps:     steps,
		Score:     result.Score,
		Partial:   result.Partial,
	}

	span.SetAttributes(
		attribute.String("run.id", event.RunID),
		attribute.Int("run.failures", len(result.Failures)),
	)
	if result.Partial {
		span.SetStatus(codes.Error, "run stopped early")
	}
	m.metrics.RecordRun(strings.TrimPrefix(string(event.Type), "run."))

	if m.publisher != nil {
		if err := m.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
			m.logger.Warn("failed to publish run event",
				slog.String("run_id", event.RunID),
				slog.String("error", err.Error()),
			)
		}
	}
	return result
}

func runEventType(r *domain.PipelineResult) domain.RunEventType {
	switch {
	case r.Partial:
		return domain.RunEventPartial
	case r.Failed():
		return domain.RunEventDegraded
	default:
		return domain.RunEventCompleted
	}
}

// Plugins lists the loaded plugins in evaluation order.
func (m *Manager) Plugins() []PluginInfo {
	reg := m.current()
	if reg == nil {
		return []PluginInfo{}
	}
	return reg.Infos()
}

// Enable turns a loaded plugin on or off until the next load.
func (m *Manager) Enable(id string, enabled bool) error {
	reg := m.current()
	if reg == nil {
		return domain.ErrPipelineNotLoaded
	}
	if !reg.SetEnabled(id, enabled) {
		return fmt.Errorf("%w: %s", ErrPluginNotFound, id)
	}
	m.logger.Info("plugin toggled", slog.String("plugin", id), slog.Bool("enabled", enabled))
	return nil
}

// Clear replaces the pipeline with an empty one. Actions processed
// afterwards come back unchanged.
func (m *Manager) Clear() {
	m.swap(NewRegistry())
}
