package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/tjfontaine/ethics-pipeline/internal/adapters/policy/merge"
	"github.com/tjfontaine/ethics-pipeline/internal/adapters/policy/score"
	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
	"github.com/tjfontaine/ethics-pipeline/internal/telemetry"
)

// Aggregator folds an action through plugins in order.
// It holds no per-run state and is safe for concurrent use.
type Aggregator struct {
	merge   ports.MergePolicy
	score   ports.ScoreRule
	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer
}

// AggregatorConfig configures an Aggregator. Zero fields take defaults:
// overwrite merge, sum score, the default logger, no metrics, no tracing.
type AggregatorConfig struct {
	MergePolicy ports.MergePolicy
	ScoreRule   ports.ScoreRule
	Logger      *slog.Logger
	Metrics     *telemetry.Metrics
	Tracer      trace.Tracer
}

// NewAggregator creates an aggregator from configuration.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	a := &Aggregator{
		merge:   cfg.MergePolicy,
		score:   cfg.ScoreRule,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		tracer:  cfg.Tracer,
	}
	if a.merge == nil {
		a.merge = merge.NewOverwrite()
	}
	if a.score == nil {
		a.score = score.NewSum()
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.tracer == nil {
		a.tracer = noop.NewTracerProvider().Tracer(telemetry.InstrumentationName)
	}
	return a
}

// Aggregate runs action through plugins and returns the result together
// with a per-step report for observers.
//
// A plugin failure leaves the current action untouched and is recorded in
// the result. If ctx is done before a plugin runs, that plugin and every
// later one are recorded as failures and the result is marked partial.
func (a *Aggregator) Aggregate(ctx context.Context, plugins iter.Seq[Entry], action domain.Action, env domain.Context) (*domain.PipelineResult, []domain.StepReport) {
	result := &domain.PipelineResult{
		Verdicts: []domain.Verdict{},
		Failures: []domain.PluginFailure{},
	}
	var (
		steps     []domain.StepReport
		scores    []ports.WeightedScore
		proposals = make(map[string][]ports.Proposal)
		current   = action
		stopErr   error
	)

	for e := range plugins {
		if stopErr == nil {
			stopErr = ctx.Err()
		}
		if stopErr != nil {
			result.Partial = true
			err := &domain.PluginEvaluationError{PluginID: e.ID, Reason: "skipped", Err: stopErr}
			result.Failures = append(result.Failures, failure(e, err))
			steps = append(steps, domain.StepReport{PluginID: e.ID, Priority: e.Priority, Error: err.Error()})
			a.metrics.RecordEvaluation(e.ID, telemetry.OutcomeSkipped, 0)
			continue
		}

		_, span := a.tracer.Start(ctx, "plugin.evaluate", trace.WithAttributes(
			attribute.String("plugin.id", e.ID),
			attribute.String("plugin.type", e.Type),
			attribute.Int("plugin.priority", e.Priority),
		))
		start := time.Now()
		verdict, err := evaluate(e, current, env)
		elapsed := time.Since(start)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()

			a.logger.Warn("plugin evaluation failed",
				slog.String("plugin", e.ID),
				slog.Int("priority", e.Priority),
				slog.String("error", err.Error()),
			)
			result.Failures = append(result.Failures, failure(e, err))
			steps = append(steps, domain.StepReport{PluginID: e.ID, Priority: e.Priority, Duration: elapsed, Error: err.Error()})
			a.metrics.RecordEvaluation(e.ID, telemetry.OutcomeFailure, elapsed)
			continue
		}

		changed := !verdict.Action.Equal(current)
		current = a.apply(e, current, verdict.Action, proposals)

		v := domain.Verdict{
			PluginID:  e.ID,
			Priority:  e.Priority,
			Action:    verdict.Action,
			Score:     verdict.Score,
			Rationale: slices.Clone(verdict.Rationale),
			Changed:   changed,
		}
		if v.Score != nil {
			s := *v.Score
			v.Score = &s
			scores = append(scores, ports.WeightedScore{PluginID: e.ID, Priority: e.Priority, Weight: e.Weight, Score: s})
		}
		result.Verdicts = append(result.Verdicts, v)
		steps = append(steps, domain.StepReport{PluginID: e.ID, Priority: e.Priority, Duration: elapsed, Changed: changed})

		span.SetAttributes(attribute.Bool("plugin.changed", changed))
		span.End()
		a.metrics.RecordEvaluation(e.ID, telemetry.OutcomeSuccess, elapsed)
	}

	result.Action = current
	if len(scores) > 0 {
		total := a.score.Combine(scores)
		result.Score = &total
	}
	return result, steps
}

// apply merges a plugin's output into the current action. Attributes the
// plugin changed or added become proposals resolved by the merge policy;
// attributes it dropped are removed. Kind and content follow the output.
func (a *Aggregator) apply(e Entry, in, out domain.Action, proposals map[string][]ports.Proposal) domain.Action {
	attrs := in.Attributes()

	for _, k := range in.Keys() {
		if !out.Has(k) {
			delete(attrs, k)
			delete(proposals, k)
		}
	}

	for _, k := range out.Keys() {
		v, _ := out.Attribute(k)
		if old, ok := in.Attribute(k); ok && old.Equal(v) {
			continue
		}
		proposals[k] = append(proposals[k], ports.Proposal{
			PluginID: e.ID,
			Priority: e.Priority,
			Weight:   e.Weight,
			Value:    v,
		})
		attrs[k] = a.merge.Resolve(k, proposals[k])
	}

	return domain.NewAction(out.Kind(), out.Content(), attrs)
}

// evaluate calls the plugin, turning panics and missing verdicts into
// evaluation errors attributed to the entry. A verdict without an action
// carries the input action forward.
func evaluate(e Entry, action domain.Action, env domain.Context) (verdict *domain.Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			verdict = nil
			err = &domain.PluginEvaluationError{PluginID: e.ID, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()

	verdict, err = e.Plugin.Evaluate(action, env)
	if err != nil {
		return nil, attributed(e.ID, err)
	}
	if verdict == nil {
		return nil, &domain.PluginEvaluationError{PluginID: e.ID, Reason: "no verdict returned"}
	}
	if verdict.Action.IsZero() {
		v := *verdict
		v.Action = action
		verdict = &v
	}
	return verdict, nil
}

// attributed returns err as a *domain.PluginEvaluationError naming pluginID.
func attributed(pluginID string, err error) error {
	var pe *domain.PluginEvaluationError
	if errors.As(err, &pe) {
		if pe.PluginID == pluginID {
			return pe
		}
		named := *pe
		named.PluginID = pluginID
		return &named
	}
	return &domain.PluginEvaluationError{PluginID: pluginID, Err: err}
}

func failure(e Entry, err error) domain.PluginFailure {
	return domain.PluginFailure{
		PluginID: e.ID,
		Priority: e.Priority,
		Message:  err.Error(),
		Err:      err,
	}
}
