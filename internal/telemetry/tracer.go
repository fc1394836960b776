package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the tracer name used by the pipeline.
const InstrumentationName = "github.com/tjfontaine/ethics-pipeline/internal/pipeline"

// TracerConfig configures InitTracer.
type TracerConfig struct {
	ServiceName string
	// SampleRatio is the fraction of runs traced, in [0,1].
	SampleRatio float64
	// Writer receives the exported spans. Defaults to stderr so that span
	// output never mixes with results written to stdout.
	Writer io.Writer
	Logger *slog.Logger
}

// InitTracer installs a global tracer provider that writes run and plugin
// spans as JSON. The returned function flushes and stops it.
func InitTracer(cfg TracerConfig) (func(context.Context) error, error) {
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		return nil, fmt.Errorf("sample ratio must be within [0,1], got %g", cfg.SampleRatio)
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(cfg.Writer))
	if err != nil {
		return nil, fmt.Errorf("create span exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)

	cfg.Logger.Info("tracing enabled",
		slog.String("service", cfg.ServiceName),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return tp.Shutdown, nil
}

// Tracer returns the pipeline tracer from the global provider. It is a
// no-op until InitTracer or otel.SetTracerProvider is called.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
