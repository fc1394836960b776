// Package direct provides event publishers that handle run events in the
// calling goroutine.
package direct

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
)

// Handler receives one run event.
type Handler func(ctx context.Context, event *domain.RunEvent) error

// Publisher implements ports.EventPublisher by calling a handler in the
// publishing goroutine. This is the default way for an embedding program
// to observe runs.
type Publisher struct {
	handler Handler
}

// NewPublisher creates a new direct event publisher.
func NewPublisher(handler Handler) (*Publisher, error) {
	if handler == nil {
		return nil, fmt.Errorf("event handler required")
	}
	return &Publisher{handler: handler}, nil
}

// Publish passes the event to the handler.
func (p *Publisher) Publish(ctx context.Context, event *domain.RunEvent) error {
	return p.handler(ctx, event)
}

// Close is a no-op for direct publisher.
func (p *Publisher) Close() error {
	return nil
}

// LogPublisher implements ports.EventPublisher by logging each run. Clean
// runs log at debug, degraded and partial runs at warn.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that logs to logger, or to the
// default logger when nil.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs a run event.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.RunEvent) error {
	attrs := []slog.Attr{
		slog.String("run_id", event.RunID),
		slog.String("kind", event.Kind),
		slog.Duration("duration", event.Duration),
		slog.Int("plugins", len(event.Steps)),
		slog.Int("failures", event.Failures()),
	}
	if event.Score != nil {
		attrs = append(attrs, slog.Float64("score", *event.Score))
	}

	level := slog.LevelDebug
	if event.Type != domain.RunEventCompleted {
		level = slog.LevelWarn
	}
	p.logger.LogAttrs(ctx, level, string(event.Type), attrs...)
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() error {
	return nil
}

// Multi fans a run event out to several publishers. Every publisher is
// called; the first error is returned.
type Multi []ports.EventPublisher

// Publish implements ports.EventPublisher.
func (m Multi) Publish(ctx context.Context, event *domain.RunEvent) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes every publisher and returns the first error.
func (m Multi) Close() error {
	var first error
	for _, p := range m {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var (
	_ ports.EventPublisher = (*Publisher)(nil)
	_ ports.EventPublisher = (*LogPublisher)(nil)
	_ ports.EventPublisher = Multi(nil)
)
