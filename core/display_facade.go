package presentation

import (
	"context"
	"fmt"

	"github.com/dia-agents/presenter-core/core/decks"
	"github.com/dia-agents/presenter-core/core/display"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// displayPublisher is the facade that makes display delivery best effort:
// a failed publish is recorded and forgotten. Display lag is acceptable,
// narration must never block on it.
type displayPublisher struct {
	// client stores the configured display implementation.
	client display.Publisher
}

func (p *displayPublisher) set(client display.Publisher) {
	if p != nil {
		p.client = client
	}
}

func (p *displayPublisher) isConfigured() bool {
	return p != nil && p.client != nil
}

func (p *displayPublisher) publish(ctx context.Context, slide decks.Slide, snapshot Position) {
	if !p.isConfigured() {
		return
	}

	update := display.Update{
		DisplayRef: slide.DisplayRef,
		Ordinal:    slide.Ordinal,
		Total:      snapshot.Total,
	}
	if err := p.client.Publish(ctx, update); err != nil {
		recordedErr := fmt.Errorf("failed to publish slide %d: %w", slide.Ordinal, err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
	}
}

func (p *displayPublisher) Close(ctx context.Context) error {
	if !p.isConfigured() {
		return nil
	}

	switch c := p.client.(type) {
	case interface{ Close(context.Context) error }:
		if err := c.Close(ctx); err != nil {
			return fmt.Errorf("failed to close display publisher: %w", err)
		}
	case interface{ Close(context.Context) }:
		c.Close(ctx)
	case interface{ Close() error }:
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close display publisher: %w", err)
		}
	case interface{ Close() }:
		c.Close()
	}

	return nil
}
