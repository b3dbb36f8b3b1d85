package presentation

import (
	"context"
	"fmt"

	"github.com/dia-agents/presenter-core/core/narration"
)

// narrationChannel is the facade used to handle optional client wiring.
// Without a configured client, acts complete instantly with no speech,
// which keeps the sequencing logic exercisable in silent setups.
type narrationChannel struct {
	// client stores the configured narration implementation.
	client narration.Channel
}

func (n *narrationChannel) set(client narration.Channel) {
	if n != nil {
		n.client = client
	}
}

func (n *narrationChannel) isConfigured() bool {
	return n != nil && n.client != nil
}

func (n *narrationChannel) Speak(ctx context.Context, instruction string, opts ...narration.SpeakOption) (narration.Result, error) {
	if !n.isConfigured() {
		return narration.Result{Outcome: narration.OutcomeCompleted}, nil
	}

	return n.client.Speak(ctx, instruction, opts...)
}

// Close asks the channel to shut down before the underlying transport is
// torn down, probing for whichever close signature the client offers.
func (n *narrationChannel) Close(ctx context.Context) error {
	if !n.isConfigured() {
		return nil
	}

	switch c := n.client.(type) {
	case interface{ Close(context.Context) error }:
		if err := c.Close(ctx); err != nil {
			return fmt.Errorf("failed to close narration channel: %w", err)
		}
	case interface{ Close(context.Context) }:
		c.Close(ctx)
	case interface{ Close() error }:
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close narration channel: %w", err)
		}
	case interface{ Close() }:
		c.Close()
	}

	return nil
}
