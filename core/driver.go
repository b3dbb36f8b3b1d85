package presentation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dia-agents/presenter-core/core/decks"
	"github.com/dia-agents/presenter-core/core/narration"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type driverOutcome int

const (
	outcomeExhausted driverOutcome = iota
	outcomeInterrupted
	outcomeAborted
)

// attemptOutcome classifies a single narration attempt for logging and
// retry bookkeeping; it is never persisted.
type attemptOutcome string

const (
	attemptCompleted   attemptOutcome = "completed"
	attemptInterrupted attemptOutcome = "interrupted"
	attemptTimedOut    attemptOutcome = "timed_out"
	attemptFailed      attemptOutcome = "failed"
)

type speechAttempt struct {
	slideOrdinal  int
	attemptNumber int
	outcome       attemptOutcome
}

// driver is the automatic sequencer: it walks the deck from the current
// cursor to the end, narrating and publishing each slide, and yields as
// soon as the listener interrupts. The cursor is re-read at the top of
// every iteration so a manual jump during narration redirects the very
// next slide.
type driver struct {
	deck      decks.Deck
	position  *positionState
	navigator *Navigator
	narration *narrationChannel
	display   *displayPublisher

	config    presentConfig
	callbacks presentCallbacks
}

func newDriver(
	deck decks.Deck,
	position *positionState,
	navigator *Navigator,
	narrationChannel *narrationChannel,
	displayPublisher *displayPublisher,
	config presentConfig,
	callbacks presentCallbacks,
) *driver {
	return &driver{
		deck:      deck,
		position:  position,
		navigator: navigator,
		narration: narrationChannel,
		display:   displayPublisher,
		config:    config,
		callbacks: callbacks,
	}
}

func (d *driver) run(ctx context.Context) driverOutcome {
	ctx, span := tracer.Start(ctx, "presentation sequence")
	defer span.End()

	for {
		if ctx.Err() != nil {
			return outcomeAborted
		}

		snapshot := d.position.snapshot()
		if snapshot.PastEnd() {
			break
		}

		slide := d.deck.Slides[snapshot.Index]

		if slide.DisplayRef == "" {
			logger.WarnContext(ctx, "slide has no display reference, skipping", "slide", slide.Ordinal)
			d.navigator.autoAdvance(snapshot.Index)
			continue
		}

		d.display.publish(ctx, slide, snapshot)

		result := d.narrateSlide(ctx, slide, snapshot)
		if d.callbacks.onSlideNarrated != nil {
			d.callbacks.onSlideNarrated(slide, result)
		}

		if result.Interrupted() {
			logger.InfoContext(ctx, "narration interrupted, stopping auto-advance", "slide", slide.Ordinal)
			span.SetAttributes(attribute.Int("presentation.interrupted_at", slide.Ordinal))
			if d.callbacks.onInterruption != nil {
				d.callbacks.onInterruption()
			}
			return outcomeInterrupted
		}

		if !sleepContext(ctx, d.config.slidePause) {
			return outcomeAborted
		}

		d.navigator.autoAdvance(snapshot.Index)
	}

	d.closingRemark(ctx)
	return outcomeExhausted
}

// narrateSlide performs the retry-bounded narration of one slide. A slide
// that exhausts its retries is reported failed and the deck continues past
// it; only an interruption halts the sequence.
func (d *driver) narrateSlide(ctx context.Context, slide decks.Slide, snapshot Position) narration.Result {
	ctx, span := tracer.Start(ctx, "narrate slide")
	defer span.End()
	span.SetAttributes(attribute.Int("slide.ordinal", slide.Ordinal))

	instruction := buildInstruction(d.deck, snapshot.Index, d.config.contextWindow)

	var attempts []speechAttempt
	var result narration.Result
	err := d.config.retry.run(ctx, func(attemptCtx context.Context, attemptNumber int) (bool, error) {
		attemptResult, err := d.narration.Speak(attemptCtx, instruction)
		if err == nil {
			outcome := attemptCompleted
			if attemptResult.Interrupted() {
				outcome = attemptInterrupted
			}
			attempts = append(attempts, speechAttempt{slideOrdinal: slide.Ordinal, attemptNumber: attemptNumber, outcome: outcome})
			result = attemptResult
			return false, nil
		}

		outcome := attemptFailed
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			outcome = attemptTimedOut
		}
		attempts = append(attempts, speechAttempt{slideOrdinal: slide.Ordinal, attemptNumber: attemptNumber, outcome: outcome})

		if ctx.Err() != nil {
			return false, ctx.Err()
		}

		logger.WarnContext(ctx, "narration attempt failed, retrying",
			"slide", slide.Ordinal, "attempt", attemptNumber, "outcome", string(outcome), "error", err)
		return true, err
	})
	if err != nil {
		recordedErr := fmt.Errorf("narration failed for slide %d after %d attempts: %w", slide.Ordinal, len(attempts), err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		result = narration.Result{Outcome: narration.OutcomeFailed}
	}

	outcomes := make([]string, 0, len(attempts))
	for _, attempt := range attempts {
		outcomes = append(outcomes, string(attempt.outcome))
	}
	span.SetAttributes(
		attribute.Int("narration.attempts", len(attempts)),
		attribute.StringSlice("narration.attempt_outcomes", outcomes),
	)

	return result
}

// closingRemark emits the single end-of-deck narration act inviting
// questions. One attempt, timeout bounded; a failure here only gets
// logged, the deck is already complete.
func (d *driver) closingRemark(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "closing remark")
	defer span.End()

	remarkCtx, cancel := context.WithTimeout(ctx, d.config.retry.AttemptTimeout)
	defer cancel()

	if _, err := d.narration.Speak(remarkCtx, d.config.closingRemark); err != nil {
		recordedErr := fmt.Errorf("failed to deliver closing remark: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
	}
}

// buildInstruction assembles the narration instruction for the slide at
// index, surrounded by short previews of a window of neighboring slides.
// Exactly one slide is marked for full narration so the act cannot drift
// across the rest of the deck.
func buildInstruction(deck decks.Deck, index, window int) string {
	var builder strings.Builder

	slide := deck.Slides[index]

	for neighbor := index - window; neighbor <= index+window; neighbor++ {
		if neighbor == index || neighbor < 0 || neighbor >= len(deck.Slides) {
			continue
		}
		fmt.Fprintf(&builder, "Context (slide %d): %s\n", deck.Slides[neighbor].Ordinal, preview(deck.Slides[neighbor].NarrationText, instructionPreviewLength))
	}

	fmt.Fprintf(&builder, "Slide %d: %s\n\n", slide.Ordinal, slide.NarrationText)
	builder.WriteString("Present this slide's key points clearly in 3-4 sentences. Narrate only this slide; the context lines are for transitions.")

	return builder.String()
}

const instructionPreviewLength = 100
