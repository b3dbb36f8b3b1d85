package presentation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dia-agents/presenter-core/core/commands"
	"github.com/dia-agents/presenter-core/core/decks"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	// ErrPresentationInProgress is returned by Present when the session is
	// already running a presentation; sessions host one at a time.
	ErrPresentationInProgress = errors.New("presentation already in progress")
	// ErrNoDeckStore is returned by Present when no deck store was
	// configured.
	ErrNoDeckStore = errors.New("no deck store configured")
)

const noSessionStatus = "There is no active presentation"

// Status is a point-in-time view of the session for status queries.
type Status struct {
	Ordinal int
	Total   int
	Phase   Phase
}

// Session is the supervisor that owns startup ordering, the automatic
// presentation run, the idle Q&A phase, and teardown. Manual navigation
// commands stay live for the whole time a run exists, independent of what
// the automatic driver is doing.
type Session struct {
	deckStore decks.Store
	narration narrationChannel
	display   displayPublisher

	run   atomic.Pointer[presentationRun]
	phase atomic.Value

	presenting  atomic.Bool
	closeCancel atomic.Value
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{}
	s.phase.Store(PhaseNone)

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Present runs one full presentation lifecycle: connect, load the deck,
// drive the automatic walkthrough, then idle for questions until ctx is
// cancelled. It returns only startup failures and unexpected driver
// errors; per-slide narration failures are contained inside the run.
//
// Teardown always executes, whatever branch ends the run: the narration
// channel is closed before the display transport, any in-flight speech is
// abandoned via cancellation, and session state is reset to the
// no-session sentinel.
func (s *Session) Present(ctx context.Context, presentationID string, opts ...PresentOption) (err error) {
	if !s.presenting.CompareAndSwap(false, true) {
		return ErrPresentationInProgress
	}
	defer s.presenting.Store(false)

	options := PresentOptions{config: defaultPresentConfig()}
	for _, opt := range opts {
		opt(&options)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.closeCancel.Store(cancel)

	ctx, span := tracer.Start(ctx, "presentation session")
	defer span.End()
	span.SetAttributes(attribute.String("session.presentation_id", presentationID))

	defer func() {
		s.teardown(ctx, options.callbacks)
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("presentation worker panicked: %v", recovered)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	s.setPhase(PhaseConnecting, options.callbacks)

	s.setPhase(PhaseLoadingDeck, options.callbacks)
	if s.deckStore == nil {
		err := fmt.Errorf("cannot load deck %q: %w", presentationID, ErrNoDeckStore)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	deck, err := s.deckStore.FetchOrderedDeck(ctx, presentationID)
	if err != nil {
		err = fmt.Errorf("failed to load deck %q: %w", presentationID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if deck.Len() == 0 {
		err := fmt.Errorf("failed to load deck %q: %w", presentationID, decks.ErrNotFound)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("session.slides", deck.Len()))

	run := newPresentationRun(ctx, deck.Snapshot(), &s.narration, &s.display, options.config, options.callbacks)
	s.run.Store(run)

	s.setPhase(PhasePresenting, options.callbacks)
	logger.InfoContext(ctx, "starting presentation sequence", "run", run.id, "slides", deck.Len())

	outcome := run.driver.run(ctx)
	span.SetAttributes(attribute.Int("session.driver_outcome", int(outcome)))

	if outcome == outcomeAborted {
		return nil
	}

	s.setPhase(PhaseQandA, options.callbacks)
	s.keepAlive(ctx, options.config.keepAliveInterval)

	return nil
}

// Advance moves to the next slide and returns a short status phrase for
// the voice interface.
func (s *Session) Advance() string {
	run := s.run.Load()
	if run == nil {
		return noSessionStatus
	}
	return run.navigator.Advance()
}

// Retreat moves to the previous slide.
func (s *Session) Retreat() string {
	run := s.run.Load()
	if run == nil {
		return noSessionStatus
	}
	return run.navigator.Retreat()
}

// Jump moves to the given 1-indexed slide; the target is untrusted input.
func (s *Session) Jump(targetOrdinal int) string {
	run := s.run.Load()
	if run == nil {
		return noSessionStatus
	}
	return run.navigator.Jump(targetOrdinal)
}

// Handle dispatches a navigation command event to the matching operation.
func (s *Session) Handle(command commands.Command) string {
	switch cmd := command.(type) {
	case commands.AdvanceCommand:
		return s.Advance()
	case commands.RetreatCommand:
		return s.Retreat()
	case commands.JumpCommand:
		return s.Jump(cmd.TargetOrdinal)
	default:
		return fmt.Sprintf("Unrecognized command %q", command.Kind())
	}
}

// Status returns the current position and phase; with no active run it
// returns the no-session sentinel.
func (s *Session) Status() Status {
	phase, _ := s.phase.Load().(Phase)
	if phase == "" {
		phase = PhaseNone
	}

	run := s.run.Load()
	if run == nil {
		return Status{Phase: phase}
	}

	snapshot := run.position.snapshot()
	return Status{Ordinal: snapshot.Ordinal(), Total: snapshot.Total, Phase: phase}
}

// Close cancels the in-flight presentation, if any. Teardown itself runs
// inside Present, and the session can host another run afterwards.
func (s *Session) Close() {
	if cancel, ok := s.closeCancel.Load().(context.CancelFunc); ok && cancel != nil {
		cancel()
	}
}

func (s *Session) setPhase(phase Phase, callbacks presentCallbacks) {
	s.phase.Store(phase)
	if callbacks.onPhaseChanged != nil {
		callbacks.onPhaseChanged(phase)
	}
}

// keepAlive holds the session open for questions and manual navigation
// until the context ends.
func (s *Session) keepAlive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.DebugContext(ctx, "session idle, awaiting questions")
		}
	}
}

// teardown closes the narration channel before the display transport and
// resets all session state to the no-session sentinel. Failures here are
// recorded but never block the reset.
func (s *Session) teardown(ctx context.Context, callbacks presentCallbacks) {
	s.setPhase(PhaseTerminated, callbacks)

	var teardownErr error
	if err := s.narration.Close(ctx); err != nil {
		teardownErr = errors.Join(teardownErr, err)
	}
	if err := s.display.Close(ctx); err != nil {
		teardownErr = errors.Join(teardownErr, err)
	}
	if teardownErr != nil {
		logger.WarnContext(ctx, "teardown finished with errors", "error", teardownErr)
	}

	s.run.Store(nil)
	s.phase.Store(PhaseNone)
}
