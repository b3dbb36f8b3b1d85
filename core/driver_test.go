package presentation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dia-agents/presenter-core/core/decks"
	"github.com/dia-agents/presenter-core/core/narration"
)

type scriptedChannel struct {
	mu     sync.Mutex
	calls  []string
	script func(callNumber int, instruction string) (narration.Result, error)
}

func (c *scriptedChannel) Speak(ctx context.Context, instruction string, opts ...narration.SpeakOption) (narration.Result, error) {
	c.mu.Lock()
	c.calls = append(c.calls, instruction)
	callNumber := len(c.calls)
	script := c.script
	c.mu.Unlock()

	if script == nil {
		return narration.Result{Outcome: narration.OutcomeCompleted, SpokenText: instruction}, nil
	}
	return script(callNumber, instruction)
}

func (c *scriptedChannel) recorded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func fastConfig() presentConfig {
	return presentConfig{
		retry: retryPolicy{
			AttemptTimeout: time.Second,
			MaxRetries:     2,
			Backoff:        time.Millisecond,
		},
		slidePause:        0,
		contextWindow:     0,
		closingRemark:     "That concludes the deck.",
		keepAliveInterval: time.Minute,
	}
}

func newTestDriver(deck decks.Deck, channel narration.Channel, config presentConfig, callbacks presentCallbacks) (*driver, *positionState, *Navigator) {
	position := newPositionState(deck.Len())
	displayFacade := &displayPublisher{}
	navigator := newNavigator(context.Background(), deck, position, displayFacade)
	narrationFacade := &narrationChannel{}
	narrationFacade.set(channel)
	return newDriver(deck, position, navigator, narrationFacade, displayFacade, config, callbacks), position, navigator
}

func slidePrefix(ordinal int) string {
	return fmt.Sprintf("Slide %d:", ordinal)
}

func TestDriverNarratesFullDeckInOrderThenClosesOnce(t *testing.T) {
	channel := &scriptedChannel{}
	config := fastConfig()
	d, position, _ := newTestDriver(testDeck(3), channel, config, presentCallbacks{})

	outcome := d.run(context.Background())
	if outcome != outcomeExhausted {
		t.Fatalf("expected exhausted outcome, got %d", outcome)
	}

	calls := channel.recorded()
	if len(calls) != 4 {
		t.Fatalf("expected 3 slide narrations and 1 closing remark, got %d calls", len(calls))
	}
	for i := 0; i < 3; i++ {
		if !strings.HasPrefix(calls[i], slidePrefix(i+1)) {
			t.Fatalf("expected call %d to narrate slide %d, got %q", i, i+1, calls[i])
		}
	}
	if calls[3] != config.closingRemark {
		t.Fatalf("expected final call to be the closing remark, got %q", calls[3])
	}

	if snapshot := position.snapshot(); !snapshot.PastEnd() {
		t.Fatalf("expected cursor past the end after a full run, got index %d", snapshot.Index)
	}
}

func TestDriverStopsOnInterruptionWithoutAdvancing(t *testing.T) {
	channel := &scriptedChannel{}
	channel.script = func(callNumber int, instruction string) (narration.Result, error) {
		if strings.HasPrefix(instruction, slidePrefix(2)) {
			return narration.Result{Outcome: narration.OutcomeInterrupted}, nil
		}
		return narration.Result{Outcome: narration.OutcomeCompleted}, nil
	}

	interrupted := false
	callbacks := presentCallbacks{onInterruption: func() { interrupted = true }}
	d, position, _ := newTestDriver(testDeck(4), channel, fastConfig(), callbacks)

	outcome := d.run(context.Background())
	if outcome != outcomeInterrupted {
		t.Fatalf("expected interrupted outcome, got %d", outcome)
	}
	if !interrupted {
		t.Fatalf("expected interruption callback to fire")
	}

	if snapshot := position.snapshot(); snapshot.Index != 1 {
		t.Fatalf("expected cursor to stay on the interrupted slide, got index %d", snapshot.Index)
	}

	for _, call := range channel.recorded() {
		if call == fastConfig().closingRemark {
			t.Fatalf("expected no closing remark after an interruption")
		}
	}
}

func TestDriverRetriesFailedSlideThenMovesOn(t *testing.T) {
	channel := &scriptedChannel{}
	channel.script = func(callNumber int, instruction string) (narration.Result, error) {
		if strings.HasPrefix(instruction, slidePrefix(1)) {
			return narration.Result{}, errors.New("synthesis unavailable")
		}
		return narration.Result{Outcome: narration.OutcomeCompleted}, nil
	}

	var narrated []narration.Outcome
	callbacks := presentCallbacks{onSlideNarrated: func(slide decks.Slide, result narration.Result) {
		narrated = append(narrated, result.Outcome)
	}}
	d, position, _ := newTestDriver(testDeck(2), channel, fastConfig(), callbacks)

	outcome := d.run(context.Background())
	if outcome != outcomeExhausted {
		t.Fatalf("expected exhausted outcome, got %d", outcome)
	}

	firstSlideAttempts := 0
	for _, call := range channel.recorded() {
		if strings.HasPrefix(call, slidePrefix(1)) {
			firstSlideAttempts++
		}
	}
	if firstSlideAttempts != 3 {
		t.Fatalf("expected 3 attempts for the failing slide, got %d", firstSlideAttempts)
	}

	if len(narrated) != 2 || narrated[0] != narration.OutcomeFailed || narrated[1] != narration.OutcomeCompleted {
		t.Fatalf("unexpected narrated outcomes: %v", narrated)
	}

	if snapshot := position.snapshot(); !snapshot.PastEnd() {
		t.Fatalf("expected the run to continue past the failed slide")
	}
}

func TestDriverSkipsSlidesWithoutDisplayRef(t *testing.T) {
	deck := testDeck(3)
	deck.Slides[1].DisplayRef = ""

	channel := &scriptedChannel{}
	d, _, _ := newTestDriver(deck, channel, fastConfig(), presentCallbacks{})

	if outcome := d.run(context.Background()); outcome != outcomeExhausted {
		t.Fatalf("expected exhausted outcome, got %d", outcome)
	}

	calls := channel.recorded()
	if len(calls) != 3 {
		t.Fatalf("expected 2 slide narrations and 1 closing remark, got %d calls", len(calls))
	}
	if !strings.HasPrefix(calls[0], slidePrefix(1)) || !strings.HasPrefix(calls[1], slidePrefix(3)) {
		t.Fatalf("expected slides 1 and 3 to be narrated, got %q and %q", calls[0], calls[1])
	}
}

func TestDriverFollowsManualJumpMadeDuringNarration(t *testing.T) {
	channel := &scriptedChannel{}
	d, position, navigator := newTestDriver(testDeck(5), channel, fastConfig(), presentCallbacks{})

	channel.script = func(callNumber int, instruction string) (narration.Result, error) {
		if callNumber == 1 {
			navigator.Jump(4)
		}
		return narration.Result{Outcome: narration.OutcomeCompleted}, nil
	}

	if outcome := d.run(context.Background()); outcome != outcomeExhausted {
		t.Fatalf("expected exhausted outcome, got %d", outcome)
	}

	calls := channel.recorded()
	wantOrdinals := []int{1, 4, 5}
	if len(calls) != len(wantOrdinals)+1 {
		t.Fatalf("expected %d calls, got %d", len(wantOrdinals)+1, len(calls))
	}
	for i, ordinal := range wantOrdinals {
		if !strings.HasPrefix(calls[i], slidePrefix(ordinal)) {
			t.Fatalf("expected call %d to narrate slide %d, got %q", i, ordinal, calls[i])
		}
	}

	if snapshot := position.snapshot(); !snapshot.PastEnd() {
		t.Fatalf("expected cursor past the end, got index %d", snapshot.Index)
	}
}

func TestDriverAbortsOnCancelledContext(t *testing.T) {
	channel := &scriptedChannel{}
	d, _, _ := newTestDriver(testDeck(3), channel, fastConfig(), presentCallbacks{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if outcome := d.run(ctx); outcome != outcomeAborted {
		t.Fatalf("expected aborted outcome, got %d", outcome)
	}
	if len(channel.recorded()) != 0 {
		t.Fatalf("expected no narration on a cancelled context")
	}
}

func TestBuildInstructionIncludesNeighborPreviews(t *testing.T) {
	deck := testDeck(3)
	deck.Slides[0].NarrationText = "Opening notes"
	deck.Slides[1].NarrationText = "Middle notes"
	deck.Slides[2].NarrationText = "Closing notes"

	instruction := buildInstruction(deck, 1, 1)

	if !strings.Contains(instruction, "Context (slide 1): Opening notes") {
		t.Fatalf("expected preview of the previous slide, got %q", instruction)
	}
	if !strings.Contains(instruction, "Context (slide 3): Closing notes") {
		t.Fatalf("expected preview of the next slide, got %q", instruction)
	}
	if !strings.Contains(instruction, "Slide 2: Middle notes") {
		t.Fatalf("expected the current slide's full notes, got %q", instruction)
	}
}

func TestBuildInstructionWithoutWindowHasNoContextLines(t *testing.T) {
	instruction := buildInstruction(testDeck(3), 1, 0)

	if strings.Contains(instruction, "Context (slide") {
		t.Fatalf("expected no context lines with a zero window, got %q", instruction)
	}
	if !strings.HasPrefix(instruction, "Slide 2:") {
		t.Fatalf("expected the instruction to start with the current slide, got %q", instruction)
	}
}
