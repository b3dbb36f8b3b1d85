package presentation

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/dia-agents/presenter-core/core/decks"
)

// Navigator is the navigation controller: the only writer of the
// presentation cursor. Every command validates, mutates atomically,
// triggers a best-effort display refresh, and returns a short status
// phrase for the calling voice interface to speak.
//
// The automatic driver advances through the same navigator so that
// command-triggered and driver-triggered mutation can interleave without
// racing.
type Navigator struct {
	position *positionState
	deck     decks.Deck
	display  *displayPublisher

	baseContext context.Context
}

func newNavigator(ctx context.Context, deck decks.Deck, position *positionState, display *displayPublisher) *Navigator {
	return &Navigator{
		position:    position,
		deck:        deck,
		display:     display,
		baseContext: ctx,
	}
}

// Advance moves to the next slide. At the last slide (or past the end) it
// is a no-op. It never errors.
func (n *Navigator) Advance() string {
	snapshot, moved := n.position.advance()
	if !moved {
		return "Already on the last slide"
	}

	n.refreshDisplay(snapshot)
	return n.arrivalStatus(snapshot)
}

// Retreat moves to the previous slide; from past the end it returns to
// the last slide. At the first slide it is a no-op.
func (n *Navigator) Retreat() string {
	snapshot, moved := n.position.retreat()
	if !moved {
		return "Already on the first slide"
	}

	n.refreshDisplay(snapshot)
	return n.arrivalStatus(snapshot)
}

// Jump moves to the given 1-indexed slide. The target is untrusted input;
// an out-of-range target mutates nothing.
func (n *Navigator) Jump(targetOrdinal int) string {
	snapshot, moved := n.position.jump(targetOrdinal)
	if !moved {
		return fmt.Sprintf("Invalid slide number. Please choose between 1 and %d", snapshot.Total)
	}

	n.refreshDisplay(snapshot)
	return n.arrivalStatus(snapshot)
}

// autoAdvance is the driver's step past a narrated slide. It moves only if
// the cursor still sits on that slide; finishing the last slide puts the
// cursor past the end and leaves the display on the final slide.
func (n *Navigator) autoAdvance(narratedIndex int) Position {
	snapshot, moved := n.position.autoAdvance(narratedIndex)
	if moved && !snapshot.PastEnd() {
		n.refreshDisplay(snapshot)
	}
	return snapshot
}

func (n *Navigator) refreshDisplay(snapshot Position) {
	if snapshot.PastEnd() {
		return
	}
	n.display.publish(n.baseContext, n.deck.Slides[snapshot.Index], snapshot)
}

func (n *Navigator) arrivalStatus(snapshot Position) string {
	slide := n.deck.Slides[snapshot.Index]
	return fmt.Sprintf("Now on slide %d of %d. %s", snapshot.Ordinal(), snapshot.Total, preview(slide.NarrationText, statusPreviewLength))
}

const statusPreviewLength = 100

func preview(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
