package presentation

import (
	"context"

	"github.com/dia-agents/presenter-core/core/decks"
	"github.com/google/uuid"
)

// presentationRun is the per-session context object: everything scoped to
// one presentation lives here and is discarded wholesale at teardown, so
// nothing leaks into the next session hosted by the same worker.
type presentationRun struct {
	id        string
	deck      decks.Deck
	position  *positionState
	navigator *Navigator
	driver    *driver
}

func newPresentationRun(
	ctx context.Context,
	deck decks.Deck,
	narrationChannel *narrationChannel,
	displayPublisher *displayPublisher,
	config presentConfig,
	callbacks presentCallbacks,
) *presentationRun {
	position := newPositionState(deck.Len())
	navigator := newNavigator(ctx, deck, position, displayPublisher)

	return &presentationRun{
		id:        uuid.NewString(),
		deck:      deck,
		position:  position,
		navigator: navigator,
		driver:    newDriver(deck, position, navigator, narrationChannel, displayPublisher, config, callbacks),
	}
}
