package decks

import "context"

// Store provides read-only access to slide decks.
//
// Implementations must return slides ordered by ordinal and fail with
// [ErrNotFound] when the presentation does not exist or has no slides —
// an empty deck is a startup failure, never a runtime state.
type Store interface {
	FetchOrderedDeck(ctx context.Context, presentationID string) (*Deck, error)
}
