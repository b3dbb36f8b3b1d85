package decks

import (
	"errors"

	"github.com/jinzhu/copier"
)

// ErrNotFound is returned by a [Store] when no slides exist for the
// requested presentation.
var ErrNotFound = errors.New("presentation not found")

// Slide is a single, immutable slide record produced once at session start.
//
// Ordinal is 1-indexed and stable for the lifetime of the deck. DisplayRef
// is an opaque reference (usually a URL) to the rendered slide image; a
// slide without one can still exist in the deck and is skipped during
// automatic narration.
type Slide struct {
	Ordinal       int
	DisplayRef    string
	NarrationText string
}

// Deck is the ordered slide sequence for one presentation.
type Deck struct {
	PresentationID string
	Slides         []Slide
}

// Len returns the number of slides in the deck.
func (d *Deck) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Slides)
}

// Snapshot returns a deep copy of the deck so callers can hold onto it
// without observing later mutation of the backing slice.
func (d *Deck) Snapshot() Deck {
	if d == nil {
		return Deck{}
	}

	var slides []Slide
	copier.Copy(&slides, d.Slides)
	return Deck{PresentationID: d.PresentationID, Slides: slides}
}
