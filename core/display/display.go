package display

import "context"

// Update describes the slide that should be visible to observers.
type Update struct {
	DisplayRef string
	Ordinal    int
	Total      int
}

// Publisher makes slide updates visible to observers. Publishing is best
// effort: callers log failures and move on, narration never blocks on the
// display catching up.
type Publisher interface {
	Publish(ctx context.Context, update Update) error
}
