package narration

import "context"

// Channel produces narration acts: each call to Speak asks the voice
// output to deliver the given instruction and blocks until the act
// finishes, is interrupted by the listener, or ctx is cancelled.
type Channel interface {
	// Speak performs one narration act.
	//
	// A returned error means the act could not be carried out (transport
	// failure, cancellation); callers treat those as retryable. A listener
	// interruption is not an error — it is reported through
	// [Result.Outcome] so callers can branch on it exhaustively.
	Speak(ctx context.Context, instruction string, opts ...SpeakOption) (Result, error)
}

// Outcome classifies how a narration act ended.
type Outcome string

const (
	// OutcomeCompleted means the act played out in full.
	OutcomeCompleted Outcome = "completed"
	// OutcomeInterrupted means the listener spoke over or commanded during
	// the act and playback was halted.
	OutcomeInterrupted Outcome = "interrupted"
	// OutcomeFailed means the act started but could not finish.
	OutcomeFailed Outcome = "failed"
)

// Result describes a finished narration act.
type Result struct {
	Outcome Outcome
	// SpokenText is the narration text that was produced for the act, as
	// far as it got before the act ended.
	SpokenText string
}

// Interrupted reports whether the listener cut the act short.
func (r Result) Interrupted() bool { return r.Outcome == OutcomeInterrupted }
