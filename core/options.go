package presentation

import (
	"time"

	"github.com/dia-agents/presenter-core/core/decks"
	"github.com/dia-agents/presenter-core/core/display"
	"github.com/dia-agents/presenter-core/core/narration"
)

type SessionOption func(*Session)

// WithDeckStore configures where slide decks are loaded from. A session
// cannot start presenting without one.
func WithDeckStore(store decks.Store) SessionOption {
	return func(s *Session) { s.deckStore = store }
}

func WithNarrationChannel(channel narration.Channel) SessionOption {
	return func(s *Session) { s.narration.set(channel) }
}

func WithDisplayPublisher(publisher display.Publisher) SessionOption {
	return func(s *Session) { s.display.set(publisher) }
}

// presentConfig carries the tuning knobs of one presentation run. The two
// source entrypoint variants disagreed on these values, so they are
// configuration rather than policy; the defaults follow the conservative
// variant.
type presentConfig struct {
	retry         retryPolicy
	slidePause    time.Duration
	contextWindow int
	closingRemark string

	keepAliveInterval time.Duration
}

const defaultClosingRemark = "Thank you for your attention! I'd be happy to answer questions or navigate to any slide you'd like to review."

func defaultPresentConfig() presentConfig {
	return presentConfig{
		retry: retryPolicy{
			AttemptTimeout: 25 * time.Second,
			MaxRetries:     2,
			Backoff:        1500 * time.Millisecond,
		},
		slidePause:        2 * time.Second,
		contextWindow:     1,
		closingRemark:     defaultClosingRemark,
		keepAliveInterval: time.Minute,
	}
}

type presentCallbacks struct {
	onPhaseChanged  func(phase Phase)
	onSlideNarrated func(slide decks.Slide, result narration.Result)
	onInterruption  func()
}

type PresentOptions struct {
	config    presentConfig
	callbacks presentCallbacks
}

type PresentOption func(*PresentOptions)

// WithAttemptTimeout bounds each narration attempt.
func WithAttemptTimeout(timeout time.Duration) PresentOption {
	return func(o *PresentOptions) {
		if timeout > 0 {
			o.config.retry.AttemptTimeout = timeout
		}
	}
}

// WithNarrationRetries sets how many extra attempts follow a failed or
// timed-out narration attempt.
func WithNarrationRetries(retries int) PresentOption {
	return func(o *PresentOptions) {
		if retries >= 0 {
			o.config.retry.MaxRetries = retries
		}
	}
}

// WithRetryBackoff sets the pause between narration attempts.
func WithRetryBackoff(backoff time.Duration) PresentOption {
	return func(o *PresentOptions) {
		if backoff >= 0 {
			o.config.retry.Backoff = backoff
		}
	}
}

// WithSlidePause sets the breather between a finished slide and the
// automatic advance to the next one.
func WithSlidePause(pause time.Duration) PresentOption {
	return func(o *PresentOptions) {
		if pause >= 0 {
			o.config.slidePause = pause
		}
	}
}

// WithContextWindow sets how many neighboring slides on each side
// contribute preview context to a slide's narration instruction.
func WithContextWindow(window int) PresentOption {
	return func(o *PresentOptions) {
		if window >= 0 {
			o.config.contextWindow = window
		}
	}
}

// WithClosingRemark overrides the instruction for the single end-of-deck
// narration act.
func WithClosingRemark(remark string) PresentOption {
	return func(o *PresentOptions) {
		if remark != "" {
			o.config.closingRemark = remark
		}
	}
}

// WithKeepAliveInterval sets the heartbeat interval of the idle Q&A phase.
func WithKeepAliveInterval(interval time.Duration) PresentOption {
	return func(o *PresentOptions) {
		if interval > 0 {
			o.config.keepAliveInterval = interval
		}
	}
}

// WithPhaseChangedCallback registers a callback for session phase
// transitions.
func WithPhaseChangedCallback(callback func(phase Phase)) PresentOption {
	return func(o *PresentOptions) { o.callbacks.onPhaseChanged = callback }
}

// WithSlideNarratedCallback registers a callback fired after each slide's
// narration act settles, whatever its outcome.
func WithSlideNarratedCallback(callback func(slide decks.Slide, result narration.Result)) PresentOption {
	return func(o *PresentOptions) { o.callbacks.onSlideNarrated = callback }
}

// WithInterruptionCallback registers a callback fired when the listener
// halts the automatic sequence.
func WithInterruptionCallback(callback func()) PresentOption {
	return func(o *PresentOptions) { o.callbacks.onInterruption = callback }
}
