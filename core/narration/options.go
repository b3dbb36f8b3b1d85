package narration

// SpeakOptions carries per-act callbacks.
type SpeakOptions struct {
	// TextCallback is called with narration text segments as they are
	// produced, before they are voiced.
	TextCallback func(text string)
	// InterruptedCallback is called once if the listener interrupts the
	// act before it completes.
	InterruptedCallback func()
}

type SpeakOption func(*SpeakOptions)

// WithTextCallback registers a callback for narration text segments.
func WithTextCallback(callback func(text string)) SpeakOption {
	return func(o *SpeakOptions) { o.TextCallback = callback }
}

// WithInterruptedCallback registers a callback fired when the act is cut
// short by the listener.
func WithInterruptedCallback(callback func()) SpeakOption {
	return func(o *SpeakOptions) { o.InterruptedCallback = callback }
}
