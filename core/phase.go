package presentation

// Phase tracks where a session is in its lifecycle. Transitions move
// forward only, except that PhaseTerminated is reachable from any phase
// via cancellation or fatal error. Teardown resets the session to
// PhaseNone so the worker can host a fresh session afterwards.
type Phase string

const (
	// PhaseNone is the no-session sentinel.
	PhaseNone        Phase = "none"
	PhaseConnecting  Phase = "connecting"
	PhaseLoadingDeck Phase = "loading_deck"
	PhasePresenting  Phase = "presenting"
	// PhaseQandA is the idle keep-alive phase after the deck is exhausted
	// or the automatic sequence was interrupted; manual navigation stays
	// live here.
	PhaseQandA      Phase = "idle_qa"
	PhaseTerminated Phase = "terminated"
)
