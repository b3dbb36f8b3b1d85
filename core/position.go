package presentation

import "sync"

// Position is a point-in-time snapshot of the presentation cursor.
//
// Index runs over [0, Total]; Total itself is the past-end terminal
// reached once every slide has been shown.
type Position struct {
	Index int
	Total int
}

// PastEnd reports whether the cursor has moved past the last slide.
func (p Position) PastEnd() bool { return p.Index >= p.Total }

// Ordinal returns the 1-indexed ordinal of the current slide, clamped to
// the last slide when the cursor is past the end.
func (p Position) Ordinal() int {
	if p.Total == 0 {
		return 0
	}
	if p.PastEnd() {
		return p.Total
	}
	return p.Index + 1
}

// positionState is the single owned home of the presentation cursor. Every
// mutator runs under the lock and returns the resulting snapshot, so
// callers never observe a torn mid-update value. Only the navigator calls
// the mutators; everyone else reads snapshots.
type positionState struct {
	mu    sync.Mutex
	index int
	total int
}

func newPositionState(total int) *positionState {
	return &positionState{total: total}
}

func (s *positionState) snapshot() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Position{Index: s.index, Total: s.total}
}

// advance moves one slide forward, stopping at the last slide. Moving past
// the end is reserved for finish.
func (s *positionState) advance() (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := false
	if s.index < s.total-1 {
		s.index++
		moved = true
	}
	return Position{Index: s.index, Total: s.total}, moved
}

func (s *positionState) retreat() (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := false
	if s.index > 0 {
		s.index--
		moved = true
	}
	return Position{Index: s.index, Total: s.total}, moved
}

// jump validates the untrusted 1-indexed target before mutating; an
// out-of-range target leaves the cursor untouched.
func (s *positionState) jump(targetOrdinal int) (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if targetOrdinal < 1 || targetOrdinal > s.total {
		return Position{Index: s.index, Total: s.total}, false
	}
	s.index = targetOrdinal - 1
	return Position{Index: s.index, Total: s.total}, true
}

// autoAdvance is the driver's step: it only moves if the cursor still sits
// on the slide the driver just narrated, so a concurrent manual jump is
// never overshot. Finishing the last slide moves the cursor past the end.
func (s *positionState) autoAdvance(narratedIndex int) (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != narratedIndex {
		return Position{Index: s.index, Total: s.total}, false
	}
	s.index++
	return Position{Index: s.index, Total: s.total}, true
}
