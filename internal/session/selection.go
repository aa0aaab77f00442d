package session

import "github.com/google/uuid"

// Selection is id-based, never positional: positions shift whenever
// items are inserted or removed, so the current index is recomputed from
// the selected id on every access.

// Select sets the current selection to the given id if it exists in the
// queue; otherwise it is a no-op returning false.
func (s *Session) Select(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queue.FindByID(id) == nil {
		return false
	}
	s.selectedID = id
	return true
}

// SelectedID returns the currently selected item id, if any.
func (s *Session) SelectedID() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selectedID == uuid.Nil {
		return uuid.Nil, false
	}
	return s.selectedID, true
}

// CurrentIndex returns the selected item's current position, recomputed
// by scanning the queue. It reports false when nothing is selected or
// the selected item is no longer present.
func (s *Session) CurrentIndex() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIndexLocked()
}

// Next moves the selection one position forward, clamped at the end.
// Returns the selected id after the move.
func (s *Session) Next() (uuid.UUID, bool) {
	return s.step(1)
}

// Previous moves the selection one position back, clamped at the start.
func (s *Session) Previous() (uuid.UUID, bool) {
	return s.step(-1)
}

func (s *Session) step(delta int) (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, ok := s.currentIndexLocked()
	if !ok {
		return uuid.Nil, false
	}

	index += delta
	if index < 0 {
		index = 0
	}
	if index >= s.queue.Len() {
		index = s.queue.Len() - 1
	}

	s.selectedID = s.queue.At(index).ID
	return s.selectedID, true
}

func (s *Session) currentIndexLocked() (int, bool) {
	if s.selectedID == uuid.Nil {
		return 0, false
	}
	index := s.queue.IndexOf(s.selectedID)
	if index < 0 {
		return 0, false
	}
	return index, true
}
