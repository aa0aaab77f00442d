package session

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/proofsheet/proofsheet-api/internal/domain"
)

// Accept persists the item's result image and removes the item from the
// queue, returning the saved path. Acceptance is not partial: on a
// persistence failure the item stays in the queue untouched and the
// error is surfaced to the caller.
func (s *Session) Accept(id uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.queue.FindByID(id)
	if item == nil {
		return "", ErrItemNotFound
	}
	if item.Result == nil {
		return "", domain.ErrNoResult
	}

	path, err := s.persister.Save(item)
	if err != nil {
		s.logger.Error("failed to persist accepted image",
			"item_id", id,
			"error", err)
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	s.stats.Accepted++
	s.removeItemLocked(id)
	s.activity.Info(id, "Accepted: saved to "+path)
	s.logger.Info("item accepted", "item_id", id, "path", path)
	return path, nil
}

// Reject removes the item unconditionally and bumps the rejected
// counter. A still-generating item has its handle cancelled first so no
// completion dangles (the reconciler tolerates it either way).
func (s *Session) Reject(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queue.FindByID(id) == nil {
		return ErrItemNotFound
	}

	if handle := s.takeHandleLocked(id); handle != nil {
		handle.Cancel()
	}

	s.stats.Rejected++
	s.removeItemLocked(id)
	s.activity.Info(id, "Rejected")
	return nil
}

// Remove deletes the item without touching any counter. Used for
// discarding duplicates or failed items.
func (s *Session) Remove(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queue.FindByID(id) == nil {
		return ErrItemNotFound
	}

	if handle := s.takeHandleLocked(id); handle != nil {
		handle.Cancel()
	}

	s.removeItemLocked(id)
	return nil
}

// Retry re-dispatches a failed, timed-out, or cancelled item under the
// same identity: status returns to generating, the result is cleared,
// and a fresh handle replaces any prior one for the item.
func (s *Session) Retry(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.queue.FindByID(id)
	if item == nil {
		return ErrItemNotFound
	}
	if !item.Status.CanRetry() {
		return fmt.Errorf("%w: status %s", ErrItemNotRetryable, item.Status)
	}

	if handle := s.takeHandleLocked(id); handle != nil {
		handle.Cancel()
	}

	item.ResetForRetry()
	s.submitLocked(item)
	s.activity.Info(id, "Retrying")
	s.logger.Info("item retried", "item_id", id)
	return nil
}

// Cancel aborts the item's in-flight task (best-effort; a call already
// running at the backend completes with its result discarded) and
// removes the item from the queue.
func (s *Session) Cancel(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queue.FindByID(id) == nil {
		return ErrItemNotFound
	}

	if handle := s.takeHandleLocked(id); handle != nil {
		handle.Cancel()
	}

	s.removeItemLocked(id)
	s.activity.Info(id, "Cancelled")
	return nil
}

// SkipToBack defers review of the item by moving it to the end of the
// ordering, preserving its status and identity.
func (s *Session) SkipToBack(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.queue.MoveToBack(id) {
		return ErrItemNotFound
	}
	return nil
}
