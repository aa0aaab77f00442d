package session

import (
	"errors"

	"github.com/google/uuid"
	"github.com/proofsheet/proofsheet-api/internal/dispatch"
	"github.com/proofsheet/proofsheet-api/internal/domain"
	"github.com/proofsheet/proofsheet-api/internal/redact"
)

// Poll runs one reconciliation pass over the outstanding handles, in
// submission order, copying completed results into their queue items and
// enforcing the processing timeout. It returns whether any item changed
// state, so the caller knows whether to refresh its view.
//
// Per handle, in priority order:
//  1. not yet running: untouched, no timeout clock.
//  2. running, clock unset: record the execution start — timeout is
//     measured against active processing only, not pool queueing.
//  3. running past TaskTimeout: best-effort cancel, item → timeout.
//  4. done with an image: item → ready, generated counter bumped.
//     done "successfully" with no image: item → failed.
//  5. done with an error: item → failed (cancelled → cancelled).
//  6. done, but the bounded retrieval probe misses: item → timeout.
//
// Handles reaching 3–6 leave the outstanding set. A handle whose item
// was removed from the queue reconciles as a silent no-op.
func (s *Session) Poll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	retained := make([]TaskHandle, 0, len(s.handles))

	for _, h := range s.handles {
		switch {
		case h.Done():
			if s.reconcileDoneLocked(h) {
				changed = true
			}

		case h.Running():
			if h.ProcessingStartedAt().IsZero() {
				h.MarkProcessingStarted(s.now())
				retained = append(retained, h)
				continue
			}

			if s.now().Sub(h.ProcessingStartedAt()) >= s.config.TaskTimeout {
				h.Cancel()
				if s.failLocked(h.ItemID(), domain.StatusTimeout, "processing exceeded the task timeout") {
					changed = true
				}
				continue
			}

			retained = append(retained, h)

		default:
			// Still queued behind pool capacity.
			retained = append(retained, h)
		}
	}

	s.handles = retained
	return changed
}

// reconcileDoneLocked folds a finished handle into its item and reports
// whether the item changed. The handle is always dropped by the caller.
func (s *Session) reconcileDoneLocked(h TaskHandle) bool {
	itemID := h.ItemID()

	img, err, ok := h.Await(s.config.ResultProbeTimeout)
	if !ok {
		// The work finished but retrieval hangs; conservatively a timeout.
		s.logger.Warn("result retrieval timed out", "item_id", itemID)
		return s.failLocked(itemID, domain.StatusTimeout, "result retrieval timed out")
	}

	if err != nil {
		status := domain.StatusFailed
		if errors.Is(err, dispatch.ErrCancelled) {
			status = domain.StatusCancelled
		}
		s.logger.Error("task failed", "item_id", itemID, "error", err)
		return s.failLocked(itemID, status, redact.Error(err))
	}

	if img == nil {
		// Success with no payload is not promoted to ready.
		s.logger.Error("task reported success with no image", "item_id", itemID)
		return s.failLocked(itemID, domain.StatusFailed, "backend returned no image")
	}

	updated := s.queue.Update(itemID, func(item *domain.WorkItem) {
		item.Complete(img)
	})
	if updated {
		s.stats.Generated++
		s.logger.Info("item ready", "item_id", itemID)
	}
	return updated
}

// failLocked moves an item into a terminal failure status. An absent id
// (item removed while its task was in flight) is a silent no-op.
func (s *Session) failLocked(id uuid.UUID, status domain.ItemStatus, reason string) bool {
	return s.queue.Update(id, func(item *domain.WorkItem) {
		item.Fail(status, reason)
	})
}
