// Package queue implements the identity-addressed review queue: an
// ordered collection of work items where every item is addressable by a
// stable id that survives insertion and removal of its neighbors.
//
// The queue performs no internal locking. All access happens on the
// session's single logical control thread; the session's mutex is the
// only synchronization needed.
package queue

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/proofsheet/proofsheet-api/internal/domain"
)

// ReviewQueue holds work items in insertion order.
type ReviewQueue struct {
	items  []*domain.WorkItem
	logger *slog.Logger
}

// New creates an empty review queue.
func New(logger *slog.Logger) *ReviewQueue {
	return &ReviewQueue{
		items:  make([]*domain.WorkItem, 0),
		logger: logger,
	}
}

// Append inserts the item at the back and returns its id. Ids are
// assigned at item construction and never reused, even after removal.
func (q *ReviewQueue) Append(item *domain.WorkItem) uuid.UUID {
	q.items = append(q.items, item)
	q.logger.Debug("item appended",
		"item_id", item.ID,
		"kind", item.Kind,
		"queue_len", len(q.items))
	return item.ID
}

// FindByID returns the item with the given id, or nil when absent.
// Linear scan; queue sizes are bounded by one review session.
func (q *ReviewQueue) FindByID(id uuid.UUID) *domain.WorkItem {
	for _, item := range q.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Update applies fn to the matching item in place and reports whether it
// was found. An absent id is a silent no-op returning false — callers,
// notably the reconciler reacting to a handle whose item was removed by
// a user action, depend on this never being an error.
func (q *ReviewQueue) Update(id uuid.UUID, fn func(*domain.WorkItem)) bool {
	item := q.FindByID(id)
	if item == nil {
		return false
	}
	fn(item)
	return true
}

// RemoveByID deletes the matching item and reports whether it was found.
// Removal never renumbers or invalidates other items' ids.
func (q *ReviewQueue) RemoveByID(id uuid.UUID) bool {
	for i, item := range q.items {
		if item.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			q.logger.Debug("item removed",
				"item_id", id,
				"queue_len", len(q.items))
			return true
		}
	}
	return false
}

// MoveToBack moves the matching item to the end of the ordering,
// preserving its state, and reports whether it was found.
func (q *ReviewQueue) MoveToBack(id uuid.UUID) bool {
	for i, item := range q.items {
		if item.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			q.items = append(q.items, item)
			return true
		}
	}
	return false
}

// IndexOf returns the current position of the item with the given id,
// or -1 when absent. Positions shift as neighbors come and go, so they
// must always be recomputed, never cached.
func (q *ReviewQueue) IndexOf(id uuid.UUID) int {
	for i, item := range q.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// At returns the item at position i, or nil when out of range.
func (q *ReviewQueue) At(i int) *domain.WorkItem {
	if i < 0 || i >= len(q.items) {
		return nil
	}
	return q.items[i]
}

// Len returns the number of items in the queue.
func (q *ReviewQueue) Len() int {
	return len(q.items)
}

// Items returns a snapshot of the queue in insertion order. The slice is
// a copy; the items themselves are shared.
func (q *ReviewQueue) Items() []*domain.WorkItem {
	out := make([]*domain.WorkItem, len(q.items))
	copy(out, q.items)
	return out
}
