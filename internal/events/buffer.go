package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity bounds the buffer to the most recent entries.
const DefaultCapacity = 50

// Buffer is a mutex-guarded ring of recent activity entries. It is safe
// for concurrent appends from worker goroutines and snapshot reads from
// the control thread.
type Buffer struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
}

// NewBuffer creates a Buffer keeping at most capacity entries.
// Non-positive capacities fall back to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// Append records an entry, evicting the oldest once the buffer is full.
func (b *Buffer) Append(entry Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if entry.Time.IsZero() {
		entry.Time = time.Now().UTC()
	}

	b.entries = append(b.entries, entry)
	if len(b.entries) > b.capacity {
		b.entries = b.entries[len(b.entries)-b.capacity:]
	}
}

// Info appends an informational entry about an item.
func (b *Buffer) Info(itemID uuid.UUID, message string) {
	b.Append(Entry{Level: LevelInfo, Message: message, ItemID: itemID})
}

// Error appends a failure entry about an item.
func (b *Buffer) Error(itemID uuid.UUID, message string) {
	b.Append(Entry{Level: LevelError, Message: message, ItemID: itemID})
}

// Snapshot returns a copy of the current entries, oldest first.
func (b *Buffer) Snapshot() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the current number of buffered entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
