package dispatch

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/proofsheet/proofsheet-api/internal/domain"
)

// ErrCancelled is the handle error recorded when work is cancelled
// before a worker picks it up.
var ErrCancelled = errors.New("task cancelled before execution")

// Handle lifecycle states.
const (
	statePending int32 = iota
	stateRunning
	stateDone
	stateCancelled
)

// Handle is the bookkeeping record for one outstanding backend call. It
// references its work item by id only — the item may be removed from the
// queue while the handle is still in flight, and the reconciler treats
// that as a silent no-op.
type Handle struct {
	itemID      uuid.UUID
	submittedAt time.Time

	// processingStartedAt is the instant the reconciler first observed
	// the call executing (not queued). Owned by the control thread.
	processingStartedAt time.Time

	state  atomic.Int32
	done   chan struct{}
	result *domain.Image
	err    error
}

func newHandle(itemID uuid.UUID) *Handle {
	return &Handle{
		itemID:      itemID,
		submittedAt: time.Now().UTC(),
		done:        make(chan struct{}),
	}
}

// ItemID returns the id of the work item this handle updates.
func (h *Handle) ItemID() uuid.UUID {
	return h.itemID
}

// SubmittedAt returns the dispatch time.
func (h *Handle) SubmittedAt() time.Time {
	return h.submittedAt
}

// Running reports whether the underlying call is currently executing in
// a worker slot, as opposed to waiting behind the pool's concurrency
// limit or already finished.
func (h *Handle) Running() bool {
	return h.state.Load() == stateRunning
}

// Done reports whether the call has finished (successfully, with an
// error, or via pre-start cancellation).
func (h *Handle) Done() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Cancel prevents the work from starting if it has not yet been picked
// up by a worker. It cannot preempt a call already in flight to the
// remote backend; in that case it returns false and the call runs to
// completion with its result discarded by whoever dropped the handle.
func (h *Handle) Cancel() bool {
	if !h.state.CompareAndSwap(statePending, stateCancelled) {
		return false
	}
	h.err = ErrCancelled
	close(h.done)
	return true
}

// Await waits up to timeout for the result. The bound keeps the control
// thread's polling loop from stalling on a misbehaving retrieval; callers
// pass a sub-100ms probe. The third return value reports whether the
// result was retrieved within the window.
func (h *Handle) Await(timeout time.Duration) (*domain.Image, error, bool) {
	select {
	case <-h.done:
		return h.result, h.err, true
	case <-time.After(timeout):
		return nil, nil, false
	}
}

// ProcessingStartedAt returns the recorded execution start time; the
// zero time means the reconciler has not yet observed the call running.
func (h *Handle) ProcessingStartedAt() time.Time {
	return h.processingStartedAt
}

// MarkProcessingStarted records the execution start time. Called only by
// the reconciler on the control thread.
func (h *Handle) MarkProcessingStarted(t time.Time) {
	h.processingStartedAt = t
}

// begin transitions pending → running. Called by a worker; returns false
// when the handle was cancelled before pick-up.
func (h *Handle) begin() bool {
	return h.state.CompareAndSwap(statePending, stateRunning)
}

// complete stores the outcome and releases waiters. Called exactly once
// by the executing worker, after begin succeeded.
func (h *Handle) complete(result *domain.Image, err error) {
	h.result = result
	h.err = err
	h.state.Store(stateDone)
	close(h.done)
}
