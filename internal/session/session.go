package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/proofsheet/proofsheet-api/internal/dispatch"
	"github.com/proofsheet/proofsheet-api/internal/domain"
	"github.com/proofsheet/proofsheet-api/internal/events"
	"github.com/proofsheet/proofsheet-api/internal/prompt"
	"github.com/proofsheet/proofsheet-api/internal/queue"
)

// Common errors returned by the session
var (
	ErrItemNotFound     = errors.New("item not found")
	ErrItemNotRetryable = errors.New("item is not in a retryable state")
	ErrNoPrompts        = errors.New("no prompts to enqueue")
	ErrTooManyPrompts   = errors.New("too many prompts in one submission")
	ErrNoValidUploads   = errors.New("no readable images in upload")
	ErrNoSourceImage    = errors.New("no source image available for refinement")
)

// TaskHandle is the session's view of one outstanding backend call.
// *dispatch.Handle satisfies it; tests substitute fakes to drive the
// reconciler through states a live pool cannot reach on demand.
type TaskHandle interface {
	ItemID() uuid.UUID
	Running() bool
	Done() bool
	Cancel() bool
	Await(timeout time.Duration) (*domain.Image, error, bool)
	ProcessingStartedAt() time.Time
	MarkProcessingStarted(t time.Time)
}

// Dispatcher submits work to the background pool.
type Dispatcher interface {
	Submit(req dispatch.Request) (TaskHandle, error)
}

// PoolDispatcher adapts *dispatch.Pool to the Dispatcher interface.
type PoolDispatcher struct {
	Pool *dispatch.Pool
}

// Submit forwards to the pool, converting the concrete handle to the
// session's interface.
func (d PoolDispatcher) Submit(req dispatch.Request) (TaskHandle, error) {
	handle, err := d.Pool.Submit(req)
	if err != nil {
		return nil, err
	}
	return handle, nil
}

// Persister saves an accepted item's result image and returns its path.
type Persister interface {
	Save(item *domain.WorkItem) (string, error)
}

// Stats are the session counters shown to the user.
type Stats struct {
	Generated int `json:"generated"`
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
}

// Config holds session tuning knobs.
type Config struct {
	// TaskTimeout bounds active processing time per task, measured from
	// the moment the reconciler first observes the call executing — time
	// spent queued behind the worker pool does not count. Defaults to 90s.
	TaskTimeout time.Duration

	// ResultProbeTimeout bounds the result-retrieval probe so the
	// polling loop never stalls on a misbehaving retrieval. Defaults to
	// 100ms.
	ResultProbeTimeout time.Duration

	// MaxPromptsPerBatch caps one generation submission. Defaults to 150.
	MaxPromptsPerBatch int

	// DefaultOptions are the rendering presets applied to new items.
	DefaultOptions domain.ImageOptions
}

// DefaultConfig returns a Config with the standard defaults.
func DefaultConfig() Config {
	return Config{
		TaskTimeout:        90 * time.Second,
		ResultProbeTimeout: 100 * time.Millisecond,
		MaxPromptsPerBatch: 150,
		DefaultOptions: domain.ImageOptions{
			Size:    "1024x1024",
			Quality: domain.QualityMedium,
		},
	}
}

// Upload is one user-provided image file for transformation.
type Upload struct {
	Data     []byte
	Filename string
}

// Session owns the review queue, selection, outstanding handles, and
// counters. All mutation happens under its mutex; background workers
// communicate exclusively through handles and the activity buffer.
type Session struct {
	mu sync.Mutex

	config     Config
	queue      *queue.ReviewQueue
	dispatcher Dispatcher
	persister  Persister
	activity   *events.Buffer
	logger     *slog.Logger

	// handles are outstanding task handles in submission order.
	handles []TaskHandle

	// selectedID is uuid.Nil when nothing is selected.
	selectedID uuid.UUID

	stats Stats

	// now is swapped for a fake clock in tests.
	now func() time.Time
}

// New creates a Session. Zero config fields fall back to defaults.
func New(config Config, dispatcher Dispatcher, persister Persister, activity *events.Buffer, logger *slog.Logger) *Session {
	defaults := DefaultConfig()
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = defaults.TaskTimeout
	}
	if config.ResultProbeTimeout <= 0 {
		config.ResultProbeTimeout = defaults.ResultProbeTimeout
	}
	if config.MaxPromptsPerBatch <= 0 {
		config.MaxPromptsPerBatch = defaults.MaxPromptsPerBatch
	}
	if config.DefaultOptions.Size == "" {
		config.DefaultOptions = defaults.DefaultOptions
	}

	return &Session{
		config:     config,
		queue:      queue.New(logger),
		dispatcher: dispatcher,
		persister:  persister,
		activity:   activity,
		logger:     logger,
		handles:    make([]TaskHandle, 0),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// EnqueueGeneration creates one generating placeholder item per prompt
// and submits the corresponding tasks. All prompts are validated before
// anything is appended, so a malformed submission never pollutes the
// queue.
func (s *Session) EnqueueGeneration(prompts []string) ([]uuid.UUID, error) {
	if len(prompts) == 0 {
		return nil, ErrNoPrompts
	}
	if len(prompts) > s.config.MaxPromptsPerBatch {
		return nil, fmt.Errorf("%w: %d exceeds limit of %d",
			ErrTooManyPrompts, len(prompts), s.config.MaxPromptsPerBatch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]*domain.WorkItem, 0, len(prompts))
	for _, p := range prompts {
		item, err := domain.NewTextItem(p, s.config.DefaultOptions)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		s.queue.Append(item)
		s.submitLocked(item)
		ids = append(ids, item.ID)
	}

	s.logger.Info("generation batch enqueued", "count", len(ids))
	s.selectFirstIfNoneLocked(ids)
	return ids, nil
}

// EnqueueTransform validates the uploads, creates one generating item per
// readable image, and submits the transformation tasks. Unreadable files
// are skipped (with an activity entry) rather than polluting the queue;
// if nothing is readable, ErrNoValidUploads is returned.
func (s *Session) EnqueueTransform(uploads []Upload, instruction string) ([]uuid.UUID, error) {
	if len(uploads) == 0 {
		return nil, ErrNoValidUploads
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(uploads))
	for _, upload := range uploads {
		img, err := domain.DecodeUpload(upload.Data)
		if err != nil {
			s.logger.Warn("skipping unreadable upload",
				"filename", upload.Filename,
				"error", err)
			s.activity.Error(uuid.Nil,
				fmt.Sprintf("Skipped unreadable image: %s", upload.Filename))
			continue
		}

		item, err := domain.NewTransformItem(img, instruction, upload.Filename, s.config.DefaultOptions)
		if err != nil {
			return nil, err
		}

		s.queue.Append(item)
		s.submitLocked(item)
		ids = append(ids, item.ID)
	}

	if len(ids) == 0 {
		return nil, ErrNoValidUploads
	}

	s.logger.Info("transform batch enqueued", "count", len(ids))
	s.selectFirstIfNoneLocked(ids)
	return ids, nil
}

// Refine requests a re-transformation of an existing item: a new
// transform item is created from the item's current image (result if
// ready, otherwise the original source), the old item leaves the queue,
// and selection moves to the new item.
func (s *Session) Refine(id uuid.UUID, instruction string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.queue.FindByID(id)
	if item == nil {
		return uuid.Nil, ErrItemNotFound
	}

	source := item.Result
	if source == nil {
		source = item.Source
	}
	if source == nil {
		return uuid.Nil, ErrNoSourceImage
	}

	replacement, err := domain.NewTransformItem(source, instruction, item.OriginalFilename, item.Options)
	if err != nil {
		return uuid.Nil, err
	}

	s.queue.Append(replacement)
	s.submitLocked(replacement)

	// The refined item replaces the original.
	if handle := s.takeHandleLocked(id); handle != nil {
		handle.Cancel()
	}
	s.removeItemLocked(id)
	s.selectedID = replacement.ID

	s.activity.Info(replacement.ID,
		fmt.Sprintf("Refining: %s", prompt.Truncate(instruction, 40)))
	return replacement.ID, nil
}

// Snapshot returns the queue in display order. Item structs are copied;
// image payloads are shared but immutable.
func (s *Session) Snapshot() []*domain.WorkItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.queue.Items()
	out := make([]*domain.WorkItem, len(items))
	for i, item := range items {
		copied := *item
		out[i] = &copied
	}
	return out
}

// GetItem returns a copy of the item with the given id.
func (s *Session) GetItem(id uuid.UUID) (*domain.WorkItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.queue.FindByID(id)
	if item == nil {
		return nil, false
	}
	copied := *item
	return &copied, true
}

// StatsSnapshot returns the current counters.
func (s *Session) StatsSnapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// QueueLen returns the number of items in the review queue.
func (s *Session) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Outstanding returns the number of tracked in-flight handles.
func (s *Session) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Activity returns the recent activity entries, oldest first.
func (s *Session) Activity() []events.Entry {
	return s.activity.Snapshot()
}

// submitLocked dispatches the task for an item and tracks its handle.
// A dispatch failure (pool full or closed) marks the item failed
// immediately; there is no handle to reconcile later.
func (s *Session) submitLocked(item *domain.WorkItem) {
	req := dispatch.Request{
		ItemID:  item.ID,
		Kind:    item.Kind,
		Prompt:  item.Prompt,
		Source:  item.Source,
		Options: item.Options,
	}

	handle, err := s.dispatcher.Submit(req)
	if err != nil {
		s.logger.Error("task submission failed",
			"item_id", item.ID,
			"error", err)
		item.Fail(domain.StatusFailed, "submission failed: "+err.Error())
		return
	}

	s.handles = append(s.handles, handle)
	s.activity.Info(item.ID,
		fmt.Sprintf("Submitted: %s", prompt.Truncate(item.Prompt, 40)))
}

// takeHandleLocked removes and returns the handle tracking the given
// item id, or nil when the item has no outstanding handle.
func (s *Session) takeHandleLocked(itemID uuid.UUID) TaskHandle {
	for i, h := range s.handles {
		if h.ItemID() == itemID {
			s.handles = append(s.handles[:i], s.handles[i+1:]...)
			return h
		}
	}
	return nil
}

// removeItemLocked removes an item and repairs the selection: the item
// now occupying the removed position is selected, falling back to the
// new last item, or to no selection when the queue empties.
func (s *Session) removeItemLocked(id uuid.UUID) bool {
	removedIndex := s.queue.IndexOf(id)
	if removedIndex < 0 {
		return false
	}

	s.queue.RemoveByID(id)

	if s.selectedID != id {
		return true
	}

	if s.queue.Len() == 0 {
		s.selectedID = uuid.Nil
		return true
	}

	index := removedIndex
	if index >= s.queue.Len() {
		index = s.queue.Len() - 1
	}
	s.selectedID = s.queue.At(index).ID
	return true
}

// selectFirstIfNoneLocked selects the first of the given ids when
// nothing is currently selected, so a fresh batch is immediately
// visible.
func (s *Session) selectFirstIfNoneLocked(ids []uuid.UUID) {
	if s.selectedID == uuid.Nil && len(ids) > 0 {
		s.selectedID = ids[0]
	}
}
