package domain

import (
	"time"

	"github.com/google/uuid"
)

// ItemKind distinguishes the two work item variants.
type ItemKind string

// Possible item kinds.
const (
	KindTextToImage    ItemKind = "text_to_image"
	KindImageTransform ItemKind = "image_transform"
)

// ItemStatus represents the processing state of a work item.
type ItemStatus string

// Possible item status values. Generating is the only non-terminal
// state; Ready is the terminal success; Failed, Timeout and Cancelled
// are terminal failures that can be re-entered into Generating via retry.
const (
	StatusGenerating ItemStatus = "generating"
	StatusReady      ItemStatus = "ready"
	StatusFailed     ItemStatus = "failed"
	StatusTimeout    ItemStatus = "timeout"
	StatusCancelled  ItemStatus = "cancelled"
)

// IsTerminal reports whether no further automatic transition occurs from
// the status without an explicit retry.
func (s ItemStatus) IsTerminal() bool {
	switch s {
	case StatusReady, StatusFailed, StatusTimeout, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanRetry reports whether an item in this status may be re-dispatched.
func (s ItemStatus) CanRetry() bool {
	switch s {
	case StatusFailed, StatusTimeout, StatusCancelled:
		return true
	default:
		return false
	}
}

// Quality is the backend rendering quality preset.
type Quality string

// Supported quality presets.
const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// ImageOptions carries the rendering parameters captured when an item is
// enqueued, so a retry reproduces the original request exactly.
type ImageOptions struct {
	Size    string  `json:"size"`
	Quality Quality `json:"quality"`
}

// WorkItem is one unit in the review queue: a pending, completed or
// failed generation/transformation request together with its result.
type WorkItem struct {
	ID   uuid.UUID `json:"id"`
	Kind ItemKind  `json:"kind"`

	// Prompt is the generation prompt for text-to-image items and the
	// transformation instruction for transform items (where it may be
	// empty; the backend substitutes a generic enhancement request).
	Prompt string `json:"prompt"`

	// Source is the image being transformed. Only present for
	// image_transform items and immutable after creation.
	Source *Image `json:"source,omitempty"`

	// Result holds the produced image once the associated task completes
	// successfully. It is nil in every other status.
	Result *Image `json:"result,omitempty"`

	Status    ItemStatus   `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	Options   ImageOptions `json:"options"`

	// OriginalFilename is set for transform items sourced from an upload
	// and is folded into the filename when the item is accepted.
	OriginalFilename string `json:"original_filename,omitempty"`

	// LastError is a redacted description of the most recent failure,
	// kept for display next to failed/timeout items.
	LastError string `json:"last_error,omitempty"`
}

// NewTextItem creates a text-to-image work item in the generating state.
// Returns an error if validation fails.
func NewTextItem(prompt string, opts ImageOptions) (*WorkItem, error) {
	item := &WorkItem{
		ID:        uuid.New(),
		Kind:      KindTextToImage,
		Prompt:    prompt,
		Status:    StatusGenerating,
		CreatedAt: time.Now().UTC(),
		Options:   opts,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// NewTransformItem creates an image-transform work item in the generating
// state. The instruction may be empty. Returns an error if validation fails.
func NewTransformItem(source *Image, instruction, originalFilename string, opts ImageOptions) (*WorkItem, error) {
	item := &WorkItem{
		ID:               uuid.New(),
		Kind:             KindImageTransform,
		Prompt:           instruction,
		Source:           source,
		Status:           StatusGenerating,
		CreatedAt:        time.Now().UTC(),
		Options:          opts,
		OriginalFilename: originalFilename,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks the item's structural rules, including the result/status
// invariant: the result image is present exactly when the status is ready.
func (w *WorkItem) Validate() error {
	if w.ID == uuid.Nil {
		return ErrInvalidID
	}

	switch w.Kind {
	case KindTextToImage:
		if w.Prompt == "" {
			return ErrEmptyPrompt
		}
	case KindImageTransform:
		if w.Source == nil {
			return ErrMissingSource
		}
	default:
		return ErrInvalidKind
	}

	if !isValidItemStatus(w.Status) {
		return ErrInvalidStatus
	}

	if (w.Result != nil) != (w.Status == StatusReady) {
		return ErrValidation
	}

	return nil
}

// Complete records a successful result, moving the item to ready.
func (w *WorkItem) Complete(result *Image) {
	w.Result = result
	w.Status = StatusReady
	w.LastError = ""
}

// Fail records a terminal failure with an optional diagnostic message.
func (w *WorkItem) Fail(status ItemStatus, reason string) {
	w.Result = nil
	w.Status = status
	w.LastError = reason
}

// ResetForRetry returns the item to the generating state with no result,
// ready for a fresh dispatch cycle under the same identity.
func (w *WorkItem) ResetForRetry() {
	w.Result = nil
	w.Status = StatusGenerating
	w.LastError = ""
}

func isValidItemStatus(status ItemStatus) bool {
	switch status {
	case StatusGenerating, StatusReady, StatusFailed, StatusTimeout, StatusCancelled:
		return true
	default:
		return false
	}
}
