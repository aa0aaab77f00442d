package events

import (
	"time"

	"github.com/google/uuid"
)

// Level classifies an activity entry for display.
type Level string

// Possible entry levels.
const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Entry is one line of session activity: a task submitted, completed,
// failed, or an item acted on by the user.
type Entry struct {
	// Time is when the entry was recorded.
	Time time.Time `json:"time"`

	// Level indicates whether the entry describes normal progress or a failure.
	Level Level `json:"level"`

	// Message is the human-readable activity line.
	Message string `json:"message"`

	// ItemID references the work item the entry concerns, if any.
	ItemID uuid.UUID `json:"item_id,omitempty"`
}
