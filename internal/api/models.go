package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/proofsheet/proofsheet-api/internal/domain"
	"github.com/proofsheet/proofsheet-api/internal/events"
	"github.com/proofsheet/proofsheet-api/internal/session"
)

// ImageMeta describes an image payload without carrying its bytes; the
// bytes are served separately from the item's image endpoints.
type ImageMeta struct {
	MIMEType  string `json:"mime_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SizeBytes int    `json:"size_bytes"`
}

// ItemResponse represents one review queue item.
type ItemResponse struct {
	ID               string     `json:"id"`
	Kind             string     `json:"kind"`
	Prompt           string     `json:"prompt"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	Size             string     `json:"size"`
	Quality          string     `json:"quality"`
	OriginalFilename string     `json:"original_filename,omitempty"`
	LastError        string     `json:"last_error,omitempty"`
	Source           *ImageMeta `json:"source,omitempty"`
	Result           *ImageMeta `json:"result,omitempty"`
}

// QueueResponse represents the full review queue in display order.
type QueueResponse struct {
	Items       []ItemResponse `json:"items"`
	SelectedID  string         `json:"selected_id,omitempty"`
	Outstanding int            `json:"outstanding"`
}

// StatsResponse represents the session counters.
type StatsResponse struct {
	Generated   int `json:"generated"`
	Accepted    int `json:"accepted"`
	Rejected    int `json:"rejected"`
	QueueLength int `json:"queue_length"`
	Outstanding int `json:"outstanding"`
}

// ActivityEntryResponse represents one recent activity log entry.
type ActivityEntryResponse struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	ItemID  string    `json:"item_id,omitempty"`
}

// EnqueueResponse acknowledges an accepted batch submission.
type EnqueueResponse struct {
	ItemIDs []string `json:"item_ids"`
	Count   int      `json:"count"`
}

// PollResponse reports the outcome of a reconciliation pass.
type PollResponse struct {
	Changed bool `json:"changed"`
}

// SelectionResponse describes the current selection.
type SelectionResponse struct {
	SelectedID string `json:"selected_id,omitempty"`
	Index      int    `json:"index"`
	Total      int    `json:"total"`
}

// AcceptResponse reports where an accepted image was saved.
type AcceptResponse struct {
	Path string `json:"path"`
}

// itemToResponse converts a domain.WorkItem to an ItemResponse.
func itemToResponse(item *domain.WorkItem) ItemResponse {
	return ItemResponse{
		ID:               item.ID.String(),
		Kind:             string(item.Kind),
		Prompt:           item.Prompt,
		Status:           string(item.Status),
		CreatedAt:        item.CreatedAt,
		Size:             item.Options.Size,
		Quality:          string(item.Options.Quality),
		OriginalFilename: item.OriginalFilename,
		LastError:        item.LastError,
		Source:           imageToMeta(item.Source),
		Result:           imageToMeta(item.Result),
	}
}

func imageToMeta(img *domain.Image) *ImageMeta {
	if img == nil {
		return nil
	}
	return &ImageMeta{
		MIMEType:  img.MIMEType,
		Width:     img.Width,
		Height:    img.Height,
		SizeBytes: img.Size(),
	}
}

func itemsToResponse(items []*domain.WorkItem) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, item := range items {
		out[i] = itemToResponse(item)
	}
	return out
}

func entryToResponse(entry events.Entry) ActivityEntryResponse {
	resp := ActivityEntryResponse{
		Time:    entry.Time,
		Level:   string(entry.Level),
		Message: entry.Message,
	}
	if entry.ItemID != uuid.Nil {
		resp.ItemID = entry.ItemID.String()
	}
	return resp
}

func statsToResponse(s *session.Session) StatsResponse {
	stats := s.StatsSnapshot()
	return StatsResponse{
		Generated:   stats.Generated,
		Accepted:    stats.Accepted,
		Rejected:    stats.Rejected,
		QueueLength: s.QueueLen(),
		Outstanding: s.Outstanding(),
	}
}

func idsToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
