package api

import (
	"log/slog"
	"net/http"

	"github.com/proofsheet/proofsheet-api/internal/api/shared"
	"github.com/proofsheet/proofsheet-api/internal/session"
)

// QueueHandler handles queue-wide HTTP requests: listing, counters,
// activity, and on-demand reconciliation.
type QueueHandler struct {
	session *session.Session
	logger  *slog.Logger
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(s *session.Session, logger *slog.Logger) *QueueHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for QueueHandler")
	}

	return &QueueHandler{
		session: s,
		logger:  logger.With(slog.String("component", "queue_handler")),
	}
}

// GetQueue handles GET /api/queue requests, returning the review queue
// in display order along with the current selection.
func (h *QueueHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	resp := QueueResponse{
		Items:       itemsToResponse(h.session.Snapshot()),
		Outstanding: h.session.Outstanding(),
	}
	if id, ok := h.session.SelectedID(); ok {
		resp.SelectedID = id.String()
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetStats handles GET /api/queue/stats requests.
func (h *QueueHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, statsToResponse(h.session))
}

// GetLogs handles GET /api/logs requests, returning the recent activity
// entries, oldest first.
func (h *QueueHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	entries := h.session.Activity()
	out := make([]ActivityEntryResponse, len(entries))
	for i, entry := range entries {
		out[i] = entryToResponse(entry)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Poll handles POST /api/poll requests, running one reconciliation pass
// immediately instead of waiting for the background interval. The
// response reports whether any item changed, so clients know whether a
// refresh is worthwhile.
func (h *QueueHandler) Poll(w http.ResponseWriter, r *http.Request) {
	changed := h.session.Poll()
	shared.RespondWithJSON(w, r, http.StatusOK, PollResponse{Changed: changed})
}
