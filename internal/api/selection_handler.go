package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/proofsheet/proofsheet-api/internal/api/shared"
	"github.com/proofsheet/proofsheet-api/internal/session"
)

// SetSelectionRequest represents the request body for setting the
// selection by item id.
type SetSelectionRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

// SelectionHandler handles selection navigation HTTP requests.
type SelectionHandler struct {
	session *session.Session
	logger  *slog.Logger
}

// NewSelectionHandler creates a new SelectionHandler.
func NewSelectionHandler(s *session.Session, logger *slog.Logger) *SelectionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SelectionHandler")
	}

	return &SelectionHandler{
		session: s,
		logger:  logger.With(slog.String("component", "selection_handler")),
	}
}

// GetSelection handles GET /api/selection requests.
func (h *SelectionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.selectionResponse())
}

// SetSelection handles POST /api/selection requests.
func (h *SelectionHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var req SetSelectionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	if !h.session.Select(id) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Item not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, h.selectionResponse())
}

// SelectNext handles POST /api/selection/next requests, moving the
// selection one position forward, clamped at the end of the queue.
func (h *SelectionHandler) SelectNext(w http.ResponseWriter, r *http.Request) {
	h.session.Next()
	shared.RespondWithJSON(w, r, http.StatusOK, h.selectionResponse())
}

// SelectPrevious handles POST /api/selection/previous requests.
func (h *SelectionHandler) SelectPrevious(w http.ResponseWriter, r *http.Request) {
	h.session.Previous()
	shared.RespondWithJSON(w, r, http.StatusOK, h.selectionResponse())
}

func (h *SelectionHandler) selectionResponse() SelectionResponse {
	resp := SelectionResponse{
		Index: -1,
		Total: h.session.QueueLen(),
	}
	if id, ok := h.session.SelectedID(); ok {
		resp.SelectedID = id.String()
	}
	if index, ok := h.session.CurrentIndex(); ok {
		resp.Index = index
	}
	return resp
}
