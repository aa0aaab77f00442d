package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/proofsheet/proofsheet-api/internal/api/shared"
	"github.com/proofsheet/proofsheet-api/internal/domain"
	"github.com/proofsheet/proofsheet-api/internal/session"
)

// RefineRequest represents the request body for refining an item.
type RefineRequest struct {
	Instruction string `json:"instruction" validate:"required,min=1"`
}

// ItemHandler handles HTTP requests against individual queue items.
type ItemHandler struct {
	session *session.Session
	logger  *slog.Logger
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(s *session.Session, logger *slog.Logger) *ItemHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ItemHandler")
	}

	return &ItemHandler{
		session: s,
		logger:  logger.With(slog.String("component", "item_handler")),
	}
}

// itemID parses the {id} URL parameter. It writes the error response
// itself and reports ok=false when the parameter is missing or malformed.
func (h *ItemHandler) itemID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Item ID is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Warn("invalid item ID format", slog.String("item_id", raw))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid item ID format")
		return uuid.Nil, false
	}
	return id, true
}

// GetItem handles GET /api/items/{id} requests.
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	item, found := h.session.GetItem(id)
	if !found {
		shared.RespondWithError(w, r, http.StatusNotFound, "Item not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// GetImage handles GET /api/items/{id}/image requests, serving the raw
// result image bytes.
func (h *ItemHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	item, found := h.session.GetItem(id)
	if !found {
		shared.RespondWithError(w, r, http.StatusNotFound, "Item not found")
		return
	}
	if item.Result == nil {
		shared.RespondWithError(w, r, http.StatusConflict, "Item has no result image yet")
		return
	}

	h.writeImage(w, item.Result)
}

// GetSource handles GET /api/items/{id}/source requests, serving the raw
// source image bytes of a transform item.
func (h *ItemHandler) GetSource(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	item, found := h.session.GetItem(id)
	if !found {
		shared.RespondWithError(w, r, http.StatusNotFound, "Item not found")
		return
	}
	if item.Source == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Item has no source image")
		return
	}

	h.writeImage(w, item.Source)
}

func (h *ItemHandler) writeImage(w http.ResponseWriter, img *domain.Image) {
	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(img.Size()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		h.logger.Error("failed to write image response", slog.String("error", err.Error()))
	}
}

// AcceptItem handles POST /api/items/{id}/accept requests, persisting the
// result image and removing the item from the queue.
func (h *ItemHandler) AcceptItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	path, err := h.session.Accept(id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AcceptResponse{Path: path})
}

// RejectItem handles POST /api/items/{id}/reject requests.
func (h *ItemHandler) RejectItem(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, h.session.Reject)
}

// RetryItem handles POST /api/items/{id}/retry requests, re-dispatching a
// failed, timed-out, or cancelled item under the same identity.
func (h *ItemHandler) RetryItem(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, h.session.Retry)
}

// CancelItem handles POST /api/items/{id}/cancel requests.
func (h *ItemHandler) CancelItem(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, h.session.Cancel)
}

// SkipItem handles POST /api/items/{id}/skip requests, deferring the item
// to the back of the queue.
func (h *ItemHandler) SkipItem(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, h.session.SkipToBack)
}

// DeleteItem handles DELETE /api/items/{id} requests, discarding the item
// without adjusting the review counters.
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, h.session.Remove)
}

// SelectItem handles POST /api/items/{id}/select requests.
func (h *ItemHandler) SelectItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	if !h.session.Select(id) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Item not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RefineItem handles POST /api/items/{id}/refine requests: a new
// transform item built from the item's current image replaces the
// original in the queue.
func (h *ItemHandler) RefineItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	var req RefineRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	newID, err := h.session.Refine(id, req.Instruction)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	item, found := h.session.GetItem(newID)
	if !found {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, itemToResponse(item))
}

// runAction parses the item id, invokes the session action, and writes a
// 204 on success.
func (h *ItemHandler) runAction(w http.ResponseWriter, r *http.Request, action func(uuid.UUID) error) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	if err := action(id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
