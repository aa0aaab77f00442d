package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/proofsheet/proofsheet-api/internal/api/shared"
	"github.com/proofsheet/proofsheet-api/internal/prompt"
	"github.com/proofsheet/proofsheet-api/internal/redact"
	"github.com/proofsheet/proofsheet-api/internal/session"
)

// maxUploadBytes caps one transform submission's multipart payload.
const maxUploadBytes = 64 << 20

// CreateGenerationRequest represents the request body for submitting a
// generation batch. The prompt text may contain multiple prompts
// separated by semicolons.
type CreateGenerationRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1"`
}

// GenerationHandler handles batch submission HTTP requests.
type GenerationHandler struct {
	session *session.Session
	logger  *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(s *session.Session, logger *slog.Logger) *GenerationHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for GenerationHandler")
	}

	return &GenerationHandler{
		session: s,
		logger:  logger.With(slog.String("component", "generation_handler")),
	}
}

// CreateGenerations handles POST /api/generations requests. It splits the
// prompt text into individual prompts and enqueues one item per prompt;
// the work itself completes asynchronously.
func (h *GenerationHandler) CreateGenerations(w http.ResponseWriter, r *http.Request) {
	var req CreateGenerationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	prompts := prompt.SplitPrompts(req.Prompt)
	if len(prompts) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"No usable prompts found; prompts must be at least 6 characters")
		return
	}

	ids, err := h.session.EnqueueGeneration(prompts)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("generation batch accepted", slog.Int("count", len(ids)))
	shared.RespondWithJSON(w, r, http.StatusAccepted, EnqueueResponse{
		ItemIDs: idsToStrings(ids),
		Count:   len(ids),
	})
}

// CreateTransforms handles POST /api/transforms requests. The multipart
// body carries one or more image files under the "images" field and an
// optional "instruction" field applied to all of them.
func (h *GenerationHandler) CreateTransforms(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.logger.Warn("invalid multipart form", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "No image files provided")
		return
	}

	instruction := r.FormValue("instruction")

	uploads := make([]session.Upload, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			h.logger.Warn("failed to open uploaded file",
				slog.String("filename", header.Filename),
				slog.String("error", redact.Error(err)))
			continue
		}

		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			h.logger.Warn("failed to read uploaded file",
				slog.String("filename", header.Filename),
				slog.String("error", redact.Error(err)))
			continue
		}

		uploads = append(uploads, session.Upload{
			Data:     data,
			Filename: header.Filename,
		})
	}

	ids, err := h.session.EnqueueTransform(uploads, instruction)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("transform batch accepted", slog.Int("count", len(ids)))
	shared.RespondWithJSON(w, r, http.StatusAccepted, EnqueueResponse{
		ItemIDs: idsToStrings(ids),
		Count:   len(ids),
	})
}
