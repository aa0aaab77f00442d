package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/proofsheet/proofsheet-api/internal/api/middleware"
	"github.com/proofsheet/proofsheet-api/internal/api/shared"
	"github.com/proofsheet/proofsheet-api/internal/session"
)

// NewRouter builds the HTTP routing tree over the given session.
func NewRouter(s *session.Session, logger *slog.Logger) chi.Router {
	generationHandler := NewGenerationHandler(s, logger)
	queueHandler := NewQueueHandler(s, logger)
	itemHandler := NewItemHandler(s, logger)
	selectionHandler := NewSelectionHandler(s, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/generations", generationHandler.CreateGenerations)
		r.Post("/transforms", generationHandler.CreateTransforms)
		r.Post("/poll", queueHandler.Poll)

		r.Get("/queue", queueHandler.GetQueue)
		r.Get("/queue/stats", queueHandler.GetStats)
		r.Get("/logs", queueHandler.GetLogs)

		r.Route("/items/{id}", func(r chi.Router) {
			r.Get("/", itemHandler.GetItem)
			r.Delete("/", itemHandler.DeleteItem)
			r.Get("/image", itemHandler.GetImage)
			r.Get("/source", itemHandler.GetSource)
			r.Post("/accept", itemHandler.AcceptItem)
			r.Post("/reject", itemHandler.RejectItem)
			r.Post("/retry", itemHandler.RetryItem)
			r.Post("/cancel", itemHandler.CancelItem)
			r.Post("/skip", itemHandler.SkipItem)
			r.Post("/select", itemHandler.SelectItem)
			r.Post("/refine", itemHandler.RefineItem)
		})

		r.Route("/selection", func(r chi.Router) {
			r.Get("/", selectionHandler.GetSelection)
			r.Post("/", selectionHandler.SetSelection)
			r.Post("/next", selectionHandler.SelectNext)
			r.Post("/previous", selectionHandler.SelectPrevious)
		})
	})

	return r
}
