package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// startHTTPServer starts the HTTP server and the background
// reconciliation ticker, with graceful shutdown on SIGINT/SIGTERM.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: router,
	}

	serverCtx, cancelServer := context.WithCancel(ctx)
	defer cancelServer()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	// The reconciliation loop folds completed tasks back into the queue
	// on a fixed cadence; clients can also trigger a pass via POST /api/poll.
	go app.runReconciler(serverCtx)

	go func() {
		app.logger.Info("Starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error("Server failed", "error", err)
			cancelServer()
		}
	}()

	select {
	case <-shutdownCh:
		app.logger.Info("Shutting down server...")
	case <-serverCtx.Done():
		app.logger.Info("Server context canceled, shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Server shutdown failed", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.cleanup()

	app.logger.Info("Server shutdown completed")
	return nil
}

// runReconciler drives Session.Poll at the configured interval until the
// context is cancelled.
func (app *application) runReconciler(ctx context.Context) {
	ticker := time.NewTicker(app.config.Server.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if app.session.Poll() {
				app.logger.Debug("reconciliation pass changed queue state")
			}
		case <-ctx.Done():
			return
		}
	}
}
