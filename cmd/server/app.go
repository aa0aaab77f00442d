package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/proofsheet/proofsheet-api/internal/api"
	"github.com/proofsheet/proofsheet-api/internal/archive"
	"github.com/proofsheet/proofsheet-api/internal/config"
	"github.com/proofsheet/proofsheet-api/internal/dispatch"
	"github.com/proofsheet/proofsheet-api/internal/domain"
	"github.com/proofsheet/proofsheet-api/internal/events"
	"github.com/proofsheet/proofsheet-api/internal/generation"
	"github.com/proofsheet/proofsheet-api/internal/platform/gemini"
	"github.com/proofsheet/proofsheet-api/internal/session"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	generator generation.Generator
	activity  *events.Buffer
	pool      *dispatch.Pool
	session   *session.Session
}

// newApplication creates an application instance with all dependencies
// initialized: the image backend client, the worker pool (started), the
// accepted-image archiver, and the review session wiring them together.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.generator, err = gemini.NewImageGenerator(
		ctx,
		logger.With("component", "image_generator"),
		cfg.Generation,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image generator: %w", err)
	}
	logger.Info("Image generator initialized", "model", cfg.Generation.ModelName)

	app.activity = events.NewBuffer(0)

	app.pool = dispatch.NewPool(dispatch.Config{
		WorkerCount: cfg.Tasks.WorkerCount,
		QueueSize:   cfg.Tasks.QueueSize,
	}, app.generator, logger, app.activity)
	app.pool.Start()
	logger.Info("Task pool started",
		"worker_count", cfg.Tasks.WorkerCount,
		"queue_size", cfg.Tasks.QueueSize)

	archiver := archive.New(cfg.Output.Dir)

	app.session = session.New(session.Config{
		TaskTimeout:        cfg.Tasks.TaskTimeout,
		ResultProbeTimeout: cfg.Tasks.ResultProbeTimeout,
		MaxPromptsPerBatch: cfg.Tasks.MaxPromptsPerBatch,
		DefaultOptions: domain.ImageOptions{
			Size:    cfg.Generation.ImageSize,
			Quality: domain.Quality(cfg.Generation.ImageQuality),
		},
	}, session.PoolDispatcher{Pool: app.pool}, archiver, app.activity, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the background reconciliation loop and the HTTP server,
// blocking until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := api.NewRouter(app.session, app.logger)

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.pool != nil {
		app.pool.Stop()
	}

	app.logger.Info("Application shutdown completed")
}
