// Package main implements the entry point for the proofsheet API server,
// which drives asynchronous AI image generation and an interactive
// review queue over HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/proofsheet/proofsheet-api/internal/config"
	"github.com/proofsheet/proofsheet-api/internal/platform/logger"
)

func main() {
	// A local .env is a development convenience; absence is fine.
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment from .env file")
	}

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up the logging system.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"model", cfg.Generation.ModelName,
		"worker_count", cfg.Tasks.WorkerCount,
		"output_dir", cfg.Output.Dir)

	return cfg, appLogger, nil
}
