// Arbiter - Meta-evaluation and agent rotation daemon
//
// Continuously evaluates a roster of decision-making agents against the
// prevailing market regime, maintains regime-scoped rankings, and records
// rotation recommendations for the active agent set.
//
// Architecture:
//   - One SQLite meta store (WAL mode) holds signals, performance records,
//     rankings, rotation decisions, and regime snapshots
//   - Four independent evaluation cycles coordinate only through the store
//   - The HTTP API serves the consolidated summary and per-module views
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/junghoon-dev/arbiter/internal/config"
	"github.com/junghoon-dev/arbiter/internal/di"
	"github.com/junghoon-dev/arbiter/internal/server"
	"github.com/junghoon-dev/arbiter/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting Arbiter")

	// Wire all dependencies: meta store, repositories, services, cycles
	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:            log,
		DB:             container.DB,
		Config:         cfg,
		Port:           cfg.Port,
		DevMode:        cfg.DevMode,
		Orchestrator:   container.Orchestrator,
		KRXClient:      container.KRXClient,
		RegimeService:  container.RegimeService,
		RegimeRepo:     container.RegimeRepo,
		SignalRepo:     container.SignalRepo,
		RankingRepo:    container.RankingRepo,
		RotationRepo:   container.RotationRepo,
		SummaryService: container.SummaryService,
	})

	// Start server in goroutine so the evaluation cycles and scheduler can
	// start concurrently
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Start the four evaluation cycles
	container.Orchestrator.Start()
	log.Info().Msg("Evaluation cycles started")

	// Start maintenance scheduler (retention pruning, WAL checkpoints)
	container.Scheduler.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	// Stop cycles first so no new writes land during shutdown. Stop blocks
	// until in-flight iterations complete.
	container.Orchestrator.Stop()
	log.Info().Msg("Evaluation cycles stopped")

	container.Scheduler.Stop()

	// Graceful shutdown: in-flight HTTP requests get up to 10 seconds
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
