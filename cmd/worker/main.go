// Command worker consumes queued quality runs and executes the
// detect-and-clean pipeline against the warehouse.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	bqstore "github.com/acarvalho/p2p-quality/internal/infra/bigquery"
	"github.com/acarvalho/p2p-quality/internal/logger"
	"github.com/acarvalho/p2p-quality/internal/runs"
	"github.com/acarvalho/p2p-quality/internal/runs/inmemory"
)

func main() {
	log := logger.New()

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	repo, err := bqstore.NewRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create warehouse repository")
	}
	defer repo.Close()

	// In production this would be replaced with Cloud Tasks or Pub/Sub.
	runStore := inmemory.NewStore()
	runQueue := inmemory.NewQueue(100, runStore)

	executor := &runs.Executor{Source: repo, Sink: repo}

	log.Info().Msg("Starting worker service")

	if err := runQueue.Start(ctx, executor.Handler()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start run consumer")
	}

	log.Info().Msg("Worker service started, waiting for runs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := runQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}
