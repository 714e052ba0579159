// Command clean executes one quality run synchronously: reads the raw
// tables, detects anomalies, writes the clean tables and the anomaly report.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"

	bqstore "github.com/acarvalho/p2p-quality/internal/infra/bigquery"
	"github.com/acarvalho/p2p-quality/internal/logger"
	"github.com/acarvalho/p2p-quality/internal/quality"
)

func main() {
	log := logger.New()

	runID := flag.String("run-id", "", "Run ID (defaults to a new UUID)")
	flag.Parse()

	if *runID == "" {
		*runID = uuid.New().String()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := bqstore.NewRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create warehouse repository")
	}
	defer repo.Close()

	log.Info().Str("run_id", *runID).Msg("Starting quality run")

	state, err := quality.Run(ctx, repo, repo, *runID)
	if err != nil {
		log.Fatal().Err(err).Msg("Quality run failed")
	}

	fmt.Printf("Run %s complete for window %s\n", *runID, state.Window)
	fmt.Printf("  clean users:        %d / %d\n", len(state.CleanUsers), len(state.Users))
	fmt.Printf("  clean transactions: %d / %d\n", len(state.CleanTransactions), len(state.Transactions))
	fmt.Printf("  clean app events:   %d / %d\n", len(state.CleanEvents), len(state.Events))
	fmt.Println("Anomaly report:")
	for _, f := range state.Report {
		if f.DistinctIDs != nil {
			fmt.Printf("  %-45s %6d (distinct ids: %d)\n", f.Category, f.BadRows, *f.DistinctIDs)
		} else {
			fmt.Printf("  %-45s %6d\n", f.Category, f.BadRows)
		}
	}
}
