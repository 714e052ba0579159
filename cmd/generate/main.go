// Command generate produces a synthetic dataset drop for one month: the
// three CSV files with realistic adoption patterns and injected anomalies.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/acarvalho/p2p-quality/internal/dataset"
	"github.com/acarvalho/p2p-quality/internal/generator"
	"github.com/acarvalho/p2p-quality/internal/logger"
)

func main() {
	log := logger.New()

	cfg := generator.DefaultConfig()
	out := flag.String("out", "data", "Output directory for the CSV files")
	flag.StringVar(&cfg.Month, "month", cfg.Month, "Target month (YYYY-MM)")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	flag.IntVar(&cfg.Users, "users", cfg.Users, "Number of users")
	flag.IntVar(&cfg.Transactions, "transactions", cfg.Transactions, "Number of transactions")
	flag.IntVar(&cfg.Events, "events", cfg.Events, "Number of app events")
	flag.Parse()

	ds, err := generator.New(cfg).Generate()
	if err != nil {
		log.Fatal().Err(err).Msg("Generation failed")
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}

	if err := dataset.WriteUsers(filepath.Join(*out, "users.csv"), ds.Users); err != nil {
		log.Fatal().Err(err).Msg("Failed to write users.csv")
	}
	if err := dataset.WriteTransactions(filepath.Join(*out, "transactions.csv"), ds.Transactions); err != nil {
		log.Fatal().Err(err).Msg("Failed to write transactions.csv")
	}
	if err := dataset.WriteAppEvents(filepath.Join(*out, "app_events.csv"), ds.Events); err != nil {
		log.Fatal().Err(err).Msg("Failed to write app_events.csv")
	}

	log.Info().
		Str("month", cfg.Month).
		Int("users", len(ds.Users)).
		Int("transactions", len(ds.Transactions)).
		Int("app_events", len(ds.Events)).
		Str("dir", *out).
		Msg("Dataset written")

	fmt.Printf("Generated dataset for %s in %s\n", cfg.Month, *out)
}
