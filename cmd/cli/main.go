// Command cli bundles the quality tooling behind subcommands: generating
// and uploading datasets, ingesting them, running the cleaner, and
// publishing results.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/acarvalho/p2p-quality/internal/dataset"
	"github.com/acarvalho/p2p-quality/internal/gcsio"
	"github.com/acarvalho/p2p-quality/internal/generator"
	bqstore "github.com/acarvalho/p2p-quality/internal/infra/bigquery"
	"github.com/acarvalho/p2p-quality/internal/insights"
	"github.com/acarvalho/p2p-quality/internal/logger"
	"github.com/acarvalho/p2p-quality/internal/metrics"
	"github.com/acarvalho/p2p-quality/internal/notionsync"
	"github.com/acarvalho/p2p-quality/internal/quality"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		runGenerate(log)
	case "upload":
		runUpload(log)
	case "ingest":
		runIngest(log)
	case "clean":
		runClean(log)
	case "metrics":
		runMetrics(log)
	case "insights":
		runInsights(log)
	case "notion":
		runNotion(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("P2P Quality CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate  Generate a synthetic dataset drop for one month")
	fmt.Println("  upload    Upload a dataset drop to GCS")
	fmt.Println("  ingest    Load a dataset drop into the raw warehouse tables")
	fmt.Println("  clean     Run anomaly detection and cleaning over the raw tables")
	fmt.Println("  metrics   Print business metrics over the cleaned data")
	fmt.Println("  insights  Generate a model-written narrative for a run")
	fmt.Println("  notion    Publish a run's anomaly report to Notion")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runGenerate(log zerolog.Logger) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	cfg := generator.DefaultConfig()
	out := fs.String("out", "data", "Output directory for the CSV files")
	fs.StringVar(&cfg.Month, "month", cfg.Month, "Target month (YYYY-MM)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	fs.IntVar(&cfg.Users, "users", cfg.Users, "Number of users")
	fs.IntVar(&cfg.Transactions, "transactions", cfg.Transactions, "Number of transactions")
	fs.IntVar(&cfg.Events, "events", cfg.Events, "Number of app events")
	fs.Parse(os.Args[2:])

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

	fmt.Printf("Generated dataset for %s in %s\n", cfg.Month, *out)
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", "", "GCS bucket name")
	prefix := fs.String("prefix", "", "Object prefix, e.g. drops/2026-01")
	dir := fs.String("dir", "data", "Local directory holding the CSV files")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *prefix == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -prefix PREFIX [-dir DIR]")
	}

	ctx := logger.WithContext(context.Background(), log)

	log.Info().
		Str("bucket", *bucketName).
		Str("prefix", *prefix).
		Str("dir", *dir).
		Msg("Uploading dataset to GCS")

	if err := gcsio.UploadDataset(ctx, *bucketName, *prefix, *dir); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *dir, *bucketName, *prefix)
}

func runIngest(log zerolog.Logger) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	dir := fs.String("dir", "data", "Local directory holding the CSV files")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	users, err := dataset.ReadUsers(filepath.Join(*dir, "users.csv"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read users.csv")
	}
	txns, err := dataset.ReadTransactions(filepath.Join(*dir, "transactions.csv"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read transactions.csv")
	}
	events, err := dataset.ReadAppEvents(filepath.Join(*dir, "app_events.csv"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read app_events.csv")
	}

	repo, err := bqstore.NewRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create warehouse repository")
	}
	defer repo.Close()

	if err := repo.InsertRawUsers(ctx, users); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert users")
	}
	if err := repo.InsertRawTransactions(ctx, txns); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert transactions")
	}
	if err := repo.InsertRawAppEvents(ctx, events); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert app events")
	}

	fmt.Printf("Ingested %d users, %d transactions, %d app events\n", len(users), len(txns), len(events))
}

func runClean(log zerolog.Logger) {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	runID := fs.String("run-id", "", "Run ID (defaults to a new UUID)")
	fs.Parse(os.Args[2:])

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

	state, err := quality.Run(ctx, repo, repo, *runID)
	if err != nil {
		log.Fatal().Err(err).Msg("Quality run failed")
	}

	fmt.Printf("Run %s complete for window %s\n", *runID, state.Window)
	for _, f := range state.Report {
		fmt.Printf("  %-45s %6d\n", f.Category, f.BadRows)
	}
}

func runMetrics(log zerolog.Logger) {
	fs := flag.NewFlagSet("metrics", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := bqstore.NewRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create warehouse repository")
	}
	defer repo.Close()

	txns, err := repo.ReadCleanTransactions(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read clean transactions")
	}
	events, err := repo.ReadCleanAppEvents(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read clean app events")
	}

	summary := metrics.Summarize(txns, events)
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal metrics")
	}
	fmt.Println(string(out))
}

func runInsights(log zerolog.Logger) {
	fs := flag.NewFlagSet("insights", flag.ExitOnError)
	runID := fs.String("run-id", "", "Run ID to analyze")
	fs.Parse(os.Args[2:])

	if *runID == "" {
		log.Fatal().Msg("Error: --run-id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := bqstore.NewRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create warehouse repository")
	}
	defer repo.Close()

	report, err := repo.ReadAnomalyReport(ctx, *runID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read anomaly report")
	}
	window, err := repo.ReadRunWindow(ctx, *runID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read run window")
	}
	txns, err := repo.ReadCleanTransactions(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read clean transactions")
	}
	events, err := repo.ReadCleanAppEvents(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read clean app events")
	}

	result, err := insights.Generate(ctx, window, report, metrics.Summarize(txns, events))
	if err != nil {
		log.Fatal().Err(err).Msg("Insight generation failed")
	}

	fmt.Println("\n=== Summary ===")
	fmt.Println(result.Summary)
	fmt.Println("\n=== Recommendations ===")
	for i, rec := range result.Recommendations {
		fmt.Printf("%d. %s\n", i+1, rec)
	}
}

func runNotion(log zerolog.Logger) {
	fs := flag.NewFlagSet("notion", flag.ExitOnError)
	runID := fs.String("run-id", "", "Run ID to publish")
	databaseID := fs.String("database-id", os.Getenv("NOTION_DATABASE_ID"), "Notion database ID (or set NOTION_DATABASE_ID)")
	dryRun := fs.Bool("dry-run", false, "Log what would be synced without writing")
	fs.Parse(os.Args[2:])

	if *runID == "" || *databaseID == "" {
		log.Fatal().Msg("Usage: cli notion -run-id ID -database-id DBID [-dry-run]")
	}
	token := os.Getenv("NOTION_TOKEN")
	if token == "" {
		log.Fatal().Msg("Error: NOTION_TOKEN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := bqstore.NewRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create warehouse repository")
	}
	defer repo.Close()

	report, err := repo.ReadAnomalyReport(ctx, *runID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read anomaly report")
	}
	if len(report) == 0 {
		log.Fatal().Str("run_id", *runID).Msg("No report found for run")
	}
	window, err := repo.ReadRunWindow(ctx, *runID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read run window")
	}

	client := notionsync.NewNotionClient(token)
	if err := notionsync.SyncReport(ctx, client, *databaseID, *runID, window, report, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Notion sync failed")
	}

	fmt.Println("Notion sync completed successfully.")
}
