// Command ingest loads a dataset drop (users.csv, transactions.csv,
// app_events.csv) into the raw warehouse tables. The drop can be a local
// directory or a gs://bucket/prefix, in which case it is downloaded first.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/acarvalho/p2p-quality/internal/dataset"
	"github.com/acarvalho/p2p-quality/internal/gcsio"
	bqstore "github.com/acarvalho/p2p-quality/internal/infra/bigquery"
	"github.com/acarvalho/p2p-quality/internal/logger"
)

func main() {
	log := logger.New()

	from := flag.String("from", "", "Dataset location: local directory or gs://bucket/prefix")
	flag.Parse()

	if *from == "" {
		log.Fatal().Msg("Error: --from is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	dir := *from
	if strings.HasPrefix(*from, "gs://") {
		bucket, prefix, err := gcsio.ParseURI(*from)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid GCS location")
		}
		dir = filepath.Join(os.TempDir(), "p2p-ingest")
		log.Info().Str("bucket", bucket).Str("prefix", prefix).Msg("Downloading dataset from GCS")
		if err := gcsio.DownloadDataset(ctx, bucket, prefix, dir); err != nil {
			log.Fatal().Err(err).Msg("Download failed")
		}
	}

	users, err := dataset.ReadUsers(filepath.Join(dir, "users.csv"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read users.csv")
	}
	txns, err := dataset.ReadTransactions(filepath.Join(dir, "transactions.csv"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read transactions.csv")
	}
	events, err := dataset.ReadAppEvents(filepath.Join(dir, "app_events.csv"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read app_events.csv")
	}

	log.Info().
		Int("users", len(users)).
		Int("transactions", len(txns)).
		Int("app_events", len(events)).
		Msg("Dataset loaded, inserting into raw tables")

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

	fmt.Println("Ingestion completed successfully.")
}
