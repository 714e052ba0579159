package bigquery

import "os"

// Warehouse coordinates. The project and dataset can be overridden through
// the environment so the same binaries work against dev and prod datasets.
const (
	defaultProjectID = "p2p-quality-dev"
	defaultDatasetID = "p2p"

	rawUsersTable        = "users_raw"
	rawTransactionsTable = "transactions_raw"
	rawAppEventsTable    = "app_events_raw"

	cleanUsersTable        = "users_clean"
	cleanTransactionsTable = "transactions_clean"
	cleanAppEventsTable    = "app_events_clean"

	anomalyReportTable = "anomaly_report"
)

// ProjectID returns the configured GCP project id.
func ProjectID() string {
	return envOr("P2P_BQ_PROJECT", defaultProjectID)
}

// DatasetID returns the configured BigQuery dataset id.
func DatasetID() string {
	return envOr("P2P_BQ_DATASET", defaultDatasetID)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
