package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

// Repository is the warehouse-backed implementation of quality.Source and
// quality.Sink. It holds a shared BigQuery client so a full run uses one
// connection for all reads and writes.
type Repository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewRepository creates a Repository with a shared BigQuery client.
func NewRepository(ctx context.Context) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, ProjectID())
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{
		client:    client,
		projectID: ProjectID(),
		datasetID: DatasetID(),
	}, nil
}

// Close closes the BigQuery client connection. Call it when the repository
// is no longer needed.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// ── quality.Source ──

func (r *Repository) ReadUsers(ctx context.Context) ([]domain.User, error) {
	return ReadRawUsersWithClient(ctx, r.client, r.projectID, r.datasetID)
}

func (r *Repository) ReadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return ReadRawTransactionsWithClient(ctx, r.client, r.projectID, r.datasetID)
}

func (r *Repository) ReadAppEvents(ctx context.Context) ([]domain.AppEvent, error) {
	return ReadRawAppEventsWithClient(ctx, r.client, r.projectID, r.datasetID)
}

// ── quality.Sink ──

func (r *Repository) WriteCleanUsers(ctx context.Context, users []domain.CleanUser) error {
	return ReplaceCleanUsersWithClient(ctx, r.client, r.projectID, r.datasetID, users)
}

func (r *Repository) WriteCleanTransactions(ctx context.Context, txns []domain.CleanTransaction) error {
	return ReplaceCleanTransactionsWithClient(ctx, r.client, r.projectID, r.datasetID, txns)
}

func (r *Repository) WriteCleanAppEvents(ctx context.Context, events []domain.CleanAppEvent) error {
	return ReplaceCleanAppEventsWithClient(ctx, r.client, r.projectID, r.datasetID, events)
}

func (r *Repository) WriteAnomalyReport(ctx context.Context, runID string, window domain.AnalysisWindow, report domain.AnomalyReport) error {
	return InsertAnomalyReportWithClient(ctx, r.client, r.projectID, r.datasetID, runID, window, report, time.Now().UTC())
}

// ── ingestion ──

func (r *Repository) InsertRawUsers(ctx context.Context, users []domain.User) error {
	return InsertRawUsersWithClient(ctx, r.client, r.projectID, r.datasetID, users)
}

func (r *Repository) InsertRawTransactions(ctx context.Context, txns []domain.Transaction) error {
	return InsertRawTransactionsWithClient(ctx, r.client, r.projectID, r.datasetID, txns)
}

func (r *Repository) InsertRawAppEvents(ctx context.Context, events []domain.AppEvent) error {
	return InsertRawAppEventsWithClient(ctx, r.client, r.projectID, r.datasetID, events)
}

// ── clean-side reads, used by metrics and the API ──

func (r *Repository) ReadCleanUsers(ctx context.Context) ([]domain.CleanUser, error) {
	return ReadCleanUsersWithClient(ctx, r.client, r.projectID, r.datasetID)
}

func (r *Repository) ReadCleanTransactions(ctx context.Context) ([]domain.CleanTransaction, error) {
	return ReadCleanTransactionsWithClient(ctx, r.client, r.projectID, r.datasetID)
}

func (r *Repository) ReadCleanAppEvents(ctx context.Context) ([]domain.CleanAppEvent, error) {
	return ReadCleanAppEventsWithClient(ctx, r.client, r.projectID, r.datasetID)
}

func (r *Repository) ReadAnomalyReport(ctx context.Context, runID string) (domain.AnomalyReport, error) {
	return ReadAnomalyReportWithClient(ctx, r.client, r.projectID, r.datasetID, runID)
}

func (r *Repository) ReadRunWindow(ctx context.Context, runID string) (domain.AnalysisWindow, error) {
	return ReadRunWindowWithClient(ctx, r.client, r.projectID, r.datasetID, runID)
}
