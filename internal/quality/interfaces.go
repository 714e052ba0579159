package quality

import (
	"context"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

// Source is the record-store collaborator the pipeline reads raw snapshots
// from. Implementations must return a single consistent snapshot per run: the
// three reads happen once, up front, before any rule is evaluated.
type Source interface {
	ReadUsers(ctx context.Context) ([]domain.User, error)
	ReadTransactions(ctx context.Context) ([]domain.Transaction, error)
	ReadAppEvents(ctx context.Context) ([]domain.AppEvent, error)
}

// Sink receives the cleaned record sets and the anomaly report. The clean
// sets replace any previous contents; the report is keyed by run id.
type Sink interface {
	WriteCleanUsers(ctx context.Context, users []domain.CleanUser) error
	WriteCleanTransactions(ctx context.Context, transactions []domain.CleanTransaction) error
	WriteCleanAppEvents(ctx context.Context, events []domain.CleanAppEvent) error
	WriteAnomalyReport(ctx context.Context, runID string, window domain.AnalysisWindow, report domain.AnomalyReport) error
}
