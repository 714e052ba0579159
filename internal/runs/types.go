// Package runs defines the quality-run job model and the queue/store
// abstractions the API and worker are built on.
package runs

import (
	"context"
	"time"
)

// RunStatus represents the current status of a quality run.
type RunStatus string

const (
	// RunStatusPending indicates the run is waiting to be processed.
	RunStatusPending RunStatus = "pending"
	// RunStatusRunning indicates the run is currently being processed.
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted indicates the run completed successfully.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed indicates the run failed.
	RunStatusFailed RunStatus = "failed"
	// RunStatusRetrying indicates the run failed and is being retried.
	RunStatusRetrying RunStatus = "retrying"
)

// RunCounts captures input and output row counts for a completed run.
type RunCounts struct {
	RawUsers          int `json:"raw_users"`
	RawTransactions   int `json:"raw_transactions"`
	RawAppEvents      int `json:"raw_app_events"`
	CleanUsers        int `json:"clean_users"`
	CleanTransactions int `json:"clean_transactions"`
	CleanAppEvents    int `json:"clean_app_events"`
}

// QualityRun is one execution of the detect-and-clean pipeline over the raw
// tables. The anomaly report itself lives in the warehouse, keyed by RunID.
type QualityRun struct {
	// RunID is the unique identifier for this run.
	RunID string `json:"run_id"`

	// TriggeredBy records what started the run (api, cli, schedule).
	TriggeredBy string `json:"triggered_by,omitempty"`

	// Status is the current status of the run.
	Status RunStatus `json:"status"`

	// WindowStart and WindowEnd are set once the window has been inferred.
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`

	// Counts is populated when the run completes.
	Counts *RunCounts `json:"counts,omitempty"`

	// CreatedAt is when the run was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the run started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the run finished (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the run failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this run has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Publisher publishes quality runs to a queue. The abstraction allows
// different queue implementations (in-memory, Cloud Tasks, Pub/Sub).
type Publisher interface {
	// PublishRun publishes a quality run for asynchronous execution.
	PublishRun(ctx context.Context, run *QualityRun) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer consumes quality runs from a queue.
type Consumer interface {
	// Start begins consuming runs from the queue. The handler is called for
	// each run received.
	Start(ctx context.Context, handler RunHandler) error

	// Stop stops consuming and waits for in-flight runs to complete.
	Stop(ctx context.Context) error
}

// RunHandler processes one run. A returned error marks the run failed and
// triggers a retry if the budget allows.
type RunHandler func(ctx context.Context, run *QualityRun) error

// RunStore stores and retrieves run state.
type RunStore interface {
	// SaveRun saves or updates a run's state.
	SaveRun(ctx context.Context, run *QualityRun) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, runID string) (*QualityRun, error)

	// ListRuns retrieves runs with optional filtering, newest first.
	ListRuns(ctx context.Context, filter RunFilter) ([]*QualityRun, error)
}

// RunFilter defines filtering criteria for listing runs.
type RunFilter struct {
	// Status filters runs by status.
	Status RunStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
