package quality

import (
	"context"
	"fmt"

	"github.com/acarvalho/p2p-quality/internal/domain"
	"github.com/acarvalho/p2p-quality/internal/logger"
)

// Step is a single stage of a quality run.
type Step interface {
	Execute(ctx context.Context, state *RunState) error
}

// RunState is the shared state threaded through the steps of one run.
type RunState struct {
	RunID string

	Users        []domain.User
	Transactions []domain.Transaction
	Events       []domain.AppEvent

	Window domain.AnalysisWindow
	Report domain.AnomalyReport

	CleanUsers        []domain.CleanUser
	CleanTransactions []domain.CleanTransaction
	CleanEvents       []domain.CleanAppEvent
}

// LoadRawStep reads the three raw record sets from the source.
type LoadRawStep struct {
	Source Source
}

func (s *LoadRawStep) Execute(ctx context.Context, state *RunState) error {
	users, err := s.Source.ReadUsers(ctx)
	if err != nil {
		return fmt.Errorf("LoadRawStep: read users: %w", err)
	}
	transactions, err := s.Source.ReadTransactions(ctx)
	if err != nil {
		return fmt.Errorf("LoadRawStep: read transactions: %w", err)
	}
	events, err := s.Source.ReadAppEvents(ctx)
	if err != nil {
		return fmt.Errorf("LoadRawStep: read app events: %w", err)
	}
	state.Users = users
	state.Transactions = transactions
	state.Events = events
	return nil
}

// InferWindowStep derives the analysis window from the raw transactions.
// This is the only step that can fail on data content: an empty or
// timestamp-less transaction set aborts the run with ErrEmptyInput.
type InferWindowStep struct{}

func (s *InferWindowStep) Execute(ctx context.Context, state *RunState) error {
	window, err := InferWindow(state.Transactions)
	if err != nil {
		return err
	}
	state.Window = window

	log := logger.FromContext(ctx)
	log.Info().
		Str("run_id", state.RunID).
		Str("window", window.String()).
		Msg("Inferred analysis window")
	return nil
}

// DetectAnomaliesStep counts anomalies over the raw data.
type DetectAnomaliesStep struct{}

func (s *DetectAnomaliesStep) Execute(ctx context.Context, state *RunState) error {
	state.Report = DetectAnomalies(state.Users, state.Transactions, state.Events, state.Window)
	return nil
}

// CleanStep derives the three clean record sets.
type CleanStep struct{}

func (s *CleanStep) Execute(ctx context.Context, state *RunState) error {
	state.CleanUsers = CleanUsers(state.Users)
	state.CleanTransactions = CleanTransactions(state.Users, state.Transactions)
	state.CleanEvents = CleanAppEvents(state.Users, state.Events, state.Window)

	log := logger.FromContext(ctx)
	log.Info().
		Str("run_id", state.RunID).
		Int("clean_users", len(state.CleanUsers)).
		Int("clean_transactions", len(state.CleanTransactions)).
		Int("clean_app_events", len(state.CleanEvents)).
		Msg("Derived clean record sets")
	return nil
}

// WriteCleanSetsStep replaces the clean tables in the sink.
type WriteCleanSetsStep struct {
	Sink Sink
}

func (s *WriteCleanSetsStep) Execute(ctx context.Context, state *RunState) error {
	if err := s.Sink.WriteCleanUsers(ctx, state.CleanUsers); err != nil {
		return fmt.Errorf("WriteCleanSetsStep: users: %w", err)
	}
	if err := s.Sink.WriteCleanTransactions(ctx, state.CleanTransactions); err != nil {
		return fmt.Errorf("WriteCleanSetsStep: transactions: %w", err)
	}
	if err := s.Sink.WriteCleanAppEvents(ctx, state.CleanEvents); err != nil {
		return fmt.Errorf("WriteCleanSetsStep: app events: %w", err)
	}
	return nil
}

// WriteReportStep records the anomaly report for this run.
type WriteReportStep struct {
	Sink Sink
}

func (s *WriteReportStep) Execute(ctx context.Context, state *RunState) error {
	if err := s.Sink.WriteAnomalyReport(ctx, state.RunID, state.Window, state.Report); err != nil {
		return fmt.Errorf("WriteReportStep: %w", err)
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a pipeline with the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially, stopping at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *RunState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("quality run step %d: %w", i+1, err)
		}
	}
	return nil
}

// NewQualityPipeline creates the standard six-step pipeline: load raw
// snapshot, infer window, detect anomalies, clean, persist clean sets,
// persist report.
func NewQualityPipeline(source Source, sink Sink) *Pipeline {
	return NewPipeline(
		&LoadRawStep{Source: source},
		&InferWindowStep{},
		&DetectAnomaliesStep{},
		&CleanStep{},
		&WriteCleanSetsStep{Sink: sink},
		&WriteReportStep{Sink: sink},
	)
}

// Run executes the standard pipeline for one run and returns the final
// state. Window inference failure is the only data-driven error; everything
// else reported back is a store failure.
func Run(ctx context.Context, source Source, sink Sink, runID string) (*RunState, error) {
	state := &RunState{RunID: runID}
	if err := NewQualityPipeline(source, sink).Execute(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}
