package runs

import (
	"context"

	"github.com/acarvalho/p2p-quality/internal/quality"
)

// Executor bridges the run queue and the quality pipeline: its Handler
// executes one queued run against the configured source and sink and
// records the inferred window and row counts on the run.
type Executor struct {
	Source quality.Source
	Sink   quality.Sink
}

// Handler returns the RunHandler for the queue consumer.
func (e *Executor) Handler() RunHandler {
	return func(ctx context.Context, run *QualityRun) error {
		state, err := quality.Run(ctx, e.Source, e.Sink, run.RunID)
		if err != nil {
			return err
		}

		start, end := state.Window.Start, state.Window.End
		run.WindowStart = &start
		run.WindowEnd = &end
		run.Counts = &RunCounts{
			RawUsers:          len(state.Users),
			RawTransactions:   len(state.Transactions),
			RawAppEvents:      len(state.Events),
			CleanUsers:        len(state.CleanUsers),
			CleanTransactions: len(state.CleanTransactions),
			CleanAppEvents:    len(state.CleanEvents),
		}
		return nil
	}
}
