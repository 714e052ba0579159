package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/acarvalho/p2p-quality/internal/runs"
)

// Queue is an in-memory implementation of the run publisher and consumer.
// It uses Go channels for distribution and is safe for concurrent use.
// Suitable for single-instance deployments and testing; multi-instance
// deployments should move to Cloud Tasks or Pub/Sub.
type Queue struct {
	runChan     chan *runs.QualityRun
	closeChan   chan struct{}
	wg          sync.WaitGroup
	mu          sync.RWMutex
	store       runs.RunStore
	workerCount int
	closed      bool
}

// NewQueue creates a new in-memory run queue. bufferSize determines how many
// runs can be queued before PublishRun blocks.
func NewQueue(bufferSize int, store runs.RunStore) *Queue {
	return &Queue{
		runChan:     make(chan *runs.QualityRun, bufferSize),
		closeChan:   make(chan struct{}),
		store:       store,
		workerCount: 2,
	}
}

// PublishRun enqueues a quality run for asynchronous execution.
func (q *Queue) PublishRun(ctx context.Context, run *runs.QualityRun) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.Status == "" {
		run.Status = runs.RunStatusPending
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.MaxRetries == 0 {
		run.MaxRetries = 3
	}

	if q.store != nil {
		if err := q.store.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
	}

	select {
	case q.runChan <- run:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Start launches the worker goroutines that execute queued runs through the
// provided handler.
func (q *Queue) Start(ctx context.Context, handler runs.RunHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < q.workerCount; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	return nil
}

func (q *Queue) worker(ctx context.Context, handler runs.RunHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case run := <-q.runChan:
			if run == nil {
				return
			}
			q.processRun(ctx, run, handler)
		}
	}
}

// processRun executes a single run with retry logic.
func (q *Queue) processRun(ctx context.Context, run *runs.QualityRun, handler runs.RunHandler) {
	run.Status = runs.RunStatusRunning
	now := time.Now()
	run.StartedAt = &now

	if q.store != nil {
		_ = q.store.SaveRun(ctx, run)
	}

	err := handler(ctx, run)

	completedAt := time.Now()
	run.CompletedAt = &completedAt

	if err != nil {
		run.Error = err.Error()

		if run.RetryCount < run.MaxRetries {
			run.RetryCount++
			run.Status = runs.RunStatusRetrying

			// Re-enqueue with linear backoff.
			backoff := time.Duration(run.RetryCount) * time.Second
			time.AfterFunc(backoff, func() {
				run.Status = runs.RunStatusPending
				run.StartedAt = nil
				run.CompletedAt = nil
				_ = q.PublishRun(ctx, run)
			})
		} else {
			run.Status = runs.RunStatusFailed
		}
	} else {
		run.Status = runs.RunStatusCompleted
		run.Error = ""
	}

	if q.store != nil {
		_ = q.store.SaveRun(ctx, run)
	}
}

// Stop stops the queue and waits for in-flight runs to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var _ runs.Publisher = (*Queue)(nil)
var _ runs.Consumer = (*Queue)(nil)
