package quality_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/acarvalho/p2p-quality/internal/domain"
	"github.com/acarvalho/p2p-quality/internal/logger"
	"github.com/acarvalho/p2p-quality/internal/quality"
)

// memorySource serves fixed raw snapshots.
type memorySource struct {
	users        []domain.User
	transactions []domain.Transaction
	events       []domain.AppEvent
}

func (m *memorySource) ReadUsers(ctx context.Context) ([]domain.User, error) {
	return m.users, nil
}

func (m *memorySource) ReadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return m.transactions, nil
}

func (m *memorySource) ReadAppEvents(ctx context.Context) ([]domain.AppEvent, error) {
	return m.events, nil
}

// memorySink captures everything written by the pipeline.
type memorySink struct {
	cleanUsers        []domain.CleanUser
	cleanTransactions []domain.CleanTransaction
	cleanEvents       []domain.CleanAppEvent
	reportRunID       string
	report            domain.AnomalyReport
}

func (m *memorySink) WriteCleanUsers(ctx context.Context, users []domain.CleanUser) error {
	m.cleanUsers = users
	return nil
}

func (m *memorySink) WriteCleanTransactions(ctx context.Context, transactions []domain.CleanTransaction) error {
	m.cleanTransactions = transactions
	return nil
}

func (m *memorySink) WriteCleanAppEvents(ctx context.Context, events []domain.CleanAppEvent) error {
	m.cleanEvents = events
	return nil
}

func (m *memorySink) WriteAnomalyReport(ctx context.Context, runID string, window domain.AnalysisWindow, report domain.AnomalyReport) error {
	m.reportRunID = runID
	m.report = report
	return nil
}

func sp(s string) *string    { return &s }
func ip(i int64) *int64      { return &i }
func fp(f float64) *float64 { return &f }

func TestRunEndToEnd(t *testing.T) {
	source := &memorySource{
		users: []domain.User{
			{UserID: 1, Email: sp("a@example.com"), SignupAt: sp("2026-01-01 00:00:00")},
			{UserID: 2, Email: sp("b@example.com"), SignupAt: sp("2026-01-02 00:00:00")},
			{UserID: 3}, // missing signup
		},
		transactions: []domain.Transaction{
			{TransactionID: sp("t1"), SenderUserID: ip(1), ReceiverUserID: ip(2), Amount: fp(25), Currency: sp("EUR"), Status: sp("completed"), CreatedAt: sp("2026-01-10 10:00:00")},
			{TransactionID: sp("t1"), SenderUserID: ip(1), ReceiverUserID: ip(2), Amount: fp(25), Currency: sp("EUR"), Status: sp("pending"), CreatedAt: sp("2026-01-11 10:00:00")},
			{TransactionID: sp("t2"), SenderUserID: ip(2), ReceiverUserID: ip(3), Amount: fp(5), Status: sp("completed"), CreatedAt: sp("2026-01-12 10:00:00")},
		},
		events: []domain.AppEvent{
			{EventID: "e1", UserID: ip(1), EventType: sp("login"), EventTS: sp("2026-01-05 09:00:00")},
			{EventID: "e2", UserID: ip(1), EventType: sp("login"), EventTS: sp("2026-02-01 00:00:00")},
		},
	}
	sink := &memorySink{}

	state, err := quality.Run(context.Background(), source, sink, "run-42")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if got := state.Window.Start.Format("2006-01-02"); got != "2026-01-01" {
		t.Errorf("window start = %s, want 2026-01-01", got)
	}
	if len(sink.cleanUsers) != 2 {
		t.Errorf("sink has %d clean users, want 2", len(sink.cleanUsers))
	}
	if len(sink.cleanTransactions) != 1 {
		t.Fatalf("sink has %d clean transactions, want 1", len(sink.cleanTransactions))
	}
	if got := sink.cleanTransactions[0]; got.TransactionID != "t1" || *got.Status != "completed" {
		t.Errorf("clean transaction = %+v, want t1/completed", got)
	}
	if len(sink.cleanEvents) != 1 || sink.cleanEvents[0].EventID != "e1" {
		t.Errorf("clean events = %+v, want only e1", sink.cleanEvents)
	}
	if sink.reportRunID != "run-42" {
		t.Errorf("report run id = %s, want run-42", sink.reportRunID)
	}
	if len(sink.report) != 8 {
		t.Errorf("report has %d findings, want 8", len(sink.report))
	}
}

func TestRunLogsThroughContextLogger(t *testing.T) {
	source := &memorySource{
		users: []domain.User{
			{UserID: 1, Email: sp("a@example.com"), SignupAt: sp("2026-03-01 00:00:00")},
		},
		transactions: []domain.Transaction{
			{TransactionID: sp("t1"), SenderUserID: ip(1), ReceiverUserID: ip(1), Amount: fp(10), Status: sp("completed"), CreatedAt: sp("2026-03-17 12:00:00")},
		},
	}

	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf))

	state, err := quality.Run(ctx, source, &memorySink{}, "run-44")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := state.Window.String(); got != "[2026-03-01, 2026-04-01)" {
		t.Errorf("window = %s, want [2026-03-01, 2026-04-01)", got)
	}

	output := buf.String()
	if !strings.Contains(output, "Inferred analysis window") {
		t.Errorf("expected window log line, got: %s", output)
	}
	if !strings.Contains(output, "Derived clean record sets") {
		t.Errorf("expected clean-sets log line, got: %s", output)
	}
	if !strings.Contains(output, "run-44") {
		t.Errorf("expected run id in log output, got: %s", output)
	}
}

func TestRunFailsWithoutUsableTimestamps(t *testing.T) {
	source := &memorySource{
		users:        []domain.User{{UserID: 1, SignupAt: sp("2026-01-01 00:00:00")}},
		transactions: []domain.Transaction{{TransactionID: sp("t1")}},
	}
	sink := &memorySink{}

	_, err := quality.Run(context.Background(), source, sink, "run-43")
	if !errors.Is(err, quality.ErrEmptyInput) {
		t.Fatalf("Run() error = %v, want ErrEmptyInput", err)
	}
	if sink.report != nil || sink.cleanTransactions != nil {
		t.Error("nothing should be written when window inference fails")
	}
}
