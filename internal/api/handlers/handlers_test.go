package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/acarvalho/p2p-quality/internal/domain"
	"github.com/acarvalho/p2p-quality/internal/runs"
)

type fakePublisher struct {
	published []*runs.QualityRun
	err       error
}

func (p *fakePublisher) PublishRun(ctx context.Context, run *runs.QualityRun) error {
	if p.err != nil {
		return p.err
	}
	run.RunID = fmt.Sprintf("run-%d", len(p.published)+1)
	run.Status = runs.RunStatusPending
	p.published = append(p.published, run)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeStore struct {
	runs map[string]*runs.QualityRun
}

func (s *fakeStore) SaveRun(ctx context.Context, run *runs.QualityRun) error {
	s.runs[run.RunID] = run
	return nil
}

func (s *fakeStore) GetRun(ctx context.Context, runID string) (*runs.QualityRun, error) {
	run, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return run, nil
}

func (s *fakeStore) ListRuns(ctx context.Context, filter runs.RunFilter) ([]*runs.QualityRun, error) {
	var out []*runs.QualityRun
	for _, run := range s.runs {
		if filter.Status != "" && run.Status != filter.Status {
			continue
		}
		out = append(out, run)
	}
	return out, nil
}

type fakeReportReader struct {
	reports map[string]domain.AnomalyReport
}

func (r *fakeReportReader) ReadAnomalyReport(ctx context.Context, runID string) (domain.AnomalyReport, error) {
	return r.reports[runID], nil
}

type fakeCleanReader struct {
	txns   []domain.CleanTransaction
	events []domain.CleanAppEvent
}

func (r *fakeCleanReader) ReadCleanTransactions(ctx context.Context) ([]domain.CleanTransaction, error) {
	return r.txns, nil
}

func (r *fakeCleanReader) ReadCleanAppEvents(ctx context.Context) ([]domain.CleanAppEvent, error) {
	return r.events, nil
}

func TestTriggerRun(t *testing.T) {
	publisher := &fakePublisher{}
	h := NewRunsHandler(&fakeStore{runs: map[string]*runs.QualityRun{}}, publisher, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{"triggered_by":"cli"}`))
	rec := httptest.NewRecorder()
	h.TriggerRun(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["run_id"] == "" {
		t.Error("response missing run_id")
	}
	if len(publisher.published) != 1 || publisher.published[0].TriggeredBy != "cli" {
		t.Errorf("published = %+v", publisher.published)
	}
}

func TestTriggerRunEmptyBodyDefaults(t *testing.T) {
	publisher := &fakePublisher{}
	h := NewRunsHandler(&fakeStore{runs: map[string]*runs.QualityRun{}}, publisher, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(""))
	rec := httptest.NewRecorder()
	h.TriggerRun(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if publisher.published[0].TriggeredBy != "api" {
		t.Errorf("triggered_by = %q, want api", publisher.published[0].TriggeredBy)
	}
}

func TestGetRunNotFound(t *testing.T) {
	h := NewRunsHandler(&fakeStore{runs: map[string]*runs.QualityRun{}}, &fakePublisher{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil)
	rec := httptest.NewRecorder()
	h.GetRun(rec, req, "missing")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetReport(t *testing.T) {
	n := 2
	reader := &fakeReportReader{reports: map[string]domain.AnomalyReport{
		"run-1": {
			{Category: domain.CategoryUsersMissingEmail, BadRows: 3},
			{Category: domain.CategoryTxnsDuplicateID, BadRows: 5, DistinctIDs: &n},
		},
	}}
	h := NewReportsHandler(reader, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/runs/run-1/report", nil)
	rec := httptest.NewRecorder()
	h.GetReport(rec, req, "run-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		RunID    string           `json:"run_id"`
		Findings []domain.Finding `json:"findings"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Findings) != 2 || resp.Findings[1].DistinctIDs == nil {
		t.Errorf("findings = %+v", resp.Findings)
	}

	rec = httptest.NewRecorder()
	h.GetReport(rec, httptest.NewRequest(http.MethodGet, "/api/runs/none/report", nil), "none")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing report status = %d, want 404", rec.Code)
	}
}

func TestGetMetrics(t *testing.T) {
	status := "completed"
	currency := "EUR"
	reader := &fakeCleanReader{
		txns: []domain.CleanTransaction{
			{
				TransactionID:  "t1",
				SenderUserID:   1,
				ReceiverUserID: 2,
				Amount:         75,
				Currency:       &currency,
				Status:         &status,
				CreatedAt:      time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
			},
		},
		events: []domain.CleanAppEvent{
			{EventID: "e1", UserID: 1, EventType: "page_view", EventTS: time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC)},
		},
	}
	h := NewMetricsHandler(reader, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	rec := httptest.NewRecorder()
	h.GetMetrics(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		VolumeByCurrency map[string]float64 `json:"volume_by_currency"`
		ActiveUsers      int                `json:"active_users"`
		EventsByType     map[string]int     `json:"events_by_type"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.VolumeByCurrency["EUR"] != 75 || resp.ActiveUsers != 2 || resp.EventsByType["page_view"] != 1 {
		t.Errorf("metrics = %+v", resp)
	}
}
