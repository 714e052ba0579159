// Package handlers implements the HTTP endpoints of the quality service:
// triggering and inspecting quality runs, fetching anomaly reports and
// computing business metrics over the cleaned data.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/acarvalho/p2p-quality/internal/api/middleware"
	"github.com/acarvalho/p2p-quality/internal/domain"
	"github.com/acarvalho/p2p-quality/internal/metrics"
	"github.com/acarvalho/p2p-quality/internal/runs"
)

// ReportReader fetches a stored anomaly report from the warehouse.
type ReportReader interface {
	ReadAnomalyReport(ctx context.Context, runID string) (domain.AnomalyReport, error)
}

// CleanReader fetches the cleaned datasets from the warehouse.
type CleanReader interface {
	ReadCleanTransactions(ctx context.Context) ([]domain.CleanTransaction, error)
	ReadCleanAppEvents(ctx context.Context) ([]domain.CleanAppEvent, error)
}

// RunsHandler handles quality-run endpoints.
type RunsHandler struct {
	store     runs.RunStore
	publisher runs.Publisher
	log       zerolog.Logger
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(store runs.RunStore, publisher runs.Publisher, log zerolog.Logger) *RunsHandler {
	return &RunsHandler{
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// TriggerRun handles POST /api/runs. The body is optional; when present it
// may carry a triggered_by label.
func (h *RunsHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TriggeredBy string `json:"triggered_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TriggeredBy == "" {
		req.TriggeredBy = "api"
	}

	run := &runs.QualityRun{TriggeredBy: req.TriggeredBy}
	if err := h.publisher.PublishRun(r.Context(), run); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue quality run")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue quality run")
		return
	}

	h.log.Info().Str("run_id", run.RunID).Str("triggered_by", run.TriggeredBy).Msg("Quality run enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"run_id": run.RunID,
		"status": string(run.Status),
	})
}

// GetRun handles GET /api/runs/{id}.
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request, runID string) {
	run, err := h.store.GetRun(r.Context(), runID)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to get run")
		middleware.WriteError(w, http.StatusNotFound, "Run not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, run)
}

// ListRuns handles GET /api/runs.
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := runs.RunFilter{
		Status: runs.RunStatus(query.Get("status")),
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	runsList, err := h.store.ListRuns(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runsList,
		"count": len(runsList),
	})
}

// ReportsHandler serves stored anomaly reports.
type ReportsHandler struct {
	reader ReportReader
	log    zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(reader ReportReader, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{
		reader: reader,
		log:    log,
	}
}

// GetReport handles GET /api/runs/{id}/report.
func (h *ReportsHandler) GetReport(w http.ResponseWriter, r *http.Request, runID string) {
	report, err := h.reader.ReadAnomalyReport(r.Context(), runID)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to read anomaly report")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read anomaly report")
		return
	}
	if len(report) == 0 {
		middleware.WriteError(w, http.StatusNotFound, "No report for this run")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":   runID,
		"findings": report,
	})
}

// MetricsHandler computes business metrics over the cleaned data.
type MetricsHandler struct {
	reader CleanReader
	log    zerolog.Logger
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(reader CleanReader, log zerolog.Logger) *MetricsHandler {
	return &MetricsHandler{
		reader: reader,
		log:    log,
	}
}

// GetMetrics handles GET /api/metrics.
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	txns, err := h.reader.ReadCleanTransactions(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read clean transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read clean transactions")
		return
	}
	events, err := h.reader.ReadCleanAppEvents(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read clean app events")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read clean app events")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, metrics.Summarize(txns, events))
}
