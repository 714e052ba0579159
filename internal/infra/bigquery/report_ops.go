package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

// InsertAnomalyReportWithClient appends one FindingRow per category to the
// anomaly_report table. Reports accumulate across runs and are keyed by
// run_id, so history is queryable.
func InsertAnomalyReportWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, runID string, window domain.AnalysisWindow, report domain.AnomalyReport, reportedAt time.Time) error {
	if len(report) == 0 {
		return nil
	}

	rows := make([]*FindingRow, 0, len(report))
	for i, f := range report {
		row := &FindingRow{
			RunID:         runID,
			WindowStart:   window.Start,
			WindowEnd:     window.End,
			CategoryIndex: int64(i),
			Category:      f.Category,
			BadRows:       int64(f.BadRows),
			ReportedAt:    reportedAt,
		}
		if f.DistinctIDs != nil {
			row.DistinctIDs = bigquery.NullInt64{Int64: int64(*f.DistinctIDs), Valid: true}
		}
		rows = append(rows, row)
	}

	table := client.DatasetInProject(projectID, datasetID).Table(anomalyReportTable)
	if err := table.Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertAnomalyReport: inserting rows: %w", err)
	}
	return nil
}

// ReadRunWindowWithClient recovers the analysis window recorded with a
// run's report rows.
func ReadRunWindowWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, runID string) (domain.AnalysisWindow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			window_start,
			window_end
		FROM %s
		WHERE run_id = @run_id
		LIMIT 1
	`, fmt.Sprintf("`%s.%s.%s`", projectID, datasetID, anomalyReportTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return domain.AnalysisWindow{}, fmt.Errorf("ReadRunWindow: query read: %w", err)
	}

	var row struct {
		WindowStart time.Time `bigquery:"window_start"`
		WindowEnd   time.Time `bigquery:"window_end"`
	}
	if err := it.Next(&row); err != nil {
		if err == iterator.Done {
			return domain.AnalysisWindow{}, fmt.Errorf("ReadRunWindow: no report for run %s", runID)
		}
		return domain.AnalysisWindow{}, fmt.Errorf("ReadRunWindow: iter next: %w", err)
	}
	return domain.AnalysisWindow{Start: row.WindowStart, End: row.WindowEnd}, nil
}

// ReadAnomalyReportWithClient reads back the report for one run, in the
// category order it was written with.
func ReadAnomalyReportWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, runID string) (domain.AnomalyReport, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			run_id,
			window_start,
			window_end,
			category_index,
			category,
			bad_rows,
			distinct_ids,
			reported_at
		FROM %s
		WHERE run_id = @run_id
		ORDER BY category_index
	`, fmt.Sprintf("`%s.%s.%s`", projectID, datasetID, anomalyReportTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ReadAnomalyReport: query read: %w", err)
	}

	var report domain.AnomalyReport
	for {
		var r FindingRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadAnomalyReport: iter next: %w", err)
		}
		finding := domain.Finding{
			Category: r.Category,
			BadRows:  int(r.BadRows),
		}
		if r.DistinctIDs.Valid {
			n := int(r.DistinctIDs.Int64)
			finding.DistinctIDs = &n
		}
		report = append(report, finding)
	}
	return report, nil
}
