// Package notionsync publishes anomaly reports to a Notion database so the
// data team can review run results without touching the warehouse. One page
// per finding; re-syncing a run replaces its existing pages.
package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/acarvalho/p2p-quality/internal/domain"
	"github.com/acarvalho/p2p-quality/internal/logger"
)

// SyncReport pushes one run's anomaly report to the Notion database.
// Existing pages for the same run are archived first so the sync is
// idempotent. With dryRun set, it only logs what it would do.
func SyncReport(ctx context.Context, client NotionService, databaseID, runID string, window domain.AnalysisWindow, report domain.AnomalyReport, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Str("run_id", runID).
		Str("window", window.String()).
		Bool("dry_run", dryRun).
		Int("findings", len(report)).
		Msg("Starting report sync to Notion")

	pages, err := queryAllPages(ctx, client, databaseID)
	if err != nil {
		return fmt.Errorf("SyncReport: querying existing pages: %w", err)
	}

	var deleted int
	for _, page := range pages {
		if extractRunID(page) != runID {
			continue
		}
		if dryRun {
			log.Info().Str("page_id", string(page.ID)).Msg("[DRY RUN] Would archive existing page")
			deleted++
			continue
		}
		if err := client.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().Err(err).Str("page_id", string(page.ID)).Msg("Failed to archive existing page")
			continue
		}
		deleted++
	}
	if deleted > 0 {
		log.Info().Int("archived", deleted).Msg("Archived previous pages for run")
	}

	var created int
	for _, finding := range report {
		props := FindingToProperties(runID, window, finding)
		if dryRun {
			log.Info().Str("category", finding.Category).Msg("[DRY RUN] Would create page")
			created++
			continue
		}
		if _, err := client.CreatePage(ctx, databaseID, props); err != nil {
			return fmt.Errorf("SyncReport: creating page for %s: %w", finding.Category, err)
		}
		created++
	}

	log.Info().Int("created", created).Msg("Report sync to Notion complete")
	return nil
}

// queryAllPages pages through the full database contents.
func queryAllPages(ctx context.Context, client NotionService, databaseID string) ([]notionapi.Page, error) {
	var pages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: 100}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := client.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}
	return pages, nil
}
