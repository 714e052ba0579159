package notionsync

import (
	"context"
	"testing"
	"time"

	"github.com/jomei/notionapi"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

type fakeNotion struct {
	pages    []notionapi.Page
	created  []notionapi.Properties
	archived []string
}

func (f *fakeNotion) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	f.created = append(f.created, properties)
	return &notionapi.Page{}, nil
}

func (f *fakeNotion) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: f.pages}, nil
}

func (f *fakeNotion) DeletePage(ctx context.Context, pageID string) error {
	f.archived = append(f.archived, pageID)
	return nil
}

func pageForRun(id, runID string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(id),
		Properties: notionapi.Properties{
			"Run ID": &notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{PlainText: runID}},
			},
		},
	}
}

var testWindow = domain.AnalysisWindow{
	Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
}

func TestSyncReportCreatesPagePerFinding(t *testing.T) {
	client := &fakeNotion{}
	report := domain.AnomalyReport{
		{Category: domain.CategoryUsersMissingEmail, BadRows: 4},
		{Category: domain.CategoryTxnsMissingAmount, BadRows: 2},
	}

	if err := SyncReport(context.Background(), client, "db", "run-1", testWindow, report, false); err != nil {
		t.Fatalf("SyncReport: %v", err)
	}
	if len(client.created) != 2 {
		t.Errorf("created %d pages, want 2", len(client.created))
	}
}

func TestSyncReportArchivesOwnRunOnly(t *testing.T) {
	client := &fakeNotion{
		pages: []notionapi.Page{
			pageForRun("p1", "run-1"),
			pageForRun("p2", "run-2"),
			pageForRun("p3", "run-1"),
		},
	}

	err := SyncReport(context.Background(), client, "db", "run-1", testWindow,
		domain.AnomalyReport{{Category: domain.CategoryEventsOrphanUserID, BadRows: 1}}, false)
	if err != nil {
		t.Fatalf("SyncReport: %v", err)
	}

	if len(client.archived) != 2 {
		t.Fatalf("archived %d pages, want 2 (only run-1 pages)", len(client.archived))
	}
	for _, id := range client.archived {
		if id == "p2" {
			t.Error("archived a page belonging to another run")
		}
	}
}

func TestSyncReportDryRunTouchesNothing(t *testing.T) {
	client := &fakeNotion{pages: []notionapi.Page{pageForRun("p1", "run-1")}}

	err := SyncReport(context.Background(), client, "db", "run-1", testWindow,
		domain.AnomalyReport{{Category: domain.CategoryUsersMissingSignupAt, BadRows: 3}}, true)
	if err != nil {
		t.Fatalf("SyncReport: %v", err)
	}
	if len(client.created) != 0 || len(client.archived) != 0 {
		t.Errorf("dry run created %d / archived %d pages", len(client.created), len(client.archived))
	}
}

func TestFindingToProperties(t *testing.T) {
	n := 5
	props := FindingToProperties("run-9", testWindow, domain.Finding{
		Category:    domain.CategoryTxnsDuplicateID,
		BadRows:     12,
		DistinctIDs: &n,
	})

	badRows, ok := props["Bad Rows"].(notionapi.NumberProperty)
	if !ok || badRows.Number != 12 {
		t.Errorf("Bad Rows property = %+v", props["Bad Rows"])
	}
	distinct, ok := props["Distinct IDs"].(notionapi.NumberProperty)
	if !ok || distinct.Number != 5 {
		t.Errorf("Distinct IDs property = %+v", props["Distinct IDs"])
	}
	category, ok := props["Category"].(notionapi.SelectProperty)
	if !ok || category.Select.Name != domain.CategoryTxnsDuplicateID {
		t.Errorf("Category property = %+v", props["Category"])
	}
	if _, ok := props["Name"].(notionapi.TitleProperty); !ok {
		t.Error("missing title property")
	}
}

func TestFindingToPropertiesOmitsDistinctIDs(t *testing.T) {
	props := FindingToProperties("run-9", testWindow, domain.Finding{
		Category: domain.CategoryUsersMissingEmail,
		BadRows:  1,
	})
	if _, ok := props["Distinct IDs"]; ok {
		t.Error("Distinct IDs should be absent when the finding has none")
	}
}
