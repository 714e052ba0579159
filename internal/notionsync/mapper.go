package notionsync

import (
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

// FindingToProperties converts one anomaly finding to Notion page properties
// for the quality-report database. The page title combines run and category
// so it reads well in Notion's default list view.
func FindingToProperties(runID string, window domain.AnalysisWindow, finding domain.Finding) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: fmt.Sprintf("%s / %s", runID, finding.Category),
					},
				},
			},
		},
		"Run ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: runID,
					},
				},
			},
		},
		"Category": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: finding.Category,
			},
		},
		"Bad Rows": notionapi.NumberProperty{
			Number: float64(finding.BadRows),
		},
		"Window": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: notionDate(window.Start),
				// Notion date ranges are inclusive; the window is half-open.
				End: notionDate(window.End.Add(-24 * time.Hour)),
			},
		},
	}

	if finding.DistinctIDs != nil {
		props["Distinct IDs"] = notionapi.NumberProperty{
			Number: float64(*finding.DistinctIDs),
		}
	}

	return props
}

func notionDate(t time.Time) *notionapi.Date {
	d := notionapi.Date(t)
	return &d
}

// extractRunID pulls the Run ID rich-text property back out of a page.
// Returns "" when the property is missing or has an unexpected shape.
func extractRunID(page notionapi.Page) string {
	prop, ok := page.Properties["Run ID"]
	if !ok {
		return ""
	}
	rt, ok := prop.(*notionapi.RichTextProperty)
	if !ok || len(rt.RichText) == 0 {
		return ""
	}
	return rt.RichText[0].PlainText
}
