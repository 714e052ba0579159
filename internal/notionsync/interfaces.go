package notionsync

import (
	"context"

	"github.com/jomei/notionapi"
)

// NotionService abstracts the Notion API operations the sync needs, so tests
// can substitute a fake client.
type NotionService interface {
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	DeletePage(ctx context.Context, pageID string) error
}
