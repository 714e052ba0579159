package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

// The clean tables are replaced wholesale on each run: a DELETE clears the
// previous run's output, then the new rows are streamed in. Reruns are
// therefore idempotent at the table level.

func truncateTable(ctx context.Context, client *bigquery.Client, projectID, datasetID, tableName string) error {
	q := client.Query(fmt.Sprintf("DELETE FROM `%s.%s.%s` WHERE TRUE", projectID, datasetID, tableName))
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("truncate %s: run: %w", tableName, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("truncate %s: wait: %w", tableName, err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("truncate %s: job: %w", tableName, err)
	}
	return nil
}

// ReplaceCleanUsersWithClient replaces the users_clean table contents.
func ReplaceCleanUsersWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string, users []domain.CleanUser) error {
	if err := truncateTable(ctx, client, projectID, datasetID, cleanUsersTable); err != nil {
		return fmt.Errorf("ReplaceCleanUsers: %w", err)
	}
	if len(users) == 0 {
		return nil
	}

	rows := make([]*CleanUserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, cleanUserRow(u))
	}

	table := client.DatasetInProject(projectID, datasetID).Table(cleanUsersTable)
	if err := table.Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("ReplaceCleanUsers: inserting rows: %w", err)
	}
	return nil
}

// ReplaceCleanTransactionsWithClient replaces the transactions_clean table
// contents.
func ReplaceCleanTransactionsWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string, txns []domain.CleanTransaction) error {
	if err := truncateTable(ctx, client, projectID, datasetID, cleanTransactionsTable); err != nil {
		return fmt.Errorf("ReplaceCleanTransactions: %w", err)
	}
	if len(txns) == 0 {
		return nil
	}

	rows := make([]*CleanTransactionRow, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, cleanTransactionRow(t))
	}

	table := client.DatasetInProject(projectID, datasetID).Table(cleanTransactionsTable)
	if err := table.Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("ReplaceCleanTransactions: inserting rows: %w", err)
	}
	return nil
}

// ReplaceCleanAppEventsWithClient replaces the app_events_clean table
// contents.
func ReplaceCleanAppEventsWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string, events []domain.CleanAppEvent) error {
	if err := truncateTable(ctx, client, projectID, datasetID, cleanAppEventsTable); err != nil {
		return fmt.Errorf("ReplaceCleanAppEvents: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	rows := make([]*CleanAppEventRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, cleanAppEventRow(e))
	}

	table := client.DatasetInProject(projectID, datasetID).Table(cleanAppEventsTable)
	if err := table.Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("ReplaceCleanAppEvents: inserting rows: %w", err)
	}
	return nil
}

// ReadCleanUsersWithClient reads the full users_clean table.
func ReadCleanUsersWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string) ([]domain.CleanUser, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			user_id,
			email,
			country,
			signup_at
		FROM %s
		ORDER BY user_id
	`, fmt.Sprintf("`%s.%s.%s`", projectID, datasetID, cleanUsersTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ReadCleanUsers: query read: %w", err)
	}

	var users []domain.CleanUser
	for {
		var r CleanUserRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadCleanUsers: iter next: %w", err)
		}
		users = append(users, r.toDomain())
	}
	return users, nil
}

// ReadCleanTransactionsWithClient reads the full transactions_clean table.
func ReadCleanTransactionsWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string) ([]domain.CleanTransaction, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			sender_user_id,
			receiver_user_id,
			amount,
			currency,
			status,
			created_at,
			created_date
		FROM %s
		ORDER BY created_at
	`, fmt.Sprintf("`%s.%s.%s`", projectID, datasetID, cleanTransactionsTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ReadCleanTransactions: query read: %w", err)
	}

	var txns []domain.CleanTransaction
	for {
		var r CleanTransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadCleanTransactions: iter next: %w", err)
		}
		txns = append(txns, r.toDomain())
	}
	return txns, nil
}

// ReadCleanAppEventsWithClient reads the full app_events_clean table.
func ReadCleanAppEventsWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string) ([]domain.CleanAppEvent, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			event_id,
			user_id,
			event_type,
			event_ts,
			session_id,
			device
		FROM %s
		ORDER BY event_ts
	`, fmt.Sprintf("`%s.%s.%s`", projectID, datasetID, cleanAppEventsTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ReadCleanAppEvents: query read: %w", err)
	}

	var events []domain.CleanAppEvent
	for {
		var r CleanAppEventRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadCleanAppEvents: iter next: %w", err)
		}
		events = append(events, r.toDomain())
	}
	return events, nil
}
