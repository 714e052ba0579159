package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

// InsertRawUsersWithClient inserts a batch of users into users_raw using the
// provided BigQuery client.
func InsertRawUsersWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string, users []domain.User) error {
	if len(users) == 0 {
		return nil
	}

	rows := make([]*RawUserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, rawUserRow(u))
	}

	table := client.DatasetInProject(projectID, datasetID).Table(rawUsersTable)
	if err := table.Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertRawUsers: inserting rows: %w", err)
	}
	return nil
}

// InsertRawTransactionsWithClient inserts a batch of transactions into
// transactions_raw using the provided BigQuery client.
func InsertRawTransactionsWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string, txns []domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	rows := make([]*RawTransactionRow, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, rawTransactionRow(t))
	}

	table := client.DatasetInProject(projectID, datasetID).Table(rawTransactionsTable)
	if err := table.Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertRawTransactions: inserting rows: %w", err)
	}
	return nil
}

// InsertRawAppEventsWithClient inserts a batch of app events into
// app_events_raw using the provided BigQuery client.
func InsertRawAppEventsWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string, events []domain.AppEvent) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([]*RawAppEventRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, rawAppEventRow(e))
	}

	table := client.DatasetInProject(projectID, datasetID).Table(rawAppEventsTable)
	if err := table.Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertRawAppEvents: inserting rows: %w", err)
	}
	return nil
}

// ReadRawUsersWithClient reads the full users_raw table. The timestamp
// column comes back as the original string, malformed values included.
func ReadRawUsersWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string) ([]domain.User, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			user_id,
			first_name,
			last_name,
			email,
			country,
			signup_at
		FROM %s
		ORDER BY user_id
	`, fmt.Sprintf("`%s.%s.%s`", projectID, datasetID, rawUsersTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ReadRawUsers: query read: %w", err)
	}

	var users []domain.User
	for {
		var r RawUserRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadRawUsers: iter next: %w", err)
		}
		users = append(users, r.toDomain())
	}
	return users, nil
}

// ReadRawTransactionsWithClient reads the full transactions_raw table.
func ReadRawTransactionsWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string) ([]domain.Transaction, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			sender_user_id,
			receiver_user_id,
			amount,
			currency,
			status,
			created_at
		FROM %s
	`, fmt.Sprintf("`%s.%s.%s`", projectID, datasetID, rawTransactionsTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ReadRawTransactions: query read: %w", err)
	}

	var txns []domain.Transaction
	for {
		var r RawTransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadRawTransactions: iter next: %w", err)
		}
		txns = append(txns, r.toDomain())
	}
	return txns, nil
}

// ReadRawAppEventsWithClient reads the full app_events_raw table.
func ReadRawAppEventsWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string) ([]domain.AppEvent, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			event_id,
			user_id,
			event_type,
			event_ts,
			session_id,
			page,
			button_id,
			device,
			os,
			ip
		FROM %s
	`, fmt.Sprintf("`%s.%s.%s`", projectID, datasetID, rawAppEventsTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ReadRawAppEvents: query read: %w", err)
	}

	var events []domain.AppEvent
	for {
		var r RawAppEventRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadRawAppEvents: iter next: %w", err)
		}
		events = append(events, r.toDomain())
	}
	return events, nil
}
