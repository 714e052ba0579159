package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

// Raw tables keep timestamps as STRING columns: malformed values must survive
// the load so the quality rules can classify them, exactly as the source CSVs
// carry them.

type RawUserRow struct {
	UserID    int64               `bigquery:"user_id"`
	FirstName bigquery.NullString `bigquery:"first_name"`
	LastName  bigquery.NullString `bigquery:"last_name"`
	Email     bigquery.NullString `bigquery:"email"`
	Country   bigquery.NullString `bigquery:"country"`
	SignupAt  bigquery.NullString `bigquery:"signup_at"`
}

type RawTransactionRow struct {
	TransactionID  bigquery.NullString  `bigquery:"transaction_id"`
	SenderUserID   bigquery.NullInt64   `bigquery:"sender_user_id"`
	ReceiverUserID bigquery.NullInt64   `bigquery:"receiver_user_id"`
	Amount         bigquery.NullFloat64 `bigquery:"amount"`
	Currency       bigquery.NullString  `bigquery:"currency"`
	Status         bigquery.NullString  `bigquery:"status"`
	CreatedAt      bigquery.NullString  `bigquery:"created_at"`
}

type RawAppEventRow struct {
	EventID   string              `bigquery:"event_id"`
	UserID    bigquery.NullInt64  `bigquery:"user_id"`
	EventType bigquery.NullString `bigquery:"event_type"`
	EventTS   bigquery.NullString `bigquery:"event_ts"`
	SessionID bigquery.NullString `bigquery:"session_id"`
	Page      bigquery.NullString `bigquery:"page"`
	ButtonID  bigquery.NullString `bigquery:"button_id"`
	Device    bigquery.NullString `bigquery:"device"`
	OS        bigquery.NullString `bigquery:"os"`
	IP        bigquery.NullString `bigquery:"ip"`
}

// Clean tables carry typed TIMESTAMP columns; by the time a row lands here
// its critical fields are guaranteed present and parseable.

type CleanUserRow struct {
	UserID   int64               `bigquery:"user_id"`
	Email    bigquery.NullString `bigquery:"email"`
	Country  bigquery.NullString `bigquery:"country"`
	SignupAt time.Time           `bigquery:"signup_at"`
}

type CleanTransactionRow struct {
	TransactionID  string              `bigquery:"transaction_id"`
	SenderUserID   int64               `bigquery:"sender_user_id"`
	ReceiverUserID int64               `bigquery:"receiver_user_id"`
	Amount         float64             `bigquery:"amount"`
	Currency       bigquery.NullString `bigquery:"currency"`
	Status         bigquery.NullString `bigquery:"status"`
	CreatedAt      time.Time           `bigquery:"created_at"`
	CreatedDate    civil.Date          `bigquery:"created_date"` // partition/grouping column
}

type CleanAppEventRow struct {
	EventID   string              `bigquery:"event_id"`
	UserID    int64               `bigquery:"user_id"`
	EventType string              `bigquery:"event_type"`
	EventTS   time.Time           `bigquery:"event_ts"`
	SessionID bigquery.NullString `bigquery:"session_id"`
	Device    bigquery.NullString `bigquery:"device"`
}

// FindingRow is one anomaly category count for one run. CategoryIndex
// preserves the report order for consumers that query the table.
type FindingRow struct {
	RunID         string             `bigquery:"run_id"`
	WindowStart   time.Time          `bigquery:"window_start"`
	WindowEnd     time.Time          `bigquery:"window_end"`
	CategoryIndex int64              `bigquery:"category_index"`
	Category      string             `bigquery:"category"`
	BadRows       int64              `bigquery:"bad_rows"`
	DistinctIDs   bigquery.NullInt64 `bigquery:"distinct_ids"`
	ReportedAt    time.Time          `bigquery:"reported_at"`
}

// ── domain <-> row conversions ──

func nullStr(s *string) bigquery.NullString {
	if s == nil {
		return bigquery.NullString{}
	}
	return bigquery.NullString{StringVal: *s, Valid: true}
}

func nullInt(i *int64) bigquery.NullInt64 {
	if i == nil {
		return bigquery.NullInt64{}
	}
	return bigquery.NullInt64{Int64: *i, Valid: true}
}

func nullFloat(f *float64) bigquery.NullFloat64 {
	if f == nil {
		return bigquery.NullFloat64{}
	}
	return bigquery.NullFloat64{Float64: *f, Valid: true}
}

func strVal(ns bigquery.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.StringVal
	return &s
}

func intVal(ni bigquery.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	i := ni.Int64
	return &i
}

func floatVal(nf bigquery.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func rawUserRow(u domain.User) *RawUserRow {
	return &RawUserRow{
		UserID:    u.UserID,
		FirstName: nullStr(u.FirstName),
		LastName:  nullStr(u.LastName),
		Email:     nullStr(u.Email),
		Country:   nullStr(u.Country),
		SignupAt:  nullStr(u.SignupAt),
	}
}

func (r *RawUserRow) toDomain() domain.User {
	return domain.User{
		UserID:    r.UserID,
		FirstName: strVal(r.FirstName),
		LastName:  strVal(r.LastName),
		Email:     strVal(r.Email),
		Country:   strVal(r.Country),
		SignupAt:  strVal(r.SignupAt),
	}
}

func rawTransactionRow(t domain.Transaction) *RawTransactionRow {
	return &RawTransactionRow{
		TransactionID:  nullStr(t.TransactionID),
		SenderUserID:   nullInt(t.SenderUserID),
		ReceiverUserID: nullInt(t.ReceiverUserID),
		Amount:         nullFloat(t.Amount),
		Currency:       nullStr(t.Currency),
		Status:         nullStr(t.Status),
		CreatedAt:      nullStr(t.CreatedAt),
	}
}

func (r *RawTransactionRow) toDomain() domain.Transaction {
	return domain.Transaction{
		TransactionID:  strVal(r.TransactionID),
		SenderUserID:   intVal(r.SenderUserID),
		ReceiverUserID: intVal(r.ReceiverUserID),
		Amount:         floatVal(r.Amount),
		Currency:       strVal(r.Currency),
		Status:         strVal(r.Status),
		CreatedAt:      strVal(r.CreatedAt),
	}
}

func rawAppEventRow(e domain.AppEvent) *RawAppEventRow {
	return &RawAppEventRow{
		EventID:   e.EventID,
		UserID:    nullInt(e.UserID),
		EventType: nullStr(e.EventType),
		EventTS:   nullStr(e.EventTS),
		SessionID: nullStr(e.SessionID),
		Page:      nullStr(e.Page),
		ButtonID:  nullStr(e.ButtonID),
		Device:    nullStr(e.Device),
		OS:        nullStr(e.OS),
		IP:        nullStr(e.IP),
	}
}

func (r *RawAppEventRow) toDomain() domain.AppEvent {
	return domain.AppEvent{
		EventID:   r.EventID,
		UserID:    intVal(r.UserID),
		EventType: strVal(r.EventType),
		EventTS:   strVal(r.EventTS),
		SessionID: strVal(r.SessionID),
		Page:      strVal(r.Page),
		ButtonID:  strVal(r.ButtonID),
		Device:    strVal(r.Device),
		OS:        strVal(r.OS),
		IP:        strVal(r.IP),
	}
}

func cleanUserRow(u domain.CleanUser) *CleanUserRow {
	return &CleanUserRow{
		UserID:   u.UserID,
		Email:    nullStr(u.Email),
		Country:  nullStr(u.Country),
		SignupAt: u.SignupAt,
	}
}

func (r *CleanUserRow) toDomain() domain.CleanUser {
	return domain.CleanUser{
		UserID:   r.UserID,
		Email:    strVal(r.Email),
		Country:  strVal(r.Country),
		SignupAt: r.SignupAt,
	}
}

func cleanTransactionRow(t domain.CleanTransaction) *CleanTransactionRow {
	return &CleanTransactionRow{
		TransactionID:  t.TransactionID,
		SenderUserID:   t.SenderUserID,
		ReceiverUserID: t.ReceiverUserID,
		Amount:         t.Amount,
		Currency:       nullStr(t.Currency),
		Status:         nullStr(t.Status),
		CreatedAt:      t.CreatedAt,
		CreatedDate:    civil.DateOf(t.CreatedAt),
	}
}

func (r *CleanTransactionRow) toDomain() domain.CleanTransaction {
	return domain.CleanTransaction{
		TransactionID:  r.TransactionID,
		SenderUserID:   r.SenderUserID,
		ReceiverUserID: r.ReceiverUserID,
		Amount:         r.Amount,
		Currency:       strVal(r.Currency),
		Status:         strVal(r.Status),
		CreatedAt:      r.CreatedAt,
	}
}

func cleanAppEventRow(e domain.CleanAppEvent) *CleanAppEventRow {
	return &CleanAppEventRow{
		EventID:   e.EventID,
		UserID:    e.UserID,
		EventType: e.EventType,
		EventTS:   e.EventTS,
		SessionID: nullStr(e.SessionID),
		Device:    nullStr(e.Device),
	}
}

func (r *CleanAppEventRow) toDomain() domain.CleanAppEvent {
	return domain.CleanAppEvent{
		EventID:   r.EventID,
		UserID:    r.UserID,
		EventType: r.EventType,
		EventTS:   r.EventTS,
		SessionID: strVal(r.SessionID),
		Device:    strVal(r.Device),
	}
}
