package domain

import "time"

// Raw record types mirror the source CSV / warehouse schemas. Nullable
// columns are pointers; timestamps stay as raw text until a rule needs the
// parsed instant, so malformed values survive loading and are classified by
// the quality rules instead of being rejected by the store.

// User is one row of the users dimension table.
type User struct {
	UserID    int64
	FirstName *string
	LastName  *string
	Email     *string
	Country   *string
	SignupAt  *string // timestamp text, may be absent or malformed
}

// SignupTime returns the parsed signup instant, or nil when the value is
// absent or unparsable.
func (u User) SignupTime() *time.Time {
	return ParseTimestamp(u.SignupAt)
}

// Transaction is one row of the P2P transfer fact table. transaction_id is
// not guaranteed unique in raw data; duplicates are an expected anomaly.
type Transaction struct {
	TransactionID  *string
	SenderUserID   *int64
	ReceiverUserID *int64
	Amount         *float64
	Currency       *string
	Status         *string // completed | pending | failed | anything else
	CreatedAt      *string // timestamp text
}

// CreatedTime returns the parsed creation instant, or nil when the value is
// absent or unparsable.
func (t Transaction) CreatedTime() *time.Time {
	return ParseTimestamp(t.CreatedAt)
}

// AppEvent is one row of in-app telemetry (logins, clicks, page views).
type AppEvent struct {
	EventID   string
	UserID    *int64
	EventType *string
	EventTS   *string // timestamp text
	SessionID *string
	Page      *string
	ButtonID  *string
	Device    *string
	OS        *string
	IP        *string
}

// EventTime returns the parsed event instant, or nil when the value is
// absent or unparsable.
func (e AppEvent) EventTime() *time.Time {
	return ParseTimestamp(e.EventTS)
}
