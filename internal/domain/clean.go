package domain

import "time"

// Clean record types carry parsed instants and non-null critical fields.
// They are what downstream metrics are allowed to read.

// CleanUser is a user with a known signup instant. Email stays optional:
// it is not required by any downstream metric.
type CleanUser struct {
	UserID   int64
	Email    *string
	Country  *string
	SignupAt time.Time
}

// CleanTransaction is the projection kept after filtering and deduplication:
// unique transaction_id, resolvable sender and receiver, non-null amount,
// created_at at or after both parties' signup.
type CleanTransaction struct {
	TransactionID  string
	SenderUserID   int64
	ReceiverUserID int64
	Amount         float64
	Currency       *string
	Status         *string
	CreatedAt      time.Time
}

// CleanAppEvent is an event attributed to a clean user with a timestamp
// inside the inferred analysis window.
type CleanAppEvent struct {
	EventID   string
	UserID    int64
	EventType string
	EventTS   time.Time
	SessionID *string
	Device    *string
}
