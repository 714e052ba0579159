package domain

// Anomaly category names. These are stable keys consumed by downstream
// reporting; the order of Categories is part of the contract.
const (
	CategoryUsersMissingEmail      = "users_missing_email"
	CategoryUsersMissingSignupAt   = "users_missing_signup_at"
	CategoryTxnsBeforeSignup       = "transactions_before_signup_or_unknown_signup"
	CategoryTxnsDuplicateID        = "transactions_duplicate_transaction_id"
	CategoryTxnsMissingAmount      = "transactions_missing_amount"
	CategoryEventsOrphanUserID     = "app_events_orphan_user_id"
	CategoryEventsMissingEventType = "app_events_missing_event_type"
	CategoryEventsOutOfMonthWindow = "app_events_out_of_intended_month_window"
)

// Categories lists every anomaly category in report order. Consumers index
// findings by position, so this order must not change.
var Categories = []string{
	CategoryUsersMissingEmail,
	CategoryUsersMissingSignupAt,
	CategoryTxnsBeforeSignup,
	CategoryTxnsDuplicateID,
	CategoryTxnsMissingAmount,
	CategoryEventsOrphanUserID,
	CategoryEventsMissingEventType,
	CategoryEventsOutOfMonthWindow,
}

// Finding is the count for a single anomaly category over the raw data.
// DistinctIDs is only set for categories where a distinct-identifier count is
// meaningful (currently only duplicate transaction ids).
type Finding struct {
	Category    string `json:"category"`
	BadRows     int    `json:"bad_rows"`
	DistinctIDs *int   `json:"distinct_ids,omitempty"`
}

// AnomalyReport is the ordered sequence of findings, one per category.
type AnomalyReport []Finding

// ByCategory returns the finding for the given category name.
func (r AnomalyReport) ByCategory(category string) (Finding, bool) {
	for _, f := range r {
		if f.Category == category {
			return f, true
		}
	}
	return Finding{}, false
}
