package quality

import (
	"github.com/acarvalho/p2p-quality/internal/domain"
)

// DetectAnomalies scans the raw record sets and returns one finding per
// anomaly category, in the fixed report order. Counts are independent: a
// single row can be counted under several categories. Source data is never
// mutated.
func DetectAnomalies(
	users []domain.User,
	transactions []domain.Transaction,
	events []domain.AppEvent,
	window domain.AnalysisWindow,
) domain.AnomalyReport {
	rules := NewRules(users, window)

	var missingEmail, missingSignup int
	for _, u := range users {
		if u.Email == nil || *u.Email == "" {
			missingEmail++
		}
		if !rules.UserHasSignup(u) {
			missingSignup++
		}
	}

	var beforeSignup, missingAmount int
	for _, t := range transactions {
		if t.CreatedTime() != nil && !rules.TransactionLifecycleOK(t) {
			beforeSignup++
		}
		if t.Amount == nil {
			missingAmount++
		}
	}
	dupRows, dupIDs := countDuplicateTransactionIDs(transactions)

	var orphanUser, missingType, outOfWindow int
	for _, e := range events {
		if e.UserID != nil && !rules.EventUserResolves(e) {
			orphanUser++
		}
		if e.EventType == nil || *e.EventType == "" {
			missingType++
		}
		if ts := e.EventTime(); ts != nil && !window.Contains(*ts) {
			outOfWindow++
		}
	}

	return domain.AnomalyReport{
		{Category: domain.CategoryUsersMissingEmail, BadRows: missingEmail},
		{Category: domain.CategoryUsersMissingSignupAt, BadRows: missingSignup},
		{Category: domain.CategoryTxnsBeforeSignup, BadRows: beforeSignup},
		{Category: domain.CategoryTxnsDuplicateID, BadRows: dupRows, DistinctIDs: &dupIDs},
		{Category: domain.CategoryTxnsMissingAmount, BadRows: missingAmount},
		{Category: domain.CategoryEventsOrphanUserID, BadRows: orphanUser},
		{Category: domain.CategoryEventsMissingEventType, BadRows: missingType},
		{Category: domain.CategoryEventsOutOfMonthWindow, BadRows: outOfWindow},
	}
}

// countDuplicateTransactionIDs returns the total number of rows sharing a
// duplicated transaction_id (the whole group, not just the excess) and the
// number of distinct duplicated ids. Rows with a NULL id are ignored.
func countDuplicateTransactionIDs(transactions []domain.Transaction) (badRows, distinctIDs int) {
	counts := make(map[string]int)
	for _, t := range transactions {
		if t.TransactionID == nil || *t.TransactionID == "" {
			continue
		}
		counts[*t.TransactionID]++
	}
	for _, n := range counts {
		if n >= 2 {
			badRows += n
			distinctIDs++
		}
	}
	return badRows, distinctIDs
}
