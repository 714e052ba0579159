package quality

import (
	"github.com/acarvalho/p2p-quality/internal/domain"
)

// Status ranks used to pick the winning row among duplicate transaction ids:
// completed beats pending beats failed beats anything unrecognized.
const (
	statusRankCompleted = 3
	statusRankPending   = 2
	statusRankFailed    = 1
	statusRankUnknown   = 0
)

func statusRank(status *string) int {
	if status == nil {
		return statusRankUnknown
	}
	switch *status {
	case "completed":
		return statusRankCompleted
	case "pending":
		return statusRankPending
	case "failed":
		return statusRankFailed
	default:
		return statusRankUnknown
	}
}

// CleanUsers keeps users whose signup_at is present and parseable. user_id
// is assumed unique in the source, so no deduplication is applied.
func CleanUsers(users []domain.User) []domain.CleanUser {
	out := make([]domain.CleanUser, 0, len(users))
	for _, u := range users {
		ts := u.SignupTime()
		if ts == nil {
			continue
		}
		out = append(out, domain.CleanUser{
			UserID:   u.UserID,
			Email:    u.Email,
			Country:  u.Country,
			SignupAt: *ts,
		})
	}
	return out
}

// CleanTransactions runs the four-stage transaction pipeline: completeness
// filter, referential+temporal filter against clean users, deduplication by
// status rank then recency, and projection to the clean schema.
func CleanTransactions(users []domain.User, transactions []domain.Transaction) []domain.CleanTransaction {
	// The window is not needed here: transaction cleaning is bounded by
	// signup instants, not by the analysis month.
	rules := NewRules(users, domain.AnalysisWindow{})

	candidates := make([]domain.CleanTransaction, 0, len(transactions))
	for _, t := range transactions {
		if !rules.TransactionFieldsComplete(t) {
			continue
		}
		if !rules.TransactionLifecycleOK(t) {
			continue
		}
		candidates = append(candidates, domain.CleanTransaction{
			TransactionID:  *t.TransactionID,
			SenderUserID:   *t.SenderUserID,
			ReceiverUserID: *t.ReceiverUserID,
			Amount:         *t.Amount,
			Currency:       t.Currency,
			Status:         t.Status,
			CreatedAt:      *t.CreatedTime(),
		})
	}

	return dedupeBy(candidates,
		func(t domain.CleanTransaction) string { return t.TransactionID },
		func(candidate, incumbent domain.CleanTransaction) bool {
			cr, ir := statusRank(candidate.Status), statusRank(incumbent.Status)
			if cr != ir {
				return cr > ir
			}
			return candidate.CreatedAt.After(incumbent.CreatedAt)
		})
}

// CleanAppEvents keeps events with a non-null user_id, event_ts and
// event_type, attributed to a clean user, with a timestamp inside the
// half-open analysis window.
func CleanAppEvents(users []domain.User, events []domain.AppEvent, window domain.AnalysisWindow) []domain.CleanAppEvent {
	rules := NewRules(users, window)

	out := make([]domain.CleanAppEvent, 0, len(events))
	for _, e := range events {
		if e.EventType == nil || *e.EventType == "" {
			continue
		}
		if !rules.EventUserClean(e) {
			continue
		}
		if !rules.EventInWindow(e) {
			continue
		}
		out = append(out, domain.CleanAppEvent{
			EventID:   e.EventID,
			UserID:    *e.UserID,
			EventType: *e.EventType,
			EventTS:   *e.EventTime(),
			SessionID: e.SessionID,
			Device:    e.Device,
		})
	}
	return out
}
