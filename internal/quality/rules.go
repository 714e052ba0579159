package quality

import (
	"time"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

// Rules holds the validation predicates shared by the anomaly detector and
// the cleaner. Each rule exists exactly once: the detector counts rows that
// fail it, the cleaner keeps rows that pass it, so the two can never drift.
type Rules struct {
	window domain.AnalysisWindow

	// rawUserIDs contains every user_id present in the raw users table,
	// including users with a missing signup_at.
	rawUserIDs map[int64]struct{}

	// signups maps user_id to the parsed signup instant for users whose
	// signup_at is present and parseable. Membership here is exactly the
	// clean-user predicate.
	signups map[int64]time.Time
}

// NewRules builds rule indexes from the raw users and the inferred window.
func NewRules(users []domain.User, window domain.AnalysisWindow) *Rules {
	r := &Rules{
		window:     window,
		rawUserIDs: make(map[int64]struct{}, len(users)),
		signups:    make(map[int64]time.Time, len(users)),
	}
	for _, u := range users {
		r.rawUserIDs[u.UserID] = struct{}{}
		if ts := u.SignupTime(); ts != nil {
			r.signups[u.UserID] = *ts
		}
	}
	return r
}

// UserHasSignup reports whether the user carries a usable signup_at. This is
// the clean-user rule.
func (r *Rules) UserHasSignup(u domain.User) bool {
	return u.SignupTime() != nil
}

// TransactionFieldsComplete reports whether every critical transaction field
// is present: transaction_id, created_at (parseable), amount, sender and
// receiver.
func (r *Rules) TransactionFieldsComplete(t domain.Transaction) bool {
	return t.TransactionID != nil && *t.TransactionID != "" &&
		t.CreatedTime() != nil &&
		t.Amount != nil &&
		t.SenderUserID != nil &&
		t.ReceiverUserID != nil
}

// TransactionLifecycleOK reports whether both parties resolve to clean users
// and created_at is at or after both signup instants. A nil or unresolvable
// sender/receiver, an unknown signup, or a missing created_at all fail the
// rule. Comparison is on parsed instants, never on the raw strings.
func (r *Rules) TransactionLifecycleOK(t domain.Transaction) bool {
	created := t.CreatedTime()
	if created == nil {
		return false
	}
	senderSignup, ok := r.lookupSignup(t.SenderUserID)
	if !ok {
		return false
	}
	receiverSignup, ok := r.lookupSignup(t.ReceiverUserID)
	if !ok {
		return false
	}
	return !created.Before(senderSignup) && !created.Before(receiverSignup)
}

// EventUserResolves reports whether the event's user_id exists in the raw
// users table. Used by the orphan check, which is about referential
// integrity against raw data, not cleanliness.
func (r *Rules) EventUserResolves(e domain.AppEvent) bool {
	if e.UserID == nil {
		return false
	}
	_, ok := r.rawUserIDs[*e.UserID]
	return ok
}

// EventUserClean reports whether the event's user_id resolves to a clean
// user.
func (r *Rules) EventUserClean(e domain.AppEvent) bool {
	_, ok := r.lookupSignup(e.UserID)
	return ok
}

// EventInWindow reports whether the event timestamp is present, parseable
// and inside the half-open analysis window.
func (r *Rules) EventInWindow(e domain.AppEvent) bool {
	ts := e.EventTime()
	return ts != nil && r.window.Contains(*ts)
}

func (r *Rules) lookupSignup(userID *int64) (time.Time, bool) {
	if userID == nil {
		return time.Time{}, false
	}
	ts, ok := r.signups[*userID]
	return ts, ok
}
