package quality

import (
	"testing"
	"time"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

func januaryWindow() domain.AnalysisWindow {
	return domain.AnalysisWindow{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testUser(id int64, email, signupAt string) domain.User {
	u := domain.User{UserID: id}
	if email != "" {
		u.Email = strPtr(email)
	}
	if signupAt != "" {
		u.SignupAt = strPtr(signupAt)
	}
	return u
}

func testTxn(id string, sender, receiver int64, amount float64, status, createdAt string) domain.Transaction {
	t := domain.Transaction{
		SenderUserID:   intPtr(sender),
		ReceiverUserID: intPtr(receiver),
		Amount:         floatPtr(amount),
	}
	if id != "" {
		t.TransactionID = strPtr(id)
	}
	if status != "" {
		t.Status = strPtr(status)
	}
	if createdAt != "" {
		t.CreatedAt = strPtr(createdAt)
	}
	return t
}

func testEvent(id string, userID int64, eventType, ts string) domain.AppEvent {
	e := domain.AppEvent{EventID: id, UserID: intPtr(userID)}
	if eventType != "" {
		e.EventType = strPtr(eventType)
	}
	if ts != "" {
		e.EventTS = strPtr(ts)
	}
	return e
}

func TestDetectAnomaliesOrderAndNames(t *testing.T) {
	report := DetectAnomalies(nil, nil, nil, januaryWindow())

	if len(report) != len(domain.Categories) {
		t.Fatalf("report has %d findings, want %d", len(report), len(domain.Categories))
	}
	for i, f := range report {
		if f.Category != domain.Categories[i] {
			t.Errorf("finding %d category = %q, want %q", i, f.Category, domain.Categories[i])
		}
	}
	if report[3].DistinctIDs == nil {
		t.Error("duplicate-id finding should carry a distinct_ids count")
	}
	for i, f := range report {
		if i != 3 && f.DistinctIDs != nil {
			t.Errorf("finding %d (%s) should not carry distinct_ids", i, f.Category)
		}
	}
}

func TestDetectAnomaliesCounts(t *testing.T) {
	users := []domain.User{
		testUser(1, "a@example.com", "2026-01-01 00:00:00"),
		testUser(2, "", "2026-01-02 00:00:00"),  // missing email
		testUser(3, "c@example.com", ""),        // missing signup
		testUser(4, "d@example.com", "garbage"), // malformed signup counts as missing
	}
	transactions := []domain.Transaction{
		testTxn("t1", 1, 2, 10, "completed", "2026-01-10 00:00:00"),
		// before sender signup
		testTxn("t2", 2, 1, 10, "completed", "2026-01-01 12:00:00"),
		// receiver has unknown signup
		testTxn("t3", 1, 3, 10, "completed", "2026-01-10 00:00:00"),
		// sender does not resolve at all
		testTxn("t4", 99, 1, 10, "completed", "2026-01-10 00:00:00"),
		// null created_at never counts under category 3
		testTxn("t5", 99, 3, 10, "completed", ""),
		// duplicate id group of three plus a pair
		testTxn("d1", 1, 2, 1, "completed", "2026-01-11 00:00:00"),
		testTxn("d1", 1, 2, 1, "pending", "2026-01-12 00:00:00"),
		testTxn("d1", 1, 2, 1, "failed", "2026-01-13 00:00:00"),
		testTxn("d2", 1, 2, 2, "completed", "2026-01-14 00:00:00"),
		testTxn("d2", 1, 2, 2, "completed", "2026-01-15 00:00:00"),
		// missing amount
		{TransactionID: strPtr("t6"), SenderUserID: intPtr(1), ReceiverUserID: intPtr(2), CreatedAt: strPtr("2026-01-10 00:00:00")},
	}
	events := []domain.AppEvent{
		testEvent("e1", 1, "login", "2026-01-05 09:00:00"),
		testEvent("e2", 404, "login", "2026-01-05 09:00:00"), // orphan
		testEvent("e3", 1, "", "2026-01-05 09:00:00"),        // missing type
		testEvent("e4", 1, "login", "2025-12-31 23:59:59"),   // before window
		testEvent("e5", 1, "login", "2026-02-01 00:00:00"),   // at window end, excluded
		testEvent("e6", 3, "login", "2026-01-20 00:00:00"),   // resolves to raw user, not orphan
	}

	report := DetectAnomalies(users, transactions, events, januaryWindow())

	wantBadRows := map[string]int{
		domain.CategoryUsersMissingEmail:      1,
		domain.CategoryUsersMissingSignupAt:   2,
		domain.CategoryTxnsBeforeSignup:       3, // t2, t3, t4
		domain.CategoryTxnsDuplicateID:        5, // 3 rows of d1 + 2 rows of d2
		domain.CategoryTxnsMissingAmount:      1,
		domain.CategoryEventsOrphanUserID:     1,
		domain.CategoryEventsMissingEventType: 1,
		domain.CategoryEventsOutOfMonthWindow: 2,
	}

	for category, want := range wantBadRows {
		f, ok := report.ByCategory(category)
		if !ok {
			t.Fatalf("report missing category %s", category)
		}
		if f.BadRows != want {
			t.Errorf("%s bad_rows = %d, want %d", category, f.BadRows, want)
		}
	}

	dup, _ := report.ByCategory(domain.CategoryTxnsDuplicateID)
	if dup.DistinctIDs == nil || *dup.DistinctIDs != 2 {
		t.Errorf("duplicate distinct_ids = %v, want 2", dup.DistinctIDs)
	}
}

func TestDetectAnomaliesDoesNotMutateInput(t *testing.T) {
	users := []domain.User{testUser(1, "a@example.com", "2026-01-01 00:00:00")}
	transactions := []domain.Transaction{testTxn("t1", 1, 1, 5, "completed", "2026-01-02 00:00:00")}

	before := *transactions[0].TransactionID
	DetectAnomalies(users, transactions, nil, januaryWindow())
	if *transactions[0].TransactionID != before {
		t.Error("detector mutated raw transaction data")
	}
}
