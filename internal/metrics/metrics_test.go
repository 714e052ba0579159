package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

func sp(s string) *string { return &s }

func txn(id string, sender, receiver int64, amount float64, currency, status string, created time.Time) domain.CleanTransaction {
	return domain.CleanTransaction{
		TransactionID:  id,
		SenderUserID:   sender,
		ReceiverUserID: receiver,
		Amount:         amount,
		Currency:       sp(currency),
		Status:         sp(status),
		CreatedAt:      created,
	}
}

var day1 = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
var day2 = time.Date(2026, 1, 6, 9, 30, 0, 0, time.UTC)

func TestVolumeByCurrencyCompletedOnly(t *testing.T) {
	txns := []domain.CleanTransaction{
		txn("t1", 1, 2, 100, "EUR", "completed", day1),
		txn("t2", 1, 3, 50, "EUR", "completed", day1),
		txn("t3", 2, 3, 999, "EUR", "pending", day1),
		txn("t4", 2, 1, 30, "CHF", "completed", day2),
		txn("t5", 3, 1, 10, "CHF", "failed", day2),
	}

	volumes := VolumeByCurrency(txns)
	if got := volumes["EUR"]; got != 150 {
		t.Errorf("EUR volume = %v, want 150 (pending must not count)", got)
	}
	if got := volumes["CHF"]; got != 30 {
		t.Errorf("CHF volume = %v, want 30 (failed must not count)", got)
	}
	if len(volumes) != 2 {
		t.Errorf("got %d currencies, want 2", len(volumes))
	}
}

func TestActiveUsersCountsBothSides(t *testing.T) {
	txns := []domain.CleanTransaction{
		txn("t1", 1, 2, 10, "EUR", "completed", day1),
		txn("t2", 2, 3, 10, "EUR", "pending", day1),
		txn("t3", 1, 3, 10, "EUR", "failed", day1),
	}
	if got := ActiveUsers(txns); got != 3 {
		t.Errorf("ActiveUsers = %d, want 3", got)
	}
}

func TestAverageSentPerUser(t *testing.T) {
	txns := []domain.CleanTransaction{
		txn("t1", 1, 2, 10, "EUR", "completed", day1),
		txn("t2", 1, 3, 30, "EUR", "pending", day1),
		txn("t3", 2, 1, 5, "EUR", "completed", day2),
	}

	averages := AverageSentPerUser(txns)
	if len(averages) != 2 {
		t.Fatalf("got %d senders, want 2", len(averages))
	}
	if averages[0].UserID != 1 || averages[1].UserID != 2 {
		t.Fatalf("averages not ordered by user id: %+v", averages)
	}
	if math.Abs(averages[0].Average-20) > 1e-9 || averages[0].Sent != 2 {
		t.Errorf("user 1 average = %+v, want avg 20 over 2 sends", averages[0])
	}
	if averages[1].Average != 5 {
		t.Errorf("user 2 average = %v, want 5", averages[1].Average)
	}
}

func TestDailyVolumesOrderedAndBucketed(t *testing.T) {
	txns := []domain.CleanTransaction{
		txn("t1", 1, 2, 10, "EUR", "completed", day2),
		txn("t2", 1, 3, 20, "EUR", "completed", day1),
		txn("t3", 2, 3, 5, "EUR", "completed", day1),
		txn("t4", 2, 3, 500, "EUR", "pending", day1),
	}

	days := DailyVolumes(txns)
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if days[0].Day != "2026-01-05" || days[0].Volume != 25 || days[0].Count != 2 {
		t.Errorf("first day = %+v, want 2026-01-05 volume 25 count 2", days[0])
	}
	if days[1].Day != "2026-01-06" || days[1].Volume != 10 {
		t.Errorf("second day = %+v, want 2026-01-06 volume 10", days[1])
	}
}

func TestEventsByType(t *testing.T) {
	events := []domain.CleanAppEvent{
		{EventID: "e1", UserID: 1, EventType: "page_view", EventTS: day1},
		{EventID: "e2", UserID: 1, EventType: "button_click", EventTS: day1},
		{EventID: "e3", UserID: 2, EventType: "page_view", EventTS: day2},
	}
	counts := EventsByType(events)
	if counts["page_view"] != 2 || counts["button_click"] != 1 {
		t.Errorf("EventsByType = %v", counts)
	}
}

func TestSummarizeEmptyInputs(t *testing.T) {
	s := Summarize(nil, nil)
	if s.ActiveUsers != 0 || len(s.VolumeByCurrency) != 0 || len(s.DailyVolume) != 0 || len(s.EventsByType) != 0 {
		t.Errorf("empty summary not empty: %+v", s)
	}
}
