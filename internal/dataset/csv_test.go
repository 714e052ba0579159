package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

func sp(s string) *string    { return &s }
func ip(i int64) *int64      { return &i }
func fp(f float64) *float64 { return &f }

func TestTransactionsBlankMeansNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")
	txns := []domain.Transaction{
		{
			TransactionID:  sp("t1"),
			SenderUserID:   ip(1),
			ReceiverUserID: ip(2),
			Amount:         fp(12.5),
			Currency:       sp("EUR"),
			Status:         sp("completed"),
			CreatedAt:      sp("2026-01-10 09:30:00"),
		},
		{
			// retry row with everything nullable missing
			TransactionID: sp("t2"),
		},
	}

	if err := WriteTransactions(path, txns); err != nil {
		t.Fatalf("WriteTransactions: %v", err)
	}
	got, err := ReadTransactions(path)
	if err != nil {
		t.Fatalf("ReadTransactions: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("read %d rows, want 2", len(got))
	}
	if got[0].Amount == nil || *got[0].Amount != 12.5 {
		t.Errorf("row 0 amount = %v, want 12.5", got[0].Amount)
	}
	if got[1].Amount != nil || got[1].SenderUserID != nil || got[1].CreatedAt != nil {
		t.Errorf("blank fields should read back as nil, got %+v", got[1])
	}
}

func TestMalformedTimestampSurvivesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")
	users := []domain.User{
		{UserID: 1, SignupAt: sp("not-a-timestamp")},
		{UserID: 2, SignupAt: sp("2026-01-05 10:00:00")},
		{UserID: 3},
	}

	if err := WriteUsers(path, users); err != nil {
		t.Fatalf("WriteUsers: %v", err)
	}
	got, err := ReadUsers(path)
	if err != nil {
		t.Fatalf("ReadUsers: %v", err)
	}

	if got[0].SignupAt == nil || *got[0].SignupAt != "not-a-timestamp" {
		t.Errorf("malformed timestamp did not survive: %v", got[0].SignupAt)
	}
	if got[0].SignupTime() != nil {
		t.Error("malformed timestamp should parse as nil")
	}
	if got[2].SignupAt != nil {
		t.Error("absent signup_at should read back as nil")
	}
}

func TestReadAppEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app_events.csv")
	events := []domain.AppEvent{
		{
			EventID:   "e1",
			UserID:    ip(7),
			EventType: sp("button_click"),
			EventTS:   sp("2026-01-08 14:00:00"),
			SessionID: sp("s1"),
			Page:      sp("/send"),
			ButtonID:  sp("send_now"),
			Device:    sp("ios"),
			OS:        sp("iOS 26"),
			IP:        sp("10.0.0.1"),
		},
		{EventID: "e2"},
	}

	if err := WriteAppEvents(path, events); err != nil {
		t.Fatalf("WriteAppEvents: %v", err)
	}
	got, err := ReadAppEvents(path)
	if err != nil {
		t.Fatalf("ReadAppEvents: %v", err)
	}

	if got[0].ButtonID == nil || *got[0].ButtonID != "send_now" {
		t.Errorf("row 0 button_id = %v, want send_now", got[0].ButtonID)
	}
	if got[1].UserID != nil || got[1].EventType != nil {
		t.Errorf("blank event fields should be nil, got %+v", got[1])
	}
}

func TestReadRejectsWrongHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")
	if err := os.WriteFile(path, []byte("user_id,email\n1,a@example.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadUsers(path); err == nil {
		t.Error("ReadUsers should reject a file with the wrong column count")
	}
}
