// Package dataset reads and writes the three raw CSV files. A blank field is
// NULL; values are written back verbatim so malformed timestamps survive a
// round trip and reach the quality rules intact.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

var (
	userHeader  = []string{"user_id", "first_name", "last_name", "email", "country", "signup_at"}
	txnHeader   = []string{"transaction_id", "sender_user_id", "receiver_user_id", "amount", "currency", "status", "created_at"}
	eventHeader = []string{"event_id", "user_id", "event_type", "event_ts", "session_id", "page", "button_id", "device", "os", "ip"}
)

// ReadUsers loads users.csv.
func ReadUsers(path string) ([]domain.User, error) {
	rows, err := readRows(path, len(userHeader))
	if err != nil {
		return nil, fmt.Errorf("ReadUsers: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for i, rec := range rows {
		id, err := requiredInt(rec[0])
		if err != nil {
			return nil, fmt.Errorf("ReadUsers: row %d: user_id: %w", i+1, err)
		}
		users = append(users, domain.User{
			UserID:    id,
			FirstName: optStr(rec[1]),
			LastName:  optStr(rec[2]),
			Email:     optStr(rec[3]),
			Country:   optStr(rec[4]),
			SignupAt:  optStr(rec[5]),
		})
	}
	return users, nil
}

// ReadTransactions loads transactions.csv.
func ReadTransactions(path string) ([]domain.Transaction, error) {
	rows, err := readRows(path, len(txnHeader))
	if err != nil {
		return nil, fmt.Errorf("ReadTransactions: %w", err)
	}
	txns := make([]domain.Transaction, 0, len(rows))
	for i, rec := range rows {
		sender, err := optInt(rec[1])
		if err != nil {
			return nil, fmt.Errorf("ReadTransactions: row %d: sender_user_id: %w", i+1, err)
		}
		receiver, err := optInt(rec[2])
		if err != nil {
			return nil, fmt.Errorf("ReadTransactions: row %d: receiver_user_id: %w", i+1, err)
		}
		amount, err := optFloat(rec[3])
		if err != nil {
			return nil, fmt.Errorf("ReadTransactions: row %d: amount: %w", i+1, err)
		}
		txns = append(txns, domain.Transaction{
			TransactionID:  optStr(rec[0]),
			SenderUserID:   sender,
			ReceiverUserID: receiver,
			Amount:         amount,
			Currency:       optStr(rec[4]),
			Status:         optStr(rec[5]),
			CreatedAt:      optStr(rec[6]),
		})
	}
	return txns, nil
}

// ReadAppEvents loads app_events.csv.
func ReadAppEvents(path string) ([]domain.AppEvent, error) {
	rows, err := readRows(path, len(eventHeader))
	if err != nil {
		return nil, fmt.Errorf("ReadAppEvents: %w", err)
	}
	events := make([]domain.AppEvent, 0, len(rows))
	for i, rec := range rows {
		userID, err := optInt(rec[1])
		if err != nil {
			return nil, fmt.Errorf("ReadAppEvents: row %d: user_id: %w", i+1, err)
		}
		events = append(events, domain.AppEvent{
			EventID:   rec[0],
			UserID:    userID,
			EventType: optStr(rec[2]),
			EventTS:   optStr(rec[3]),
			SessionID: optStr(rec[4]),
			Page:      optStr(rec[5]),
			ButtonID:  optStr(rec[6]),
			Device:    optStr(rec[7]),
			OS:        optStr(rec[8]),
			IP:        optStr(rec[9]),
		})
	}
	return events, nil
}

// WriteUsers writes users.csv with the canonical header.
func WriteUsers(path string, users []domain.User) error {
	records := make([][]string, 0, len(users))
	for _, u := range users {
		records = append(records, []string{
			strconv.FormatInt(u.UserID, 10),
			deref(u.FirstName),
			deref(u.LastName),
			deref(u.Email),
			deref(u.Country),
			deref(u.SignupAt),
		})
	}
	return writeRows(path, userHeader, records)
}

// WriteTransactions writes transactions.csv with the canonical header.
func WriteTransactions(path string, txns []domain.Transaction) error {
	records := make([][]string, 0, len(txns))
	for _, t := range txns {
		records = append(records, []string{
			deref(t.TransactionID),
			formatInt(t.SenderUserID),
			formatInt(t.ReceiverUserID),
			formatFloat(t.Amount),
			deref(t.Currency),
			deref(t.Status),
			deref(t.CreatedAt),
		})
	}
	return writeRows(path, txnHeader, records)
}

// WriteAppEvents writes app_events.csv with the canonical header.
func WriteAppEvents(path string, events []domain.AppEvent) error {
	records := make([][]string, 0, len(events))
	for _, e := range events {
		records = append(records, []string{
			e.EventID,
			formatInt(e.UserID),
			deref(e.EventType),
			deref(e.EventTS),
			deref(e.SessionID),
			deref(e.Page),
			deref(e.ButtonID),
			deref(e.Device),
			deref(e.OS),
			deref(e.IP),
		})
	}
	return writeRows(path, eventHeader, records)
}

func readRows(path string, wantFields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) != wantFields {
		return nil, fmt.Errorf("header has %d fields, want %d", len(header), wantFields)
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func writeRows(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %q: %w", path, err)
	}
	return nil
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optInt(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func requiredInt(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("value is required")
	}
	return strconv.ParseInt(s, 10, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
