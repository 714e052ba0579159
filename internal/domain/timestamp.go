package domain

import (
	"strings"
	"time"
)

// TimestampLayout is the canonical timestamp format used by the generator,
// the CSV files and the raw warehouse tables.
const TimestampLayout = "2006-01-02 15:04:05"

// ParseTimestamp parses a nullable timestamp string. It returns nil for
// absent, blank or malformed values: a malformed timestamp is treated exactly
// like NULL by every downstream rule, so a single bad row never aborts a run.
// RFC 3339 is accepted as a fallback for warehouse exports.
func ParseTimestamp(s *string) *time.Time {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	if t, err := time.ParseInLocation(TimestampLayout, v, time.UTC); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		t = t.UTC()
		return &t
	}
	return nil
}

// FormatTimestamp renders an instant in the canonical layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
