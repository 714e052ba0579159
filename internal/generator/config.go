package generator

import (
	"fmt"
	"time"
)

// Config controls dataset size, the target month and the anomaly injection
// rates. Generation is deterministic for a given Seed.
type Config struct {
	Month string // target month, "YYYY-MM"
	Seed  int64

	Users        int
	Transactions int
	Events       int

	// User anomalies.
	NullEmailRate  float64
	NullSignupRate float64

	// Transaction anomalies.
	BeforeSignupRate float64
	DuplicateIDRate  float64
	NullAmountRate   float64

	// App event anomalies.
	OrphanUserRate    float64
	NullEventTypeRate float64
	OutOfWindowRate   float64
}

// DefaultConfig mirrors the rates observed in production-like incident data:
// each anomaly class is rare but guaranteed present.
func DefaultConfig() Config {
	return Config{
		Month:             "2026-01",
		Seed:              42,
		Users:             1000,
		Transactions:      5000,
		Events:            10000,
		NullEmailRate:     0.01,
		NullSignupRate:    0.01,
		BeforeSignupRate:  0.02,
		DuplicateIDRate:   0.01,
		NullAmountRate:    0.01,
		OrphanUserRate:    0.01,
		NullEventTypeRate: 0.005,
		OutOfWindowRate:   0.01,
	}
}

// monthBounds parses "YYYY-MM" into the half-open month interval.
func monthBounds(month string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01", month, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("monthBounds: invalid month %q: %w", month, err)
	}
	return start, start.AddDate(0, 1, 0), nil
}
