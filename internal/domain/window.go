package domain

import (
	"fmt"
	"time"
)

// AnalysisWindow is the half-open calendar-month interval [Start, End)
// inferred from raw transaction timestamps. It is a per-run value object:
// recomputed fresh from raw (not clean) transactions and never persisted on
// its own.
type AnalysisWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window. The interval is
// half-open: Start is included, End is excluded.
func (w AnalysisWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w AnalysisWindow) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}
