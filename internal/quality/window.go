package quality

import (
	"errors"
	"time"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

// ErrEmptyInput is returned by InferWindow when no raw transaction carries a
// usable created_at. The window is undefined in that case and neither the
// detector nor the cleaner may run.
var ErrEmptyInput = errors.New("quality: no transaction has a usable created_at")

// InferWindow derives the analysis window from raw transactions: the first
// day of the calendar month containing the earliest parseable created_at,
// spanning exactly one month as a half-open interval. Pure function of the
// raw timestamps; malformed values are skipped like NULLs.
func InferWindow(transactions []domain.Transaction) (domain.AnalysisWindow, error) {
	var earliest *time.Time
	for _, t := range transactions {
		ts := t.CreatedTime()
		if ts == nil {
			continue
		}
		if earliest == nil || ts.Before(*earliest) {
			earliest = ts
		}
	}
	if earliest == nil {
		return domain.AnalysisWindow{}, ErrEmptyInput
	}

	start := time.Date(earliest.Year(), earliest.Month(), 1, 0, 0, 0, 0, time.UTC)
	return domain.AnalysisWindow{
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}, nil
}
