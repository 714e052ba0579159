// Package metrics computes business aggregates over the cleaned datasets.
// Everything here is a pure function; callers fetch the clean sets from the
// warehouse (or straight from the cleaner) and pass them in.
package metrics

import (
	"sort"
	"time"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

// Summary bundles the standard aggregates for one analysis window.
type Summary struct {
	VolumeByCurrency map[string]float64 `json:"volume_by_currency"`
	ActiveUsers      int                `json:"active_users"`
	DailyVolume      []DayVolume        `json:"daily_volume"`
	EventsByType     map[string]int     `json:"events_by_type"`
}

// DayVolume is the completed-transaction volume for one calendar day.
type DayVolume struct {
	Day    string  `json:"day"` // YYYY-MM-DD
	Volume float64 `json:"volume"`
	Count  int     `json:"count"`
}

// UserAverage is the average amount a user sent across their transactions.
type UserAverage struct {
	UserID  int64   `json:"user_id"`
	Sent    int     `json:"sent"`
	Average float64 `json:"average"`
}

const completedStatus = "completed"

func isCompleted(t domain.CleanTransaction) bool {
	return t.Status != nil && *t.Status == completedStatus
}

// VolumeByCurrency sums completed transaction amounts per currency.
// Transactions without a currency are grouped under the empty key.
func VolumeByCurrency(txns []domain.CleanTransaction) map[string]float64 {
	volumes := make(map[string]float64)
	for _, t := range txns {
		if !isCompleted(t) {
			continue
		}
		currency := ""
		if t.Currency != nil {
			currency = *t.Currency
		}
		volumes[currency] += t.Amount
	}
	return volumes
}

// ActiveUsers counts distinct users that appear as sender or receiver.
func ActiveUsers(txns []domain.CleanTransaction) int {
	seen := make(map[int64]struct{})
	for _, t := range txns {
		seen[t.SenderUserID] = struct{}{}
		seen[t.ReceiverUserID] = struct{}{}
	}
	return len(seen)
}

// AverageSentPerUser computes, for each sender, the mean amount across all
// their transactions regardless of status. Results are ordered by user id.
func AverageSentPerUser(txns []domain.CleanTransaction) []UserAverage {
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	for _, t := range txns {
		sums[t.SenderUserID] += t.Amount
		counts[t.SenderUserID]++
	}

	averages := make([]UserAverage, 0, len(sums))
	for userID, sum := range sums {
		averages = append(averages, UserAverage{
			UserID:  userID,
			Sent:    counts[userID],
			Average: sum / float64(counts[userID]),
		})
	}
	sort.Slice(averages, func(i, j int) bool { return averages[i].UserID < averages[j].UserID })
	return averages
}

// DailyVolumes buckets completed transaction volume by UTC calendar day,
// ordered chronologically. Days without transactions are absent.
func DailyVolumes(txns []domain.CleanTransaction) []DayVolume {
	volumes := make(map[string]*DayVolume)
	for _, t := range txns {
		if !isCompleted(t) {
			continue
		}
		day := t.CreatedAt.UTC().Format(time.DateOnly)
		dv, ok := volumes[day]
		if !ok {
			dv = &DayVolume{Day: day}
			volumes[day] = dv
		}
		dv.Volume += t.Amount
		dv.Count++
	}

	days := make([]DayVolume, 0, len(volumes))
	for _, dv := range volumes {
		days = append(days, *dv)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })
	return days
}

// EventsByType counts clean app events per event type.
func EventsByType(events []domain.CleanAppEvent) map[string]int {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.EventType]++
	}
	return counts
}

// Summarize computes the full Summary over the clean sets.
func Summarize(txns []domain.CleanTransaction, events []domain.CleanAppEvent) Summary {
	return Summary{
		VolumeByCurrency: VolumeByCurrency(txns),
		ActiveUsers:      ActiveUsers(txns),
		DailyVolume:      DailyVolumes(txns),
		EventsByType:     EventsByType(events),
	}
}
