package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"florist-service/internal/models"
)

// Timeframe names accepted by WindowFor.
const (
	TimeframeToday = "today"
	TimeframeWeek  = "week"
	TimeframeMonth = "month"
)

// Window is a half-open completion interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WindowFor resolves a timeframe name against "now" in the operating
// timezone. Weeks run Monday 00:00 through the following Monday 00:00
// exclusive. The timezone is configuration; it is never derived here.
func WindowFor(timeframe string, now time.Time, loc *time.Location) (Window, error) {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	switch timeframe {
	case TimeframeToday:
		return Window{Start: midnight, End: midnight.AddDate(0, 0, 1)}, nil
	case TimeframeWeek:
		// time.Weekday counts Sunday as 0; shift so Monday is day 0.
		daysSinceMonday := (int(midnight.Weekday()) + 6) % 7
		start := midnight.AddDate(0, 0, -daysSinceMonday)
		return Window{Start: start, End: start.AddDate(0, 0, 7)}, nil
	case TimeframeMonth:
		start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(0, 1, 0)}, nil
	}
	return Window{}, fmt.Errorf("unknown timeframe %q: %w", timeframe, models.ErrInvalidArgument)
}

// ComputeStats aggregates completed orders into per-florist throughput and
// latency. Pure function over the snapshot it is handed: safe to call
// concurrently, no store access. Florists with no completions in the window
// are reported with a zero count and a nil average.
//
// The mean is expressed in whole minutes, rounded half to even so repeated
// runs over the same data reproduce the same figures.
func ComputeStats(orders []models.Order, florists []models.User, w Window, storeFilter []string) []models.FloristStats {
	type bucket struct {
		count int
		total time.Duration
	}
	buckets := make(map[string]*bucket)

	for _, o := range orders {
		if o.Status != models.OrderStatusCompleted || o.CompletedAt == nil || o.AssignedAt == nil || o.AssignedFloristID == nil {
			continue
		}
		if !w.Contains(*o.CompletedAt) {
			continue
		}
		if len(storeFilter) > 0 && !inSet(storeFilter, o.StoreID) {
			continue
		}
		b := buckets[*o.AssignedFloristID]
		if b == nil {
			b = &bucket{}
			buckets[*o.AssignedFloristID] = b
		}
		b.count++
		b.total += o.CompletedAt.Sub(*o.AssignedAt)
	}

	stats := make([]models.FloristStats, 0, len(florists))
	for _, f := range florists {
		if f.Role != models.RoleFlorist {
			continue
		}
		s := models.FloristStats{FloristID: f.ID, FloristName: f.Name}
		if b := buckets[f.ID]; b != nil && b.count > 0 {
			s.CompletedCount = b.count
			avg := int64(math.RoundToEven(b.total.Minutes() / float64(b.count)))
			s.AverageCompletionMinutes = &avg
		}
		stats = append(stats, s)
	}

	// Busiest florists first; name breaks ties so the sequence is stable.
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].CompletedCount != stats[j].CompletedCount {
			return stats[i].CompletedCount > stats[j].CompletedCount
		}
		return stats[i].FloristName < stats[j].FloristName
	})
	return stats
}

func inSet(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
