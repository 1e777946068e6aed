// Package stats derives learner statistics from review logs and states.
//
// Every calendar-day computation takes an explicit *time.Location; a nil
// location means UTC.
package stats

import (
	"math"
	"time"

	"github.com/vytor/wordflow/internal/models"
)

const (
	DefaultLeechThreshold       = 8
	DefaultLearnedEasyThreshold = 3
	AverageWindowDays           = 7
)

// Rules holds the thresholds used to classify items.
type Rules struct {
	LeechThreshold       int
	LearnedEasyThreshold int
}

// DefaultRules returns the standard thresholds.
func DefaultRules() Rules {
	return Rules{
		LeechThreshold:       DefaultLeechThreshold,
		LearnedEasyThreshold: DefaultLearnedEasyThreshold,
	}
}

// Count tallies the ratings of entries.
func Count(entries []models.ReviewLogEntry) models.Tally {
	var t models.Tally
	for _, e := range entries {
		t.Add(e.Rating)
	}
	return t
}

// Accuracy returns the integer percentage of good and easy ratings.
// It is 0 for an empty tally.
func Accuracy(t models.Tally) int {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(t.Correct()) / float64(total) * 100))
}

// LogAccuracy is Accuracy over log entries.
func LogAccuracy(entries []models.ReviewLogEntry) int {
	return Accuracy(Count(entries))
}

// IsLeech reports whether a state has lapsed at least threshold times.
func IsLeech(s models.ReviewState, threshold int) bool {
	return s.LapseCount >= threshold
}

// CountLeeches returns the number of leech states.
func CountLeeches(states []models.ReviewState, threshold int) int {
	n := 0
	for _, s := range states {
		if IsLeech(s, threshold) {
			n++
		}
	}
	return n
}

// LearnedItems returns the IDs of items rated easy at least threshold
// times. When scope is non-nil only items it accepts are counted.
func LearnedItems(entries []models.ReviewLogEntry, threshold int, scope func(itemID string) bool) []string {
	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		if e.Rating != models.Easy {
			continue
		}
		if scope != nil && !scope(e.ItemID) {
			continue
		}
		if counts[e.ItemID] == 0 {
			order = append(order, e.ItemID)
		}
		counts[e.ItemID]++
	}
	var learned []string
	for _, id := range order {
		if counts[id] >= threshold {
			learned = append(learned, id)
		}
	}
	return learned
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayBounds returns the half-open range [start, end) of t's calendar day in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(t, loc)
	y, m, d := start.Date()
	return start, time.Date(y, m, d+1, 0, 0, 0, 0, start.Location())
}

// DaysBetween returns the number of calendar days from a to b in loc.
// It is negative when b falls on an earlier day than a.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// AdvanceStreak applies a review event at `at` to the learner's stats.
//
// The streak grows by one when the event falls on the day after the last
// event, resets to 1 after a longer gap and is unchanged for another event
// on the same day. Events on a day before the last recorded one leave the
// streak and last review time untouched. TotalReviews always grows.
func AdvanceStreak(prev models.LearnerStats, at time.Time, loc *time.Location) models.LearnerStats {
	next := prev
	next.TotalReviews++

	if prev.LastReviewAt.IsZero() || prev.DailyStreak == 0 {
		next.DailyStreak = 1
		next.LastReviewAt = at
	} else {
		switch days := DaysBetween(prev.LastReviewAt, at, loc); {
		case days < 0:
			return next
		case days == 0:
		case days == 1:
			next.DailyStreak++
		default:
			next.DailyStreak = 1
		}
		if at.After(prev.LastReviewAt) {
			next.LastReviewAt = at
		}
	}

	if next.DailyStreak > next.LongestStreak {
		next.LongestStreak = next.DailyStreak
	}
	return next
}

// AveragePerDay returns the rounded mean number of reviews per day over
// the days-long window ending at now.
func AveragePerDay(entries []models.ReviewLogEntry, now time.Time, days int) int {
	if days <= 0 {
		return 0
	}
	from := now.Add(-time.Duration(days) * 24 * time.Hour)
	n := 0
	for _, e := range entries {
		if !e.RatedAt.Before(from) && !e.RatedAt.After(now) {
			n++
		}
	}
	return int(math.Round(float64(n) / float64(days)))
}
