package domain

import (
	"math"
	"time"
)

// PlanStatus describes where a multi-week plan sits relative to a point in time.
type PlanStatus string

const (
	PlanUpcoming  PlanStatus = "upcoming"
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
)

// CurrentWeekNumber computes which schedule week "now" falls into:
// ceil(diffDays/7) over the absolute day difference from the start date.
//
// Two deliberate quirks are preserved from the original behavior:
//   - at now == startDate the difference is zero, so the result is week 0,
//     which matches no schedule entry (week numbers start at 1);
//   - the absolute difference means a start date in the future still yields a
//     positive week number rather than signaling "not yet started".
func CurrentWeekNumber(startDate, now time.Time) int {
	diff := now.Sub(startDate)
	if diff < 0 {
		diff = -diff
	}
	diffDays := int(math.Ceil(diff.Hours() / 24))
	return int(math.Ceil(float64(diffDays) / 7))
}

// StatusAt derives the plan status as a step function of now:
// upcoming before the start date, completed after startDate + weeks*7 days,
// active in between.
func StatusAt(startDate time.Time, weeks int, now time.Time) PlanStatus {
	if now.Before(startDate) {
		return PlanUpcoming
	}
	if now.After(startDate.AddDate(0, 0, weeks*7)) {
		return PlanCompleted
	}
	return PlanActive
}
