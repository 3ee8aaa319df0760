package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCurrentWeekNumber(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		now   time.Time
		want  int
	}{
		{
			// Zero difference yields week 0, which matches no schedule entry.
			name:  "now equals start date",
			start: date(2024, time.January, 1),
			now:   date(2024, time.January, 1),
			want:  0,
		},
		{
			name:  "one hour in is week 1",
			start: date(2024, time.January, 1),
			now:   date(2024, time.January, 1).Add(time.Hour),
			want:  1,
		},
		{
			name:  "day 7 is still week 1",
			start: date(2024, time.January, 1),
			now:   date(2024, time.January, 8),
			want:  1,
		},
		{
			name:  "day 8 rolls into week 2",
			start: date(2024, time.January, 1),
			now:   date(2024, time.January, 9),
			want:  2,
		},
		{
			name:  "mid third week",
			start: date(2024, time.March, 20),
			now:   date(2024, time.April, 5),
			want:  3,
		},
		{
			// The absolute difference makes a future start date positive too.
			name:  "start date in the future",
			start: date(2024, time.June, 1),
			now:   date(2024, time.May, 25),
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CurrentWeekNumber(tt.start, tt.now)
			if got != tt.want {
				t.Errorf("CurrentWeekNumber(%v, %v) = %d, want %d", tt.start, tt.now, got, tt.want)
			}
		})
	}
}

func TestStatusAt(t *testing.T) {
	start := date(2024, time.March, 20)
	weeks := 4
	end := start.AddDate(0, 0, weeks*7) // 2024-04-17

	tests := []struct {
		name string
		now  time.Time
		want PlanStatus
	}{
		{"day before start", start.AddDate(0, 0, -1), PlanUpcoming},
		{"instant before start", start.Add(-time.Second), PlanUpcoming},
		{"on start date", start, PlanActive},
		{"mid plan", start.AddDate(0, 0, 14), PlanActive},
		{"on end boundary", end, PlanActive},
		{"just past end", end.Add(time.Second), PlanCompleted},
		{"long after end", end.AddDate(0, 1, 0), PlanCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatusAt(start, weeks, tt.now)
			if got != tt.want {
				t.Errorf("StatusAt(%v, %d, %v) = %q, want %q", start, weeks, tt.now, got, tt.want)
			}
		})
	}
}

// A four week plan walked day by day must pass through every status exactly
// once, in order.
func TestStatusProgression(t *testing.T) {
	start := date(2024, time.March, 20)
	weeks := 4

	var seen []PlanStatus
	for d := -3; d <= weeks*7+3; d++ {
		status := StatusAt(start, weeks, start.AddDate(0, 0, d))
		if len(seen) == 0 || seen[len(seen)-1] != status {
			seen = append(seen, status)
		}
	}

	want := []PlanStatus{PlanUpcoming, PlanActive, PlanCompleted}
	if len(seen) != len(want) {
		t.Fatalf("status sequence = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("status sequence[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}
