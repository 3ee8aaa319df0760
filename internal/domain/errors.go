package domain

import "errors"

// Validation errors shared by the schedule editing workflows.
var (
	ErrInvalidWeekNumber         = errors.New("week number must be 1 or greater")
	ErrInvalidDayOfWeek          = errors.New("day of week must be between 0 (Sunday) and 6 (Saturday)")
	ErrDuplicateScheduledWorkout = errors.New("workout is already scheduled in this week")
	ErrInvalidMealType           = errors.New("meal type must be breakfast, lunch, dinner or snack")
)
