package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduledWorkout is one (week, day) slot of a training plan, referencing a
// workout from the catalog plus its completion state.
type ScheduledWorkout struct {
	WorkoutID   primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	DayOfWeek   int                `bson:"dayOfWeek" json:"dayOfWeek"` // 0 = Sunday .. 6 = Saturday
	Completed   bool               `bson:"completed" json:"completed"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// WeekSchedule groups the scheduled workouts of one plan week.
// Within a week each workout may appear at most once; the editing workflow
// rejects duplicates, the storage layer does not.
type WeekSchedule struct {
	WeekNumber int                `bson:"weekNumber" json:"weekNumber"` // >= 1
	Workouts   []ScheduledWorkout `bson:"workouts" json:"workouts"`
}

// TrainingPlan is a multi-week workout program owned by one coach and assigned
// to at most one athlete. AthleteID is nil while unassigned.
type TrainingPlan struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CoachID         primitive.ObjectID  `bson:"coachId" json:"coachId"`
	AthleteID       *primitive.ObjectID `bson:"athleteId,omitempty" json:"athleteId,omitempty"`
	Name            string              `bson:"name" json:"name"`
	Description     string              `bson:"description,omitempty" json:"description,omitempty"`
	Weeks           int                 `bson:"weeks" json:"weeks"` // >= 1
	StartDate       time.Time           `bson:"startDate" json:"startDate"`
	WorkoutSchedule []WeekSchedule      `bson:"-" json:"workoutSchedule"` // Stored in its own collection
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// CurrentWeek returns the schedule entry for the computed current week number,
// or nil when no entry carries that number.
func (p *TrainingPlan) CurrentWeek(now time.Time) *WeekSchedule {
	want := CurrentWeekNumber(p.StartDate, now)
	for i := range p.WorkoutSchedule {
		if p.WorkoutSchedule[i].WeekNumber == want {
			return &p.WorkoutSchedule[i]
		}
	}
	return nil
}

// Status derives upcoming/active/completed from the plan window.
func (p *TrainingPlan) Status(now time.Time) PlanStatus {
	return StatusAt(p.StartDate, p.Weeks, now)
}

// TotalWorkouts counts scheduled workouts across all weeks.
func (p *TrainingPlan) TotalWorkouts() int {
	total := 0
	for _, week := range p.WorkoutSchedule {
		total += len(week.Workouts)
	}
	return total
}

// CompletedWorkouts counts scheduled workouts marked complete.
func (p *TrainingPlan) CompletedWorkouts() int {
	done := 0
	for _, week := range p.WorkoutSchedule {
		for _, w := range week.Workouts {
			if w.Completed {
				done++
			}
		}
	}
	return done
}

// Progress is the completed fraction, for display only. Completion can be
// un-toggled, so this is not monotonic.
func (p *TrainingPlan) Progress() float64 {
	total := p.TotalWorkouts()
	if total == 0 {
		return 0
	}
	return float64(p.CompletedWorkouts()) / float64(total)
}

// CopyForDuplicate deep-copies the plan for duplication: no ID yet, " (Copy)"
// name suffix, athlete assignment stripped, every completion flag and timestamp
// reset. Week and item ordering is preserved.
func (p *TrainingPlan) CopyForDuplicate() *TrainingPlan {
	dup := *p
	dup.ID = primitive.NilObjectID
	dup.Name = p.Name + " (Copy)"
	dup.AthleteID = nil
	dup.WorkoutSchedule = make([]WeekSchedule, len(p.WorkoutSchedule))
	for i, week := range p.WorkoutSchedule {
		workouts := make([]ScheduledWorkout, len(week.Workouts))
		for j, w := range week.Workouts {
			workouts[j] = ScheduledWorkout{
				WorkoutID: w.WorkoutID,
				DayOfWeek: w.DayOfWeek,
				Completed: false,
			}
		}
		dup.WorkoutSchedule[i] = WeekSchedule{WeekNumber: week.WeekNumber, Workouts: workouts}
	}
	return &dup
}

// ValidateSchedule checks the data-integrity rules enforced by the editing
// workflow: week numbers >= 1, day-of-week within 0..6, and no workout
// scheduled twice within the same week.
func ValidateSchedule(schedule []WeekSchedule) error {
	for _, week := range schedule {
		if week.WeekNumber < 1 {
			return ErrInvalidWeekNumber
		}
		seen := make(map[primitive.ObjectID]bool, len(week.Workouts))
		for _, w := range week.Workouts {
			if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
				return ErrInvalidDayOfWeek
			}
			if seen[w.WorkoutID] {
				return ErrDuplicateScheduledWorkout
			}
			seen[w.WorkoutID] = true
		}
	}
	return nil
}
