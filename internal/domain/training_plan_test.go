package domain

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestPlan() *TrainingPlan {
	now := time.Now().UTC()
	athleteID := primitive.NewObjectID()
	completedAt := now.Add(-time.Hour)
	return &TrainingPlan{
		ID:        primitive.NewObjectID(),
		CoachID:   primitive.NewObjectID(),
		AthleteID: &athleteID,
		Name:      "Strength Block",
		Weeks:     3,
		StartDate: date(2024, time.March, 20),
		WorkoutSchedule: []WeekSchedule{
			{WeekNumber: 1, Workouts: []ScheduledWorkout{
				{WorkoutID: primitive.NewObjectID(), DayOfWeek: 1, Completed: true, CompletedAt: &completedAt},
				{WorkoutID: primitive.NewObjectID(), DayOfWeek: 3},
			}},
			{WeekNumber: 3, Workouts: []ScheduledWorkout{
				{WorkoutID: primitive.NewObjectID(), DayOfWeek: 5},
			}},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTrainingPlanCounters(t *testing.T) {
	plan := newTestPlan()

	if got := plan.TotalWorkouts(); got != 3 {
		t.Errorf("TotalWorkouts() = %d, want 3", got)
	}
	if got := plan.CompletedWorkouts(); got != 1 {
		t.Errorf("CompletedWorkouts() = %d, want 1", got)
	}
	if got := plan.Progress(); got != 1.0/3.0 {
		t.Errorf("Progress() = %v, want %v", got, 1.0/3.0)
	}

	empty := &TrainingPlan{}
	if got := empty.Progress(); got != 0 {
		t.Errorf("Progress() on empty plan = %v, want 0", got)
	}
}

func TestTrainingPlanCurrentWeek(t *testing.T) {
	plan := newTestPlan()

	// Day 16 of the plan falls in week 3, which has a schedule entry.
	week := plan.CurrentWeek(plan.StartDate.AddDate(0, 0, 16))
	if week == nil {
		t.Fatal("CurrentWeek() = nil, want week 3")
	}
	if week.WeekNumber != 3 {
		t.Errorf("CurrentWeek().WeekNumber = %d, want 3", week.WeekNumber)
	}

	// Day 10 computes week 2, which has no entry: plans may skip weeks.
	if week := plan.CurrentWeek(plan.StartDate.AddDate(0, 0, 10)); week != nil {
		t.Errorf("CurrentWeek() for gap week = %+v, want nil", week)
	}

	// At the start instant the computed week is 0, matching nothing.
	if week := plan.CurrentWeek(plan.StartDate); week != nil {
		t.Errorf("CurrentWeek() at start date = %+v, want nil", week)
	}
}

func TestTrainingPlanCopyForDuplicate(t *testing.T) {
	plan := newTestPlan()
	dup := plan.CopyForDuplicate()

	if dup.ID != primitive.NilObjectID {
		t.Errorf("dup.ID = %v, want nil ObjectID", dup.ID)
	}
	if dup.Name != "Strength Block (Copy)" {
		t.Errorf("dup.Name = %q, want %q", dup.Name, "Strength Block (Copy)")
	}
	if dup.AthleteID != nil {
		t.Errorf("dup.AthleteID = %v, want nil", dup.AthleteID)
	}
	if dup.CoachID != plan.CoachID {
		t.Errorf("dup.CoachID = %v, want %v", dup.CoachID, plan.CoachID)
	}

	if len(dup.WorkoutSchedule) != len(plan.WorkoutSchedule) {
		t.Fatalf("dup has %d weeks, want %d", len(dup.WorkoutSchedule), len(plan.WorkoutSchedule))
	}
	for i, week := range dup.WorkoutSchedule {
		if week.WeekNumber != plan.WorkoutSchedule[i].WeekNumber {
			t.Errorf("week %d number = %d, want %d", i, week.WeekNumber, plan.WorkoutSchedule[i].WeekNumber)
		}
		for j, w := range week.Workouts {
			orig := plan.WorkoutSchedule[i].Workouts[j]
			if w.WorkoutID != orig.WorkoutID {
				t.Errorf("week %d workout %d ID changed", i, j)
			}
			if w.DayOfWeek != orig.DayOfWeek {
				t.Errorf("week %d workout %d day changed", i, j)
			}
			if w.Completed || w.CompletedAt != nil {
				t.Errorf("week %d workout %d completion not reset", i, j)
			}
		}
	}

	// The copy must not alias the original's schedule.
	dup.WorkoutSchedule[0].Workouts[0].DayOfWeek = 6
	if plan.WorkoutSchedule[0].Workouts[0].DayOfWeek == 6 {
		t.Error("duplicate shares schedule storage with the original")
	}
}

func TestValidateSchedule(t *testing.T) {
	workoutA := primitive.NewObjectID()
	workoutB := primitive.NewObjectID()

	tests := []struct {
		name     string
		schedule []WeekSchedule
		wantErr  error
	}{
		{
			name:     "empty schedule",
			schedule: nil,
			wantErr:  nil,
		},
		{
			name: "valid two weeks",
			schedule: []WeekSchedule{
				{WeekNumber: 1, Workouts: []ScheduledWorkout{{WorkoutID: workoutA, DayOfWeek: 0}}},
				{WeekNumber: 2, Workouts: []ScheduledWorkout{{WorkoutID: workoutA, DayOfWeek: 6}}},
			},
			wantErr: nil,
		},
		{
			name:     "week zero",
			schedule: []WeekSchedule{{WeekNumber: 0}},
			wantErr:  ErrInvalidWeekNumber,
		},
		{
			name: "day of week out of range",
			schedule: []WeekSchedule{
				{WeekNumber: 1, Workouts: []ScheduledWorkout{{WorkoutID: workoutA, DayOfWeek: 7}}},
			},
			wantErr: ErrInvalidDayOfWeek,
		},
		{
			name: "same workout twice in one week",
			schedule: []WeekSchedule{
				{WeekNumber: 1, Workouts: []ScheduledWorkout{
					{WorkoutID: workoutA, DayOfWeek: 1},
					{WorkoutID: workoutB, DayOfWeek: 2},
					{WorkoutID: workoutA, DayOfWeek: 4},
				}},
			},
			wantErr: ErrDuplicateScheduledWorkout,
		},
		{
			name: "same workout in different weeks is fine",
			schedule: []WeekSchedule{
				{WeekNumber: 1, Workouts: []ScheduledWorkout{{WorkoutID: workoutA, DayOfWeek: 1}}},
				{WeekNumber: 2, Workouts: []ScheduledWorkout{{WorkoutID: workoutA, DayOfWeek: 1}}},
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(tt.schedule)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSchedule() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
