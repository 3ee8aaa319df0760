package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"coachapp/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testCoach() *domain.User {
	return &domain.User{ID: primitive.NewObjectID(), Username: "coach", Role: domain.RoleCoach}
}

func testAthlete() *domain.User {
	return &domain.User{ID: primitive.NewObjectID(), Username: "athlete", Role: domain.RoleAthlete}
}

func sparsePlan(coachID primitive.ObjectID, athleteID *primitive.ObjectID) *domain.TrainingPlan {
	return &domain.TrainingPlan{
		CoachID:   coachID,
		AthleteID: athleteID,
		Name:      "Hypertrophy Block",
		Weeks:     8,
		StartDate: time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC),
		WorkoutSchedule: []domain.WeekSchedule{
			{WeekNumber: 1, Workouts: []domain.ScheduledWorkout{
				{WorkoutID: primitive.NewObjectID(), DayOfWeek: 1},
				{WorkoutID: primitive.NewObjectID(), DayOfWeek: 4},
			}},
			{WeekNumber: 3, Workouts: []domain.ScheduledWorkout{
				{WorkoutID: primitive.NewObjectID(), DayOfWeek: 2},
			}},
			{WeekNumber: 5, Workouts: []domain.ScheduledWorkout{
				{WorkoutID: primitive.NewObjectID(), DayOfWeek: 6},
			}},
		},
	}
}

// A plan scheduling only weeks 1, 3 and 5 of an 8 week program must come back
// with exactly those weeks, in ascending order, workouts in insertion order.
func TestCreatePlanSparseWeeksRoundTrip(t *testing.T) {
	svc := NewTrainingPlanService(newFakeTrainingPlanRepository())
	coach := testCoach()
	input := sparsePlan(coach.ID, nil)

	created, err := svc.CreatePlan(context.Background(), input)
	if err != nil {
		t.Fatalf("CreatePlan() error = %v", err)
	}

	if created.Weeks != 8 {
		t.Errorf("Weeks = %d, want 8", created.Weeks)
	}
	wantWeeks := []int{1, 3, 5}
	if len(created.WorkoutSchedule) != len(wantWeeks) {
		t.Fatalf("got %d weeks, want %d", len(created.WorkoutSchedule), len(wantWeeks))
	}
	for i, want := range wantWeeks {
		week := created.WorkoutSchedule[i]
		if week.WeekNumber != want {
			t.Errorf("week[%d].WeekNumber = %d, want %d", i, week.WeekNumber, want)
		}
		for j, w := range week.Workouts {
			orig := input.WorkoutSchedule[i].Workouts[j]
			if w.WorkoutID != orig.WorkoutID || w.DayOfWeek != orig.DayOfWeek {
				t.Errorf("week %d workout %d does not round-trip", want, j)
			}
			if w.Completed {
				t.Errorf("week %d workout %d created as completed", want, j)
			}
		}
	}
}

func TestCreatePlanValidation(t *testing.T) {
	svc := NewTrainingPlanService(newFakeTrainingPlanRepository())
	coach := testCoach()

	t.Run("zero weeks", func(t *testing.T) {
		plan := sparsePlan(coach.ID, nil)
		plan.Weeks = 0
		if _, err := svc.CreatePlan(context.Background(), plan); !errors.Is(err, ErrInvalidWeeks) {
			t.Errorf("CreatePlan() error = %v, want %v", err, ErrInvalidWeeks)
		}
	})

	t.Run("duplicate workout in week", func(t *testing.T) {
		plan := sparsePlan(coach.ID, nil)
		workoutID := primitive.NewObjectID()
		plan.WorkoutSchedule = []domain.WeekSchedule{
			{WeekNumber: 1, Workouts: []domain.ScheduledWorkout{
				{WorkoutID: workoutID, DayOfWeek: 1},
				{WorkoutID: workoutID, DayOfWeek: 3},
			}},
		}
		if _, err := svc.CreatePlan(context.Background(), plan); !errors.Is(err, domain.ErrDuplicateScheduledWorkout) {
			t.Errorf("CreatePlan() error = %v, want %v", err, domain.ErrDuplicateScheduledWorkout)
		}
	})

	t.Run("missing coach", func(t *testing.T) {
		plan := sparsePlan(primitive.NilObjectID, nil)
		if _, err := svc.CreatePlan(context.Background(), plan); !errors.Is(err, ErrNotACoach) {
			t.Errorf("CreatePlan() error = %v, want %v", err, ErrNotACoach)
		}
	})
}

func TestPlanVisibility(t *testing.T) {
	repo := newFakeTrainingPlanRepository()
	svc := NewTrainingPlanService(repo)
	ctx := context.Background()
	coach := testCoach()
	athlete := testAthlete()
	outsider := testAthlete()

	assigned, err := svc.CreatePlan(ctx, sparsePlan(coach.ID, &athlete.ID))
	if err != nil {
		t.Fatalf("CreatePlan() error = %v", err)
	}
	unassigned, err := svc.CreatePlan(ctx, sparsePlan(coach.ID, nil))
	if err != nil {
		t.Fatalf("CreatePlan() error = %v", err)
	}

	coachPlans, err := svc.ListPlans(ctx, coach)
	if err != nil {
		t.Fatalf("ListPlans(coach) error = %v", err)
	}
	if len(coachPlans) != 2 {
		t.Errorf("coach sees %d plans, want 2", len(coachPlans))
	}

	athletePlans, err := svc.ListPlans(ctx, athlete)
	if err != nil {
		t.Fatalf("ListPlans(athlete) error = %v", err)
	}
	if len(athletePlans) != 1 || athletePlans[0].ID != assigned.ID {
		t.Errorf("athlete sees %d plans, want only the assigned one", len(athletePlans))
	}

	// A plan the actor cannot see reads as not found, never as forbidden.
	if _, err := svc.GetPlan(ctx, outsider, unassigned.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("GetPlan(outsider) error = %v, want %v", err, ErrPlanNotFound)
	}
	if _, err := svc.GetPlan(ctx, athlete, assigned.ID); err != nil {
		t.Errorf("GetPlan(assigned athlete) error = %v", err)
	}
}

func TestSetWorkoutCompletion(t *testing.T) {
	repo := newFakeTrainingPlanRepository()
	svc := NewTrainingPlanService(repo)
	ctx := context.Background()
	coach := testCoach()
	athlete := testAthlete()

	plan, err := svc.CreatePlan(ctx, sparsePlan(coach.ID, &athlete.ID))
	if err != nil {
		t.Fatalf("CreatePlan() error = %v", err)
	}
	target := plan.WorkoutSchedule[1].Workouts[0] // week 3

	// The assigned athlete completes the workout.
	updated, err := svc.SetWorkoutCompletion(ctx, athlete, plan.ID, 3, target.WorkoutID, true)
	if err != nil {
		t.Fatalf("SetWorkoutCompletion() error = %v", err)
	}
	got := updated.WorkoutSchedule[1].Workouts[0]
	if !got.Completed {
		t.Error("workout not marked complete")
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt not stamped on completion")
	}

	// Un-toggling clears the timestamp again.
	updated, err = svc.SetWorkoutCompletion(ctx, coach, plan.ID, 3, target.WorkoutID, false)
	if err != nil {
		t.Fatalf("SetWorkoutCompletion(false) error = %v", err)
	}
	got = updated.WorkoutSchedule[1].Workouts[0]
	if got.Completed || got.CompletedAt != nil {
		t.Error("completion state not cleared")
	}

	// Other entries stay untouched throughout.
	for _, w := range updated.WorkoutSchedule[0].Workouts {
		if w.Completed {
			t.Error("unrelated workout toggled")
		}
	}

	// An unrelated user may not toggle anything.
	outsider := testAthlete()
	if _, err := svc.SetWorkoutCompletion(ctx, outsider, plan.ID, 3, target.WorkoutID, true); !errors.Is(err, ErrPlanAccessDenied) {
		t.Errorf("outsider toggle error = %v, want %v", err, ErrPlanAccessDenied)
	}

	// A (week, workout) pair with no schedule row is not found.
	if _, err := svc.SetWorkoutCompletion(ctx, coach, plan.ID, 2, target.WorkoutID, true); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("missing row error = %v, want %v", err, ErrPlanNotFound)
	}
}

func TestDuplicatePlan(t *testing.T) {
	repo := newFakeTrainingPlanRepository()
	svc := NewTrainingPlanService(repo)
	ctx := context.Background()
	coach := testCoach()
	athlete := testAthlete()

	original, err := svc.CreatePlan(ctx, sparsePlan(coach.ID, &athlete.ID))
	if err != nil {
		t.Fatalf("CreatePlan() error = %v", err)
	}
	target := original.WorkoutSchedule[0].Workouts[0]
	if _, err := svc.SetWorkoutCompletion(ctx, coach, original.ID, 1, target.WorkoutID, true); err != nil {
		t.Fatalf("SetWorkoutCompletion() error = %v", err)
	}

	dup, err := svc.DuplicatePlan(ctx, coach.ID, original.ID)
	if err != nil {
		t.Fatalf("DuplicatePlan() error = %v", err)
	}

	if dup.ID == original.ID {
		t.Error("duplicate reuses the original's ID")
	}
	if dup.Name != "Hypertrophy Block (Copy)" {
		t.Errorf("dup.Name = %q, want %q", dup.Name, "Hypertrophy Block (Copy)")
	}
	if dup.AthleteID != nil {
		t.Error("duplicate keeps the athlete assignment")
	}
	for _, week := range dup.WorkoutSchedule {
		for _, w := range week.Workouts {
			if w.Completed || w.CompletedAt != nil {
				t.Error("duplicate keeps completion state")
			}
		}
	}

	// The original keeps its completion state and assignment.
	reread, err := svc.GetPlan(ctx, coach, original.ID)
	if err != nil {
		t.Fatalf("GetPlan() error = %v", err)
	}
	if !reread.WorkoutSchedule[0].Workouts[0].Completed {
		t.Error("duplication mutated the original")
	}
	if reread.AthleteID == nil {
		t.Error("duplication unassigned the original")
	}

	// Only the owner may duplicate.
	other := testCoach()
	if _, err := svc.DuplicatePlan(ctx, other.ID, original.ID); !errors.Is(err, ErrPlanAccessDenied) {
		t.Errorf("DuplicatePlan(non-owner) error = %v, want %v", err, ErrPlanAccessDenied)
	}
}

func TestUpdatePlan(t *testing.T) {
	repo := newFakeTrainingPlanRepository()
	svc := NewTrainingPlanService(repo)
	ctx := context.Background()
	coach := testCoach()
	athlete := testAthlete()

	plan, err := svc.CreatePlan(ctx, sparsePlan(coach.ID, &athlete.ID))
	if err != nil {
		t.Fatalf("CreatePlan() error = %v", err)
	}

	newName := "Peaking Block"
	updated, err := svc.UpdatePlan(ctx, coach.ID, plan.ID, UpdateTrainingPlanInput{
		Name:            &newName,
		UnassignAthlete: true,
	})
	if err != nil {
		t.Fatalf("UpdatePlan() error = %v", err)
	}
	if updated.Name != newName {
		t.Errorf("Name = %q, want %q", updated.Name, newName)
	}
	if updated.AthleteID != nil {
		t.Error("athlete not unassigned")
	}
	if updated.Weeks != plan.Weeks {
		t.Error("untouched field changed")
	}
	if len(updated.WorkoutSchedule) != len(plan.WorkoutSchedule) {
		t.Error("schedule changed without ReplaceSchedule")
	}

	// Schedule replacement swaps the rows wholesale.
	replacement := []domain.WeekSchedule{
		{WeekNumber: 2, Workouts: []domain.ScheduledWorkout{{WorkoutID: primitive.NewObjectID(), DayOfWeek: 0}}},
	}
	updated, err = svc.UpdatePlan(ctx, coach.ID, plan.ID, UpdateTrainingPlanInput{
		Schedule:        replacement,
		ReplaceSchedule: true,
	})
	if err != nil {
		t.Fatalf("UpdatePlan(replace) error = %v", err)
	}
	if len(updated.WorkoutSchedule) != 1 || updated.WorkoutSchedule[0].WeekNumber != 2 {
		t.Errorf("schedule not replaced: %+v", updated.WorkoutSchedule)
	}

	// Only the owner may update.
	other := testCoach()
	if _, err := svc.UpdatePlan(ctx, other.ID, plan.ID, UpdateTrainingPlanInput{Name: &newName}); !errors.Is(err, ErrPlanAccessDenied) {
		t.Errorf("UpdatePlan(non-owner) error = %v, want %v", err, ErrPlanAccessDenied)
	}
}

func TestDeletePlan(t *testing.T) {
	repo := newFakeTrainingPlanRepository()
	svc := NewTrainingPlanService(repo)
	ctx := context.Background()
	coach := testCoach()

	plan, err := svc.CreatePlan(ctx, sparsePlan(coach.ID, nil))
	if err != nil {
		t.Fatalf("CreatePlan() error = %v", err)
	}

	other := testCoach()
	if err := svc.DeletePlan(ctx, other.ID, plan.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("DeletePlan(non-owner) error = %v, want %v", err, ErrPlanNotFound)
	}

	if err := svc.DeletePlan(ctx, coach.ID, plan.ID); err != nil {
		t.Fatalf("DeletePlan() error = %v", err)
	}
	if _, err := svc.GetPlan(ctx, coach, plan.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("GetPlan(deleted) error = %v, want %v", err, ErrPlanNotFound)
	}
	if len(repo.rows) != 0 {
		t.Errorf("%d schedule rows survive plan deletion, want 0", len(repo.rows))
	}
}

func TestGetAthleteActivePlan(t *testing.T) {
	repo := newFakeTrainingPlanRepository()
	svc := NewTrainingPlanService(repo)
	ctx := context.Background()
	coach := testCoach()
	athlete := testAthlete()

	if _, err := svc.GetAthleteActivePlan(ctx, athlete.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("no plans error = %v, want %v", err, ErrPlanNotFound)
	}

	first, err := svc.CreatePlan(ctx, sparsePlan(coach.ID, &athlete.ID))
	if err != nil {
		t.Fatalf("CreatePlan() error = %v", err)
	}
	second, err := svc.CreatePlan(ctx, sparsePlan(coach.ID, &athlete.ID))
	if err != nil {
		t.Fatalf("CreatePlan() error = %v", err)
	}

	active, err := svc.GetAthleteActivePlan(ctx, athlete.ID)
	if err != nil {
		t.Fatalf("GetAthleteActivePlan() error = %v", err)
	}
	if active.ID != second.ID {
		t.Errorf("active plan = %v, want the newest (%v, not %v)", active.ID, second.ID, first.ID)
	}
}
