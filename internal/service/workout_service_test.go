package service

import (
	"context"
	"errors"
	"testing"

	"coachapp/internal/domain"
)

func TestCreateWorkoutValidation(t *testing.T) {
	svc := NewWorkoutService(newFakeWorkoutRepository(), newFakeExerciseRepository())
	coach := testCoach()

	tests := []struct {
		name   string
		mutate func(*domain.Workout)
	}{
		{"empty name", func(w *domain.Workout) { w.Name = "" }},
		{"unknown type", func(w *domain.Workout) { w.Type = "crossfit" }},
		{"unknown difficulty", func(w *domain.Workout) { w.Difficulty = "elite" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &domain.Workout{
				CreatorID:  coach.ID,
				Name:       "Push Day",
				Type:       domain.WorkoutStrength,
				Difficulty: domain.DifficultyBeginner,
			}
			tt.mutate(w)
			if _, err := svc.CreateWorkout(context.Background(), w); !errors.Is(err, ErrValidationFailed) {
				t.Errorf("CreateWorkout() error = %v, want %v", err, ErrValidationFailed)
			}
		})
	}
}

// The detail view joins entries against the library: overrides win over the
// exercise defaults, and entries whose exercise is gone vanish silently.
func TestGetWorkoutDetail(t *testing.T) {
	exerciseRepo := newFakeExerciseRepository()
	workoutRepo := newFakeWorkoutRepository()
	exerciseSvc := NewExerciseService(exerciseRepo, nil)
	svc := NewWorkoutService(workoutRepo, exerciseRepo)
	ctx := context.Background()
	coach := testCoach()

	defaultReps, defaultSets := 8, 5
	squat, err := exerciseSvc.CreateExercise(ctx, &domain.Exercise{
		CreatorID:   coach.ID,
		Name:        "Squat",
		Category:    domain.CategoryStrength,
		Difficulty:  domain.DifficultyIntermediate,
		DefaultReps: &defaultReps,
		DefaultSets: &defaultSets,
	})
	if err != nil {
		t.Fatalf("CreateExercise() error = %v", err)
	}
	deleted, err := exerciseSvc.CreateExercise(ctx, &domain.Exercise{
		CreatorID:  coach.ID,
		Name:       "Box Jump",
		Category:   domain.CategoryCardio,
		Difficulty: domain.DifficultyBeginner,
	})
	if err != nil {
		t.Fatalf("CreateExercise() error = %v", err)
	}

	overrideReps := 12
	workout, err := svc.CreateWorkout(ctx, &domain.Workout{
		CreatorID:  coach.ID,
		Name:       "Leg Day",
		Type:       domain.WorkoutStrength,
		Difficulty: domain.DifficultyIntermediate,
		Exercises: []domain.WorkoutExercise{
			{ExerciseID: squat.ID, Reps: &overrideReps},
			{ExerciseID: deleted.ID},
		},
	})
	if err != nil {
		t.Fatalf("CreateWorkout() error = %v", err)
	}

	// Remove the second exercise after it was referenced.
	if err := exerciseSvc.DeleteExercise(ctx, coach.ID, deleted.ID); err != nil {
		t.Fatalf("DeleteExercise() error = %v", err)
	}

	detail, err := svc.GetWorkoutDetail(ctx, workout.ID)
	if err != nil {
		t.Fatalf("GetWorkoutDetail() error = %v", err)
	}

	if len(detail.Exercises) != 1 {
		t.Fatalf("detail has %d exercises, want 1 (dangling entry skipped)", len(detail.Exercises))
	}
	resolved := detail.Exercises[0]
	if resolved.Exercise.ID != squat.ID {
		t.Errorf("resolved exercise = %v, want the squat", resolved.Exercise.ID)
	}
	if resolved.Reps == nil || *resolved.Reps != overrideReps {
		t.Errorf("Reps = %v, want the override %d", resolved.Reps, overrideReps)
	}
	if resolved.Sets == nil || *resolved.Sets != defaultSets {
		t.Errorf("Sets = %v, want the default %d", resolved.Sets, defaultSets)
	}

	// The stored workout still carries both references.
	stored, err := svc.GetWorkoutByID(ctx, workout.ID)
	if err != nil {
		t.Fatalf("GetWorkoutByID() error = %v", err)
	}
	if len(stored.Exercises) != 2 {
		t.Errorf("stored workout has %d entries, want 2", len(stored.Exercises))
	}
}

func TestWorkoutOwnership(t *testing.T) {
	svc := NewWorkoutService(newFakeWorkoutRepository(), newFakeExerciseRepository())
	ctx := context.Background()
	owner := testCoach()
	other := testCoach()

	created, err := svc.CreateWorkout(ctx, &domain.Workout{
		CreatorID:  owner.ID,
		Name:       "Pull Day",
		Type:       domain.WorkoutStrength,
		Difficulty: domain.DifficultyAdvanced,
	})
	if err != nil {
		t.Fatalf("CreateWorkout() error = %v", err)
	}

	update := *created
	update.Name = "Back Day"
	if _, err := svc.UpdateWorkout(ctx, other.ID, &update); !errors.Is(err, ErrWorkoutAccessDenied) {
		t.Errorf("UpdateWorkout(non-owner) error = %v, want %v", err, ErrWorkoutAccessDenied)
	}
	if err := svc.DeleteWorkout(ctx, other.ID, created.ID); !errors.Is(err, ErrWorkoutNotFound) {
		t.Errorf("DeleteWorkout(non-owner) error = %v, want %v", err, ErrWorkoutNotFound)
	}
	if err := svc.DeleteWorkout(ctx, owner.ID, created.ID); err != nil {
		t.Fatalf("DeleteWorkout(owner) error = %v", err)
	}
}
