package service

import (
	"context"
	"errors"

	"coachapp/internal/domain"
	"coachapp/internal/repository"
	"coachapp/internal/retry"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound     = errors.New("workout not found")
	ErrWorkoutAccessDenied = errors.New("access denied to modify or delete this workout")
)

// ResolvedExercise is a workout entry joined against the exercise library,
// with the entry's overrides layered over the exercise's defaults.
type ResolvedExercise struct {
	Exercise        domain.Exercise
	Sets            *int
	Reps            *int
	Weight          *float64
	RestBetweenSets *int
	Duration        *int
}

// WorkoutDetail is a workout with its exercise references resolved. Entries
// whose exercise has been deleted are omitted.
type WorkoutDetail struct {
	Workout   domain.Workout
	Exercises []ResolvedExercise
}

type WorkoutService interface {
	CreateWorkout(ctx context.Context, workout *domain.Workout) (*domain.Workout, error)
	GetWorkoutByID(ctx context.Context, workoutID primitive.ObjectID) (*domain.Workout, error)
	// GetWorkoutDetail joins each entry against the exercise library and
	// silently skips dangling references.
	GetWorkoutDetail(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetail, error)
	GetMyWorkouts(ctx context.Context, creatorID primitive.ObjectID) ([]domain.Workout, error)
	ListWorkouts(ctx context.Context) ([]domain.Workout, error)
	UpdateWorkout(ctx context.Context, actorID primitive.ObjectID, workout *domain.Workout) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, actorID, workoutID primitive.ObjectID) error
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	workoutRepo  repository.WorkoutRepository
	exerciseRepo repository.ExerciseRepository
	retryCfg     retry.Config
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, exerciseRepo repository.ExerciseRepository) WorkoutService {
	return &workoutService{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		retryCfg:     retry.DefaultConfig(),
	}
}

func validateWorkout(w *domain.Workout) error {
	if w.Name == "" {
		return ErrValidationFailed
	}
	switch w.Type {
	case domain.WorkoutStrength, domain.WorkoutCardio, domain.WorkoutHybrid, domain.WorkoutRecovery:
	default:
		return ErrValidationFailed
	}
	switch w.Difficulty {
	case domain.DifficultyBeginner, domain.DifficultyIntermediate, domain.DifficultyAdvanced:
	default:
		return ErrValidationFailed
	}
	return nil
}

// CreateWorkout handles the creation of a new catalog workout. Exercise
// references are not verified at write time; a stale reference is tolerated
// and skipped when the workout is rendered.
func (s *workoutService) CreateWorkout(ctx context.Context, workout *domain.Workout) (*domain.Workout, error) {
	if err := validateWorkout(workout); err != nil {
		return nil, err
	}
	if workout.CreatorID == primitive.NilObjectID {
		return nil, errors.New("creator ID is required to create a workout")
	}

	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	return s.workoutRepo.GetByID(ctx, workoutID)
}

// GetWorkoutByID retrieves a single workout without resolving references.
func (s *workoutService) GetWorkoutByID(ctx context.Context, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// GetWorkoutDetail resolves each workout entry against the exercise library
// via an indexed lookup. Entries whose exercise no longer exists are skipped,
// preserving the order of the rest.
func (s *workoutService) GetWorkoutDetail(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetail, error) {
	workout, err := s.GetWorkoutByID(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(workout.Exercises))
	for i, entry := range workout.Exercises {
		ids[i] = entry.ExerciseID
	}
	byID, err := s.exerciseRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	detail := &WorkoutDetail{Workout: *workout}
	for _, entry := range workout.Exercises {
		exercise, ok := byID[entry.ExerciseID]
		if !ok {
			// Dangling reference: the exercise was deleted after scheduling.
			continue
		}
		resolved := ResolvedExercise{
			Exercise:        exercise,
			Sets:            coalesceInt(entry.Sets, exercise.DefaultSets),
			Reps:            coalesceInt(entry.Reps, exercise.DefaultReps),
			Weight:          coalesceFloat(entry.Weight, exercise.DefaultWeight),
			RestBetweenSets: coalesceInt(entry.RestBetweenSets, exercise.RestBetweenSets),
			Duration:        entry.Duration,
		}
		detail.Exercises = append(detail.Exercises, resolved)
	}
	return detail, nil
}

func coalesceInt(override, fallback *int) *int {
	if override != nil {
		return override
	}
	return fallback
}

func coalesceFloat(override, fallback *float64) *float64 {
	if override != nil {
		return override
	}
	return fallback
}

// GetMyWorkouts retrieves all workouts created by a specific user.
func (s *workoutService) GetMyWorkouts(ctx context.Context, creatorID primitive.ObjectID) ([]domain.Workout, error) {
	if creatorID == primitive.NilObjectID {
		return nil, errors.New("creator ID cannot be nil")
	}
	return retry.Do(ctx, s.retryCfg, func(ctx context.Context) ([]domain.Workout, error) {
		return s.workoutRepo.GetByCreatorID(ctx, creatorID)
	})
}

// ListWorkouts retrieves the whole catalog, for schedule rendering.
func (s *workoutService) ListWorkouts(ctx context.Context) ([]domain.Workout, error) {
	return retry.Do(ctx, s.retryCfg, func(ctx context.Context) ([]domain.Workout, error) {
		return s.workoutRepo.List(ctx)
	})
}

// UpdateWorkout handles updating an existing workout, ensuring ownership.
func (s *workoutService) UpdateWorkout(ctx context.Context, actorID primitive.ObjectID, workout *domain.Workout) (*domain.Workout, error) {
	if err := validateWorkout(workout); err != nil {
		return nil, err
	}

	existing, err := s.workoutRepo.GetByID(ctx, workout.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if existing.CreatorID != actorID {
		return nil, ErrWorkoutAccessDenied
	}

	workout.CreatorID = existing.CreatorID
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return s.workoutRepo.GetByID(ctx, workout.ID)
}

// DeleteWorkout handles deleting a workout, ensuring ownership. Training plan
// schedules that reference the workout keep their rows; the dangling reference
// is tolerated at read time.
func (s *workoutService) DeleteWorkout(ctx context.Context, actorID, workoutID primitive.ObjectID) error {
	err := s.workoutRepo.Delete(ctx, workoutID, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return nil
}
