package repository

import (
	"context"
	"time"

	"coachapp/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
	ErrDuplicateKey = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for profile data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// List returns every profile ordered by username, for the user directory.
	List(ctx context.Context) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// ExerciseRepository defines the interface for the exercise library.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByCreatorID(ctx context.Context, creatorID primitive.ObjectID) ([]domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	// Delete removes an exercise owned by creatorID. Workouts referencing it are
	// left untouched; the dangling reference is tolerated at read time.
	Delete(ctx context.Context, id, creatorID primitive.ObjectID) error
	AddAssignee(ctx context.Context, exerciseID, userID primitive.ObjectID) error
	RemoveAssignee(ctx context.Context, exerciseID, userID primitive.ObjectID) error
}

// WorkoutRepository defines the interface for the workout catalog.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Workout, error)
	GetByCreatorID(ctx context.Context, creatorID primitive.ObjectID) ([]domain.Workout, error)
	List(ctx context.Context) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id, creatorID primitive.ObjectID) error
}

// TrainingPlanRepository defines the interface for training plans and their
// workout schedule rows. The schedule lives in its own collection keyed by
// (plan, week, workout); reads reassemble it into ordered week groups.
type TrainingPlanRepository interface {
	// Create inserts the plan header only; InsertSchedule persists the rows.
	// The two steps are not atomic (see DESIGN.md).
	Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error)
	InsertSchedule(ctx context.Context, planID primitive.ObjectID, schedule []domain.WeekSchedule) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.TrainingPlan, error)
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.TrainingPlan, error)
	UpdateHeader(ctx context.Context, plan *domain.TrainingPlan) error
	ReplaceSchedule(ctx context.Context, planID primitive.ObjectID, schedule []domain.WeekSchedule) error
	// Delete removes schedule rows first, then the header (explicit cascade).
	Delete(ctx context.Context, planID, coachID primitive.ObjectID) error
	// SetCompletion updates exactly one schedule row.
	SetCompletion(ctx context.Context, planID primitive.ObjectID, weekNumber int, workoutID primitive.ObjectID, completed bool, completedAt *time.Time) error
}

// NutritionPlanRepository defines the interface for nutrition plans and their
// meal schedule rows. Meals are full content records with their own IDs.
type NutritionPlanRepository interface {
	Create(ctx context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error)
	InsertMeals(ctx context.Context, planID primitive.ObjectID, schedule []domain.MealWeek) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.NutritionPlan, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.NutritionPlan, error)
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.NutritionPlan, error)
	UpdateHeader(ctx context.Context, plan *domain.NutritionPlan) error
	ReplaceMeals(ctx context.Context, planID primitive.ObjectID, schedule []domain.MealWeek) error
	Delete(ctx context.Context, planID, coachID primitive.ObjectID) error
	SetCompletion(ctx context.Context, planID primitive.ObjectID, weekNumber int, mealID primitive.ObjectID, completed bool, completedAt *time.Time) error
}

// MessageRepository defines the interface for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (primitive.ObjectID, error)
	// GetByUserID returns every message the user sent or received, ordered by
	// creation time ascending.
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Message, error)
	// MarkAllRead flips read=true on all messages from senderID to viewerID.
	// Atomic and idempotent.
	MarkAllRead(ctx context.Context, viewerID, senderID primitive.ObjectID) error
	// CountUnread counts messages addressed to userID with read=false.
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
}
