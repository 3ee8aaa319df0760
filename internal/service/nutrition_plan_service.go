package service

import (
	"context"
	"errors"
	"time"

	"coachapp/internal/domain"
	"coachapp/internal/repository"
	"coachapp/internal/retry"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UpdateNutritionPlanInput carries a partial header update. Nil fields are
// left unchanged. Meal replacement is opt-in via ReplaceMeals.
type UpdateNutritionPlanInput struct {
	Name            *string
	Description     *string
	Weeks           *int
	StartDate       *time.Time
	AthleteID       *primitive.ObjectID
	UnassignAthlete bool
	Meals           []domain.MealWeek
	ReplaceMeals    bool
}

type NutritionPlanService interface {
	ListPlans(ctx context.Context, actor *domain.User) ([]domain.NutritionPlan, error)
	GetPlan(ctx context.Context, actor *domain.User, planID primitive.ObjectID) (*domain.NutritionPlan, error)
	CreatePlan(ctx context.Context, plan *domain.NutritionPlan) (*domain.NutritionPlan, error)
	UpdatePlan(ctx context.Context, coachID, planID primitive.ObjectID, input UpdateNutritionPlanInput) (*domain.NutritionPlan, error)
	DeletePlan(ctx context.Context, coachID, planID primitive.ObjectID) error
	DuplicatePlan(ctx context.Context, coachID, planID primitive.ObjectID) (*domain.NutritionPlan, error)
	SetMealCompletion(ctx context.Context, actor *domain.User, planID primitive.ObjectID, weekNumber int, mealID primitive.ObjectID, completed bool) (*domain.NutritionPlan, error)
	GetAthleteActivePlan(ctx context.Context, athleteID primitive.ObjectID) (*domain.NutritionPlan, error)
}

// nutritionPlanService implements the NutritionPlanService interface. It
// mirrors trainingPlanService; meals are plan-local content rather than
// references into a shared catalog.
type nutritionPlanService struct {
	planRepo repository.NutritionPlanRepository
	retryCfg retry.Config
}

// NewNutritionPlanService creates a new instance of nutritionPlanService.
func NewNutritionPlanService(planRepo repository.NutritionPlanRepository) NutritionPlanService {
	return &nutritionPlanService{
		planRepo: planRepo,
		retryCfg: retry.DefaultConfig(),
	}
}

// ListPlans returns the plans visible to the actor.
func (s *nutritionPlanService) ListPlans(ctx context.Context, actor *domain.User) ([]domain.NutritionPlan, error) {
	return retry.Do(ctx, s.retryCfg, func(ctx context.Context) ([]domain.NutritionPlan, error) {
		if actor.IsCoach() {
			return s.planRepo.GetByCoachID(ctx, actor.ID)
		}
		return s.planRepo.GetByAthleteID(ctx, actor.ID)
	})
}

// GetPlan fetches one plan under the same visibility rule as ListPlans.
func (s *nutritionPlanService) GetPlan(ctx context.Context, actor *domain.User, planID primitive.ObjectID) (*domain.NutritionPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if !planVisibleTo(actor, plan.CoachID, plan.AthleteID) {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// CreatePlan persists the plan header, then every meal row.
func (s *nutritionPlanService) CreatePlan(ctx context.Context, plan *domain.NutritionPlan) (*domain.NutritionPlan, error) {
	if plan.CoachID == primitive.NilObjectID {
		return nil, ErrNotACoach
	}
	if plan.Weeks < 1 {
		return nil, ErrInvalidWeeks
	}
	if err := domain.ValidateMealSchedule(plan.MealSchedule); err != nil {
		return nil, err
	}

	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	if err := s.planRepo.InsertMeals(ctx, planID, plan.MealSchedule); err != nil {
		return nil, err
	}
	return s.planRepo.GetByID(ctx, planID)
}

// UpdatePlan applies a partial header update and an optional meal schedule
// replacement, then returns the canonical plan state.
func (s *nutritionPlanService) UpdatePlan(ctx context.Context, coachID, planID primitive.ObjectID, input UpdateNutritionPlanInput) (*domain.NutritionPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.CoachID != coachID {
		return nil, ErrPlanAccessDenied
	}

	if input.Name != nil {
		plan.Name = *input.Name
	}
	if input.Description != nil {
		plan.Description = *input.Description
	}
	if input.Weeks != nil {
		if *input.Weeks < 1 {
			return nil, ErrInvalidWeeks
		}
		plan.Weeks = *input.Weeks
	}
	if input.StartDate != nil {
		plan.StartDate = *input.StartDate
	}
	if input.UnassignAthlete {
		plan.AthleteID = nil
	} else if input.AthleteID != nil {
		plan.AthleteID = input.AthleteID
	}

	if err := s.planRepo.UpdateHeader(ctx, plan); err != nil {
		return nil, err
	}

	if input.ReplaceMeals {
		if err := domain.ValidateMealSchedule(input.Meals); err != nil {
			return nil, err
		}
		if err := s.planRepo.ReplaceMeals(ctx, planID, input.Meals); err != nil {
			return nil, err
		}
	}

	return s.planRepo.GetByID(ctx, planID)
}

// DeletePlan removes a plan and its meal rows, ensuring ownership.
func (s *nutritionPlanService) DeletePlan(ctx context.Context, coachID, planID primitive.ObjectID) error {
	err := s.planRepo.Delete(ctx, planID, coachID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPlanNotFound
	}
	return err
}

// DuplicatePlan deep-copies a plan with fresh meal IDs, no athlete, and all
// completion state reset.
func (s *nutritionPlanService) DuplicatePlan(ctx context.Context, coachID, planID primitive.ObjectID) (*domain.NutritionPlan, error) {
	original, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if original.CoachID != coachID {
		return nil, ErrPlanAccessDenied
	}

	dup := original.CopyForDuplicate()
	return s.CreatePlan(ctx, dup)
}

// SetMealCompletion updates one meal's completion state and returns the
// canonical plan state.
func (s *nutritionPlanService) SetMealCompletion(ctx context.Context, actor *domain.User, planID primitive.ObjectID, weekNumber int, mealID primitive.ObjectID, completed bool) (*domain.NutritionPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if !planVisibleTo(actor, plan.CoachID, plan.AthleteID) {
		return nil, ErrPlanAccessDenied
	}

	var completedAt *time.Time
	if completed {
		now := time.Now().UTC()
		completedAt = &now
	}
	if err := s.planRepo.SetCompletion(ctx, planID, weekNumber, mealID, completed, completedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return s.planRepo.GetByID(ctx, planID)
}

// GetAthleteActivePlan returns the athlete's most recent assigned plan.
func (s *nutritionPlanService) GetAthleteActivePlan(ctx context.Context, athleteID primitive.ObjectID) (*domain.NutritionPlan, error) {
	plans, err := s.planRepo.GetByAthleteID(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, ErrPlanNotFound
	}
	return &plans[0], nil
}
