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

// --- Error Definitions ---
var (
	ErrPlanNotFound     = errors.New("plan not found")
	ErrPlanAccessDenied = errors.New("access denied to modify this plan")
	ErrNotACoach        = errors.New("only coaches can manage plans")
	ErrInvalidWeeks     = errors.New("plan must span at least one week")
)

// UpdateTrainingPlanInput carries a partial header update. Nil fields are left
// unchanged. Schedule replacement is opt-in via ReplaceSchedule.
type UpdateTrainingPlanInput struct {
	Name            *string
	Description     *string
	Weeks           *int
	StartDate       *time.Time
	AthleteID       *primitive.ObjectID
	UnassignAthlete bool
	Schedule        []domain.WeekSchedule
	ReplaceSchedule bool
}

type TrainingPlanService interface {
	// ListPlans applies the sole access-control rule of the system: coaches see
	// plans they own, athletes see plans assigned to them.
	ListPlans(ctx context.Context, actor *domain.User) ([]domain.TrainingPlan, error)
	GetPlan(ctx context.Context, actor *domain.User, planID primitive.ObjectID) (*domain.TrainingPlan, error)
	CreatePlan(ctx context.Context, plan *domain.TrainingPlan) (*domain.TrainingPlan, error)
	UpdatePlan(ctx context.Context, coachID, planID primitive.ObjectID, input UpdateTrainingPlanInput) (*domain.TrainingPlan, error)
	DeletePlan(ctx context.Context, coachID, planID primitive.ObjectID) error
	DuplicatePlan(ctx context.Context, coachID, planID primitive.ObjectID) (*domain.TrainingPlan, error)
	// SetWorkoutCompletion toggles exactly one scheduled workout and returns
	// the canonical plan state after the write.
	SetWorkoutCompletion(ctx context.Context, actor *domain.User, planID primitive.ObjectID, weekNumber int, workoutID primitive.ObjectID, completed bool) (*domain.TrainingPlan, error)
	GetAthleteActivePlan(ctx context.Context, athleteID primitive.ObjectID) (*domain.TrainingPlan, error)
}

// trainingPlanService implements the TrainingPlanService interface.
type trainingPlanService struct {
	planRepo repository.TrainingPlanRepository
	retryCfg retry.Config
}

// NewTrainingPlanService creates a new instance of trainingPlanService.
func NewTrainingPlanService(planRepo repository.TrainingPlanRepository) TrainingPlanService {
	return &trainingPlanService{
		planRepo: planRepo,
		retryCfg: retry.DefaultConfig(),
	}
}

// ListPlans returns the plans visible to the actor. Absence of permission is
// an empty result set, never an error.
func (s *trainingPlanService) ListPlans(ctx context.Context, actor *domain.User) ([]domain.TrainingPlan, error) {
	return retry.Do(ctx, s.retryCfg, func(ctx context.Context) ([]domain.TrainingPlan, error) {
		if actor.IsCoach() {
			return s.planRepo.GetByCoachID(ctx, actor.ID)
		}
		return s.planRepo.GetByAthleteID(ctx, actor.ID)
	})
}

// GetPlan fetches one plan, applying the same visibility rule as ListPlans.
// A plan the actor cannot see is indistinguishable from a missing one.
func (s *trainingPlanService) GetPlan(ctx context.Context, actor *domain.User, planID primitive.ObjectID) (*domain.TrainingPlan, error) {
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

func planVisibleTo(actor *domain.User, coachID primitive.ObjectID, athleteID *primitive.ObjectID) bool {
	if actor.ID == coachID {
		return true
	}
	return athleteID != nil && *athleteID == actor.ID
}

// CreatePlan persists the plan header, then every schedule entry. If the
// schedule insert fails the header remains; see DESIGN.md for the rationale.
func (s *trainingPlanService) CreatePlan(ctx context.Context, plan *domain.TrainingPlan) (*domain.TrainingPlan, error) {
	if plan.CoachID == primitive.NilObjectID {
		return nil, ErrNotACoach
	}
	if plan.Weeks < 1 {
		return nil, ErrInvalidWeeks
	}
	if err := domain.ValidateSchedule(plan.WorkoutSchedule); err != nil {
		return nil, err
	}

	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	if err := s.planRepo.InsertSchedule(ctx, planID, plan.WorkoutSchedule); err != nil {
		return nil, err
	}
	return s.planRepo.GetByID(ctx, planID)
}

// UpdatePlan applies a partial header update and an optional schedule
// replacement, then returns the canonical plan state.
func (s *trainingPlanService) UpdatePlan(ctx context.Context, coachID, planID primitive.ObjectID, input UpdateTrainingPlanInput) (*domain.TrainingPlan, error) {
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

	if input.ReplaceSchedule {
		if err := domain.ValidateSchedule(input.Schedule); err != nil {
			return nil, err
		}
		if err := s.planRepo.ReplaceSchedule(ctx, planID, input.Schedule); err != nil {
			return nil, err
		}
	}

	return s.planRepo.GetByID(ctx, planID)
}

// DeletePlan removes a plan and its schedule rows, ensuring ownership.
func (s *trainingPlanService) DeletePlan(ctx context.Context, coachID, planID primitive.ObjectID) error {
	err := s.planRepo.Delete(ctx, planID, coachID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPlanNotFound
	}
	return err
}

// DuplicatePlan deep-copies a plan: fresh ids, no athlete, all completion
// state reset, order preserved.
func (s *trainingPlanService) DuplicatePlan(ctx context.Context, coachID, planID primitive.ObjectID) (*domain.TrainingPlan, error) {
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

// SetWorkoutCompletion updates one scheduled workout's completion state. The
// owning coach and the assigned athlete may both toggle it. completedAt is
// stamped on the transition to complete and cleared on the way back.
func (s *trainingPlanService) SetWorkoutCompletion(ctx context.Context, actor *domain.User, planID primitive.ObjectID, weekNumber int, workoutID primitive.ObjectID, completed bool) (*domain.TrainingPlan, error) {
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
	if err := s.planRepo.SetCompletion(ctx, planID, weekNumber, workoutID, completed, completedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return s.planRepo.GetByID(ctx, planID)
}

// GetAthleteActivePlan returns the athlete's most recent assigned plan, or
// ErrPlanNotFound if none is assigned.
func (s *trainingPlanService) GetAthleteActivePlan(ctx context.Context, athleteID primitive.ObjectID) (*domain.TrainingPlan, error) {
	plans, err := s.planRepo.GetByAthleteID(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, ErrPlanNotFound
	}
	return &plans[0], nil
}
