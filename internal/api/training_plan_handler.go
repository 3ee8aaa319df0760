package api

import (
	"errors"
	"net/http"
	"time"

	"coachapp/internal/domain"
	"coachapp/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingPlanHandler holds the training plan service dependency.
type TrainingPlanHandler struct {
	planService service.TrainingPlanService
}

// NewTrainingPlanHandler creates a new TrainingPlanHandler.
func NewTrainingPlanHandler(planService service.TrainingPlanService) *TrainingPlanHandler {
	return &TrainingPlanHandler{planService: planService}
}

// --- DTOs for API (Data Transfer Objects) ---

type ScheduledWorkoutRequest struct {
	WorkoutID string `json:"workoutId" binding:"required"`
	DayOfWeek int    `json:"dayOfWeek" binding:"min=0,max=6"`
}

type WeekScheduleRequest struct {
	WeekNumber int                       `json:"weekNumber" binding:"required,min=1"`
	Workouts   []ScheduledWorkoutRequest `json:"workouts"`
}

type CreateTrainingPlanRequest struct {
	Name        string                `json:"name" binding:"required"`
	Description string                `json:"description"`
	Weeks       int                   `json:"weeks" binding:"required,min=1"`
	StartDate   time.Time             `json:"startDate" binding:"required"`
	AthleteID   *string               `json:"athleteId"`
	Schedule    []WeekScheduleRequest `json:"workoutSchedule"`
}

// UpdateTrainingPlanRequest carries a partial update. Absent fields keep their
// value; unassignAthlete clears the assignment explicitly.
type UpdateTrainingPlanRequest struct {
	Name            *string               `json:"name"`
	Description     *string               `json:"description"`
	Weeks           *int                  `json:"weeks"`
	StartDate       *time.Time            `json:"startDate"`
	AthleteID       *string               `json:"athleteId"`
	UnassignAthlete bool                  `json:"unassignAthlete"`
	Schedule        []WeekScheduleRequest `json:"workoutSchedule"`
	ReplaceSchedule bool                  `json:"replaceSchedule"`
}

type SetCompletionRequest struct {
	WeekNumber int    `json:"weekNumber" binding:"required,min=1"`
	WorkoutID  string `json:"workoutId" binding:"required"`
	Completed  *bool  `json:"completed" binding:"required"`
}

type ScheduledWorkoutResponse struct {
	WorkoutID   string     `json:"workoutId"`
	DayOfWeek   int        `json:"dayOfWeek"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type WeekScheduleResponse struct {
	WeekNumber int                        `json:"weekNumber"`
	Workouts   []ScheduledWorkoutResponse `json:"workouts"`
}

// TrainingPlanResponse includes the derived presentation fields (status,
// current week, progress) so clients never recompute them.
type TrainingPlanResponse struct {
	ID                string                 `json:"id"`
	CoachID           string                 `json:"coachId"`
	AthleteID         *string                `json:"athleteId,omitempty"`
	Name              string                 `json:"name"`
	Description       string                 `json:"description,omitempty"`
	Weeks             int                    `json:"weeks"`
	StartDate         time.Time              `json:"startDate"`
	WorkoutSchedule   []WeekScheduleResponse `json:"workoutSchedule"`
	Status            string                 `json:"status"`
	CurrentWeekNumber int                    `json:"currentWeekNumber"`
	TotalWorkouts     int                    `json:"totalWorkouts"`
	CompletedWorkouts int                    `json:"completedWorkouts"`
	Progress          float64                `json:"progress"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

// MapTrainingPlanToResponse converts a domain.TrainingPlan to its DTO,
// evaluating the derived fields at the current time.
func MapTrainingPlanToResponse(p *domain.TrainingPlan) TrainingPlanResponse {
	if p == nil {
		return TrainingPlanResponse{}
	}
	now := time.Now()
	resp := TrainingPlanResponse{
		ID:                p.ID.Hex(),
		CoachID:           p.CoachID.Hex(),
		Name:              p.Name,
		Description:       p.Description,
		Weeks:             p.Weeks,
		StartDate:         p.StartDate,
		WorkoutSchedule:   make([]WeekScheduleResponse, len(p.WorkoutSchedule)),
		Status:            string(p.Status(now)),
		CurrentWeekNumber: domain.CurrentWeekNumber(p.StartDate, now),
		TotalWorkouts:     p.TotalWorkouts(),
		CompletedWorkouts: p.CompletedWorkouts(),
		Progress:          p.Progress(),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.AthleteID != nil {
		athleteIDHex := p.AthleteID.Hex()
		resp.AthleteID = &athleteIDHex
	}
	for i, week := range p.WorkoutSchedule {
		weekResp := WeekScheduleResponse{
			WeekNumber: week.WeekNumber,
			Workouts:   make([]ScheduledWorkoutResponse, len(week.Workouts)),
		}
		for j, w := range week.Workouts {
			weekResp.Workouts[j] = ScheduledWorkoutResponse{
				WorkoutID:   w.WorkoutID.Hex(),
				DayOfWeek:   w.DayOfWeek,
				Completed:   w.Completed,
				CompletedAt: w.CompletedAt,
			}
		}
		resp.WorkoutSchedule[i] = weekResp
	}
	return resp
}

// MapTrainingPlansToResponse converts a slice of plans to DTOs.
func MapTrainingPlansToResponse(plans []domain.TrainingPlan) []TrainingPlanResponse {
	responses := make([]TrainingPlanResponse, len(plans))
	for i := range plans {
		responses[i] = MapTrainingPlanToResponse(&plans[i])
	}
	return responses
}

func scheduleFromRequest(schedule []WeekScheduleRequest) ([]domain.WeekSchedule, error) {
	result := make([]domain.WeekSchedule, len(schedule))
	for i, week := range schedule {
		workouts := make([]domain.ScheduledWorkout, len(week.Workouts))
		for j, w := range week.Workouts {
			workoutID, err := primitive.ObjectIDFromHex(w.WorkoutID)
			if err != nil {
				return nil, errors.New("invalid workout ID format: " + w.WorkoutID)
			}
			workouts[j] = domain.ScheduledWorkout{
				WorkoutID: workoutID,
				DayOfWeek: w.DayOfWeek,
			}
		}
		result[i] = domain.WeekSchedule{WeekNumber: week.WeekNumber, Workouts: workouts}
	}
	return result, nil
}

func abortWithPlanError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidWeeks),
		errors.Is(err, domain.ErrInvalidWeekNumber),
		errors.Is(err, domain.ErrInvalidDayOfWeek),
		errors.Is(err, domain.ErrDuplicateScheduledWorkout),
		errors.Is(err, domain.ErrInvalidMealType):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to "+action+".")
	}
}

// --- Handler Methods ---

// ListPlans returns the plans visible to the caller: owned plans for a coach,
// assigned plans for an athlete.
func (h *TrainingPlanHandler) ListPlans(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	plans, err := h.planService.ListPlans(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list training plans.")
		return
	}

	c.JSON(http.StatusOK, MapTrainingPlansToResponse(plans))
}

// GetPlan returns one plan with its full schedule.
func (h *TrainingPlanHandler) GetPlan(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), actor, planID)
	if err != nil {
		abortWithPlanError(c, err, "load training plan")
		return
	}

	c.JSON(http.StatusOK, MapTrainingPlanToResponse(plan))
}

// CreatePlan creates a training plan owned by the authenticated coach.
func (h *TrainingPlanHandler) CreatePlan(c *gin.Context) {
	var req CreateTrainingPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	schedule, err := scheduleFromRequest(req.Schedule)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	plan := &domain.TrainingPlan{
		CoachID:         coachID,
		Name:            req.Name,
		Description:     req.Description,
		Weeks:           req.Weeks,
		StartDate:       req.StartDate,
		WorkoutSchedule: schedule,
	}
	if req.AthleteID != nil {
		athleteID, err := primitive.ObjectIDFromHex(*req.AthleteID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format.")
			return
		}
		plan.AthleteID = &athleteID
	}

	created, err := h.planService.CreatePlan(c.Request.Context(), plan)
	if err != nil {
		abortWithPlanError(c, err, "create training plan")
		return
	}

	c.JSON(http.StatusCreated, MapTrainingPlanToResponse(created))
}

// UpdatePlan applies a partial update to a plan the caller owns.
func (h *TrainingPlanHandler) UpdatePlan(c *gin.Context) {
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	var req UpdateTrainingPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	input := service.UpdateTrainingPlanInput{
		Name:            req.Name,
		Description:     req.Description,
		Weeks:           req.Weeks,
		StartDate:       req.StartDate,
		UnassignAthlete: req.UnassignAthlete,
		ReplaceSchedule: req.ReplaceSchedule,
	}
	if req.AthleteID != nil {
		athleteID, err := primitive.ObjectIDFromHex(*req.AthleteID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format.")
			return
		}
		input.AthleteID = &athleteID
	}
	if req.ReplaceSchedule {
		schedule, err := scheduleFromRequest(req.Schedule)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		input.Schedule = schedule
	}

	updated, err := h.planService.UpdatePlan(c.Request.Context(), coachID, planID, input)
	if err != nil {
		abortWithPlanError(c, err, "update training plan")
		return
	}

	c.JSON(http.StatusOK, MapTrainingPlanToResponse(updated))
}

// DeletePlan deletes a plan the caller owns, along with its schedule.
func (h *TrainingPlanHandler) DeletePlan(c *gin.Context) {
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	coachID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), coachID, planID); err != nil {
		abortWithPlanError(c, err, "delete training plan")
		return
	}

	c.Status(http.StatusNoContent)
}

// DuplicatePlan deep-copies a plan the caller owns.
func (h *TrainingPlanHandler) DuplicatePlan(c *gin.Context) {
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	coachID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	dup, err := h.planService.DuplicatePlan(c.Request.Context(), coachID, planID)
	if err != nil {
		abortWithPlanError(c, err, "duplicate training plan")
		return
	}

	c.JSON(http.StatusCreated, MapTrainingPlanToResponse(dup))
}

// SetCompletion toggles one scheduled workout's completion state and returns
// the refreshed plan.
func (h *TrainingPlanHandler) SetCompletion(c *gin.Context) {
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	var req SetCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	workoutID, err := primitive.ObjectIDFromHex(req.WorkoutID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format.")
		return
	}

	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	plan, err := h.planService.SetWorkoutCompletion(c.Request.Context(), actor, planID, req.WeekNumber, workoutID, *req.Completed)
	if err != nil {
		abortWithPlanError(c, err, "update workout completion")
		return
	}

	c.JSON(http.StatusOK, MapTrainingPlanToResponse(plan))
}

// GetActivePlan returns the athlete's most recent assigned plan.
func (h *TrainingPlanHandler) GetActivePlan(c *gin.Context) {
	athleteID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	plan, err := h.planService.GetAthleteActivePlan(c.Request.Context(), athleteID)
	if err != nil {
		abortWithPlanError(c, err, "load active training plan")
		return
	}

	c.JSON(http.StatusOK, MapTrainingPlanToResponse(plan))
}
