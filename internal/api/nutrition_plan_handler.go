package api

import (
	"net/http"
	"time"

	"coachapp/internal/domain"
	"coachapp/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NutritionPlanHandler holds the nutrition plan service dependency.
type NutritionPlanHandler struct {
	planService service.NutritionPlanService
}

// NewNutritionPlanHandler creates a new NutritionPlanHandler.
func NewNutritionPlanHandler(planService service.NutritionPlanService) *NutritionPlanHandler {
	return &NutritionPlanHandler{planService: planService}
}

// --- DTOs for API (Data Transfer Objects) ---

// MealRequest is one meal entry being created or edited. Meals are plan-local
// content, so the full record travels with the schedule.
type MealRequest struct {
	DayOfWeek   int    `json:"dayOfWeek" binding:"min=0,max=6"`
	MealType    string `json:"mealType" binding:"required,oneof=breakfast lunch dinner snack"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Calories    *int   `json:"calories"`
	Protein     *int   `json:"protein"`
	Carbs       *int   `json:"carbs"`
	Fats        *int   `json:"fats"`
}

type MealWeekRequest struct {
	WeekNumber int           `json:"weekNumber" binding:"required,min=1"`
	Meals      []MealRequest `json:"meals"`
}

type CreateNutritionPlanRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Weeks       int               `json:"weeks" binding:"required,min=1"`
	StartDate   time.Time         `json:"startDate" binding:"required"`
	AthleteID   *string           `json:"athleteId"`
	Meals       []MealWeekRequest `json:"mealSchedule"`
}

type UpdateNutritionPlanRequest struct {
	Name            *string           `json:"name"`
	Description     *string           `json:"description"`
	Weeks           *int              `json:"weeks"`
	StartDate       *time.Time        `json:"startDate"`
	AthleteID       *string           `json:"athleteId"`
	UnassignAthlete bool              `json:"unassignAthlete"`
	Meals           []MealWeekRequest `json:"mealSchedule"`
	ReplaceMeals    bool              `json:"replaceMeals"`
}

type SetMealCompletionRequest struct {
	WeekNumber int    `json:"weekNumber" binding:"required,min=1"`
	MealID     string `json:"mealId" binding:"required"`
	Completed  *bool  `json:"completed" binding:"required"`
}

type MealResponse struct {
	ID          string     `json:"id"`
	WeekNumber  int        `json:"weekNumber"`
	DayOfWeek   int        `json:"dayOfWeek"`
	MealType    string     `json:"mealType"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Calories    *int       `json:"calories,omitempty"`
	Protein     *int       `json:"protein,omitempty"`
	Carbs       *int       `json:"carbs,omitempty"`
	Fats        *int       `json:"fats,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type MealWeekResponse struct {
	WeekNumber int            `json:"weekNumber"`
	Meals      []MealResponse `json:"meals"`
}

// NutritionPlanResponse mirrors TrainingPlanResponse with meal counts.
type NutritionPlanResponse struct {
	ID                string             `json:"id"`
	CoachID           string             `json:"coachId"`
	AthleteID         *string            `json:"athleteId,omitempty"`
	Name              string             `json:"name"`
	Description       string             `json:"description,omitempty"`
	Weeks             int                `json:"weeks"`
	StartDate         time.Time          `json:"startDate"`
	MealSchedule      []MealWeekResponse `json:"mealSchedule"`
	Status            string             `json:"status"`
	CurrentWeekNumber int                `json:"currentWeekNumber"`
	TotalMeals        int                `json:"totalMeals"`
	CompletedMeals    int                `json:"completedMeals"`
	Progress          float64            `json:"progress"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// MapNutritionPlanToResponse converts a domain.NutritionPlan to its DTO,
// evaluating the derived fields at the current time.
func MapNutritionPlanToResponse(p *domain.NutritionPlan) NutritionPlanResponse {
	if p == nil {
		return NutritionPlanResponse{}
	}
	now := time.Now()
	resp := NutritionPlanResponse{
		ID:                p.ID.Hex(),
		CoachID:           p.CoachID.Hex(),
		Name:              p.Name,
		Description:       p.Description,
		Weeks:             p.Weeks,
		StartDate:         p.StartDate,
		MealSchedule:      make([]MealWeekResponse, len(p.MealSchedule)),
		Status:            string(p.Status(now)),
		CurrentWeekNumber: domain.CurrentWeekNumber(p.StartDate, now),
		TotalMeals:        p.TotalMeals(),
		CompletedMeals:    p.CompletedMeals(),
		Progress:          p.Progress(),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.AthleteID != nil {
		athleteIDHex := p.AthleteID.Hex()
		resp.AthleteID = &athleteIDHex
	}
	for i, week := range p.MealSchedule {
		weekResp := MealWeekResponse{
			WeekNumber: week.WeekNumber,
			Meals:      make([]MealResponse, len(week.Meals)),
		}
		for j, m := range week.Meals {
			weekResp.Meals[j] = MealResponse{
				ID:          m.ID.Hex(),
				WeekNumber:  m.WeekNumber,
				DayOfWeek:   m.DayOfWeek,
				MealType:    string(m.MealType),
				Name:        m.Name,
				Description: m.Description,
				Calories:    m.Calories,
				Protein:     m.Protein,
				Carbs:       m.Carbs,
				Fats:        m.Fats,
				Completed:   m.Completed,
				CompletedAt: m.CompletedAt,
			}
		}
		resp.MealSchedule[i] = weekResp
	}
	return resp
}

// MapNutritionPlansToResponse converts a slice of plans to DTOs.
func MapNutritionPlansToResponse(plans []domain.NutritionPlan) []NutritionPlanResponse {
	responses := make([]NutritionPlanResponse, len(plans))
	for i := range plans {
		responses[i] = MapNutritionPlanToResponse(&plans[i])
	}
	return responses
}

func mealScheduleFromRequest(schedule []MealWeekRequest) []domain.MealWeek {
	result := make([]domain.MealWeek, len(schedule))
	for i, week := range schedule {
		meals := make([]domain.Meal, len(week.Meals))
		for j, m := range week.Meals {
			meals[j] = domain.Meal{
				WeekNumber:  week.WeekNumber,
				DayOfWeek:   m.DayOfWeek,
				MealType:    domain.MealType(m.MealType),
				Name:        m.Name,
				Description: m.Description,
				Calories:    m.Calories,
				Protein:     m.Protein,
				Carbs:       m.Carbs,
				Fats:        m.Fats,
			}
		}
		result[i] = domain.MealWeek{WeekNumber: week.WeekNumber, Meals: meals}
	}
	return result
}

// --- Handler Methods ---

// ListPlans returns the nutrition plans visible to the caller.
func (h *NutritionPlanHandler) ListPlans(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	plans, err := h.planService.ListPlans(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list nutrition plans.")
		return
	}

	c.JSON(http.StatusOK, MapNutritionPlansToResponse(plans))
}

// GetPlan returns one nutrition plan with its full meal schedule.
func (h *NutritionPlanHandler) GetPlan(c *gin.Context) {
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
		abortWithPlanError(c, err, "load nutrition plan")
		return
	}

	c.JSON(http.StatusOK, MapNutritionPlanToResponse(plan))
}

// CreatePlan creates a nutrition plan owned by the authenticated coach.
func (h *NutritionPlanHandler) CreatePlan(c *gin.Context) {
	var req CreateNutritionPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	plan := &domain.NutritionPlan{
		CoachID:      coachID,
		Name:         req.Name,
		Description:  req.Description,
		Weeks:        req.Weeks,
		StartDate:    req.StartDate,
		MealSchedule: mealScheduleFromRequest(req.Meals),
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
		abortWithPlanError(c, err, "create nutrition plan")
		return
	}

	c.JSON(http.StatusCreated, MapNutritionPlanToResponse(created))
}

// UpdatePlan applies a partial update to a plan the caller owns.
func (h *NutritionPlanHandler) UpdatePlan(c *gin.Context) {
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	var req UpdateNutritionPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	input := service.UpdateNutritionPlanInput{
		Name:            req.Name,
		Description:     req.Description,
		Weeks:           req.Weeks,
		StartDate:       req.StartDate,
		UnassignAthlete: req.UnassignAthlete,
		ReplaceMeals:    req.ReplaceMeals,
	}
	if req.AthleteID != nil {
		athleteID, err := primitive.ObjectIDFromHex(*req.AthleteID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format.")
			return
		}
		input.AthleteID = &athleteID
	}
	if req.ReplaceMeals {
		input.Meals = mealScheduleFromRequest(req.Meals)
	}

	updated, err := h.planService.UpdatePlan(c.Request.Context(), coachID, planID, input)
	if err != nil {
		abortWithPlanError(c, err, "update nutrition plan")
		return
	}

	c.JSON(http.StatusOK, MapNutritionPlanToResponse(updated))
}

// DeletePlan deletes a plan the caller owns, along with its meals.
func (h *NutritionPlanHandler) DeletePlan(c *gin.Context) {
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
		abortWithPlanError(c, err, "delete nutrition plan")
		return
	}

	c.Status(http.StatusNoContent)
}

// DuplicatePlan deep-copies a plan the caller owns.
func (h *NutritionPlanHandler) DuplicatePlan(c *gin.Context) {
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
		abortWithPlanError(c, err, "duplicate nutrition plan")
		return
	}

	c.JSON(http.StatusCreated, MapNutritionPlanToResponse(dup))
}

// SetMealCompletion toggles one meal's completion state and returns the
// refreshed plan.
func (h *NutritionPlanHandler) SetMealCompletion(c *gin.Context) {
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	var req SetMealCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	mealID, err := primitive.ObjectIDFromHex(req.MealID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid meal ID format.")
		return
	}

	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	plan, err := h.planService.SetMealCompletion(c.Request.Context(), actor, planID, req.WeekNumber, mealID, *req.Completed)
	if err != nil {
		abortWithPlanError(c, err, "update meal completion")
		return
	}

	c.JSON(http.StatusOK, MapNutritionPlanToResponse(plan))
}

// GetActivePlan returns the athlete's most recent assigned nutrition plan.
func (h *NutritionPlanHandler) GetActivePlan(c *gin.Context) {
	athleteID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	plan, err := h.planService.GetAthleteActivePlan(c.Request.Context(), athleteID)
	if err != nil {
		abortWithPlanError(c, err, "load active nutrition plan")
		return
	}

	c.JSON(http.StatusOK, MapNutritionPlanToResponse(plan))
}
