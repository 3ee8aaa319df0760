package api

import (
	"errors"
	"net/http"
	"time"

	"coachapp/internal/domain"
	"coachapp/internal/service"
	"coachapp/internal/video"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs for API (Data Transfer Objects) ---

// WorkoutExerciseRequest is one entry of a workout: a library reference plus
// optional per-workout overrides.
type WorkoutExerciseRequest struct {
	ExerciseID      string   `json:"exerciseId" binding:"required"`
	Sets            *int     `json:"sets"`
	Reps            *int     `json:"reps"`
	Weight          *float64 `json:"weight"`
	RestBetweenSets *int     `json:"restBetweenSets"`
	Duration        *int     `json:"duration"`
}

type WorkoutRequest struct {
	Name        string                   `json:"name" binding:"required"`
	Description string                   `json:"description"`
	Exercises   []WorkoutExerciseRequest `json:"exercises"`
	Duration    int                      `json:"duration" binding:"omitempty,min=0"`
	Difficulty  string                   `json:"difficulty" binding:"required,oneof=beginner intermediate advanced"`
	Type        string                   `json:"type" binding:"required,oneof=strength cardio hybrid recovery"`
}

type WorkoutExerciseResponse struct {
	ExerciseID      string   `json:"exerciseId"`
	Sets            *int     `json:"sets,omitempty"`
	Reps            *int     `json:"reps,omitempty"`
	Weight          *float64 `json:"weight,omitempty"`
	RestBetweenSets *int     `json:"restBetweenSets,omitempty"`
	Duration        *int     `json:"duration,omitempty"`
}

type WorkoutResponse struct {
	ID          string                    `json:"id"`
	CreatorID   string                    `json:"creatorId"`
	Name        string                    `json:"name"`
	Description string                    `json:"description,omitempty"`
	Exercises   []WorkoutExerciseResponse `json:"exercises"`
	Duration    int                       `json:"duration"`
	Difficulty  string                    `json:"difficulty"`
	Type        string                    `json:"type"`
	CreatedAt   time.Time                 `json:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

// ResolvedExerciseResponse is a workout entry joined against the library, with
// the entry's overrides already layered over the exercise defaults.
type ResolvedExerciseResponse struct {
	Exercise        ExerciseResponse `json:"exercise"`
	Sets            *int             `json:"sets,omitempty"`
	Reps            *int             `json:"reps,omitempty"`
	Weight          *float64         `json:"weight,omitempty"`
	RestBetweenSets *int             `json:"restBetweenSets,omitempty"`
	Duration        *int             `json:"duration,omitempty"`
}

type WorkoutDetailResponse struct {
	Workout   WorkoutResponse            `json:"workout"`
	Exercises []ResolvedExerciseResponse `json:"exercises"`
}

// MapWorkoutToResponse converts a domain.Workout to a WorkoutResponse DTO.
func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	resp := WorkoutResponse{
		ID:          w.ID.Hex(),
		CreatorID:   w.CreatorID.Hex(),
		Name:        w.Name,
		Description: w.Description,
		Exercises:   make([]WorkoutExerciseResponse, len(w.Exercises)),
		Duration:    w.Duration,
		Difficulty:  string(w.Difficulty),
		Type:        string(w.Type),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	for i, e := range w.Exercises {
		resp.Exercises[i] = WorkoutExerciseResponse{
			ExerciseID:      e.ExerciseID.Hex(),
			Sets:            e.Sets,
			Reps:            e.Reps,
			Weight:          e.Weight,
			RestBetweenSets: e.RestBetweenSets,
			Duration:        e.Duration,
		}
	}
	return resp
}

// MapWorkoutsToResponse converts a slice of domain.Workout to DTOs.
func MapWorkoutsToResponse(workouts []domain.Workout) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	return responses
}

func workoutFromRequest(req *WorkoutRequest) (*domain.Workout, error) {
	workout := &domain.Workout{
		Name:        req.Name,
		Description: req.Description,
		Exercises:   make([]domain.WorkoutExercise, len(req.Exercises)),
		Duration:    req.Duration,
		Difficulty:  domain.Difficulty(req.Difficulty),
		Type:        domain.WorkoutType(req.Type),
	}
	for i, e := range req.Exercises {
		exerciseID, err := primitive.ObjectIDFromHex(e.ExerciseID)
		if err != nil {
			return nil, errors.New("invalid exercise ID format: " + e.ExerciseID)
		}
		workout.Exercises[i] = domain.WorkoutExercise{
			ExerciseID:      exerciseID,
			Sets:            e.Sets,
			Reps:            e.Reps,
			Weight:          e.Weight,
			RestBetweenSets: e.RestBetweenSets,
			Duration:        e.Duration,
		}
	}
	return workout, nil
}

// --- Handler Methods ---

// CreateWorkout creates a new catalog workout owned by the authenticated coach.
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	creatorID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	workout, err := workoutFromRequest(&req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	workout.CreatorID = creatorID

	created, err := h.workoutService.CreateWorkout(c.Request.Context(), workout)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create workout.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapWorkoutToResponse(created))
}

// GetMyWorkouts returns the workouts created by the authenticated user.
func (h *WorkoutHandler) GetMyWorkouts(c *gin.Context) {
	creatorID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	workouts, err := h.workoutService.GetMyWorkouts(c.Request.Context(), creatorID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list workouts.")
		return
	}

	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// ListWorkouts returns the whole catalog, used when rendering plan schedules.
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	workouts, err := h.workoutService.ListWorkouts(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list workouts.")
		return
	}

	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// GetWorkout returns a single workout without resolving references.
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format.")
		return
	}

	workout, err := h.workoutService.GetWorkoutByID(c.Request.Context(), workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load workout.")
		}
		return
	}

	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// GetWorkoutDetail returns a workout with each exercise reference resolved.
// Entries whose exercise has been deleted are omitted from the response.
func (h *WorkoutHandler) GetWorkoutDetail(c *gin.Context) {
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format.")
		return
	}

	detail, err := h.workoutService.GetWorkoutDetail(c.Request.Context(), workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load workout detail.")
		}
		return
	}

	resp := WorkoutDetailResponse{
		Workout:   MapWorkoutToResponse(&detail.Workout),
		Exercises: make([]ResolvedExerciseResponse, len(detail.Exercises)),
	}
	for i, re := range detail.Exercises {
		resp.Exercises[i] = ResolvedExerciseResponse{
			Exercise:        mapResolvedExercise(&re.Exercise),
			Sets:            re.Sets,
			Reps:            re.Reps,
			Weight:          re.Weight,
			RestBetweenSets: re.RestBetweenSets,
			Duration:        re.Duration,
		}
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateWorkout replaces a workout's content. Only the creator may update.
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format.")
		return
	}

	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	actorID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	workout, err := workoutFromRequest(&req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	workout.ID = workoutID

	updated, err := h.workoutService.UpdateWorkout(c.Request.Context(), actorID, workout)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrWorkoutAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update workout.")
		}
		return
	}

	c.JSON(http.StatusOK, MapWorkoutToResponse(updated))
}

// DeleteWorkout deletes a workout. Plan schedules keep their references; they
// show up as dangling entries tolerated at read time.
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format.")
		return
	}

	actorID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	if err := h.workoutService.DeleteWorkout(c.Request.Context(), actorID, workoutID); err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrWorkoutAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete workout.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// mapResolvedExercise maps an exercise inside a workout detail.
func mapResolvedExercise(ex *domain.Exercise) ExerciseResponse {
	return ExerciseResponse{
		ID:               ex.ID.Hex(),
		CreatorID:        ex.CreatorID.Hex(),
		Name:             ex.Name,
		Description:      ex.Description,
		Category:         string(ex.Category),
		Difficulty:       string(ex.Difficulty),
		MuscleGroups:     ex.MuscleGroups,
		Equipment:        ex.Equipment,
		Instructions:     ex.Instructions,
		VideoURL:         ex.VideoURL,
		EmbedVideoURL:    video.EmbedURL(ex.VideoURL),
		HasUploadedVideo: ex.VideoObjectKey != "",
		DefaultWeight:    ex.DefaultWeight,
		DefaultReps:      ex.DefaultReps,
		DefaultSets:      ex.DefaultSets,
		WeightIncrement:  ex.WeightIncrement,
		RestBetweenSets:  ex.RestBetweenSets,
		CreatedAt:        ex.CreatedAt,
		UpdatedAt:        ex.UpdatedAt,
	}
}
