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

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// ExerciseRequest defines the expected JSON for creating or updating an
// exercise. Optional numeric defaults stay nil when absent.
type ExerciseRequest struct {
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	Category        string   `json:"category" binding:"required,oneof=strength cardio flexibility balance"`
	Difficulty      string   `json:"difficulty" binding:"required,oneof=beginner intermediate advanced"`
	MuscleGroups    []string `json:"muscleGroups"`
	Equipment       []string `json:"equipment"`
	Instructions    []string `json:"instructions"`
	VideoURL        string   `json:"videoUrl" binding:"omitempty,url"`
	DefaultWeight   *float64 `json:"defaultWeight"`
	DefaultReps     *int     `json:"defaultReps"`
	DefaultSets     *int     `json:"defaultSets"`
	WeightIncrement *float64 `json:"weightIncrement"`
	RestBetweenSets *int     `json:"restBetweenSets"`
}

// ExerciseResponse is the DTO for returning exercise details. EmbedVideoURL is
// derived from VideoURL at read time and empty for non-embeddable links.
type ExerciseResponse struct {
	ID               string    `json:"id"`
	CreatorID        string    `json:"creatorId"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	Category         string    `json:"category"`
	Difficulty       string    `json:"difficulty"`
	MuscleGroups     []string  `json:"muscleGroups,omitempty"`
	Equipment        []string  `json:"equipment,omitempty"`
	Instructions     []string  `json:"instructions,omitempty"`
	VideoURL         string    `json:"videoUrl,omitempty"`
	EmbedVideoURL    string    `json:"embedVideoUrl,omitempty"`
	HasUploadedVideo bool      `json:"hasUploadedVideo"`
	DefaultWeight    *float64  `json:"defaultWeight,omitempty"`
	DefaultReps      *int      `json:"defaultReps,omitempty"`
	DefaultSets      *int      `json:"defaultSets,omitempty"`
	WeightIncrement  *float64  `json:"weightIncrement,omitempty"`
	RestBetweenSets  *int      `json:"restBetweenSets,omitempty"`
	AssignedTo       []string  `json:"assignedTo,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type AssignExerciseRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type VideoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type VideoUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

func (h *ExerciseHandler) mapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	resp := ExerciseResponse{
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
		EmbedVideoURL:    h.exerciseService.EmbedURL(ex),
		HasUploadedVideo: ex.VideoObjectKey != "",
		DefaultWeight:    ex.DefaultWeight,
		DefaultReps:      ex.DefaultReps,
		DefaultSets:      ex.DefaultSets,
		WeightIncrement:  ex.WeightIncrement,
		RestBetweenSets:  ex.RestBetweenSets,
		CreatedAt:        ex.CreatedAt,
		UpdatedAt:        ex.UpdatedAt,
	}
	if len(ex.AssignedTo) > 0 {
		resp.AssignedTo = make([]string, len(ex.AssignedTo))
		for i, id := range ex.AssignedTo {
			resp.AssignedTo[i] = id.Hex()
		}
	}
	return resp
}

func (h *ExerciseHandler) mapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = h.mapExerciseToResponse(&exercises[i])
	}
	return responses
}

func exerciseFromRequest(req *ExerciseRequest) *domain.Exercise {
	return &domain.Exercise{
		Name:            req.Name,
		Description:     req.Description,
		Category:        domain.ExerciseCategory(req.Category),
		Difficulty:      domain.Difficulty(req.Difficulty),
		MuscleGroups:    req.MuscleGroups,
		Equipment:       req.Equipment,
		Instructions:    req.Instructions,
		VideoURL:        req.VideoURL,
		DefaultWeight:   req.DefaultWeight,
		DefaultReps:     req.DefaultReps,
		DefaultSets:     req.DefaultSets,
		WeightIncrement: req.WeightIncrement,
		RestBetweenSets: req.RestBetweenSets,
	}
}

// --- Handler Methods ---

// CreateExercise creates a new library exercise owned by the authenticated coach.
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	creatorID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	exercise := exerciseFromRequest(&req)
	exercise.CreatorID = creatorID

	created, err := h.exerciseService.CreateExercise(c.Request.Context(), exercise)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise.")
		}
		return
	}

	c.JSON(http.StatusCreated, h.mapExerciseToResponse(created))
}

// GetMyExercises returns the exercises created by the authenticated user.
func (h *ExerciseHandler) GetMyExercises(c *gin.Context) {
	creatorID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	exercises, err := h.exerciseService.GetMyExercises(c.Request.Context(), creatorID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list exercises.")
		return
	}

	c.JSON(http.StatusOK, h.mapExercisesToResponse(exercises))
}

// GetExercise returns a single exercise by id.
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load exercise.")
		}
		return
	}

	c.JSON(http.StatusOK, h.mapExerciseToResponse(exercise))
}

// UpdateExercise replaces an exercise's content. Only the creator may update.
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	actorID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	exercise := exerciseFromRequest(&req)
	exercise.ID = exerciseID

	updated, err := h.exerciseService.UpdateExercise(c.Request.Context(), actorID, exercise)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExerciseAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update exercise.")
		}
		return
	}

	c.JSON(http.StatusOK, h.mapExerciseToResponse(updated))
}

// DeleteExercise deletes an exercise. Workouts keep their references; the
// entries are skipped when a workout is rendered.
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	actorID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), actorID, exerciseID); err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExerciseAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete exercise.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// DuplicateExercise copies an exercise into one owned by the caller.
func (h *ExerciseHandler) DuplicateExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	actorID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	dup, err := h.exerciseService.DuplicateExercise(c.Request.Context(), actorID, exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to duplicate exercise.")
		}
		return
	}

	c.JSON(http.StatusCreated, h.mapExerciseToResponse(dup))
}

// AssignExercise records an assignment of this exercise to a user.
func (h *ExerciseHandler) AssignExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	var req AssignExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}

	if err := h.exerciseService.AssignExercise(c.Request.Context(), exerciseID, userID); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to assign exercise.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// UnassignExercise removes an assignment of this exercise from a user.
func (h *ExerciseHandler) UnassignExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}

	if err := h.exerciseService.UnassignExercise(c.Request.Context(), exerciseID, userID); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to unassign exercise.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// RequestVideoUpload issues a presigned PUT URL for an exercise demo video.
func (h *ExerciseHandler) RequestVideoUpload(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	var req VideoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	actorID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	ticket, err := h.exerciseService.RequestVideoUpload(c.Request.Context(), actorID, exerciseID, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExerciseAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create upload URL.")
		}
		return
	}

	c.JSON(http.StatusOK, VideoUploadResponse{UploadURL: ticket.UploadURL, ObjectKey: ticket.ObjectKey})
}

// GetVideoDownloadURL returns a presigned GET URL for an uploaded demo video.
func (h *ExerciseHandler) GetVideoDownloadURL(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	url, err := h.exerciseService.GetVideoDownloadURL(c.Request.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create download URL.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}
