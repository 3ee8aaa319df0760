package service

import (
	"context"
	"errors"

	"coachapp/internal/domain"
	"coachapp/internal/repository"
	"coachapp/internal/retry"
	"coachapp/internal/storage"
	"coachapp/internal/video"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
	ErrValidationFailed     = errors.New("exercise validation failed")
)

// VideoUploadTicket carries the presigned upload URL plus the object key the
// client must confirm once the upload completes.
type VideoUploadTicket struct {
	UploadURL string
	ObjectKey string
}

type ExerciseService interface {
	CreateExercise(ctx context.Context, exercise *domain.Exercise) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	GetMyExercises(ctx context.Context, creatorID primitive.ObjectID) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, actorID primitive.ObjectID, exercise *domain.Exercise) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, actorID, exerciseID primitive.ObjectID) error
	DuplicateExercise(ctx context.Context, actorID, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	AssignExercise(ctx context.Context, exerciseID, userID primitive.ObjectID) error
	UnassignExercise(ctx context.Context, exerciseID, userID primitive.ObjectID) error
	// EmbedURL resolves an exercise's external video URL to an embeddable
	// player URL, or "" when the URL matches no known platform shape.
	EmbedURL(ex *domain.Exercise) string
	RequestVideoUpload(ctx context.Context, actorID, exerciseID primitive.ObjectID, contentType string) (*VideoUploadTicket, error)
	GetVideoDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage
	retryCfg     retry.Config
}

// NewExerciseService creates a new instance of exerciseService. fileStorage
// may be nil; video upload operations then return an error.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, fileStorage storage.FileStorage) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		fileStorage:  fileStorage,
		retryCfg:     retry.DefaultConfig(),
	}
}

func validateExercise(ex *domain.Exercise) error {
	if ex.Name == "" {
		return ErrValidationFailed
	}
	switch ex.Category {
	case domain.CategoryStrength, domain.CategoryCardio, domain.CategoryFlexibility, domain.CategoryBalance:
	default:
		return ErrValidationFailed
	}
	switch ex.Difficulty {
	case domain.DifficultyBeginner, domain.DifficultyIntermediate, domain.DifficultyAdvanced:
	default:
		return ErrValidationFailed
	}
	return nil
}

// CreateExercise handles the creation of a new library exercise.
func (s *exerciseService) CreateExercise(ctx context.Context, exercise *domain.Exercise) (*domain.Exercise, error) {
	if err := validateExercise(exercise); err != nil {
		return nil, err
	}
	if exercise.CreatorID == primitive.NilObjectID {
		return nil, errors.New("creator ID is required to create an exercise")
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// GetExerciseByID retrieves a single exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// GetMyExercises retrieves all exercises created by a specific user.
func (s *exerciseService) GetMyExercises(ctx context.Context, creatorID primitive.ObjectID) ([]domain.Exercise, error) {
	if creatorID == primitive.NilObjectID {
		return nil, errors.New("creator ID cannot be nil")
	}
	return retry.Do(ctx, s.retryCfg, func(ctx context.Context) ([]domain.Exercise, error) {
		return s.exerciseRepo.GetByCreatorID(ctx, creatorID)
	})
}

// UpdateExercise handles updating an existing exercise, ensuring ownership.
func (s *exerciseService) UpdateExercise(ctx context.Context, actorID primitive.ObjectID, exercise *domain.Exercise) (*domain.Exercise, error) {
	if err := validateExercise(exercise); err != nil {
		return nil, err
	}

	existing, err := s.exerciseRepo.GetByID(ctx, exercise.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if existing.CreatorID != actorID {
		return nil, ErrExerciseAccessDenied
	}

	exercise.CreatorID = existing.CreatorID
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, exercise.ID)
}

// DeleteExercise handles deleting an exercise, ensuring ownership. Workouts
// referencing the exercise are not cleaned up; their entries are skipped at
// read time. An uploaded demo video is removed with the exercise.
func (s *exerciseService) DeleteExercise(ctx context.Context, actorID, exerciseID primitive.ObjectID) error {
	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	if existing.CreatorID != actorID {
		return ErrExerciseAccessDenied
	}

	if err := s.exerciseRepo.Delete(ctx, exerciseID, actorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}

	if existing.VideoObjectKey != "" && s.fileStorage != nil {
		// Best effort; the exercise itself is already gone.
		_ = s.fileStorage.DeleteObject(ctx, existing.VideoObjectKey)
	}
	return nil
}

// DuplicateExercise copies an exercise's content into a new one owned by the
// actor. Any actor may duplicate any exercise; the copy starts unassigned.
func (s *exerciseService) DuplicateExercise(ctx context.Context, actorID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	original, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	dup := original.CopyForDuplicate(actorID)
	dupID, err := s.exerciseRepo.Create(ctx, dup)
	if err != nil {
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, dupID)
}

// AssignExercise records that an exercise was assigned to a user.
func (s *exerciseService) AssignExercise(ctx context.Context, exerciseID, userID primitive.ObjectID) error {
	err := s.exerciseRepo.AddAssignee(ctx, exerciseID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrExerciseNotFound
	}
	return err
}

// UnassignExercise removes a user from an exercise's assignees.
func (s *exerciseService) UnassignExercise(ctx context.Context, exerciseID, userID primitive.ObjectID) error {
	err := s.exerciseRepo.RemoveAssignee(ctx, exerciseID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrExerciseNotFound
	}
	return err
}

// EmbedURL resolves the exercise's external video URL.
func (s *exerciseService) EmbedURL(ex *domain.Exercise) string {
	if ex == nil || ex.VideoURL == "" {
		return ""
	}
	return video.EmbedURL(ex.VideoURL)
}

// RequestVideoUpload issues a presigned PUT URL for an exercise demo video and
// stores the object key on the exercise.
func (s *exerciseService) RequestVideoUpload(ctx context.Context, actorID, exerciseID primitive.ObjectID, contentType string) (*VideoUploadTicket, error) {
	if s.fileStorage == nil {
		return nil, errors.New("file storage is not configured")
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.CreatorID != actorID {
		return nil, ErrExerciseAccessDenied
	}

	objectKey := "exercises/" + exerciseID.Hex() + "/" + uuid.NewString()
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}

	exercise.VideoObjectKey = objectKey
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, err
	}

	return &VideoUploadTicket{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// GetVideoDownloadURL returns a presigned GET URL for an uploaded demo video.
func (s *exerciseService) GetVideoDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error) {
	if s.fileStorage == nil {
		return "", errors.New("file storage is not configured")
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrExerciseNotFound
		}
		return "", err
	}
	if exercise.VideoObjectKey == "" {
		return "", ErrExerciseNotFound
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.VideoObjectKey, storage.DefaultPresignedURLExpiry)
}
