package service

import (
	"context"
	"errors"

	"coachapp/internal/domain"
	"coachapp/internal/repository"
	"coachapp/internal/retry"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrUserNotFound = errors.New("user not found")

// UserService exposes the read-only user directory: every profile's id,
// username and role, used for athlete search and chat display names.
type UserService interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListAthletes(ctx context.Context) ([]domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	retryCfg retry.Config
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
		retryCfg: retry.DefaultConfig(),
	}
}

// GetByID returns a single profile without its password hash.
func (s *userService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// ListUsers returns every profile ordered by username.
func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := retry.Do(ctx, s.retryCfg, func(ctx context.Context) ([]domain.User, error) {
		return s.userRepo.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	stripHashes(users)
	return users, nil
}

// ListAthletes returns every athlete profile, for assignment search.
func (s *userService) ListAthletes(ctx context.Context) ([]domain.User, error) {
	users, err := retry.Do(ctx, s.retryCfg, func(ctx context.Context) ([]domain.User, error) {
		return s.userRepo.ListByRole(ctx, domain.RoleAthlete)
	})
	if err != nil {
		return nil, err
	}
	stripHashes(users)
	return users, nil
}

func stripHashes(users []domain.User) {
	for i := range users {
		users[i].PasswordHash = ""
	}
}
