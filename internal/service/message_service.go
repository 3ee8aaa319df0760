package service

import (
	"context"
	"errors"
	"log"
	"sort"

	"coachapp/internal/cache"
	"coachapp/internal/domain"
	"coachapp/internal/repository"
	"coachapp/internal/retry"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrEmptyMessage   = errors.New("message content cannot be empty")
	ErrSelfMessage    = errors.New("cannot send a message to yourself")
	ErrUnknownPartner = errors.New("message partner not found")
)

type MessageService interface {
	// Send appends a message and returns the sender's refreshed message set,
	// mirroring the fetch-after-send consistency model.
	Send(ctx context.Context, senderID, receiverID primitive.ObjectID, content string) ([]domain.Message, error)
	// Fetch returns all messages the user sent or received, oldest first.
	Fetch(ctx context.Context, userID primitive.ObjectID) ([]domain.Message, error)
	// MarkAsRead flips read=true on everything otherParty sent to the viewer
	// and returns the viewer's recomputed unread count.
	MarkAsRead(ctx context.Context, viewerID, otherPartyID primitive.ObjectID) (int64, error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	// Partners derives the conversation list from plan assignments: a coach
	// chats with the athletes on their plans, an athlete with the coaches of
	// plans assigned to them.
	Partners(ctx context.Context, actor *domain.User) ([]domain.User, error)
}

// messageService implements the MessageService interface.
type messageService struct {
	messageRepo       repository.MessageRepository
	userRepo          repository.UserRepository
	trainingPlanRepo  repository.TrainingPlanRepository
	nutritionPlanRepo repository.NutritionPlanRepository
	unreadCache       *cache.UnreadCountCache
	retryCfg          retry.Config
}

// NewMessageService creates a new instance of messageService. unreadCache may
// be nil; unread counts then always come from the store.
func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	trainingPlanRepo repository.TrainingPlanRepository,
	nutritionPlanRepo repository.NutritionPlanRepository,
	unreadCache *cache.UnreadCountCache,
) MessageService {
	return &messageService{
		messageRepo:       messageRepo,
		userRepo:          userRepo,
		trainingPlanRepo:  trainingPlanRepo,
		nutritionPlanRepo: nutritionPlanRepo,
		unreadCache:       unreadCache,
		retryCfg:          retry.DefaultConfig(),
	}
}

// Send appends a message with read=false and re-fetches the sender's full
// message set rather than patching it incrementally.
func (s *messageService) Send(ctx context.Context, senderID, receiverID primitive.ObjectID, content string) ([]domain.Message, error) {
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if senderID == receiverID {
		return nil, ErrSelfMessage
	}
	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownPartner
		}
		return nil, err
	}

	message := &domain.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if _, err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	s.invalidateUnread(ctx, receiverID)
	return s.messageRepo.GetByUserID(ctx, senderID)
}

// Fetch returns the user's complete message history, oldest first.
func (s *messageService) Fetch(ctx context.Context, userID primitive.ObjectID) ([]domain.Message, error) {
	return retry.Do(ctx, s.retryCfg, func(ctx context.Context) ([]domain.Message, error) {
		return s.messageRepo.GetByUserID(ctx, userID)
	})
}

// MarkAsRead marks everything from otherParty to the viewer as read, then
// recomputes the viewer's unread count.
func (s *messageService) MarkAsRead(ctx context.Context, viewerID, otherPartyID primitive.ObjectID) (int64, error) {
	if err := s.messageRepo.MarkAllRead(ctx, viewerID, otherPartyID); err != nil {
		return 0, err
	}
	s.invalidateUnread(ctx, viewerID)
	return s.UnreadCount(ctx, viewerID)
}

// UnreadCount returns the number of unread messages addressed to the user,
// consulting the cache first when one is configured.
func (s *messageService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	if s.unreadCache != nil {
		if count, err := s.unreadCache.Get(ctx, userID.Hex()); err == nil {
			return count, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Printf("ERROR: unread count cache read failed: %v", err)
		}
	}

	count, err := s.messageRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.unreadCache != nil {
		if err := s.unreadCache.Set(ctx, userID.Hex(), count); err != nil {
			log.Printf("ERROR: unread count cache write failed: %v", err)
		}
	}
	return count, nil
}

func (s *messageService) invalidateUnread(ctx context.Context, userID primitive.ObjectID) {
	if s.unreadCache == nil {
		return
	}
	if err := s.unreadCache.Invalidate(ctx, userID.Hex()); err != nil {
		log.Printf("ERROR: unread count cache invalidation failed: %v", err)
	}
}

// Partners derives conversation partners from plan assignments across both
// plan engines, deduplicated and ordered by username.
func (s *messageService) Partners(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	partnerIDs := make(map[primitive.ObjectID]bool)

	if actor.IsCoach() {
		trainingPlans, err := s.trainingPlanRepo.GetByCoachID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range trainingPlans {
			if p.AthleteID != nil {
				partnerIDs[*p.AthleteID] = true
			}
		}
		nutritionPlans, err := s.nutritionPlanRepo.GetByCoachID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range nutritionPlans {
			if p.AthleteID != nil {
				partnerIDs[*p.AthleteID] = true
			}
		}
	} else {
		trainingPlans, err := s.trainingPlanRepo.GetByAthleteID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range trainingPlans {
			partnerIDs[p.CoachID] = true
		}
		nutritionPlans, err := s.nutritionPlanRepo.GetByAthleteID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range nutritionPlans {
			partnerIDs[p.CoachID] = true
		}
	}

	partners := make([]domain.User, 0, len(partnerIDs))
	for id := range partnerIDs {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue // Stale assignment; skip silently.
			}
			return nil, err
		}
		user.PasswordHash = ""
		partners = append(partners, *user)
	}
	sort.Slice(partners, func(i, j int) bool {
		return partners[i].Username < partners[j].Username
	})
	return partners, nil
}
