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

// MessageHandler holds the message service dependency.
type MessageHandler struct {
	messageService service.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// --- DTOs for API (Data Transfer Objects) ---

type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

type MessageResponse struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unreadCount"`
}

// MapMessageToResponse converts a domain.Message to its DTO.
func MapMessageToResponse(m *domain.Message) MessageResponse {
	if m == nil {
		return MessageResponse{}
	}
	return MessageResponse{
		ID:         m.ID.Hex(),
		SenderID:   m.SenderID.Hex(),
		ReceiverID: m.ReceiverID.Hex(),
		Content:    m.Content,
		Read:       m.Read,
		CreatedAt:  m.CreatedAt,
	}
}

// MapMessagesToResponse converts a slice of messages to DTOs.
func MapMessagesToResponse(messages []domain.Message) []MessageResponse {
	responses := make([]MessageResponse, len(messages))
	for i := range messages {
		responses[i] = MapMessageToResponse(&messages[i])
	}
	return responses
}

// --- Handler Methods ---

// SendMessage appends a message and returns the sender's refreshed message set,
// so the client re-renders from canonical state instead of patching locally.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	receiverID, err := primitive.ObjectIDFromHex(req.ReceiverID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid receiver ID format.")
		return
	}

	senderID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	messages, err := h.messageService.Send(c.Request.Context(), senderID, receiverID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage), errors.Is(err, service.ErrSelfMessage):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUnknownPartner):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to send message.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapMessagesToResponse(messages))
}

// ListMessages returns every message the caller sent or received, oldest first.
// Conversation grouping happens client side.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	userID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	messages, err := h.messageService.Fetch(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load messages.")
		return
	}

	c.JSON(http.StatusOK, MapMessagesToResponse(messages))
}

// MarkConversationRead marks everything the other party sent to the caller as
// read and returns the refreshed unread count.
func (h *MessageHandler) MarkConversationRead(c *gin.Context) {
	otherPartyID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}

	viewerID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	count, err := h.messageService.MarkAsRead(c.Request.Context(), viewerID, otherPartyID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to mark conversation as read.")
		return
	}

	c.JSON(http.StatusOK, UnreadCountResponse{UnreadCount: count})
}

// UnreadCount returns the number of unread messages addressed to the caller.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, err := getObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	count, err := h.messageService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load unread count.")
		return
	}

	c.JSON(http.StatusOK, UnreadCountResponse{UnreadCount: count})
}

// ListPartners returns the caller's conversation partners, derived from plan
// assignments rather than stored conversation records.
func (h *MessageHandler) ListPartners(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	partners, err := h.messageService.Partners(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load conversation partners.")
		return
	}

	c.JSON(http.StatusOK, MapUsersToResponse(partners))
}
