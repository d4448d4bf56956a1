package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Mohanadsherby/sikhshan-new-repo/internal/chat"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/repositories"
)

const defaultPageSize = 50

// ChatHandler exposes the chat facade over HTTP. The caller's user id
// arrives as a query parameter, already verified upstream.
type ChatHandler struct {
	svc *chat.Service
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// CreateRoom resolves or creates the room for a user pair.
func (h *ChatHandler) CreateRoom(c *gin.Context) {
	var req struct {
		UserAID int64 `json:"user_a_id" binding:"required"`
		UserBID int64 `json:"user_b_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.svc.CreateOrGetRoom(c.Request.Context(), req.UserAID, req.UserBID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// ListRooms returns the user's rooms, newest activity first.
func (h *ChatHandler) ListRooms(c *gin.Context) {
	userID, ok := int64Query(c, "userId")
	if !ok {
		return
	}

	rooms, err := h.svc.RoomsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// GetRoom returns one room after a membership check.
func (h *ChatHandler) GetRoom(c *gin.Context) {
	roomID, ok := int64Param(c, "room_id")
	if !ok {
		return
	}
	userID, ok := int64Query(c, "userId")
	if !ok {
		return
	}

	room, err := h.svc.RoomByID(c.Request.Context(), roomID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// GetRoomByUsers looks up the room for a pair without creating it.
func (h *ChatHandler) GetRoomByUsers(c *gin.Context) {
	userA, ok := int64Query(c, "userA")
	if !ok {
		return
	}
	userB, ok := int64Query(c, "userB")
	if !ok {
		return
	}

	room, err := h.svc.RoomByUsers(c.Request.Context(), userA, userB)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// PostMessage appends a message to a room.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	senderID, ok := int64Query(c, "senderId")
	if !ok {
		return
	}

	var req chat.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.svc.SendMessage(c.Request.Context(), senderID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// GetMessages returns one newest-first page of a room's history.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	roomID, ok := int64Param(c, "room_id")
	if !ok {
		return
	}
	userID, ok := int64Query(c, "userId")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}

	msgs, err := h.svc.Messages(c.Request.Context(), roomID, userID, page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// GetHistory returns the room's full chronological replay.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	roomID, ok := int64Param(c, "room_id")
	if !ok {
		return
	}
	userID, ok := int64Query(c, "userId")
	if !ok {
		return
	}

	msgs, err := h.svc.History(c.Request.Context(), roomID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// DeleteMessage soft-deletes a message, sender only.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := int64Param(c, "message_id")
	if !ok {
		return
	}
	userID, ok := int64Query(c, "userId")
	if !ok {
		return
	}

	msg, err := h.svc.DeleteMessage(c.Request.Context(), messageID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// MarkRead flips unread peer messages in the room.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	roomID, ok := int64Param(c, "room_id")
	if !ok {
		return
	}
	userID, ok := int64Query(c, "userId")
	if !ok {
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), roomID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// UnreadCount reports how many messages await the caller in the room.
func (h *ChatHandler) UnreadCount(c *gin.Context) {
	roomID, ok := int64Param(c, "room_id")
	if !ok {
		return
	}
	userID, ok := int64Query(c, "userId")
	if !ok {
		return
	}

	count, err := h.svc.UnreadCount(c.Request.Context(), roomID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkOnline records the user as online.
func (h *ChatHandler) MarkOnline(c *gin.Context) {
	userID, ok := int64Param(c, "user_id")
	if !ok {
		return
	}
	h.svc.MarkOnline(c.Request.Context(), userID)
	c.Status(http.StatusOK)
}

// MarkOffline records the user as offline.
func (h *ChatHandler) MarkOffline(c *gin.Context) {
	userID, ok := int64Param(c, "user_id")
	if !ok {
		return
	}
	h.svc.MarkOffline(c.Request.Context(), userID)
	c.Status(http.StatusOK)
}

// TouchLastSeen refreshes the user's last-seen timestamp.
func (h *ChatHandler) TouchLastSeen(c *gin.Context) {
	userID, ok := int64Param(c, "user_id")
	if !ok {
		return
	}
	h.svc.TouchLastSeen(c.Request.Context(), userID)
	c.Status(http.StatusOK)
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

func int64Query(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

// respondError maps facade and repository errors to HTTP statuses. Anything
// unrecognized is an internal error with no detail leaked.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repositories.ErrRoomNotFound),
		errors.Is(err, repositories.ErrMessageNotFound),
		errors.Is(err, repositories.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrNotRoomMember),
		errors.Is(err, chat.ErrNotMessageSender):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrSelfRoom),
		errors.Is(err, chat.ErrContentRequired),
		errors.Is(err, chat.ErrUnknownMessageType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
