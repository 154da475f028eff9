package handler

import (
	"net/http"

	"automarket/chat/internal/chat"
	"automarket/chat/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// CreatePrivateRoomInput names the other participant of a private room.
type CreatePrivateRoomInput struct {
	OtherUserID uint `json:"other_user_id" binding:"required" example:"12"`
}

// CreateGroupRoomInput defines a new group room.
type CreateGroupRoomInput struct {
	Name        string `json:"name" binding:"required" example:"Dealers"`
	Description string `json:"description" example:"Announcements for dealer accounts"`
	MemberIDs   []uint `json:"member_ids"`
}

// AddMemberInput names the user to attach.
type AddMemberInput struct {
	UserID uint `json:"user_id" binding:"required" example:"12"`
}

// PaginatedRoomResponse is a page of the caller's rooms.
type PaginatedRoomResponse struct {
	Data []chat.RoomView `json:"data"`
	Meta PaginationMeta  `json:"meta"`
}

// endregion

// ListRooms godoc
// @Summary      List my conversations
// @Description  Lists the rooms the caller belongs to, most recently active first, with latest message and unread count.
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search by room or participant name"
// @Param        kind  query     string  false  "private or group"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(20)
// @Success      200   {object}  PaginatedRoomResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /rooms [get]
func (h *Handler) ListRooms(c *gin.Context) {
	page, limit := pageParams(c, 20)
	rooms, total, err := h.chat.Inbox(c.Request.Context(), principal(c), chat.RoomFilter{
		Query: c.Query("q"),
		Kind:  models.RoomKind(c.Query("kind")),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(rooms, total, page, limit))
}

// RoomStats godoc
// @Summary      Conversation statistics
// @Description  Counts the caller's conversations and unread messages.
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  chat.InboxStats
// @Failure      401  {object}  ErrorResponse
// @Router       /rooms/stats [get]
func (h *Handler) RoomStats(c *gin.Context) {
	stats, err := h.chat.InboxStats(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CreatePrivateRoom godoc
// @Summary      Open a private conversation
// @Description  Returns the private room between the caller and another user, creating it if needed.
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreatePrivateRoomInput true "Counterpart"
// @Success      200  {object}  chat.RoomView "Existing room"
// @Success      201  {object}  chat.RoomView "Created room"
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /rooms/private [post]
func (h *Handler) CreatePrivateRoom(c *gin.Context) {
	var input CreatePrivateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, created, err := h.chat.CreatePrivateRoom(c.Request.Context(), principal(c), input.OtherUserID)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, room)
}

// CreateGroupRoom godoc
// @Summary      Create a group room
// @Description  Creates a named group with the caller and the given members. Staff only.
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreateGroupRoomInput true "Group"
// @Success      201  {object}  chat.RoomView
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /rooms/group [post]
func (h *Handler) CreateGroupRoom(c *gin.Context) {
	var input CreateGroupRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.chat.CreateGroupRoom(c.Request.Context(), principal(c), input.Name, input.Description, input.MemberIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// JoinGeneralRoom godoc
// @Summary      Join the general sellers chat
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  chat.RoomView
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /rooms/general [post]
func (h *Handler) JoinGeneralRoom(c *gin.Context) {
	room, err := h.chat.JoinDefaultGroup(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// GetRoom godoc
// @Summary      Get a room
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Room ID"
// @Success      200  {object}  chat.RoomView
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /rooms/{id} [get]
func (h *Handler) GetRoom(c *gin.Context) {
	roomID, ok := uintParam(c, "id", "room ID")
	if !ok {
		return
	}
	room, err := h.chat.Room(c.Request.Context(), principal(c), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// AddMember godoc
// @Summary      Add a member to a group room
// @Description  Attaches a user to a group room and announces it. Staff only.
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Room ID"
// @Param        input body      AddMemberInput  true  "User"
// @Success      200   {object}  map[string]bool "{"added": true}"
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /rooms/{id}/members [post]
func (h *Handler) AddMember(c *gin.Context) {
	roomID, ok := uintParam(c, "id", "room ID")
	if !ok {
		return
	}
	var input AddMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	added, err := h.chat.AddMember(c.Request.Context(), principal(c), roomID, input.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

// RemoveMember godoc
// @Summary      Remove a member from a group room
// @Description  Detaches a user and ends their live sessions on the room. Staff only.
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int  true  "Room ID"
// @Param        userID  path      int  true  "User ID"
// @Success      200     {object}  map[string]bool "{"removed": true}"
// @Failure      400     {object}  ErrorResponse
// @Failure      403     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      409     {object}  ErrorResponse
// @Router       /rooms/{id}/members/{userID} [delete]
func (h *Handler) RemoveMember(c *gin.Context) {
	roomID, ok := uintParam(c, "id", "room ID")
	if !ok {
		return
	}
	userID, ok := uintParam(c, "userID", "user ID")
	if !ok {
		return
	}

	removed, err := h.chat.RemoveMember(c.Request.Context(), principal(c), roomID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
