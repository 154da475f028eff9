package handler

import (
	"net/http"

	"automarket/chat/internal/chat"
	"automarket/chat/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// SendMessageInput is a new message. Kind defaults to text.
type SendMessageInput struct {
	Body               string             `json:"body" example:"Is the car still available?"`
	Kind               models.MessageKind `json:"kind" example:"text" enums:"text,image,entity_reference"`
	AttachmentURL      *string            `json:"attachment_url"`
	ReferencedEntityID *uint              `json:"referenced_entity_id"`
}

// MarkReadResponse reports how many messages changed state.
type MarkReadResponse struct {
	Count int64 `json:"count" example:"3"`
}

// UnreadResponse is the unread count of one room.
type UnreadResponse struct {
	Unread int64 `json:"unread" example:"2"`
}

// endregion

// ListMessages godoc
// @Summary      Read a room's history
// @Description  Returns a page of messages ordered oldest to newest. Without a cursor the latest page is returned.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      int     true   "Room ID"
// @Param        cursor     query     string  false  "Opaque cursor from a previous page"
// @Param        direction  query     string  false  "before (older, default) or after (newer)"
// @Param        limit      query     int     false  "Page size" default(20)
// @Success      200        {object}  chat.MessagePageView
// @Failure      400        {object}  ErrorResponse
// @Failure      401        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      422        {object}  ErrorResponse
// @Router       /rooms/{id}/messages [get]
func (h *Handler) ListMessages(c *gin.Context) {
	roomID, ok := uintParam(c, "id", "room ID")
	if !ok {
		return
	}
	page, err := h.chat.Messages(c.Request.Context(), principal(c), roomID, chat.PageRequest{
		Cursor:    c.Query("cursor"),
		Limit:     queryInt(c, "limit", 20),
		Direction: chat.Direction(c.Query("direction")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// SendMessage godoc
// @Summary      Send a message
// @Description  Appends a message to the room and pushes it to the other members' live sessions.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int               true  "Room ID"
// @Param        input body      SendMessageInput  true  "Message"
// @Success      201   {object}  chat.MessageView
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Router       /rooms/{id}/messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	roomID, ok := uintParam(c, "id", "room ID")
	if !ok {
		return
	}
	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.chat.SendMessage(c.Request.Context(), principal(c), roomID, chat.AppendInput{
		Body:               input.Body,
		Kind:               input.Kind,
		AttachmentURL:      input.AttachmentURL,
		ReferencedEntityID: input.ReferencedEntityID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// MarkRead godoc
// @Summary      Mark a room as read
// @Description  Marks every message the caller received in the room so far as read.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Room ID"
// @Success      200  {object}  MarkReadResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /rooms/{id}/read [post]
func (h *Handler) MarkRead(c *gin.Context) {
	roomID, ok := uintParam(c, "id", "room ID")
	if !ok {
		return
	}
	n, err := h.chat.MarkRead(c.Request.Context(), principal(c), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MarkReadResponse{Count: n})
}

// UnreadCount godoc
// @Summary      Unread count of a room
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Room ID"
// @Success      200  {object}  UnreadResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /rooms/{id}/unread [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	roomID, ok := uintParam(c, "id", "room ID")
	if !ok {
		return
	}
	n, err := h.chat.UnreadCount(c.Request.Context(), principal(c), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, UnreadResponse{Unread: n})
}
