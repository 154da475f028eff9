package handler

import (
	"net/http"
	"strings"

	"automarket/chat/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// SetRoomActiveInput opens or closes a room.
type SetRoomActiveInput struct {
	Active *bool `json:"active" binding:"required" example:"false"`
}

// PaginatedUserResponse defines the structure for a paginated list of users.
type PaginatedUserResponse struct {
	Data []UserResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// endregion

// ListUsers godoc
// @Summary      List accounts
// @Description  Lists accounts for moderation, optionally only those awaiting approval. Staff only.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        q        query     string  false  "Search by name or email"
// @Param        pending  query     bool    false  "Only accounts awaiting approval"
// @Param        page     query     int     false  "Page number" default(1)
// @Param        limit    query     int     false  "Items per page" default(20)
// @Success      200      {object}  PaginatedUserResponse
// @Failure      403      {object}  ErrorResponse
// @Router       /admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c, 20)

	query := h.db.WithContext(c.Request.Context()).Model(&models.User{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if c.Query("pending") == "true" {
		query = query.Where("approved = ? AND role = ?", false, models.RoleMember)
	}

	result, err := Paginate[models.User](query.Order("id"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	users := make([]UserResponse, 0, len(result.Data))
	for _, u := range result.Data {
		users = append(users, newUserResponse(u))
	}
	c.JSON(http.StatusOK, PaginatedResponse[UserResponse]{Data: users, Meta: result.Meta})
}

// ApproveUser godoc
// @Summary      Approve an account
// @Description  Lets a member start conversations and attaches them to the general sellers chat. Staff only.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  UserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/users/{id}/approve [post]
func (h *Handler) ApproveUser(c *gin.Context) {
	userID, ok := uintParam(c, "id", "user ID")
	if !ok {
		return
	}
	user, err := h.chat.ApproveUser(c.Request.Context(), principal(c), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*user))
}

// DeleteUser godoc
// @Summary      Delete an account
// @Description  Removes the account from group rooms and closes its private rooms. Past messages stay with a removed sender. Staff only.
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  int  true  "User ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	userID, ok := uintParam(c, "id", "user ID")
	if !ok {
		return
	}
	if err := h.chat.RemoveUser(c.Request.Context(), principal(c), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetRoomActive godoc
// @Summary      Open or close a room
// @Description  An inactive room keeps its history readable but accepts no messages or members. Staff only.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true  "Room ID"
// @Param        input body      SetRoomActiveInput  true  "State"
// @Success      200   {object}  chat.RoomView
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /admin/rooms/{id}/active [put]
func (h *Handler) SetRoomActive(c *gin.Context) {
	roomID, ok := uintParam(c, "id", "room ID")
	if !ok {
		return
	}
	var input SetRoomActiveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.chat.SetRoomActive(c.Request.Context(), principal(c), roomID, *input.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// DeleteRoom godoc
// @Summary      Delete a room
// @Description  Deletes a room together with its memberships and messages. Staff only.
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  int  true  "Room ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/rooms/{id} [delete]
func (h *Handler) DeleteRoom(c *gin.Context) {
	roomID, ok := uintParam(c, "id", "room ID")
	if !ok {
		return
	}
	if err := h.chat.DeleteRoom(c.Request.Context(), principal(c), roomID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
