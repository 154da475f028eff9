package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"automarket/chat/internal/chat"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// respondError maps chat error kinds onto HTTP statuses. Unknown errors are
// logged and answered with a bare 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	case errors.Is(err, chat.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "you are not part of this conversation"})
	case errors.Is(err, chat.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": detail(err, chat.ErrForbidden)})
	case errors.Is(err, chat.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": detail(err, chat.ErrConflict)})
	case errors.Is(err, chat.ErrInvalidArgument):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": detail(err, chat.ErrInvalidArgument)})
	default:
		slog.Error("handler: request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// detail strips the sentinel prefix so clients see "message is empty" rather
// than "chat: invalid argument: message is empty".
func detail(err, kind error) string {
	msg := strings.TrimPrefix(err.Error(), kind.Error()+": ")
	if msg == kind.Error() {
		return strings.TrimPrefix(msg, "chat: ")
	}
	return msg
}
