package handler

import (
	"net/http"
	"strconv"

	"automarket/chat/internal/auth"
	"automarket/chat/internal/chat"
	"automarket/chat/pkg/jwt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler serves the HTTP and push API on top of the chat service.
type Handler struct {
	db     *gorm.DB
	chat   *chat.Service
	tokens *jwt.Manager
}

// New returns a Handler.
func New(db *gorm.DB, svc *chat.Service, tokens *jwt.Manager) *Handler {
	return &Handler{db: db, chat: svc, tokens: tokens}
}

func principal(c *gin.Context) chat.Principal {
	p, _ := auth.Principal(c)
	return p
}

// uintParam parses a positive id path parameter, answering 400 when it is not one.
func uintParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label})
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return n
}
