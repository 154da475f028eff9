package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"automarket/chat/internal/chat"
	"automarket/chat/internal/models"
	"automarket/chat/pkg/jwt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	userIDKey    = "userID"
	userKey      = "user"
	principalKey = "principal"
)

// AuthMiddleware requires a valid bearer token belonging to an active account.
// Browsers cannot set headers on EventSource or WebSocket requests, so the
// token may also arrive in the "token" query parameter.
func AuthMiddleware(db *gorm.DB, tokens *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			return
		}

		claims, err := tokens.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		var user models.User
		err = db.WithContext(c.Request.Context()).First(&user, userID).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				slog.Error("auth: load user", "user_id", userID, "error", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account is disabled"})
			return
		}

		c.Set(userIDKey, user.ID)
		c.Set(userKey, user)
		c.Set(principalKey, chat.PrincipalFor(user))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}

// Principal returns the caller stored by AuthMiddleware.
func Principal(c *gin.Context) (chat.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return chat.Principal{}, false
	}
	p, ok := v.(chat.Principal)
	return p, ok
}

// CurrentUser returns the account stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

// UserID returns the caller's id, or 0 when unauthenticated.
func UserID(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}
