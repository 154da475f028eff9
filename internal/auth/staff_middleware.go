package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StaffMiddleware creates a gin middleware to check for the staff role.
// It must be used AFTER AuthMiddleware.
func StaffMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			// This should not happen if AuthMiddleware is used before it
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		if !p.IsStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
			return
		}

		c.Next()
	}
}
