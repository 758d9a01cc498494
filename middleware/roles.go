package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-learning-backend/models"
)

// RequireRoles lets the request through only when the caller has one of roles.
// It must run after AuthMiddleware.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
			return
		}

		for _, allowed := range roles {
			if role == string(allowed) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
	}
}

// RequireSelfOrAdmin rejects requests whose path parameter param names another
// user, unless the caller is an admin.
func RequireSelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAdmin(c) {
			c.Next()
			return
		}
		if c.Param(param) == "" || c.Param(param) != c.GetString("user_id") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You can only access your own resources"})
			return
		}
		c.Next()
	}
}
