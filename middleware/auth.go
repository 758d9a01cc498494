package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/services"
)

type claimsKey struct{}

// TokenVerifier is satisfied by *services.SessionService.
type TokenVerifier interface {
	Verify(token string) (*services.Claims, error)
}

// AuthMiddleware requires a valid "Bearer <token>" Authorization header.
// A missing or malformed header answers 401, a bad or expired token 403.
func AuthMiddleware(sessions TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be Bearer <token>"})
			return
		}

		claims, err := sessions.Verify(parts[1])
		if err != nil {
			status := http.StatusForbidden
			if errors.Is(err, services.ErrUnauthenticated) {
				status = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(status, gin.H{"error": "Invalid or expired token"})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller's identity when a valid token is
// present and lets anonymous requests through otherwise.
func OptionalAuthMiddleware(sessions TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if claims, err := sessions.Verify(parts[1]); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *services.Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("email", claims.Email)
	c.Set("role", claims.Role)
	c.Set("claims", claims)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), claimsKey{}, claims))
}

// ClaimsFromContext returns the claims AuthMiddleware attached to the request context.
func ClaimsFromContext(ctx context.Context) (*services.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*services.Claims)
	return claims, ok
}

// CurrentUserID returns the authenticated caller's id.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString("role") == string(models.RoleAdmin)
}
