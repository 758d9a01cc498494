package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DBMiddleware exposes db to handlers as c.MustGet("db"), bound to the request context.
func DBMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("db", db.WithContext(c.Request.Context()))
		c.Next()
	}
}
