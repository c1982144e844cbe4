package middleware

import (
	"github.com/gin-gonic/gin"

	"project-tracker/internal/session"
)

// InjectSession loads the identity from the cookie once per request.
func InjectSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := session.Load(c); ok {
			session.Set(c, s)
		}
		c.Next()
	}
}
