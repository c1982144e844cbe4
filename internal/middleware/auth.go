package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-tracker/internal/models"
	"project-tracker/internal/session"
)

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := session.From(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole lets only the listed roles through. Others are sent back to
// the projects page with a banner instead of a bare 403.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	roleSet := map[models.Role]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		s, ok := session.From(c)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if _, ok := roleSet[s.Role]; !ok {
			session.AddFlash(c, session.FlashError, "You don't have permission to access that page")
			c.Redirect(http.StatusFound, "/projects")
			c.Abort()
			return
		}
		c.Next()
	}
}
