package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Errors travel as {"msg": "..."}; the admin UI shows msg as is.
func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"msg": msg})
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"msg": msg})
}

func (s *Server) dbError(c *gin.Context, err error, what string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, what+" not found")
		return
	}
	s.log.Error("database error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	fail(c, http.StatusInternalServerError, "Internal server error")
}

func idParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		fail(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(n), true
}
