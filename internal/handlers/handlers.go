// Package handlers serves the admin screens. Every screen reads its data
// from the backend with the signed-in user's token.
package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"project-tracker/internal/access"
	"project-tracker/internal/apiclient"
	"project-tracker/internal/session"
	"project-tracker/internal/validation"
)

type Handler struct {
	api      *apiclient.Client
	log      *zap.Logger
	pageSize int
	now      func() time.Time
}

func New(api *apiclient.Client, log *zap.Logger, pageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Handler{api: api, log: log, pageSize: pageSize, now: time.Now}
}

// client returns the backend client for the signed-in user. The routes
// using it all sit behind RequireAuth.
func (h *Handler) client(c *gin.Context) *apiclient.Client {
	s, _ := session.From(c)
	return s.Client(h.api)
}

func currentSession(c *gin.Context) session.Session {
	s, _ := session.From(c)
	return s
}

func viewer(c *gin.Context) access.Viewer {
	return currentSession(c).Viewer()
}

func formValues(c *gin.Context, fields ...string) validation.Values {
	v := validation.Values{}
	for _, f := range fields {
		v[f] = strings.TrimSpace(c.PostForm(f))
	}
	return v
}

// listQuery is the list state the form was opened from, carried in a
// hidden field so the list renders the same way after a mutation.
func listQuery(c *gin.Context) url.Values {
	v, err := url.ParseQuery(c.PostForm("_list"))
	if err != nil {
		return url.Values{}
	}
	return v
}

// fail reports a backend failure as a banner and sends the user back to
// where they came from.
func (h *Handler) fail(c *gin.Context, err error, fallback, redirect string) {
	h.logFailure(c, err)
	session.AddFlash(c, session.FlashError, apiclient.UserMessage(err, fallback))
	c.Redirect(http.StatusFound, redirect)
}

// deny is the permission branch: banner, no backend call.
func deny(c *gin.Context, redirect string) {
	session.AddFlash(c, session.FlashError, "You don't have permission to do that")
	c.Redirect(http.StatusFound, redirect)
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func (h *Handler) logFailure(c *gin.Context, err error) {
	h.log.Warn("backend request failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString("RequestID")),
		zap.Error(err),
	)
}
