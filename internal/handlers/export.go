package handlers

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"project-tracker/internal/session"
	"project-tracker/internal/validation"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DownloadProjects streams the backend's spreadsheet of projects planned
// to start within [start, end]. Admin only; the route is guarded.
func (h *Handler) DownloadProjects(c *gin.Context) {
	start := c.Query("start")
	end := c.Query("end")
	back := "/projects"

	s, ok1 := validation.ParseDate(start)
	e, ok2 := validation.ParseDate(end)
	switch {
	case !ok1 || !ok2:
		session.AddFlash(c, session.FlashError, "Start and end dates are required")
		c.Redirect(http.StatusFound, back)
		return
	case s.After(e):
		session.AddFlash(c, session.FlashError, "Start date must be before end date")
		c.Redirect(http.StatusFound, back)
		return
	}

	export, err := h.client(c).DownloadProjects(c.Request.Context(), start, end)
	if err != nil {
		h.fail(c, err, "Failed to download projects", back)
		return
	}

	contentType := export.ContentType
	if contentType == "" {
		contentType = xlsxContentType
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename}))
	c.Data(http.StatusOK, contentType, export.Data)
}
