package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"project-tracker/internal/apiclient"
	"project-tracker/internal/session"
)

func (h *Handler) Index(c *gin.Context) {
	if _, ok := session.From(c); ok {
		c.Redirect(http.StatusFound, "/projects")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) ShowLogin(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{"error": ""})
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "login.html", gin.H{"error": "Invalid form data"})
		return
	}

	form.Username = strings.TrimSpace(form.Username)
	if form.Username == "" || form.Password == "" {
		render(c, http.StatusBadRequest, "login.html", gin.H{
			"error":    "Username and password are required",
			"username": form.Username,
		})
		return
	}

	resp, err := h.api.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		status := http.StatusBadGateway
		if apiclient.IsStatus(err, http.StatusUnauthorized) || apiclient.IsStatus(err, http.StatusBadRequest) {
			status = http.StatusUnauthorized
		}
		render(c, status, "login.html", gin.H{
			"error":    apiclient.UserMessage(err, "Invalid username or password"),
			"username": form.Username,
		})
		return
	}

	if err := session.Save(c, session.FromLogin(resp)); err != nil {
		h.log.Error("save session", zap.Error(err))
		render(c, http.StatusInternalServerError, "login.html", gin.H{"error": "Could not start session"})
		return
	}

	c.Redirect(http.StatusFound, "/projects")
}

func (h *Handler) Logout(c *gin.Context) {
	_ = session.Clear(c)
	c.Redirect(http.StatusFound, "/login")
}
