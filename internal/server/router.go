package server

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"project-tracker/internal/config"
	"project-tracker/internal/handlers"
	"project-tracker/internal/middleware"
	"project-tracker/internal/models"
	"project-tracker/internal/web"
)

// Deps is what the admin UI router is built from.
type Deps struct {
	Config   *config.Config
	Handler  *handlers.Handler
	Logger   *zap.Logger
	Registry *prometheus.Registry
}

func NewRouter(d Deps) (*gin.Engine, error) {
	r := gin.New()

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	metrics := middleware.NewMetrics(d.Registry, "tracker_ui")
	r.Use(
		middleware.RequestID(),
		middleware.Logger(d.Logger),
		middleware.Recovery(d.Logger),
		metrics.Handler(),
	)

	store := cookie.NewStore([]byte(d.Config.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 86400 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("tracker_session", store))

	r.Use(middleware.InjectSession())

	h := d.Handler

	r.GET("/", h.Index)

	// AUTH
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth())

	// PROJECTS
	auth.GET("/projects", h.ListProjects)
	auth.GET("/projects/kanban", h.Kanban)
	auth.GET("/projects/new", h.ShowNewProject)
	auth.POST("/projects", h.CreateProject)
	auth.POST("/projects/validate", h.ValidateProject)
	auth.GET("/projects/download",
		middleware.RequireRole(models.RoleAdmin),
		h.DownloadProjects,
	)
	auth.GET("/projects/:id", h.ShowProject)
	auth.GET("/projects/:id/edit", h.ShowEditProject)
	auth.POST("/projects/:id", h.UpdateProject)
	auth.POST("/projects/:id/delete", h.DeleteProject)

	// TASKS
	auth.GET("/projects/:id/tasks", h.ListTasks)
	auth.GET("/projects/:id/tasks/new", h.ShowNewTask)
	auth.POST("/projects/:id/tasks", h.CreateTask)
	auth.GET("/projects/:id/tasks/:task", h.ShowTask)
	auth.GET("/projects/:id/tasks/:task/edit", h.ShowEditTask)
	auth.POST("/projects/:id/tasks/:task", h.UpdateTask)
	auth.POST("/projects/:id/tasks/:task/delete", h.DeleteTask)

	// USERS, ENGINEERS, ITBPS: admin only
	admin := auth.Group("/")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	for _, sc := range []handlers.UserScreen{handlers.UsersScreen, handlers.EngineersScreen, handlers.ITBPsScreen} {
		admin.GET(sc.Path, h.ListUsers(sc))
		admin.GET(sc.Path+"/new", h.ShowNewUser(sc))
		admin.POST(sc.Path, h.CreateUser(sc))
		admin.GET(sc.Path+"/:sap/edit", h.ShowEditUser(sc))
		admin.POST(sc.Path+"/:sap", h.UpdateUser(sc))
		admin.POST(sc.Path+"/:sap/delete", h.DeleteUser(sc))
	}

	// REFERENCE DATA
	admin.GET("/data/:kind", h.ListReference)
	admin.GET("/data/:kind/new", h.ShowNewReference)
	admin.POST("/data/:kind", h.CreateReference)
	admin.GET("/data/:kind/:id/edit", h.ShowEditReference)
	admin.POST("/data/:kind/:id", h.UpdateReference)
	admin.POST("/data/:kind/:id/delete", h.DeleteReference)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	return r, nil
}
