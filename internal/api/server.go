// Package api is the reference REST backend the admin UI talks to.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-tracker/internal/middleware"
	"project-tracker/internal/models"
)

type Server struct {
	db     *gorm.DB
	tokens *Tokens
	log    *zap.Logger
	now    func() time.Time
}

func NewServer(db *gorm.DB, tokens *Tokens, log *zap.Logger) *Server {
	return &Server{db: db, tokens: tokens, log: log, now: time.Now}
}

func NewRouter(s *Server, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(s.log))
	r.Use(middleware.Recovery(s.log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "project-tracker-api"})
	})
	r.POST("/login", s.Login)

	auth := r.Group("/", Authenticate(s.tokens))
	admin := auth.Group("/", RequireAdmin())

	auth.GET("/users", s.ListUsers)
	auth.GET("/users/:sap", s.GetUser)
	admin.POST("/users", s.CreateUser)
	admin.PATCH("/users/:sap", s.UpdateUser)
	admin.DELETE("/users/:sap", s.DeleteUser)

	auth.GET("/projects", s.ListProjects)
	admin.GET("/projects/download", s.DownloadProjects)
	auth.GET("/projects/:id", s.GetProject)
	auth.GET("/projects/:id/tasks", s.ListProjectTasks)
	auth.POST("/projects", s.CreateProject)
	auth.PATCH("/projects/:id", s.UpdateProject)
	auth.DELETE("/projects/:id", s.DeleteProject)

	auth.GET("/tasks/:id", s.GetTask)
	auth.POST("/tasks", s.CreateTask)
	auth.PATCH("/tasks/:id", s.UpdateTask)
	auth.DELETE("/tasks/:id", s.DeleteTask)

	for _, kind := range models.ReferenceKinds {
		path := "/" + string(kind)
		auth.GET(path, s.ListReference(kind))
		admin.POST(path, s.CreateReference(kind))
		admin.PATCH(path+"/:id", s.UpdateReference(kind))
		admin.DELETE(path+"/:id", s.DeleteReference(kind))
	}

	return r
}
