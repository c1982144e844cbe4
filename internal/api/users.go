package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"project-tracker/internal/access"
	"project-tracker/internal/models"
	"project-tracker/internal/validation"
)

func (s *Server) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	var u models.User
	err := s.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		s.dbError(c, err, "User")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		fail(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		s.log.Error("issue token", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.log.Info("user logged in", zap.String("username", u.Username), zap.String("role", string(u.Role)))
	c.JSON(http.StatusOK, models.LoginResponse{Token: token, User: u})
}

func (s *Server) ListUsers(c *gin.Context) {
	q := s.db.Order("name asc")
	if raw := c.Query("role"); raw != "" {
		role := models.ParseRole(raw)
		if !role.Valid() {
			fail(c, http.StatusBadRequest, "Role is invalid")
			return
		}
		q = q.Where("role = ?", role)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		s.dbError(c, err, "Users")
		return
	}
	if err := s.withCounts(users); err != nil {
		s.dbError(c, err, "Users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) GetUser(c *gin.Context) {
	u, ok := s.loadUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) CreateUser(c *gin.Context) {
	var in models.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !check(c, userValues(in), validation.UserRules(true)) {
		return
	}

	var n int64
	if err := s.db.Model(&models.User{}).Where("sap = ?", in.SAP).Count(&n).Error; err != nil {
		s.dbError(c, err, "User")
		return
	}
	if n > 0 {
		fail(c, http.StatusConflict, "SAP already exists")
		return
	}
	if !s.usernameFree(c, in.Username, 0) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error("hash password", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	u := models.User{SAP: in.SAP, PasswordHash: string(hash)}
	applyUser(&u, in)
	if err := s.db.Create(&u).Error; err != nil {
		s.dbError(c, err, "User")
		return
	}
	s.log.Info("user created", zap.Int64("sap", u.SAP), zap.String("by", currentClaims(c).Name))
	c.JSON(http.StatusCreated, u)
}

// UpdateUser keeps the SAP from the path; the password changes only when
// a new one is sent.
func (s *Server) UpdateUser(c *gin.Context) {
	u, ok := s.loadUser(c)
	if !ok {
		return
	}
	var in models.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.SAP = u.SAP
	if !check(c, userValues(in), validation.UserRules(false)) {
		return
	}
	if !s.usernameFree(c, in.Username, u.SAP) {
		return
	}

	applyUser(u, in)
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			s.log.Error("hash password", zap.Error(err))
			fail(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		u.PasswordHash = string(hash)
	}
	if err := s.db.Save(u).Error; err != nil {
		s.dbError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) DeleteUser(c *gin.Context) {
	u, ok := s.loadUser(c)
	if !ok {
		return
	}
	if err := access.CanDeleteUser(*u); err != nil {
		fail(c, http.StatusConflict, err.Error())
		return
	}
	if err := s.db.Delete(&models.User{}, "sap = ?", u.SAP).Error; err != nil {
		s.dbError(c, err, "User")
		return
	}
	s.log.Info("user deleted", zap.Int64("sap", u.SAP), zap.String("by", currentClaims(c).Name))
	c.JSON(http.StatusOK, gin.H{"msg": "User deleted"})
}

func applyUser(u *models.User, in models.UserInput) {
	u.Name = strings.TrimSpace(in.Name)
	u.Username = strings.TrimSpace(in.Username)
	u.Role = models.ParseRole(string(in.Role))
	u.Position = models.ParsePosition(string(in.Position))
	if u.Role == models.RoleAdmin {
		u.Position = ""
	}
}

func (s *Server) usernameFree(c *gin.Context, username string, self int64) bool {
	var n int64
	err := s.db.Model(&models.User{}).
		Where("username = ? AND sap <> ?", strings.TrimSpace(username), self).
		Count(&n).Error
	if err != nil {
		s.dbError(c, err, "User")
		return false
	}
	if n > 0 {
		fail(c, http.StatusConflict, "Username already exists")
		return false
	}
	return true
}

func (s *Server) loadUser(c *gin.Context) (*models.User, bool) {
	sap, err := strconv.ParseInt(c.Param("sap"), 10, 64)
	if err != nil || sap <= 0 {
		fail(c, http.StatusBadRequest, "Invalid SAP")
		return nil, false
	}
	var u models.User
	if err := s.db.First(&u, "sap = ?", sap).Error; err != nil {
		s.dbError(c, err, "User")
		return nil, false
	}
	users := []models.User{u}
	if err := s.withCounts(users); err != nil {
		s.dbError(c, err, "User")
		return nil, false
	}
	return &users[0], true
}

type workCount struct {
	AssignedTo int64
	N          int64
}

// withCounts fills totalProjects and totalTasks.
func (s *Server) withCounts(users []models.User) error {
	projects, err := s.countBy(&models.Project{})
	if err != nil {
		return err
	}
	tasks, err := s.countBy(&models.Task{})
	if err != nil {
		return err
	}
	for i := range users {
		users[i].TotalProjects = projects[users[i].SAP]
		users[i].TotalTasks = tasks[users[i].SAP]
	}
	return nil
}

func (s *Server) countBy(model any) (map[int64]int64, error) {
	var rows []workCount
	err := s.db.Model(model).
		Select("assigned_to, count(*) AS n").
		Group("assigned_to").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int64, len(rows))
	for _, r := range rows {
		out[r.AssignedTo] = r.N
	}
	return out, nil
}
