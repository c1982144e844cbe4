package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-tracker/internal/access"
	"project-tracker/internal/database"
	"project-tracker/internal/models"
	"project-tracker/internal/validation"
)

func withProjectRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("User").
		Preload("Type").
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Tasks.User").
		Preload("Tasks.Group").
		Preload("Tasks.Platform")
}

// ListProjects returns every project; visibility is decided by the client.
func (s *Server) ListProjects(c *gin.Context) {
	var projects []models.Project
	if err := withProjectRelations(s.db).Order("id asc").Find(&projects).Error; err != nil {
		s.dbError(c, err, "Projects")
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (s *Server) GetProject(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var p models.Project
	err := withProjectRelations(s.db).
		Preload("UpdateHistory", func(db *gorm.DB) *gorm.DB { return db.Order("updated_at desc") }).
		First(&p, id).Error
	if err != nil {
		s.dbError(c, err, "Project")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) CreateProject(c *gin.Context) {
	claims := currentClaims(c)
	if !access.Projects.CanAdd(claims.Viewer()) {
		fail(c, http.StatusForbidden, "You don't have permission to add projects")
		return
	}
	var in models.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	ownProject(claims, &in)
	if !check(c, projectValues(in), validation.ProjectRules(claims.Role)) {
		return
	}

	p := models.Project{Status: models.StatusToDo, CreatedBy: claims.Name}
	if !s.applyProject(c, &p, in) {
		return
	}
	if err := s.db.Omit("User", "Type").Create(&p).Error; err != nil {
		s.dbError(c, err, "Project")
		return
	}
	s.log.Info("project created", zap.Uint("id", p.ID), zap.String("by", claims.Name))
	c.JSON(http.StatusCreated, p)
}

// UpdateProject records every changed field as one update-history entry.
func (s *Server) UpdateProject(c *gin.Context) {
	claims := currentClaims(c)
	p, ok := s.loadProject(c)
	if !ok {
		return
	}
	if !access.Projects.Resolve(claims.Viewer(), access.ProjectRecord(*p)).CanEdit {
		fail(c, http.StatusForbidden, "You don't have permission to edit this project")
		return
	}
	var in models.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	editProject(claims, &in, *p)
	if !check(c, projectValues(in), validation.ProjectRules(claims.Role)) {
		return
	}

	before := projectSnapshot(*p)
	if !s.applyProject(c, p, in) {
		return
	}
	p.UpdatedBy = claims.Name
	changes := diff(projectFields, before, projectSnapshot(*p))

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "Type", "Tasks", "UpdateHistory").Save(p).Error; err != nil {
			return err
		}
		return database.RecordProjectHistory(tx, p.ID, changes, claims.Name)
	})
	if err != nil {
		s.dbError(c, err, "Project")
		return
	}
	s.log.Info("project updated", zap.Uint("id", p.ID), zap.Int("changes", len(changes)), zap.String("by", claims.Name))
	c.JSON(http.StatusOK, p)
}

// DeleteProject removes the project with its tasks and their history.
func (s *Server) DeleteProject(c *gin.Context) {
	claims := currentClaims(c)
	p, ok := s.loadProject(c)
	if !ok {
		return
	}
	if !access.Projects.Resolve(claims.Viewer(), access.ProjectRecord(*p)).CanDelete {
		fail(c, http.StatusForbidden, "You don't have permission to delete this project")
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		tasks := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", p.ID)
		if err := tx.Where("task_id IN (?)", tasks).Delete(&models.HistoryEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", p.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", p.ID).Delete(&models.HistoryEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, p.ID).Error
	})
	if err != nil {
		s.dbError(c, err, "Project")
		return
	}
	s.log.Info("project deleted", zap.Uint("id", p.ID), zap.String("by", claims.Name))
	c.JSON(http.StatusOK, gin.H{"msg": "Project deleted"})
}

func (s *Server) loadProject(c *gin.Context) (*models.Project, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}
	var p models.Project
	if err := s.db.Preload("User").Preload("Type").First(&p, id).Error; err != nil {
		s.dbError(c, err, "Project")
		return nil, false
	}
	return &p, true
}

// ownProject pins non-admins to their own assignment.
func ownProject(claims *Claims, in *models.ProjectInput) {
	if claims.Role == models.RoleAdmin {
		return
	}
	in.AssignedTo = claims.SAP
	in.AssignedToGroup = claims.Role
}

// editProject keeps an edit made through oversight on the current assignee;
// owners stay pinned to themselves.
func editProject(claims *Claims, in *models.ProjectInput, p models.Project) {
	if claims.Role == models.RoleAdmin {
		return
	}
	if p.AssignedTo != claims.SAP {
		in.AssignedTo = p.AssignedTo
		in.AssignedToGroup = p.AssignedToGroup
		return
	}
	ownProject(claims, in)
}

// applyProject copies validated input onto p and resolves the assignee and
// project type rows.
func (s *Server) applyProject(c *gin.Context, p *models.Project, in models.ProjectInput) bool {
	user, ok := s.assigneeRow(c, in.AssignedTo)
	if !ok {
		return false
	}
	typ, ok := s.referenceRow(c, models.KindProjectType, in.TypeID)
	if !ok {
		return false
	}

	p.Name = strings.TrimSpace(in.Name)
	p.TypeID = typ.ID
	p.Type = typ
	p.AssignedTo = user.SAP
	p.User = user
	p.AssignedToGroup = models.ParseRole(string(in.AssignedToGroup))
	p.Level = models.ParseEffortLevel(string(in.Level))
	p.ReqDate = date(in.ReqDate)
	p.PlanStartDate = date(in.PlanStartDate)
	p.PlanEndDate = date(in.PlanEndDate)
	p.LiveDate = optionalDate(in.LiveDate)
	p.Remark = strings.TrimSpace(in.Remark)
	return true
}

func (s *Server) assigneeRow(c *gin.Context, sap int64) (*models.User, bool) {
	var u models.User
	err := s.db.First(&u, "sap = ?", sap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusBadRequest, "Assigned user not found")
		return nil, false
	}
	if err != nil {
		s.dbError(c, err, "User")
		return nil, false
	}
	return &u, true
}

func (s *Server) referenceRow(c *gin.Context, kind models.ReferenceKind, id uint) (*models.ReferenceItem, bool) {
	var item models.ReferenceItem
	err := s.db.First(&item, "id = ? AND kind = ?", id, kind).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusBadRequest, kind.Title()+" not found")
		return nil, false
	}
	if err != nil {
		s.dbError(c, err, kind.Title())
		return nil, false
	}
	return &item, true
}
