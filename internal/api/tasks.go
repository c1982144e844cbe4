package api

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-tracker/internal/access"
	"project-tracker/internal/database"
	"project-tracker/internal/models"
	"project-tracker/internal/validation"
)

func withTaskRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Group").Preload("Platform")
}

func (s *Server) ListProjectTasks(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.db.Select("id").First(&models.Project{}, id).Error; err != nil {
		s.dbError(c, err, "Project")
		return
	}
	var tasks []models.Task
	if err := withTaskRelations(s.db).Where("project_id = ?", id).Order("id asc").Find(&tasks).Error; err != nil {
		s.dbError(c, err, "Tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) GetTask(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var t models.Task
	err := withTaskRelations(s.db).
		Preload("UpdateHistory", func(db *gorm.DB) *gorm.DB { return db.Order("updated_at desc") }).
		First(&t, id).Error
	if err != nil {
		s.dbError(c, err, "Task")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) CreateTask(c *gin.Context) {
	claims := currentClaims(c)
	if !access.Tasks.CanAdd(claims.Viewer()) {
		fail(c, http.StatusForbidden, "You don't have permission to add tasks")
		return
	}
	var in models.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.ProjectID == 0 {
		fail(c, http.StatusBadRequest, "Project is required")
		return
	}
	ownTask(claims, &in)
	if !check(c, taskValues(in), validation.TaskRules(claims.Role)) {
		return
	}
	var project models.Project
	err := s.db.Select("id").First(&project, in.ProjectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusBadRequest, "Project not found")
		return
	}
	if err != nil {
		s.dbError(c, err, "Project")
		return
	}

	t := models.Task{ProjectID: project.ID, CreatedBy: claims.Name}
	if !s.applyTask(c, &t, in) {
		return
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "Group", "Platform").Create(&t).Error; err != nil {
			return err
		}
		return syncProject(tx, t.ProjectID)
	})
	if err != nil {
		s.dbError(c, err, "Task")
		return
	}
	s.log.Info("task created", zap.Uint("id", t.ID), zap.Uint("project", t.ProjectID), zap.String("by", claims.Name))
	c.JSON(http.StatusCreated, t)
}

func (s *Server) UpdateTask(c *gin.Context) {
	claims := currentClaims(c)
	t, ok := s.loadTask(c)
	if !ok {
		return
	}
	if !access.Tasks.Resolve(claims.Viewer(), access.TaskRecord(*t)).CanEdit {
		fail(c, http.StatusForbidden, "You don't have permission to edit this task")
		return
	}
	var in models.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	editTask(claims, &in, *t)
	if !check(c, taskValues(in), validation.TaskRules(claims.Role)) {
		return
	}

	before := taskSnapshot(*t)
	if !s.applyTask(c, t, in) {
		return
	}
	t.UpdatedBy = claims.Name
	changes := diff(taskFields, before, taskSnapshot(*t))

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "Group", "Platform", "UpdateHistory").Save(t).Error; err != nil {
			return err
		}
		if err := database.RecordTaskHistory(tx, t.ID, changes, claims.Name); err != nil {
			return err
		}
		return syncProject(tx, t.ProjectID)
	})
	if err != nil {
		s.dbError(c, err, "Task")
		return
	}
	s.log.Info("task updated", zap.Uint("id", t.ID), zap.Int("changes", len(changes)), zap.String("by", claims.Name))
	c.JSON(http.StatusOK, t)
}

func (s *Server) DeleteTask(c *gin.Context) {
	claims := currentClaims(c)
	t, ok := s.loadTask(c)
	if !ok {
		return
	}
	if !access.Tasks.Resolve(claims.Viewer(), access.TaskRecord(*t)).CanDelete {
		fail(c, http.StatusForbidden, "You don't have permission to delete this task")
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", t.ID).Delete(&models.HistoryEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Task{}, t.ID).Error; err != nil {
			return err
		}
		return syncProject(tx, t.ProjectID)
	})
	if err != nil {
		s.dbError(c, err, "Task")
		return
	}
	s.log.Info("task deleted", zap.Uint("id", t.ID), zap.String("by", claims.Name))
	c.JSON(http.StatusOK, gin.H{"msg": "Task deleted"})
}

func (s *Server) loadTask(c *gin.Context) (*models.Task, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}
	var t models.Task
	if err := withTaskRelations(s.db).First(&t, id).Error; err != nil {
		s.dbError(c, err, "Task")
		return nil, false
	}
	return &t, true
}

func ownTask(claims *Claims, in *models.TaskInput) {
	if claims.Role == models.RoleAdmin {
		return
	}
	in.AssignedTo = claims.SAP
	in.AssignedToGroup = claims.Role
}

func editTask(claims *Claims, in *models.TaskInput, t models.Task) {
	if claims.Role == models.RoleAdmin {
		return
	}
	if t.AssignedTo != claims.SAP {
		in.AssignedTo = t.AssignedTo
		in.AssignedToGroup = t.AssignedToGroup
		return
	}
	ownTask(claims, in)
}

// applyTask copies validated input onto t. Progress is optional on the
// wire; the status always follows it, and the first progress or completion
// stamps the actual dates when the form left them empty.
func (s *Server) applyTask(c *gin.Context, t *models.Task, in models.TaskInput) bool {
	user, ok := s.assigneeRow(c, in.AssignedTo)
	if !ok {
		return false
	}
	group, ok := s.referenceRow(c, models.KindTaskGroup, in.GroupID)
	if !ok {
		return false
	}
	platform, ok := s.referenceRow(c, models.KindPlatform, in.PlatformID)
	if !ok {
		return false
	}

	t.Detail = strings.TrimSpace(in.Detail)
	t.GroupID, t.Group = group.ID, group
	t.PlatformID, t.Platform = platform.ID, platform
	t.AssignedTo, t.User = user.SAP, user
	t.AssignedToGroup = models.ParseRole(string(in.AssignedToGroup))
	t.PlanStartDate = date(in.PlanStartDate)
	t.PlanEndDate = date(in.PlanEndDate)
	if in.ActualStart != nil {
		t.ActualStart = optionalDate(in.ActualStart)
	}
	if in.ActualEnd != nil {
		t.ActualEnd = optionalDate(in.ActualEnd)
	}
	if in.Progress != nil {
		t.Progress = *in.Progress
	}
	t.Status = models.StatusForProgress(t.Progress)
	stampActuals(t, s.now())
	return true
}

func stampActuals(t *models.Task, now time.Time) {
	today := now.UTC().Truncate(24 * time.Hour)
	if t.Progress > 0 && t.ActualStart == nil {
		t.ActualStart = &today
	}
	if t.Progress >= 100 && t.ActualEnd == nil {
		t.ActualEnd = &today
	}
}

// projectState is the project state derived from its tasks.
type projectState struct {
	Progress    int
	Status      models.Status
	ActualStart *time.Time
	ActualEnd   *time.Time
}

// rollup averages task progress, rounded. Any started task puts the project
// in progress and only a fully finished set completes it. The project starts
// with its earliest started task and ends with its last finished one, but
// only once every task is complete.
func rollup(tasks []models.Task) projectState {
	if len(tasks) == 0 {
		return projectState{Status: models.StatusToDo}
	}
	var sum int
	var r projectState
	done := true
	for _, t := range tasks {
		sum += t.Progress
		if t.ActualStart != nil && (r.ActualStart == nil || t.ActualStart.Before(*r.ActualStart)) {
			r.ActualStart = t.ActualStart
		}
		if t.ActualEnd != nil && (r.ActualEnd == nil || t.ActualEnd.After(*r.ActualEnd)) {
			r.ActualEnd = t.ActualEnd
		}
		if t.Progress < 100 {
			done = false
		}
	}
	r.Progress = int(math.Round(float64(sum) / float64(len(tasks))))
	if !done {
		r.ActualEnd = nil
		r.Progress = min(r.Progress, 99)
	}
	r.Status = models.StatusForProgress(r.Progress)
	if sum > 0 && r.Status == models.StatusToDo {
		r.Status = models.StatusInProgress
	}
	return r
}

func syncProject(tx *gorm.DB, projectID uint) error {
	var tasks []models.Task
	if err := tx.Where("project_id = ?", projectID).Find(&tasks).Error; err != nil {
		return err
	}
	r := rollup(tasks)
	return tx.Model(&models.Project{}).Where("id = ?", projectID).Updates(map[string]any{
		"progress":     r.Progress,
		"status":       r.Status,
		"actual_start": r.ActualStart,
		"actual_end":   r.ActualEnd,
	}).Error
}
