package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"project-tracker/internal/models"
	"project-tracker/internal/validation"
)

func (s *Server) ListReference(kind models.ReferenceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var items []models.ReferenceItem
		if err := s.db.Where("kind = ?", kind).Order("id asc").Find(&items).Error; err != nil {
			s.dbError(c, err, kind.Title())
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func (s *Server) CreateReference(kind models.ReferenceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, ok := bindReference(c, kind)
		if !ok || !s.labelFree(c, kind, in.Label, 0) {
			return
		}
		item := models.ReferenceItem{Kind: kind}
		applyReference(&item, in)
		if err := s.db.Create(&item).Error; err != nil {
			s.dbError(c, err, kind.Title())
			return
		}
		s.log.Info("reference item created", zap.String("kind", string(kind)), zap.Uint("id", item.ID))
		c.JSON(http.StatusCreated, item)
	}
}

func (s *Server) UpdateReference(kind models.ReferenceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, ok := s.loadReference(c, kind)
		if !ok {
			return
		}
		in, ok := bindReference(c, kind)
		if !ok || !s.labelFree(c, kind, in.Label, item.ID) {
			return
		}
		applyReference(item, in)
		if err := s.db.Save(item).Error; err != nil {
			s.dbError(c, err, kind.Title())
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DeleteReference refuses items still referenced by a project or task.
func (s *Server) DeleteReference(kind models.ReferenceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, ok := s.loadReference(c, kind)
		if !ok {
			return
		}
		used, err := s.referenceInUse(kind, item.ID)
		if err != nil {
			s.dbError(c, err, kind.Title())
			return
		}
		if used {
			fail(c, http.StatusConflict, kind.Title()+" is still in use")
			return
		}
		if err := s.db.Delete(&models.ReferenceItem{}, item.ID).Error; err != nil {
			s.dbError(c, err, kind.Title())
			return
		}
		s.log.Info("reference item deleted", zap.String("kind", string(kind)), zap.Uint("id", item.ID))
		c.JSON(http.StatusOK, gin.H{"msg": kind.Title() + " deleted"})
	}
}

func bindReference(c *gin.Context, kind models.ReferenceKind) (models.ReferenceInput, bool) {
	var in models.ReferenceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, kind.Title()+" is required")
		return in, false
	}
	if !check(c, referenceValues(in), validation.ReferenceRules(kind)) {
		return in, false
	}
	return in, true
}

func applyReference(item *models.ReferenceItem, in models.ReferenceInput) {
	item.Label = strings.TrimSpace(in.Label)
	item.Role = ""
	if item.Kind.HasRole() {
		item.Role = models.ParseRole(string(in.Role))
	}
}

func (s *Server) loadReference(c *gin.Context, kind models.ReferenceKind) (*models.ReferenceItem, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}
	var item models.ReferenceItem
	if err := s.db.First(&item, "id = ? AND kind = ?", id, kind).Error; err != nil {
		s.dbError(c, err, kind.Title())
		return nil, false
	}
	return &item, true
}

func (s *Server) labelFree(c *gin.Context, kind models.ReferenceKind, label string, self uint) bool {
	var n int64
	err := s.db.Model(&models.ReferenceItem{}).
		Where("kind = ? AND LOWER(label) = LOWER(?) AND id <> ?", kind, strings.TrimSpace(label), self).
		Count(&n).Error
	if err != nil {
		s.dbError(c, err, kind.Title())
		return false
	}
	if n > 0 {
		fail(c, http.StatusConflict, kind.Title()+" already exists")
		return false
	}
	return true
}

func (s *Server) referenceInUse(kind models.ReferenceKind, id uint) (bool, error) {
	var n int64
	var err error
	switch kind {
	case models.KindProjectType:
		err = s.db.Model(&models.Project{}).Where("type_id = ?", id).Count(&n).Error
	case models.KindTaskGroup:
		err = s.db.Model(&models.Task{}).Where("group_id = ?", id).Count(&n).Error
	case models.KindPlatform:
		err = s.db.Model(&models.Task{}).Where("platform_id = ?", id).Count(&n).Error
	}
	return n > 0, err
}
