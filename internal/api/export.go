package api

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"project-tracker/internal/models"
	"project-tracker/internal/validation"
)

const (
	ExportFilename    = "projects_tasks.xlsx"
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	projectsSheet = "Projects"
	tasksSheet    = "Tasks"
)

var projectHeader = []any{
	"ID", "Project Name", "Project Type", "Assigned To", "Assigned Group", "Effort Level",
	"Request Date", "Plan Start", "Plan End", "Go Live", "Actual Start", "Actual End",
	"Progress", "Status", "Remark", "Created By", "Updated By",
}

var taskHeader = []any{
	"Task ID", "Project ID", "Project Name", "Task Detail", "Task Group", "Platform",
	"Assigned To", "Plan Start", "Plan End", "Actual Start", "Actual End", "Progress", "Status",
}

// DownloadProjects exports projects whose plan start falls in [start, end].
func (s *Server) DownloadProjects(c *gin.Context) {
	start, ok1 := validation.ParseDate(c.Query("start"))
	end, ok2 := validation.ParseDate(c.Query("end"))
	if !ok1 || !ok2 {
		fail(c, http.StatusBadRequest, "Start and end dates are required")
		return
	}
	if start.After(end) {
		fail(c, http.StatusBadRequest, "Start date must be before end date")
		return
	}

	var projects []models.Project
	err := withProjectRelations(s.db).
		Where("plan_start_date >= ? AND plan_start_date < ?", start, end.Add(24*time.Hour)).
		Order("plan_start_date asc, id asc").
		Find(&projects).Error
	if err != nil {
		s.dbError(c, err, "Projects")
		return
	}

	buf, err := BuildWorkbook(projects)
	if err != nil {
		s.log.Error("build export", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to build export")
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": ExportFilename}))
	c.Data(http.StatusOK, ExportContentType, buf.Bytes())
}

// BuildWorkbook writes one Projects sheet and one Tasks sheet.
func BuildWorkbook(projects []models.Project) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", projectsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(tasksSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	projectRows := make([][]any, 0, len(projects))
	var taskRows [][]any
	for _, p := range projects {
		projectRows = append(projectRows, []any{
			p.ID, p.Name, p.TypeLabel(), p.AssigneeName(), string(p.AssignedToGroup), string(p.Level),
			dateString(p.ReqDate), dateString(p.PlanStartDate), dateString(p.PlanEndDate),
			dateString(p.LiveDate), dateString(p.ActualStart), dateString(p.ActualEnd),
			p.Progress, string(p.Status), p.Remark, p.CreatedBy, p.UpdatedBy,
		})
		for _, t := range p.Tasks {
			taskRows = append(taskRows, []any{
				t.ID, p.ID, p.Name, t.Detail, t.GroupLabel(), t.PlatformLabel(), t.AssigneeName(),
				dateString(t.PlanStartDate), dateString(t.PlanEndDate),
				dateString(t.ActualStart), dateString(t.ActualEnd), t.Progress, string(t.Status),
			})
		}
	}

	if err := writeSheet(f, projectsSheet, projectHeader, projectRows, bold); err != nil {
		return nil, err
	}
	if err := writeSheet(f, tasksSheet, taskHeader, taskRows, bold); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)
	return f.WriteToBuffer()
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
