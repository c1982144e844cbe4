package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"project-tracker/internal/models"
)

func TestBuildWorkbook(t *testing.T) {
	web := models.ReferenceItem{ID: 1, Label: "Web"}
	dev := models.ReferenceItem{ID: 2, Label: "Development"}
	projects := []models.Project{{
		ID: 7, Name: "Portal", Type: &models.ReferenceItem{Label: "Enhancement"}, User: &alice,
		Level: models.EffortMid, PlanStartDate: day("2024-03-01"), PlanEndDate: day("2024-03-15"),
		Status: models.StatusInProgress, Progress: 40,
		Tasks: []models.Task{
			{ID: 70, Detail: "API", Group: &dev, Platform: &web, User: &alice, Progress: 40, Status: models.StatusInProgress},
			{ID: 71, Detail: "UI", Progress: 0, Status: models.StatusToDo},
		},
	}}

	buf, err := BuildWorkbook(projects)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Projects", "Tasks"}, f.GetSheetList())

	rows, err := f.GetRows("Projects")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Project Name", rows[0][1])
	assert.Equal(t, []string{"7", "Portal", "Enhancement", "Alice"}, rows[1][:4])
	assert.Equal(t, "2024-03-01", rows[1][7])

	tasks, err := f.GetRows("Tasks")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"70", "7", "Portal", "API", "Development", "Web", "Alice"}, tasks[1][:7])
	assert.Equal(t, "UI", tasks[2][3])
}

func TestBuildWorkbook_Empty(t *testing.T) {
	buf, err := BuildWorkbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Tasks")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
