package database

import (
	"time"

	"gorm.io/gorm"

	"project-tracker/internal/history"
	"project-tracker/internal/models"
)

// RecordProjectHistory appends one update-history entry for a project.
// Nothing is written when there are no changes.
func RecordProjectHistory(tx *gorm.DB, projectID uint, changes []history.Change, by string) error {
	return record(tx, &projectID, nil, changes, by)
}

func RecordTaskHistory(tx *gorm.DB, taskID uint, changes []history.Change, by string) error {
	return record(tx, nil, &taskID, changes, by)
}

func record(tx *gorm.DB, projectID, taskID *uint, changes []history.Change, by string) error {
	if len(changes) == 0 {
		return nil
	}
	entry := models.HistoryEntry{
		ProjectID: projectID,
		TaskID:    taskID,
		Changes:   history.Encode(changes),
		UpdatedBy: by,
		UpdatedAt: time.Now(),
	}
	return tx.Create(&entry).Error
}
