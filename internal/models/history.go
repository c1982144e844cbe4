package models

import "time"

// HistoryEntry is one edit of a project or task. Changes holds the encoded
// field list: field: "before" → "after", field2: "before" → "after"
type HistoryEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProjectID *uint     `json:"id_project,omitempty" gorm:"index"`
	TaskID    *uint     `json:"id_task,omitempty" gorm:"index"`
	Changes   string    `json:"changes" gorm:"type:text;not null"`
	UpdatedBy string    `json:"updated_by" gorm:"size:255"`
	UpdatedAt time.Time `json:"updated_at"`
}
