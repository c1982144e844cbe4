package models

import (
	"strings"
	"time"
)

type EffortLevel string
type Status string

const (
	EffortLow  EffortLevel = "LOW"
	EffortMid  EffortLevel = "MID"
	EffortHigh EffortLevel = "HIGH"

	StatusToDo       Status = "TO_DO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

var EffortLevels = []EffortLevel{EffortLow, EffortMid, EffortHigh}

var Statuses = []Status{StatusToDo, StatusInProgress, StatusCompleted}

func ParseEffortLevel(s string) EffortLevel {
	return EffortLevel(strings.ToUpper(strings.TrimSpace(s)))
}

func (l EffortLevel) Valid() bool {
	return l == EffortLow || l == EffortMid || l == EffortHigh
}

func ParseStatus(s string) Status {
	return Status(strings.ToUpper(strings.TrimSpace(s)))
}

func (s Status) Valid() bool {
	return s == StatusToDo || s == StatusInProgress || s == StatusCompleted
}

// StatusForProgress derives the status the tracker shows for a progress value.
func StatusForProgress(progress int) Status {
	switch {
	case progress <= 0:
		return StatusToDo
	case progress >= 100:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

type Project struct {
	ID     uint           `json:"id_project" gorm:"primaryKey"`
	Name   string         `json:"project_name" gorm:"size:255;not null"`
	TypeID uint           `json:"project_type_id"`
	Type   *ReferenceItem `json:"project_type,omitempty" gorm:"foreignKey:TypeID"`

	AssignedTo      int64 `json:"assigned_to"`
	User            *User `json:"user,omitempty" gorm:"foreignKey:AssignedTo;references:SAP"`
	AssignedToGroup Role  `json:"assigned_to_group" gorm:"type:varchar(20)"`

	Level         EffortLevel `json:"level" gorm:"type:varchar(10);not null"`
	ReqDate       *time.Time  `json:"req_date"`
	PlanStartDate *time.Time  `json:"plan_start_date"`
	PlanEndDate   *time.Time  `json:"plan_end_date"`
	LiveDate      *time.Time  `json:"live_date"`
	ActualStart   *time.Time  `json:"actual_start"`
	ActualEnd     *time.Time  `json:"actual_end"`
	Remark        string      `json:"remark" gorm:"type:text"`
	Status        Status      `json:"status" gorm:"type:varchar(20);not null"`
	Progress      int         `json:"project_progress"`

	CreatedBy string    `json:"created_by" gorm:"size:255"`
	UpdatedBy string    `json:"updated_by" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UpdateHistory []HistoryEntry `json:"update_history,omitempty" gorm:"foreignKey:ProjectID"`
	Tasks         []Task         `json:"tasks,omitempty" gorm:"foreignKey:ProjectID"`
}

// AssigneeName is the display name of the assigned user, "" when not loaded.
func (p Project) AssigneeName() string {
	if p.User == nil {
		return ""
	}
	return p.User.Name
}

func (p Project) AssigneeRole() Role {
	if p.User == nil {
		return ""
	}
	return p.User.Role
}

func (p Project) TypeLabel() string {
	if p.Type == nil {
		return ""
	}
	return p.Type.Label
}
