package models

import "time"

type Task struct {
	ID        uint   `json:"id_task" gorm:"primaryKey"`
	ProjectID uint   `json:"id_project" gorm:"index;not null"`
	Detail    string `json:"task_detail" gorm:"type:text;not null"`

	GroupID uint           `json:"task_group_id"`
	Group   *ReferenceItem `json:"group,omitempty" gorm:"foreignKey:GroupID"`

	PlatformID uint           `json:"platform_id"`
	Platform   *ReferenceItem `json:"platform,omitempty" gorm:"foreignKey:PlatformID"`

	AssignedTo      int64 `json:"assigned_to"`
	User            *User `json:"user,omitempty" gorm:"foreignKey:AssignedTo;references:SAP"`
	AssignedToGroup Role  `json:"assigned_to_group" gorm:"type:varchar(20)"`

	PlanStartDate *time.Time `json:"plan_start_date"`
	PlanEndDate   *time.Time `json:"plan_end_date"`
	ActualStart   *time.Time `json:"actual_start"`
	ActualEnd     *time.Time `json:"actual_end"`
	Progress      int        `json:"task_progress"`
	Status        Status     `json:"status" gorm:"type:varchar(20);not null"`

	CreatedBy string    `json:"created_by" gorm:"size:255"`
	UpdatedBy string    `json:"updated_by" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UpdateHistory []HistoryEntry `json:"update_history,omitempty" gorm:"foreignKey:TaskID"`
}

func (t Task) AssigneeName() string {
	if t.User == nil {
		return ""
	}
	return t.User.Name
}

func (t Task) AssigneeRole() Role {
	if t.User == nil {
		return ""
	}
	return t.User.Role
}

func (t Task) GroupLabel() string {
	if t.Group == nil {
		return ""
	}
	return t.Group.Label
}

func (t Task) PlatformLabel() string {
	if t.Platform == nil {
		return ""
	}
	return t.Platform.Label
}
