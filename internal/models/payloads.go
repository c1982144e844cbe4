package models

// Request bodies shared by the API and its client. Dates travel as
// YYYY-MM-DD strings, the format of the HTML date input.

const DateLayout = "2006-01-02"

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UserInput struct {
	SAP      int64    `json:"SAP"`
	Name     string   `json:"name" binding:"required"`
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password,omitempty"`
	Role     Role     `json:"role" binding:"required"`
	Position Position `json:"position,omitempty"`
}

type ProjectInput struct {
	Name            string      `json:"project_name" binding:"required"`
	TypeID          uint        `json:"project_type_id" binding:"required"`
	AssignedTo      int64       `json:"assigned_to" binding:"required"`
	AssignedToGroup Role        `json:"assigned_to_group"`
	Level           EffortLevel `json:"level" binding:"required"`
	ReqDate         string      `json:"req_date" binding:"required"`
	PlanStartDate   string      `json:"plan_start_date" binding:"required"`
	PlanEndDate     string      `json:"plan_end_date" binding:"required"`
	LiveDate        *string     `json:"live_date"`
	Remark          string      `json:"remark"`
}

type TaskInput struct {
	ProjectID       uint    `json:"id_project"`
	Detail          string  `json:"task_detail" binding:"required"`
	GroupID         uint    `json:"task_group_id" binding:"required"`
	PlatformID      uint    `json:"platform_id" binding:"required"`
	AssignedTo      int64   `json:"assigned_to" binding:"required"`
	AssignedToGroup Role    `json:"assigned_to_group"`
	PlanStartDate   string  `json:"plan_start_date" binding:"required"`
	PlanEndDate     string  `json:"plan_end_date" binding:"required"`
	ActualStart     *string `json:"actual_start,omitempty"`
	ActualEnd       *string `json:"actual_end,omitempty"`
	Progress        *int    `json:"task_progress,omitempty"`
}

type ReferenceInput struct {
	Label string `json:"label" binding:"required"`
	Role  Role   `json:"role,omitempty"`
}
