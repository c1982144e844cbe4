package screens

import (
	"strconv"
	"time"

	"project-tracker/internal/listing"
	"project-tracker/internal/models"
)

// StatusDefault is the project list's initial status filter: everything
// that is not completed yet.
const StatusDefault = "DEFAULT"

func dateText(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(models.DateLayout)
}

func sapText(sap int64) string {
	if sap == 0 {
		return ""
	}
	return strconv.FormatInt(sap, 10)
}

var userName = listing.Field[models.User]{Key: "name", Label: "Name", Text: func(u models.User) string { return u.Name }}
var userUsername = listing.Field[models.User]{Key: "username", Label: "Username", Text: func(u models.User) string { return u.Username }}
var userSAP = listing.Field[models.User]{Key: "SAP", Label: "SAP", Number: func(u models.User) float64 { return float64(u.SAP) }}

var Users = listing.Config[models.User]{
	Search: []listing.Field[models.User]{
		userName,
		userUsername,
		{Key: "SAP", Text: func(u models.User) string { return sapText(u.SAP) }},
	},
	Sort: []listing.Field[models.User]{
		userSAP,
		userName,
		userUsername,
		{Key: "role", Label: "Role", Text: func(u models.User) string { return string(u.Role) }},
		{Key: "position", Label: "Position", Text: func(u models.User) string { return string(u.Position) }},
		{Key: "totalProjects", Label: "Projects", Number: func(u models.User) float64 { return float64(u.TotalProjects) }},
		{Key: "totalTasks", Label: "Tasks", Number: func(u models.User) float64 { return float64(u.TotalTasks) }},
	},
	DefaultSort: "name",
}

func UserPredicates(q ListQuery) []listing.Predicate[models.User] {
	return []listing.Predicate[models.User]{
		listing.Equals(func(u models.User) string { return string(u.Role) }, q.Role),
		listing.Equals(func(u models.User) string { return string(u.Position) }, q.Position),
	}
}

var projectName = listing.Field[models.Project]{Key: "project_name", Label: "Project", Text: func(p models.Project) string { return p.Name }}

var Projects = listing.Config[models.Project]{
	Search: []listing.Field[models.Project]{
		projectName,
		{Key: "assigned_to", Text: models.Project.AssigneeName},
		{Key: "project_type", Text: models.Project.TypeLabel},
		{Key: "status", Text: func(p models.Project) string { return string(p.Status) }},
		{Key: "remark", Text: func(p models.Project) string { return p.Remark }},
	},
	Sort: []listing.Field[models.Project]{
		{Key: "id_project", Label: "ID", Number: func(p models.Project) float64 { return float64(p.ID) }},
		projectName,
		{Key: "project_type", Label: "Type", Text: models.Project.TypeLabel},
		{Key: "assigned_to", Label: "PIC", Text: models.Project.AssigneeName},
		{Key: "level", Label: "Level", Text: func(p models.Project) string { return string(p.Level) }},
		{Key: "req_date", Label: "Request", Text: func(p models.Project) string { return dateText(p.ReqDate) }},
		{Key: "plan_start_date", Label: "Plan Start", Text: func(p models.Project) string { return dateText(p.PlanStartDate) }},
		{Key: "plan_end_date", Label: "Plan End", Text: func(p models.Project) string { return dateText(p.PlanEndDate) }},
		{Key: "live_date", Label: "Live", Text: func(p models.Project) string { return dateText(p.LiveDate) }},
		{Key: "project_progress", Label: "Progress", Number: func(p models.Project) float64 { return float64(p.Progress) }},
		{Key: "status", Label: "Status", Text: func(p models.Project) string { return string(p.Status) }},
	},
	DefaultSort: "id_project",
}

// StatusFilter maps the status select to a predicate. DEFAULT keeps the
// open statuses, ALL or empty keeps everything.
func StatusFilter[T any](status func(T) models.Status, want string) listing.Predicate[T] {
	get := func(r T) string { return string(status(r)) }
	if want == StatusDefault {
		return listing.OneOf(get, string(models.StatusToDo), string(models.StatusInProgress))
	}
	return listing.Equals(get, want)
}

func ProjectPredicates(q ListQuery) []listing.Predicate[models.Project] {
	return []listing.Predicate[models.Project]{
		StatusFilter(func(p models.Project) models.Status { return p.Status }, q.Status),
		listing.Period(func(p models.Project) *time.Time { return p.PlanStartDate }, q.Month, q.Year),
	}
}

var taskDetail = listing.Field[models.Task]{Key: "task_detail", Label: "Task", Text: func(t models.Task) string { return t.Detail }}

var Tasks = listing.Config[models.Task]{
	Search: []listing.Field[models.Task]{
		taskDetail,
		{Key: "assigned_to", Text: models.Task.AssigneeName},
		{Key: "group", Text: models.Task.GroupLabel},
		{Key: "platform", Text: models.Task.PlatformLabel},
		{Key: "status", Text: func(t models.Task) string { return string(t.Status) }},
	},
	Sort: []listing.Field[models.Task]{
		{Key: "id_task", Label: "ID", Number: func(t models.Task) float64 { return float64(t.ID) }},
		taskDetail,
		{Key: "group", Label: "Group", Text: models.Task.GroupLabel},
		{Key: "platform", Label: "Platform", Text: models.Task.PlatformLabel},
		{Key: "assigned_to", Label: "PIC", Text: models.Task.AssigneeName},
		{Key: "plan_start_date", Label: "Plan Start", Text: func(t models.Task) string { return dateText(t.PlanStartDate) }},
		{Key: "plan_end_date", Label: "Plan End", Text: func(t models.Task) string { return dateText(t.PlanEndDate) }},
		{Key: "actual_start", Label: "Actual Start", Text: func(t models.Task) string { return dateText(t.ActualStart) }},
		{Key: "actual_end", Label: "Actual End", Text: func(t models.Task) string { return dateText(t.ActualEnd) }},
		{Key: "task_progress", Label: "Progress", Number: func(t models.Task) float64 { return float64(t.Progress) }},
		{Key: "status", Label: "Status", Text: func(t models.Task) string { return string(t.Status) }},
	},
	DefaultSort: "id_task",
}

func TaskPredicates(q ListQuery) []listing.Predicate[models.Task] {
	return []listing.Predicate[models.Task]{
		StatusFilter(func(t models.Task) models.Status { return t.Status }, q.Status),
		listing.Period(func(t models.Task) *time.Time { return t.PlanStartDate }, q.Month, q.Year),
	}
}

var referenceLabel = listing.Field[models.ReferenceItem]{Key: "label", Label: "Label", Text: func(r models.ReferenceItem) string { return r.Label }}

var References = listing.Config[models.ReferenceItem]{
	Search: []listing.Field[models.ReferenceItem]{
		referenceLabel,
		{Key: "role", Text: func(r models.ReferenceItem) string { return string(r.Role) }},
	},
	Sort: []listing.Field[models.ReferenceItem]{
		{Key: "id", Label: "ID", Number: func(r models.ReferenceItem) float64 { return float64(r.ID) }},
		referenceLabel,
		{Key: "role", Label: "Role", Text: func(r models.ReferenceItem) string { return string(r.Role) }},
	},
	DefaultSort: "id",
}

func ReferencePredicates(q ListQuery) []listing.Predicate[models.ReferenceItem] {
	return []listing.Predicate[models.ReferenceItem]{
		listing.Equals(func(r models.ReferenceItem) string { return string(r.Role) }, q.Role),
	}
}
