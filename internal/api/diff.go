package api

import (
	"strconv"
	"time"

	"project-tracker/internal/history"
	"project-tracker/internal/models"
)

// snapshot is the flat field view of a record that update history compares.
type snapshot map[string]string

var projectFields = []string{
	"project_name", "project_type_id", "assigned_to", "assigned_to_group", "level",
	"req_date", "plan_start_date", "plan_end_date", "live_date", "remark",
}

var taskFields = []string{
	"task_detail", "task_group_id", "platform_id", "assigned_to", "assigned_to_group",
	"plan_start_date", "plan_end_date", "actual_start", "actual_end", "task_progress", "status",
}

func projectSnapshot(p models.Project) snapshot {
	return snapshot{
		"project_name":      p.Name,
		"project_type_id":   idString(p.TypeID),
		"assigned_to":       assignee(p.User, p.AssignedTo),
		"assigned_to_group": string(p.AssignedToGroup),
		"level":             string(p.Level),
		"req_date":          dateString(p.ReqDate),
		"plan_start_date":   dateString(p.PlanStartDate),
		"plan_end_date":     dateString(p.PlanEndDate),
		"live_date":         dateString(p.LiveDate),
		"remark":            p.Remark,
	}
}

func taskSnapshot(t models.Task) snapshot {
	return snapshot{
		"task_detail":       t.Detail,
		"task_group_id":     idString(t.GroupID),
		"platform_id":       idString(t.PlatformID),
		"assigned_to":       assignee(t.User, t.AssignedTo),
		"assigned_to_group": string(t.AssignedToGroup),
		"plan_start_date":   dateString(t.PlanStartDate),
		"plan_end_date":     dateString(t.PlanEndDate),
		"actual_start":      dateString(t.ActualStart),
		"actual_end":        dateString(t.ActualEnd),
		"task_progress":     strconv.Itoa(t.Progress),
		"status":            string(t.Status),
	}
}

// diff lists the fields whose value changed, in field order.
func diff(fields []string, before, after snapshot) []history.Change {
	var out []history.Change
	for _, f := range fields {
		if before[f] == after[f] {
			continue
		}
		out = append(out, history.Change{Field: f, Before: before[f], After: after[f], Valid: true})
	}
	return out
}

// assignee records the display name so history stays readable after the
// user is renamed or removed.
func assignee(u *models.User, sap int64) string {
	if u != nil && u.Name != "" {
		return u.Name
	}
	if sap == 0 {
		return ""
	}
	return strconv.FormatInt(sap, 10)
}

func idString(id uint) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}

func dateString(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(models.DateLayout)
}
