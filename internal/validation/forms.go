package validation

import (
	"errors"
	"strconv"
	"strings"

	"project-tracker/internal/models"
)

// Project form fields.
const (
	FieldProjectName     = "project_name"
	FieldProjectType     = "project_type_id"
	FieldAssignedTo      = "assigned_to"
	FieldAssignedToGroup = "assigned_to_group"
	FieldLevel           = "level"
	FieldReqDate         = "req_date"
	FieldPlanStart       = "plan_start_date"
	FieldPlanEnd         = "plan_end_date"
	FieldLiveDate        = "live_date"
	FieldRemark          = "remark"
)

// Task form fields.
const (
	FieldTaskDetail  = "task_detail"
	FieldTaskGroup   = "task_group_id"
	FieldPlatform    = "platform_id"
	FieldActualStart = "actual_start"
	FieldActualEnd   = "actual_end"
	FieldProgress    = "task_progress"
)

// User and reference form fields.
const (
	FieldSAP      = "SAP"
	FieldName     = "name"
	FieldUsername = "username"
	FieldPassword = "password"
	FieldRole     = "role"
	FieldPosition = "position"
	FieldLabel    = "label"
)

// ProjectRules is shared by the add and edit forms. Only admins pick the
// assigned group; everyone else inherits their own.
func ProjectRules(viewer models.Role) []Rule {
	rules := []Rule{
		Required(FieldProjectName, "Project name"),
		Required(FieldProjectType, "Project type"),
		When(viewer == models.RoleAdmin, Required(FieldAssignedToGroup, "Assigned To Group")),
		Required(FieldAssignedTo, "Assigned To"),
		Required(FieldLevel, "Effort level"),
		Cross(FieldLevel, []string{FieldLevel}, func(v Values) string {
			if l := v.Get(FieldLevel); l != "" && !models.ParseEffortLevel(l).Valid() {
				return "Effort level is invalid"
			}
			return ""
		}),
		Required(FieldReqDate, "Request date"),
		Date(FieldReqDate, "Request date"),
		Required(FieldPlanStart, "Plan start date"),
		Date(FieldPlanStart, "Plan start date"),
		Required(FieldPlanEnd, "Plan end date"),
		Date(FieldPlanEnd, "Plan end date"),
		Date(FieldLiveDate, "Go live date"),
		Required(FieldRemark, "Remark"),
	}
	return append(rules, EffortRules(FieldPlanStart, FieldPlanEnd, FieldLevel)...)
}

func TaskRules(viewer models.Role) []Rule {
	return []Rule{
		When(viewer == models.RoleAdmin, Required(FieldAssignedToGroup, "Assigned To Group")),
		Required(FieldAssignedTo, "Assigned To"),
		Required(FieldTaskGroup, "Task group"),
		Required(FieldTaskDetail, "Task detail"),
		Required(FieldPlanStart, "Plan start date"),
		Date(FieldPlanStart, "Plan start date"),
		Required(FieldPlanEnd, "Plan end date"),
		Date(FieldPlanEnd, "Plan end date"),
		Required(FieldPlatform, "Platform"),
		Date(FieldActualStart, "Actual start date"),
		Date(FieldActualEnd, "Actual end date"),
		Cross(FieldPlanStart, []string{FieldPlanStart, FieldPlanEnd}, func(v Values) string {
			start, ok1 := ParseDate(v.Get(FieldPlanStart))
			end, ok2 := ParseDate(v.Get(FieldPlanEnd))
			if ok1 && ok2 && start.After(end) {
				return "Start date must be before end date"
			}
			return ""
		}),
		Cross(FieldProgress, []string{FieldProgress}, func(v Values) string {
			s := v.Get(FieldProgress)
			if s == "" {
				return ""
			}
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 || n > 100 {
				return "Progress must be between 0 and 100"
			}
			return ""
		}),
	}
}

// UserRules: the password is only mandatory when creating, the position
// unless the role is ADMIN.
func UserRules(creating bool) []Rule {
	return []Rule{
		NumericRequired(FieldSAP, "SAP"),
		Cross(FieldSAP, []string{FieldSAP}, func(v Values) string {
			if _, err := ParseSAP(v.Get(FieldSAP)); err != nil {
				return err.Error()
			}
			return ""
		}),
		Required(FieldName, "Name"),
		Required(FieldUsername, "Username"),
		When(creating, Required(FieldPassword, "Password")),
		Required(FieldRole, "Role"),
		Cross(FieldRole, []string{FieldRole}, func(v Values) string {
			if !models.ParseRole(v.Get(FieldRole)).Valid() {
				return "Role is invalid"
			}
			return ""
		}),
		Cross(FieldPosition, []string{FieldRole, FieldPosition}, func(v Values) string {
			if models.ParseRole(v.Get(FieldRole)) == models.RoleAdmin {
				return ""
			}
			if v.Get(FieldPosition) == "" {
				return "Position is required"
			}
			return ""
		}),
	}
}

// ErrInvalidSAP rejects SAP numbers that are not positive whole numbers.
var ErrInvalidSAP = errors.New("SAP must be a positive whole number")

// ParseSAP reads an employee number: digits only, above zero.
func ParseSAP(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidSAP
	}
	return n, nil
}

func ReferenceRules(kind models.ReferenceKind) []Rule {
	return []Rule{
		Required(FieldLabel, kind.Title()),
		When(kind.HasRole(), Required(FieldRole, "Role")),
	}
}
