package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"project-tracker/internal/models"
	"project-tracker/internal/validation"
)

// The API runs the same rule tables as the UI forms, so a client that skips
// the form still gets the form's messages.

func userValues(in models.UserInput) validation.Values {
	return validation.Values{
		validation.FieldSAP:      positive(in.SAP),
		validation.FieldName:     in.Name,
		validation.FieldUsername: in.Username,
		validation.FieldPassword: in.Password,
		validation.FieldRole:     string(in.Role),
		validation.FieldPosition: string(in.Position),
	}
}

func projectValues(in models.ProjectInput) validation.Values {
	return validation.Values{
		validation.FieldProjectName:     in.Name,
		validation.FieldProjectType:     positive(int64(in.TypeID)),
		validation.FieldAssignedTo:      positive(in.AssignedTo),
		validation.FieldAssignedToGroup: string(in.AssignedToGroup),
		validation.FieldLevel:           string(in.Level),
		validation.FieldReqDate:         in.ReqDate,
		validation.FieldPlanStart:       in.PlanStartDate,
		validation.FieldPlanEnd:         in.PlanEndDate,
		validation.FieldLiveDate:        deref(in.LiveDate),
		validation.FieldRemark:          in.Remark,
	}
}

func taskValues(in models.TaskInput) validation.Values {
	v := validation.Values{
		validation.FieldTaskDetail:      in.Detail,
		validation.FieldTaskGroup:       positive(int64(in.GroupID)),
		validation.FieldPlatform:        positive(int64(in.PlatformID)),
		validation.FieldAssignedTo:      positive(in.AssignedTo),
		validation.FieldAssignedToGroup: string(in.AssignedToGroup),
		validation.FieldPlanStart:       in.PlanStartDate,
		validation.FieldPlanEnd:         in.PlanEndDate,
		validation.FieldActualStart:     deref(in.ActualStart),
		validation.FieldActualEnd:       deref(in.ActualEnd),
	}
	if in.Progress != nil {
		v[validation.FieldProgress] = strconv.Itoa(*in.Progress)
	}
	return v
}

func referenceValues(in models.ReferenceInput) validation.Values {
	return validation.Values{
		validation.FieldLabel: in.Label,
		validation.FieldRole:  string(in.Role),
	}
}

// check answers 400 with the first failing field's message.
func check(c *gin.Context, values validation.Values, rules []validation.Rule) bool {
	errs := validation.Validate(values, rules)
	if errs.Valid() {
		return true
	}
	for _, r := range rules {
		if msg, ok := errs[r.Field]; ok {
			fail(c, http.StatusBadRequest, msg)
			return false
		}
	}
	return false
}

func positive(n int64) string {
	if n <= 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// date parses a validated YYYY-MM-DD value; "" is nil.
func date(s string) *time.Time {
	t, ok := validation.ParseDate(s)
	if !ok {
		return nil
	}
	return &t
}

func optionalDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	return date(*s)
}
