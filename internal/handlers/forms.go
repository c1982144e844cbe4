package handlers

import (
	"context"
	"slices"
	"strconv"
	"time"

	"project-tracker/internal/apiclient"
	"project-tracker/internal/models"
	"project-tracker/internal/session"
)

var (
	projectGroups = []models.Role{models.RoleITBP, models.RoleSAP, models.RoleDataScience}
	taskGroups    = []models.Role{models.RoleITGA, models.RoleSAP, models.RoleDataScience}
)

// assigneeGroup is one optgroup of the "Assigned To" select.
type assigneeGroup struct {
	Role  models.Role
	Users []models.User
}

// assignees lists who a record can be given to. Admins choose among the
// groups; everyone else can only assign to themselves.
func assignees(ctx context.Context, client *apiclient.Client, s session.Session, groups []models.Role) ([]assigneeGroup, error) {
	if !s.IsAdmin() {
		self := models.User{SAP: s.SAP, Name: s.Name, Username: s.Username, Role: s.Role}
		return []assigneeGroup{{Role: s.Role, Users: []models.User{self}}}, nil
	}

	users, err := client.ListUsers(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]assigneeGroup, 0, len(groups))
	for _, g := range groups {
		grp := assigneeGroup{Role: g}
		for _, u := range users {
			if u.Role == g {
				grp.Users = append(grp.Users, u)
			}
		}
		out = append(out, grp)
	}
	return out, nil
}

// ownAssignment fills the assignee fields for non-admin users, who always
// work on their own records.
func ownAssignment(s session.Session, values map[string]string, toField, groupField string) {
	if s.IsAdmin() {
		return
	}
	values[toField] = strconv.FormatInt(s.SAP, 10)
	values[groupField] = string(s.Role)
}

// assigneeNameKey carries the current assignee's display name to forms that
// do not show the assignment pickers.
const assigneeNameKey = "assignee_name"

// editAssignment pins the assignee fields on an edit. Owners stay on their
// own record; an edit through oversight leaves the record with its current
// assignee and group.
func editAssignment(s session.Session, values map[string]string, toField, groupField string,
	assignedTo int64, group models.Role, assigneeName string) {
	if s.IsAdmin() {
		return
	}
	if assignedTo != 0 && assignedTo != s.SAP {
		values[toField] = sapString(assignedTo)
		values[groupField] = string(group)
		values[assigneeNameKey] = assigneeName
		return
	}
	ownAssignment(s, values, toField, groupField)
}

func dateValue(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(models.DateLayout)
}

func optionalDate(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseID(s string) uint {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

func idString(id uint) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}

func sapString(sap int64) string {
	if sap == 0 {
		return ""
	}
	return strconv.FormatInt(sap, 10)
}

var months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// years collects the distinct plan-start years for the period filter,
// newest first.
func years(dates []*time.Time) []string {
	seen := map[int]bool{}
	var ys []int
	for _, d := range dates {
		if d == nil || d.IsZero() {
			continue
		}
		if y := d.UTC().Year(); !seen[y] {
			seen[y] = true
			ys = append(ys, y)
		}
	}
	slices.Sort(ys)
	slices.Reverse(ys)

	out := make([]string, len(ys))
	for i, y := range ys {
		out[i] = strconv.Itoa(y)
	}
	return out
}

func parseSAP(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
