// Package access decides which actions a signed-in user may take on a
// record and which projects they get to see at all.
package access

import (
	"errors"
	"strings"

	"project-tracker/internal/models"
)

var ErrUserHasWork = errors.New("Cannot delete user who still has active projects or tasks")

type Viewer struct {
	Name string
	Role models.Role
}

func (v Viewer) IsAdmin() bool {
	return v.Role == models.RoleAdmin
}

// Record is the ownership view of whatever row is being checked.
type Record struct {
	AssigneeName string
	AssigneeRole models.Role
}

type Permissions struct {
	CanEdit     bool
	CanDelete   bool
	CanAdd      bool
	CanDownload bool
}

var full = Permissions{CanEdit: true, CanDelete: true, CanAdd: true, CanDownload: true}

// Policy lists the non-admin roles allowed to work on a screen and, per
// role, the assignee roles they oversee.
type Policy struct {
	Editors   []models.Role
	Oversight map[models.Role][]models.Role
}

var (
	// Default is the general rule: the four business roles edit what is
	// assigned to them.
	Default = Policy{
		Editors: []models.Role{models.RoleITBP, models.RoleITGA, models.RoleSAP, models.RoleDataScience},
	}

	Projects = Policy{
		Editors: []models.Role{models.RoleITBP, models.RoleSAP, models.RoleDataScience},
		Oversight: map[models.Role][]models.Role{
			models.RoleSAP:         {models.RoleITBP},
			models.RoleDataScience: {models.RoleITBP},
		},
	}

	Tasks = Policy{
		Editors: []models.Role{models.RoleITGA, models.RoleSAP, models.RoleDataScience},
	}

	// AdminOnly covers users and reference data.
	AdminOnly = Policy{}
)

func Resolve(v Viewer, rec Record) Permissions {
	return Default.Resolve(v, rec)
}

func (p Policy) Resolve(v Viewer, rec Record) Permissions {
	if v.IsAdmin() {
		return full
	}
	if !p.isEditor(v.Role) {
		return Permissions{}
	}

	owns := p.owns(v, rec)
	return Permissions{
		CanEdit:   owns,
		CanDelete: owns,
		CanAdd:    true,
	}
}

// CanAdd does not depend on any record.
func (p Policy) CanAdd(v Viewer) bool {
	return v.IsAdmin() || p.isEditor(v.Role)
}

func (p Policy) isEditor(r models.Role) bool {
	for _, e := range p.Editors {
		if e == r {
			return true
		}
	}
	return false
}

func (p Policy) owns(v Viewer, rec Record) bool {
	name := strings.TrimSpace(v.Name)
	if name != "" && strings.EqualFold(name, strings.TrimSpace(rec.AssigneeName)) {
		return true
	}
	for _, r := range p.Oversight[v.Role] {
		if rec.AssigneeRole == r {
			return true
		}
	}
	return false
}

func ProjectRecord(p models.Project) Record {
	return Record{AssigneeName: p.AssigneeName(), AssigneeRole: p.AssigneeRole()}
}

func TaskRecord(t models.Task) Record {
	return Record{AssigneeName: t.AssigneeName(), AssigneeRole: t.AssigneeRole()}
}

// CanDeleteUser blocks deleting anyone who still owns projects or tasks.
func CanDeleteUser(u models.User) error {
	if u.HasWork() {
		return ErrUserHasWork
	}
	return nil
}
