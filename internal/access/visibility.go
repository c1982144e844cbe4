package access

import (
	"strings"

	"project-tracker/internal/models"
)

// Visible reports whether the viewer may see the project in the list.
func Visible(v Viewer, p models.Project) bool {
	switch v.Role {
	case models.RoleAdmin:
		return true
	case models.RoleITBP, models.RoleSAP, models.RoleDataScience:
		if sameName(v.Name, p.AssigneeName()) {
			return true
		}
		for _, t := range p.Tasks {
			if sameName(v.Name, t.AssigneeName()) {
				return true
			}
		}
		return v.Role != models.RoleITBP && p.AssigneeRole() == models.RoleITBP
	case models.RoleITGA:
		return p.AssigneeRole() == models.RoleITBP
	default:
		return false
	}
}

func VisibleProjects(v Viewer, projects []models.Project) []models.Project {
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if Visible(v, p) {
			out = append(out, p)
		}
	}
	return out
}

func sameName(a, b string) bool {
	a = strings.TrimSpace(a)
	return a != "" && strings.EqualFold(a, strings.TrimSpace(b))
}
