package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"project-tracker/internal/access"
	"project-tracker/internal/apiclient"
	"project-tracker/internal/history"
	"project-tracker/internal/models"
	"project-tracker/internal/screens"
	"project-tracker/internal/session"
	"project-tracker/internal/validation"
)

var projectFields = []string{
	validation.FieldProjectName, validation.FieldProjectType, validation.FieldAssignedTo,
	validation.FieldAssignedToGroup, validation.FieldLevel, validation.FieldReqDate,
	validation.FieldPlanStart, validation.FieldPlanEnd, validation.FieldLiveDate, validation.FieldRemark,
}

type projectRow struct {
	models.Project
	Perms access.Permissions
}

// projects is the visible project list of the signed-in user.
func (h *Handler) projects(c *gin.Context) *screens.Collection[models.Project] {
	client := h.client(c)
	v := viewer(c)
	return screens.NewCollection(func(ctx context.Context) ([]models.Project, error) {
		all, err := client.ListProjects(ctx)
		if err != nil {
			return nil, err
		}
		return access.VisibleProjects(v, all), nil
	})
}

// projectQuery starts the status filter on DEFAULT (open projects) until
// the user picks something else.
func projectQuery(v url.Values) screens.ListQuery {
	q := screens.ParseListQuery(v, screens.Projects.DefaultSort)
	if !v.Has("status") {
		q.Status = screens.StatusDefault
	}
	return q
}

func (h *Handler) ListProjects(c *gin.Context) {
	projects := h.projects(c)
	q := projectQuery(c.Request.URL.Query())

	if err := projects.Reload(c.Request.Context()); err != nil {
		h.logFailure(c, err)
		h.renderProjectList(c, statusOf(err), projects, q, failure(err, "Failed to load projects"))
		return
	}
	h.renderProjectList(c, http.StatusOK, projects, q, nil)
}

func (h *Handler) renderProjectList(c *gin.Context, status int, projects *screens.Collection[models.Project], q screens.ListQuery, banners []session.Flash) {
	v := viewer(c)
	items := projects.Items()
	page := screens.Apply(items, screens.Projects, q, h.pageSize, screens.ProjectPredicates(q)...)

	rows := make([]projectRow, 0, len(page.Items))
	for _, p := range page.Items {
		rows = append(rows, projectRow{Project: p, Perms: access.Projects.Resolve(v, access.ProjectRecord(p))})
	}

	starts := make([]*time.Time, 0, len(items))
	for _, p := range items {
		starts = append(starts, p.PlanStartDate)
	}

	render(c, status, "projects.html", gin.H{
		"Path":        "/projects",
		"Page":        page,
		"Rows":        rows,
		"Query":       q,
		"Sort":        screens.Projects.Sort,
		"Summary":     screens.Summarize(items, projectStatus),
		"Statuses":    models.Statuses,
		"Months":      months,
		"Years":       years(starts),
		"CanAdd":      access.Projects.CanAdd(v),
		"CanDownload": access.Resolve(v, access.Record{}).CanDownload,
		"Banners":     banners,
	})
}

func projectStatus(p models.Project) models.Status { return p.Status }

// Kanban shows the same visible, searched and period-filtered projects as
// the list, one column per status.
func (h *Handler) Kanban(c *gin.Context) {
	projects := h.projects(c)
	q := screens.ParseListQuery(c.Request.URL.Query(), screens.Projects.DefaultSort)
	q.Status = ""

	var banners []session.Flash
	status := http.StatusOK
	if err := projects.Reload(c.Request.Context()); err != nil {
		h.logFailure(c, err)
		banners, status = failure(err, "Failed to load projects"), statusOf(err)
	}

	rows := screens.Filtered(projects.Items(), screens.Projects, q, screens.ProjectPredicates(q)...)
	render(c, status, "kanban.html", gin.H{
		"Columns": screens.Kanban(rows, projectStatus),
		"Query":   q,
		"Months":  months,
		"Banners": banners,
	})
}

func (h *Handler) ShowNewProject(c *gin.Context) {
	if !access.Projects.CanAdd(viewer(c)) {
		deny(c, "/projects")
		return
	}
	values := validation.Values{}
	ownAssignment(currentSession(c), values, validation.FieldAssignedTo, validation.FieldAssignedToGroup)
	h.renderProjectForm(c, http.StatusOK, values, nil, 0, c.Request.URL.RawQuery, nil)
}

func (h *Handler) CreateProject(c *gin.Context) {
	s := currentSession(c)
	if !access.Projects.CanAdd(s.Viewer()) {
		deny(c, "/projects")
		return
	}

	values := formValues(c, projectFields...)
	ownAssignment(s, values, validation.FieldAssignedTo, validation.FieldAssignedToGroup)
	list := listQuery(c)

	if errs := validation.Validate(values, validation.ProjectRules(s.Role)); !errs.Valid() {
		h.renderProjectForm(c, http.StatusUnprocessableEntity, values, errs, 0, list.Encode(), nil)
		return
	}

	client := h.client(c)
	projects := h.projects(c)
	in := projectInput(values)
	saved, err := mutate(c.Request.Context(), projects, func(ctx context.Context) error {
		return client.CreateProject(ctx, in)
	})
	h.afterProjectMutation(c, projects, list, saved, err, "Project created", func(banners []session.Flash) {
		h.renderProjectForm(c, statusOf(err), values, nil, 0, list.Encode(), banners)
	})
}

// loadProject fetches the project named in the URL and checks the viewer
// may act on it. It writes the response itself when ok is false.
func (h *Handler) loadProject(c *gin.Context, allowed func(access.Permissions) bool) (*models.Project, bool) {
	id := parseID(c.Param("id"))
	if id == 0 {
		deny(c, "/projects")
		return nil, false
	}
	p, err := h.client(c).GetProject(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to load project", "/projects")
		return nil, false
	}
	if allowed != nil && !allowed(access.Projects.Resolve(viewer(c), access.ProjectRecord(*p))) {
		deny(c, "/projects")
		return nil, false
	}
	return p, true
}

func canEdit(p access.Permissions) bool   { return p.CanEdit }
func canDelete(p access.Permissions) bool { return p.CanDelete }

func (h *Handler) ShowProject(c *gin.Context) {
	p, ok := h.loadProject(c, nil)
	if !ok {
		return
	}
	if !access.Visible(viewer(c), *p) {
		deny(c, "/projects")
		return
	}

	lookup := history.Lookup{}
	if types, err := h.client(c).ListReference(c.Request.Context(), models.KindProjectType); err == nil {
		lookup[validation.FieldProjectType] = history.ReferenceLookup(types)
	} else {
		h.logFailure(c, err)
	}

	renderer := history.ProjectRenderer(lookup)
	entries := make([]history.Entry, 0, len(p.UpdateHistory))
	for _, e := range p.UpdateHistory {
		entries = append(entries, renderer.Render(e))
	}

	render(c, http.StatusOK, "project_info.html", gin.H{
		"Project": p,
		"Perms":   access.Projects.Resolve(viewer(c), access.ProjectRecord(*p)),
		"History": entries,
	})
}

func (h *Handler) ShowEditProject(c *gin.Context) {
	p, ok := h.loadProject(c, canEdit)
	if !ok {
		return
	}
	values := validation.Values{
		validation.FieldProjectName:     p.Name,
		validation.FieldProjectType:     idString(p.TypeID),
		validation.FieldAssignedTo:      sapString(p.AssignedTo),
		validation.FieldAssignedToGroup: string(p.AssignedToGroup),
		validation.FieldLevel:           string(p.Level),
		validation.FieldReqDate:         dateValue(p.ReqDate),
		validation.FieldPlanStart:       dateValue(p.PlanStartDate),
		validation.FieldPlanEnd:         dateValue(p.PlanEndDate),
		validation.FieldLiveDate:        dateValue(p.LiveDate),
		validation.FieldRemark:          p.Remark,
	}
	editAssignment(currentSession(c), values, validation.FieldAssignedTo, validation.FieldAssignedToGroup,
		p.AssignedTo, p.AssignedToGroup, p.AssigneeName())
	h.renderProjectForm(c, http.StatusOK, values, nil, p.ID, c.Request.URL.RawQuery, nil)
}

func (h *Handler) UpdateProject(c *gin.Context) {
	p, ok := h.loadProject(c, canEdit)
	if !ok {
		return
	}
	s := currentSession(c)

	values := formValues(c, projectFields...)
	editAssignment(s, values, validation.FieldAssignedTo, validation.FieldAssignedToGroup,
		p.AssignedTo, p.AssignedToGroup, p.AssigneeName())
	list := listQuery(c)

	if errs := validation.Validate(values, validation.ProjectRules(s.Role)); !errs.Valid() {
		h.renderProjectForm(c, http.StatusUnprocessableEntity, values, errs, p.ID, list.Encode(), nil)
		return
	}

	client := h.client(c)
	projects := h.projects(c)
	in := projectInput(values)
	saved, err := mutate(c.Request.Context(), projects, func(ctx context.Context) error {
		return client.UpdateProject(ctx, p.ID, in)
	})
	h.afterProjectMutation(c, projects, list, saved, err, "Project updated", func(banners []session.Flash) {
		h.renderProjectForm(c, statusOf(err), values, nil, p.ID, list.Encode(), banners)
	})
}

func (h *Handler) DeleteProject(c *gin.Context) {
	p, ok := h.loadProject(c, canDelete)
	if !ok {
		return
	}
	list := listQuery(c)
	client := h.client(c)
	projects := h.projects(c)

	saved, err := mutate(c.Request.Context(), projects, func(ctx context.Context) error {
		return client.DeleteProject(ctx, p.ID)
	})
	h.afterProjectMutation(c, projects, list, saved, err, "Project deleted", func([]session.Flash) {
		session.AddFlash(c, session.FlashError, apiclient.UserMessage(err, "Failed to delete project"))
		c.Redirect(http.StatusFound, withQuery("/projects", list))
	})
}

func (h *Handler) afterProjectMutation(c *gin.Context, projects *screens.Collection[models.Project], list url.Values,
	saved bool, err error, done string, onFail func([]session.Flash)) {
	if err != nil {
		h.logFailure(c, err)
	}
	switch {
	case !saved:
		onFail(failure(err, "Failed to save project"))
	case err != nil:
		session.AddFlash(c, session.FlashSuccess, done)
		c.Redirect(http.StatusFound, withQuery("/projects", list))
	default:
		h.renderProjectList(c, http.StatusOK, projects, projectQuery(list), success(done))
	}
}

// ValidateProject answers the form's inline checks. With a changed field
// only the rules reading it run, so fields fixed by the change come back
// empty.
func (h *Handler) ValidateProject(c *gin.Context) {
	s := currentSession(c)
	values := formValues(c, projectFields...)
	ownAssignment(s, values, validation.FieldAssignedTo, validation.FieldAssignedToGroup)
	rules := validation.ProjectRules(s.Role)

	if changed := c.PostForm("changed"); changed != "" {
		c.JSON(http.StatusOK, validation.Revalidate(changed, values, rules))
		return
	}
	c.JSON(http.StatusOK, validation.Validate(values, rules))
}

func (h *Handler) renderProjectForm(c *gin.Context, status int, values validation.Values, errs validation.Errors,
	id uint, list string, banners []session.Flash) {
	ctx := c.Request.Context()
	client := h.client(c)

	types, err := client.ListReference(ctx, models.KindProjectType)
	if err != nil {
		h.logFailure(c, err)
		banners = append(banners, failure(err, "Failed to load project types")...)
	}
	groups, err := assignees(ctx, client, currentSession(c), projectGroups)
	if err != nil {
		h.logFailure(c, err)
		banners = append(banners, failure(err, "Failed to load users")...)
	}

	action := "/projects"
	if id != 0 {
		action = "/projects/" + idString(id)
	}
	render(c, status, "project_form.html", gin.H{
		"Creating":  id == 0,
		"Action":    action,
		"Values":    values,
		"Errors":    errs,
		"List":      list,
		"Types":     types,
		"Assignees": groups,
		"Groups":    projectGroups,
		"Levels":    models.EffortLevels,
		"Banners":   banners,
	})
}

func projectInput(v validation.Values) models.ProjectInput {
	return models.ProjectInput{
		Name:            v.Get(validation.FieldProjectName),
		TypeID:          parseID(v.Get(validation.FieldProjectType)),
		AssignedTo:      parseSAP(v.Get(validation.FieldAssignedTo)),
		AssignedToGroup: models.ParseRole(v.Get(validation.FieldAssignedToGroup)),
		Level:           models.ParseEffortLevel(v.Get(validation.FieldLevel)),
		ReqDate:         v.Get(validation.FieldReqDate),
		PlanStartDate:   v.Get(validation.FieldPlanStart),
		PlanEndDate:     v.Get(validation.FieldPlanEnd),
		LiveDate:        optionalDate(v.Get(validation.FieldLiveDate)),
		Remark:          v.Get(validation.FieldRemark),
	}
}
