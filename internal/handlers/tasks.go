package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
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

var taskFields = []string{
	validation.FieldTaskDetail, validation.FieldTaskGroup, validation.FieldPlatform,
	validation.FieldAssignedTo, validation.FieldAssignedToGroup,
	validation.FieldPlanStart, validation.FieldPlanEnd,
	validation.FieldActualStart, validation.FieldActualEnd, validation.FieldProgress,
}

type taskRow struct {
	models.Task
	Perms     access.Permissions
	LateStart bool
	LateEnd   bool
}

func (h *Handler) tasks(c *gin.Context, projectID uint) *screens.Collection[models.Task] {
	client := h.client(c)
	return screens.NewCollection(func(ctx context.Context) ([]models.Task, error) {
		return client.ListProjectTasks(ctx, projectID)
	})
}

func tasksPath(projectID uint) string {
	return "/projects/" + idString(projectID) + "/tasks"
}

// taskProject loads the parent project and checks it is visible to the
// viewer. It writes the response itself when ok is false.
func (h *Handler) taskProject(c *gin.Context) (*models.Project, bool) {
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
	if !access.Visible(viewer(c), *p) {
		deny(c, "/projects")
		return nil, false
	}
	return p, true
}

func (h *Handler) ListTasks(c *gin.Context) {
	p, ok := h.taskProject(c)
	if !ok {
		return
	}
	tasks := h.tasks(c, p.ID)
	q := screens.ParseListQuery(c.Request.URL.Query(), screens.Tasks.DefaultSort)

	if err := tasks.Reload(c.Request.Context()); err != nil {
		h.logFailure(c, err)
		h.renderTaskList(c, statusOf(err), p, tasks, q, failure(err, "Failed to load tasks"))
		return
	}
	h.renderTaskList(c, http.StatusOK, p, tasks, q, nil)
}

func (h *Handler) renderTaskList(c *gin.Context, status int, p *models.Project, tasks *screens.Collection[models.Task],
	q screens.ListQuery, banners []session.Flash) {
	v := viewer(c)
	now := h.now()
	items := tasks.Items()
	page := screens.Apply(items, screens.Tasks, q, h.pageSize, screens.TaskPredicates(q)...)

	rows := make([]taskRow, 0, len(page.Items))
	for _, t := range page.Items {
		rows = append(rows, taskRow{
			Task:      t,
			Perms:     access.Tasks.Resolve(v, access.TaskRecord(t)),
			LateStart: screens.Late(t.PlanStartDate, t.ActualStart, false, now),
			LateEnd:   screens.Late(t.PlanEndDate, t.ActualEnd, true, now),
		})
	}

	starts := make([]*time.Time, 0, len(items))
	for _, t := range items {
		starts = append(starts, t.PlanStartDate)
	}

	render(c, status, "tasks.html", gin.H{
		"Project":  p,
		"Path":     tasksPath(p.ID),
		"Page":     page,
		"Rows":     rows,
		"Query":    q,
		"Sort":     screens.Tasks.Sort,
		"Summary":  screens.Summarize(items, func(t models.Task) models.Status { return t.Status }),
		"Statuses": models.Statuses,
		"Months":   months,
		"Years":    years(starts),
		"CanAdd":   access.Tasks.CanAdd(v),
		"Banners":  banners,
	})
}

func (h *Handler) ShowNewTask(c *gin.Context) {
	p, ok := h.taskProject(c)
	if !ok {
		return
	}
	if !access.Tasks.CanAdd(viewer(c)) {
		deny(c, tasksPath(p.ID))
		return
	}
	values := validation.Values{}
	ownAssignment(currentSession(c), values, validation.FieldAssignedTo, validation.FieldAssignedToGroup)
	h.renderTaskForm(c, http.StatusOK, p, values, nil, 0, c.Request.URL.RawQuery, nil)
}

func (h *Handler) CreateTask(c *gin.Context) {
	p, ok := h.taskProject(c)
	if !ok {
		return
	}
	s := currentSession(c)
	if !access.Tasks.CanAdd(s.Viewer()) {
		deny(c, tasksPath(p.ID))
		return
	}

	values := formValues(c, taskFields...)
	ownAssignment(s, values, validation.FieldAssignedTo, validation.FieldAssignedToGroup)
	list := listQuery(c)

	if errs := validation.Validate(values, validation.TaskRules(s.Role)); !errs.Valid() {
		h.renderTaskForm(c, http.StatusUnprocessableEntity, p, values, errs, 0, list.Encode(), nil)
		return
	}

	client := h.client(c)
	tasks := h.tasks(c, p.ID)
	in := taskInput(p.ID, values)
	saved, err := mutate(c.Request.Context(), tasks, func(ctx context.Context) error {
		return client.CreateTask(ctx, in)
	})
	h.afterTaskMutation(c, p, tasks, list, saved, err, "Task created", func(banners []session.Flash) {
		h.renderTaskForm(c, statusOf(err), p, values, nil, 0, list.Encode(), banners)
	})
}

// loadTask fetches the task named in the URL, which must belong to p, and
// checks the viewer may act on it.
func (h *Handler) loadTask(c *gin.Context, p *models.Project, allowed func(access.Permissions) bool) (*models.Task, bool) {
	back := tasksPath(p.ID)
	id := parseID(c.Param("task"))
	if id == 0 {
		deny(c, back)
		return nil, false
	}
	t, err := h.client(c).GetTask(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to load task", back)
		return nil, false
	}
	if t.ProjectID != p.ID {
		session.AddFlash(c, session.FlashError, "Task not found")
		c.Redirect(http.StatusFound, back)
		return nil, false
	}
	if allowed != nil && !allowed(access.Tasks.Resolve(viewer(c), access.TaskRecord(*t))) {
		deny(c, back)
		return nil, false
	}
	return t, true
}

func (h *Handler) ShowTask(c *gin.Context) {
	p, ok := h.taskProject(c)
	if !ok {
		return
	}
	t, ok := h.loadTask(c, p, nil)
	if !ok {
		return
	}

	renderer := history.TaskRenderer(h.taskLookup(c))
	entries := make([]history.Entry, 0, len(t.UpdateHistory))
	for _, e := range t.UpdateHistory {
		entries = append(entries, renderer.Render(e))
	}

	now := h.now()
	render(c, http.StatusOK, "task_info.html", gin.H{
		"Project":   p,
		"Task":      t,
		"Path":      tasksPath(p.ID),
		"Perms":     access.Tasks.Resolve(viewer(c), access.TaskRecord(*t)),
		"LateStart": screens.Late(t.PlanStartDate, t.ActualStart, false, now),
		"LateEnd":   screens.Late(t.PlanEndDate, t.ActualEnd, true, now),
		"History":   entries,
	})
}

// taskLookup resolves the reference ids that show up in task history.
// A failed fetch leaves raw ids in place.
func (h *Handler) taskLookup(c *gin.Context) history.Lookup {
	client := h.client(c)
	lookup := history.Lookup{}
	for field, kind := range map[string]models.ReferenceKind{
		validation.FieldTaskGroup: models.KindTaskGroup,
		validation.FieldPlatform:  models.KindPlatform,
	} {
		items, err := client.ListReference(c.Request.Context(), kind)
		if err != nil {
			h.logFailure(c, err)
			continue
		}
		lookup[field] = history.ReferenceLookup(items)
	}
	return lookup
}

func (h *Handler) ShowEditTask(c *gin.Context) {
	p, ok := h.taskProject(c)
	if !ok {
		return
	}
	t, ok := h.loadTask(c, p, canEdit)
	if !ok {
		return
	}
	values := validation.Values{
		validation.FieldTaskDetail:      t.Detail,
		validation.FieldTaskGroup:       idString(t.GroupID),
		validation.FieldPlatform:        idString(t.PlatformID),
		validation.FieldAssignedTo:      sapString(t.AssignedTo),
		validation.FieldAssignedToGroup: string(t.AssignedToGroup),
		validation.FieldPlanStart:       dateValue(t.PlanStartDate),
		validation.FieldPlanEnd:         dateValue(t.PlanEndDate),
		validation.FieldActualStart:     dateValue(t.ActualStart),
		validation.FieldActualEnd:       dateValue(t.ActualEnd),
		validation.FieldProgress:        strconv.Itoa(t.Progress),
	}
	editAssignment(currentSession(c), values, validation.FieldAssignedTo, validation.FieldAssignedToGroup,
		t.AssignedTo, t.AssignedToGroup, t.AssigneeName())
	h.renderTaskForm(c, http.StatusOK, p, values, nil, t.ID, c.Request.URL.RawQuery, nil)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	p, ok := h.taskProject(c)
	if !ok {
		return
	}
	t, ok := h.loadTask(c, p, canEdit)
	if !ok {
		return
	}
	s := currentSession(c)

	values := formValues(c, taskFields...)
	editAssignment(s, values, validation.FieldAssignedTo, validation.FieldAssignedToGroup,
		t.AssignedTo, t.AssignedToGroup, t.AssigneeName())
	list := listQuery(c)

	if errs := validation.Validate(values, validation.TaskRules(s.Role)); !errs.Valid() {
		h.renderTaskForm(c, http.StatusUnprocessableEntity, p, values, errs, t.ID, list.Encode(), nil)
		return
	}

	client := h.client(c)
	tasks := h.tasks(c, p.ID)
	in := taskInput(p.ID, values)
	saved, err := mutate(c.Request.Context(), tasks, func(ctx context.Context) error {
		return client.UpdateTask(ctx, t.ID, in)
	})
	h.afterTaskMutation(c, p, tasks, list, saved, err, "Task updated", func(banners []session.Flash) {
		h.renderTaskForm(c, statusOf(err), p, values, nil, t.ID, list.Encode(), banners)
	})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	p, ok := h.taskProject(c)
	if !ok {
		return
	}
	t, ok := h.loadTask(c, p, canDelete)
	if !ok {
		return
	}
	list := listQuery(c)
	client := h.client(c)
	tasks := h.tasks(c, p.ID)

	saved, err := mutate(c.Request.Context(), tasks, func(ctx context.Context) error {
		return client.DeleteTask(ctx, t.ID)
	})
	h.afterTaskMutation(c, p, tasks, list, saved, err, "Task deleted", func([]session.Flash) {
		session.AddFlash(c, session.FlashError, apiclient.UserMessage(err, "Failed to delete task"))
		c.Redirect(http.StatusFound, withQuery(tasksPath(p.ID), list))
	})
}

func (h *Handler) afterTaskMutation(c *gin.Context, p *models.Project, tasks *screens.Collection[models.Task], list url.Values,
	saved bool, err error, done string, onFail func([]session.Flash)) {
	if err != nil {
		h.logFailure(c, err)
	}
	switch {
	case !saved:
		onFail(failure(err, "Failed to save task"))
	case err != nil:
		session.AddFlash(c, session.FlashSuccess, done)
		c.Redirect(http.StatusFound, withQuery(tasksPath(p.ID), list))
	default:
		q := screens.ParseListQuery(list, screens.Tasks.DefaultSort)
		h.renderTaskList(c, http.StatusOK, p, tasks, q, success(done))
	}
}

func (h *Handler) renderTaskForm(c *gin.Context, status int, p *models.Project, values validation.Values, errs validation.Errors,
	id uint, list string, banners []session.Flash) {
	ctx := c.Request.Context()
	client := h.client(c)

	groups, err := client.ListReference(ctx, models.KindTaskGroup)
	if err != nil {
		h.logFailure(c, err)
		banners = append(banners, failure(err, "Failed to load task groups")...)
	}
	platforms, err := client.ListReference(ctx, models.KindPlatform)
	if err != nil {
		h.logFailure(c, err)
		banners = append(banners, failure(err, "Failed to load platforms")...)
	}
	people, err := assignees(ctx, client, currentSession(c), taskGroups)
	if err != nil {
		h.logFailure(c, err)
		banners = append(banners, failure(err, "Failed to load users")...)
	}

	action := tasksPath(p.ID)
	if id != 0 {
		action += "/" + idString(id)
	}
	render(c, status, "task_form.html", gin.H{
		"Project":    p,
		"Path":       tasksPath(p.ID),
		"Creating":   id == 0,
		"Action":     action,
		"Values":     values,
		"Errors":     errs,
		"List":       list,
		"Groups":     taskGroups,
		"Assignees":  people,
		"TaskGroups": groups,
		"Platforms":  platforms,
		"Banners":    banners,
	})
}

func taskInput(projectID uint, v validation.Values) models.TaskInput {
	in := models.TaskInput{
		ProjectID:       projectID,
		Detail:          v.Get(validation.FieldTaskDetail),
		GroupID:         parseID(v.Get(validation.FieldTaskGroup)),
		PlatformID:      parseID(v.Get(validation.FieldPlatform)),
		AssignedTo:      parseSAP(v.Get(validation.FieldAssignedTo)),
		AssignedToGroup: models.ParseRole(v.Get(validation.FieldAssignedToGroup)),
		PlanStartDate:   v.Get(validation.FieldPlanStart),
		PlanEndDate:     v.Get(validation.FieldPlanEnd),
		ActualStart:     optionalDate(v.Get(validation.FieldActualStart)),
		ActualEnd:       optionalDate(v.Get(validation.FieldActualEnd)),
	}
	if s := v.Get(validation.FieldProgress); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			in.Progress = &n
		}
	}
	return in
}
