package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"project-tracker/internal/access"
	"project-tracker/internal/apiclient"
	"project-tracker/internal/models"
	"project-tracker/internal/screens"
	"project-tracker/internal/session"
	"project-tracker/internal/validation"
)

var referenceFields = []string{validation.FieldLabel, validation.FieldRole}

// URL slugs of the reference kinds; the rest use their API name.
var kindSlugs = map[models.ReferenceKind]string{
	models.KindProjectType: "project-types",
}

func kindSlug(k models.ReferenceKind) string {
	if s, ok := kindSlugs[k]; ok {
		return s
	}
	return string(k)
}

func kindParam(c *gin.Context) (models.ReferenceKind, bool) {
	slug := c.Param("kind")
	for k, s := range kindSlugs {
		if s == slug {
			return k, true
		}
	}
	return models.ParseReferenceKind(slug)
}

func referencePath(k models.ReferenceKind) string {
	return "/data/" + kindSlug(k)
}

type referenceTab struct {
	Title  string
	Path   string
	Active bool
}

func referenceTabs(active models.ReferenceKind) []referenceTab {
	tabs := make([]referenceTab, 0, len(models.ReferenceKinds))
	for _, k := range models.ReferenceKinds {
		tabs = append(tabs, referenceTab{Title: k.Title(), Path: referencePath(k), Active: k == active})
	}
	return tabs
}

type referenceRow struct {
	models.ReferenceItem
	Perms access.Permissions
}

func (h *Handler) references(c *gin.Context, kind models.ReferenceKind) *screens.Collection[models.ReferenceItem] {
	client := h.client(c)
	return screens.NewCollection(func(ctx context.Context) ([]models.ReferenceItem, error) {
		return client.ListReference(ctx, kind)
	})
}

func (h *Handler) ListReference(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		c.Redirect(http.StatusFound, referencePath(models.KindProjectType))
		return
	}
	items := h.references(c, kind)
	q := screens.ParseListQuery(c.Request.URL.Query(), screens.References.DefaultSort)

	if err := items.Reload(c.Request.Context()); err != nil {
		h.logFailure(c, err)
		h.renderReferenceList(c, statusOf(err), kind, items, q, failure(err, "Failed to load "+kind.Title()))
		return
	}
	h.renderReferenceList(c, http.StatusOK, kind, items, q, nil)
}

func (h *Handler) renderReferenceList(c *gin.Context, status int, kind models.ReferenceKind,
	items *screens.Collection[models.ReferenceItem], q screens.ListQuery, banners []session.Flash) {
	v := viewer(c)
	page := screens.Apply(items.Items(), screens.References, q, h.pageSize, screens.ReferencePredicates(q)...)

	rows := make([]referenceRow, 0, len(page.Items))
	for _, it := range page.Items {
		rows = append(rows, referenceRow{ReferenceItem: it, Perms: access.AdminOnly.Resolve(v, access.Record{})})
	}

	render(c, status, "reference.html", gin.H{
		"Kind":    kind,
		"Title":   kind.Title(),
		"Path":    referencePath(kind),
		"Tabs":    referenceTabs(kind),
		"HasRole": kind.HasRole(),
		"Roles":   models.Roles,
		"Page":    page,
		"Rows":    rows,
		"Query":   q,
		"Sort":    screens.References.Sort,
		"CanAdd":  access.AdminOnly.CanAdd(v),
		"Banners": banners,
	})
}

func (h *Handler) ShowNewReference(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		c.Redirect(http.StatusFound, referencePath(models.KindProjectType))
		return
	}
	h.renderReferenceForm(c, http.StatusOK, kind, validation.Values{}, nil, 0, c.Request.URL.RawQuery, nil)
}

func (h *Handler) CreateReference(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		c.Redirect(http.StatusFound, referencePath(models.KindProjectType))
		return
	}
	values := formValues(c, referenceFields...)
	list := listQuery(c)

	if errs := validation.Validate(values, validation.ReferenceRules(kind)); !errs.Valid() {
		h.renderReferenceForm(c, http.StatusUnprocessableEntity, kind, values, errs, 0, list.Encode(), nil)
		return
	}

	client := h.client(c)
	items := h.references(c, kind)
	in := referenceInput(kind, values)
	saved, err := mutate(c.Request.Context(), items, func(ctx context.Context) error {
		return client.CreateReference(ctx, kind, in)
	})
	h.afterReferenceMutation(c, kind, items, list, saved, err, kind.Title()+" created", func(banners []session.Flash) {
		h.renderReferenceForm(c, statusOf(err), kind, values, nil, 0, list.Encode(), banners)
	})
}

// ShowEditReference has no detail endpoint to read from; the item comes
// out of the kind's list.
func (h *Handler) ShowEditReference(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		c.Redirect(http.StatusFound, referencePath(models.KindProjectType))
		return
	}
	id := parseID(c.Param("id"))
	items, err := h.client(c).ListReference(c.Request.Context(), kind)
	if err != nil {
		h.fail(c, err, "Failed to load "+kind.Title(), referencePath(kind))
		return
	}
	for _, it := range items {
		if it.ID == id {
			values := validation.Values{validation.FieldLabel: it.Label, validation.FieldRole: string(it.Role)}
			h.renderReferenceForm(c, http.StatusOK, kind, values, nil, id, c.Request.URL.RawQuery, nil)
			return
		}
	}
	session.AddFlash(c, session.FlashError, kind.Title()+" not found")
	c.Redirect(http.StatusFound, referencePath(kind))
}

func (h *Handler) UpdateReference(c *gin.Context) {
	kind, ok := kindParam(c)
	id := parseID(c.Param("id"))
	if !ok || id == 0 {
		c.Redirect(http.StatusFound, referencePath(models.KindProjectType))
		return
	}
	values := formValues(c, referenceFields...)
	list := listQuery(c)

	if errs := validation.Validate(values, validation.ReferenceRules(kind)); !errs.Valid() {
		h.renderReferenceForm(c, http.StatusUnprocessableEntity, kind, values, errs, id, list.Encode(), nil)
		return
	}

	client := h.client(c)
	items := h.references(c, kind)
	in := referenceInput(kind, values)
	saved, err := mutate(c.Request.Context(), items, func(ctx context.Context) error {
		return client.UpdateReference(ctx, kind, id, in)
	})
	h.afterReferenceMutation(c, kind, items, list, saved, err, kind.Title()+" updated", func(banners []session.Flash) {
		h.renderReferenceForm(c, statusOf(err), kind, values, nil, id, list.Encode(), banners)
	})
}

func (h *Handler) DeleteReference(c *gin.Context) {
	kind, ok := kindParam(c)
	id := parseID(c.Param("id"))
	if !ok || id == 0 {
		c.Redirect(http.StatusFound, referencePath(models.KindProjectType))
		return
	}
	list := listQuery(c)
	client := h.client(c)
	items := h.references(c, kind)

	saved, err := mutate(c.Request.Context(), items, func(ctx context.Context) error {
		return client.DeleteReference(ctx, kind, id)
	})
	h.afterReferenceMutation(c, kind, items, list, saved, err, kind.Title()+" deleted", func([]session.Flash) {
		session.AddFlash(c, session.FlashError, apiclient.UserMessage(err, "Failed to delete "+kind.Title()))
		c.Redirect(http.StatusFound, withQuery(referencePath(kind), list))
	})
}

func (h *Handler) afterReferenceMutation(c *gin.Context, kind models.ReferenceKind, items *screens.Collection[models.ReferenceItem],
	list url.Values, saved bool, err error, done string, onFail func([]session.Flash)) {
	if err != nil {
		h.logFailure(c, err)
	}
	switch {
	case !saved:
		onFail(failure(err, "Failed to save "+kind.Title()))
	case err != nil:
		session.AddFlash(c, session.FlashSuccess, done)
		c.Redirect(http.StatusFound, withQuery(referencePath(kind), list))
	default:
		q := screens.ParseListQuery(list, screens.References.DefaultSort)
		h.renderReferenceList(c, http.StatusOK, kind, items, q, success(done))
	}
}

func (h *Handler) renderReferenceForm(c *gin.Context, status int, kind models.ReferenceKind, values validation.Values,
	errs validation.Errors, id uint, list string, banners []session.Flash) {
	action := referencePath(kind)
	if id != 0 {
		action += "/" + idString(id)
	}
	render(c, status, "reference_form.html", gin.H{
		"Kind":     kind,
		"Title":    kind.Title(),
		"Path":     referencePath(kind),
		"HasRole":  kind.HasRole(),
		"Roles":    models.Roles,
		"Creating": id == 0,
		"Action":   action,
		"Values":   values,
		"Errors":   errs,
		"List":     list,
		"Banners":  banners,
	})
}

func referenceInput(kind models.ReferenceKind, v validation.Values) models.ReferenceInput {
	in := models.ReferenceInput{Label: v.Get(validation.FieldLabel)}
	if kind.HasRole() {
		in.Role = models.ParseRole(v.Get(validation.FieldRole))
	}
	return in
}
