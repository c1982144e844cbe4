package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"project-tracker/internal/access"
	"project-tracker/internal/apiclient"
	"project-tracker/internal/models"
	"project-tracker/internal/screens"
	"project-tracker/internal/session"
	"project-tracker/internal/validation"
)

// UserScreen is one of the user lists. Engineers and ITBPs are the same
// screen with the role fixed.
type UserScreen struct {
	Path  string
	Title string
	Noun  string
	Role  models.Role
}

var (
	UsersScreen     = UserScreen{Path: "/users", Title: "Users", Noun: "User"}
	EngineersScreen = UserScreen{Path: "/engineers", Title: "Engineers", Noun: "Engineer", Role: models.RoleEngineer}
	ITBPsScreen     = UserScreen{Path: "/itbps", Title: "ITBPs", Noun: "ITBP", Role: models.RoleITBP}
)

var userFields = []string{
	validation.FieldSAP, validation.FieldName, validation.FieldUsername,
	validation.FieldPassword, validation.FieldRole, validation.FieldPosition,
}

type userRow struct {
	models.User
	Perms access.Permissions
	// DeleteBlocked mirrors the check done before any delete is sent.
	DeleteBlocked bool
}

func (h *Handler) users(c *gin.Context, sc UserScreen) *screens.Collection[models.User] {
	client := h.client(c)
	return screens.NewCollection(func(ctx context.Context) ([]models.User, error) {
		return client.ListUsers(ctx, sc.Role)
	})
}

func (h *Handler) ListUsers(sc UserScreen) gin.HandlerFunc {
	return func(c *gin.Context) {
		users := h.users(c, sc)
		q := screens.ParseListQuery(c.Request.URL.Query(), screens.Users.DefaultSort)

		if err := users.Reload(c.Request.Context()); err != nil {
			h.renderUserList(c, statusOf(err), sc, users, q, failure(err, "Failed to load "+sc.Title))
			return
		}
		h.renderUserList(c, http.StatusOK, sc, users, q, nil)
	}
}

func (h *Handler) renderUserList(c *gin.Context, status int, sc UserScreen, users *screens.Collection[models.User], q screens.ListQuery, banners []session.Flash) {
	v := viewer(c)
	page := screens.Apply(users.Items(), screens.Users, q, h.pageSize, screens.UserPredicates(q)...)

	rows := make([]userRow, 0, len(page.Items))
	for _, u := range page.Items {
		rows = append(rows, userRow{
			User:          u,
			Perms:         access.AdminOnly.Resolve(v, access.Record{AssigneeName: u.Name, AssigneeRole: u.Role}),
			DeleteBlocked: access.CanDeleteUser(u) != nil,
		})
	}

	render(c, status, "users.html", gin.H{
		"Screen":    sc,
		"Path":      sc.Path,
		"Page":      page,
		"Rows":      rows,
		"Query":     q,
		"Sort":      screens.Users.Sort,
		"Roles":     models.Roles,
		"Positions": models.Positions,
		"CanAdd":    access.AdminOnly.CanAdd(v),
		"Banners":   banners,
	})
}

func (h *Handler) ShowNewUser(sc UserScreen) gin.HandlerFunc {
	return func(c *gin.Context) {
		values := validation.Values{validation.FieldRole: string(sc.Role)}
		h.renderUserForm(c, http.StatusOK, sc, values, nil, 0, c.Request.URL.RawQuery, nil)
	}
}

func (h *Handler) CreateUser(sc UserScreen) gin.HandlerFunc {
	return func(c *gin.Context) {
		values := formValues(c, userFields...)
		if sc.Role != "" {
			values[validation.FieldRole] = string(sc.Role)
		}
		list := listQuery(c)

		if errs := validation.Validate(values, validation.UserRules(true)); !errs.Valid() {
			h.renderUserForm(c, http.StatusUnprocessableEntity, sc, values, errs, 0, list.Encode(), nil)
			return
		}

		in, err := userInput(values)
		if err != nil {
			errs := validation.Errors{validation.FieldSAP: err.Error()}
			h.renderUserForm(c, http.StatusUnprocessableEntity, sc, values, errs, 0, list.Encode(), nil)
			return
		}

		client := h.client(c)
		users := h.users(c, sc)
		saved, err := mutate(c.Request.Context(), users, func(ctx context.Context) error {
			return client.CreateUser(ctx, in)
		})
		h.afterUserMutation(c, sc, users, list, saved, err, sc.Noun+" created", func(banners []session.Flash) {
			h.renderUserForm(c, statusOf(err), sc, values, nil, 0, list.Encode(), banners)
		})
	}
}

func (h *Handler) ShowEditUser(sc UserScreen) gin.HandlerFunc {
	return func(c *gin.Context) {
		sap, ok := sapParam(c)
		if !ok {
			deny(c, sc.Path)
			return
		}
		u, err := h.client(c).GetUser(c.Request.Context(), sap)
		if err != nil {
			h.fail(c, err, "Failed to load "+sc.Noun, sc.Path)
			return
		}
		values := validation.Values{
			validation.FieldSAP:      strconv.FormatInt(u.SAP, 10),
			validation.FieldName:     u.Name,
			validation.FieldUsername: u.Username,
			validation.FieldRole:     string(u.Role),
			validation.FieldPosition: string(u.Position),
		}
		h.renderUserForm(c, http.StatusOK, sc, values, nil, sap, c.Request.URL.RawQuery, nil)
	}
}

func (h *Handler) UpdateUser(sc UserScreen) gin.HandlerFunc {
	return func(c *gin.Context) {
		sap, ok := sapParam(c)
		if !ok {
			deny(c, sc.Path)
			return
		}
		values := formValues(c, userFields...)
		if sc.Role != "" {
			values[validation.FieldRole] = string(sc.Role)
		}
		list := listQuery(c)

		if errs := validation.Validate(values, validation.UserRules(false)); !errs.Valid() {
			h.renderUserForm(c, http.StatusUnprocessableEntity, sc, values, errs, sap, list.Encode(), nil)
			return
		}

		in, err := userInput(values)
		if err != nil {
			errs := validation.Errors{validation.FieldSAP: err.Error()}
			h.renderUserForm(c, http.StatusUnprocessableEntity, sc, values, errs, sap, list.Encode(), nil)
			return
		}

		client := h.client(c)
		users := h.users(c, sc)
		saved, err := mutate(c.Request.Context(), users, func(ctx context.Context) error {
			return client.UpdateUser(ctx, sap, in)
		})
		h.afterUserMutation(c, sc, users, list, saved, err, sc.Noun+" updated", func(banners []session.Flash) {
			h.renderUserForm(c, statusOf(err), sc, values, nil, sap, list.Encode(), banners)
		})
	}
}

// DeleteUser refuses users that still own work before anything is sent to
// the backend.
func (h *Handler) DeleteUser(sc UserScreen) gin.HandlerFunc {
	return func(c *gin.Context) {
		sap, ok := sapParam(c)
		if !ok {
			deny(c, sc.Path)
			return
		}
		list := listQuery(c)
		back := withQuery(sc.Path, list)
		client := h.client(c)

		u, err := client.GetUser(c.Request.Context(), sap)
		if err != nil {
			h.fail(c, err, "Failed to delete "+sc.Noun, back)
			return
		}
		if err := access.CanDeleteUser(*u); err != nil {
			session.AddFlash(c, session.FlashError, err.Error())
			c.Redirect(http.StatusFound, back)
			return
		}

		users := h.users(c, sc)
		saved, err := mutate(c.Request.Context(), users, func(ctx context.Context) error {
			return client.DeleteUser(ctx, sap)
		})
		h.afterUserMutation(c, sc, users, list, saved, err, sc.Noun+" deleted", func([]session.Flash) {
			session.AddFlash(c, session.FlashError, apiclient.UserMessage(err, "Failed to delete "+sc.Noun))
			c.Redirect(http.StatusFound, back)
		})
	}
}

// afterUserMutation renders the refreshed list on success. A rejected
// mutation goes to onFail; an accepted one whose reload failed redirects
// so the list loads again.
func (h *Handler) afterUserMutation(c *gin.Context, sc UserScreen, users *screens.Collection[models.User], list url.Values,
	saved bool, err error, done string, onFail func([]session.Flash)) {
	if err != nil {
		h.logFailure(c, err)
	}
	switch {
	case !saved:
		onFail(failure(err, "Failed to save "+sc.Noun))
	case err != nil:
		session.AddFlash(c, session.FlashSuccess, done)
		c.Redirect(http.StatusFound, withQuery(sc.Path, list))
	default:
		q := screens.ParseListQuery(list, screens.Users.DefaultSort)
		h.renderUserList(c, http.StatusOK, sc, users, q, success(done))
	}
}

func (h *Handler) renderUserForm(c *gin.Context, status int, sc UserScreen, values validation.Values, errs validation.Errors,
	sap int64, list string, banners []session.Flash) {
	action := sc.Path
	if sap != 0 {
		action = sc.Path + "/" + strconv.FormatInt(sap, 10)
	}
	render(c, status, "user_form.html", gin.H{
		"Screen":    sc,
		"Creating":  sap == 0,
		"Action":    action,
		"Values":    values,
		"Errors":    errs,
		"List":      list,
		"Roles":     models.Roles,
		"Positions": models.Positions,
		"Banners":   banners,
	})
}

func userInput(v validation.Values) (models.UserInput, error) {
	sap, err := validation.ParseSAP(v.Get(validation.FieldSAP))
	if err != nil {
		return models.UserInput{}, err
	}
	in := models.UserInput{
		SAP:      sap,
		Name:     v.Get(validation.FieldName),
		Username: v.Get(validation.FieldUsername),
		Password: v[validation.FieldPassword],
		Role:     models.ParseRole(v.Get(validation.FieldRole)),
		Position: models.ParsePosition(v.Get(validation.FieldPosition)),
	}
	if in.Role == models.RoleAdmin {
		in.Position = ""
	}
	return in, nil
}

func sapParam(c *gin.Context) (int64, bool) {
	sap, err := strconv.ParseInt(c.Param("sap"), 10, 64)
	return sap, err == nil && sap > 0
}
