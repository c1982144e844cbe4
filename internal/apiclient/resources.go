package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"project-tracker/internal/models"
)

func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/login", nil, models.LoginRequest{Username: username, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// users

// ListUsers returns every user, or only those of role when it is set.
func (c *Client) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	var q url.Values
	if role != "" {
		q = url.Values{"role": {string(role)}}
	}
	var out []models.User
	if err := c.do(ctx, http.MethodGet, "/users", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, sap int64) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+strconv.FormatInt(sap, 10), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, in models.UserInput) error {
	return c.do(ctx, http.MethodPost, "/users", nil, in, nil)
}

func (c *Client) UpdateUser(ctx context.Context, sap int64, in models.UserInput) error {
	return c.do(ctx, http.MethodPatch, "/users/"+strconv.FormatInt(sap, 10), nil, in, nil)
}

func (c *Client) DeleteUser(ctx context.Context, sap int64) error {
	return c.do(ctx, http.MethodDelete, "/users/"+strconv.FormatInt(sap, 10), nil, nil, nil)
}

// projects

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var out models.Project
	if err := c.do(ctx, http.MethodGet, projectPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, in models.ProjectInput) error {
	return c.do(ctx, http.MethodPost, "/projects", nil, in, nil)
}

func (c *Client) UpdateProject(ctx context.Context, id uint, in models.ProjectInput) error {
	return c.do(ctx, http.MethodPatch, projectPath(id), nil, in, nil)
}

func (c *Client) DeleteProject(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, projectPath(id), nil, nil, nil)
}

func (c *Client) ListProjectTasks(ctx context.Context, id uint) ([]models.Task, error) {
	var out []models.Task
	if err := c.do(ctx, http.MethodGet, projectPath(id)+"/tasks", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Export is a downloaded spreadsheet.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DownloadProjects fetches the projects+tasks workbook for plans starting
// between start and end (YYYY-MM-DD).
func (c *Client) DownloadProjects(ctx context.Context, start, end string) (*Export, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/projects/download", url.Values{"start": {start}, "end": {end}}, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET /projects/download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	exp := &Export{
		Filename:    "projects_tasks.xlsx",
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		exp.Filename = params["filename"]
	}
	return exp, nil
}

// tasks

func (c *Client) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	var out models.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTask(ctx context.Context, in models.TaskInput) error {
	return c.do(ctx, http.MethodPost, "/tasks", nil, in, nil)
}

func (c *Client) UpdateTask(ctx context.Context, id uint, in models.TaskInput) error {
	return c.do(ctx, http.MethodPatch, taskPath(id), nil, in, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil)
}

// reference data

func (c *Client) ListReference(ctx context.Context, kind models.ReferenceKind) ([]models.ReferenceItem, error) {
	var out []models.ReferenceItem
	if err := c.do(ctx, http.MethodGet, "/"+string(kind), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateReference(ctx context.Context, kind models.ReferenceKind, in models.ReferenceInput) error {
	return c.do(ctx, http.MethodPost, "/"+string(kind), nil, in, nil)
}

func (c *Client) UpdateReference(ctx context.Context, kind models.ReferenceKind, id uint, in models.ReferenceInput) error {
	return c.do(ctx, http.MethodPatch, referencePath(kind, id), nil, in, nil)
}

func (c *Client) DeleteReference(ctx context.Context, kind models.ReferenceKind, id uint) error {
	return c.do(ctx, http.MethodDelete, referencePath(kind, id), nil, nil, nil)
}

func projectPath(id uint) string {
	return "/projects/" + strconv.FormatUint(uint64(id), 10)
}

func taskPath(id uint) string {
	return "/tasks/" + strconv.FormatUint(uint64(id), 10)
}

func referencePath(kind models.ReferenceKind, id uint) string {
	return "/" + string(kind) + "/" + strconv.FormatUint(uint64(id), 10)
}
