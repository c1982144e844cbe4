package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"project-tracker/internal/apiclient"
	"project-tracker/internal/config"
	"project-tracker/internal/handlers"
	"project-tracker/internal/models"
	"project-tracker/internal/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// backend is an in-memory stand-in for the REST API that records every
// request it gets.
type backend struct {
	mu       sync.Mutex
	calls    []string
	users    []models.User
	projects []models.Project
	tasks    []models.Task
	items    map[string][]models.ReferenceItem

	projectPatch *models.ProjectInput
}

func (b *backend) record(c *gin.Context) {
	b.mu.Lock()
	b.calls = append(b.calls, c.Request.Method+" "+c.Request.URL.Path)
	b.mu.Unlock()
}

func (b *backend) reset() {
	b.mu.Lock()
	b.calls = nil
	b.mu.Unlock()
}

func (b *backend) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *backend) count(call string) int {
	n := 0
	for _, c := range b.seen() {
		if c == call {
			n++
		}
	}
	return n
}

func (b *backend) user(sap int64) (models.User, bool) {
	for _, u := range b.users {
		if u.SAP == sap {
			return u, true
		}
	}
	return models.User{}, false
}

func (b *backend) project(id string) (models.Project, bool) {
	for _, p := range b.projects {
		if strconv.FormatUint(uint64(p.ID), 10) == id {
			return p, true
		}
	}
	return models.Project{}, false
}

func (b *backend) task(id string) (models.Task, bool) {
	for _, t := range b.tasks {
		if strconv.FormatUint(uint64(t.ID), 10) == id {
			return t, true
		}
	}
	return models.Task{}, false
}

func (b *backend) routes() http.Handler {
	r := gin.New()
	r.Use(func(c *gin.Context) { b.record(c); c.Next() })

	r.POST("/login", func(c *gin.Context) {
		var req models.LoginRequest
		_ = c.ShouldBindJSON(&req)
		for _, u := range b.users {
			if u.Username == req.Username && req.Password == "secret" {
				c.JSON(http.StatusOK, models.LoginResponse{Token: "token-" + u.Username, User: u})
				return
			}
		}
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Invalid username or password"})
	})
	r.GET("/users", func(c *gin.Context) {
		role := models.Role(c.Query("role"))
		out := []models.User{}
		for _, u := range b.users {
			if role == "" || u.Role == role {
				out = append(out, u)
			}
		}
		c.JSON(http.StatusOK, out)
	})
	r.GET("/users/:sap", func(c *gin.Context) {
		sap, _ := strconv.ParseInt(c.Param("sap"), 10, 64)
		if u, ok := b.user(sap); ok {
			c.JSON(http.StatusOK, u)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
	})
	r.POST("/users", func(c *gin.Context) {
		var in models.UserInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
			return
		}
		if _, ok := b.user(in.SAP); ok {
			c.JSON(http.StatusConflict, gin.H{"msg": "SAP already exists"})
			return
		}
		b.users = append(b.users, models.User{SAP: in.SAP, Name: in.Name, Username: in.Username, Role: in.Role, Position: in.Position})
		c.JSON(http.StatusCreated, gin.H{"msg": "created"})
	})
	r.DELETE("/users/:sap", func(c *gin.Context) {
		sap, _ := strconv.ParseInt(c.Param("sap"), 10, 64)
		for i, u := range b.users {
			if u.SAP == sap {
				b.users = append(b.users[:i], b.users[i+1:]...)
				break
			}
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/projects", func(c *gin.Context) { c.JSON(http.StatusOK, b.projects) })
	r.POST("/projects", func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"msg": "created"}) })
	r.GET("/projects/:id", func(c *gin.Context) {
		if p, ok := b.project(c.Param("id")); ok {
			c.JSON(http.StatusOK, p)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"msg": "Project not found"})
	})
	r.PATCH("/projects/:id", func(c *gin.Context) {
		var in models.ProjectInput
		if err := json.NewDecoder(c.Request.Body).Decode(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
			return
		}
		b.projectPatch = &in
		c.JSON(http.StatusOK, gin.H{"msg": "updated"})
	})
	r.DELETE("/projects/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/projects/:id/tasks", func(c *gin.Context) {
		out := []models.Task{}
		for _, t := range b.tasks {
			if strconv.FormatUint(uint64(t.ProjectID), 10) == c.Param("id") {
				out = append(out, t)
			}
		}
		c.JSON(http.StatusOK, out)
	})
	r.POST("/tasks", func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"msg": "created"}) })
	r.GET("/tasks/:id", func(c *gin.Context) {
		if t, ok := b.task(c.Param("id")); ok {
			c.JSON(http.StatusOK, t)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"msg": "Task not found"})
	})
	r.PATCH("/tasks/:id", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"msg": "updated"}) })
	r.DELETE("/tasks/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, kind := range models.ReferenceKinds {
		path := "/" + string(kind)
		r.GET(path, func(c *gin.Context) {
			out := append([]models.ReferenceItem{}, b.items[path]...)
			c.JSON(http.StatusOK, out)
		})
		r.POST(path, func(c *gin.Context) {
			var in models.ReferenceInput
			if err := json.NewDecoder(c.Request.Body).Decode(&in); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
				return
			}
			id := uint(len(b.items[path]) + 100)
			b.items[path] = append(b.items[path], models.ReferenceItem{ID: id, Kind: kind, Label: in.Label, Role: in.Role})
			c.JSON(http.StatusCreated, gin.H{"msg": "created"})
		})
		r.DELETE(path+"/:id", func(c *gin.Context) {
			kept := b.items[path][:0]
			for _, it := range b.items[path] {
				if strconv.FormatUint(uint64(it.ID), 10) != c.Param("id") {
					kept = append(kept, it)
				}
			}
			b.items[path] = kept
			c.Status(http.StatusNoContent)
		})
	}
	return r
}

type harness struct {
	t       *testing.T
	backend *backend
	router  *gin.Engine
	cookie  *http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := &backend{
		users: []models.User{
			{SAP: 1, Name: "Admin", Username: "admin", Role: models.RoleAdmin},
			{SAP: 1001, Name: "Alice", Username: "alice", Role: models.RoleITBP, Position: models.PositionBackend, TotalProjects: 2},
			{SAP: 1002, Name: "Bob", Username: "bob", Role: models.RoleEngineer, Position: models.PositionMobile},
			{SAP: 2001, Name: "Sam", Username: "sam", Role: models.RoleSAP, Position: models.PositionBackend},
		},
		items: map[string][]models.ReferenceItem{
			"/projecttypes": {{ID: 1, Kind: models.KindProjectType, Label: "Enhancement"}},
			"/platforms":    {{ID: 1, Kind: models.KindPlatform, Label: "Web"}},
			"/task-groups":  {{ID: 1, Kind: models.KindTaskGroup, Label: "Development"}},
		},
	}
	alice, _ := b.user(1001)
	bob, _ := b.user(1002)
	b.projects = []models.Project{
		{ID: 1, Name: "Alpha Migration", AssignedTo: 1001, User: &alice, Status: models.StatusToDo, Level: models.EffortLow},
		{ID: 2, Name: "Beta Portal", AssignedTo: 1002, User: &bob, Status: models.StatusInProgress, Level: models.EffortMid},
		{ID: 7, Name: "Gamma Rollout", TypeID: 1, AssignedTo: 1001, User: &alice, AssignedToGroup: models.RoleITBP,
			Status: models.StatusInProgress, Level: models.EffortLow},
	}
	b.tasks = []models.Task{
		{ID: 70, ProjectID: 7, Detail: "Cutover plan", AssignedTo: 1001, User: &alice, AssignedToGroup: models.RoleITBP},
	}
	api := httptest.NewServer(b.routes())
	t.Cleanup(api.Close)

	cfg := &config.Config{SessionSecret: "test-secret", APIBaseURL: api.URL}
	r, err := server.NewRouter(server.Deps{
		Config:   cfg,
		Handler:  handlers.New(apiclient.New(api.URL, 5*time.Second), zap.NewNop(), 10),
		Logger:   zap.NewNop(),
		Registry: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	return &harness{t: t, backend: b, router: r}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		h.cookie = cookies[len(cookies)-1]
	}
	return w
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (h *harness) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func (h *harness) login(username string) {
	w := h.post("/login", url.Values{"username": {username}, "password": {"secret"}})
	require.Equal(h.t, http.StatusFound, w.Code)
	require.Equal(h.t, "/projects", w.Header().Get("Location"))
	h.backend.reset()
}

func TestLogin_WrongPasswordShowsServerMessage(t *testing.T) {
	h := newHarness(t)
	w := h.post("/login", url.Values{"username": {"alice"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	h := newHarness(t)
	w := h.get("/projects")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestUsers_SearchFiltersInMemory(t *testing.T) {
	h := newHarness(t)
	h.login("admin")

	w := h.get("/users?q=ALI")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alice")
	assert.NotContains(t, w.Body.String(), "Bob")
	assert.Equal(t, []string{"GET /users"}, h.backend.seen())
}

func TestUsers_AdminOnly(t *testing.T) {
	h := newHarness(t)
	h.login("alice")

	w := h.get("/users")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/projects", w.Header().Get("Location"))
	assert.Empty(t, h.backend.seen())
}

func TestCreateUser_InvalidFormNeverReachesBackend(t *testing.T) {
	h := newHarness(t)
	h.login("admin")

	w := h.post("/users", url.Values{"SAP": {"abc"}, "name": {""}, "username": {"carol"}, "role": {"ENGINEER"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "SAP must be a number")
	assert.Contains(t, w.Body.String(), "Name is required")
	assert.Zero(t, h.backend.count("POST /users"))
}

func TestCreateUser_ReloadsListOnce(t *testing.T) {
	h := newHarness(t)
	h.login("admin")

	w := h.post("/engineers", url.Values{
		"SAP": {"1003"}, "name": {"Carol"}, "username": {"carol"},
		"password": {"pw"}, "position": {"FRONTEND"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Engineer created")
	assert.Contains(t, w.Body.String(), "Carol")
	assert.Equal(t, []string{"POST /users", "GET /users"}, h.backend.seen())

	u, ok := h.backend.user(1003)
	require.True(t, ok)
	assert.Equal(t, models.RoleEngineer, u.Role)
}

func TestCreateUser_BackendErrorKeepsForm(t *testing.T) {
	h := newHarness(t)
	h.login("admin")

	w := h.post("/users", url.Values{
		"SAP": {"1002"}, "name": {"Dup"}, "username": {"dup"},
		"password": {"pw"}, "role": {"ENGINEER"}, "position": {"MOBILE"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "SAP already exists")
	assert.Zero(t, h.backend.count("GET /users"), "no reload after a rejected create")
}

func TestDeleteUser_WithWorkIsBlockedLocally(t *testing.T) {
	h := newHarness(t)
	h.login("admin")

	w := h.post("/users/1001/delete", url.Values{})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Zero(t, h.backend.count("DELETE /users/1001"))

	w = h.get(w.Header().Get("Location"))
	assert.Contains(t, w.Body.String(), "Cannot delete user who still has active projects or tasks")
}

func TestDeleteUser_WithoutWork(t *testing.T) {
	h := newHarness(t)
	h.login("admin")

	w := h.post("/users/1002/delete", url.Values{"_list": {"q=b"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "User deleted")
	assert.Equal(t, []string{"GET /users/1002", "DELETE /users/1002", "GET /users"}, h.backend.seen())
}

func TestProjects_VisibilityAndDefaultStatus(t *testing.T) {
	h := newHarness(t)
	h.login("alice")

	w := h.get("/projects")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alpha Migration")
	assert.NotContains(t, w.Body.String(), "Beta Portal")
}

func TestCreateProject_EngineerIsDeniedWithoutBackendCall(t *testing.T) {
	h := newHarness(t)
	h.login("bob")

	w := h.post("/projects", url.Values{"project_name": {"X"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Empty(t, h.backend.seen())
}

func TestValidateProject_EffortRule(t *testing.T) {
	h := newHarness(t)
	h.login("alice")

	w := h.post("/projects/validate", url.Values{
		"changed":         {"level"},
		"level":           {"MID"},
		"plan_start_date": {"2024-01-01"},
		"plan_end_date":   {"2024-01-04"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var errs map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errs))
	assert.Equal(t, "Mid effort should be between 7–21 days", errs["plan_end_date"])
	assert.Empty(t, h.backend.seen())
}

func TestCreateUser_FractionalSAPNeverReachesBackend(t *testing.T) {
	h := newHarness(t)
	h.login("admin")

	for _, sap := range []string{"12.5", "1e3", "-5"} {
		w := h.post("/users", url.Values{
			"SAP": {sap}, "name": {"Carol"}, "username": {"carol"},
			"password": {"pw"}, "role": {"ENGINEER"}, "position": {"FRONTEND"},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "SAP=%s", sap)
		assert.Contains(t, w.Body.String(), "SAP must be a positive whole number")
	}
	assert.Zero(t, h.backend.count("POST /users"))
	assert.Len(t, h.backend.users, 4)
}

func validProjectForm() url.Values {
	return url.Values{
		"project_name":    {"Gamma Rollout"},
		"project_type_id": {"1"},
		"level":           {"LOW"},
		"req_date":        {"2024-02-20"},
		"plan_start_date": {"2024-03-01"},
		"plan_end_date":   {"2024-03-04"},
		"remark":          {"moved a day"},
	}
}

func TestUpdateProject_OversightKeepsAssignee(t *testing.T) {
	h := newHarness(t)
	h.login("sam")

	form := validProjectForm()
	form.Set("assigned_to", "2001")
	form.Set("assigned_to_group", "SAP")
	w := h.post("/projects/7", form)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Project updated")
	assert.Equal(t, 1, h.backend.count("PATCH /projects/7"))
	assert.Equal(t, 1, h.backend.count("GET /projects"))

	patch := h.backend.projectPatch
	require.NotNil(t, patch)
	assert.Equal(t, int64(1001), patch.AssignedTo)
	assert.Equal(t, models.RoleITBP, patch.AssignedToGroup)
}

func TestUpdateProject_OwnerStaysOnOwnRecord(t *testing.T) {
	h := newHarness(t)
	h.login("alice")

	form := validProjectForm()
	form.Set("assigned_to", "1002")
	w := h.post("/projects/7", form)
	require.Equal(t, http.StatusOK, w.Code)

	patch := h.backend.projectPatch
	require.NotNil(t, patch)
	assert.Equal(t, int64(1001), patch.AssignedTo)
	assert.Equal(t, models.RoleITBP, patch.AssignedToGroup)
}

func TestShowEditProject_OversightShowsCurrentAssignee(t *testing.T) {
	h := newHarness(t)
	h.login("sam")

	w := h.get("/projects/7/edit")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Alice" disabled`)
}

func TestUpdateProject_NonOwnerIsDeniedWithoutPatch(t *testing.T) {
	h := newHarness(t)
	h.login("alice")

	w := h.post("/projects/2", validProjectForm())
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/projects", w.Header().Get("Location"))
	assert.Equal(t, []string{"GET /projects/2"}, h.backend.seen())
}

func TestDeleteProject_NonOwnerIsDeniedWithoutDelete(t *testing.T) {
	h := newHarness(t)
	h.login("alice")

	w := h.post("/projects/2/delete", url.Values{})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/projects", w.Header().Get("Location"))
	assert.Zero(t, h.backend.count("DELETE /projects/2"))
}

func TestDeleteProject_OwnerReloadsOnce(t *testing.T) {
	h := newHarness(t)
	h.login("alice")

	w := h.post("/projects/7/delete", url.Values{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Project deleted")
	assert.Equal(t, []string{"GET /projects/7", "DELETE /projects/7", "GET /projects"}, h.backend.seen())
}

func TestCreateTask_InvalidFormNeverReachesBackend(t *testing.T) {
	h := newHarness(t)
	h.login("admin")

	w := h.post("/projects/7/tasks", url.Values{"task_detail": {""}, "plan_start_date": {"2024-03-05"}, "plan_end_date": {"2024-03-01"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Task detail is required")
	assert.Contains(t, w.Body.String(), "Start date must be before end date")
	assert.Zero(t, h.backend.count("POST /tasks"))
}

func TestCreateTask_ITBPIsDeniedWithoutPost(t *testing.T) {
	h := newHarness(t)
	h.login("alice")

	w := h.post("/projects/7/tasks", url.Values{"task_detail": {"Rollback plan"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/projects/7/tasks", w.Header().Get("Location"))
	assert.Zero(t, h.backend.count("POST /tasks"))
}

func TestUpdateTask_NonOwnerIsDeniedWithoutPatch(t *testing.T) {
	h := newHarness(t)
	h.login("sam")

	w := h.post("/projects/7/tasks/70", url.Values{"task_detail": {"Taken over"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/projects/7/tasks", w.Header().Get("Location"))
	assert.Zero(t, h.backend.count("PATCH /tasks/70"))
}

func TestDeleteTask_NonOwnerIsDeniedWithoutDelete(t *testing.T) {
	h := newHarness(t)
	h.login("sam")

	w := h.post("/projects/7/tasks/70/delete", url.Values{})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Zero(t, h.backend.count("DELETE /tasks/70"))
}

func TestCreateReference_ReloadsListOnce(t *testing.T) {
	h := newHarness(t)
	h.login("admin")

	w := h.post("/data/platforms", url.Values{"label": {"Cloud"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Platform created")
	assert.Contains(t, w.Body.String(), "<td>Cloud</td>")
	assert.Equal(t, []string{"POST /platforms", "GET /platforms"}, h.backend.seen())
}

func TestCreateReference_InvalidFormNeverReachesBackend(t *testing.T) {
	h := newHarness(t)
	h.login("admin")

	w := h.post("/data/positions", url.Values{"label": {"QA"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Role is required")
	assert.Empty(t, h.backend.seen())
}

func TestDeleteReference_ReloadsListOnce(t *testing.T) {
	h := newHarness(t)
	h.login("admin")

	w := h.post("/data/platforms/1/delete", url.Values{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Platform deleted")
	assert.NotContains(t, w.Body.String(), "<td>Web</td>")
	assert.Equal(t, []string{"DELETE /platforms/1", "GET /platforms"}, h.backend.seen())
}
