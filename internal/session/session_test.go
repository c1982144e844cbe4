package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-tracker/internal/models"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("secret"))))
	return r
}

func TestSaveLoadRoundTrip(t *testing.T) {
	r := newEngine()
	want := Session{Token: "tok", SAP: 1001, Name: "Alice", Username: "alice", Role: models.RoleITBP}

	r.GET("/login", func(c *gin.Context) {
		require.NoError(t, Save(c, want))
		c.Status(http.StatusNoContent)
	})
	r.GET("/me", func(c *gin.Context) {
		got, ok := Load(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.JSON(http.StatusOK, got)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Token":"tok"`)
	assert.Contains(t, w.Body.String(), `"SAP":1001`)
	assert.Contains(t, w.Body.String(), `"Role":"ITBP"`)
}

func TestLoad_Anonymous(t *testing.T) {
	r := newEngine()
	r.GET("/me", func(c *gin.Context) {
		_, ok := Load(c)
		assert.False(t, ok)
		_, ok = From(c)
		assert.False(t, ok)
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFlashesAreShownOnce(t *testing.T) {
	r := newEngine()
	r.GET("/set", func(c *gin.Context) {
		AddFlash(c, FlashSuccess, "User created")
		AddFlash(c, FlashError, "Request failed")
		c.Status(http.StatusNoContent)
	})
	var got []Flash
	r.GET("/get", func(c *gin.Context) {
		got = Flashes(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set", nil))
	// every save writes a fresh cookie; the browser keeps the last one
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	req.AddCookie(cookies[len(cookies)-1])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Len(t, got, 2)
	assert.Equal(t, Flash{Kind: FlashSuccess, Message: "User created"}, got[0])
	assert.Equal(t, Flash{Kind: FlashError, Message: "Request failed"}, got[1])

	// the popped flashes went out with the new cookie
	popped := w.Result().Cookies()
	require.NotEmpty(t, popped)
	next := httptest.NewRequest(http.MethodGet, "/get", nil)
	next.AddCookie(popped[len(popped)-1])
	r.ServeHTTP(httptest.NewRecorder(), next)
	assert.Empty(t, got)
}
