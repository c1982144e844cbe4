// Package session keeps the signed-in identity in the cookie session and
// hands it to handlers through the gin context.
package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"project-tracker/internal/access"
	"project-tracker/internal/apiclient"
	"project-tracker/internal/models"
)

const contextKey = "CurrentSession"

const (
	keyToken    = "token"
	keySAP      = "sap"
	keyName     = "name"
	keyUsername = "username"
	keyRole     = "role"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

type Session struct {
	Token    string
	SAP      int64
	Name     string
	Username string
	Role     models.Role
}

func FromLogin(resp *models.LoginResponse) Session {
	return Session{
		Token:    resp.Token,
		SAP:      resp.User.SAP,
		Name:     resp.User.Name,
		Username: resp.User.Username,
		Role:     resp.User.Role,
	}
}

func (s Session) Viewer() access.Viewer {
	return access.Viewer{Name: s.Name, Role: s.Role}
}

func (s Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

// Client is the backend client authenticated as this user.
func (s Session) Client(base *apiclient.Client) *apiclient.Client {
	return base.WithToken(s.Token)
}

func Save(c *gin.Context, s Session) error {
	sess := sessions.Default(c)
	sess.Set(keyToken, s.Token)
	sess.Set(keySAP, s.SAP)
	sess.Set(keyName, s.Name)
	sess.Set(keyUsername, s.Username)
	sess.Set(keyRole, string(s.Role))
	return sess.Save()
}

// Load reads the identity from the cookie; ok is false for anonymous
// requests.
func Load(c *gin.Context) (Session, bool) {
	sess := sessions.Default(c)
	token, _ := sess.Get(keyToken).(string)
	if token == "" {
		return Session{}, false
	}
	s := Session{Token: token}
	s.SAP, _ = sess.Get(keySAP).(int64)
	s.Name, _ = sess.Get(keyName).(string)
	s.Username, _ = sess.Get(keyUsername).(string)
	role, _ := sess.Get(keyRole).(string)
	s.Role = models.Role(role)
	return s, true
}

func Clear(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	return sess.Save()
}

// Set stores the loaded session on the request context.
func Set(c *gin.Context, s Session) {
	c.Set(contextKey, s)
}

func From(c *gin.Context) (Session, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}

// Flash is a one-shot banner shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

func AddFlash(c *gin.Context, kind, message string) {
	sess := sessions.Default(c)
	sess.AddFlash(message, kind)
	_ = sess.Save()
}

// Flashes pops the pending banners of every kind.
func Flashes(c *gin.Context) []Flash {
	sess := sessions.Default(c)
	var out []Flash
	for _, kind := range []string{FlashSuccess, FlashError} {
		for _, m := range sess.Flashes(kind) {
			if msg, ok := m.(string); ok {
				out = append(out, Flash{Kind: kind, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		_ = sess.Save()
	}
	return out
}
