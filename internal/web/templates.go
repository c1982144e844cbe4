// Package web embeds the admin screens' HTML templates.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"project-tracker/internal/history"
	"project-tracker/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcMap = template.FuncMap{
	"formatDate": func(t *time.Time) string {
		if t == nil || t.IsZero() {
			return history.Empty
		}
		return history.FormatDate(*t)
	},
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return history.Empty
		}
		return t.Local().Format("2 Jan 2006 15:04")
	},
	"humanize": func(v any) string {
		return history.Humanize(fmt.Sprint(v))
	},
	"eq": func(a, b any) bool {
		return fmt.Sprint(a) == fmt.Sprint(b)
	},
	// href joins a path and an already encoded query string.
	"href": func(path, query string) template.URL {
		if query == "" {
			return template.URL(path)
		}
		return template.URL(path + "?" + query)
	},
	"queryEscape": url.QueryEscape,
	"add":         func(a, b int) int { return a + b },
	"statusClass": func(s models.Status) string {
		switch s {
		case models.StatusCompleted:
			return "status-done"
		case models.StatusInProgress:
			return "status-progress"
		default:
			return "status-todo"
		}
	},
}

// Templates parses every embedded template; gin serves them by file name.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
}
