package handlers

import (
	"github.com/gin-gonic/gin"

	"project-tracker/internal/apiclient"
	"project-tracker/internal/session"
)

// render wraps c.HTML and adds the signed-in user and pending banners to
// every template.
func render(c *gin.Context, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if s, ok := session.From(c); ok {
		data["CurrentUser"] = s
		data["IsAdmin"] = s.IsAdmin()
	}

	flashes := session.Flashes(c)
	if extra, ok := data["Banners"].([]session.Flash); ok {
		flashes = append(flashes, extra...)
	}
	data["Flashes"] = flashes

	c.HTML(status, tmpl, data)
}

func success(message string) []session.Flash {
	return []session.Flash{{Kind: session.FlashSuccess, Message: message}}
}

func failure(err error, fallback string) []session.Flash {
	return []session.Flash{{Kind: session.FlashError, Message: apiclient.UserMessage(err, fallback)}}
}
