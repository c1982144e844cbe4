// Package screens holds the transient view state of the list screens and
// the per-entity tables they are configured with.
package screens

import (
	"net/url"
	"strconv"
	"strings"

	"project-tracker/internal/listing"
)

// ListQuery is the search/sort/filter/page state of one list screen. It
// lives in the URL only.
type ListQuery struct {
	Search   string
	Sort     string
	Dir      listing.Direction
	Page     int
	Status   string
	Month    string
	Year     string
	Role     string
	Position string
}

func ParseListQuery(v url.Values, defaultSort string) ListQuery {
	q := ListQuery{
		Search:   strings.TrimSpace(v.Get("q")),
		Sort:     strings.TrimSpace(v.Get("sort")),
		Dir:      listing.ParseDirection(v.Get("dir")),
		Status:   strings.TrimSpace(v.Get("status")),
		Month:    strings.TrimSpace(v.Get("month")),
		Year:     strings.TrimSpace(v.Get("year")),
		Role:     strings.TrimSpace(v.Get("role")),
		Position: strings.TrimSpace(v.Get("position")),
	}
	if q.Sort == "" {
		q.Sort = defaultSort
	}
	for _, f := range []*string{&q.Month, &q.Year, &q.Role, &q.Position} {
		if strings.EqualFold(*f, listing.All) {
			*f = ""
		}
	}
	q.Page, _ = strconv.Atoi(v.Get("page"))
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

func (q ListQuery) Values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("q", q.Search)
	set("sort", q.Sort)
	if q.Dir == listing.Desc {
		v.Set("dir", string(listing.Desc))
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	set("status", q.Status)
	set("month", q.Month)
	set("year", q.Year)
	set("role", q.Role)
	set("position", q.Position)
	return v
}

func (q ListQuery) Encode() string {
	return q.Values().Encode()
}

// PageLink is the query string for page n keeping everything else.
func (q ListQuery) PageLink(n int) string {
	q.Page = n
	return q.Encode()
}

// SortLink toggles the direction when key is already the sort column and
// starts ascending otherwise. Changing the order goes back to page 1.
func (q ListQuery) SortLink(key string) string {
	if q.Sort == key {
		q.Dir = q.Dir.Toggle()
	} else {
		q.Sort = key
		q.Dir = listing.Asc
	}
	q.Page = 1
	return q.Encode()
}

// SortMark is the arrow shown next to a column header.
func (q ListQuery) SortMark(key string) string {
	if q.Sort != key {
		return "↕"
	}
	if q.Dir == listing.Desc {
		return "▼"
	}
	return "▲"
}
