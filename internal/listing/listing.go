// Package listing holds the in-memory search, filter, sort and paging
// helpers shared by every list screen.
package listing

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Field describes one column of a record. Numeric columns set Number and
// are compared numerically; everything else is read through Text.
type Field[T any] struct {
	Key    string
	Label  string
	Text   func(T) string
	Number func(T) float64
}

func (f Field[T]) Numeric() bool {
	return f.Number != nil
}

func (f Field[T]) value(r T) string {
	if f.Text != nil {
		return f.Text(r)
	}
	if f.Number != nil {
		return strconv.FormatFloat(f.Number(r), 'f', -1, 64)
	}
	return ""
}

// Config is the per-entity field table a list screen is built from.
type Config[T any] struct {
	Search      []Field[T]
	Sort        []Field[T]
	DefaultSort string
}

func (c Config[T]) SortField(key string) (Field[T], bool) {
	for _, f := range c.Sort {
		if f.Key == key {
			return f, true
		}
	}
	return Field[T]{}, false
}

// Filter keeps the records where any of fields contains query, ignoring case.
// A blank query returns records untouched.
func Filter[T any](records []T, query string, fields []Field[T]) []T {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return records
	}

	out := make([]T, 0, len(records))
	for _, r := range records {
		for _, f := range fields {
			if strings.Contains(fold.String(f.value(r)), q) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
