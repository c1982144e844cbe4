package listing

import (
	"strconv"
	"strings"
	"time"
)

// All is the sentinel filter value meaning "no constraint".
const All = "ALL"

type Predicate[T any] func(T) bool

// Match keeps the records accepted by every predicate.
func Match[T any](records []T, preds ...Predicate[T]) []T {
	if len(preds) == 0 {
		return records
	}
	out := make([]T, 0, len(records))
next:
	for _, r := range records {
		for _, p := range preds {
			if !p(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// Equals matches a categorical field exactly, case-insensitively. An empty
// or ALL want accepts everything.
func Equals[T any](get func(T) string, want string) Predicate[T] {
	want = strings.TrimSpace(want)
	if want == "" || strings.EqualFold(want, All) {
		return func(T) bool { return true }
	}
	return func(r T) bool {
		return strings.EqualFold(get(r), want)
	}
}

// OneOf matches when the field equals any of the values.
func OneOf[T any](get func(T) string, values ...string) Predicate[T] {
	return func(r T) bool {
		v := get(r)
		for _, want := range values {
			if strings.EqualFold(v, want) {
				return true
			}
		}
		return false
	}
}

// Period matches on the English month name ("March") and four digit year of
// a date field, both in UTC. Blank month or year means any. Records without
// the date only pass when both are blank.
func Period[T any](get func(T) *time.Time, month, year string) Predicate[T] {
	month = strings.TrimSpace(month)
	year = strings.TrimSpace(year)
	if month == "" && year == "" {
		return func(T) bool { return true }
	}
	return func(r T) bool {
		d := get(r)
		if d == nil || d.IsZero() {
			return false
		}
		u := d.UTC()
		if month != "" && !strings.EqualFold(u.Month().String(), month) {
			return false
		}
		if year != "" && strconv.Itoa(u.Year()) != year {
			return false
		}
		return true
	}
}
