// Package history turns the encoded change list of an update-history entry
// into rows a person can read.
package history

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"project-tracker/internal/models"
)

const (
	Arrow       = " → "
	Empty       = "-"
	Placeholder = "?"
)

// Change is one decoded field/before/after triple.
type Change struct {
	Field  string
	Before string
	After  string
	Valid  bool
}

type Row struct {
	Field  string
	Label  string
	Before string
	After  string
}

type Entry struct {
	By   string
	At   time.Time
	Rows []Row
}

// Lookup resolves id reference fields: field → id → label.
type Lookup map[string]map[string]string

type Renderer struct {
	Labels   map[string]string
	Excluded map[string]bool
	Lookup   Lookup
}

var (
	fieldStart = regexp.MustCompile(`(?:^|, )([A-Za-z_][A-Za-z0-9_]*): `)
	quotedHead = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*): "`)
)

// Encode writes changes as field: "before" → "after", … with Go-quoted
// values, so quotes, commas and arrows inside a value survive Parse.
func Encode(changes []Change) string {
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		parts = append(parts, c.Field+": "+strconv.Quote(c.Before)+Arrow+strconv.Quote(c.After))
	}
	return strings.Join(parts, ", ")
}

// Parse decodes what Encode writes. Entries written with single quotes
// (field: 'before' → 'after') are still read, splitting on field names.
// Segments without an arrow come back with Valid false; leading garbage
// becomes one invalid change.
func Parse(s string) []Change {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var out []Change
	for s != "" {
		c, rest, ok := parseQuoted(s)
		if !ok {
			return append(out, parseLegacy(s)...)
		}
		out = append(out, c)
		s = strings.TrimPrefix(rest, ", ")
	}
	return out
}

// parseQuoted reads one field: "before" → "after" segment off the front of s.
func parseQuoted(s string) (Change, string, bool) {
	m := quotedHead.FindStringSubmatchIndex(s)
	if m == nil {
		return Change{}, s, false
	}
	field := s[m[2]:m[3]]
	rest := s[m[1]-1:]

	before, rest, ok := quotedValue(rest)
	if !ok {
		return Change{}, s, false
	}
	rest, ok = strings.CutPrefix(rest, Arrow)
	if !ok {
		return Change{}, s, false
	}
	after, rest, ok := quotedValue(rest)
	if !ok || (rest != "" && !strings.HasPrefix(rest, ", ")) {
		return Change{}, s, false
	}
	return Change{Field: field, Before: before, After: after, Valid: true}, rest, true
}

func quotedValue(s string) (string, string, bool) {
	q, err := strconv.QuotedPrefix(s)
	if err != nil {
		return "", s, false
	}
	v, err := strconv.Unquote(q)
	if err != nil {
		return "", s, false
	}
	return v, s[len(q):], true
}

func parseLegacy(s string) []Change {
	idx := fieldStart.FindAllStringSubmatchIndex(s, -1)
	if len(idx) == 0 {
		return []Change{{Field: s}}
	}

	var out []Change
	if idx[0][0] > 0 {
		out = append(out, Change{Field: strings.TrimSpace(s[:idx[0][0]])})
	}
	for i, m := range idx {
		end := len(s)
		if i+1 < len(idx) {
			end = idx[i+1][0]
		}
		field := s[m[2]:m[3]]
		body := s[m[1]:end]

		before, after, ok := strings.Cut(body, Arrow)
		if !ok {
			out = append(out, Change{Field: field})
			continue
		}
		out = append(out, Change{
			Field:  field,
			Before: unquote(before),
			After:  unquote(after),
			Valid:  true,
		})
	}
	return out
}

// unquote strips the single quotes around a legacy value.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return strings.Trim(s, "'")
}

func (r Renderer) Render(e models.HistoryEntry) Entry {
	return Entry{By: e.UpdatedBy, At: e.UpdatedAt, Rows: r.Rows(e.Changes)}
}

func (r Renderer) Rows(changes string) []Row {
	var rows []Row
	for _, c := range Parse(changes) {
		if r.Excluded[c.Field] {
			continue
		}
		if !c.Valid {
			rows = append(rows, Row{Field: c.Field, Label: r.label(c.Field), Before: Placeholder, After: Placeholder})
			continue
		}
		rows = append(rows, Row{
			Field:  c.Field,
			Label:  r.label(c.Field),
			Before: r.Format(c.Field, c.Before),
			After:  r.Format(c.Field, c.After),
		})
	}
	return rows
}

func (r Renderer) label(field string) string {
	if l, ok := r.Labels[field]; ok {
		return l
	}
	if field == "" {
		return Placeholder
	}
	return Humanize(field)
}

// Format renders one value according to the field's type.
func (r Renderer) Format(field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" || value == "null" {
		return Empty
	}
	if ids, ok := r.Lookup[field]; ok {
		if l, ok := ids[value]; ok {
			return l
		}
		return value
	}
	if isDateField(field) {
		if t, ok := parseTime(value); ok {
			return FormatDate(t)
		}
		return value
	}
	return Humanize(value)
}

func isDateField(field string) bool {
	if field == "created_at" || field == "updated_at" {
		return false
	}
	return strings.Contains(field, "date") || field == "actual_start" || field == "actual_end"
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", models.DateLayout}

func parseTime(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate is the short date used across the UI: 2 Jan 2006.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return Empty
	}
	return t.UTC().Format("2 Jan 2006")
}

var upperWords = regexp.MustCompile(`^[A-Z\s]+$`)

// Humanize title-cases enum-like text: IN_PROGRESS → In Progress. Mixed case
// text without underscores is returned unchanged.
func Humanize(s string) string {
	if s == "" {
		return Empty
	}
	if !upperWords.MatchString(s) && !strings.Contains(s, "_") {
		return s
	}
	words := strings.ReplaceAll(strings.ToLower(s), "_", " ")
	return cases.Title(language.English).String(words)
}

var projectLabels = map[string]string{
	"SAP":             "ITBP",
	"project_name":    "Project Name",
	"project_type":    "Project Type",
	"project_type_id": "Project Type",
	"assigned_to":     "Assigned To",
	"level":           "Effort Level",
	"req_date":        "Request Date",
	"plan_start_date": "Plan Start",
	"plan_end_date":   "Plan End",
	"live_date":       "Go Live",
	"remark":          "Remark",
	"created_at":      "Created At",
	"created_by":      "Created By",
	"updated_at":      "Updated At",
	"updated_by":      "Updated By",
}

var taskLabels = map[string]string{
	"task_detail":     "Task Detail",
	"task_group_id":   "Task Group",
	"platform_id":     "Platform",
	"assigned_to":     "Assigned To",
	"plan_start_date": "Plan Start",
	"plan_end_date":   "Plan End",
	"actual_start":    "Actual Start",
	"actual_end":      "Actual End",
	"task_progress":   "Progress",
	"status":          "Status",
}

func ProjectRenderer(lookup Lookup) Renderer {
	return Renderer{
		Labels: projectLabels,
		Excluded: map[string]bool{
			"actual_start":  true,
			"actual_end":    true,
			"task_progress": true,
			"status":        true,
		},
		Lookup: lookup,
	}
}

func TaskRenderer(lookup Lookup) Renderer {
	return Renderer{Labels: taskLabels, Lookup: lookup}
}

// ReferenceLookup indexes reference items by id for one field.
func ReferenceLookup(items []models.ReferenceItem) map[string]string {
	out := make(map[string]string, len(items))
	for _, it := range items {
		out[strconv.FormatUint(uint64(it.ID), 10)] = it.Label
	}
	return out
}
