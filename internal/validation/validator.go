// Package validation checks form input before anything is sent to the
// backend. Errors are keyed by form field.
package validation

import (
	"strconv"
	"strings"
	"time"

	"project-tracker/internal/models"
)

type Values map[string]string

func (v Values) Get(field string) string {
	return strings.TrimSpace(v[field])
}

type Errors map[string]string

func (e Errors) Valid() bool {
	return len(e) == 0
}

// Rule checks one field. DependsOn lists the inputs the rule reads, so a
// change to any of them re-triggers it.
type Rule struct {
	Field     string
	DependsOn []string
	Check     func(Values) string
}

func Required(field, label string) Rule {
	return Rule{
		Field:     field,
		DependsOn: []string{field},
		Check: func(v Values) string {
			if v.Get(field) == "" {
				return label + " is required"
			}
			return ""
		},
	}
}

func NumericRequired(field, label string) Rule {
	return Rule{
		Field:     field,
		DependsOn: []string{field},
		Check: func(v Values) string {
			s := v.Get(field)
			if s == "" {
				return label + " is required"
			}
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				return label + " must be a number"
			}
			return ""
		},
	}
}

// Date accepts an empty value; pair it with Required when the date is mandatory.
func Date(field, label string) Rule {
	return Rule{
		Field:     field,
		DependsOn: []string{field},
		Check: func(v Values) string {
			s := v.Get(field)
			if s == "" {
				return ""
			}
			if _, err := time.Parse(models.DateLayout, s); err != nil {
				return label + " is not a valid date"
			}
			return ""
		},
	}
}

// Cross builds a rule over the whole value set.
func Cross(field string, dependsOn []string, check func(Values) string) Rule {
	return Rule{Field: field, DependsOn: dependsOn, Check: check}
}

// When applies rule only if cond holds.
func When(cond bool, rule Rule) Rule {
	if cond {
		return rule
	}
	return Rule{Field: rule.Field, DependsOn: rule.DependsOn, Check: func(Values) string { return "" }}
}

// Validate runs rules in order; the first failing rule of a field wins.
func Validate(values Values, rules []Rule) Errors {
	errs := Errors{}
	for _, r := range rules {
		if _, seen := errs[r.Field]; seen {
			continue
		}
		if msg := r.Check(values); msg != "" {
			errs[r.Field] = msg
		}
	}
	return errs
}

// Revalidate runs only the rules that read changed and returns their
// verdict for every field they own, "" meaning the field is now clean.
func Revalidate(changed string, values Values, rules []Rule) Errors {
	var affected []Rule
	for _, r := range rules {
		for _, d := range r.DependsOn {
			if d == changed {
				affected = append(affected, r)
				break
			}
		}
	}

	out := Errors{}
	for _, r := range affected {
		if _, ok := out[r.Field]; !ok {
			out[r.Field] = ""
		}
	}
	for field, msg := range Validate(values, affected) {
		out[field] = msg
	}
	return out
}

func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
