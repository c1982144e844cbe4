package validation

import (
	"math"
	"time"

	"project-tracker/internal/models"
)

// RangeError is a user facing date/effort violation.
type RangeError string

func (e RangeError) Error() string { return string(e) }

const (
	ErrStartAfterEnd RangeError = "Plan start cannot be after plan end"
	ErrLowEffort     RangeError = "Low effort should be less than 7 days"
	ErrMidEffort     RangeError = "Mid effort should be between 7–21 days"
	ErrHighEffort    RangeError = "High effort should be more than 21 days"
)

// SpanDays is the plan length in whole days, rounded up.
func SpanDays(start, end time.Time) int {
	return int(math.Ceil(float64(end.Sub(start)) / float64(24*time.Hour)))
}

// EffortRange checks that the plan length fits the declared effort level:
// LOW under 7 days, MID 7 to 21, HIGH over 21. Missing dates are left to the
// required-field rules, unknown levels are not checked.
func EffortRange(start, end time.Time, level models.EffortLevel) error {
	if start.IsZero() || end.IsZero() {
		return nil
	}
	if start.After(end) {
		return ErrStartAfterEnd
	}

	span := SpanDays(start, end)
	switch level {
	case models.EffortLow:
		if span >= 7 {
			return ErrLowEffort
		}
	case models.EffortMid:
		if span < 7 || span > 21 {
			return ErrMidEffort
		}
	case models.EffortHigh:
		if span <= 21 {
			return ErrHighEffort
		}
	}
	return nil
}

// EffortRules returns the start-before-end rule on startField and the band
// rule on endField.
func EffortRules(startField, endField, levelField string) []Rule {
	deps := []string{startField, endField, levelField}
	return []Rule{
		Cross(startField, deps, func(v Values) string {
			start, ok1 := ParseDate(v.Get(startField))
			end, ok2 := ParseDate(v.Get(endField))
			if ok1 && ok2 && start.After(end) {
				return string(ErrStartAfterEnd)
			}
			return ""
		}),
		Cross(endField, deps, func(v Values) string {
			start, ok1 := ParseDate(v.Get(startField))
			end, ok2 := ParseDate(v.Get(endField))
			if !ok1 || !ok2 || start.After(end) {
				return ""
			}
			if err := EffortRange(start, end, models.ParseEffortLevel(v.Get(levelField))); err != nil {
				return err.Error()
			}
			return ""
		}),
	}
}
