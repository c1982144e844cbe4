package listing

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

func (d Direction) Toggle() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Sort returns a sorted copy of records. Ties keep their input order in both
// directions.
func Sort[T any](records []T, field Field[T], dir Direction) []T {
	out := slices.Clone(records)
	if out == nil {
		out = []T{}
	}

	var compare func(a, b T) int
	if field.Numeric() {
		compare = func(a, b T) int {
			return cmp.Compare(field.Number(a), field.Number(b))
		}
	} else {
		col := collate.New(language.English, collate.IgnoreCase)
		compare = func(a, b T) int {
			return col.CompareString(field.value(a), field.value(b))
		}
	}
	if dir == Desc {
		asc := compare
		compare = func(a, b T) int { return asc(b, a) }
	}

	slices.SortStableFunc(out, compare)
	return out
}

// SortBy looks key up in the config. Unknown keys leave the order as is.
func SortBy[T any](records []T, cfg Config[T], key string, dir Direction) []T {
	f, ok := cfg.SortField(key)
	if !ok {
		return slices.Clone(records)
	}
	return Sort(records, f, dir)
}
