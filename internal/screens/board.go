package screens

import (
	"time"

	"project-tracker/internal/models"
)

type Summary struct {
	Total      int
	ToDo       int
	InProgress int
	Completed  int
}

func Summarize[T any](records []T, status func(T) models.Status) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch status(r) {
		case models.StatusToDo:
			s.ToDo++
		case models.StatusInProgress:
			s.InProgress++
		case models.StatusCompleted:
			s.Completed++
		}
	}
	return s
}

type Column[T any] struct {
	Status models.Status
	Items  []T
}

// Kanban splits records into one column per status, keeping list order.
// Records with an unknown status are left off the board.
func Kanban[T any](records []T, status func(T) models.Status) []Column[T] {
	cols := make([]Column[T], len(models.Statuses))
	index := make(map[models.Status]int, len(models.Statuses))
	for i, s := range models.Statuses {
		cols[i] = Column[T]{Status: s}
		index[s] = i
	}
	for _, r := range records {
		if i, ok := index[status(r)]; ok {
			cols[i].Items = append(cols[i].Items, r)
		}
	}
	return cols
}

// Late flags a task row. A start is late when it has not happened and the
// plan date is behind today; an end is late when it happened after plan.
// Comparison is by calendar day.
func Late(plan, actual *time.Time, isEnd bool, now time.Time) bool {
	if plan == nil || plan.IsZero() {
		return false
	}
	if !isEnd && actual != nil {
		return false
	}
	if isEnd && actual == nil {
		return false
	}

	compare := now
	if isEnd {
		compare = *actual
	}
	return truncateDay(compare).After(truncateDay(*plan))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
