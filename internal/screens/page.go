package screens

import (
	"project-tracker/internal/listing"
)

type Page[T any] struct {
	Items     []T
	Total     int
	Page      int
	PageCount int
	Query     ListQuery
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }
func (p Page[T]) HasNext() bool { return p.Page < p.PageCount }
func (p Page[T]) Prev() int     { return p.Page - 1 }
func (p Page[T]) Next() int     { return p.Page + 1 }

// Pages lists 1..PageCount for the pager.
func (p Page[T]) Pages() []int {
	out := make([]int, p.PageCount)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Apply runs search, the extra predicates, sort and paging in that order.
func Apply[T any](records []T, cfg listing.Config[T], q ListQuery, size int, preds ...listing.Predicate[T]) Page[T] {
	rows := listing.Filter(records, q.Search, cfg.Search)
	rows = listing.Match(rows, preds...)
	rows = listing.SortBy(rows, cfg, q.Sort, q.Dir)

	// a delete can leave the current page empty; show the last one instead
	if count := listing.PageCount(len(rows), size); q.Page > count && count > 0 {
		q.Page = count
	}
	return Page[T]{
		Items:     listing.Paginate(rows, q.Page, size),
		Total:     len(rows),
		Page:      q.Page,
		PageCount: listing.PageCount(len(rows), size),
		Query:     q,
	}
}

// Filtered is Apply without paging, for summaries and boards.
func Filtered[T any](records []T, cfg listing.Config[T], q ListQuery, preds ...listing.Predicate[T]) []T {
	rows := listing.Filter(records, q.Search, cfg.Search)
	rows = listing.Match(rows, preds...)
	return listing.SortBy(rows, cfg, q.Sort, q.Dir)
}
