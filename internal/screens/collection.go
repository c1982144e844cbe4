package screens

import (
	"context"
	"slices"
	"sync"
)

type Loader[T any] func(ctx context.Context) ([]T, error)

// Collection is the in-memory list owned by one view. Mutations never touch
// the items directly: a successful mutation is followed by exactly one
// reload, a failed one leaves the items as they were.
type Collection[T any] struct {
	load Loader[T]

	mu     sync.Mutex
	items  []T
	loaded bool
}

func NewCollection[T any](load Loader[T]) *Collection[T] {
	return &Collection[T]{load: load}
}

// Reload fetches the list. When ctx is already done by the time the answer
// arrives the view is gone and the result is dropped.
func (c *Collection[T]) Reload(ctx context.Context) error {
	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.items = items
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Mutate runs op and, only if it succeeds, reloads the list once.
func (c *Collection[T]) Mutate(ctx context.Context, op func(ctx context.Context) error) error {
	if err := op(ctx); err != nil {
		return err
	}
	return c.Reload(ctx)
}

func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *Collection[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}
