package handlers

import (
	"context"
	"errors"
	"net/http"

	"project-tracker/internal/apiclient"
	"project-tracker/internal/screens"
)

// mutate runs op through the screen's collection: one reload after a
// successful op, none after a failed one. saved reports whether the
// backend accepted op even if the reload afterwards failed.
func mutate[T any](ctx context.Context, coll *screens.Collection[T], op func(ctx context.Context) error) (saved bool, err error) {
	err = coll.Mutate(ctx, func(ctx context.Context) error {
		if err := op(ctx); err != nil {
			return err
		}
		saved = true
		return nil
	})
	return saved, err
}

// statusOf maps a backend failure to the status of the page we render
// for it. Client errors pass through, everything else is a bad gateway.
func statusOf(err error) int {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}
