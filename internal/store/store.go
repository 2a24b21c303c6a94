// Package store implements the persistence gateway shared by every
// entity kind: an insert-if-absent primitive over per-entity
// repositories. The resolver never updates or deletes records; a row is
// created at most once per unique structural key across any number of
// parse runs.
package store

import (
	"context"
	"errors"
	"fmt"
)

// NotFoundError reports that a lookup matched no record. Repositories
// return it so GetOrCreate can distinguish "create it" from a real
// storage failure.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// GetOrCreate returns the record matched by lookup, creating it through
// create when absent. The second return value reports whether a new
// record was created.
//
// The check-then-insert sequence is not race-free on its own: two
// concurrent parses of the same document can both observe a miss. The
// composite unique keys declared in the schema make the loser's insert
// fail, and the failed create falls back to re-reading the winner, so
// the caller still receives exactly one record either way. Within a
// single document processing is sequential and the question never
// arises.
func GetOrCreate[T any](
	ctx context.Context,
	lookup func(context.Context) (T, error),
	create func(context.Context) (T, error),
) (T, bool, error) {
	record, err := lookup(ctx)
	if err == nil {
		return record, false, nil
	}
	if !IsNotFound(err) {
		var zero T
		return zero, false, err
	}

	created, createErr := create(ctx)
	if createErr == nil {
		return created, true, nil
	}

	// Another writer may have created the record concurrently; prefer
	// the winner over surfacing the conflict.
	record, retryErr := lookup(ctx)
	if retryErr == nil {
		return record, false, nil
	}

	var zero T
	return zero, false, createErr
}
