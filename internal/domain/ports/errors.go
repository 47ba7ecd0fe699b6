package ports

import (
	"errors"
	"fmt"
)

// Standard repository errors
var (
	// ErrNotFound is returned when the requested entity is not found
	ErrNotFound = errors.New("entity not found")
)

// AmbiguousResultError is returned when a single result was expected but several rows matched.
// It is a not-found condition for callers.
type AmbiguousResultError struct {
	Resource string
	Count    int
}

func (e *AmbiguousResultError) Error() string {
	return fmt.Sprintf("%s: expected exactly one result, found %d", e.Resource, e.Count)
}

// Is reports ErrNotFound as a match
func (e *AmbiguousResultError) Is(target error) bool {
	return target == ErrNotFound
}
