package search

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrMalformedFilter is matched by every MalformedFilterError
var ErrMalformedFilter = errors.New("malformed filter")

// MalformedFilterError reports filter, sort or paging input that cannot be parsed.
// It is raised before any backend call is made.
type MalformedFilterError struct {
	Input  string
	Reason string
}

func (e *MalformedFilterError) Error() string {
	return fmt.Sprintf("malformed filter %q: %s", e.Input, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedFilter) work for wrapped errors
func (e *MalformedFilterError) Is(target error) bool {
	return target == ErrMalformedFilter
}

func malformed(input, format string, args ...any) error {
	return &MalformedFilterError{
		Input:  input,
		Reason: fmt.Sprintf(format, args...),
	}
}
