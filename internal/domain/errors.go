package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingData matches any *MissingDataError.
	ErrMissingData = errors.New("missing required data")

	// ErrNotFound is returned by collaborators when a lookup has no match.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable wraps failures of remote collaborators.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// MissingDataError names the required field absent during report assembly.
type MissingDataError struct {
	Field string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("missing required data: %s", e.Field)
}

// Is lets errors.Is(err, ErrMissingData) match.
func (e *MissingDataError) Is(target error) bool {
	return target == ErrMissingData
}
