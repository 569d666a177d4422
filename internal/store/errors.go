package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record with the requested identifier is
// absent from its collection.
var ErrNotFound = errors.New("record not found")

// ParseError means the persisted collection is not well-formed JSON. The
// store performs no repair; callers surface it as a fatal request failure.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
