package search

import (
	"errors"
	"fmt"
)

var (
	ErrSearchFailed = errors.New("search failed")
	ErrInvalidInput = errors.New("invalid input")
)

// RetrievalError reports a failed page or count call. Callers see it as
// ErrSearchFailed; the wrapped cause is kept for logs.
type RetrievalError struct {
	Op  string
	Err error
}

type InvalidInputError struct {
	Field string
	Value string
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("search failed: %s: %v", e.Op, e.Err)
}

func (e *RetrievalError) Is(target error) bool {
	return target == ErrSearchFailed
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid value %q for %s", e.Value, e.Field)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
