package advocatedb

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOrder    = errors.New("invalid order")
	ErrInvalidAdvocate = errors.New("invalid advocate")
)

type InvalidOrderError struct {
	Order  Order
	Reason string
}

type InvalidAdvocateError struct {
	ID     int64
	Reason string
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("invalid order %s: %s", e.Order, e.Reason)
}

func (e *InvalidOrderError) Is(target error) bool {
	return target == ErrInvalidOrder
}

func (e *InvalidAdvocateError) Error() string {
	return fmt.Sprintf("invalid advocate %d: %s", e.ID, e.Reason)
}

func (e *InvalidAdvocateError) Is(target error) bool {
	return target == ErrInvalidAdvocate
}
