package domain

import "fmt"

// ErrNotFound is returned when a requested primary key does not exist.
type ErrNotFound struct {
	Entity EntityType
	ID     int64
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("Object %s with id=%d does not exists", e.Entity, e.ID)
}

// ValidationError reports caller input that violates a documented invariant.
// It is always raised before any storage query runs.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}
