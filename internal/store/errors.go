package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no row matches the requested id.
var ErrNotFound = errors.New("not found")

// ValidationError reports input the store refuses to persist or query.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TxError wraps any failure of a composite save. The transaction has
// already been rolled back when it is returned.
type TxError struct {
	Op  string
	ID  string
	Err error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("%s task entry %s: %v", e.Op, e.ID, e.Err)
}

func (e *TxError) Unwrap() error { return e.Err }

func notFound(table, id string) error {
	return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
}
