package store

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getmockd/fieldmap/pkg/mapping"
)

// Common errors
var (
	ErrNotFound = errors.New("not found")
	ErrStorage  = errors.New("storage failure")
	ErrReadOnly = errors.New("store is read-only")
)

// NotFoundError is returned when no rule set has been saved for an entity.
// Callers usually recover by falling back to mapping.DefaultsFor.
type NotFoundError struct {
	Entity mapping.EntityType
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no mapping saved for entity type %q", e.Entity)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *NotFoundError) Hint() string {
	return fmt.Sprintf("Save a mapping for %q first, or use the built-in defaults.", e.Entity)
}

// StorageError wraps an I/O fault of the underlying backend. It is surfaced
// as is; retrying is left to the caller.
type StorageError struct {
	Op     string
	Entity mapping.EntityType
	Err    error
}

func (e *StorageError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("%s mapping %q: %v", e.Op, e.Entity, e.Err)
	}
	return fmt.Sprintf("%s mappings: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is reports whether target is ErrStorage.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// StatusCode returns the HTTP status code for this error.
func (e *StorageError) StatusCode() int {
	return http.StatusInternalServerError
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *StorageError) Hint() string {
	if errors.Is(e.Err, ErrReadOnly) {
		return "The store is read-only. Restart without --read-only to save mappings."
	}
	return "Check that the data directory exists and is writable."
}
