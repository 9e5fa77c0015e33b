package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getmockd/fieldmap/pkg/mapping"
)

// ErrUnknownEntity is matched by *UnknownEntityError.
var ErrUnknownEntity = errors.New("unknown entity type")

// UnknownEntityError is returned for an entity type the registry does not
// accept.
type UnknownEntityError struct {
	Entity mapping.EntityType
	Known  []mapping.EntityType
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown entity type %q", e.Entity)
}

// Is reports whether target is ErrUnknownEntity.
func (e *UnknownEntityError) Is(target error) bool {
	return target == ErrUnknownEntity
}

// StatusCode returns the HTTP status code for this error.
func (e *UnknownEntityError) StatusCode() int {
	return http.StatusBadRequest
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *UnknownEntityError) Hint() string {
	names := make([]string, 0, len(e.Known))
	for _, k := range e.Known {
		names = append(names, string(k))
	}
	return "Use one of: " + strings.Join(names, ", ")
}
