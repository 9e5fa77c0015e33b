package mapping

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels matched by the typed errors below.
var (
	ErrInvalidMapping = errors.New("invalid mapping")
	ErrMalformedInput = errors.New("malformed mapping input")
)

// Reasons reported by InvalidMappingError.
const (
	ReasonInvalidSource   = "source path is malformed"
	ReasonInvalidTarget   = "target path is malformed"
	ReasonDuplicateSource = "source path is mapped more than once"
	ReasonDuplicateTarget = "target path is already mapped by another source"

	ReasonOverlappingTarget = "target path nests inside or encloses another target"
)

// InvalidMappingError is returned when a rule set cannot be constructed.
// Key is the flat-object key (the dotted source path) of the offending rule.
type InvalidMappingError struct {
	Key    string
	Target string
	Reason string
	Err    error
}

func (e *InvalidMappingError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("invalid mapping %q -> %q: %s", e.Key, e.Target, e.Reason)
	}
	return fmt.Sprintf("invalid mapping %q: %s", e.Key, e.Reason)
}

func (e *InvalidMappingError) Unwrap() error { return e.Err }

// Is reports whether target is ErrInvalidMapping.
func (e *InvalidMappingError) Is(target error) bool {
	return target == ErrInvalidMapping
}

// StatusCode returns the HTTP status code for this error.
func (e *InvalidMappingError) StatusCode() int {
	return http.StatusBadRequest
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *InvalidMappingError) Hint() string {
	switch e.Reason {
	case ReasonDuplicateTarget:
		return fmt.Sprintf("Map %q to a different target field or remove one of the rules writing %q.", e.Key, e.Target)
	case ReasonOverlappingTarget:
		return fmt.Sprintf("Target %q would overwrite or be overwritten by another rule's target; map only the enclosing object or only its fields.", e.Target)
	case ReasonDuplicateSource:
		return fmt.Sprintf("Remove the extra rule for source field %q.", e.Key)
	default:
		return "Field paths are dot separated names without empty segments, e.g. properties.firstname."
	}
}

// MalformedInputError is returned when an imported payload is not a flat
// string-to-string object. Key is empty when the payload as a whole is wrong.
type MalformedInputError struct {
	Key    string
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("malformed mapping input at key %q: %s", e.Key, e.Reason)
	}
	return "malformed mapping input: " + e.Reason
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// Is reports whether target is ErrMalformedInput.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// StatusCode returns the HTTP status code for this error.
func (e *MalformedInputError) StatusCode() int {
	return http.StatusBadRequest
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *MalformedInputError) Hint() string {
	return `A mapping file is a flat object of strings, e.g. {"first_name": "properties.firstname"}.`
}
