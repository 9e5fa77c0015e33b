package api

import (
	"errors"
	"net/http"

	"github.com/getmockd/fieldmap/pkg/api/types"
	"github.com/getmockd/fieldmap/pkg/httputil"
	"github.com/getmockd/fieldmap/pkg/mapping"
	"github.com/getmockd/fieldmap/pkg/service"
	"github.com/getmockd/fieldmap/pkg/store"
)

// Safe error messages for client responses.
const (
	// ErrMsgInternalError is returned for unexpected internal errors.
	ErrMsgInternalError = "An internal error occurred"

	// ErrMsgStorage is returned when the mapping store fails.
	ErrMsgStorage = "The mapping store is unavailable"
)

// writeServiceError maps typed errors from the service layer to responses.
// Client errors always name the offending key; server errors are logged in
// full and sanitized. Storage faults are checked before input errors since a
// corrupt mapping file wraps a MalformedInputError.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	var (
		unknown   *service.UnknownEntityError
		invalid   *mapping.InvalidMappingError
		malformed *mapping.MalformedInputError
		notFound  *store.NotFoundError
	)

	switch {
	case errors.As(err, &unknown):
		httputil.WriteJSON(w, http.StatusBadRequest, types.ErrorResponse{
			Error:   "unknown_entity_type",
			Message: unknown.Error(),
			Details: types.ErrorDetails{Hint: unknown.Hint()},
		})
	case errors.Is(err, store.ErrStorage):
		s.log.Error("operation failed", "operation", operation, "path", r.URL.Path, "error", err,
			"request_id", httputil.RequestID(r.Context()))
		httputil.WriteInternalError(w, "storage_error", ErrMsgStorage)
	case errors.As(err, &invalid):
		httputil.WriteJSON(w, http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_mapping",
			Message: invalid.Error(),
			Details: types.ErrorDetails{Key: invalid.Key, Reason: invalid.Reason, Hint: invalid.Hint()},
		})
	case errors.As(err, &malformed):
		httputil.WriteJSON(w, http.StatusBadRequest, types.ErrorResponse{
			Error:   "malformed_input",
			Message: malformed.Error(),
			Details: types.ErrorDetails{Key: malformed.Key, Reason: malformed.Reason, Hint: malformed.Hint()},
		})
	case errors.As(err, &notFound):
		httputil.WriteNotFound(w, "not_found", notFound.Error())
	default:
		s.log.Error("operation failed", "operation", operation, "path", r.URL.Path, "error", err,
			"request_id", httputil.RequestID(r.Context()))
		httputil.WriteInternalError(w, "internal_error", ErrMsgInternalError)
	}
}
