package shared

import "net/http"

// FieldErrors maps a request field to its human readable messages.
type FieldErrors map[string][]string

// Error is the API failure type carried from the workflow layer to the
// HTTP boundary. Code is the HTTP status the failure maps to.
type Error struct {
	Code    int
	Message string
	Fields  FieldErrors
}

func (e *Error) Error() string {
	return e.Message
}

// Validation builds a 422 failure with field-keyed messages.
func Validation(fields FieldErrors) *Error {
	return &Error{Code: http.StatusUnprocessableEntity, Message: "Validation failed.", Fields: fields}
}

// NotFound builds a 404 failure for an absent entity.
func NotFound(message string) *Error {
	return &Error{Code: http.StatusNotFound, Message: message}
}

// StateConflict builds a 400 failure for an operation invalid in the
// entity's current status.
func StateConflict(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

// Insufficient builds a 400 failure for a stock or quantity shortfall.
func Insufficient(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

// Reconciliation builds a 400 failure for a sold+returned mismatch.
func Reconciliation(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

// Forbidden builds a 403 failure for a capability the caller lacks.
func Forbidden(message string) *Error {
	return &Error{Code: http.StatusForbidden, Message: message}
}

// Unauthorized builds a 401 failure.
func Unauthorized(message string) *Error {
	return &Error{Code: http.StatusUnauthorized, Message: message}
}

// Internal builds a 500 failure, optionally carrying the underlying
// message in the errors map the way the API reports transaction failures.
func Internal(message string, cause error) *Error {
	e := &Error{Code: http.StatusInternalServerError, Message: message}
	if cause != nil {
		e.Fields = FieldErrors{"error": {cause.Error()}}
	}
	return e
}
