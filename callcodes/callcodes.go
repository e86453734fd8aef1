// Package callcodes defines the failure taxonomy for the callable handlers and
// the Error type that carries a code across package boundaries up to the HTTP
// layer.
package callcodes

import (
	"fmt"
	"net/http"
)

const (
	// Unauthenticated is given when the request carries no verified caller identity.
	Unauthenticated = "UNAUTHENTICATED"

	// InvalidArgument is given when a required input is missing or malformed.
	InvalidArgument = "INVALID_ARGUMENT"

	// PermissionDenied is given when an authorization predicate failed for the caller.
	PermissionDenied = "PERMISSION_DENIED"

	// Internal is given for any other failure, including all errors from the
	// external collaborators, with the original message appended for diagnostics.
	Internal = "INTERNAL"
)

// Error is a callable failure with a stable code and a human-readable message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Internalf wraps an underlying error as an Internal failure, appending the
// original message.
func Internalf(format string, err error) *Error {
	return &Error{Code: Internal, Message: fmt.Sprintf(format, err)}
}

// HTTPStatus maps a code to the HTTP status it is surfaced with.
func HTTPStatus(code string) int {
	switch code {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidArgument:
		return http.StatusBadRequest
	case PermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// AsError gives the *Error within err if there is one, wrapping anything else
// as Internal so callers always surface a stable code.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*Error); ok {
		return ce
	}
	return &Error{Code: Internal, Message: err.Error()}
}
