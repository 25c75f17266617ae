// Package apperrors defines the error taxonomy shared by the services and the
// HTTP layer: client input problems, generation backend outages and everything
// else.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindBackendUnavailable Kind = "backend_unavailable"
	KindInternal           Kind = "internal"
)

// Error carries a human-readable message meant for the client (validation) or
// for logs (everything else), and the wrapped cause if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or missing client input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// BackendUnavailable reports a generation backend that failed to load, timed
// out or failed during inference.
func BackendUnavailable(err error, message string) *Error {
	return &Error{Kind: KindBackendUnavailable, Message: message, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsValidation(err error) bool {
	return err != nil && KindOf(err) == KindValidation
}

func IsBackendUnavailable(err error) bool {
	return err != nil && KindOf(err) == KindBackendUnavailable
}

// HTTPStatus maps err onto the response status the router should use.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindBackendUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// PublicMessage is the text safe to return to a client: the message of a
// validation error, an opaque string otherwise.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindValidation {
		return e.Message
	}
	if KindOf(err) == KindBackendUnavailable {
		return "generation backend unavailable"
	}
	return "internal server error"
}
