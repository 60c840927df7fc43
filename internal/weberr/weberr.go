// Package weberr defines the typed failures handlers raise and the
// boundary translates: an HTTP status, a user-facing message, and for
// validation failures a per-field message map. Store connectivity errors
// are deliberately not classified here; they surface as generic 500s.
package weberr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status  int
	Message string
	// Fields carries per-field validation messages, rendered inline on
	// forms. Nil for non-validation errors.
	Fields map[string]string

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("status=%d message=%s cause=%v", e.Status, e.Message, e.cause)
	}
	return fmt.Sprintf("status=%d message=%s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause attaches the underlying error for logging without changing
// what the user sees.
func (e *Error) WithCause(err error) *Error {
	clone := *e
	clone.cause = err
	return &clone
}

// Authentication: request has no logged-in user.
func Authentication() *Error {
	return &Error{Status: http.StatusUnauthorized, Message: "not logged in"}
}

// Authorization: logged in, but not entitled.
func Authorization() *Error {
	return &Error{Status: http.StatusForbidden, Message: "not allowed"}
}

func NotFound(what string) *Error {
	return &Error{Status: http.StatusNotFound, Message: what + " not found"}
}

// InvalidLogin deliberately does not reveal whether the email or the
// password was wrong.
func InvalidLogin() *Error {
	return &Error{Status: http.StatusUnauthorized, Message: "Invalid username or password"}
}

func Validation(fields map[string]string) *Error {
	return &Error{
		Status:  http.StatusUnprocessableEntity,
		Message: "validation failed",
		Fields:  fields,
	}
}

// As unwraps err into a *Error if one is anywhere in the chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func IsNotFound(err error) bool {
	e, ok := As(err)
	return ok && e.Status == http.StatusNotFound
}
