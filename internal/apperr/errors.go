// Package apperr defines the error taxonomy shared by services and the HTTP layer.
// Services return (or wrap) these values; handlers map them to status codes with HTTPStatus.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrValidation marks malformed input (length, enum or required-field violations).
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated is returned when an operation needs a signed-in actor.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the actor lacks the required role.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrNotFound is returned when a referenced report or profile does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on uniqueness violations and lost concurrent updates.
	ErrConflict = errors.New("conflict")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of a request. It unwraps to ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add records an invalid field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns e when at least one field was recorded, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Invalid builds a single-field validation error.
func Invalid(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// HTTPStatus maps an error onto the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that is safe to show to API clients.
// Backend failures are reported generically.
func PublicMessage(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
