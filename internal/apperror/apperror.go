// Package apperror defines the error taxonomy shared by every layer of the blog.
//
// Services return these errors; handlers translate them into HTTP responses
// (re-rendered forms, flash messages, 404 pages). Nothing below the handler
// layer knows about status codes.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDelivery           = errors.New("delivery failed")
)

type AppError struct {
	Err     error  // sentinel the error unwraps to
	Message string // human-readable, safe to show to visitors
	Field   string // optional: form field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict is returned by repositories when a UNIQUE constraint rejects a write.
// Field names the column that collided so services can report it on the form.
func Conflict(resource, field string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s with this %s already exists", resource, field),
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// InvalidCredentials is deliberately vague: it never says whether the email
// or the password was wrong.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "invalid email or password",
	}
}

// DeliveryFailed wraps a transport failure from the mailer. The cause is kept
// for logging but not shown in Message.
func DeliveryFailed(cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrDelivery, cause),
		Message: "message could not be delivered",
	}
}

// FieldErrors collects one message per form field. A non-empty FieldErrors
// is an error that unwraps to ErrValidation.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message, so the
// first failing rule wins.
func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

// Err returns fe as an error, or nil when no field failed.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error {
	return ErrValidation
}

// Fields extracts per-field messages from err. A single-field AppError becomes
// a one-entry map; anything without field information returns nil.
func Fields(err error) FieldErrors {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Field != "" {
		return FieldErrors{appErr.Field: appErr.Message}
	}
	return nil
}
