package services

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped to HTTP statuses by the handlers layer.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream error")
)

// ValidationError wraps ErrValidation with a caller-facing detail message
func ValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundError wraps ErrNotFound with the missing resource name
func NotFoundError(resource string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, resource)
}

// ConflictError wraps ErrConflict with a caller-facing detail message
func ConflictError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// ForbiddenError wraps ErrForbidden with a caller-facing detail message
func ForbiddenError(message string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, message)
}

// UpstreamError wraps a backing-store failure. Handlers return these as 500
// with the store's own message in the detail, unlike unexpected errors whose
// detail stays server-side.
func UpstreamError(action string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstream, action, err)
}
