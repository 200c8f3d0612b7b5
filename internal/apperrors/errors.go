// Package apperrors defines the error vocabulary shared by repositories,
// services and handlers.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input. Field is empty for errors that are
// not tied to a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError reports a missing entity. Membership is set when the missing
// thing is a row in the requester's own list (favorites, cart, subscriptions)
// rather than a referenced entity.
type NotFoundError struct {
	Message    string
	Membership bool
}

func (e *NotFoundError) Error() string { return e.Message }

// PermissionError reports an operation the requester is not allowed to perform.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string { return e.Message }

// Validation builds a ValidationError.
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a ConflictError.
func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a NotFoundError for a referenced entity.
func NotFound(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// NotInList builds a NotFoundError for a row absent from the requester's list.
func NotInList(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...), Membership: true}
}

// Forbidden builds a PermissionError.
func Forbidden(format string, args ...interface{}) error {
	return &PermissionError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsConflict reports whether err wraps a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsPermission reports whether err wraps a PermissionError.
func IsPermission(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}
