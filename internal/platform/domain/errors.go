package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a DomainError so transport layers can map it to a status code.
type ErrorCode string

const (
	CodeValidation            ErrorCode = "VALIDATION_ERROR"
	CodeInvalidRange          ErrorCode = "INVALID_RANGE"
	CodeNotFound              ErrorCode = "NOT_FOUND"
	CodeInsufficientInventory ErrorCode = "INSUFFICIENT_INVENTORY"
	CodeUnauthorized          ErrorCode = "UNAUTHORIZED"
	CodeForbidden             ErrorCode = "FORBIDDEN"
	CodeInvalidTransition     ErrorCode = "INVALID_TRANSITION"
	CodeConflict              ErrorCode = "CONFLICT"
)

// DomainError is a user-facing error raised by business rules.
type DomainError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewValidationError reports malformed or missing input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message}
}

// NewInvalidRangeError reports a date range whose end is not after its start.
func NewInvalidRangeError(message string) *DomainError {
	return &DomainError{Code: CodeInvalidRange, Message: message}
}

// NewNotFoundError reports an unknown entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", entity, id),
	}
}

// NewInsufficientInventoryError reports that fewer units are free than were requested.
func NewInsufficientInventoryError(available, requested int) *DomainError {
	return &DomainError{
		Code:    CodeInsufficientInventory,
		Message: fmt.Sprintf("only %d unit(s) available, %d requested", available, requested),
		Details: map[string]any{"available": available, "requested": requested},
	}
}

// NewForbiddenError reports an authenticated caller acting on something it does not own.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Code: CodeForbidden, Message: message}
}

// NewInvalidStateError reports a disallowed status transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
		Details: map[string]any{"from": from, "to": to},
	}
}

// NewConflictError reports a concurrent modification or a referential conflict.
func NewConflictError(message string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: message}
}

// HasCode reports whether err wraps a DomainError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsNotFound reports whether err is a not-found DomainError.
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}
