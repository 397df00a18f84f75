package shared

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes surfaced to callers. The HTTP layer maps each code to a status.
const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeNotFound               = "NOT_FOUND"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeDailyNotReady          = "DAILY_NOT_READY"
	CodeDuplicateDay           = "DUPLICATE_DAY"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

// Is reports whether target is a DomainError with the same code, so callers
// can match against the sentinel values below with errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports malformed input.
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewNotFoundError reports a missing shift, day or voucher.
func NewNotFoundError(resource, key string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", resource, key))
}

// NewInvalidStateTransitionError reports an operation the current status does not allow.
func NewInvalidStateTransitionError(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidStateTransition, fmt.Sprintf(format, args...))
}

// NewDailyNotReadyError carries every reason the day cannot be closed.
func NewDailyNotReadyError(date string, reasons []string) *DomainError {
	details := make([]string, len(reasons))
	copy(details, reasons)
	return &DomainError{
		Code:    CodeDailyNotReady,
		Message: fmt.Sprintf("day %s is not ready to close", date),
		Details: details,
	}
}

// NewDuplicateDayError reports a second initialization of the same date.
func NewDuplicateDayError(date string) *DomainError {
	return NewDomainError(CodeDuplicateDay, fmt.Sprintf("day %s is already initialized", date))
}

// NewConcurrentModificationError reports a lost optimistic-lock race.
func NewConcurrentModificationError(resource, key string) *DomainError {
	return NewDomainError(CodeConcurrentModification,
		fmt.Sprintf("%s %s was modified by another transaction", resource, key))
}

// Sentinels for errors.Is matching; only the Code is compared.
var (
	ErrValidation             = NewDomainError(CodeValidation, "validation failed")
	ErrNotFound               = NewDomainError(CodeNotFound, "resource not found")
	ErrInvalidStateTransition = NewDomainError(CodeInvalidStateTransition, "operation not allowed in current state")
	ErrDailyNotReady          = NewDomainError(CodeDailyNotReady, "day is not ready to close")
	ErrDuplicateDay           = NewDomainError(CodeDuplicateDay, "day already initialized")
	ErrConcurrentModification = NewDomainError(CodeConcurrentModification, "resource was modified by another transaction")
)

// CodeOf returns the domain error code of err, or "" when err is not a DomainError.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsRetryable reports whether the caller may retry the same request unchanged.
func IsRetryable(err error) bool {
	return CodeOf(err) == CodeConcurrentModification
}
