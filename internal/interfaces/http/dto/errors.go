package dto

import (
	"net/http"

	"github.com/hotelops/backend/internal/domain/shared"
)

// Domain error codes are surfaced unchanged so clients can switch on the same
// values the services return.
const (
	ErrCodeValidation             = shared.CodeValidation
	ErrCodeNotFound               = shared.CodeNotFound
	ErrCodeInvalidStateTransition = shared.CodeInvalidStateTransition
	ErrCodeDailyNotReady          = shared.CodeDailyNotReady
	ErrCodeDuplicateDay           = shared.CodeDuplicateDay
	ErrCodeConcurrentModification = shared.CodeConcurrentModification
)

// Transport error codes
const (
	// ErrCodeBadRequest is used for malformed requests (bad JSON, bad path params)
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthorized is used when the caller identity header is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:             http.StatusBadRequest,
	ErrCodeNotFound:               http.StatusNotFound,
	ErrCodeInvalidStateTransition: http.StatusUnprocessableEntity,
	ErrCodeDailyNotReady:          http.StatusUnprocessableEntity,
	ErrCodeDuplicateDay:           http.StatusConflict,
	ErrCodeConcurrentModification: http.StatusConflict,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeInternal:     http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
