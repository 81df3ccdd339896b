package dto

import (
	"net/http"

	"github.com/visaflow/backend/internal/domain/shared"
)

// Error code constants surfaced in the API envelope.
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeValidation is used when input fails domain validation
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when a unique field collides
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeInvalidState is used when an operation is invalid for the
	// current state, including a lost approval race
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeUnauthorized is used when the caller is not identified
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
)

// ErrorCodeHTTPStatus maps API error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:      http.StatusInternalServerError,
	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeInvalidState:  http.StatusConflict,
	ErrCodeUnauthorized:  http.StatusUnauthorized,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodeMapping maps domain error codes to API error codes
var domainCodeMapping = map[string]string{
	shared.CodeValidation:   ErrCodeValidation,
	shared.CodeDuplicateKey: ErrCodeAlreadyExists,
	shared.CodeNotFound:     ErrCodeNotFound,
	shared.CodeInvalidState: ErrCodeInvalidState,
	shared.CodeStorage:      ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format (or unknown) pass through unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
