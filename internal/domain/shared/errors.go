package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes surfaced to callers
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeDuplicateKey = "DUPLICATE_KEY"
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidState = "INVALID_STATE"
	CodeStorage      = "STORAGE_ERROR"
)

// Common domain errors
var (
	ErrNotFound     = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput = NewDomainError(CodeValidation, "Invalid input provided")
	ErrInvalidState = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)

// NewValidationError creates a validation error for a specific field
func NewValidationError(field, reason string) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf("Invalid %s: %s", field, reason))
}

// NewNotFoundError creates a not-found error naming the resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// NewInvalidStateError creates an invalid-state error
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(CodeInvalidState, message)
}

// DuplicateKeyError reports a business-unique field collision.
// It always names the offending field and the colliding value.
type DuplicateKeyError struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Error implements the error interface
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s '%s' already exists", e.Field, e.Value)
}

// NewDuplicateKeyError creates a duplicate-key error
func NewDuplicateKeyError(field, value string) *DuplicateKeyError {
	return &DuplicateKeyError{Field: field, Value: value}
}

// NewStorageError wraps a storage failure. The underlying engine error is
// preserved for logging via errors.Unwrap but the caller-facing message
// stays generic.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// StorageError indicates the store of record failed or was unreachable
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface without leaking engine text
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s", e.Op)
}

// Unwrap exposes the underlying error for diagnostics
func (e *StorageError) Unwrap() error {
	return e.Err
}

// ErrorCode classifies any error into the caller-facing taxonomy
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var dup *DuplicateKeyError
	if errors.As(err, &dup) {
		return CodeDuplicateKey
	}
	var se *StorageError
	if errors.As(err, &se) {
		return CodeStorage
	}
	return CodeStorage
}

// IsNotFound reports whether err is a not-found domain error
func IsNotFound(err error) bool {
	return ErrorCode(err) == CodeNotFound
}

// IsDuplicateKey reports whether err is a duplicate-key error
func IsDuplicateKey(err error) bool {
	return ErrorCode(err) == CodeDuplicateKey
}

// IsInvalidState reports whether err is an invalid-state error
func IsInvalidState(err error) bool {
	return ErrorCode(err) == CodeInvalidState
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return ErrorCode(err) == CodeValidation
}
