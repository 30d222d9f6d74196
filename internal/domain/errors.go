package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeUnavailable   = "UNAVAILABLE"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyMessage = NewDomainError(ErrCodeValidation, "message or file content is required")
)

// Not found errors
var (
	ErrEntryNotFound    = NewDomainError(ErrCodeNotFound, "knowledge entry not found")
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// Authorization errors
var (
	ErrInvalidAdminToken = NewDomainError(ErrCodeUnauthorized, "invalid admin token")
)

// Availability errors
var (
	ErrNoGenerator        = NewDomainError(ErrCodeUnavailable, "no text generation provider configured")
	ErrVaultNotConfigured = NewDomainError(ErrCodeUnavailable, "document vault storage not configured")
)
