package shared

import "errors"

// DomainError represents a domain-level error with a machine-distinguishable code
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

// Error codes used across the transfer and inventory domains
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeExceedsRequested  = "EXCEEDS_REQUESTED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeInvalidMovement   = "INVALID_MOVEMENT"
	CodeConflict          = "CONCURRENCY_CONFLICT"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrConcurrencyConflict = NewDomainError(CodeConflict, "Resource was modified by another process")
)

// ErrorCode extracts the domain error code from err, or empty string for
// non-domain errors.
func ErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
