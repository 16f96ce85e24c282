package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped sentinels compare equal
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// validationCodes are the codes raised before any remote call is made
var validationCodes = map[string]struct{}{
	"INVALID_INPUT":          {},
	"INVALID_NAME":           {},
	"INVALID_PRICE":          {},
	"INVALID_CATEGORY":       {},
	"INVALID_DESCRIPTION":    {},
	"INVALID_QUANTITY":       {},
	"INVALID_CUSTOMER_NAME":  {},
	"INVALID_PAYMENT_METHOD": {},
	"INVALID_AMOUNT":         {},
	"INVALID_NOTES":          {},
}

// IsValidationError reports whether err is a caller-side validation failure
func IsValidationError(err error) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	_, ok := validationCodes[de.Code]
	return ok
}
