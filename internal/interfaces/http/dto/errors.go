package dto

import (
	"net/http"
	"strings"
)

// General error codes
const (
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeRemoteFailure      = "REMOTE_FAILURE"
)

// Request error codes
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeTokenExpired  = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid  = "INVALID_TOKEN"
	ErrCodeTokenNotValid = "TOKEN_NOT_VALID"
	ErrCodeForbidden     = "FORBIDDEN"
)

// Resource and state error codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeAlreadyDiscontinued = "ALREADY_DISCONTINUED"
	ErrCodeProductUnavailable  = "PRODUCT_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
// Codes not listed here fall back to the suffix and prefix rules in GetHTTPStatus.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeRemoteFailure:      http.StatusBadGateway,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeTokenExpired:  http.StatusUnauthorized,
	ErrCodeTokenInvalid:  http.StatusUnauthorized,
	ErrCodeTokenNotValid: http.StatusUnauthorized,
	ErrCodeForbidden:     http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeAlreadyDiscontinued: http.StatusUnprocessableEntity,
	ErrCodeProductUnavailable:  http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// TAB_NOT_FOUND style codes map to 404 and INVALID_* codes to 400; anything else unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
