package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain errors carry their own codes; these
// cover failures that never reach the application layer.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "TOKEN_INVALID"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeInternal        = "INTERNAL"
)

// errorStatusMap maps error codes to HTTP status codes
var errorStatusMap = map[string]int{
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeTokenExpired:   http.StatusUnauthorized,
	ErrCodeTokenInvalid:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,

	ErrCodeForbidden: http.StatusForbidden,

	ErrCodeNotFound: http.StatusNotFound,

	"ALREADY_EXISTS": http.StatusConflict,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Business-rule violations
	"MISSING_COLUMN":              http.StatusBadRequest,
	"PAYMENT_EXCEEDS_OUTSTANDING": http.StatusUnprocessableEntity,

	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code. Validation
// codes follow the INVALID_* convention; unknown codes default to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorStatusMap[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
