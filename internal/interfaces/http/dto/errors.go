package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain errors carry their own codes and are
// passed through unchanged.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// errorCodeStatus maps error codes to HTTP status codes. Codes missing here
// fall through to the prefix rules in StatusForCode.
var errorCodeStatus = map[string]int{
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeInternal:     http.StatusInternalServerError,

	"NOT_FOUND": http.StatusNotFound,
	"FORBIDDEN": http.StatusForbidden,

	"ALREADY_EXISTS":       http.StatusConflict,
	"ALREADY_MEMBER":       http.StatusConflict,
	"DUPLICATE_NAME":       http.StatusConflict,
	"CATEGORY_IN_USE":      http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	"INVALID_INPUT": http.StatusBadRequest,

	"INVALID_STATE": http.StatusUnprocessableEntity,
	"INVALID_SPLIT": http.StatusUnprocessableEntity,
}

// StatusForCode returns the HTTP status for an error code. Validation codes
// from entity constructors follow the INVALID_ prefix, state conflicts the
// ALREADY_ prefix. Anything unrecognized is an internal error.
func StatusForCode(code string) int {
	if status, ok := errorCodeStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "ALREADY_"):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
