package dto

import (
	"net/http"

	"github.com/wms/backend/internal/domain/shared"
)

// Transport-level error codes for failures that never reach the domain
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain and transport error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	shared.CodeInvalidInput:      http.StatusBadRequest,
	shared.CodeNotFound:          http.StatusNotFound,
	shared.CodeConflict:          http.StatusConflict,
	shared.CodeInsufficientStock: http.StatusUnprocessableEntity,
	shared.CodeExceedsRequested:  http.StatusUnprocessableEntity,
	shared.CodeInvalidTransition: http.StatusUnprocessableEntity,
	shared.CodeInvalidMovement:   http.StatusUnprocessableEntity,

	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
