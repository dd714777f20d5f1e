package models

import (
	"fmt"
	"net/http"
)

// ErrorCode is a string type for consistent error codes.
type ErrorCode string

// Predefined error codes for the API's failure classes.
const (
	ErrorCodeValidationFailed    ErrorCode = "validation_failed"
	ErrorCodeRouteNotFound       ErrorCode = "route_not_found"
	ErrorCodeQueryFailed         ErrorCode = "query_failed"
	ErrorCodeInternalServerError ErrorCode = "internal_server_error"
)

// APIError is the error envelope returned to clients. Only Message and
// Details are serialized; Code is kept for logging.
type APIError struct {
	Code       ErrorCode `json:"-"`
	Message    string    `json:"error"`
	Details    []string  `json:"details,omitempty"`
	StatusCode int       `json:"-"`
}

// Error makes APIError implement the error interface.
func (e APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewAPIError is a constructor for APIError.
func NewAPIError(code ErrorCode, message string, details []string, statusCode int) APIError {
	return APIError{
		Code:       code,
		Message:    message,
		Details:    details,
		StatusCode: statusCode,
	}
}

// NewValidationError builds a 400 carrying one message per rejected field.
func NewValidationError(message string, details []string) APIError {
	return NewAPIError(ErrorCodeValidationFailed, message, details, http.StatusBadRequest)
}

// NewRouteNotFoundError builds the 404 for an unregistered method/template pair.
func NewRouteNotFoundError(method, resource string) APIError {
	return NewAPIError(ErrorCodeRouteNotFound, fmt.Sprintf("Route not found: %s %s", method, resource), nil, http.StatusNotFound)
}

// NewQueryFailedError builds the 500 returned when the store call fails.
func NewQueryFailedError(message string, err error) APIError {
	return NewAPIError(ErrorCodeQueryFailed, fmt.Sprintf("%s: %v", message, err), nil, http.StatusInternalServerError)
}

// NewInternalError builds the 500 for any failure not classified above.
func NewInternalError(err error) APIError {
	return NewAPIError(ErrorCodeInternalServerError, fmt.Sprintf("Internal server error: %v", err), nil, http.StatusInternalServerError)
}
