package helper

import (
	"errors"
	"fmt"
	"net/http"
)

// ApiError is a failure that is safe to show to the client.
type ApiError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

func NewApiError(status int, message string) *ApiError {
	return &ApiError{StatusCode: status, Message: message}
}

func Unauthorized(message string) *ApiError {
	return NewApiError(http.StatusUnauthorized, message)
}

func Forbidden(message string) *ApiError {
	return NewApiError(http.StatusForbidden, message)
}

func NotFound(message string) *ApiError {
	return NewApiError(http.StatusNotFound, message)
}

func InvalidRequest(message string) *ApiError {
	return NewApiError(http.StatusBadRequest, message)
}

func Internal() *ApiError {
	return NewApiError(http.StatusInternalServerError, "Internal server error")
}

// AsApiError unwraps err into an ApiError. Anything else maps to Internal.
func AsApiError(err error) (*ApiError, bool) {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return Internal(), false
}

// IsStatus reports whether err is an ApiError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *ApiError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
