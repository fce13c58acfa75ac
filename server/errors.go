package server

import (
	"net/http"

	"github.com/teranos/mechrelay/errors"
)

// Sentinel errors for request handling.
// Use these with errors.Is(); wrap them to add context while preserving the type.
var (
	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrServiceUnavailable indicates the server is draining or stopped
	ErrServiceUnavailable = errors.New("service unavailable")
)

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && errors.Is(err, ErrInvalidRequest)
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidRequest)
}

// statusFor maps an API error to its HTTP status
func statusFor(err error) int {
	switch {
	case IsInvalidRequestError(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
