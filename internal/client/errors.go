package client

import (
	"errors"
	"net/http"
)

// Error types
type AuthError struct {
	Message    string
	StatusCode int
}

func (e *AuthError) Error() string {
	return e.Message
}

type RateLimitError struct {
	Message    string
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return e.Message
}

type BadRequestError struct {
	Message    string
	StatusCode int
}

func (e *BadRequestError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Message    string
	StatusCode int
}

func (e *NotFoundError) Error() string {
	return e.Message
}

type BackendError struct {
	Message    string
	StatusCode int
}

func (e *BackendError) Error() string {
	return e.Message
}

// IsAuthError reports whether err means the backend rejected the token or
// the credentials.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsBadRequest(err error) bool {
	var br *BadRequestError
	return errors.As(err, &br)
}

func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

func statusError(statusCode int, msg string) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Message: msg, StatusCode: statusCode}
	case http.StatusTooManyRequests:
		return &RateLimitError{Message: msg, StatusCode: statusCode}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &BadRequestError{Message: msg, StatusCode: statusCode}
	case http.StatusNotFound, http.StatusGone:
		return &NotFoundError{Message: msg, StatusCode: statusCode}
	default:
		return &BackendError{Message: msg, StatusCode: statusCode}
	}
}
