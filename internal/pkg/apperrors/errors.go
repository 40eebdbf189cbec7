package apperrors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrConfig        ErrorType = "CONFIG_ERROR"
	ErrUpstream      ErrorType = "UPSTREAM_ERROR"
	ErrSubmission    ErrorType = "SUBMISSION_ERROR"
	ErrFeedExhausted ErrorType = "FEED_EXHAUSTED"
	ErrInternal      ErrorType = "INTERNAL_ERROR"
	ErrNotFound      ErrorType = "NOT_FOUND"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
	}
}

// NewConfig marks a startup configuration failure. The process must not run
// with an invalid policy, so callers treat these as fatal.
func NewConfig(msg string) *AppError {
	return New(ErrConfig, msg, nil)
}

func NewConfigf(format string, args ...any) *AppError {
	return NewConfig(fmt.Sprintf(format, args...))
}

func NewUpstream(msg string, cause error) *AppError {
	return New(ErrUpstream, msg, cause)
}

func NewSubmission(msg string, cause error) *AppError {
	return New(ErrSubmission, msg, cause)
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrConfig:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrUpstream, ErrSubmission:
		return http.StatusBadGateway
	case ErrFeedExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
