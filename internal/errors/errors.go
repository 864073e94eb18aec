// Package errors provides standardized error types for the API.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/palemoky/contentiq/internal/analysis"
	"github.com/palemoky/contentiq/internal/database"
	"github.com/palemoky/contentiq/internal/intake"
)

// Code represents an API error code.
type Code string

const (
	CodeNotFound       Code = "NOT_FOUND"
	CodeInvalidID      Code = "INVALID_ID"
	CodeInvalidRequest Code = "INVALID_REQUEST"
	CodeEmptyURL       Code = "EMPTY_URL"
	CodeURLTooLong     Code = "URL_TOO_LONG"
	CodeInternal       Code = "INTERNAL_ERROR"
	CodeRateLimited    Code = "RATE_LIMITED"
	CodeUnavailable    Code = "SERVICE_UNAVAILABLE"
)

// APIError represents a structured API error.
type APIError struct {
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound       = &APIError{Code: CodeNotFound, Message: "Analysis not found", HTTPStatus: http.StatusNotFound}
	ErrInvalidID      = &APIError{Code: CodeInvalidID, Message: "Invalid analysis ID", HTTPStatus: http.StatusBadRequest}
	ErrInternal       = &APIError{Code: CodeInternal, Message: "Internal server error", HTTPStatus: http.StatusInternalServerError}
	ErrInvalidRequest = &APIError{Code: CodeInvalidRequest, Message: "Invalid request", HTTPStatus: http.StatusBadRequest}
	ErrEmptyURL       = &APIError{Code: CodeEmptyURL, Message: "URL must not be empty", HTTPStatus: http.StatusBadRequest}
	ErrURLTooLong     = &APIError{Code: CodeURLTooLong, Message: fmt.Sprintf("URL must be at most %d bytes", intake.MaxURLLength), HTTPStatus: http.StatusBadRequest}
	ErrRateLimited    = &APIError{Code: CodeRateLimited, Message: "Rate limit exceeded", HTTPStatus: http.StatusTooManyRequests}
	ErrUnavailable    = &APIError{Code: CodeUnavailable, Message: "Service is shutting down", HTTPStatus: http.StatusServiceUnavailable}
)

// InvalidRequest creates a bad request error with a custom message.
func InvalidRequest(message string) *APIError {
	return &APIError{
		Code:       CodeInvalidRequest,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// From maps a domain error onto its APIError. Unknown errors become
// ErrInternal so internals never leak to clients.
func From(err error) *APIError {
	var apiErr *APIError
	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &apiErr):
		return apiErr
	case stderrors.Is(err, intake.ErrEmptyURL):
		return ErrEmptyURL
	case stderrors.Is(err, intake.ErrURLTooLong):
		return ErrURLTooLong
	case stderrors.Is(err, database.ErrNotFound):
		return ErrNotFound
	case stderrors.Is(err, analysis.ErrClosed):
		return ErrUnavailable
	default:
		return ErrInternal
	}
}
