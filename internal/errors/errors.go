package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	ErrInvalidRequest    = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrMissingParameter  = New(http.StatusBadRequest, "MISSING_PARAMETER", "Required parameter is missing")
	ErrNotFound          = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrPayloadTooLarge   = New(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Uploaded dataset is too large")
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")
	ErrInternalServer    = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return ErrInvalidRequest.WithDetails(err.Error())
}

// MissingParameter reports an absent request parameter by name.
func MissingParameter(name string) *APIError {
	return ErrMissingParameter.WithDetails(name)
}

// WithDetails returns a copy of e carrying details.
func (e *APIError) WithDetails(details interface{}) *APIError {
	return NewWithDetails(e.StatusCode, e.ErrorCode, e.Message, details)
}

// FromAppError maps an AppError onto the HTTP error it should surface as.
// Errors that are not AppErrors become internal server errors.
func FromAppError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return ErrInternalServer.WithDetails(err.Error())
	}

	switch appErr.Type {
	case ErrTypeParsing:
		return NewWithDetails(http.StatusBadRequest, "DATASET_PARSE_FAILED", appErr.Message, causeText(appErr))
	case ErrTypeValidation:
		return NewWithDetails(http.StatusUnprocessableEntity, "DATASET_REJECTED", appErr.Message, appErr.Context)
	case ErrTypeNotFound:
		return NewWithDetails(http.StatusNotFound, "NOT_FOUND", appErr.Message, appErr.Context)
	case ErrTypeCatalog:
		return NewWithDetails(http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", appErr.Message, causeText(appErr))
	case ErrTypeConfig:
		return NewWithDetails(http.StatusInternalServerError, "CONFIG_ERROR", appErr.Message, causeText(appErr))
	default:
		return NewWithDetails(ErrInternalServer.StatusCode, ErrInternalServer.ErrorCode, appErr.Message, causeText(appErr))
	}
}

func causeText(e *AppError) string {
	if e.Cause == nil {
		return ""
	}
	return fmt.Sprint(e.Cause)
}
