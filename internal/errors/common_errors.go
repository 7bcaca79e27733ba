package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeCatalog    ErrorType = "CATALOG"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// Sentinel errors. AppError causes wrap these so callers can use errors.Is.
var (
	ErrCatalogNotFound   = stderrors.New("catalog not found")
	ErrCatalogRead       = stderrors.New("catalog read error")
	ErrMissingColumn     = stderrors.New("required column missing")
	ErrInvalidConfig     = stderrors.New("invalid configuration")
	ErrUnsupportedFormat = stderrors.New("unsupported dataset format")
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewCatalogNotFoundError reports a catalog source that does not exist.
func NewCatalogNotFoundError(path string, cause error) *AppError {
	return NewAppError(ErrTypeCatalog, "metric catalog not found", wrapSentinel(ErrCatalogNotFound, cause)).
		WithContext("path", path)
}

// NewCatalogReadError reports any other failure while reading the catalog.
func NewCatalogReadError(path string, cause error) *AppError {
	return NewAppError(ErrTypeCatalog, "failed to read metric catalog", wrapSentinel(ErrCatalogRead, cause)).
		WithContext("path", path)
}

// NewMissingColumnError reports a configured column absent from the dataset.
func NewMissingColumnError(column string) *AppError {
	return NewAppError(ErrTypeValidation, fmt.Sprintf("column %q not present in dataset", column), ErrMissingColumn).
		WithContext("column", column)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, wrapSentinel(ErrInvalidConfig, cause))
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

func wrapSentinel(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}
