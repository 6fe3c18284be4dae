// Package errors defines structured error types for the Aegis pipeline.
// Errors carry a machine-readable code and an HTTP status so the interface
// layer can translate them without switching on sentinel values.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aegisai/aegis/pkg/constants"
)

// AppError is a structured application error.
type AppError struct {
	code       constants.ErrorCode
	httpStatus int
	message    string
	cause      error
	metadata   map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the machine-readable error code.
func (e *AppError) Code() constants.ErrorCode {
	return e.code
}

// HTTPStatus returns the HTTP status the error maps to.
func (e *AppError) HTTPStatus() int {
	return e.httpStatus
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error, returning a copy.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.cause = cause
	return &clone
}

// WithMetadata attaches context metadata, returning a copy.
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	clone := *e
	clone.metadata = make(map[string]interface{}, len(e.metadata)+1)
	for k, v := range e.metadata {
		clone.metadata[k] = v
	}
	clone.metadata[key] = value
	return &clone
}

// Metadata returns all attached metadata.
func (e *AppError) Metadata() map[string]interface{} {
	return e.metadata
}

// New creates an AppError with an explicit code and message.
func New(code constants.ErrorCode, message string) *AppError {
	return &AppError{
		code:       code,
		httpStatus: statusFor(code),
		message:    message,
	}
}

// Wrap creates an AppError around an underlying error.
func Wrap(cause error, code constants.ErrorCode, message string) *AppError {
	return New(code, message).WithCause(cause)
}

func statusFor(code constants.ErrorCode) int {
	switch code {
	case constants.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case constants.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case constants.ErrCodeNotFound:
		return http.StatusNotFound
	case constants.ErrCodeUnavailable, constants.ErrCodeQueueFull:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ================================================================================
// Predefined Errors
// ================================================================================

var (
	// ErrDatabaseOperation wraps storage-layer failures.
	ErrDatabaseOperation = New(constants.ErrCodeInternal, "database operation failed")

	// ErrCache wraps cache-layer failures.
	ErrCache = New(constants.ErrCodeInternal, "cache operation failed")

	// ErrNotFound reports a missing record.
	ErrNotFound = New(constants.ErrCodeNotFound, "record not found")

	// ErrInternalServer is the generic fallback for unexpected conditions.
	ErrInternalServer = New(constants.ErrCodeInternal, "internal server error")

	// ErrInvalidConfig reports unusable configuration.
	ErrInvalidConfig = New(constants.ErrCodeInternal, "invalid configuration")
)

// ErrInvalidRequest creates an invalid_request error with a caller message.
func ErrInvalidRequest(message string) *AppError {
	return New(constants.ErrCodeInvalidRequest, message)
}

// ErrMissingTenant reports a request that arrived without a resolved tenant
// identity. The auth layer should have rejected it upstream.
func ErrMissingTenant() *AppError {
	return New(constants.ErrCodeUnauthorized, "no tenant identity on request")
}

// ErrProfileNotFound reports a missing model baseline profile.
func ErrProfileNotFound(tenantID, modelName string) *AppError {
	return New(constants.ErrCodeNotFound, fmt.Sprintf("no baseline profile for model %s", modelName)).
		WithMetadata("tenant_id", tenantID).
		WithMetadata("model_name", modelName)
}

// ErrQueueFull reports that a tenant's task queue rejected an enqueue.
func ErrQueueFull(tenantID string) *AppError {
	return New(constants.ErrCodeQueueFull, "tenant task queue is full").
		WithMetadata("tenant_id", tenantID)
}

// ================================================================================
// Inspection Helpers
// ================================================================================

// IsNotFoundError reports whether err carries the not_found code.
func IsNotFoundError(err error) bool {
	return HasCode(err, constants.ErrCodeNotFound)
}

// IsQueueFullError reports whether err carries the queue_full code.
func IsQueueFullError(err error) bool {
	return HasCode(err, constants.ErrCodeQueueFull)
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code constants.ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.code == code
	}
	return false
}

// AsAppError extracts an AppError from the chain, or wraps err as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer.WithCause(err)
}
