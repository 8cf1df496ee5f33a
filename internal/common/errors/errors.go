// Package errors provides the standardized error taxonomy for the matching pipeline.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Error Codes
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidCredential     ErrorCode = "INVALID_CREDENTIAL"
	ErrCodeConfigurationError    ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeForbidden             ErrorCode = "FORBIDDEN"
	ErrCodeRateLimited           ErrorCode = "RATE_LIMITED"
	ErrCodeNotFound              ErrorCode = "NOT_FOUND"
	ErrCodeDependencyUnavailable ErrorCode = "DEPENDENCY_UNAVAILABLE"
	ErrCodeInternalError         ErrorCode = "INTERNAL_ERROR"
)

// ==========================
// 2. Pipeline Error Type
// ==========================

// PipelineError is a structured error raised by a pipeline stage. Each stage
// only raises the codes defined in its contract, so the HTTP boundary mapping
// stays exhaustive without translation.
type PipelineError struct {
	Code              ErrorCode `json:"code"`
	Message           string    `json:"message"`
	Details           string    `json:"details,omitempty"`
	RetryAfterSeconds int       `json:"retryAfterSeconds,omitempty"`
	Retryable         bool      `json:"retryable"`
	Timestamp         time.Time `json:"timestamp"`
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("PipelineError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus maps the error code to the response status for the matching endpoint.
func (e *PipelineError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeInvalidCredential:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidCredentialError creates a non-retryable credential failure.
// Details must never contain raw token material.
func NewInvalidCredentialError(details string) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeInvalidCredential,
		Message:   "Credential verification failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigurationError creates a non-retryable configuration failure.
func NewConfigurationError(details string) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeConfigurationError,
		Message:   "Service configuration error",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewForbiddenError creates a non-retryable role authorization failure.
func NewForbiddenError(details string) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeForbidden,
		Message:   "Operation not permitted for this role",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError creates an admission denial carrying retry-after guidance.
func NewRateLimitedError(retryAfterSeconds int) *PipelineError {
	return &PipelineError{
		Code:              ErrCodeRateLimited,
		Message:           "Too many requests",
		RetryAfterSeconds: retryAfterSeconds,
		Retryable:         true,
		Timestamp:         time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable missing resource error.
func NewNotFoundError(resource, id string) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDependencyUnavailableError creates a retryable external collaborator failure.
func NewDependencyUnavailableError(dependency string, err error) *PipelineError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &PipelineError{
		Code:      ErrCodeDependencyUnavailable,
		Message:   fmt.Sprintf("Dependency '%s' unavailable", dependency),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError creates a non-retryable unexpected failure.
func NewInternalError(err error) *PipelineError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &PipelineError{
		Code:      ErrCodeInternalError,
		Message:   "Unexpected internal error",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// Normalize ensures any error is represented as a PipelineError. Errors that
// are not already part of the taxonomy become INTERNAL_ERROR.
func Normalize(err error) *PipelineError {
	var pipeErr *PipelineError
	if errors.As(err, &pipeErr) {
		return pipeErr
	}
	return NewInternalError(err)
}

// IsCode reports whether err is a PipelineError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var pipeErr *PipelineError
	if errors.As(err, &pipeErr) {
		return pipeErr.Code == code
	}
	return false
}

// IsCallerCorrectable reports whether the caller can fix the request itself,
// as opposed to the service being unhealthy. Clients use this split to pick
// a backoff strategy.
func IsCallerCorrectable(code ErrorCode) bool {
	switch code {
	case ErrCodeInvalidCredential, ErrCodeForbidden, ErrCodeRateLimited, ErrCodeNotFound:
		return true
	default:
		return false
	}
}
