// Package errors defines stable error codes for tsel failure modes.
//
// Very little inside the selection engine is fatal: extraction and
// resolution failures degrade to "contributes nothing" and cache failures
// degrade to a fresh compute. The codes here cover the cases that do
// surface to the CLI.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// RepoNotFound indicates the repository root does not exist or is not a directory
	RepoNotFound ErrorCode = "REPO_NOT_FOUND"
	// SeedOutsideRepo indicates a seed path falls outside the repository root
	SeedOutsideRepo ErrorCode = "SEED_OUTSIDE_REPO"
	// LanguageUnknown indicates an unsupported dependency language was requested
	LanguageUnknown ErrorCode = "LANGUAGE_UNKNOWN"
	// ConfigInvalid indicates the config file exists but cannot be used
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// CacheUnavailable indicates the cache store could not be read or written
	CacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// SelError represents a tsel error with a stable code and optional cause.
type SelError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new SelError
func New(code ErrorCode, message string, cause error) *SelError {
	return &SelError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *SelError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SelError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *SelError) WithDetails(details interface{}) *SelError {
	e.Details = details
	return e
}

// CodeOf returns the stable code carried by err, or InternalError when err
// is not a SelError.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if se, ok := err.(*SelError); ok {
		return se.Code
	}
	return InternalError
}
