// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrCacheExpired indicates cached data has exceeded TTL.
	ErrCacheExpired = errors.New("cache expired")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrModelUnavailable indicates the intent model backend is not reachable
	// or reports itself as not loaded.
	ErrModelUnavailable = errors.New("intent model unavailable")

	// ErrCatalogUnavailable indicates all catalog endpoints failed.
	ErrCatalogUnavailable = errors.New("course catalog unavailable")
)

// CatalogError represents a failed catalog endpoint call with context.
type CatalogError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *CatalogError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog request to %s failed with status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("catalog request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// NewCatalogError creates a new catalog error.
func NewCatalogError(endpoint string, statusCode int, err error) *CatalogError {
	return &CatalogError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Err:        err,
	}
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
