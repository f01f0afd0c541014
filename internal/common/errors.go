package common

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the application.
var (
	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")
	// ErrScannerUnavailable indicates the external scanner binary could not be launched
	ErrScannerUnavailable = errors.New("scanner binary unavailable")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context information
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap categorizes every validation failure under ErrInvalidInput, so
// callers can branch with errors.Is without naming the struct.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ConfigurationError represents configuration-related errors. A missing
// credential for a selected mode is fatal for that run; everything else in
// this file is skippable.
type ConfigurationError struct {
	Section string
	Field   string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Section != "" && e.Field != "" {
		return fmt.Sprintf("configuration error in section '%s', field '%s': %s", e.Section, e.Field, e.Reason)
	} else if e.Section != "" {
		return fmt.Sprintf("configuration error in section '%s': %s", e.Section, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(section, field, reason string) *ConfigurationError {
	return &ConfigurationError{
		Section: section,
		Field:   field,
		Reason:  reason,
	}
}

// EnumerationError represents a failed listing of a single account or
// namespace. It never aborts the enumeration of the remaining entries.
type EnumerationError struct {
	Entry   string
	Reason  string
	Wrapped error
}

func (e *EnumerationError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("enumeration failed for '%s': %s: %v", e.Entry, e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("enumeration failed for '%s': %s", e.Entry, e.Reason)
}

func (e *EnumerationError) Unwrap() error {
	return e.Wrapped
}

// NewEnumerationError creates a new enumeration error for a single entry
func NewEnumerationError(entry, reason string, wrapped error) *EnumerationError {
	return &EnumerationError{
		Entry:   entry,
		Reason:  reason,
		Wrapped: wrapped,
	}
}

// DispatchError represents a scan invocation that failed before producing
// any output (binary missing, launch failure, crash with empty stdout).
// A non-zero exit after output was produced is not a DispatchError.
type DispatchError struct {
	Target  string
	Reason  string
	Wrapped error
}

func (e *DispatchError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("scan dispatch failed for '%s': %s: %v", e.Target, e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("scan dispatch failed for '%s': %s", e.Target, e.Reason)
}

func (e *DispatchError) Unwrap() error {
	return e.Wrapped
}

// NewDispatchError creates a new dispatch error for a single target
func NewDispatchError(target, reason string, wrapped error) *DispatchError {
	return &DispatchError{
		Target:  target,
		Reason:  reason,
		Wrapped: wrapped,
	}
}

// OutputError represents a failure to produce the run's final artifact.
// These are the only per-run fatal errors besides mode configuration.
type OutputError struct {
	Path    string
	Wrapped error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("failed to write output '%s': %v", e.Path, e.Wrapped)
}

func (e *OutputError) Unwrap() error {
	return e.Wrapped
}

// NewOutputError creates a new output error
func NewOutputError(path string, wrapped error) *OutputError {
	return &OutputError{Path: path, Wrapped: wrapped}
}

// HTTPError represents HTTP-related errors
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *HTTPError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("HTTP %d error for URL '%s': %s", e.StatusCode, e.URL, e.Message)
	}
	return fmt.Sprintf("HTTP %d error: %s", e.StatusCode, e.Message)
}

// NewHTTPErrorWithURL creates a new HTTP error with URL context
func NewHTTPErrorWithURL(statusCode int, message, url string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		URL:        url,
	}
}
