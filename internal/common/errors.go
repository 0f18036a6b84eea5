package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinels for errors.Is matching against the typed errors below.
var (
	ErrValidation   = errors.New("validation failed")
	ErrAccessDenied = errors.New("access denied")
	ErrInference    = errors.New("inference failure")
	ErrPersistence  = errors.New("persistence failure")
)

// ValidationError carries field-level detail about rejected input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records another offending field
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

// HasErrors reports whether any field was rejected
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AccessDeniedError is returned when a caller may not use the broker.
// Message is always safe to show to the client.
type AccessDeniedError struct {
	Message string
	Reason  string
}

// NewAccessDenied creates an access denied error. reason stays server-side.
func NewAccessDenied(message, reason string) *AccessDeniedError {
	return &AccessDeniedError{Message: message, Reason: reason}
}

func (e *AccessDeniedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("access denied: %s", e.Reason)
	}
	return "access denied: " + e.Message
}

func (e *AccessDeniedError) Is(target error) bool {
	return target == ErrAccessDenied
}

// InferenceFailure describes a failed call to the inference server.
// StatusCode is zero when the request never produced an HTTP response.
type InferenceFailure struct {
	Endpoint   string
	StatusCode int
	Cause      error
}

func (e *InferenceFailure) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("inference request to %s failed with status %d", e.Endpoint, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("inference request to %s failed: %v", e.Endpoint, e.Cause)
	default:
		return fmt.Sprintf("inference request to %s failed", e.Endpoint)
	}
}

func (e *InferenceFailure) Unwrap() error {
	return e.Cause
}

func (e *InferenceFailure) Is(target error) bool {
	return target == ErrInference
}

// PersistenceError wraps a storage failure with the operation that failed.
type PersistenceError struct {
	Op    string
	Cause error
}

// NewPersistenceError wraps err, returning nil when err is nil
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Cause: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
