package errors

import (
	"fmt"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryRoute    Category = "route"
	CategoryCache    Category = "cache"
	CategoryManifest Category = "manifest"
	CategoryConfig   Category = "config"
)

// NavError is a structured error with a stable code, a category, and an
// optional fix suggestion.
type NavError struct {
	// Code is a unique error identifier (e.g., "N001").
	Code string

	// Category is the error type (route, cache, manifest, config).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *NavError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *NavError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target carries the same error code. This lets callers
// compare against the registry sentinels with errors.Is.
func (e *NavError) Is(target error) bool {
	t, ok := target.(*NavError)
	return ok && t.Code == e.Code
}

// WithDetail replaces the detail text.
func (e *NavError) WithDetail(format string, args ...any) *NavError {
	c := *e
	c.Detail = fmt.Sprintf(format, args...)
	return &c
}

// WithSuggestion adds a fix suggestion to the error.
func (e *NavError) WithSuggestion(s string) *NavError {
	c := *e
	c.Suggestion = s
	return &c
}

// Wrap attaches an underlying error.
func (e *NavError) Wrap(err error) *NavError {
	c := *e
	c.Wrapped = err
	return &c
}

// Format returns a multi-line human-readable rendering for CLI output.
func (e *NavError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ERROR %s (%s): %s\n", e.Code, e.Category, e.Message)
	if e.Detail != "" {
		fmt.Fprintf(&b, "\n  %s\n", e.Detail)
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, "\n  Caused by: %s\n", e.Wrapped)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Hint: %s\n", e.Suggestion)
	}
	return b.String()
}
