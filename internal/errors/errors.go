// Package errors provides a lightweight structured error type (ExportError)
// for category-based classification of export failures in the CLI and server.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of an export error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig      ErrorCategory = "config"
	CategoryInvalidRoot ErrorCategory = "invalid_root"

	// Traversal errors
	CategoryUnreadableEntry ErrorCategory = "unreadable_entry"
	CategoryFileSystem      ErrorCategory = "filesystem"

	// Page production errors
	CategoryRender   ErrorCategory = "render"
	CategoryTemplate ErrorCategory = "template"

	// Runtime and infrastructure errors
	CategoryGit      ErrorCategory = "git"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops the export
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded output
)

// ExportError is a structured error with category, severity and the offending path.
// Path is always set for fatal failures so callers can report actionable diagnostics.
type ExportError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Path     string        `json:"path,omitempty"`
	Cause    error         `json:"cause,omitempty"`
}

// Error implements the error interface
func (e *ExportError) Error() string {
	switch {
	case e.Path != "" && e.Cause != nil:
		return fmt.Sprintf("%s (%s): %s: %s: %v", e.Category, e.Severity, e.Message, e.Path, e.Cause)
	case e.Path != "":
		return fmt.Sprintf("%s (%s): %s: %s", e.Category, e.Severity, e.Message, e.Path)
	case e.Cause != nil:
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
	}
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// WithPath attributes the error to a filesystem path.
func (e *ExportError) WithPath(path string) *ExportError {
	e.Path = path
	return e
}

// New creates a new ExportError
func New(category ErrorCategory, severity ErrorSeverity, message string) *ExportError {
	return &ExportError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new ExportError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *ExportError {
	return &ExportError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if ee, ok := err.(*ExportError); ok {
		return ee.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not an ExportError
func GetCategory(err error) ErrorCategory {
	if ee, ok := err.(*ExportError); ok {
		return ee.Category
	}
	return CategoryInternal
}

// GetPath extracts the attributed path from an error, empty if none.
func GetPath(err error) string {
	if ee, ok := err.(*ExportError); ok {
		return ee.Path
	}
	return ""
}
