// Package errors provides a lightweight structured error type (InkpressError)
// for category-based classification in the build pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of an Inkpress error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryContent    ErrorCategory = "content"

	// Build and processing errors
	CategoryRender     ErrorCategory = "render"
	CategoryFeed       ErrorCategory = "feed"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Publishing errors
	CategoryGit    ErrorCategory = "git"
	CategoryUpload ErrorCategory = "upload"

	// Runtime and infrastructure errors
	CategoryState    ErrorCategory = "state"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// InkpressError is a structured error with category, retryability, and context
type InkpressError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for InkpressError
type ContextFields map[string]any

// Error implements the error interface
func (e *InkpressError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *InkpressError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *InkpressError) WithContext(key string, value any) *InkpressError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new InkpressError
func New(category ErrorCategory, severity ErrorSeverity, message string) *InkpressError {
	return &InkpressError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new InkpressError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *InkpressError {
	return &InkpressError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// WrapRetryable creates a new retryable InkpressError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *InkpressError {
	return &InkpressError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}
