package core

import (
	"errors"
	"fmt"
)

// ExecutionError represents a structured error with category and details
type ExecutionError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: element_not_found, index_out_of_range, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is matches any ExecutionError carrying the same code, so copies made with
// WithMessage/WithDetails still match the predefined values.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithMessagef is WithMessage with fmt.Sprintf formatting
func (e *ExecutionError) WithMessagef(format string, args ...interface{}) *ExecutionError {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// WithDetails returns a copy of the error with additional details
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors
var (
	// Resolution errors
	ErrElementNotFound = &ExecutionError{
		Category: ErrCategoryResolution,
		Code:     "element_not_found",
		Message:  "element not found",
	}
	ErrOptionNotFound = &ExecutionError{
		Category: ErrCategoryResolution,
		Code:     "option_not_found",
		Message:  "option not found",
	}

	// Bounds errors
	ErrIndexOutOfRange = &ExecutionError{
		Category: ErrCategoryBounds,
		Code:     "index_out_of_range",
		Message:  "index exceeds discovered count",
	}
	ErrInvalidBinding = &ExecutionError{
		Category: ErrCategoryBounds,
		Code:     "invalid_binding",
		Message:  "row and column indexes are 1-based",
	}

	// Assertion errors
	ErrMismatch = &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "mismatch",
		Message:  "actual value does not match expectation",
	}

	// Specification errors
	ErrUnknownProperty = &ExecutionError{
		Category: ErrCategorySpec,
		Code:     "unknown_property",
		Message:  "unknown property",
	}
	ErrUnsupportedProperty = &ExecutionError{
		Category: ErrCategorySpec,
		Code:     "unsupported_property",
		Message:  "property not supported by element kind",
	}
	ErrInvalidSpec = &ExecutionError{
		Category: ErrCategorySpec,
		Code:     "invalid_spec",
		Message:  "invalid comparison spec",
	}

	// Driver errors
	ErrNotInteractable = &ExecutionError{
		Category: ErrCategoryDriver,
		Code:     "not_interactable",
		Message:  "element is not interactable",
	}
	ErrStateNotApplied = &ExecutionError{
		Category: ErrCategoryDriver,
		Code:     "state_not_applied",
		Message:  "element did not reach the requested state",
	}
	ErrUnsupported = &ExecutionError{
		Category: ErrCategoryDriver,
		Code:     "unsupported",
		Message:  "operation not supported by driver",
	}

	// Config errors
	ErrInvalidConfig = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
	ErrMissingRequired = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "missing_required",
		Message:  "missing required field",
	}

	// Verification errors
	ErrVerificationFailed = &ExecutionError{
		Category: ErrCategoryVerification,
		Code:     "verification_failed",
		Message:  "UI verification failed",
	}
)

// CategoryOf returns the category of the first ExecutionError in err's chain.
func CategoryOf(err error) ErrorCategory {
	var e *ExecutionError
	if errors.As(err, &e) {
		return e.Category
	}
	return ErrCategoryNone
}
