package core

// ScenarioStatus represents the execution status of a scenario
type ScenarioStatus int

const (
	StatusPending ScenarioStatus = iota // Not yet started
	StatusRunning                       // Currently executing
	StatusPassed                        // Every check matched
	StatusFailed                        // At least one recorded mismatch
	StatusErrored                       // Raised fault: invalid spec, bounds, driver
	StatusSkipped                       // Filtered out or aborted before start
)

// String returns the string representation of ScenarioStatus
func (s ScenarioStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusErrored:
		return "errored"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the status is a final state
func (s ScenarioStatus) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusErrored, StatusSkipped:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if the status indicates success
func (s ScenarioStatus) IsSuccess() bool {
	return s == StatusPassed
}

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone         ErrorCategory = iota // No error
	ErrCategoryResolution                        // Element or option not found
	ErrCategoryBounds                            // Row/column outside the discovered count
	ErrCategoryAssertion                         // Single recorded mismatch
	ErrCategorySpec                              // Broken expectation map: unknown property or operator
	ErrCategoryDriver                            // Driver could not perform the operation
	ErrCategoryConfig                            // Invalid configuration, missing required field
	ErrCategoryVerification                      // Aggregated failure raised by flush
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryResolution:
		return "resolution"
	case ErrCategoryBounds:
		return "bounds"
	case ErrCategoryAssertion:
		return "assertion"
	case ErrCategorySpec:
		return "spec"
	case ErrCategoryDriver:
		return "driver"
	case ErrCategoryConfig:
		return "config"
	case ErrCategoryVerification:
		return "verification"
	default:
		return "unknown"
	}
}
