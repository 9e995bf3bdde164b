package core

import (
	"fmt"
	"strings"
	"time"
)

// Failure is one recorded verification mismatch. It is created on mismatch,
// appended to the scenario's queue and never mutated afterwards.
type Failure struct {
	Element  string `json:"element"`          // Logical reference, with binding when scoped
	Property string `json:"property"`         // value, caption, checked, ...
	Expected string `json:"expected"`         // Expected description: 1, > 25, contains "x"
	Actual   string `json:"actual"`           // Actual value as observed
	Step     string `json:"step,omitempty"`   // Scenario step label
	Detail   string `json:"detail,omitempty"` // Extra reason: element not found, not a number
}

// Error implements the error interface so failures can be aggregated.
func (f Failure) Error() string {
	var b strings.Builder
	if f.Step != "" {
		fmt.Fprintf(&b, "[%s] ", f.Step)
	}
	fmt.Fprintf(&b, "%s %s: %s vs %s", f.Element, f.Property, f.Expected, f.Actual)
	if f.Detail != "" {
		fmt.Fprintf(&b, " (%s)", f.Detail)
	}
	return b.String()
}

// Unwrap marks every recorded failure as a mismatch.
func (f Failure) Unwrap() error { return ErrMismatch }

// ScenarioResult captures the outcome of verifying one scenario
type ScenarioResult struct {
	// Identity
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	FilePath string   `json:"filePath,omitempty"`
	Tags     []string `json:"tags,omitempty"`

	// Status
	Status   ScenarioStatus `json:"status"`
	Category ErrorCategory  `json:"errorCategory,omitempty"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Checks
	Checks      int          `json:"checks"` // Element/property pairs evaluated
	Failures    []Failure    `json:"failures,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`

	// Error info (raised faults and the aggregated report)
	Error string `json:"error,omitempty"`
}

// AggregateStatus determines the scenario status from its outcome
func (r *ScenarioResult) AggregateStatus() ScenarioStatus {
	switch {
	case r.Category != ErrCategoryNone && r.Category != ErrCategoryVerification:
		return StatusErrored
	case len(r.Failures) > 0:
		return StatusFailed
	default:
		return StatusPassed
	}
}

// SuiteResult captures the complete outcome of verifying multiple scenarios
type SuiteResult struct {
	// Identity
	Name  string `json:"name"`
	RunID string `json:"runId"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Results
	Scenarios []ScenarioResult `json:"scenarios"`

	// Summary
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
	Skipped int `json:"skipped"`
}

// ComputeSummary calculates scenario counts from the Scenarios slice
func (s *SuiteResult) ComputeSummary() {
	s.Total = len(s.Scenarios)
	s.Passed = 0
	s.Failed = 0
	s.Errored = 0
	s.Skipped = 0

	for _, sc := range s.Scenarios {
		switch sc.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusErrored:
			s.Errored++
		case StatusSkipped:
			s.Skipped++
		}
	}
}

// Success returns true if every scenario passed
func (s *SuiteResult) Success() bool {
	for _, sc := range s.Scenarios {
		if !sc.Status.IsSuccess() && sc.Status != StatusSkipped {
			return false
		}
	}
	return len(s.Scenarios) > 0
}
