// Package report provides JSON-based verification reporting with real-time
// updates.
//
// Architecture:
//   - report.json: Main index file (small, frequently updated, mutex-protected)
//   - scenarios/<id>.json: Per-scenario detail files (no lock needed)
//   - assets/<id>/: Per-scenario captures (screenshots, markers)
//
// The index file is the single source of truth for status. Consumers poll
// report.json and only fetch changed scenario details.
package report

import (
	"errors"
	"time"

	"github.com/devicelab-dev/uicheck/pkg/core"
)

// Version is the report schema version.
const Version = "1.0.0"

// Status represents the execution status.
type Status string

// Status values.
const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusErrored Status = "errored"
	StatusSkipped Status = "skipped"
)

// IsTerminal returns true if the status is a final state.
func (s Status) IsTerminal() bool {
	return s == StatusPassed || s == StatusFailed || s == StatusErrored || s == StatusSkipped
}

// StatusOf converts a scenario status.
func StatusOf(s core.ScenarioStatus) Status {
	switch s {
	case core.StatusRunning:
		return StatusRunning
	case core.StatusPassed:
		return StatusPassed
	case core.StatusFailed:
		return StatusFailed
	case core.StatusErrored:
		return StatusErrored
	case core.StatusSkipped:
		return StatusSkipped
	default:
		return StatusPending
	}
}

// ============================================================================
// INDEX (report.json)
// ============================================================================

// Index is the main report file that binds everything together.
type Index struct {
	Version     string          `json:"version"`
	RunID       string          `json:"runId"`
	UpdateSeq   uint64          `json:"updateSeq"`
	Status      Status          `json:"status"`
	StartTime   time.Time       `json:"startTime"`
	EndTime     *time.Time      `json:"endTime,omitempty"`
	LastUpdated time.Time       `json:"lastUpdated"`
	Runner      RunnerInfo      `json:"uicheck"`
	Summary     Summary         `json:"summary"`
	Scenarios   []ScenarioEntry `json:"scenarios"`
}

// RunnerInfo describes the tool and the environment the run used.
type RunnerInfo struct {
	Version string `json:"version"`
	Driver  string `json:"driver"`            // htmldoc, browser
	Browser string `json:"browser,omitempty"` // chromium, firefox, webkit
	Locale  string `json:"locale,omitempty"`
}

// Summary contains aggregated counts.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
	Skipped int `json:"skipped"`
	Running int `json:"running"`
	Pending int `json:"pending"`
}

// ScenarioEntry is the index entry for a scenario (minimal info).
type ScenarioEntry struct {
	Index       int          `json:"index"`      // Original position
	ID          string       `json:"id"`         // Unique scenario ID
	Name        string       `json:"name"`       // Display name
	SourceFile  string       `json:"sourceFile"` // Path to the check file
	DataFile    string       `json:"dataFile"`   // Path to the scenario detail JSON
	AssetsDir   string       `json:"assetsDir"`  // Path to assets directory
	Status      Status       `json:"status"`
	UpdateSeq   uint64       `json:"updateSeq"`
	StartTime   *time.Time   `json:"startTime,omitempty"`
	EndTime     *time.Time   `json:"endTime,omitempty"`
	Duration    *int64       `json:"duration,omitempty"` // milliseconds
	LastUpdated *time.Time   `json:"lastUpdated,omitempty"`
	Blocks      BlockSummary `json:"blocks"`
	Failures    int          `json:"failures"`
	Error       *string      `json:"error,omitempty"`
}

// BlockSummary contains check block counts for a scenario.
type BlockSummary struct {
	Total   int  `json:"total"`
	Passed  int  `json:"passed"`
	Failed  int  `json:"failed"`
	Errored int  `json:"errored"`
	Skipped int  `json:"skipped"`
	Running int  `json:"running"`
	Pending int  `json:"pending"`
	Current *int `json:"current,omitempty"` // Currently running block index
}

// ============================================================================
// SCENARIO DETAIL (scenarios/<id>.json)
// ============================================================================

// ScenarioDetail contains the full outcome of one scenario.
type ScenarioDetail struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	SourceFile  string            `json:"sourceFile"`
	Tags        []string          `json:"tags,omitempty"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     *time.Time        `json:"endTime,omitempty"`
	Duration    *int64            `json:"duration,omitempty"` // milliseconds
	Checks      int               `json:"checks"`
	Blocks      []Block           `json:"blocks"`
	Failures    []core.Failure    `json:"failures"` // Enqueue order
	Attachments []core.Attachment `json:"attachments,omitempty"`
	Error       *Error            `json:"error,omitempty"`
}

// Block represents one check block of a scenario.
type Block struct {
	ID        string     `json:"id"`
	Index     int        `json:"index"`
	Label     string     `json:"label"`
	Frame     string     `json:"frame,omitempty"`
	Actions   []string   `json:"actions,omitempty"`
	Status    Status     `json:"status"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Duration  *int64     `json:"duration,omitempty"` // milliseconds
	Checks    int        `json:"checks"`
	Failures  int        `json:"failures"`
	Error     *Error     `json:"error,omitempty"`
}

// Error contains error details.
type Error struct {
	Type    string `json:"type"` // resolution, bounds, spec, driver, config, verification
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// NewError describes err for the report.
func NewError(err error) *Error {
	if err == nil {
		return nil
	}
	e := &Error{Type: "unknown", Message: err.Error()}
	if c := core.CategoryOf(err); c != core.ErrCategoryNone {
		e.Type = c.String()
	}
	var ee *core.ExecutionError
	if errors.As(err, &ee) {
		e.Code = ee.Code
	}
	return e
}

// ============================================================================
// UPDATE TYPES
// ============================================================================

// ScenarioUpdate contains the fields to update in index for a scenario.
type ScenarioUpdate struct {
	Status    Status
	StartTime *time.Time
	EndTime   *time.Time
	Duration  *int64
	Blocks    BlockSummary
	Failures  int
	Error     *string
}
