package core

import "testing"

func TestScenarioStatus_String(t *testing.T) {
	tests := []struct {
		status   ScenarioStatus
		expected string
	}{
		{StatusPending, "pending"},
		{StatusRunning, "running"},
		{StatusPassed, "passed"},
		{StatusFailed, "failed"},
		{StatusErrored, "errored"},
		{StatusSkipped, "skipped"},
		{ScenarioStatus(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("ScenarioStatus(%d).String() = %q, want %q", tt.status, got, tt.expected)
		}
	}
}

func TestScenarioStatus_IsTerminal(t *testing.T) {
	terminalStatuses := []ScenarioStatus{StatusPassed, StatusFailed, StatusErrored, StatusSkipped}
	nonTerminalStatuses := []ScenarioStatus{StatusPending, StatusRunning}

	for _, s := range terminalStatuses {
		if !s.IsTerminal() {
			t.Errorf("ScenarioStatus(%s).IsTerminal() = false, want true", s)
		}
	}

	for _, s := range nonTerminalStatuses {
		if s.IsTerminal() {
			t.Errorf("ScenarioStatus(%s).IsTerminal() = true, want false", s)
		}
	}
}

func TestScenarioStatus_IsSuccess(t *testing.T) {
	failureStatuses := []ScenarioStatus{StatusPending, StatusRunning, StatusFailed, StatusErrored, StatusSkipped}

	if !StatusPassed.IsSuccess() {
		t.Error("StatusPassed.IsSuccess() = false, want true")
	}
	for _, s := range failureStatuses {
		if s.IsSuccess() {
			t.Errorf("ScenarioStatus(%s).IsSuccess() = true, want false", s)
		}
	}
}

func TestErrorCategory_String(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		expected string
	}{
		{ErrCategoryNone, "none"},
		{ErrCategoryResolution, "resolution"},
		{ErrCategoryBounds, "bounds"},
		{ErrCategoryAssertion, "assertion"},
		{ErrCategorySpec, "spec"},
		{ErrCategoryDriver, "driver"},
		{ErrCategoryConfig, "config"},
		{ErrCategoryVerification, "verification"},
		{ErrorCategory(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.category.String(); got != tt.expected {
			t.Errorf("ErrorCategory(%d).String() = %q, want %q", tt.category, got, tt.expected)
		}
	}
}

func TestSelectBy_String(t *testing.T) {
	tests := []struct {
		by       SelectBy
		expected string
	}{
		{SelectByText, "text"},
		{SelectByIndex, "index"},
		{SelectByValue, "value"},
		{SelectBy(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.by.String(); got != tt.expected {
			t.Errorf("SelectBy(%d).String() = %q, want %q", tt.by, got, tt.expected)
		}
	}
}
