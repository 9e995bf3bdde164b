// Package queue collects the verification failures of one scenario and
// raises them together.
package queue

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/devicelab-dev/uicheck/pkg/core"
)

// Queue is the failure aggregator of a single scenario. It is not safe for
// concurrent use; every scenario owns its own queue.
type Queue struct {
	failures []core.Failure
	captures []core.Attachment
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue records a mismatch.
func (q *Queue) Enqueue(f core.Failure) {
	q.failures = append(q.failures, f)
}

// Capture stores a diagnostic artifact. Captures never cause Flush to raise.
func (q *Queue) Capture(a core.Attachment) {
	q.captures = append(q.captures, a)
}

// Failures returns the recorded failures in enqueue order.
func (q *Queue) Failures() []core.Failure {
	out := make([]core.Failure, len(q.failures))
	copy(out, q.failures)
	return out
}

// Captures returns the stored artifacts in capture order.
func (q *Queue) Captures() []core.Attachment {
	out := make([]core.Attachment, len(q.captures))
	copy(out, q.captures)
	return out
}

// Len returns the number of recorded failures.
func (q *Queue) Len() int {
	return len(q.failures)
}

// Flush returns an *AggregatedFailure listing every recorded failure, or
// nil when nothing was recorded. It does not clear the queue.
func (q *Queue) Flush() error {
	if len(q.failures) == 0 {
		return nil
	}
	return newAggregatedFailure(q.Failures(), q.Captures())
}

// Reset empties the queue at a scenario boundary.
func (q *Queue) Reset() {
	q.failures = nil
	q.captures = nil
}

// AggregatedFailure is the single error surfaced for a failing scenario.
type AggregatedFailure struct {
	Failures []core.Failure
	Captures []core.Attachment

	merr *multierror.Error
}

func newAggregatedFailure(failures []core.Failure, captures []core.Attachment) *AggregatedFailure {
	var merr *multierror.Error
	for _, f := range failures {
		merr = multierror.Append(merr, f)
	}
	merr.ErrorFormat = reportFormat(len(captures))
	return &AggregatedFailure{Failures: failures, Captures: captures, merr: merr}
}

// Error renders the combined report.
func (e *AggregatedFailure) Error() string {
	return e.merr.Error()
}

// Unwrap exposes the verification sentinel and each recorded failure to
// errors.Is / errors.As.
func (e *AggregatedFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.merr.Errors)+1)
	errs = append(errs, core.ErrVerificationFailed)
	return append(errs, e.merr.Errors...)
}

func reportFormat(captures int) multierror.ErrorFormatFunc {
	return func(es []error) string {
		var b strings.Builder
		noun := "failures"
		if len(es) == 1 {
			noun = "failure"
		}
		fmt.Fprintf(&b, "%d UI verification %s:\n", len(es), noun)
		for i, err := range es {
			fmt.Fprintf(&b, "  %d) %s\n", i+1, err)
		}
		if captures > 0 {
			fmt.Fprintf(&b, "  (%d diagnostic capture(s) attached)\n", captures)
		}
		return b.String()
	}
}
