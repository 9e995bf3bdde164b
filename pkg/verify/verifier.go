// Package verify walks expectation maps against the page and records every
// mismatch in the scenario's failure queue.
package verify

import (
	"fmt"

	"github.com/devicelab-dev/uicheck/pkg/compare"
	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/element"
	"github.com/devicelab-dev/uicheck/pkg/logger"
	"github.com/devicelab-dev/uicheck/pkg/queue"
)

// DetailNotFound is the failure detail recorded for an absent element.
const DetailNotFound = "element not found"

// Verifier evaluates expectation maps for one scenario.
type Verifier struct {
	driver core.Driver
	queue  *queue.Queue
	engine *compare.Engine
	checks int
}

// NewVerifier creates a verifier writing mismatches to q.
func NewVerifier(d core.Driver, q *queue.Queue, engine *compare.Engine) *Verifier {
	if engine == nil {
		engine = compare.NewEngine(nil)
	}
	return &Verifier{driver: d, queue: q, engine: engine}
}

// Checks returns how many element/property pairs were evaluated so far.
func (v *Verifier) Checks() int {
	return v.checks
}

// Verify validates exp, then evaluates every check in order. Mismatches and
// absent elements are queued; invalid specs, bounds and driver faults are
// returned and stop the walk.
func (v *Verifier) Verify(exp *Expectations) error {
	if err := v.prepare(exp); err != nil {
		return err
	}
	return v.walk(exp, exp.Label)
}

// VerifyIn is Verify with every lookup scoped inside frame.
func (v *Verifier) VerifyIn(frame string, exp *Expectations) error {
	if err := v.prepare(exp); err != nil {
		return err
	}
	return v.scoped(frame, func() error {
		return v.walk(exp, exp.Label)
	})
}

// prepare rejects the whole map before anything is evaluated: the map must
// be valid and every spec must be evaluable by this verifier's engine.
func (v *Verifier) prepare(exp *Expectations) error {
	if err := exp.Validate(); err != nil {
		return err
	}
	return v.ready(exp)
}

func (v *Verifier) ready(exp *Expectations) error {
	for _, entry := range exp.entries {
		if entry.IsScope() {
			if err := v.ready(entry.Scope); err != nil {
				return err
			}
			continue
		}
		for _, c := range entry.Checks {
			if err := v.engine.Ready(c.Spec); err != nil {
				return fmt.Errorf("%s %s: %w", entry.Element.Ref().Name(), c.Property, err)
			}
		}
	}
	return nil
}

func (v *Verifier) walk(exp *Expectations, step string) error {
	for _, entry := range exp.entries {
		if entry.IsScope() {
			label := step
			if entry.Scope.Label != "" {
				label = entry.Scope.Label
			}
			err := v.scoped(entry.Frame, func() error {
				return v.walk(entry.Scope, label)
			})
			if err != nil {
				return err
			}
			continue
		}
		for _, c := range entry.Checks {
			if err := v.check(entry, c, step); err != nil {
				return err
			}
		}
	}
	return nil
}

// scoped runs fn inside frame and always leaves it.
func (v *Verifier) scoped(frame string, fn func() error) (err error) {
	if err := v.driver.EnterFrame(frame); err != nil {
		return fmt.Errorf("enter frame %q: %w", frame, err)
	}
	logger.Debug("verify: entered frame %s", frame)
	defer func() {
		if exitErr := v.driver.ExitFrame(); exitErr != nil && err == nil {
			err = fmt.Errorf("exit frame %q: %w", frame, exitErr)
		}
		logger.Debug("verify: left frame %s", frame)
	}()
	return fn()
}

func (v *Verifier) check(entry Entry, c Check, step string) error {
	v.checks++
	ref := entry.Element.Ref()
	target := ref.Describe(entry.At)

	actual, err := read(v.driver, entry.Element, entry.At, c.Property)
	if element.IsNotFound(err) {
		if c.Property.absenceIsValue() {
			actual, err = false, nil
		} else {
			logger.Info("verify: %s %s: %s", target, c.Property, DetailNotFound)
			v.queue.Enqueue(core.Failure{
				Element:  target,
				Property: string(c.Property),
				Expected: c.Spec.Describe(),
				Actual:   compare.Format(""),
				Step:     step,
				Detail:   DetailNotFound,
			})
			return nil
		}
	}
	if err != nil {
		return err
	}

	res, err := v.engine.Evaluate(actual, c.Spec)
	if err != nil {
		return err
	}
	if res.Matched {
		logger.Debug("verify: %s %s: %s", target, c.Property, res.Diagnostic())
		return nil
	}
	logger.Info("verify: %s %s mismatch: %s", target, c.Property, res.Diagnostic())
	v.queue.Enqueue(core.Failure{
		Element:  target,
		Property: string(c.Property),
		Expected: res.Expected,
		Actual:   res.Actual,
		Step:     step,
		Detail:   res.Reason,
	})
	return nil
}
