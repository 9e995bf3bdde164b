// Package scenario owns the lifecycle of a verification scenario: it
// provisions a driver, runs check blocks against it and collects the
// outcome for the report.
package scenario

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/devicelab-dev/uicheck/pkg/compare"
	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/element"
	"github.com/devicelab-dev/uicheck/pkg/flow"
	"github.com/devicelab-dev/uicheck/pkg/logger"
	"github.com/devicelab-dev/uicheck/pkg/queue"
	"github.com/devicelab-dev/uicheck/pkg/verify"
)

// NoScreenshot is the marker note recorded when the driver cannot render.
const NoScreenshot = "driver cannot capture screenshots"

// Session is the state of one scenario: its driver, failure queue,
// comparison engine and translator. It is used from a single goroutine.
type Session struct {
	id         string
	driver     core.Driver
	queue      *queue.Queue
	translator compare.Translator
	engine     *compare.Engine
	verifier   *verify.Verifier
}

// NewSession creates a session over d. tr may be nil when no check uses
// translate; lang drives the case transforms of translated strings.
func NewSession(d core.Driver, tr compare.Translator, lang language.Tag) *Session {
	q := queue.New()
	engine := compare.NewEngine(tr, compare.WithLanguage(lang))
	return &Session{
		id:         uuid.NewString(),
		driver:     d,
		queue:      q,
		translator: tr,
		engine:     engine,
		verifier:   verify.NewVerifier(d, q, engine),
	}
}

// ID is the session's UUID.
func (s *Session) ID() string                     { return s.id }
func (s *Session) Driver() core.Driver            { return s.driver }
func (s *Session) Queue() *queue.Queue            { return s.queue }
func (s *Session) Translator() compare.Translator { return s.translator }

// Checks returns how many element/property pairs were evaluated.
func (s *Session) Checks() int {
	return s.verifier.Checks()
}

// Start resets the failure queue at the scenario boundary.
func (s *Session) Start() {
	s.queue.Reset()
	logger.Info("scenario %s started", s.id)
}

// End flushes the queue: nil when every check matched, otherwise the
// *queue.AggregatedFailure listing each mismatch.
func (s *Session) End() error {
	err := s.queue.Flush()
	logger.Info("scenario %s ended with %d failure(s)", s.id, s.queue.Len())
	return err
}

// Screenshot captures the page into the queue. A driver that cannot render
// leaves a marker attachment instead; captures never fail the scenario.
func (s *Session) Screenshot(label string) {
	data, err := s.driver.Screenshot()
	switch {
	case err == nil:
		s.queue.Capture(core.NewScreenshotAttachment(label, data))
	case errors.Is(err, core.ErrUnsupported):
		s.queue.Capture(core.NewMarkerAttachment(label, NoScreenshot))
	default:
		logger.Warn("screenshot %q failed: %v", label, err)
		s.queue.Capture(core.NewMarkerAttachment(label, "screenshot failed: "+err.Error()))
	}
}

// Verify evaluates exp against the current page.
func (s *Session) Verify(exp *verify.Expectations) error {
	return s.verifier.Verify(exp)
}

// RunBlock performs the block's actions, then verifies its expectations.
// With a frame, both run inside it and the top-level scope is restored
// afterwards.
func (s *Session) RunBlock(b flow.Block) error {
	if err := s.inFrame(b.Frame, func() error { return s.perform(b.Actions) }); err != nil {
		return err
	}
	if b.Frame != "" {
		return s.verifier.VerifyIn(b.Frame, b.Expectations)
	}
	return s.verifier.Verify(b.Expectations)
}

func (s *Session) inFrame(frame string, fn func() error) (err error) {
	if frame == "" {
		return fn()
	}
	if err := s.driver.EnterFrame(frame); err != nil {
		return fmt.Errorf("enter frame %q: %w", frame, err)
	}
	defer func() {
		if exitErr := s.driver.ExitFrame(); exitErr != nil && err == nil {
			err = fmt.Errorf("exit frame %q: %w", frame, exitErr)
		}
	}()
	return fn()
}

func (s *Session) perform(actions []flow.BoundAction) error {
	for _, a := range actions {
		logger.Info("action: %s", a.Describe())
		if err := s.act(a); err != nil {
			return fmt.Errorf("%s: %w", a.Describe(), err)
		}
	}
	return nil
}

func (s *Session) act(a flow.BoundAction) error {
	d := s.driver
	switch a.Type {
	case flow.ActionScreenshot:
		s.Screenshot(a.Label)
		return nil
	case flow.ActionClick:
		if el, ok := a.Subject.(element.Clicker); ok {
			return el.Click(d, a.At)
		}
	case flow.ActionSet:
		if el, ok := a.Subject.(element.Setter); ok {
			return el.SetValue(d, a.At, a.Value)
		}
	case flow.ActionCheck, flow.ActionUncheck:
		if el, ok := a.Subject.(element.Checker); ok {
			return el.SetChecked(d, a.At, a.Type == flow.ActionCheck)
		}
	case flow.ActionChoose:
		if el, ok := a.Subject.(element.Chooser); ok {
			return el.ChooseAll(d, a.At, a.SelectBy, a.Keys)
		}
	}
	return core.ErrInvalidConfig.WithMessagef("cannot %s %s", a.Type, a.Element)
}
