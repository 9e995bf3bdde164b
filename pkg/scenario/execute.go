package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"

	"github.com/devicelab-dev/uicheck/pkg/compare"
	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/flow"
	"github.com/devicelab-dev/uicheck/pkg/i18n"
	"github.com/devicelab-dev/uicheck/pkg/logger"
	"github.com/devicelab-dev/uicheck/pkg/queue"
	"github.com/devicelab-dev/uicheck/pkg/report"
)

var errCancelled = errors.New("run cancelled")

// scenarioRun verifies a single check file.
type scenarioRun struct {
	ctx      context.Context
	flow     *flow.Flow
	writer   *report.ScenarioWriter
	provider Provider
	config   RunnerConfig
	idx      int // Current scenario index (0-based)
	total    int // Total number of scenarios
	result   core.ScenarioResult
}

func (sr *scenarioRun) run() core.ScenarioResult {
	detail := sr.writer.Detail()
	sr.result = core.ScenarioResult{
		ID:        detail.ID,
		Name:      detail.Name,
		FilePath:  sr.flow.SourcePath,
		Tags:      sr.flow.Config.Tags,
		Status:    core.StatusRunning,
		StartTime: time.Now(),
	}

	if sr.config.OnScenarioStart != nil {
		sr.config.OnScenarioStart(sr.idx, sr.total, detail.Name, sr.flow.SourcePath)
	}
	sr.writer.Start()

	err := sr.verify()
	if err != nil {
		sr.writer.SkipRemainingBlocks(0)
	}
	sr.settle(err)
	sr.result.Duration = time.Since(sr.result.StartTime)

	sr.writer.End(sr.result)
	if sr.config.OnScenarioEnd != nil {
		sr.config.OnScenarioEnd(sr.result)
	}
	return sr.result
}

// verify builds the check file, opens the page and runs every block. It
// returns nil, the aggregated failure of the scenario, or the fault that
// aborted it.
func (sr *scenarioRun) verify() error {
	locale := sr.locale()
	js := flow.NewEngine(sr.flow, sr.config.Env)
	js.SetLocale(locale)

	_, blocks, err := flow.Build(sr.flow, js)
	if err != nil {
		return err
	}

	tr, lang, err := sr.translator(locale)
	if err != nil {
		return err
	}

	d, err := sr.provider.Open(sr.ctx, sr.flow)
	if err != nil {
		return fmt.Errorf("provision driver: %w", err)
	}
	defer closeDriver(d)

	s := NewSession(d, tr, lang)
	s.Start()
	logger.Info("scenario %s: %s (session %s)", sr.result.ID, sr.result.Name, s.ID())

	for i, b := range blocks {
		if sr.ctx.Err() != nil {
			sr.collect(s)
			return errCancelled
		}

		checks, failures := s.Checks(), s.Queue().Len()
		sr.writer.BlockStart(i)
		blockErr := s.RunBlock(b)
		checks, failures = s.Checks()-checks, s.Queue().Len()-failures
		sr.writer.BlockEnd(i, checks, failures, blockErr)
		if sr.config.OnBlockComplete != nil {
			sr.config.OnBlockComplete(i, b.Label, checks, failures, blockErr)
		}

		if blockErr != nil {
			// Aborted: the queue is reported but not flushed
			if sr.config.Artifacts.ShouldCapture(core.StatusErrored) {
				s.Screenshot(b.Label)
			}
			sr.collect(s)
			return fmt.Errorf("%s: %w", b.Label, blockErr)
		}
	}

	status := core.StatusPassed
	if s.Queue().Len() > 0 {
		status = core.StatusFailed
	}
	if sr.config.Artifacts.ShouldCapture(status) {
		s.Screenshot("end of " + sr.result.Name)
	}
	sr.collect(s)
	return s.End()
}

// settle turns the outcome of verify into the result status.
func (sr *scenarioRun) settle(err error) {
	var agg *queue.AggregatedFailure
	switch {
	case err == nil:
	case errors.Is(err, errCancelled):
		sr.result.Status = core.StatusSkipped
		sr.result.Error = err.Error()
		return
	case errors.As(err, &agg):
		sr.result.Category = core.ErrCategoryVerification
		sr.result.Error = err.Error()
	default:
		sr.result.Category = core.CategoryOf(err)
		if sr.result.Category == core.ErrCategoryNone {
			sr.result.Category = core.ErrCategoryDriver
		}
		sr.result.Error = err.Error()
		logger.Error("scenario %s errored: %v", sr.result.ID, err)
	}
	sr.result.Status = sr.result.AggregateStatus()
}

func (sr *scenarioRun) collect(s *Session) {
	sr.result.Checks = s.Checks()
	sr.result.Failures = s.Queue().Failures()
	sr.result.Attachments = s.Queue().Captures()
}

// locale is the configured override, else the check file's own locale.
func (sr *scenarioRun) locale() string {
	if sr.config.Locale != "" {
		return sr.config.Locale
	}
	return sr.flow.Config.Locale
}

// translator loads the catalog for locale. Without a locales directory or
// a locale, translate checks have no translator and are invalid.
func (sr *scenarioRun) translator(locale string) (compare.Translator, language.Tag, error) {
	if sr.config.LocalesDir == "" || locale == "" {
		tag, _ := language.Parse(locale)
		return nil, tag, nil
	}
	catalog, err := i18n.Load(sr.config.LocalesDir, locale)
	if err != nil {
		return nil, language.Und, err
	}
	return catalog, catalog.Tag(), nil
}

func closeDriver(d core.Driver) {
	if c, ok := d.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("close driver: %v", err)
		}
	}
}
