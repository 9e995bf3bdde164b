package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/flow"
	"github.com/devicelab-dev/uicheck/pkg/logger"
	"github.com/devicelab-dev/uicheck/pkg/report"
)

// Provider opens a driver on the page a check file describes. Drivers that
// implement io.Closer are closed when the scenario ends.
type Provider interface {
	Open(ctx context.Context, f *flow.Flow) (core.Driver, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, f *flow.Flow) (core.Driver, error)

// Open implements Provider.
func (p ProviderFunc) Open(ctx context.Context, f *flow.Flow) (core.Driver, error) {
	return p(ctx, f)
}

// RunnerConfig configures the scenario runner.
type RunnerConfig struct {
	OutputDir  string              // Report output directory
	StopOnFail bool                // Skip remaining scenarios after the first failure
	Artifacts  core.ArtifactConfig // When to capture screenshots
	Locale     string              // Overrides the locale of every check file
	LocalesDir string              // Directory of <locale>.yaml translation catalogs
	Env        map[string]string   // Variables for ${...} expressions (-e flags)
	HTML       bool                // Write report.html when the run ends
	Allure     bool                // Write allure-results/ when the run ends

	// Run metadata
	RunID         string
	RunnerVersion string
	DriverName    string
	Browser       string

	// Live progress callbacks
	OnScenarioStart func(idx, total int, name, file string)
	OnBlockComplete func(idx int, label string, checks, failures int, err error)
	OnScenarioEnd   func(result core.ScenarioResult)
}

// Runner verifies scenarios one after another.
type Runner struct {
	config   RunnerConfig
	provider Provider
}

// New creates a new Runner.
func New(provider Provider, cfg RunnerConfig) *Runner {
	return &Runner{
		config:   cfg,
		provider: provider,
	}
}

// Run verifies every check file and writes the report.
func (r *Runner) Run(ctx context.Context, flows []*flow.Flow) (*core.SuiteResult, error) {
	run, err := startRun(&r.config, flows)
	if err != nil {
		return nil, err
	}
	defer run.index.Close()

	results := make([]core.ScenarioResult, len(flows))
	stopped := false
	for i, f := range flows {
		if ctx.Err() != nil || stopped {
			results[i] = run.skip(i, f, "run stopped")
			continue
		}
		results[i] = r.executeScenario(ctx, f, run, i)
		if r.config.StopOnFail && !results[i].Status.IsSuccess() {
			stopped = true
		}
	}

	return run.finish(results, time.Since(run.start)), nil
}

func (r *Runner) executeScenario(ctx context.Context, f *flow.Flow, run *suiteRun, i int) core.ScenarioResult {
	sr := &scenarioRun{
		ctx:      ctx,
		flow:     f,
		writer:   report.NewScenarioWriter(&run.details[i], r.config.OutputDir, run.index),
		provider: r.provider,
		config:   r.config,
		idx:      i,
		total:    len(run.details),
	}
	return sr.run()
}

// suiteRun is the report state shared by every scenario of one run.
type suiteRun struct {
	config  *RunnerConfig
	start   time.Time
	index   *report.IndexWriter
	details []report.ScenarioDetail
}

func startRun(cfg *RunnerConfig, flows []*flow.Flow) (*suiteRun, error) {
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}

	index, details, err := report.BuildSkeleton(flows, report.BuilderConfig{
		OutputDir:     cfg.OutputDir,
		RunID:         cfg.RunID,
		RunnerVersion: cfg.RunnerVersion,
		DriverName:    cfg.DriverName,
		Browser:       cfg.Browser,
		Locale:        cfg.Locale,
	})
	if err != nil {
		return nil, err
	}
	if err := report.WriteSkeleton(cfg.OutputDir, index, details); err != nil {
		return nil, fmt.Errorf("write report skeleton: %w", err)
	}

	w := report.NewIndexWriter(cfg.OutputDir, index)
	w.Start()
	logger.Info("run %s: %d scenario(s), report in %s", cfg.RunID, len(flows), cfg.OutputDir)
	return &suiteRun{config: cfg, start: time.Now(), index: w, details: details}, nil
}

// skip records a scenario that never started.
func (s *suiteRun) skip(i int, f *flow.Flow, reason string) core.ScenarioResult {
	result := core.ScenarioResult{
		ID:        s.details[i].ID,
		Name:      s.details[i].Name,
		FilePath:  f.SourcePath,
		Tags:      f.Config.Tags,
		Status:    core.StatusSkipped,
		StartTime: time.Now(),
		Error:     reason,
	}
	w := report.NewScenarioWriter(&s.details[i], s.config.OutputDir, s.index)
	w.SkipRemainingBlocks(0)
	w.End(result)
	return result
}

// finish closes the index and renders the optional report formats.
func (s *suiteRun) finish(results []core.ScenarioResult, wallClock time.Duration) *core.SuiteResult {
	s.index.End()

	if s.config.HTML {
		if err := report.GenerateHTML(s.config.OutputDir, report.HTMLConfig{}); err != nil {
			logger.Warn("html report: %v", err)
		}
	}
	if s.config.Allure {
		if err := report.GenerateAllure(s.config.OutputDir); err != nil {
			logger.Warn("allure report: %v", err)
		}
	}

	suite := &core.SuiteResult{
		Name:      "uicheck",
		RunID:     s.config.RunID,
		StartTime: s.start,
		Duration:  wallClock,
		Scenarios: results,
	}
	suite.ComputeSummary()
	logger.Info("run %s finished: %d passed, %d failed, %d errored, %d skipped",
		suite.RunID, suite.Passed, suite.Failed, suite.Errored, suite.Skipped)
	return suite
}
