package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uicheck/pkg/config"
	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/driver/browser"
	"github.com/devicelab-dev/uicheck/pkg/driver/htmldoc"
	"github.com/devicelab-dev/uicheck/pkg/flow"
	"github.com/devicelab-dev/uicheck/pkg/logger"
	"github.com/devicelab-dev/uicheck/pkg/scenario"
	"github.com/devicelab-dev/uicheck/pkg/validator"
)

var errVerificationFailed = errors.New("verification failed")

var verifyCommand = &cli.Command{
	Name:      "verify",
	Usage:     "Verify pages against check files",
	ArgsUsage: "<check-file-or-folder>...",
	Description: `Run one or more check files and write the report.

Reports are generated in the output directory:
  - Default: ./reports/<timestamp>/
  - With --output: <output>/<timestamp>/
  - With --output and --flatten: <output>/ (no timestamp subfolder)

Examples:
  uicheck verify checks/
  uicheck verify login.yaml checkout.yaml -e USER=test
  uicheck verify checks/ --include-tags smoke --html
  uicheck verify checks/ --locale de --locales locales/`,
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "env",
			Aliases: []string{"e"},
			Usage:   "Expression variables (KEY=VALUE)",
		},
		&cli.StringSliceFlag{
			Name:  "include-tags",
			Usage: "Only include check files with these tags",
		},
		&cli.StringSliceFlag{
			Name:  "exclude-tags",
			Usage: "Exclude check files with these tags",
		},
		&cli.StringFlag{
			Name:  "locale",
			Usage: "Locale for translate comparisons (overrides each file)",
		},
		&cli.StringFlag{
			Name:  "locales",
			Usage: "Directory of <locale>.yaml translation files",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "Output directory for reports (default: ./reports)",
		},
		&cli.BoolFlag{
			Name:  "flatten",
			Usage: "Don't create timestamp subfolder (requires --output)",
		},
		&cli.IntFlag{
			Name:  "parallel",
			Usage: "Verify N scenarios concurrently",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "How long the browser driver waits for elements",
		},
		&cli.BoolFlag{
			Name:  "stop-on-fail",
			Usage: "Skip the remaining scenarios after the first failure",
		},
		&cli.BoolFlag{
			Name:  "html",
			Usage: "Write report.html",
		},
		&cli.BoolFlag{
			Name:  "allure",
			Usage: "Write allure-results/",
		},
	},
	Action: runVerify,
}

// RunConfig holds everything a verify run needs, after merging the
// workspace config with flags.
type RunConfig struct {
	Paths       []string
	Env         map[string]string
	IncludeTags []string
	ExcludeTags []string
	Locale      string
	LocalesDir  string
	OutputDir   string
	LogFile     string
	LogLevel    logger.Level
	Rotation    logger.Rotation

	Driver   string
	Browser  string
	Headless bool
	Timeout  time.Duration

	Parallel   int
	StopOnFail bool
	Artifacts  core.ArtifactConfig
	HTML       bool
	Allure     bool
}

// loadWorkspace loads --config, or config.yaml in the working directory.
func loadWorkspace(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	return config.LoadFromDir(".")
}

func runVerify(c *cli.Context) error {
	ws, err := loadWorkspace(c)
	if err != nil {
		return err
	}
	cfg, err := buildRunConfig(c, ws)
	if err != nil {
		return err
	}
	return executeVerify(cfg)
}

// buildRunConfig merges flags over the workspace config. Flags win when set.
func buildRunConfig(c *cli.Context, ws *config.Config) (*RunConfig, error) {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		paths = ws.Flows
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one check file or folder is required")
	}

	env := make(map[string]string)
	for k, v := range ws.Env {
		env[k] = v
	}
	for k, v := range parseEnvVars(c.StringSlice("env")) {
		env[k] = v // CLI overrides workspace config
	}

	output := ws.Output
	if c.IsSet("output") {
		output = c.String("output")
	}
	outputDir, err := resolveOutputDir(output, c.Bool("flatten"))
	if err != nil {
		return nil, err
	}

	level, err := config.ParseLevel(ws.Log.Level)
	if err != nil {
		return nil, err
	}
	if c.Bool("verbose") {
		level = logger.LevelDebug
	}

	cfg := &RunConfig{
		Paths:       paths,
		Env:         env,
		IncludeTags: pick(c, "include-tags", ws.IncludeTags),
		ExcludeTags: pick(c, "exclude-tags", ws.ExcludeTags),
		Locale:      pickString(c, "locale", ws.Locale),
		LocalesDir:  pickString(c, "locales", ws.LocalesDir),
		OutputDir:   outputDir,
		LogFile:     pickString(c, "log-file", ws.Log.File),
		LogLevel:    level,
		Rotation:    ws.Log.Rotation,
		Driver:      pickString(c, "driver", ws.Driver),
		Browser:     pickString(c, "browser", ws.Browser),
		Headless:    *ws.Headless,
		Timeout:     ws.Timeout,
		Parallel:    ws.Parallel,
		StopOnFail:  ws.StopOnFail || c.Bool("stop-on-fail"),
		Artifacts:   ws.Artifacts,
		HTML:        ws.Reports.HTML || c.Bool("html"),
		Allure:      ws.Reports.Allure || c.Bool("allure"),
	}
	if c.IsSet("headless") {
		cfg.Headless = c.Bool("headless")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("parallel") {
		cfg.Parallel = c.Int("parallel")
	}
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.OutputDir, "uicheck.log")
	}
	switch cfg.Driver {
	case config.DriverHTML, config.DriverBrowser:
	default:
		return nil, core.ErrInvalidConfig.WithMessagef("unknown driver %q", cfg.Driver)
	}
	return cfg, nil
}

func pick(c *cli.Context, name string, fallback []string) []string {
	if c.IsSet(name) {
		return c.StringSlice(name)
	}
	return fallback
}

func pickString(c *cli.Context, name, fallback string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	return fallback
}

// resolveOutputDir determines the output directory based on flags.
// - No --output: ./reports/<timestamp>/
// - --output given: <output>/<timestamp>/
// - --output + --flatten: <output>/ (error if --output not given)
func resolveOutputDir(output string, flatten bool) (string, error) {
	if flatten && output == "" {
		return "", fmt.Errorf("--flatten requires --output to be specified")
	}

	baseDir := output
	if baseDir == "" {
		baseDir = "./reports"
	}

	if flatten {
		return filepath.Clean(baseDir), nil
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(baseDir, timestamp), nil
}

func executeVerify(cfg *RunConfig) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := logger.Init(cfg.LogFile, cfg.Rotation); err != nil {
		fmt.Fprintf(stdout, "Warning: Failed to initialize logger: %v\n", err)
	}
	defer logger.Close()
	logger.SetLevel(cfg.LogLevel)

	logger.Info("=== Verification started ===")
	logger.Info("Output directory: %s", cfg.OutputDir)
	logger.Info("Driver: %s", cfg.Driver)

	flows, err := validateAndParseFlows(cfg)
	if err != nil {
		return err
	}
	if len(flows) == 0 {
		fmt.Fprintln(stdout, "No check files matched.")
		return nil
	}

	provider, cleanup, err := createProvider(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newPrinter(stdout)
	runCfg := scenario.RunnerConfig{
		OutputDir:       cfg.OutputDir,
		StopOnFail:      cfg.StopOnFail,
		Artifacts:       cfg.Artifacts,
		Locale:          cfg.Locale,
		LocalesDir:      cfg.LocalesDir,
		Env:             cfg.Env,
		HTML:            cfg.HTML,
		Allure:          cfg.Allure,
		RunnerVersion:   Version,
		DriverName:      cfg.Driver,
		Browser:         cfg.Browser,
		OnScenarioStart: p.scenarioStart,
		OnBlockComplete: p.blockComplete,
		OnScenarioEnd:   p.scenarioEnd,
	}

	var suite *core.SuiteResult
	if cfg.Parallel > 1 {
		suite, err = scenario.NewParallelRunner(scenario.Workers(cfg.Parallel, provider), runCfg).Run(ctx, flows)
	} else {
		suite, err = scenario.New(provider, runCfg).Run(ctx, flows)
	}
	if err != nil {
		return err
	}

	p.summary(suite)
	fmt.Fprintf(stdout, "\nReport: %s\n", cfg.OutputDir)
	if !suite.Success() {
		return errVerificationFailed
	}
	return nil
}

// validateAndParseFlows validates every path; any invalid file aborts the
// run before a driver is created.
func validateAndParseFlows(cfg *RunConfig) ([]*flow.Flow, error) {
	opts := []validator.Option{validator.WithEnv(cfg.Env)}
	if cfg.Driver == config.DriverHTML {
		opts = append(opts, validator.RequirePage())
	}
	v := validator.New(cfg.IncludeTags, cfg.ExcludeTags, opts...)

	var flows []*flow.Flow
	var problems []string
	for _, path := range cfg.Paths {
		result := v.Validate(path)
		for _, err := range result.Errors {
			problems = append(problems, err.Error())
		}
		flows = append(flows, result.Flows...)
	}
	if len(problems) > 0 {
		for _, msg := range problems {
			logger.Error("validation: %s", msg)
		}
		return nil, fmt.Errorf("validation failed:\n  %s", strings.Join(problems, "\n  "))
	}
	return flows, nil
}

// createProvider returns the page source for the configured driver and a
// cleanup to run after the suite.
func createProvider(cfg *RunConfig) (scenario.Provider, func(), error) {
	switch cfg.Driver {
	case config.DriverBrowser:
		l, err := browser.Launch(browser.Config{
			Browser:  cfg.Browser,
			Headless: cfg.Headless,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return l, func() {
			if err := l.Close(); err != nil {
				logger.Warn("close browser: %v", err)
			}
		}, nil
	default:
		return snapshotProvider, func() {}, nil
	}
}

// snapshotProvider opens the page snapshot of a check file.
var snapshotProvider = scenario.ProviderFunc(func(ctx context.Context, f *flow.Flow) (core.Driver, error) {
	path := f.PagePath()
	if path == "" {
		return nil, core.ErrMissingRequired.WithMessagef("%s: the htmldoc driver needs a page", f.SourcePath)
	}
	d, err := htmldoc.Load(path)
	if err != nil {
		return nil, err
	}
	return d, nil
})

func parseEnvVars(envs []string) map[string]string {
	result := make(map[string]string)
	for _, e := range envs {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		}
	}
	return result
}
