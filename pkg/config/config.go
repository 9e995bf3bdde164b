// Package config handles the workspace configuration of uicheck.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/logger"
)

// Driver names.
const (
	DriverHTML    = "htmldoc" // Parsed page snapshots
	DriverBrowser = "browser" // Live pages through Playwright
)

// Config represents the workspace configuration (config.yaml).
type Config struct {
	// Check file selection
	Flows       []string `yaml:"flows"`       // Files or directories to verify
	IncludeTags []string `yaml:"includeTags"` // Tags to include
	ExcludeTags []string `yaml:"excludeTags"` // Tags to exclude

	// Expressions and translations
	Env        map[string]string `yaml:"env"`     // Variables for ${...}
	Locale     string            `yaml:"locale"`  // Overrides each file's locale
	LocalesDir string            `yaml:"locales"` // Directory of <locale>.yaml catalogs

	// Driver settings
	Driver   string        `yaml:"driver"`   // htmldoc (default) or browser
	Browser  string        `yaml:"browser"`  // chromium, firefox, webkit
	Headless *bool         `yaml:"headless"` // Default: true
	Timeout  time.Duration `yaml:"timeout"`  // Element wait, e.g. 5s

	// Execution settings
	Parallel   int  `yaml:"parallel"`   // Concurrent scenarios
	StopOnFail bool `yaml:"stopOnFail"` // Skip the rest after a failure

	// Output
	Output    string              `yaml:"output"` // Report directory
	Artifacts core.ArtifactConfig `yaml:"artifacts"`
	Reports   Reports             `yaml:"reports"`
	Log       Log                 `yaml:"log"`
}

// Reports selects the optional report formats.
type Reports struct {
	HTML   bool `yaml:"html"`
	Allure bool `yaml:"allure"`
}

// Log configures the file logger.
type Log struct {
	File     string          `yaml:"file"`  // Default: <home>/logs/uicheck.log
	Level    string          `yaml:"level"` // debug, info, warn, error
	Rotation logger.Rotation `yaml:"rotation"`
}

// Default returns the configuration used when no config.yaml exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a file. Relative paths in it are resolved
// against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.ErrInvalidConfig.WithMessagef("%s: invalid yaml", path).WithCause(err)
	}
	cfg.applyDefaults()
	cfg.resolvePaths(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try config.yaml first
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try config.yml
	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return defaults
	return Default(), nil
}

func (c *Config) applyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverHTML
	}
	if c.Headless == nil {
		on := true
		c.Headless = &on
	}
	if c.Parallel <= 0 {
		c.Parallel = 1
	}
	if c.Output == "" {
		c.Output = "reports"
	}
	if c.Log.Rotation == (logger.Rotation{}) {
		c.Log.Rotation = logger.DefaultRotation()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Artifacts == (core.ArtifactConfig{}) {
		c.Artifacts = core.ArtifactConfig{CaptureOnMismatch: true, CaptureOnError: true}
	}
}

func (c *Config) resolvePaths(base string) {
	rel := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i, f := range c.Flows {
		c.Flows[i] = rel(f)
	}
	c.LocalesDir = rel(c.LocalesDir)
	c.Output = rel(c.Output)
	c.Log.File = rel(c.Log.File)
}

// Validate rejects settings no run can use.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverHTML, DriverBrowser:
	default:
		return core.ErrInvalidConfig.WithMessagef("unknown driver %q", c.Driver)
	}
	if c.Timeout < 0 {
		return core.ErrInvalidConfig.WithMessagef("timeout %s is negative", c.Timeout)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// LogFile returns the configured log path or the default under the home
// directory.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(GetLogsDir(), "uicheck.log")
}

// ParseLevel maps a level name to a logger level.
func ParseLevel(name string) (logger.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return logger.LevelDebug, nil
	case "info", "":
		return logger.LevelInfo, nil
	case "warn", "warning":
		return logger.LevelWarn, nil
	case "error":
		return logger.LevelError, nil
	default:
		return logger.LevelInfo, core.ErrInvalidConfig.WithMessagef("unknown log level %q", name)
	}
}
