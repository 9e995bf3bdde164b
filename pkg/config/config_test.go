package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/logger"
)

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
flows:
  - checks
  - /abs/smoke.yaml
includeTags:
  - smoke
excludeTags:
  - wip
env:
  USER: test
  PASS: secret
locale: fr
locales: locales
driver: browser
browser: firefox
headless: false
timeout: 3s
parallel: 4
stopOnFail: true
output: out
artifacts:
  captureOnSuccess: true
reports:
  html: true
  allure: true
log:
  level: debug
  rotation:
    maxSizeMB: 1
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Flows) != 2 || cfg.Flows[0] != filepath.Join(dir, "checks") || cfg.Flows[1] != "/abs/smoke.yaml" {
		t.Errorf("flows = %v", cfg.Flows)
	}
	if len(cfg.IncludeTags) != 1 || cfg.IncludeTags[0] != "smoke" {
		t.Errorf("expected includeTags [smoke], got %v", cfg.IncludeTags)
	}
	if len(cfg.ExcludeTags) != 1 || cfg.ExcludeTags[0] != "wip" {
		t.Errorf("expected excludeTags [wip], got %v", cfg.ExcludeTags)
	}
	if cfg.Env["USER"] != "test" || cfg.Env["PASS"] != "secret" {
		t.Errorf("expected env {USER:test, PASS:secret}, got %v", cfg.Env)
	}
	if cfg.Locale != "fr" || cfg.LocalesDir != filepath.Join(dir, "locales") {
		t.Errorf("locale = %s in %s", cfg.Locale, cfg.LocalesDir)
	}
	if cfg.Driver != DriverBrowser || cfg.Browser != "firefox" || *cfg.Headless {
		t.Errorf("driver = %s/%s headless=%v", cfg.Driver, cfg.Browser, *cfg.Headless)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("timeout = %s", cfg.Timeout)
	}
	if cfg.Parallel != 4 || !cfg.StopOnFail {
		t.Errorf("parallel = %d stopOnFail = %v", cfg.Parallel, cfg.StopOnFail)
	}
	if cfg.Output != filepath.Join(dir, "out") {
		t.Errorf("output = %s", cfg.Output)
	}
	if cfg.Artifacts != (core.ArtifactConfig{CaptureOnSuccess: true}) {
		t.Errorf("artifacts = %+v", cfg.Artifacts)
	}
	if !cfg.Reports.HTML || !cfg.Reports.Allure {
		t.Errorf("reports = %+v", cfg.Reports)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Rotation.MaxSizeMB != 1 {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `flows: [invalid yaml`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(configPath)
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected invalid config error, got %v", err)
	}
}

func TestLoad_InvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"driver", "driver: appium"},
		{"timeout", "timeout: -1s"},
		{"log level", "log: {level: loud}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("expected invalid config error, got %v", err)
			}
		})
	}
}

func TestLoad_EmptyConfigGetsDefaults(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(configPath, []byte(``), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Flows) != 0 {
		t.Errorf("expected empty flows, got %v", cfg.Flows)
	}
	if cfg.Driver != DriverHTML || !*cfg.Headless || cfg.Parallel != 1 {
		t.Errorf("defaults = %s headless=%v parallel=%d", cfg.Driver, *cfg.Headless, cfg.Parallel)
	}
	if cfg.Output != filepath.Join(dir, "reports") {
		t.Errorf("output = %s", cfg.Output)
	}
	if !cfg.Artifacts.CaptureOnMismatch || !cfg.Artifacts.CaptureOnError || cfg.Artifacts.CaptureOnSuccess {
		t.Errorf("artifacts = %+v", cfg.Artifacts)
	}
	if cfg.Log.Rotation != logger.DefaultRotation() {
		t.Errorf("rotation = %+v", cfg.Log.Rotation)
	}
}

func TestLoadFromDir_ConfigYaml(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`locale: de`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Locale != "de" {
		t.Errorf("expected locale de, got %s", cfg.Locale)
	}
}

func TestLoadFromDir_ConfigYml(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(`locale: es`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Locale != "es" {
		t.Errorf("expected locale es, got %s", cfg.Locale)
	}
}

func TestLoadFromDir_NoConfig(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Locale != "" || len(cfg.Flows) != 0 {
		t.Errorf("expected empty selection, got %+v", cfg)
	}
	if cfg.Output != "reports" {
		t.Errorf("output = %s", cfg.Output)
	}
}

func TestLoadFromDir_PrefersYamlOverYml(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`locale: fr`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(`locale: en`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Locale != "fr" {
		t.Errorf("expected locale fr (from config.yaml), got %s", cfg.Locale)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want logger.Level
	}{
		{"debug", logger.LevelDebug},
		{"INFO", logger.LevelInfo},
		{"", logger.LevelInfo},
		{"warning", logger.LevelWarn},
		{"error", logger.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.name, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLogFile(t *testing.T) {
	ResetHome()
	t.Setenv("UICHECK_HOME", "/test/home")

	cfg := Default()
	if got := cfg.LogFile(); got != filepath.Join("/test/home", "logs", "uicheck.log") {
		t.Errorf("LogFile() = %q", got)
	}
	cfg.Log.File = "/var/log/uicheck.log"
	if got := cfg.LogFile(); got != "/var/log/uicheck.log" {
		t.Errorf("LogFile() = %q", got)
	}
}
