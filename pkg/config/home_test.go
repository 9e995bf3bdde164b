package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetHome_EnvVar(t *testing.T) {
	ResetHome()
	t.Setenv("UICHECK_HOME", "/custom/path")

	got := GetHome()
	if got != "/custom/path" {
		t.Errorf("GetHome() = %q, want %q", got, "/custom/path")
	}
}

func TestGetHome_FallbackToCwd(t *testing.T) {
	ResetHome()
	t.Setenv("UICHECK_HOME", "")

	// Falls back to cwd unless the test binary sits in a bin/ directory
	if got := GetHome(); got == "" {
		t.Error("GetHome() returned empty string")
	}
}

func TestGetHome_Cached(t *testing.T) {
	ResetHome()
	t.Setenv("UICHECK_HOME", "/first")

	first := GetHome()

	t.Setenv("UICHECK_HOME", "/second")
	second := GetHome()

	if first != second {
		t.Errorf("GetHome() not cached: first=%q, second=%q", first, second)
	}
}

func TestGetLogsDir(t *testing.T) {
	ResetHome()
	t.Setenv("UICHECK_HOME", "/test/home")

	got := GetLogsDir()
	want := filepath.Join("/test/home", "logs")
	if got != want {
		t.Errorf("GetLogsDir() = %q, want %q", got, want)
	}
}

func TestResolveHome_EnvDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, "bin"), 0755); err != nil {
		t.Fatal(err)
	}

	// os.Executable cannot be mocked; the env var path covers resolution
	ResetHome()
	t.Setenv("UICHECK_HOME", tmpDir)

	if got := GetHome(); got != tmpDir {
		t.Errorf("GetHome() = %q, want %q", got, tmpDir)
	}
}
