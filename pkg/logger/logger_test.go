package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWriter_Levels(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	defer Close()
	defer SetLevel(LevelDebug)

	SetLevel(LevelInfo)
	Debug("hidden %d", 1)
	Info("shown %d", 2)
	Warn("careful")
	Error("broken")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged below level: %q", out)
	}
	for _, want := range []string{"[INFO] shown 2", "[WARN] careful", "[ERROR] broken"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestInit_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "uicheck.log")
	if err := Init(path, DefaultRotation()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Info("scenario %s started", "login")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "[INFO] scenario login started") {
		t.Errorf("log file = %q, want info line", data)
	}
}

func TestGetWriter_Uninitialized(t *testing.T) {
	Close()
	if GetWriter() != io.Discard {
		t.Error("GetWriter() without Init should be io.Discard")
	}
}
