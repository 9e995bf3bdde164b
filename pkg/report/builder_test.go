package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/flow"
)

const loginFile = `
name: Login
tags: [smoke]
elements:
  user: "//input[@id='user']"
checks:
  - label: landing
    expect:
      - element: user
        caption: Name
  - label: after submit
    do:
      - click: user
    expect:
      - element: user
        exists: true
`

func testFlows(t *testing.T) []*flow.Flow {
	t.Helper()
	login, err := flow.Parse([]byte(loginFile), "checks/login.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	bare, err := flow.Parse([]byte("elements:\n  a: //a\n"), "checks/bare.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return []*flow.Flow{login, bare}
}

func TestBuildSkeleton(t *testing.T) {
	index, details, err := BuildSkeleton(testFlows(t), BuilderConfig{
		RunID:         "run-1",
		RunnerVersion: "0.3.0",
		DriverName:    "htmldoc",
	})
	if err != nil {
		t.Fatalf("BuildSkeleton() error = %v", err)
	}

	if index.Status != StatusPending || index.RunID != "run-1" || index.Runner.Driver != "htmldoc" {
		t.Errorf("index = %+v", index)
	}
	if index.Summary.Total != 2 || index.Summary.Pending != 2 {
		t.Errorf("Summary = %+v", index.Summary)
	}

	entry := index.Scenarios[0]
	if entry.ID != "scenario-000" || entry.Name != "Login" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.DataFile != filepath.Join("scenarios", "scenario-000.json") {
		t.Errorf("DataFile = %q", entry.DataFile)
	}
	if entry.Blocks.Total != 2 || entry.Blocks.Pending != 2 {
		t.Errorf("Blocks = %+v", entry.Blocks)
	}
	if index.Scenarios[1].Name != "bare" {
		t.Errorf("second name = %q, want file name", index.Scenarios[1].Name)
	}

	if len(details[0].Blocks) != 2 || details[0].Blocks[1].Label != "after submit" {
		t.Fatalf("blocks = %+v", details[0].Blocks)
	}
	if got := details[0].Blocks[1].Actions; len(got) != 1 || got[0] != "click user" {
		t.Errorf("Actions = %v", got)
	}
	if details[0].Failures == nil {
		t.Error("Failures should be an empty list, not null")
	}
}

func TestBuildSkeleton_NilFlow(t *testing.T) {
	if _, _, err := BuildSkeleton([]*flow.Flow{nil}, BuilderConfig{}); err == nil {
		t.Error("expected error for nil check file")
	}
}

func TestWriteSkeletonAndRead(t *testing.T) {
	dir := t.TempDir()
	index, details, err := BuildSkeleton(testFlows(t), BuilderConfig{RunID: "run-2"})
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteSkeleton(dir, index, details); err != nil {
		t.Fatalf("WriteSkeleton() error = %v", err)
	}

	for _, p := range []string{"report.json", "scenarios/scenario-000.json", "scenarios/scenario-001.json", "assets"} {
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			t.Errorf("%s not written: %v", p, err)
		}
	}

	gotIndex, gotDetails, err := ReadReport(dir)
	if err != nil {
		t.Fatalf("ReadReport() error = %v", err)
	}
	if gotIndex.RunID != "run-2" || len(gotDetails) != 2 || gotDetails[0].Name != "Login" {
		t.Errorf("ReadReport() = %+v, %+v", gotIndex, gotDetails)
	}
}

func TestReadReport_Missing(t *testing.T) {
	if _, _, err := ReadReport(t.TempDir()); err == nil {
		t.Error("expected error when report.json is missing")
	}
}

func TestAtomicWriteJSON_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.json")
	if err := atomicWriteJSON(path, map[string]int{"a": 1}); err != nil {
		t.Fatalf("atomicWriteJSON() error = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "x.json" {
		t.Errorf("dir entries = %v", entries)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"a": 1`) {
		t.Errorf("content = %s", data)
	}
}

func TestNewError(t *testing.T) {
	if NewError(nil) != nil {
		t.Error("NewError(nil) should be nil")
	}
	e := NewError(core.ErrIndexOutOfRange.WithMessage("countries: row 5 exceeds 4 rows"))
	if e.Type != "bounds" || e.Code != "index_out_of_range" || e.Message != "countries: row 5 exceeds 4 rows" {
		t.Errorf("NewError() = %+v", e)
	}
	plain := NewError(os.ErrNotExist)
	if plain.Type != "unknown" || plain.Code != "" {
		t.Errorf("NewError(plain) = %+v", plain)
	}
}

func TestStatusOf(t *testing.T) {
	tests := map[core.ScenarioStatus]Status{
		core.StatusPending: StatusPending,
		core.StatusRunning: StatusRunning,
		core.StatusPassed:  StatusPassed,
		core.StatusFailed:  StatusFailed,
		core.StatusErrored: StatusErrored,
		core.StatusSkipped: StatusSkipped,
	}
	for in, want := range tests {
		if got := StatusOf(in); got != want {
			t.Errorf("StatusOf(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	ms := func(v int64) *int64 { return &v }
	tests := []struct {
		in   *int64
		want string
	}{
		{nil, "-"},
		{ms(250), "250ms"},
		{ms(1500), "1.5s"},
		{ms(int64(2*time.Minute/time.Millisecond) + 5000), "2m 5s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration() = %q, want %q", got, tt.want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"after login":   "after-login",
		"Step #2 (end)": "step-2-end",
		"":              "capture",
		"!!!":           "capture",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}
