package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/flow"
)

// BuilderConfig contains configuration for building the report skeleton.
type BuilderConfig struct {
	OutputDir     string // Base output directory for reports
	RunID         string // Unique run identifier
	RunnerVersion string // uicheck version
	DriverName    string // htmldoc, browser
	Browser       string // Browser engine for the browser driver
	Locale        string // Locale override, when set
}

// BuildSkeleton creates the initial report structure from parsed check
// files. All scenarios and blocks are set to "pending" status.
// This should be called after validation, before execution starts.
func BuildSkeleton(flows []*flow.Flow, cfg BuilderConfig) (*Index, []ScenarioDetail, error) {
	now := time.Now()

	index := &Index{
		Version:     Version,
		RunID:       cfg.RunID,
		Status:      StatusPending,
		StartTime:   now,
		LastUpdated: now,
		Runner: RunnerInfo{
			Version: cfg.RunnerVersion,
			Driver:  cfg.DriverName,
			Browser: cfg.Browser,
			Locale:  cfg.Locale,
		},
		Summary: Summary{
			Total:   len(flows),
			Pending: len(flows),
		},
		Scenarios: make([]ScenarioEntry, len(flows)),
	}

	details := make([]ScenarioDetail, len(flows))

	for i, f := range flows {
		if f == nil {
			return nil, nil, fmt.Errorf("scenario %d: nil check file", i)
		}
		id := fmt.Sprintf("scenario-%03d", i)
		blocks := buildBlocks(f.Checks)

		index.Scenarios[i] = ScenarioEntry{
			Index:      i,
			ID:         id,
			Name:       f.DisplayName(),
			SourceFile: f.SourcePath,
			DataFile:   filepath.Join("scenarios", id+".json"),
			AssetsDir:  filepath.Join("assets", id),
			Status:     StatusPending,
			Blocks: BlockSummary{
				Total:   len(blocks),
				Pending: len(blocks),
			},
		}

		details[i] = ScenarioDetail{
			ID:         id,
			Name:       f.DisplayName(),
			SourceFile: f.SourcePath,
			Tags:       f.Config.Tags,
			Blocks:     blocks,
			Failures:   []core.Failure{},
		}
	}

	return index, details, nil
}

// buildBlocks creates Block entries from the check blocks of a file.
func buildBlocks(checks []flow.CheckBlock) []Block {
	blocks := make([]Block, len(checks))
	for i, cb := range checks {
		var actions []string
		for _, a := range cb.Actions {
			actions = append(actions, a.Describe())
		}
		blocks[i] = Block{
			ID:      fmt.Sprintf("block-%03d", i),
			Index:   i,
			Label:   cb.Label,
			Frame:   cb.Frame,
			Actions: actions,
			Status:  StatusPending,
		}
	}
	return blocks
}

// WriteSkeleton writes the initial skeleton to disk.
// Creates report.json and all scenario detail files with pending status.
func WriteSkeleton(outputDir string, index *Index, details []ScenarioDetail) error {
	if err := ensureDir(filepath.Join(outputDir, "scenarios")); err != nil {
		return fmt.Errorf("create scenarios dir: %w", err)
	}
	if err := ensureDir(filepath.Join(outputDir, "assets")); err != nil {
		return fmt.Errorf("create assets dir: %w", err)
	}

	for _, d := range details {
		path := filepath.Join(outputDir, "scenarios", d.ID+".json")
		if err := atomicWriteJSON(path, d); err != nil {
			return fmt.Errorf("write scenario %s: %w", d.ID, err)
		}
	}

	if err := atomicWriteJSON(filepath.Join(outputDir, "report.json"), index); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// ReadReport loads report.json and every scenario detail it references.
func ReadReport(reportDir string) (*Index, []ScenarioDetail, error) {
	var index Index
	if err := readJSON(filepath.Join(reportDir, "report.json"), &index); err != nil {
		return nil, nil, err
	}

	details := make([]ScenarioDetail, len(index.Scenarios))
	for i, entry := range index.Scenarios {
		if err := readJSON(filepath.Join(reportDir, entry.DataFile), &details[i]); err != nil {
			return nil, nil, err
		}
	}
	return &index, details, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// atomicWriteJSON writes v to a temp file in the target directory and
// renames it over path, so pollers never see a partial file.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
