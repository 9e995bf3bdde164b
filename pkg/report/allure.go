package report

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/uicheck/pkg/logger"
)

// Allure result schema types.

// AllureResult represents a single test result in Allure format.
type AllureResult struct {
	UUID          string              `json:"uuid"`
	HistoryID     string              `json:"historyId"`
	FullName      string              `json:"fullName"`
	Name          string              `json:"name"`
	Status        string              `json:"status"`
	Stage         string              `json:"stage"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
	Labels        []AllureLabel       `json:"labels"`
	StatusDetails AllureStatusDetails `json:"statusDetails"`
	Steps         []AllureStep        `json:"steps"`
	Attachments   []AllureAttachment  `json:"attachments"`
}

// AllureStep represents a step within a test result.
type AllureStep struct {
	Name          string              `json:"name"`
	Status        string              `json:"status"`
	Stage         string              `json:"stage"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
	StatusDetails AllureStatusDetails `json:"statusDetails"`
	Steps         []AllureStep        `json:"steps"`
	Attachments   []AllureAttachment  `json:"attachments"`
}

// AllureAttachment represents a file attachment.
type AllureAttachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// AllureLabel represents a label on a test result.
type AllureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AllureStatusDetails holds failure message and trace.
type AllureStatusDetails struct {
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`
}

// AllureCategory defines a failure category with regex matching.
type AllureCategory struct {
	Name            string   `json:"name"`
	MatchedStatuses []string `json:"matchedStatuses"`
	MessageRegex    string   `json:"messageRegex"`
}

// GenerateAllure generates Allure-compatible result files in
// <reportDir>/allure-results/.
func GenerateAllure(reportDir string) error {
	index, details, err := ReadReport(reportDir)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	allureDir := filepath.Join(reportDir, "allure-results")
	if err := os.MkdirAll(allureDir, 0o755); err != nil {
		return fmt.Errorf("create allure-results dir: %w", err)
	}

	for i, entry := range index.Scenarios {
		var detail *ScenarioDetail
		if i < len(details) {
			detail = &details[i]
		}

		result := buildAllureResult(&entry, detail)
		path := filepath.Join(allureDir, result.UUID+"-result.json")
		if err := writeJSONFile(path, result); err != nil {
			return fmt.Errorf("write allure result %s: %w", entry.ID, err)
		}
		if detail != nil {
			copyAllureAttachments(reportDir, allureDir, detail)
		}
	}

	if err := writeJSONFile(filepath.Join(allureDir, "categories.json"), allureCategories()); err != nil {
		return fmt.Errorf("write categories.json: %w", err)
	}
	return writeAllureEnvironment(allureDir, index)
}

// buildAllureResult builds an AllureResult from a scenario entry and its
// detail. Check blocks become steps; the failure list becomes the message.
func buildAllureResult(entry *ScenarioEntry, detail *ScenarioDetail) AllureResult {
	start, stop := millis(entry.StartTime, entry.EndTime, entry.Duration)

	labels := []AllureLabel{
		{Name: "suite", Value: entry.Name},
		{Name: "parentSuite", Value: filepath.Base(entry.SourceFile)},
		{Name: "framework", Value: "uicheck"},
	}

	result := AllureResult{
		UUID:      uuid.NewString(),
		HistoryID: fnv32aHash(entry.Name + ":" + entry.SourceFile),
		FullName:  entry.SourceFile + "#" + entry.Name,
		Name:      entry.Name,
		Status:    mapAllureStatus(entry.Status),
		Stage:     "finished",
		Start:     start,
		Stop:      stop,
		Steps:     []AllureStep{},
	}
	if entry.Error != nil {
		result.StatusDetails.Message = *entry.Error
	}

	if detail != nil {
		for _, tag := range detail.Tags {
			labels = append(labels, AllureLabel{Name: "tag", Value: tag})
		}
		for _, b := range detail.Blocks {
			result.Steps = append(result.Steps, buildAllureStep(b, detail))
		}
		for _, a := range detail.Attachments {
			if a.Path == "" {
				continue
			}
			result.Attachments = append(result.Attachments, AllureAttachment{
				Name:   a.Label,
				Source: allureSource(detail.ID, a.Path),
				Type:   a.ContentType,
			})
		}
	}
	result.Labels = labels
	return result
}

func buildAllureStep(b Block, detail *ScenarioDetail) AllureStep {
	start, stop := millis(b.StartTime, b.EndTime, b.Duration)
	step := AllureStep{
		Name:        b.Label,
		Status:      mapAllureStatus(b.Status),
		Stage:       "finished",
		Start:       start,
		Stop:        stop,
		Steps:       []AllureStep{},
		Attachments: []AllureAttachment{},
	}

	var lines []string
	for _, f := range detail.Failures {
		if f.Step == b.Label {
			lines = append(lines, f.Error())
		}
	}
	step.StatusDetails.Message = strings.Join(lines, "\n")
	if b.Error != nil {
		step.StatusDetails.Trace = b.Error.Message
	}
	return step
}

func millis(start, end *time.Time, duration *int64) (int64, int64) {
	var s, e int64
	if start != nil {
		s = start.UnixMilli()
	}
	if end != nil {
		e = end.UnixMilli()
	} else if start != nil && duration != nil {
		e = s + *duration
	}
	return s, e
}

// copyAllureAttachments copies capture files into allure-results/ flat,
// prefixed with the scenario ID.
func copyAllureAttachments(reportDir, allureDir string, detail *ScenarioDetail) {
	for _, a := range detail.Attachments {
		if a.Path == "" {
			continue
		}
		copyFile(filepath.Join(reportDir, a.Path), filepath.Join(allureDir, allureSource(detail.ID, a.Path)))
	}
}

func allureSource(id, path string) string {
	return id + "-" + filepath.Base(path)
}

// copyFile copies a single file from src to dst. Missing captures are
// skipped silently.
func copyFile(src, dst string) {
	in, err := os.Open(src)
	if err != nil {
		return
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		logger.Warn("failed to copy %s to %s: %v", src, dst, err)
	}
}

// mapAllureStatus maps report Status to Allure status string. Raised
// faults are "broken" in Allure terms.
func mapAllureStatus(s Status) string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusErrored:
		return "broken"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// fnv32aHash returns a hex-encoded FNV-32a hash of the input string.
func fnv32aHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}

func allureCategories() []AllureCategory {
	return []AllureCategory{
		{Name: "Element Not Found", MatchedStatuses: []string{"failed", "broken"}, MessageRegex: "(?s).*element not found.*"},
		{Name: "Value Mismatch", MatchedStatuses: []string{"failed"}, MessageRegex: "(?s).* vs .*"},
		{Name: "Index Out Of Range", MatchedStatuses: []string{"broken"}, MessageRegex: "(?s).*exceeds.*"},
		{Name: "Invalid Check File", MatchedStatuses: []string{"broken"}, MessageRegex: "(?s).*(unknown property|unknown operator|invalid).*"},
	}
}

// writeAllureEnvironment writes environment.properties with run metadata.
func writeAllureEnvironment(allureDir string, index *Index) error {
	var b strings.Builder
	b.WriteString("framework=uicheck\n")

	for _, kv := range [][2]string{
		{"run.id", index.RunID},
		{"uicheck.version", index.Runner.Version},
		{"uicheck.driver", index.Runner.Driver},
		{"uicheck.browser", index.Runner.Browser},
		{"uicheck.locale", index.Runner.Locale},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&b, "%s=%s\n", kv[0], kv[1])
		}
	}

	path := filepath.Join(allureDir, "environment.properties")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write environment.properties: %w", err)
	}
	return nil
}

func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
