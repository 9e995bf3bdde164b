package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/logger"
)

// ScenarioWriter writes updates for a single scenario.
// Each scenario goroutine has its own ScenarioWriter - no locking needed.
type ScenarioWriter struct {
	detail    *ScenarioDetail
	path      string
	assetsDir string
	index     *IndexWriter
}

// NewScenarioWriter creates a new ScenarioWriter for a scenario.
func NewScenarioWriter(detail *ScenarioDetail, outputDir string, index *IndexWriter) *ScenarioWriter {
	return &ScenarioWriter{
		detail:    detail,
		path:      filepath.Join(outputDir, "scenarios", detail.ID+".json"),
		assetsDir: filepath.Join(outputDir, "assets", detail.ID),
		index:     index,
	}
}

// Start marks the scenario as started.
func (w *ScenarioWriter) Start() {
	now := time.Now()
	w.detail.StartTime = now

	w.flush()
	w.index.UpdateScenario(w.detail.ID, &ScenarioUpdate{
		Status:    StatusRunning,
		StartTime: &now,
		Blocks:    w.blockSummary(),
	})
}

// BlockStart marks a check block as started.
func (w *ScenarioWriter) BlockStart(i int) {
	if i < 0 || i >= len(w.detail.Blocks) {
		return
	}

	now := time.Now()
	b := &w.detail.Blocks[i]
	b.Status = StatusRunning
	b.StartTime = &now

	w.flush()
	w.updateIndexProgress()
}

// BlockEnd marks a check block as complete. failures is the number of
// mismatches the block recorded; err is a raised fault.
func (w *ScenarioWriter) BlockEnd(i, checks, failures int, err error) {
	if i < 0 || i >= len(w.detail.Blocks) {
		return
	}

	now := time.Now()
	b := &w.detail.Blocks[i]
	b.EndTime = &now
	if b.StartTime != nil {
		d := now.Sub(*b.StartTime).Milliseconds()
		b.Duration = &d
	}
	b.Checks = checks
	b.Failures = failures
	switch {
	case err != nil:
		b.Status = StatusErrored
		b.Error = NewError(err)
	case failures > 0:
		b.Status = StatusFailed
	default:
		b.Status = StatusPassed
	}

	w.flush()
	w.updateIndexProgress()
}

// SkipRemainingBlocks marks all pending blocks as skipped.
// Called when a block raises and the rest of the scenario is abandoned.
func (w *ScenarioWriter) SkipRemainingBlocks(from int) {
	for i := from; i < len(w.detail.Blocks); i++ {
		if w.detail.Blocks[i].Status == StatusPending {
			w.detail.Blocks[i].Status = StatusSkipped
		}
	}
	w.flush()
}

// SaveAttachment writes the body of a capture under the scenario's assets
// directory and returns the attachment with its relative Path set.
func (w *ScenarioWriter) SaveAttachment(seq int, a core.Attachment) (core.Attachment, error) {
	if len(a.Body) == 0 {
		return a, nil
	}
	if err := ensureDir(w.assetsDir); err != nil {
		return a, err
	}

	ext := ".txt"
	if a.ContentType == core.ContentTypePNG {
		ext = ".png"
	}
	filename := fmt.Sprintf("%03d-%s-%s%s", seq, a.Name, slug(a.Label), ext)
	if err := os.WriteFile(filepath.Join(w.assetsDir, filename), a.Body, 0o644); err != nil {
		return a, err
	}

	a.Path = filepath.Join("assets", w.detail.ID, filename)
	return a, nil
}

// End records the scenario outcome and marks it complete.
func (w *ScenarioWriter) End(result core.ScenarioResult) {
	now := time.Now()
	w.detail.EndTime = &now
	duration := result.Duration.Milliseconds()
	if !w.detail.StartTime.IsZero() {
		duration = now.Sub(w.detail.StartTime).Milliseconds()
	}
	w.detail.Duration = &duration
	w.detail.Checks = result.Checks
	w.detail.Failures = append([]core.Failure{}, result.Failures...)

	w.detail.Attachments = nil
	for i, a := range result.Attachments {
		saved, err := w.SaveAttachment(i+1, a)
		if err != nil {
			logger.Warn("save %s for %s: %v", a.Name, w.detail.ID, err)
		}
		w.detail.Attachments = append(w.detail.Attachments, saved)
	}

	status := StatusOf(result.Status)
	var errMsg *string
	if result.Error != "" {
		msg := result.Error
		errMsg = &msg
		if status == StatusErrored {
			w.detail.Error = &Error{Type: result.Category.String(), Message: result.Error}
		}
	}

	w.flush()
	w.index.UpdateScenario(w.detail.ID, &ScenarioUpdate{
		Status:   status,
		EndTime:  &now,
		Duration: &duration,
		Blocks:   w.blockSummary(),
		Failures: len(result.Failures),
		Error:    errMsg,
	})
}

// Detail returns the current scenario detail (for reading).
func (w *ScenarioWriter) Detail() *ScenarioDetail {
	return w.detail
}

// flush writes the scenario detail to disk.
func (w *ScenarioWriter) flush() {
	if err := atomicWriteJSON(w.path, w.detail); err != nil {
		logger.Warn("write %s: %v", w.path, err)
	}
}

// updateIndexProgress updates the index with progress only.
func (w *ScenarioWriter) updateIndexProgress() {
	failures := 0
	for _, b := range w.detail.Blocks {
		failures += b.Failures
	}
	w.index.UpdateScenario(w.detail.ID, &ScenarioUpdate{
		Status:   StatusRunning,
		Blocks:   w.blockSummary(),
		Failures: failures,
	})
}

// blockSummary computes block counts.
func (w *ScenarioWriter) blockSummary() BlockSummary {
	var s BlockSummary
	s.Total = len(w.detail.Blocks)

	for i, b := range w.detail.Blocks {
		switch b.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusErrored:
			s.Errored++
		case StatusSkipped:
			s.Skipped++
		case StatusRunning:
			s.Running++
			idx := i
			s.Current = &idx
		case StatusPending:
			s.Pending++
		}
	}
	return s
}

// slug makes a label safe for a file name.
func slug(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			if s := b.String(); s != "" && !strings.HasSuffix(s, "-") {
				b.WriteByte('-')
			}
		}
	}
	if out := strings.Trim(b.String(), "-"); out != "" {
		return out
	}
	return "capture"
}
