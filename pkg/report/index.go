package report

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/devicelab-dev/uicheck/pkg/logger"
)

// IndexWriter provides thread-safe updates to the report index.
// Multiple scenario goroutines can update the index concurrently.
type IndexWriter struct {
	mu        sync.Mutex
	outputDir string
	path      string
	index     *Index

	// Debouncing for progress updates
	pending map[string]*ScenarioUpdate
	timer   *time.Timer
	closed  bool
}

// NewIndexWriter creates a new IndexWriter.
func NewIndexWriter(outputDir string, index *Index) *IndexWriter {
	return &IndexWriter{
		outputDir: outputDir,
		path:      filepath.Join(outputDir, "report.json"),
		index:     index,
		pending:   make(map[string]*ScenarioUpdate),
	}
}

// Start marks the run as started.
func (w *IndexWriter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	w.index.Status = StatusRunning
	w.index.StartTime = now
	w.index.LastUpdated = now
	w.index.UpdateSeq++

	w.flushLocked()
}

// UpdateScenario updates a scenario entry in the index.
// Terminal states flush immediately; progress updates are debounced.
func (w *IndexWriter) UpdateScenario(id string, update *ScenarioUpdate) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[id] = update

	if update.Status.IsTerminal() {
		w.flushLocked()
		return
	}

	if w.timer == nil && !w.closed {
		w.timer = time.AfterFunc(100*time.Millisecond, w.flush)
	}
}

// End marks the run as complete.
func (w *IndexWriter) End() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, update := range w.pending {
		w.applyUpdate(id, update)
	}
	w.pending = make(map[string]*ScenarioUpdate)

	now := time.Now()
	w.index.EndTime = &now
	w.index.LastUpdated = now
	w.index.Status = w.computeRunStatus()
	w.index.UpdateSeq++

	w.flushLocked()
}

// Close stops the debounce timer and flushes any pending updates.
func (w *IndexWriter) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	w.flushLocked()
}

// GetIndex returns the current index (for reading).
func (w *IndexWriter) GetIndex() *Index {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index
}

func (w *IndexWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushLocked()
}

// flushLocked applies pending updates and writes report.json.
func (w *IndexWriter) flushLocked() {
	for id, update := range w.pending {
		w.applyUpdate(id, update)
	}
	w.pending = make(map[string]*ScenarioUpdate)

	w.index.UpdateSeq++
	w.index.LastUpdated = time.Now()
	w.index.Summary = w.computeSummary()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}

	if err := atomicWriteJSON(w.path, w.index); err != nil {
		logger.Warn("write %s: %v", w.path, err)
	}
}

// applyUpdate applies a ScenarioUpdate to the index.
func (w *IndexWriter) applyUpdate(id string, update *ScenarioUpdate) {
	for i := range w.index.Scenarios {
		if w.index.Scenarios[i].ID != id {
			continue
		}
		s := &w.index.Scenarios[i]
		s.Status = update.Status
		if update.StartTime != nil {
			s.StartTime = update.StartTime
		}
		if update.EndTime != nil {
			s.EndTime = update.EndTime
		}
		if update.Duration != nil {
			s.Duration = update.Duration
		}
		s.Blocks = update.Blocks
		s.Failures = update.Failures
		if update.Error != nil {
			s.Error = update.Error
		}
		s.UpdateSeq++
		now := time.Now()
		s.LastUpdated = &now
		return
	}
}

// computeSummary calculates summary from scenario statuses.
func (w *IndexWriter) computeSummary() Summary {
	var s Summary
	for _, sc := range w.index.Scenarios {
		s.Total++
		switch sc.Status {
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
		case StatusPending:
			s.Pending++
		}
	}
	return s
}

// computeRunStatus determines overall run status from scenarios.
func (w *IndexWriter) computeRunStatus() Status {
	status := StatusPassed
	for _, sc := range w.index.Scenarios {
		switch {
		case !sc.Status.IsTerminal():
			return StatusRunning
		case sc.Status == StatusErrored:
			status = StatusErrored
		case sc.Status == StatusFailed && status != StatusErrored:
			status = StatusFailed
		}
	}
	return status
}
