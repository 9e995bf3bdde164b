package scenario

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/flow"
)

// Worker is one driver source that pulls check files from the shared queue.
type Worker struct {
	ID       int
	Provider Provider
	Cleanup  func()
}

// workItem represents a check file and its index in the original list.
type workItem struct {
	flow  *flow.Flow
	index int
}

// ParallelRunner verifies scenarios concurrently across several workers.
type ParallelRunner struct {
	workers []Worker
	config  RunnerConfig
}

// NewParallelRunner creates a parallel runner with multiple workers.
func NewParallelRunner(workers []Worker, cfg RunnerConfig) *ParallelRunner {
	return &ParallelRunner{
		workers: workers,
		config:  cfg,
	}
}

// Run verifies flows using a work queue pattern. All workers pull from the
// same queue until it drains; every scenario keeps its own session.
func (pr *ParallelRunner) Run(ctx context.Context, flows []*flow.Flow) (*core.SuiteResult, error) {
	if len(pr.workers) == 0 {
		return nil, fmt.Errorf("no workers available")
	}

	run, err := startRun(&pr.config, flows)
	if err != nil {
		return nil, err
	}
	defer run.index.Close()

	workQueue := make(chan workItem, len(flows))
	for i, f := range flows {
		workQueue <- workItem{flow: f, index: i}
	}
	close(workQueue)

	results := make([]core.ScenarioResult, len(flows))
	var wg sync.WaitGroup

	for i := range pr.workers {
		wg.Add(1)
		go func(w Worker) {
			defer wg.Done()
			if w.Cleanup != nil {
				defer w.Cleanup()
			}

			runner := &Runner{config: pr.config, provider: w.Provider}
			for item := range workQueue {
				// Each index is written by exactly one worker
				if ctx.Err() != nil {
					results[item.index] = run.skip(item.index, item.flow, "run stopped")
					continue
				}
				results[item.index] = runner.executeScenario(ctx, item.flow, run, item.index)
			}
		}(pr.workers[i])
	}

	wg.Wait()

	// Wall clock, not the sum of scenario durations
	return run.finish(results, time.Since(run.start)), nil
}

// Workers builds n workers over the same provider.
func Workers(n int, p Provider) []Worker {
	workers := make([]Worker, n)
	for i := range workers {
		workers[i] = Worker{ID: i + 1, Provider: p}
	}
	return workers
}

