package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/devicelab-dev/uicheck/pkg/core"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// printer renders live progress. Parallel workers share it.
type printer struct {
	mu sync.Mutex
	w  io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) scenarioStart(idx, total int, name, file string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\n  %s %s (%s)\n", cyan(fmt.Sprintf("[%d/%d]", idx+1, total)), bold(name), file)
	fmt.Fprintln(p.w, strings.Repeat("─", 60))
}

func (p *printer) blockComplete(idx int, label string, checks, failures int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case err != nil:
		fmt.Fprintf(p.w, "    %s %s\n", yellow("!"), label)
		fmt.Fprintf(p.w, "      %s %s\n", gray("╰─"), err)
	case failures > 0:
		fmt.Fprintf(p.w, "    %s %s %s\n", red("✗"), label, gray(fmt.Sprintf("(%d of %d checks failed)", failures, checks)))
	default:
		fmt.Fprintf(p.w, "    %s %s %s\n", green("✓"), label, gray(fmt.Sprintf("(%d checks)", checks)))
	}
}

func (p *printer) scenarioEnd(r core.ScenarioResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s %s\n", statusSymbol(r.Status), r.Name, gray(formatDuration(r.Duration)))
	for _, f := range r.Failures {
		fmt.Fprintf(p.w, "    %s %s\n", red("•"), f.Error())
	}
	if r.Status == core.StatusErrored {
		fmt.Fprintf(p.w, "    %s %s\n", yellow(r.Category.String()+":"), r.Error)
	}
}

func statusSymbol(s core.ScenarioStatus) string {
	switch s {
	case core.StatusPassed:
		return green("✓")
	case core.StatusFailed:
		return red("✗")
	case core.StatusErrored:
		return yellow("!")
	default:
		return cyan("-")
	}
}

// statusLabel pads before coloring so escape codes don't skew columns.
func statusLabel(s core.ScenarioStatus) string {
	switch s {
	case core.StatusPassed:
		return green(fmt.Sprintf("%-6s", "PASS"))
	case core.StatusFailed:
		return red(fmt.Sprintf("%-6s", "FAIL"))
	case core.StatusErrored:
		return yellow(fmt.Sprintf("%-6s", "ERROR"))
	default:
		return cyan(fmt.Sprintf("%-6s", "SKIP"))
	}
}

func (p *printer) summary(suite *core.SuiteResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	const tableWidth = 80
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, strings.Repeat("═", tableWidth))
	fmt.Fprintf(p.w, "  %-42s %-6s %7s %6s %10s\n", "Scenario", "Status", "Checks", "Fail", "Duration")
	fmt.Fprintln(p.w, strings.Repeat("─", tableWidth))

	checks, failures := 0, 0
	for _, r := range suite.Scenarios {
		name := r.Name
		if len(name) > 42 {
			name = name[:39] + "..."
		}
		fmt.Fprintf(p.w, "  %-42s %s %7d %6d %10s\n", name, statusLabel(r.Status), r.Checks, len(r.Failures), formatDuration(r.Duration))
		checks += r.Checks
		failures += len(r.Failures)
	}

	fmt.Fprintln(p.w, strings.Repeat("─", tableWidth))
	total := fmt.Sprintf("%-6s", fmt.Sprintf("%d/%d", suite.Passed, suite.Total))
	if suite.Success() {
		total = green(total)
	} else {
		total = red(total)
	}
	fmt.Fprintf(p.w, "  %s %s %7d %6d %10s\n", bold(fmt.Sprintf("%-42s", "TOTAL")), total, checks, failures, formatDuration(suite.Duration))
	fmt.Fprintln(p.w, strings.Repeat("═", tableWidth))

	var parts []string
	if suite.Failed > 0 {
		parts = append(parts, red(fmt.Sprintf("%d failed", suite.Failed)))
	}
	if suite.Errored > 0 {
		parts = append(parts, yellow(fmt.Sprintf("%d errored", suite.Errored)))
	}
	if suite.Skipped > 0 {
		parts = append(parts, cyan(fmt.Sprintf("%d skipped", suite.Skipped)))
	}
	if len(parts) > 0 {
		fmt.Fprintf(p.w, "  %s\n", strings.Join(parts, ", "))
	}
}

// formatDuration shows milliseconds below a second, seconds below a minute.
func formatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", mins, secs)
}
