package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devicelab-dev/uicheck/pkg/core"
)

// HTMLConfig contains configuration for HTML report generation.
type HTMLConfig struct {
	OutputPath  string // Path to write the HTML file
	EmbedAssets bool   // Embed screenshots as base64 (makes file larger but portable)
	Title       string // Report title (default: "UI Verification Report")
	ReportDir   string // Directory containing report.json (needed for asset paths)
}

// GenerateHTML generates an HTML report from the report directory.
func GenerateHTML(reportDir string, cfg HTMLConfig) error {
	index, details, err := ReadReport(reportDir)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	if cfg.Title == "" {
		cfg.Title = "UI Verification Report"
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = reportDir
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = filepath.Join(reportDir, "report.html")
	}

	html, err := renderHTML(buildHTMLData(index, details, cfg))
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	if err := os.WriteFile(cfg.OutputPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

// HTMLData contains all data needed for the HTML template.
type HTMLData struct {
	Title         string
	GeneratedAt   string
	Index         *Index
	Scenarios     []ScenarioHTMLData
	TotalDuration string
	PassRate      float64
}

// ScenarioHTMLData contains scenario data formatted for HTML.
type ScenarioHTMLData struct {
	ScenarioDetail
	Status      Status
	DurationStr string
	Blocks      []BlockHTMLData
	Captures    []CaptureHTMLData
}

// BlockHTMLData contains block data formatted for HTML.
type BlockHTMLData struct {
	Block
	DurationStr string
}

// CaptureHTMLData is one attachment ready to display.
type CaptureHTMLData struct {
	Label string
	Src   string // base64 data URI or relative path
	Note  string // Marker text when no image exists
}

func buildHTMLData(index *Index, details []ScenarioDetail, cfg HTMLConfig) HTMLData {
	scenarios := make([]ScenarioHTMLData, len(details))
	for i, d := range details {
		blocks := make([]BlockHTMLData, len(d.Blocks))
		for j, b := range d.Blocks {
			blocks[j] = BlockHTMLData{Block: b, DurationStr: formatDuration(b.Duration)}
		}

		var captures []CaptureHTMLData
		for _, a := range d.Attachments {
			c := CaptureHTMLData{Label: a.Label}
			switch {
			case a.ContentType == core.ContentTypePNG && cfg.EmbedAssets:
				c.Src = loadAsBase64(filepath.Join(cfg.ReportDir, a.Path))
			case a.ContentType == core.ContentTypePNG:
				c.Src = a.Path
			default:
				c.Note = readNote(filepath.Join(cfg.ReportDir, a.Path))
			}
			captures = append(captures, c)
		}

		status := StatusPending
		if i < len(index.Scenarios) {
			status = index.Scenarios[i].Status
		}
		scenarios[i] = ScenarioHTMLData{
			ScenarioDetail: d,
			Status:         status,
			DurationStr:    formatDuration(d.Duration),
			Blocks:         blocks,
			Captures:       captures,
		}
	}

	var passRate float64
	if index.Summary.Total > 0 {
		passRate = float64(index.Summary.Passed) / float64(index.Summary.Total) * 100
	}

	var totalMs int64
	if index.EndTime != nil {
		totalMs = index.EndTime.Sub(index.StartTime).Milliseconds()
	}

	return HTMLData{
		Title:         cfg.Title,
		GeneratedAt:   time.Now().Format("2006-01-02 15:04:05"),
		Index:         index,
		Scenarios:     scenarios,
		TotalDuration: formatDuration(&totalMs),
		PassRate:      passRate,
	}
}

func formatDuration(ms *int64) string {
	if ms == nil {
		return "-"
	}
	d := time.Duration(*ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", *ms)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

func loadAsBase64(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

func readNote(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func renderHTML(data HTMLData) (string, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"safeURL": func(s string) template.URL { return template.URL(s) },
		"inc":     func(i int) int { return i + 1 },
	}).Parse(htmlTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f9fafb;
            --text-secondary: rgb(75, 85, 99);
            --border-color: #e5e7eb;
            --passed: #22c55e;
            --failed: #ef4444;
            --errored: #a855f7;
            --skipped: #eab308;
            --pending: #6b7280;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg-primary);
            line-height: 1.5;
        }
        .header {
            background: var(--bg-secondary);
            border-bottom: 1px solid var(--border-color);
            padding: 16px 24px;
        }
        .header h1 { font-size: 16px; font-weight: 500; }
        .header .sub { font-size: 12px; color: var(--text-secondary); }
        .summary { display: flex; gap: 16px; margin-top: 12px; font-size: 13px; }
        main { padding: 16px 24px; }
        .scenario { border: 1px solid var(--border-color); border-radius: 6px; margin-bottom: 12px; }
        .scenario summary { padding: 10px 14px; cursor: pointer; display: flex; gap: 12px; align-items: center; }
        .scenario .body { padding: 0 14px 12px; font-size: 13px; }
        .dot { width: 10px; height: 10px; border-radius: 50%; display: inline-block; }
        .passed .dot, .dot.passed { background: var(--passed); }
        .failed .dot, .dot.failed { background: var(--failed); }
        .errored .dot, .dot.errored { background: var(--errored); }
        .skipped .dot, .dot.skipped { background: var(--skipped); }
        .pending .dot, .running .dot, .dot.pending, .dot.running { background: var(--pending); }
        .name { font-weight: 500; flex: 1; }
        .muted { color: var(--text-secondary); }
        table { border-collapse: collapse; width: 100%; margin-top: 8px; }
        th, td { text-align: left; padding: 4px 8px; border-bottom: 1px solid var(--border-color); vertical-align: top; }
        .error { color: var(--errored); margin-top: 8px; white-space: pre-wrap; }
        .captures img { max-width: 320px; border: 1px solid var(--border-color); margin: 8px 8px 0 0; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Title}}</h1>
        <div class="sub">{{.GeneratedAt}} &middot; run {{.Index.RunID}} &middot; {{.Index.Runner.Driver}}{{if .Index.Runner.Browser}} ({{.Index.Runner.Browser}}){{end}}{{if .Index.Runner.Locale}} &middot; locale {{.Index.Runner.Locale}}{{end}}</div>
        <div class="summary">
            <span><span class="dot passed"></span> {{.Index.Summary.Passed}} passed</span>
            <span><span class="dot failed"></span> {{.Index.Summary.Failed}} failed</span>
            <span><span class="dot errored"></span> {{.Index.Summary.Errored}} errored</span>
            {{if .Index.Summary.Skipped}}<span><span class="dot skipped"></span> {{.Index.Summary.Skipped}} skipped</span>{{end}}
            <span class="muted">{{printf "%.0f" .PassRate}}% pass rate &middot; {{.TotalDuration}}</span>
        </div>
    </div>
    <main>
        {{range .Scenarios}}
        <details class="scenario {{.Status}}"{{if ne .Status "passed"}} open{{end}}>
            <summary>
                <span class="dot"></span>
                <span class="name">{{.Name}}</span>
                <span class="muted">{{.Checks}} checks &middot; {{len .Failures}} failures &middot; {{.DurationStr}}</span>
            </summary>
            <div class="body">
                <div class="muted">{{.SourceFile}}</div>
                <table>
                    <tr><th>Block</th><th>Status</th><th>Checks</th><th>Failures</th><th>Duration</th></tr>
                    {{range .Blocks}}
                    <tr>
                        <td>{{.Label}}{{if .Frame}} <span class="muted">in {{.Frame}}</span>{{end}}</td>
                        <td><span class="dot {{.Status}}"></span> {{.Status}}</td>
                        <td>{{.Checks}}</td>
                        <td>{{.Failures}}</td>
                        <td>{{.DurationStr}}</td>
                    </tr>
                    {{end}}
                </table>
                {{if .Failures}}
                <table>
                    <tr><th>#</th><th>Step</th><th>Element</th><th>Property</th><th>Expected</th><th>Actual</th><th>Detail</th></tr>
                    {{range $i, $f := .Failures}}
                    <tr>
                        <td>{{inc $i}}</td>
                        <td>{{$f.Step}}</td>
                        <td>{{$f.Element}}</td>
                        <td>{{$f.Property}}</td>
                        <td>{{$f.Expected}}</td>
                        <td>{{$f.Actual}}</td>
                        <td class="muted">{{$f.Detail}}</td>
                    </tr>
                    {{end}}
                </table>
                {{end}}
                {{if .Error}}<div class="error">{{.Error.Type}}: {{.Error.Message}}</div>{{end}}
                {{if .Captures}}
                <div class="captures">
                    {{range .Captures}}
                    {{if .Src}}<img src="{{safeURL .Src}}" alt="{{.Label}}" title="{{.Label}}">{{else}}<div class="muted">{{.Label}}: {{.Note}}</div>{{end}}
                    {{end}}
                </div>
                {{end}}
            </div>
        </details>
        {{end}}
    </main>
</body>
</html>
`
