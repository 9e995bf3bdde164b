package browser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/flow"
	"github.com/devicelab-dev/uicheck/pkg/logger"
)

// Supported browser engines.
const (
	Chromium = "chromium"
	Firefox  = "firefox"
	WebKit   = "webkit"
)

// Config configures the launched browser.
type Config struct {
	Browser  string        // chromium (default), firefox or webkit
	Headless bool          // Run without a window
	Timeout  time.Duration // Element wait and navigation timeout
}

// Launcher owns one Playwright process and browser. Every check file gets
// its own page.
type Launcher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	cfg     Config
}

// Launch starts Playwright and the configured browser.
func Launch(cfg Config) (*Launcher, error) {
	if cfg.Browser == "" {
		cfg.Browser = Chromium
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	pw, err := playwright.Run(&playwright.RunOptions{
		Stdout: logger.GetWriter(),
		Stderr: logger.GetWriter(),
	})
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	var bt playwright.BrowserType
	switch strings.ToLower(cfg.Browser) {
	case Chromium:
		bt = pw.Chromium
	case Firefox:
		bt = pw.Firefox
	case WebKit:
		bt = pw.WebKit
	default:
		pw.Stop()
		return nil, core.ErrInvalidConfig.WithMessagef("unknown browser %q", cfg.Browser)
	}

	b, err := bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch %s: %w", cfg.Browser, err)
	}
	logger.Info("browser: launched %s (headless=%v)", cfg.Browser, cfg.Headless)
	return &Launcher{pw: pw, browser: b, cfg: cfg}, nil
}

// Open implements the scenario provider: a new page navigated to the check
// file's url, or to its page snapshot as a file:// url.
func (l *Launcher) Open(ctx context.Context, f *flow.Flow) (core.Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := PageURL(f)
	if err != nil {
		return nil, err
	}

	page, err := l.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	d := New(page, l.cfg.Timeout)
	if _, err := page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(ms(l.cfg.Timeout)),
	}); err != nil {
		page.Close()
		return nil, fmt.Errorf("goto %s: %w", target, err)
	}
	logger.Info("browser: opened %s", target)
	return d, nil
}

// PageURL is the address a check file is verified against.
func PageURL(f *flow.Flow) (string, error) {
	if f.Config.URL != "" {
		return f.Config.URL, nil
	}
	if p := f.PagePath(); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", err
		}
		return "file://" + filepath.ToSlash(abs), nil
	}
	return "", core.ErrMissingRequired.WithMessagef("%s: needs a url or a page", f.SourcePath)
}

// Close shuts the browser and the Playwright process down.
func (l *Launcher) Close() error {
	berr := l.browser.Close()
	if err := l.pw.Stop(); err != nil {
		return err
	}
	return berr
}
