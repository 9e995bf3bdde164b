package scenario

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/driver/htmldoc"
	"github.com/devicelab-dev/uicheck/pkg/flow"
)

const loginPage = `<html><body>
<input id="user" value="">
<input id="agree" type="checkbox">
<select id="country"><option value="pe">Peru</option><option value="cl">Chile</option></select>
<h1 id="title">Welcome</h1>
<iframe name="help" srcdoc="<p id='tip'>Use your email</p>"></iframe>
</body></html>`

const loginFile = `
name: login
elements:
  username: {kind: field, locator: "//input[@id='user']"}
  agree: {kind: checkbox, locator: "//input[@id='agree']"}
  country: {kind: select, locator: "//select[@id='country']"}
  title: "//h1[@id='title']"
  tip: "//p[@id='tip']"
checks:
  - label: fill in
    do:
      - set: {element: username, value: alice}
      - check: agree
      - choose: {element: country, text: Chile}
    expect:
      - element: username
        value: alice
      - element: agree
        checked: true
      - element: title
        caption: Welcome
  - label: help
    frame: help
    expect:
      - element: tip
        caption: {contains: email}
`

// screenshotDriver overrides the screenshot of an htmldoc snapshot.
type screenshotDriver struct {
	*htmldoc.Driver
	png []byte
	err error
}

func (d *screenshotDriver) Screenshot() ([]byte, error) {
	return d.png, d.err
}

func buildBlocks(t *testing.T, src string) []flow.Block {
	t.Helper()
	f, err := flow.Parse([]byte(src), "checks/login.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, blocks, err := flow.Build(f, flow.NewEngine(f, nil))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return blocks
}

func newPage(t *testing.T) *htmldoc.Driver {
	t.Helper()
	d, err := htmldoc.ParseString(loginPage)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	return d
}

func TestSession_RunBlocks(t *testing.T) {
	d := newPage(t)
	s := NewSession(d, nil, language.English)
	s.Start()

	for _, b := range buildBlocks(t, loginFile) {
		if err := s.RunBlock(b); err != nil {
			t.Fatalf("block %q: %v", b.Label, err)
		}
	}

	if s.Checks() != 4 {
		t.Errorf("Checks() = %d, want 4", s.Checks())
	}
	if s.Queue().Len() != 0 {
		t.Errorf("unexpected failures: %v", s.Queue().Failures())
	}
	if d.Depth() != 0 {
		t.Errorf("frame scope not restored, depth %d", d.Depth())
	}
	if err := s.End(); err != nil {
		t.Errorf("End() = %v, want nil", err)
	}
}

func TestSession_MismatchAggregated(t *testing.T) {
	src := strings.Replace(loginFile, "caption: Welcome", "caption: Goodbye", 1)
	s := NewSession(newPage(t), nil, language.Und)
	s.Start()

	blocks := buildBlocks(t, src)
	if err := s.RunBlock(blocks[0]); err != nil {
		t.Fatalf("RunBlock: %v", err)
	}

	failures := s.Queue().Failures()
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].Property != "caption" || failures[0].Step != "fill in" {
		t.Errorf("failure = %+v", failures[0])
	}

	err := s.End()
	if !errors.Is(err, core.ErrVerificationFailed) {
		t.Fatalf("End() = %v, want verification failure", err)
	}

	s.Start()
	if s.Queue().Len() != 0 {
		t.Error("Start should reset the queue")
	}
}

func TestSession_ActionFault(t *testing.T) {
	src := strings.Replace(loginFile, "text: Chile", "text: Narnia", 1)
	s := NewSession(newPage(t), nil, language.Und)

	err := s.RunBlock(buildBlocks(t, src)[0])
	if !errors.Is(err, core.ErrOptionNotFound) {
		t.Fatalf("RunBlock() = %v, want option not found", err)
	}
	if !strings.Contains(err.Error(), "choose [Narnia] by text in country") {
		t.Errorf("error should name the action: %v", err)
	}
}

func TestSession_MissingFrame(t *testing.T) {
	src := strings.Replace(loginFile, "frame: help", "frame: nowhere", 1)
	d := newPage(t)
	s := NewSession(d, nil, language.Und)

	err := s.RunBlock(buildBlocks(t, src)[1])
	if !errors.Is(err, core.ErrElementNotFound) {
		t.Fatalf("RunBlock() = %v, want element not found", err)
	}
	if d.Depth() != 0 {
		t.Errorf("depth = %d after failed frame entry", d.Depth())
	}
}

func TestSession_Screenshot(t *testing.T) {
	tests := []struct {
		name        string
		driver      core.Driver
		contentType string
		body        string
	}{
		{
			name:        "unsupported",
			driver:      newPage(t),
			contentType: core.ContentTypeText,
			body:        NoScreenshot,
		},
		{
			name:        "png",
			driver:      &screenshotDriver{Driver: newPage(t), png: []byte{0x89, 0x50, 0x4E, 0x47}},
			contentType: core.ContentTypePNG,
			body:        "\x89PNG",
		},
		{
			name:        "failed",
			driver:      &screenshotDriver{Driver: newPage(t), err: errors.New("boom")},
			contentType: core.ContentTypeText,
			body:        "screenshot failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(tt.driver, nil, language.Und)
			s.Screenshot("after login")

			captures := s.Queue().Captures()
			if len(captures) != 1 {
				t.Fatalf("expected 1 capture, got %d", len(captures))
			}
			c := captures[0]
			if c.Label != "after login" || c.ContentType != tt.contentType || string(c.Body) != tt.body {
				t.Errorf("capture = %s %s %q", c.Label, c.ContentType, c.Body)
			}
			if s.Queue().Len() != 0 {
				t.Error("a capture must not count as a failure")
			}
		})
	}
}

func TestSession_ScreenshotAction(t *testing.T) {
	src := strings.Replace(loginFile, "      - check: agree\n", "      - check: agree\n      - screenshot: checked\n", 1)
	s := NewSession(newPage(t), nil, language.Und)

	if err := s.RunBlock(buildBlocks(t, src)[0]); err != nil {
		t.Fatalf("RunBlock: %v", err)
	}
	captures := s.Queue().Captures()
	if len(captures) != 1 || captures[0].Label != "checked" {
		t.Errorf("captures = %+v", captures)
	}
}

func TestNewSession_IDsAreUnique(t *testing.T) {
	a := NewSession(newPage(t), nil, language.Und)
	b := NewSession(newPage(t), nil, language.Und)
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("ids %q and %q", a.ID(), b.ID())
	}
}
