// Package browser implements core.Driver over a live page driven by
// Playwright.
//
// Locators are XPath and are always sent with the xpath= engine prefix, so
// a relative locator evaluated inside a handle stays relative. Frames are
// entered with FrameLocator chains; every lookup after EnterFrame is built
// from the innermost frame.
package browser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/spf13/cast"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/logger"
)

// DefaultTimeout bounds how long Find waits for an element to attach.
const DefaultTimeout = 5 * time.Second

// Driver is a core.Driver over one Playwright page.
type Driver struct {
	page    playwright.Page
	frames  []string
	timeout time.Duration
}

// New wraps an open page. A zero timeout selects DefaultTimeout.
func New(page playwright.Page, timeout time.Duration) *Driver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	page.SetDefaultTimeout(ms(timeout))
	return &Driver{page: page, timeout: timeout}
}

// handle is a resolved element.
type handle struct {
	loc     playwright.Locator
	locator string
}

func (h *handle) Locator() string { return h.locator }

func locatorOf(h core.Handle) (playwright.Locator, error) {
	ph, ok := h.(*handle)
	if !ok || ph == nil {
		return nil, core.ErrInvalidBinding.WithMessagef("handle %T was not produced by the browser driver", h)
	}
	return ph.loc, nil
}

func xpath(locator string) string {
	return "xpath=" + locator
}

func frameSelector(name string) string {
	return fmt.Sprintf("iframe[name=%q], iframe[id=%q]", name, name)
}

// locate builds a locator in the current frame scope.
func (d *Driver) locate(selector string) playwright.Locator {
	if len(d.frames) == 0 {
		return d.page.Locator(selector)
	}
	fl := d.page.FrameLocator(frameSelector(d.frames[0]))
	for _, name := range d.frames[1:] {
		fl = fl.FrameLocator(frameSelector(name))
	}
	return fl.Locator(selector)
}

// Find implements core.Driver. It waits up to the driver timeout for a
// match to attach; a timeout is absence.
func (d *Driver) Find(q core.Query) (core.Handle, bool, error) {
	loc, desc := d.locate(xpath(q.Locator)), q.Locator
	if q.Within != nil {
		parent, err := locatorOf(q.Within)
		if err != nil {
			return nil, false, err
		}
		loc, desc = parent.Locator(xpath(q.Locator)), q.Within.Locator()+" >> "+q.Locator
	}

	err := loc.First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(ms(d.timeout)),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		logger.Debug("browser: %s not found within %s", desc, d.timeout)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, driverError("find "+desc, err)
	}

	n, err := loc.Count()
	if err != nil {
		return nil, false, driverError("count "+desc, err)
	}
	for i := 0; i < n; i++ {
		el := loc.Nth(i)
		if q.Visibility == core.VisibleOnly {
			vis, err := el.IsVisible()
			if err != nil {
				return nil, false, driverError("visible "+desc, err)
			}
			if !vis {
				continue
			}
		}
		return &handle{loc: el, locator: desc}, true, nil
	}
	return nil, false, nil
}

// Count implements core.Driver. It does not wait.
func (d *Driver) Count(locator string) (int, error) {
	n, err := d.locate(xpath(locator)).Count()
	if err != nil {
		return 0, driverError("count "+locator, err)
	}
	return n, nil
}

// Text implements core.Driver.
func (d *Driver) Text(h core.Handle) (string, error) {
	loc, err := locatorOf(h)
	if err != nil {
		return "", err
	}
	s, err := loc.TextContent()
	if err != nil {
		return "", driverError("text of "+h.Locator(), err)
	}
	return s, nil
}

// Attribute implements core.Driver.
func (d *Driver) Attribute(h core.Handle, name string) (string, bool, error) {
	loc, err := locatorOf(h)
	if err != nil {
		return "", false, err
	}
	v, err := loc.Evaluate("(el, name) => el.getAttribute(name)", name)
	if err != nil {
		return "", false, driverError("attribute "+name+" of "+h.Locator(), err)
	}
	if v == nil {
		return "", false, nil
	}
	return cast.ToString(v), true, nil
}

// Property implements core.Driver. Undefined and null read as "".
func (d *Driver) Property(h core.Handle, name string) (string, error) {
	loc, err := locatorOf(h)
	if err != nil {
		return "", err
	}
	v, err := loc.Evaluate("(el, name) => { const v = el[name]; return v == null ? '' : String(v) }", name)
	if err != nil {
		return "", driverError("property "+name+" of "+h.Locator(), err)
	}
	return cast.ToString(v), nil
}

// Value implements core.Driver.
func (d *Driver) Value(h core.Handle) (string, error) {
	loc, err := locatorOf(h)
	if err != nil {
		return "", err
	}
	v, err := loc.InputValue()
	if err != nil {
		return "", driverError("value of "+h.Locator(), err)
	}
	return v, nil
}

// SetValue implements core.Driver.
func (d *Driver) SetValue(h core.Handle, value string) error {
	loc, err := d.interactable(h)
	if err != nil {
		return err
	}
	if ro, _ := loc.Evaluate("el => el.readOnly === true", nil); cast.ToBool(ro) {
		return core.ErrNotInteractable.WithMessagef("%s is read-only", h.Locator())
	}
	if err := loc.Fill(value); err != nil {
		return driverError("fill "+h.Locator(), err)
	}
	return nil
}

// Click implements core.Driver.
func (d *Driver) Click(h core.Handle) error {
	loc, err := d.interactable(h)
	if err != nil {
		return err
	}
	logger.Debug("browser: click %s", h.Locator())
	if err := loc.Click(); err != nil {
		return driverError("click "+h.Locator(), err)
	}
	return nil
}

func (d *Driver) interactable(h core.Handle) (playwright.Locator, error) {
	loc, err := locatorOf(h)
	if err != nil {
		return nil, err
	}
	if vis, err := loc.IsVisible(); err != nil || !vis {
		return nil, core.ErrNotInteractable.WithMessagef("%s is not visible", h.Locator())
	}
	if on, err := loc.IsEnabled(); err != nil || !on {
		return nil, core.ErrNotInteractable.WithMessagef("%s is disabled", h.Locator())
	}
	return loc, nil
}

// Checked implements core.Driver.
func (d *Driver) Checked(h core.Handle) (bool, error) {
	loc, err := locatorOf(h)
	if err != nil {
		return false, err
	}
	on, err := loc.IsChecked()
	if err != nil {
		return false, driverError("checked "+h.Locator(), err)
	}
	return on, nil
}

// Visible implements core.Driver.
func (d *Driver) Visible(h core.Handle) (bool, error) {
	loc, err := locatorOf(h)
	if err != nil {
		return false, err
	}
	vis, err := loc.IsVisible()
	if err != nil {
		return false, driverError("visible "+h.Locator(), err)
	}
	return vis, nil
}

// Enabled implements core.Driver.
func (d *Driver) Enabled(h core.Handle) (bool, error) {
	loc, err := locatorOf(h)
	if err != nil {
		return false, err
	}
	on, err := loc.IsEnabled()
	if err != nil {
		return false, driverError("enabled "+h.Locator(), err)
	}
	return on, nil
}

const optionsScript = `el => el.tagName === 'SELECT'
	? Array.from(el.options).map(o => ({text: o.text, value: o.value, selected: o.selected}))
	: null`

// Options implements core.Driver.
func (d *Driver) Options(h core.Handle) ([]core.Option, error) {
	loc, err := locatorOf(h)
	if err != nil {
		return nil, err
	}
	v, err := loc.Evaluate(optionsScript, nil)
	if err != nil {
		return nil, driverError("options of "+h.Locator(), err)
	}
	if v == nil {
		return nil, core.ErrUnsupported.WithMessagef("%s is not a select", h.Locator())
	}
	var out []core.Option
	for _, raw := range cast.ToSlice(v) {
		m := cast.ToStringMap(raw)
		out = append(out, core.Option{
			Text:     strings.TrimSpace(cast.ToString(m["text"])),
			Value:    cast.ToString(m["value"]),
			Selected: cast.ToBool(m["selected"]),
		})
	}
	return out, nil
}

// SelectOption implements core.Driver.
func (d *Driver) SelectOption(h core.Handle, by core.SelectBy, key string) error {
	opts, err := d.Options(h)
	if err != nil {
		return err
	}
	idx := optionIndex(opts, by, key)
	if idx < 0 {
		return core.ErrOptionNotFound.WithMessagef("%s: no option with %s %q", h.Locator(), by, key)
	}
	loc, err := d.interactable(h)
	if err != nil {
		return err
	}
	if _, err := loc.SelectOption(playwright.SelectOptionValues{Indexes: &[]int{idx}}); err != nil {
		return driverError("select "+key+" in "+h.Locator(), err)
	}
	return nil
}

// optionIndex returns the 0-based position of the matching option or -1.
func optionIndex(opts []core.Option, by core.SelectBy, key string) int {
	if by == core.SelectByIndex {
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 || n > len(opts) {
			return -1
		}
		return n - 1
	}
	for i, o := range opts {
		if (by == core.SelectByText && o.Text == strings.TrimSpace(key)) || (by == core.SelectByValue && o.Value == key) {
			return i
		}
	}
	return -1
}

// EnterFrame implements core.Driver. Frames are matched by name or id.
func (d *Driver) EnterFrame(name string) error {
	n, err := d.locate(frameSelector(name)).Count()
	if err != nil {
		return driverError("frame "+name, err)
	}
	if n == 0 {
		return core.ErrElementNotFound.WithMessagef("frame %q not found", name)
	}
	d.frames = append(d.frames, name)
	return nil
}

// ExitFrame implements core.Driver.
func (d *Driver) ExitFrame() error {
	if n := len(d.frames); n > 0 {
		d.frames = d.frames[:n-1]
	}
	return nil
}

// Screenshot implements core.Driver.
func (d *Driver) Screenshot() ([]byte, error) {
	data, err := d.page.Screenshot(playwright.PageScreenshotOptions{FullPage: playwright.Bool(true)})
	if err != nil {
		return nil, driverError("screenshot", err)
	}
	return data, nil
}

// Depth returns how many frames are currently entered.
func (d *Driver) Depth() int {
	return len(d.frames)
}

// Close closes the page.
func (d *Driver) Close() error {
	return d.page.Close()
}

func driverError(what string, err error) error {
	return fmt.Errorf("browser: %s: %w", what, err)
}

func ms(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
