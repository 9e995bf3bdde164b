// Package htmldoc implements core.Driver over a parsed HTML snapshot.
//
// The document is static: no script runs. A few page behaviours are
// simulated so that interactions can be exercised offline:
//   - clicking a checkbox toggles its checked attribute; a radio becomes the
//     only checked radio of its name
//   - clicking a label clicks its for= target (or first nested input)
//   - clicking a node with data-option-for="<id>" copies its text into the
//     element with that id (overlay dropdowns)
//   - an iframe's srcdoc is parsed as the frame document
package htmldoc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/logger"
)

// Driver is a core.Driver over an in-memory DOM.
type Driver struct {
	doc    *html.Node
	frames map[*html.Node]*html.Node // iframe element -> parsed srcdoc
	scope  []*html.Node
	clicks []string
}

// New wraps an already parsed document.
func New(doc *html.Node) *Driver {
	return &Driver{doc: doc, frames: make(map[*html.Node]*html.Node)}
}

// Parse reads a document.
func Parse(r io.Reader) (*Driver, error) {
	doc, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return New(doc), nil
}

// ParseString reads a document from a string.
func ParseString(s string) (*Driver, error) {
	return Parse(strings.NewReader(s))
}

// Load reads a document from a file.
func Load(path string) (*Driver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// handle is a resolved node.
type handle struct {
	node    *html.Node
	locator string
}

func (h *handle) Locator() string { return h.locator }

func nodeOf(h core.Handle) (*html.Node, error) {
	hh, ok := h.(*handle)
	if !ok || hh == nil || hh.node == nil {
		return nil, core.ErrUnsupported.WithMessagef("handle %T does not belong to htmldoc", h)
	}
	return hh.node, nil
}

// top is the document lookups currently run against.
func (d *Driver) top() *html.Node {
	if n := len(d.scope); n > 0 {
		return d.scope[n-1]
	}
	return d.doc
}

func (d *Driver) query(locator string) ([]*html.Node, error) {
	return d.queryFrom(d.top(), locator)
}

func (d *Driver) queryFrom(top *html.Node, locator string) ([]*html.Node, error) {
	nodes, err := htmlquery.QueryAll(top, locator)
	if err != nil {
		return nil, core.ErrInvalidSpec.WithMessagef("invalid locator %q", locator).WithCause(err)
	}
	return nodes, nil
}

// Find implements core.Driver.
func (d *Driver) Find(q core.Query) (core.Handle, bool, error) {
	top, loc := d.top(), q.Locator
	if q.Within != nil {
		n, err := nodeOf(q.Within)
		if err != nil {
			return nil, false, err
		}
		top, loc = n, q.Within.Locator()+" >> "+q.Locator
	}
	nodes, err := d.queryFrom(top, q.Locator)
	if err != nil {
		return nil, false, err
	}
	for _, n := range nodes {
		if q.Visibility == core.VisibleOnly && !visible(n) {
			continue
		}
		return &handle{node: n, locator: loc}, true, nil
	}
	return nil, false, nil
}

// Count implements core.Driver.
func (d *Driver) Count(locator string) (int, error) {
	nodes, err := d.query(locator)
	if err != nil {
		return 0, err
	}
	return len(nodes), nil
}

// Text implements core.Driver.
func (d *Driver) Text(h core.Handle) (string, error) {
	n, err := nodeOf(h)
	if err != nil {
		return "", err
	}
	return htmlquery.InnerText(n), nil
}

// Attribute implements core.Driver.
func (d *Driver) Attribute(h core.Handle, name string) (string, bool, error) {
	n, err := nodeOf(h)
	if err != nil {
		return "", false, err
	}
	if !htmlquery.ExistsAttr(n, name) {
		return "", false, nil
	}
	return attr(n, name), true, nil
}

// Property implements core.Driver for tagName, naturalWidth, complete,
// value and checked.
func (d *Driver) Property(h core.Handle, name string) (string, error) {
	n, err := nodeOf(h)
	if err != nil {
		return "", err
	}
	switch name {
	case "tagName":
		return strings.ToUpper(n.Data), nil
	case "naturalWidth":
		if strings.TrimSpace(attr(n, "src")) == "" {
			return "0", nil
		}
		if w := attr(n, "data-natural-width"); w != "" {
			return w, nil
		}
		if w := attr(n, "width"); w != "" {
			return w, nil
		}
		return "1", nil
	case "complete":
		return "true", nil
	case "value":
		return d.Value(h)
	case "checked":
		on, err := d.Checked(h)
		return fmt.Sprint(on), err
	default:
		return "", core.ErrUnsupported.WithMessagef("property %q not available in htmldoc", name)
	}
}

// Value implements core.Driver.
func (d *Driver) Value(h core.Handle) (string, error) {
	n, err := nodeOf(h)
	if err != nil {
		return "", err
	}
	switch n.Data {
	case "textarea":
		return htmlquery.InnerText(n), nil
	case "select":
		for _, o := range options(n) {
			if o.Selected {
				return o.Value, nil
			}
		}
		return "", nil
	default:
		return attr(n, "value"), nil
	}
}

// SetValue implements core.Driver.
func (d *Driver) SetValue(h core.Handle, value string) error {
	n, err := nodeOf(h)
	if err != nil {
		return err
	}
	if err := interactable(n, h.Locator()); err != nil {
		return err
	}
	if hasAttr(n, "readonly") {
		return core.ErrNotInteractable.WithMessagef("%s is read-only", h.Locator())
	}
	switch n.Data {
	case "input":
		if max := attr(n, "maxlength"); max != "" {
			var limit int
			if _, err := fmt.Sscan(max, &limit); err == nil && limit >= 0 && len([]rune(value)) > limit {
				value = string([]rune(value)[:limit])
			}
		}
		setAttr(n, "value", value)
	case "textarea":
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			n.RemoveChild(c)
			c = next
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: value})
	default:
		return core.ErrUnsupported.WithMessagef("cannot set value of <%s>", n.Data)
	}
	return nil
}

// Click implements core.Driver.
func (d *Driver) Click(h core.Handle) error {
	n, err := nodeOf(h)
	if err != nil {
		return err
	}
	if err := interactable(n, h.Locator()); err != nil {
		return err
	}
	d.clicks = append(d.clicks, h.Locator())
	logger.Debug("htmldoc: click %s", h.Locator())
	return d.activate(n)
}

func (d *Driver) activate(n *html.Node) error {
	switch {
	case n.Data == "input" && strings.EqualFold(attr(n, "type"), "checkbox"):
		toggleAttr(n, "checked")
	case n.Data == "input" && strings.EqualFold(attr(n, "type"), "radio"):
		d.checkRadio(n)
	case n.Data == "label":
		if target := d.labelTarget(n); target != nil && !disabled(target) {
			return d.activate(target)
		}
	case attr(n, "role") == "checkbox":
		if attr(n, "aria-checked") == "true" {
			setAttr(n, "aria-checked", "false")
		} else {
			setAttr(n, "aria-checked", "true")
		}
	case attr(n, "data-option-for") != "":
		if target := d.byID(attr(n, "data-option-for")); target != nil {
			setText(target, strings.TrimSpace(htmlquery.InnerText(n)))
		}
	case n.Data == "option":
		if sel := enclosingSelect(n); sel != nil {
			selectOption(sel, n)
		}
	}
	return nil
}

func (d *Driver) checkRadio(n *html.Node) {
	name := attr(n, "name")
	if name != "" {
		for _, other := range htmlquery.Find(d.top(), "//input[@type='radio']") {
			if attr(other, "name") == name {
				removeAttr(other, "checked")
			}
		}
	}
	setAttr(n, "checked", "checked")
}

func (d *Driver) labelTarget(label *html.Node) *html.Node {
	if id := attr(label, "for"); id != "" {
		return d.byID(id)
	}
	return htmlquery.FindOne(label, ".//input")
}

func (d *Driver) byID(id string) *html.Node {
	for _, n := range htmlquery.Find(d.top(), "//*[@id]") {
		if attr(n, "id") == id {
			return n
		}
	}
	return nil
}

// Checked implements core.Driver: the checked attribute for inputs,
// aria-checked otherwise.
func (d *Driver) Checked(h core.Handle) (bool, error) {
	n, err := nodeOf(h)
	if err != nil {
		return false, err
	}
	if n.Data == "input" {
		return hasAttr(n, "checked"), nil
	}
	return attr(n, "aria-checked") == "true", nil
}

// Visible implements core.Driver.
func (d *Driver) Visible(h core.Handle) (bool, error) {
	n, err := nodeOf(h)
	if err != nil {
		return false, err
	}
	return visible(n), nil
}

// Enabled implements core.Driver.
func (d *Driver) Enabled(h core.Handle) (bool, error) {
	n, err := nodeOf(h)
	if err != nil {
		return false, err
	}
	return !disabled(n), nil
}

// Options implements core.Driver.
func (d *Driver) Options(h core.Handle) ([]core.Option, error) {
	n, err := nodeOf(h)
	if err != nil {
		return nil, err
	}
	if n.Data != "select" {
		return nil, core.ErrUnsupported.WithMessagef("%s is not a select", h.Locator())
	}
	return options(n), nil
}

// SelectOption implements core.Driver.
func (d *Driver) SelectOption(h core.Handle, by core.SelectBy, key string) error {
	n, err := nodeOf(h)
	if err != nil {
		return err
	}
	if n.Data != "select" {
		return core.ErrUnsupported.WithMessagef("%s is not a select", h.Locator())
	}
	if err := interactable(n, h.Locator()); err != nil {
		return err
	}
	opt := findOption(n, by, key)
	if opt == nil {
		return core.ErrOptionNotFound.WithMessagef("%s: no option with %s %q", h.Locator(), by, key)
	}
	selectOption(n, opt)
	return nil
}

// EnterFrame implements core.Driver. Frames are matched by name or id within
// the current document and each iframe's srcdoc is parsed once.
func (d *Driver) EnterFrame(name string) error {
	var frame *html.Node
	for _, n := range htmlquery.Find(d.top(), "//iframe") {
		if attr(n, "name") == name || attr(n, "id") == name {
			frame = n
			break
		}
	}
	if frame == nil {
		return core.ErrElementNotFound.WithMessagef("frame %q not found", name)
	}
	doc, ok := d.frames[frame]
	if !ok {
		var err error
		doc, err = htmlquery.Parse(strings.NewReader(attr(frame, "srcdoc")))
		if err != nil {
			return fmt.Errorf("parse frame %q: %w", name, err)
		}
		d.frames[frame] = doc
	}
	d.scope = append(d.scope, doc)
	return nil
}

// ExitFrame implements core.Driver.
func (d *Driver) ExitFrame() error {
	if n := len(d.scope); n > 0 {
		d.scope = d.scope[:n-1]
	}
	return nil
}

// Screenshot implements core.Driver. Snapshots have no rendering.
func (d *Driver) Screenshot() ([]byte, error) {
	return nil, core.ErrUnsupported.WithMessage("htmldoc cannot render screenshots")
}

// Clicks returns the locators clicked so far, in order.
func (d *Driver) Clicks() []string {
	out := make([]string, len(d.clicks))
	copy(out, d.clicks)
	return out
}

// Depth returns how many frames are currently entered.
func (d *Driver) Depth() int {
	return len(d.scope)
}

// HTML renders the current document.
func (d *Driver) HTML() string {
	return htmlquery.OutputHTML(d.top(), true)
}
