package element

import (
	"strconv"
	"strings"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/locator"
)

// Cell is the content of a table cell or list item. Reading it walks the
// candidate templates (own text, input, textarea, select) because rows may
// render different controls in the same column.
type Cell struct{ base }

// NewCell declares a table cell. An empty template addresses the cell
// itself; otherwise it names a node inside the cell.
func NewCell(name, template string, opts ...Option) *Cell {
	return &Cell{base{newRef(name, KindCell, template, opts)}}
}

// Value reads the first candidate present in the cell, or the raw cell text
// when none is.
func (c *Cell) Value(d core.Driver, at locator.Binding) (string, error) {
	cell, loc, err := c.find(d, at)
	if err != nil {
		return "", err
	}
	h, ok, err := c.control(d, cell, loc, c.ref.candidates)
	if err != nil {
		return "", err
	}
	if !ok {
		raw, err := d.Text(cell)
		return normalize(raw), err
	}
	return readControl(d, h)
}

// Caption is the cell's text.
func (c *Cell) Caption(d core.Driver, at locator.Binding) (string, error) {
	s, err := c.text(d, at)
	return normalize(s), err
}

// SetValue writes into the first nested control of the cell.
func (c *Cell) SetValue(d core.Driver, at locator.Binding, value string) error {
	cell, loc, err := c.find(d, at)
	if err != nil {
		return err
	}
	var controls []string
	for _, inner := range c.ref.candidates {
		if strings.HasPrefix(inner, "/") {
			controls = append(controls, inner)
		}
	}
	h, ok, err := c.control(d, cell, loc, controls)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(c.ref, loc)
	}
	return d.SetValue(h, value)
}

// control walks the candidates relative to the resolved cell and returns
// the first element found.
func (c *Cell) control(d core.Driver, cell core.Handle, loc string, inners []string) (core.Handle, bool, error) {
	var found core.Handle
	exists := func(candidate string) (bool, error) {
		inner := strings.TrimPrefix(candidate, loc)
		h, ok, err := d.Find(core.Query{Locator: locator.Relative(inner), Kind: string(KindCell), Within: cell})
		if err != nil || !ok {
			return false, err
		}
		found = h
		return true, nil
	}

	if _, ok, err := locator.FirstExisting(locator.Candidates(loc, inners), exists); err != nil || !ok {
		return nil, false, err
	}
	return found, true, nil
}

// readControl reads a form control according to its tag.
func readControl(d core.Driver, h core.Handle) (string, error) {
	tag, err := d.Property(h, "tagName")
	if err != nil {
		return "", err
	}
	switch strings.ToLower(tag) {
	case "select":
		opts, err := d.Options(h)
		if err != nil {
			return "", err
		}
		for _, o := range opts {
			if o.Selected {
				return normalize(o.Text), nil
			}
		}
		return "", nil
	case "input":
		typ, _, err := d.Attribute(h, "type")
		if err != nil {
			return "", err
		}
		if t := strings.ToLower(typ); t == "checkbox" || t == "radio" {
			on, err := d.Checked(h)
			return strconv.FormatBool(on), err
		}
		return d.Value(h)
	case "textarea":
		return d.Value(h)
	default:
		t, err := d.Text(h)
		return normalize(t), err
	}
}
