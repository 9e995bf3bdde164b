package element

import (
	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/locator"
)

// Element is implemented by every kind.
type Element interface {
	Ref() *Ref
	Exists(d core.Driver, at locator.Binding) (bool, error)
	Visible(d core.Driver, at locator.Binding) (bool, error)
	Enabled(d core.Driver, at locator.Binding) (bool, error)
}

// Valuer reads the current value: field text, selected option, cell content.
type Valuer interface {
	Element
	Value(d core.Driver, at locator.Binding) (string, error)
}

// Setter replaces the current value.
type Setter interface {
	Element
	SetValue(d core.Driver, at locator.Binding, value string) error
}

// Captioner reads the visible caption: text, alt text, item text.
type Captioner interface {
	Element
	Caption(d core.Driver, at locator.Binding) (string, error)
}

// Clicker activates the element.
type Clicker interface {
	Element
	Click(d core.Driver, at locator.Binding) error
}

// Checker reads and sets a boolean checked state.
type Checker interface {
	Element
	Checked(d core.Driver, at locator.Binding) (bool, error)
	SetChecked(d core.Driver, at locator.Binding, on bool) error
}

// Picker reads and sets the selected state of a radio button.
type Picker interface {
	Element
	Selected(d core.Driver, at locator.Binding) (bool, error)
	Pick(d core.Driver, at locator.Binding) error
}

// Chooser enumerates and picks options.
type Chooser interface {
	Element
	Options(d core.Driver, at locator.Binding) ([]string, error)
	Selection(d core.Driver, at locator.Binding) ([]string, error)
	Choose(d core.Driver, at locator.Binding, by core.SelectBy, key string) error
	ChooseAll(d core.Driver, at locator.Binding, by core.SelectBy, keys []string) error
}

// Counter counts items, rows or options.
type Counter interface {
	Element
	Count(d core.Driver, at locator.Binding) (int, error)
}

// Itemizer lists the text of every item.
type Itemizer interface {
	Element
	Items(d core.Driver, at locator.Binding) ([]string, error)
}

// Tabular exposes table shape.
type Tabular interface {
	Element
	ColumnCount(d core.Driver, at locator.Binding) (int, error)
	Headers(d core.Driver, at locator.Binding) ([]string, error)
}

// Linker reads a link target.
type Linker interface {
	Element
	Href(d core.Driver, at locator.Binding) (string, error)
}

// Imager reports whether an image failed to load.
type Imager interface {
	Element
	Broken(d core.Driver, at locator.Binding) (bool, error)
}

// Constrained exposes input constraints.
type Constrained interface {
	Element
	ReadOnly(d core.Driver, at locator.Binding) (bool, error)
	MaxLength(d core.Driver, at locator.Binding) (int, error)
	Placeholder(d core.Driver, at locator.Binding) (string, error)
}

// Container is a list or table other elements can be scoped to.
type Container interface {
	Counter
	container()
}

// base implements Element for every kind.
type base struct {
	ref *Ref
}

// Ref returns the reference the element was declared with.
func (b base) Ref() *Ref { return b.ref }

// find resolves and looks the element up once. Absence is
// core.ErrElementNotFound naming the reference.
func (b base) find(d core.Driver, at locator.Binding) (core.Handle, string, error) {
	loc, err := b.ref.Resolve(d, at)
	if err != nil {
		return nil, "", err
	}
	h, ok, err := d.Find(core.Query{Locator: loc, Kind: string(b.ref.kind)})
	if err != nil {
		return nil, loc, err
	}
	if !ok {
		return nil, loc, notFound(b.ref, loc)
	}
	return h, loc, nil
}

// lookup is find with absence reported as ok == false.
func (b base) lookup(d core.Driver, at locator.Binding) (core.Handle, bool, error) {
	h, _, err := b.find(d, at)
	if IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return h, true, nil
}

// Exists reports whether the element resolves to a node. Absence is not an
// error.
func (b base) Exists(d core.Driver, at locator.Binding) (bool, error) {
	_, ok, err := b.lookup(d, at)
	return ok, err
}

// Visible reports whether the element is present and displayed.
func (b base) Visible(d core.Driver, at locator.Binding) (bool, error) {
	h, ok, err := b.lookup(d, at)
	if err != nil || !ok {
		return false, err
	}
	return d.Visible(h)
}

// Enabled reports whether the element accepts interaction.
func (b base) Enabled(d core.Driver, at locator.Binding) (bool, error) {
	h, _, err := b.find(d, at)
	if err != nil {
		return false, err
	}
	return d.Enabled(h)
}

// Click clicks the resolved element.
func (b base) Click(d core.Driver, at locator.Binding) error {
	h, _, err := b.find(d, at)
	if err != nil {
		return err
	}
	return d.Click(h)
}

func (b base) text(d core.Driver, at locator.Binding) (string, error) {
	h, _, err := b.find(d, at)
	if err != nil {
		return "", err
	}
	return d.Text(h)
}

func (b base) attribute(d core.Driver, at locator.Binding, name string) (string, bool, error) {
	h, _, err := b.find(d, at)
	if err != nil {
		return "", false, err
	}
	return d.Attribute(h, name)
}
