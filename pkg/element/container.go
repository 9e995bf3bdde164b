package element

import (
	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/locator"
)

// List is an ordered collection of items other elements can be scoped to.
type List struct{ base }

// Table is a grid of rows and columns other elements can be scoped to.
type Table struct{ base }

// NewList declares a list container. Its items are matched by the item
// path, /li unless WithRows overrides it.
func NewList(name, template string, opts ...Option) *List {
	return &List{base{newRef(name, KindList, template, opts)}}
}

// NewTable declares a table container. Rows and headers default to the
// table's own rows, so a table nested in a cell is not counted.
func NewTable(name, template string, opts ...Option) *Table {
	return &Table{base{newRef(name, KindTable, template, opts)}}
}

func (l *List) container()  {}
func (t *Table) container() {}

// Count returns the number of items. at addresses the list itself when it
// is nested in another container.
func (l *List) Count(d core.Driver, at locator.Binding) (int, error) {
	return count(d, l.base, at)
}

// Items returns the normalised text of every item.
func (l *List) Items(d core.Driver, at locator.Binding) ([]string, error) {
	root, err := l.root(d, at)
	if err != nil {
		return nil, err
	}
	rows := l.ref.rowsLocator(root)
	n, err := d.Count(rows)
	if err != nil {
		return nil, err
	}
	return texts(d, l.ref, rows, n)
}

// Caption is the text of the whole list.
func (l *List) Caption(d core.Driver, at locator.Binding) (string, error) {
	s, err := l.text(d, at)
	return normalize(s), err
}

// Count returns the number of data rows.
func (t *Table) Count(d core.Driver, at locator.Binding) (int, error) {
	return count(d, t.base, at)
}

// ColumnCount returns the number of cells in the first data row.
func (t *Table) ColumnCount(d core.Driver, at locator.Binding) (int, error) {
	root, err := t.root(d, at)
	if err != nil {
		return 0, err
	}
	return d.Count(t.ref.columnsLocator(root, 1))
}

// Headers returns the header captions of the table.
func (t *Table) Headers(d core.Driver, at locator.Binding) ([]string, error) {
	root, err := t.root(d, at)
	if err != nil {
		return nil, err
	}
	headers := locator.Under(root, t.ref.headers)
	n, err := d.Count(headers)
	if err != nil {
		return nil, err
	}
	return texts(d, t.ref, headers, n)
}

// root resolves the container and requires it to exist.
func (b base) root(d core.Driver, at locator.Binding) (string, error) {
	_, loc, err := b.find(d, at)
	return loc, err
}

func count(d core.Driver, b base, at locator.Binding) (int, error) {
	root, err := b.root(d, at)
	if err != nil {
		return 0, err
	}
	return d.Count(b.ref.rowsLocator(root))
}
