// Package element models UI element kinds and the capabilities each kind
// exposes: values, captions, boolean state, options, counts.
package element

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/locator"
)

// Kind tags an element reference.
type Kind string

const (
	KindField    Kind = "field"
	KindTextArea Kind = "textarea"
	KindButton   Kind = "button"
	KindLabel    Kind = "label"
	KindLink     Kind = "link"
	KindImage    Kind = "image"
	KindCheckBox Kind = "checkbox"
	KindRadio    Kind = "radio"
	KindSelect   Kind = "select"
	KindList     Kind = "list"
	KindTable    Kind = "table"
	KindCell     Kind = "cell"
)

// Kinds lists every element kind.
var Kinds = []Kind{
	KindField, KindTextArea, KindButton, KindLabel, KindLink, KindImage,
	KindCheckBox, KindRadio, KindSelect, KindList, KindTable, KindCell,
}

// IsContainer reports whether elements can be nested in this kind.
func (k Kind) IsContainer() bool {
	return k == KindList || k == KindTable
}

// DefaultProxy is the template clicked when a custom checkbox or radio does
// not react to a native click.
const DefaultProxy = "/following-sibling::label[1]"

// Ref is the immutable description of one logical element. Its concrete
// locator is computed per call from the template and the caller's binding.
type Ref struct {
	name       string
	kind       Kind
	template   string
	parent     *Ref
	rows       string
	columns    string
	headers    string
	candidates []string
	proxy      string
	overlay    string
}

// Option configures a reference at construction.
type Option func(*Ref)

// InList scopes the element to an item of list.
func InList(list *List) Option {
	return func(r *Ref) { r.parent = list.ref }
}

// InTable scopes the element to a row or cell of table.
func InTable(table *Table) Option {
	return func(r *Ref) { r.parent = table.ref }
}

// In scopes the element to any container.
func In(c Container) Option {
	return func(r *Ref) { r.parent = c.Ref() }
}

// WithItems sets the item path of a list (default /li).
func WithItems(path string) Option {
	return func(r *Ref) { r.rows = path }
}

// WithRows sets the row path of a table (default: the table's own tr[td]
// rows, directly or through thead, tbody, tfoot).
func WithRows(path string) Option {
	return func(r *Ref) { r.rows = path }
}

// WithColumns sets the column path of a table (default /td).
func WithColumns(path string) Option {
	return func(r *Ref) { r.columns = path }
}

// WithHeaders sets the header path of a table (default: th cells of the
// table's own rows).
func WithHeaders(path string) Option {
	return func(r *Ref) { r.headers = path }
}

// WithCandidates replaces the nested templates tried when reading a cell.
func WithCandidates(inners ...string) Option {
	return func(r *Ref) { r.candidates = inners }
}

// WithProxy sets the template clicked for custom checkboxes and radios.
func WithProxy(template string) Option {
	return func(r *Ref) { r.proxy = template }
}

// WithOverlay turns a select list into an overlay list whose options are
// the nodes matched by template. Row and column placeholders take the
// binding. A template starting with "." is relative to the control, so a
// list scoped in a table row reads only that row's options.
func WithOverlay(template string) Option {
	return func(r *Ref) { r.overlay = template }
}

func newRef(name string, kind Kind, template string, opts []Option) *Ref {
	r := &Ref{name: name, kind: kind, template: template}
	switch kind {
	case KindList:
		r.rows = locator.DefaultItemPath
	case KindTable:
		r.rows = locator.DefaultRowPath
		r.columns = locator.DefaultColumnPath
		r.headers = locator.DefaultHeaderPath
	case KindCell:
		r.candidates = locator.DefaultCellCandidates
	case KindCheckBox, KindRadio:
		r.proxy = DefaultProxy
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Accessors for the declared reference. Parent is nil outside containers.
func (r *Ref) Name() string     { return r.name }
func (r *Ref) Kind() Kind       { return r.kind }
func (r *Ref) Template() string { return r.template }
func (r *Ref) Parent() *Ref     { return r.parent }

// Describe names the reference with its binding: countries[row 2, column 3].
func (r *Ref) Describe(at locator.Binding) string {
	if s := at.String(); s != "" {
		return r.name + "[" + s + "]"
	}
	return r.name
}

// Resolve computes the concrete locator for the binding. Containers are
// resolved recursively through at.Outer and every scoped index is checked
// against the discovered count.
func (r *Ref) Resolve(d core.Driver, at locator.Binding) (string, error) {
	if r.parent == nil {
		return locator.Build(r.template, at), nil
	}
	if at.Row < 1 {
		return "", core.ErrInvalidBinding.WithMessagef("%s: %s needs a row index >= 1", r.name, r.parent.name)
	}
	p := r.parent
	root, err := p.Resolve(d, at.OuterBinding())
	if err != nil {
		return "", err
	}
	if err := p.checkRow(d, root, at.Row); err != nil {
		return "", err
	}

	ctx := locator.Context{
		Root:       root,
		RowPath:    p.rows,
		ColumnPath: p.columns,
		Inner:      r.template,
		Binding:    locator.Binding{Row: at.Row, Column: at.Column},
		Explicit:   r.anchors(),
	}
	switch {
	case p.kind == KindList:
		ctx.Scope = locator.ScopeListRow
	case at.Column == 0:
		if r.kind == KindCell {
			return "", core.ErrInvalidBinding.WithMessagef("%s: %s needs a column index >= 1", r.name, p.name)
		}
		ctx.Scope = locator.ScopeCellElement
	default:
		if at.Column < 1 {
			return "", core.ErrInvalidBinding.WithMessagef("%s: column index must be >= 1", r.name)
		}
		if err := p.checkColumn(d, root, at.Row, at.Column); err != nil {
			return "", err
		}
		ctx.Scope = locator.ScopeCellElement
		if r.template == "" {
			ctx.Scope = locator.ScopeTableCell
		}
	}
	return ctx.Locator(), nil
}

// anchors reports whether other locators are composed under r's own, which
// then pins index 1 explicitly.
func (r *Ref) anchors() bool {
	return r.kind.IsContainer() || strings.HasPrefix(r.overlay, ".")
}

// rowsLocator matches every row (or item) of the container at root.
func (r *Ref) rowsLocator(root string) string {
	return locator.Under(root, locator.Build(r.rows, locator.Root))
}

// columnsLocator matches every cell of one row. The explicit position is
// only used for counting.
func (r *Ref) columnsLocator(root string, row int) string {
	return "(" + r.rowsLocator(root) + ")[" + strconv.Itoa(row) + "]" + locator.Build(r.columns, locator.Root)
}

func (r *Ref) checkRow(d core.Driver, root string, row int) error {
	n, err := d.Count(r.rowsLocator(root))
	if err != nil {
		return fmt.Errorf("count rows of %s: %w", r.name, err)
	}
	if n == 0 {
		if err := r.mustExist(d, root); err != nil {
			return err
		}
	}
	if row > n {
		return core.ErrIndexOutOfRange.WithMessagef("%s: row %d exceeds %d rows", r.name, row, n).
			WithDetails(map[string]interface{}{"row": row, "count": n})
	}
	return nil
}

func (r *Ref) checkColumn(d core.Driver, root string, row, col int) error {
	n, err := d.Count(r.columnsLocator(root, row))
	if err != nil {
		return fmt.Errorf("count columns of %s: %w", r.name, err)
	}
	if col > n {
		return core.ErrIndexOutOfRange.WithMessagef("%s: column %d exceeds %d columns in row %d", r.name, col, n, row).
			WithDetails(map[string]interface{}{"row": row, "column": col, "count": n})
	}
	return nil
}

func (r *Ref) mustExist(d core.Driver, loc string) error {
	_, ok, err := d.Find(core.Query{Locator: loc, Kind: string(r.kind)})
	if err != nil {
		return err
	}
	if !ok {
		return notFound(r, loc)
	}
	return nil
}

func notFound(r *Ref, loc string) error {
	return core.ErrElementNotFound.WithMessagef("element %q not found", r.name).
		WithDetails(map[string]interface{}{"element": r.name, "locator": loc})
}

// IsNotFound reports whether err means the element is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, core.ErrElementNotFound)
}
