package locator

import (
	"iter"
	"strings"
)

// Scope is the structural context a reference is resolved in.
type Scope int

const (
	ScopeRoot        Scope = iota // Page or section, fixed locator
	ScopeListRow                  // Item of a list
	ScopeTableCell                // Row then column of a table
	ScopeCellElement              // Element nested inside a table cell
)

// String returns the string representation of Scope
func (s Scope) String() string {
	switch s {
	case ScopeRoot:
		return "root"
	case ScopeListRow:
		return "list row"
	case ScopeTableCell:
		return "table cell"
	case ScopeCellElement:
		return "cell element"
	default:
		return "unknown"
	}
}

// Context is built for one resolution call and discarded afterwards.
// Root holds the already-resolved container locator (or the element's own
// template for ScopeRoot).
//
// Explicit renders index 1 as [1]. It is set when the locator becomes the
// root of a nested container, where an unindexed first row would match the
// same path in every row.
type Context struct {
	Scope      Scope
	Root       string
	RowPath    string
	ColumnPath string
	Inner      string
	Binding    Binding
	Explicit   bool
}

// Locator composes the concrete locator for the context.
func (c Context) Locator() string {
	switch c.Scope {
	case ScopeListRow:
		return c.row() + Build(c.Inner, c.Binding)
	case ScopeTableCell:
		return c.cell()
	case ScopeCellElement:
		if c.Binding.Column == 0 {
			return c.row() + Build(c.Inner, c.Binding)
		}
		return c.cell() + Build(c.Inner, c.Binding)
	default:
		return Build(c.Root, c.Binding)
	}
}

// Cell returns the locator of the addressed cell (or row) without the inner
// template. Used as the base of candidate fallback.
func (c Context) Cell() string {
	if c.Binding.Column == 0 {
		return c.row()
	}
	return c.cell()
}

func (c Context) row() string {
	path := c.RowPath
	if path == "" {
		path = DefaultRowPath
	}
	if strings.Contains(path, RowPlaceholder) {
		return c.Root + indexed(path, RowPlaceholder, c.position(c.Binding.Row))
	}
	return nth(c.Root, path, c.position(c.Binding.Row))
}

func (c Context) cell() string {
	path := c.ColumnPath
	if path == "" {
		path = DefaultColumnPath
	}
	return c.row() + indexed(path, ColumnPlaceholder, c.position(c.Binding.Column))
}

func (c Context) position(n int) string {
	if c.Explicit && n == 1 {
		return "[1]"
	}
	return Position(n)
}

// Candidates yields base+inner for each inner template, in order.
// An empty inner yields base itself.
func Candidates(base string, inners []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, inner := range inners {
			if !yield(base + inner) {
				return
			}
		}
	}
}

// FirstExisting walks candidates lazily and returns the first one for which
// exists reports true. No match is reported as ok == false, never as an
// error. An error from exists stops the walk.
func FirstExisting(cands iter.Seq[string], exists func(string) (bool, error)) (string, bool, error) {
	for loc := range cands {
		ok, err := exists(loc)
		if err != nil {
			return "", false, err
		}
		if ok {
			return loc, true, nil
		}
	}
	return "", false, nil
}

// Join appends a relative template to a base locator, normalising the slash.
func Join(base, rel string) string {
	if rel == "" {
		return base
	}
	if base == "" || strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, "[") {
		return base + rel
	}
	return base + "/" + rel
}
