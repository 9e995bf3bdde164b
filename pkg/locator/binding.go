// Package locator composes concrete XPath locators for element references
// from their declared templates and the caller's row/column binding.
package locator

import (
	"fmt"
	"strconv"
	"strings"
)

// Binding is the row/column address supplied for one resolution call.
// Indexes are 1-based; zero means "not addressed". Outer carries the
// binding of an enclosing container when containers are nested.
type Binding struct {
	Row    int
	Column int
	Outer  *Binding
}

// Root is the empty binding used for page-level references.
var Root = Binding{}

// Row addresses a list item or table row.
func Row(n int) Binding {
	return Binding{Row: n}
}

// Cell addresses a table cell.
func Cell(row, col int) Binding {
	return Binding{Row: row, Column: col}
}

// In returns a copy of b nested inside the given container binding.
func (b Binding) In(outer Binding) Binding {
	b.Outer = &outer
	return b
}

// OuterBinding returns the enclosing container's binding, or Root.
func (b Binding) OuterBinding() Binding {
	if b.Outer == nil {
		return Root
	}
	return *b.Outer
}

// IsRoot reports whether the binding addresses nothing.
func (b Binding) IsRoot() bool {
	return b.Row == 0 && b.Column == 0 && b.Outer == nil
}

// String renders the binding for diagnostics: "row 2, column 3".
func (b Binding) String() string {
	var parts []string
	if b.Row != 0 {
		parts = append(parts, "row "+strconv.Itoa(b.Row))
	}
	if b.Column != 0 {
		parts = append(parts, "column "+strconv.Itoa(b.Column))
	}
	s := strings.Join(parts, ", ")
	if b.Outer != nil && !b.Outer.IsRoot() {
		if s == "" {
			return b.Outer.String()
		}
		s = fmt.Sprintf("%s in %s", s, b.Outer.String())
	}
	return s
}
