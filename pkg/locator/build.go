package locator

import (
	"strconv"
	"strings"
)

// Placeholders recognised in locator templates.
const (
	RowPlaceholder    = "{row}"
	ColumnPlaceholder = "{col}"
)

// Default structural paths for tables and lists. Table paths stay on the
// table's own rows (direct or through thead, tbody, tfoot) so rows of a
// table nested in a cell are never counted or addressed.
const (
	DefaultRowPath    = "/tr[td]|/*[self::thead or self::tbody or self::tfoot]/tr[td]"
	DefaultColumnPath = "/td"
	DefaultHeaderPath = "/tr/th|/*[self::thead or self::tbody or self::tfoot]/tr/th"
	DefaultItemPath   = "/li"
)

// DefaultCellCandidates are tried in order when reading a table cell: the
// cell's own text, then nested controls.
var DefaultCellCandidates = []string{"[normalize-space(text())]", "/input", "/textarea", "/select"}

// Position renders the positional suffix for a 1-based index.
// Index 1 (and anything below) is the first match and carries no suffix.
func Position(n int) string {
	if n <= 1 {
		return ""
	}
	return "[" + strconv.Itoa(n) + "]"
}

// Build substitutes the binding into a template's placeholders.
func Build(template string, b Binding) string {
	if !strings.Contains(template, "{") {
		return template
	}
	r := strings.NewReplacer(
		RowPlaceholder, Position(b.Row),
		ColumnPlaceholder, Position(b.Column),
	)
	return r.Replace(template)
}

// indexed applies a positional suffix to path: through the placeholder when
// the path has one, otherwise at the end.
func indexed(path, placeholder, suffix string) string {
	if strings.Contains(path, placeholder) {
		return strings.ReplaceAll(path, placeholder, suffix)
	}
	return path + suffix
}

// Under applies path to the nodes matched by root. Each branch of a union
// path (a|b) is anchored to root separately.
func Under(root, path string) string {
	parts := branches(path)
	if len(parts) == 1 {
		return root + path
	}
	for i, b := range parts {
		parts[i] = root + b
	}
	return strings.Join(parts, " | ")
}

// Nth selects the n-th node of root+path. Single paths take the position
// as a suffix; union paths are grouped first so the position counts over
// the same node set Under matches.
func Nth(root, path string, n int) string {
	return nth(root, path, Position(n))
}

func nth(root, path, suffix string) string {
	if len(branches(path)) == 1 {
		return root + path + suffix
	}
	return "(" + Under(root, path) + ")" + suffix
}

// branches splits a path on its top-level | operators.
func branches(path string) []string {
	var out []string
	depth, start := 0, 0
	var quote rune
	for i, c := range path {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '[' || c == '(':
			depth++
		case c == ']' || c == ')':
			depth--
		case c == '|' && depth == 0:
			out = append(out, strings.TrimSpace(path[start:i]))
			start = i + 1
		}
	}
	return append(out, strings.TrimSpace(path[start:]))
}

// Relative turns a nested template into an expression evaluated against
// an already resolved element.
func Relative(inner string) string {
	switch {
	case inner == "":
		return "self::*"
	case strings.HasPrefix(inner, "["):
		return "self::*" + inner
	case strings.HasPrefix(inner, "/"):
		return "." + inner
	default:
		return "./" + inner
	}
}

// Literal quotes s as an XPath string literal.
func Literal(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}
