package verify

import (
	"github.com/devicelab-dev/uicheck/pkg/compare"
	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/element"
	"github.com/devicelab-dev/uicheck/pkg/locator"
)

// Check pairs a property with the spec its actual value is judged by.
type Check struct {
	Property Property
	Spec     compare.Spec
}

// Want builds a check. A compare.Spec is used as is; any other value is an
// Equals literal.
func Want(p Property, expected any) Check {
	if s, ok := expected.(compare.Spec); ok {
		return Check{Property: p, Spec: s}
	}
	return Check{Property: p, Spec: compare.Equals(expected)}
}

// Entry is either an element target with its ordered checks, or a nested
// scope evaluated inside Frame.
type Entry struct {
	Element element.Element
	At      locator.Binding
	Checks  []Check

	Frame string
	Scope *Expectations
}

// IsScope reports whether the entry is a nested frame scope.
func (e Entry) IsScope() bool {
	return e.Scope != nil
}

// Expectations is an ordered expectation map. Label is the step label
// carried by every failure recorded for it.
type Expectations struct {
	Label   string
	entries []Entry
}

// New creates an empty expectation map.
func New(label string) *Expectations {
	return &Expectations{Label: label}
}

// Expect appends checks for el at binding at.
func (e *Expectations) Expect(el element.Element, at locator.Binding, checks ...Check) *Expectations {
	e.entries = append(e.entries, Entry{Element: el, At: at, Checks: checks})
	return e
}

// Within appends a sub-map evaluated inside the named frame.
func (e *Expectations) Within(frame string, sub *Expectations) *Expectations {
	e.entries = append(e.entries, Entry{Frame: frame, Scope: sub})
	return e
}

// Entries returns the entries in declaration order.
func (e *Expectations) Entries() []Entry {
	out := make([]Entry, len(e.entries))
	copy(out, e.entries)
	return out
}

// Len counts element/property pairs, nested scopes included.
func (e *Expectations) Len() int {
	n := 0
	for _, entry := range e.entries {
		if entry.IsScope() {
			n += entry.Scope.Len()
			continue
		}
		n += len(entry.Checks)
	}
	return n
}

// Validate rejects maps that cannot be evaluated at all: unknown or
// unsupported properties, invalid specs, scopes without a frame.
func (e *Expectations) Validate() error {
	for i, entry := range e.entries {
		if entry.IsScope() {
			if entry.Frame == "" {
				return core.ErrInvalidSpec.WithMessagef("entry %d: nested scope needs a frame", i+1)
			}
			if err := entry.Scope.Validate(); err != nil {
				return err
			}
			continue
		}
		if entry.Element == nil {
			return core.ErrInvalidSpec.WithMessagef("entry %d: no element", i+1)
		}
		name := entry.Element.Ref().Name()
		for _, c := range entry.Checks {
			if _, err := ParseProperty(string(c.Property)); err != nil {
				return core.ErrUnknownProperty.WithMessagef("%s: %s", name, err.Error())
			}
			if !c.Property.SupportedBy(entry.Element) {
				return unsupported(entry.Element, c.Property)
			}
			if err := c.Spec.Validate(); err != nil {
				return core.ErrInvalidSpec.WithMessagef("%s %s: %s", name, c.Property, err.Error())
			}
		}
	}
	return nil
}
