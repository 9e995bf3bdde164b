package verify

import (
	"sort"
	"strings"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/element"
	"github.com/devicelab-dev/uicheck/pkg/locator"
)

// Property names one observable aspect of an element.
type Property string

const (
	PropExists      Property = "exists"
	PropVisible     Property = "visible"
	PropEnabled     Property = "enabled"
	PropValue       Property = "value"
	PropCaption     Property = "caption"
	PropChecked     Property = "checked"
	PropSelected    Property = "selected"
	PropOptions     Property = "options"
	PropSelection   Property = "selection"
	PropCount       Property = "count"
	PropItems       Property = "items"
	PropColumns     Property = "columns"
	PropHeaders     Property = "headers"
	PropHref        Property = "href"
	PropBroken      Property = "broken"
	PropReadOnly    Property = "readonly"
	PropMaxLength   Property = "maxlength"
	PropPlaceholder Property = "placeholder"
)

// supports maps each property to the capability check of the kinds that
// expose it.
var supports = map[Property]func(element.Element) bool{
	PropExists:      func(element.Element) bool { return true },
	PropVisible:     func(element.Element) bool { return true },
	PropEnabled:     func(element.Element) bool { return true },
	PropValue:       is[element.Valuer],
	PropCaption:     is[element.Captioner],
	PropChecked:     is[element.Checker],
	PropSelected:    is[element.Picker],
	PropOptions:     is[element.Chooser],
	PropSelection:   is[element.Chooser],
	PropCount:       is[element.Counter],
	PropItems:       is[element.Itemizer],
	PropColumns:     is[element.Tabular],
	PropHeaders:     is[element.Tabular],
	PropHref:        is[element.Linker],
	PropBroken:      is[element.Imager],
	PropReadOnly:    is[element.Constrained],
	PropMaxLength:   is[element.Constrained],
	PropPlaceholder: is[element.Constrained],
}

func is[T element.Element](el element.Element) bool {
	_, ok := el.(T)
	return ok
}

// ParseProperty validates a property name.
func ParseProperty(name string) (Property, error) {
	p := Property(name)
	if _, ok := supports[p]; !ok {
		known := make([]string, 0, len(supports))
		for _, k := range Properties() {
			known = append(known, string(k))
		}
		return "", core.ErrUnknownProperty.WithMessagef("unknown property %q, want one of: %s", name, strings.Join(known, ", "))
	}
	return p, nil
}

// Properties lists every known property, sorted.
func Properties() []Property {
	out := make([]Property, 0, len(supports))
	for p := range supports {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SupportedBy reports whether the element's kind exposes p.
func (p Property) SupportedBy(el element.Element) bool {
	f, ok := supports[p]
	return ok && f(el)
}

// absenceIsValue reports the properties for which a missing element is the
// actual value false rather than a failure.
func (p Property) absenceIsValue() bool {
	return p == PropExists || p == PropVisible
}

// read fetches the actual value of p through the element's capabilities.
func read(d core.Driver, el element.Element, at locator.Binding, p Property) (any, error) {
	switch p {
	case PropExists:
		ok, err := el.Exists(d, at)
		return ok, err
	case PropVisible:
		ok, err := el.Visible(d, at)
		return ok, err
	case PropEnabled:
		ok, err := el.Enabled(d, at)
		return ok, err
	}

	switch p {
	case PropValue:
		if x, ok := el.(element.Valuer); ok {
			v, err := x.Value(d, at)
			return v, err
		}
	case PropCaption:
		if x, ok := el.(element.Captioner); ok {
			v, err := x.Caption(d, at)
			return v, err
		}
	case PropChecked:
		if x, ok := el.(element.Checker); ok {
			v, err := x.Checked(d, at)
			return v, err
		}
	case PropSelected:
		if x, ok := el.(element.Picker); ok {
			v, err := x.Selected(d, at)
			return v, err
		}
	case PropOptions:
		if x, ok := el.(element.Chooser); ok {
			v, err := x.Options(d, at)
			return v, err
		}
	case PropSelection:
		if x, ok := el.(element.Chooser); ok {
			v, err := x.Selection(d, at)
			return v, err
		}
	case PropCount:
		if x, ok := el.(element.Counter); ok {
			v, err := x.Count(d, at)
			return v, err
		}
	case PropItems:
		if x, ok := el.(element.Itemizer); ok {
			v, err := x.Items(d, at)
			return v, err
		}
	case PropColumns:
		if x, ok := el.(element.Tabular); ok {
			v, err := x.ColumnCount(d, at)
			return v, err
		}
	case PropHeaders:
		if x, ok := el.(element.Tabular); ok {
			v, err := x.Headers(d, at)
			return v, err
		}
	case PropHref:
		if x, ok := el.(element.Linker); ok {
			v, err := x.Href(d, at)
			return v, err
		}
	case PropBroken:
		if x, ok := el.(element.Imager); ok {
			v, err := x.Broken(d, at)
			return v, err
		}
	case PropReadOnly:
		if x, ok := el.(element.Constrained); ok {
			v, err := x.ReadOnly(d, at)
			return v, err
		}
	case PropMaxLength:
		if x, ok := el.(element.Constrained); ok {
			v, err := x.MaxLength(d, at)
			return v, err
		}
	case PropPlaceholder:
		if x, ok := el.(element.Constrained); ok {
			v, err := x.Placeholder(d, at)
			return v, err
		}
	}
	return nil, unsupported(el, p)
}

func unsupported(el element.Element, p Property) error {
	return core.ErrUnsupportedProperty.WithMessagef("%s (%s) has no property %q", el.Ref().Name(), el.Ref().Kind(), p)
}
