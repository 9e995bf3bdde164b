package element

import (
	"strconv"
	"strings"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/locator"
)

// Field is a single-line text input.
type Field struct{ base }

// TextArea is a multi-line text input.
type TextArea struct{ Field }

// NewField declares a text input reference.
func NewField(name, template string, opts ...Option) *Field {
	return &Field{base{newRef(name, KindField, template, opts)}}
}

// NewTextArea declares a multi-line text reference.
func NewTextArea(name, template string, opts ...Option) *TextArea {
	return &TextArea{Field{base{newRef(name, KindTextArea, template, opts)}}}
}

// Value reads the current value of the input.
func (f *Field) Value(d core.Driver, at locator.Binding) (string, error) {
	h, _, err := f.find(d, at)
	if err != nil {
		return "", err
	}
	return d.Value(h)
}

// SetValue replaces the input's value.
func (f *Field) SetValue(d core.Driver, at locator.Binding, value string) error {
	h, _, err := f.find(d, at)
	if err != nil {
		return err
	}
	return d.SetValue(h, value)
}

// ReadOnly reports the readonly attribute.
func (f *Field) ReadOnly(d core.Driver, at locator.Binding) (bool, error) {
	_, ok, err := f.attribute(d, at, "readonly")
	return ok, err
}

// MaxLength returns -1 when the input is unconstrained.
func (f *Field) MaxLength(d core.Driver, at locator.Binding) (int, error) {
	v, ok, err := f.attribute(d, at, "maxlength")
	if err != nil || !ok {
		return -1, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return -1, nil
	}
	return n, nil
}

// Placeholder returns the placeholder attribute, or "".
func (f *Field) Placeholder(d core.Driver, at locator.Binding) (string, error) {
	v, _, err := f.attribute(d, at, "placeholder")
	return v, err
}

// normalize collapses runs of whitespace the way normalize-space() does.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
