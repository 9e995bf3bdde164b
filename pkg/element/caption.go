package element

import (
	"strings"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/locator"
)

// Button is a clickable control; its caption falls back to the value
// attribute for input buttons.
type Button struct{ base }

// Label is static text.
type Label struct{ base }

// Link is an anchor.
type Link struct{ base }

// Image is an img element; its caption is the alt text.
type Image struct{ base }

// NewButton declares a button reference.
func NewButton(name, template string, opts ...Option) *Button {
	return &Button{base{newRef(name, KindButton, template, opts)}}
}

// NewLabel declares a static text reference.
func NewLabel(name, template string, opts ...Option) *Label {
	return &Label{base{newRef(name, KindLabel, template, opts)}}
}

// NewLink declares a hyperlink reference.
func NewLink(name, template string, opts ...Option) *Link {
	return &Link{base{newRef(name, KindLink, template, opts)}}
}

// NewImage declares an image reference.
func NewImage(name, template string, opts ...Option) *Image {
	return &Image{base{newRef(name, KindImage, template, opts)}}
}

// Caption is the button text, or its value attribute when the text is blank.
func (b *Button) Caption(d core.Driver, at locator.Binding) (string, error) {
	h, _, err := b.find(d, at)
	if err != nil {
		return "", err
	}
	text, err := d.Text(h)
	if err != nil {
		return "", err
	}
	if text = normalize(text); text != "" {
		return text, nil
	}
	v, _, err := d.Attribute(h, "value")
	return normalize(v), err
}

// Caption is the label text.
func (l *Label) Caption(d core.Driver, at locator.Binding) (string, error) {
	s, err := l.text(d, at)
	return normalize(s), err
}

// Caption is the link text.
func (l *Link) Caption(d core.Driver, at locator.Binding) (string, error) {
	s, err := l.text(d, at)
	return normalize(s), err
}

// Href returns the href attribute.
func (l *Link) Href(d core.Driver, at locator.Binding) (string, error) {
	v, _, err := l.attribute(d, at, "href")
	return v, err
}

// Caption is the alt text.
func (i *Image) Caption(d core.Driver, at locator.Binding) (string, error) {
	v, _, err := i.attribute(d, at, "alt")
	return normalize(v), err
}

// Broken reports an image with no decoded pixels.
func (i *Image) Broken(d core.Driver, at locator.Binding) (bool, error) {
	h, _, err := i.find(d, at)
	if err != nil {
		return false, err
	}
	w, err := d.Property(h, "naturalWidth")
	if err != nil {
		return false, err
	}
	w = strings.TrimSpace(w)
	return w == "" || w == "0", nil
}
