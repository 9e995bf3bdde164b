package element

import (
	"strconv"
	"strings"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/locator"
)

// SelectList is a native select control or, with WithOverlay, a custom
// dropdown whose options are rendered as separate nodes.
type SelectList struct{ base }

// NewSelectList declares a select list reference. Pass WithOverlay for a
// custom dropdown.
func NewSelectList(name, template string, opts ...Option) *SelectList {
	return &SelectList{base{newRef(name, KindSelect, template, opts)}}
}

// IsOverlay reports whether the list is a custom dropdown.
func (s *SelectList) IsOverlay() bool {
	return s.ref.overlay != ""
}

// Options returns the option captions in document order.
func (s *SelectList) Options(d core.Driver, at locator.Binding) ([]string, error) {
	if s.IsOverlay() {
		return s.overlayTexts(d, at)
	}
	opts, err := s.native(d, at)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(opts))
	for i, o := range opts {
		texts[i] = normalize(o.Text)
	}
	return texts, nil
}

// Selection returns the captions of the selected options. For overlay lists
// it is the caption shown by the control.
func (s *SelectList) Selection(d core.Driver, at locator.Binding) ([]string, error) {
	if s.IsOverlay() {
		text, err := s.text(d, at)
		if err != nil {
			return nil, err
		}
		if text = normalize(text); text == "" {
			return []string{}, nil
		}
		return []string{text}, nil
	}
	opts, err := s.native(d, at)
	if err != nil {
		return nil, err
	}
	selected := []string{}
	for _, o := range opts {
		if o.Selected {
			selected = append(selected, normalize(o.Text))
		}
	}
	return selected, nil
}

// Value is the first selected caption, or "".
func (s *SelectList) Value(d core.Driver, at locator.Binding) (string, error) {
	sel, err := s.Selection(d, at)
	if err != nil || len(sel) == 0 {
		return "", err
	}
	return sel[0], nil
}

// Count is the number of options.
func (s *SelectList) Count(d core.Driver, at locator.Binding) (int, error) {
	opts, err := s.Options(d, at)
	return len(opts), err
}

// Choose picks one option by caption, 1-based index or value.
func (s *SelectList) Choose(d core.Driver, at locator.Binding, by core.SelectBy, key string) error {
	h, loc, err := s.find(d, at)
	if err != nil {
		return err
	}
	if !s.IsOverlay() {
		return d.SelectOption(h, by, key)
	}

	if err := d.Click(h); err != nil {
		return err
	}
	opt, err := s.overlayOption(s.optionsLocator(loc, at), by, key)
	if err != nil {
		return err
	}
	oh, ok, err := d.Find(core.Query{Locator: opt, Kind: string(KindSelect), Visibility: core.VisibleOnly})
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrOptionNotFound.WithMessagef("%s: no option with %s %q", s.ref.Describe(at), by, key).
			WithDetails(map[string]interface{}{"locator": loc, "option": opt})
	}
	return d.Click(oh)
}

// ChooseAll applies each key in turn. Earlier picks are not rolled back
// when a later one fails.
func (s *SelectList) ChooseAll(d core.Driver, at locator.Binding, by core.SelectBy, keys []string) error {
	for _, key := range keys {
		if err := s.Choose(d, at, by, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *SelectList) native(d core.Driver, at locator.Binding) ([]core.Option, error) {
	h, _, err := s.find(d, at)
	if err != nil {
		return nil, err
	}
	return d.Options(h)
}

// optionsLocator matches the overlay's option nodes for the control resolved
// at loc. The binding fills placeholders. A template starting with "." is
// read from the control itself.
func (s *SelectList) optionsLocator(loc string, at locator.Binding) string {
	t := locator.Build(s.ref.overlay, at)
	if strings.HasPrefix(t, ".") {
		return loc + "/" + strings.TrimPrefix(t, "./")
	}
	return t
}

func (s *SelectList) overlayOption(options string, by core.SelectBy, key string) (string, error) {
	switch by {
	case core.SelectByIndex:
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 {
			return "", core.ErrInvalidBinding.WithMessagef("%s: option index %q must be >= 1", s.ref.name, key)
		}
		return "(" + options + ")[" + strconv.Itoa(n) + "]", nil
	case core.SelectByValue:
		return options + "[@data-value=" + locator.Literal(key) + "]", nil
	default:
		return options + "[normalize-space(.)=" + locator.Literal(key) + "]", nil
	}
}

func (s *SelectList) overlayTexts(d core.Driver, at locator.Binding) ([]string, error) {
	_, loc, err := s.find(d, at)
	if err != nil {
		return nil, err
	}
	options := s.optionsLocator(loc, at)
	n, err := d.Count(options)
	if err != nil {
		return nil, err
	}
	return texts(d, s.ref, options, n)
}

// texts reads the text of the first n matches of loc.
func texts(d core.Driver, r *Ref, loc string, n int) ([]string, error) {
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		item := "(" + loc + ")[" + strconv.Itoa(i) + "]"
		h, ok, err := d.Find(core.Query{Locator: item, Kind: string(r.kind)})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, notFound(r, item)
		}
		t, err := d.Text(h)
		if err != nil {
			return nil, err
		}
		out = append(out, normalize(t))
	}
	return out, nil
}
