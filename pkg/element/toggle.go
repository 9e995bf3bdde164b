package element

import (
	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/locator"
	"github.com/devicelab-dev/uicheck/pkg/logger"
)

// CheckBox is a native or custom checkbox.
type CheckBox struct{ base }

// Radio is a native or custom radio button.
type Radio struct{ base }

// NewCheckBox declares a checkbox reference. WithProxy names a node,
// relative to the input, that is clicked when a native click does not apply.
func NewCheckBox(name, template string, opts ...Option) *CheckBox {
	return &CheckBox{base{newRef(name, KindCheckBox, template, opts)}}
}

// NewRadio declares a radio button reference.
func NewRadio(name, template string, opts ...Option) *Radio {
	return &Radio{base{newRef(name, KindRadio, template, opts)}}
}

// Checked reads the checked state of the box.
func (c *CheckBox) Checked(d core.Driver, at locator.Binding) (bool, error) {
	h, _, err := c.find(d, at)
	if err != nil {
		return false, err
	}
	return d.Checked(h)
}

// SetChecked is a no-op when the box is already in the requested state.
func (c *CheckBox) SetChecked(d core.Driver, at locator.Binding, on bool) error {
	return toggle(d, c.base, at, on)
}

// Checked reads whether the radio is the checked one of its group.
func (r *Radio) Checked(d core.Driver, at locator.Binding) (bool, error) {
	h, _, err := r.find(d, at)
	if err != nil {
		return false, err
	}
	return d.Checked(h)
}

// SetChecked clicks until the radio's state matches on. Clearing a checked
// radio usually fails with core.ErrStateNotApplied, as a click cannot
// uncheck it.
func (r *Radio) SetChecked(d core.Driver, at locator.Binding, on bool) error {
	return toggle(d, r.base, at, on)
}

// Selected is Checked.
func (r *Radio) Selected(d core.Driver, at locator.Binding) (bool, error) {
	return r.Checked(d, at)
}

// Pick checks the radio.
func (r *Radio) Pick(d core.Driver, at locator.Binding) error {
	return toggle(d, r.base, at, true)
}

// toggle clicks the native control, then the proxy, until the state matches.
func toggle(d core.Driver, b base, at locator.Binding, on bool) error {
	h, loc, err := b.find(d, at)
	if err != nil {
		return err
	}
	cur, err := d.Checked(h)
	if err != nil {
		return err
	}
	if cur == on {
		return nil
	}

	clickErr := d.Click(h)
	if clickErr == nil {
		if cur, err = d.Checked(h); err != nil {
			return err
		}
		if cur == on {
			return nil
		}
	}

	if b.ref.proxy != "" {
		proxy := locator.Join(loc, b.ref.proxy)
		logger.Debug("%s: native click did not apply, trying proxy %s", b.ref.name, proxy)
		ph, ok, err := d.Find(core.Query{Locator: proxy, Kind: string(b.ref.kind), Visibility: core.VisibleOnly})
		if err != nil {
			return err
		}
		if ok {
			if err := d.Click(ph); err != nil {
				return err
			}
			if cur, err = d.Checked(h); err != nil {
				return err
			}
			if cur == on {
				return nil
			}
		}
	}

	return core.ErrStateNotApplied.WithMessagef("%s: could not set checked to %v", b.ref.Describe(at), on).WithCause(clickErr)
}
