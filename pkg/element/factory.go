package element

import "github.com/devicelab-dev/uicheck/pkg/core"

// New builds an element of the given kind.
func New(kind Kind, name, template string, opts ...Option) (Element, error) {
	switch kind {
	case KindField:
		return NewField(name, template, opts...), nil
	case KindTextArea:
		return NewTextArea(name, template, opts...), nil
	case KindButton:
		return NewButton(name, template, opts...), nil
	case KindLabel:
		return NewLabel(name, template, opts...), nil
	case KindLink:
		return NewLink(name, template, opts...), nil
	case KindImage:
		return NewImage(name, template, opts...), nil
	case KindCheckBox:
		return NewCheckBox(name, template, opts...), nil
	case KindRadio:
		return NewRadio(name, template, opts...), nil
	case KindSelect:
		return NewSelectList(name, template, opts...), nil
	case KindList:
		return NewList(name, template, opts...), nil
	case KindTable:
		return NewTable(name, template, opts...), nil
	case KindCell:
		return NewCell(name, template, opts...), nil
	default:
		return nil, core.ErrInvalidConfig.WithMessagef("element %q: unknown kind %q", name, kind)
	}
}
