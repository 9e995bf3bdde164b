package flow

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/devicelab-dev/uicheck/pkg/compare"
	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/element"
	"github.com/devicelab-dev/uicheck/pkg/jsengine"
	"github.com/devicelab-dev/uicheck/pkg/locator"
	"github.com/devicelab-dev/uicheck/pkg/verify"
)

// Page is the set of elements a check file declares.
type Page struct {
	elements map[string]element.Element
	order    []string
}

// Lookup returns the element declared under name.
func (p *Page) Lookup(name string) (element.Element, bool) {
	el, ok := p.elements[name]
	return el, ok
}

// Names lists the declared elements in file order.
func (p *Page) Names() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Block is a check block bound to the page, ready to run.
type Block struct {
	Label        string
	Frame        string
	Actions      []BoundAction
	Expectations *verify.Expectations
}

// BoundAction is an action with its element resolved.
type BoundAction struct {
	Action
	Subject  element.Element // nil for screenshot
	At       locator.Binding
	SelectBy core.SelectBy
}

// Binding converts the written address to a locator binding.
func (t Target) Binding() locator.Binding {
	b := locator.Cell(t.Row, t.Column)
	if t.Outer != nil {
		b = b.In(t.Outer.Binding())
	}
	return b
}

// NewEngine prepares the expression engine of a check file: process
// environment, then the file's env, then overrides (CLI -e flags).
func NewEngine(f *Flow, overrides map[string]string) *jsengine.Engine {
	js := jsengine.New()
	js.SetVariables(f.Config.Env)
	js.SetVariables(overrides)
	js.ImportEnv()
	js.SetFile(f.SourcePath)
	js.SetLocale(f.Config.Locale)
	return js
}

// PagePath resolves the HTML snapshot path relative to the check file.
func (f *Flow) PagePath() string {
	if f.Config.Page == "" || filepath.IsAbs(f.Config.Page) {
		return f.Config.Page
	}
	return filepath.Join(filepath.Dir(f.SourcePath), f.Config.Page)
}

// Build binds the declarations of f into elements and expectation maps.
// Expressions are expanded with js.
func Build(f *Flow, js *jsengine.Engine) (*Page, []Block, error) {
	page, err := BuildPage(f, js)
	if err != nil {
		return nil, nil, err
	}

	blocks := make([]Block, 0, len(f.Checks))
	for _, cb := range f.Checks {
		block, err := buildBlock(f, page, cb, js)
		if err != nil {
			return nil, nil, err
		}
		blocks = append(blocks, block)
	}
	return page, blocks, nil
}

// BuildPage constructs the declared elements, containers first.
func BuildPage(f *Flow, js *jsengine.Engine) (*Page, error) {
	decls := make(map[string]ElementDecl, len(f.Elements))
	for _, d := range f.Elements {
		decls[d.Name] = d
	}
	page := &Page{elements: make(map[string]element.Element, len(decls))}

	var build func(name string, chain []string) (element.Element, error)
	build = func(name string, chain []string) (element.Element, error) {
		if el, ok := page.elements[name]; ok {
			return el, nil
		}
		for _, c := range chain {
			if c == name {
				return nil, core.ErrInvalidConfig.WithMessagef("element %q is nested in itself", name)
			}
		}
		d, ok := decls[name]
		if !ok {
			return nil, core.ErrInvalidConfig.WithMessagef("unknown element %q", name)
		}

		opts, err := options(d, js)
		if err != nil {
			return nil, lineError(f, d.Line, err)
		}
		if d.In != "" {
			parent, err := build(d.In, append(chain, name))
			if err != nil {
				return nil, lineError(f, d.Line, err)
			}
			c, ok := parent.(element.Container)
			if !ok {
				return nil, lineError(f, d.Line, core.ErrInvalidConfig.WithMessagef("%s: %q is a %s, not a list or table", name, d.In, parent.Ref().Kind()))
			}
			opts = append(opts, element.In(c))
		}

		loc, err := js.ExpandVariables(d.Locator)
		if err != nil {
			return nil, lineError(f, d.Line, err)
		}
		el, err := element.New(element.Kind(d.Kind), name, loc, opts...)
		if err != nil {
			return nil, lineError(f, d.Line, err)
		}
		if loc == "" && d.In == "" {
			return nil, lineError(f, d.Line, core.ErrMissingRequired.WithMessagef("%s: locator is required", name))
		}
		page.elements[name] = el
		return el, nil
	}

	for _, d := range f.Elements {
		if _, err := build(d.Name, nil); err != nil {
			return nil, err
		}
		page.order = append(page.order, d.Name)
	}
	return page, nil
}

func options(d ElementDecl, js *jsengine.Engine) ([]element.Option, error) {
	var opts []element.Option
	add := func(value string, opt func(string) element.Option) error {
		if value == "" {
			return nil
		}
		v, err := js.ExpandVariables(value)
		if err != nil {
			return err
		}
		opts = append(opts, opt(v))
		return nil
	}

	for _, o := range []struct {
		value string
		opt   func(string) element.Option
	}{
		{d.Items, element.WithItems},
		{d.Rows, element.WithRows},
		{d.Columns, element.WithColumns},
		{d.Headers, element.WithHeaders},
		{d.Proxy, element.WithProxy},
		{d.Overlay, element.WithOverlay},
	} {
		if err := add(o.value, o.opt); err != nil {
			return nil, err
		}
	}
	if len(d.Candidates) > 0 {
		opts = append(opts, element.WithCandidates(d.Candidates...))
	}
	return opts, nil
}

func buildBlock(f *Flow, page *Page, cb CheckBlock, js *jsengine.Engine) (Block, error) {
	block := Block{Label: cb.Label, Frame: cb.Frame, Expectations: verify.New(cb.Label)}

	for _, a := range cb.Actions {
		bound, err := bindAction(page, a, js)
		if err != nil {
			return Block{}, lineError(f, a.Line, err)
		}
		block.Actions = append(block.Actions, bound)
	}

	for _, item := range cb.Expect {
		el, ok := page.Lookup(item.Element)
		if !ok {
			return Block{}, lineError(f, item.Line, core.ErrInvalidConfig.WithMessagef("unknown element %q", item.Element))
		}
		checks := make([]verify.Check, 0, len(item.Props))
		for _, p := range item.Props {
			c, err := buildCheck(p, js)
			if err != nil {
				return Block{}, lineError(f, p.Line, err)
			}
			checks = append(checks, c)
		}
		block.Expectations.Expect(el, item.Target.Binding(), checks...)
	}

	if err := block.Expectations.Validate(); err != nil {
		return Block{}, lineError(f, cb.Line, err)
	}
	return block, nil
}

// buildCheck turns a written property into a check: a mapping is a
// one-operator spec, anything else an Equals literal.
func buildCheck(p Prop, js *jsengine.Engine) (verify.Check, error) {
	prop, err := verify.ParseProperty(p.Name)
	if err != nil {
		return verify.Check{}, err
	}
	v, err := expand(p.Value, js)
	if err != nil {
		return verify.Check{}, err
	}
	if m, ok := v.(map[string]interface{}); ok {
		s, err := compare.FromMap(m)
		if err != nil {
			return verify.Check{}, err
		}
		return verify.Check{Property: prop, Spec: s}, nil
	}
	return verify.Want(prop, v), nil
}

func expand(v interface{}, js *jsengine.Engine) (interface{}, error) {
	switch x := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, item := range x {
			e, err := expand(item, js)
			if err != nil {
				return nil, err
			}
			out[k] = e
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, item := range x {
			e, err := expand(item, js)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	default:
		return js.ExpandValue(v)
	}
}

func bindAction(page *Page, a Action, js *jsengine.Engine) (BoundAction, error) {
	bound := BoundAction{Action: a, At: a.Target.Binding()}
	bound.Keys = append([]string(nil), a.Keys...)

	var err error
	if bound.Value, err = js.ExpandVariables(a.Value); err != nil {
		return BoundAction{}, err
	}
	if bound.Label, err = js.ExpandVariables(a.Label); err != nil {
		return BoundAction{}, err
	}
	for i, k := range a.Keys {
		if bound.Keys[i], err = js.ExpandVariables(k); err != nil {
			return BoundAction{}, err
		}
	}
	if a.Type == ActionScreenshot {
		return bound, nil
	}

	el, ok := page.Lookup(a.Element)
	if !ok {
		return BoundAction{}, core.ErrInvalidConfig.WithMessagef("unknown element %q", a.Element)
	}
	bound.Subject = el

	var capable bool
	switch a.Type {
	case ActionClick:
		_, capable = el.(element.Clicker)
	case ActionSet:
		_, capable = el.(element.Setter)
	case ActionCheck, ActionUncheck:
		_, capable = el.(element.Checker)
	case ActionChoose:
		_, capable = el.(element.Chooser)
		switch a.By {
		case "index":
			bound.SelectBy = core.SelectByIndex
		case "value":
			bound.SelectBy = core.SelectByValue
		default:
			bound.SelectBy = core.SelectByText
		}
	}
	if !capable {
		return BoundAction{}, core.ErrInvalidConfig.WithMessagef("cannot %s %s (%s)", a.Type, a.Element, el.Ref().Kind())
	}
	return bound, nil
}

func lineError(f *Flow, line int, err error) error {
	if line > 0 {
		return fmt.Errorf("%s:%d: %w", f.SourcePath, line, err)
	}
	return fmt.Errorf("%s: %w", f.SourcePath, err)
}

// PageExists reports whether the configured page snapshot is readable.
func (f *Flow) PageExists() bool {
	p := f.PagePath()
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}
