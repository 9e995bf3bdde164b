package flow

import (
	"errors"
	"strings"
	"testing"

	"github.com/devicelab-dev/uicheck/pkg/compare"
	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/element"
	"github.com/devicelab-dev/uicheck/pkg/locator"
	"github.com/devicelab-dev/uicheck/pkg/verify"
)

func mustParse(t *testing.T, content string) *Flow {
	t.Helper()
	f, err := Parse([]byte(content), "checks/sample.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return f
}

func TestBuild_ExpandsAndBinds(t *testing.T) {
	f := mustParse(t, `
env:
  CAPITAL: Mexico
  TABLE: countries
elements:
  countries: {kind: table, locator: "//table[@id='${TABLE}']"}
  capital: {kind: cell, in: countries}
  amount: {kind: field, locator: "//input[@id='a']"}
  country: {kind: select, locator: "//select[@id='country']"}
checks:
  - label: capitals
    do:
      - set: {element: amount, value: "${1 + 1}"}
      - choose: {element: country, index: [1, 3]}
    expect:
      - element: capital
        row: 2
        column: 3
        value: ${CAPITAL}
      - element: amount
        value: {gt: "${limit}"}
      - element: countries
        count: 4
`)
	js := NewEngine(f, map[string]string{"limit": "1"})

	page, blocks, err := Build(f, js)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := strings.Join(page.Names(), ","); got != "countries,capital,amount,country" {
		t.Errorf("Names() = %s", got)
	}
	table, _ := page.Lookup("countries")
	if table.Ref().Template() != "//table[@id='countries']" {
		t.Errorf("table template = %q, want expanded", table.Ref().Template())
	}
	capital, _ := page.Lookup("capital")
	if capital.Ref().Parent() != table.Ref() {
		t.Error("capital should be scoped to countries")
	}

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	block := blocks[0]
	if block.Label != "capitals" || block.Expectations.Label != "capitals" {
		t.Errorf("labels = %q / %q", block.Label, block.Expectations.Label)
	}
	if block.Expectations.Len() != 3 {
		t.Errorf("Len() = %d, want 3", block.Expectations.Len())
	}

	entries := block.Expectations.Entries()
	if entries[0].At != (locator.Binding{Row: 2, Column: 3}) {
		t.Errorf("binding = %+v", entries[0].At)
	}
	if entries[0].Checks[0].Spec != compare.Equals("Mexico") {
		t.Errorf("value spec = %+v", entries[0].Checks[0].Spec)
	}
	gt := entries[1].Checks[0].Spec
	if gt.Op != compare.OpGreaterThan || gt.Operand != "1" {
		t.Errorf("gt spec = %+v", gt)
	}
	if entries[2].Checks[0].Property != verify.PropCount {
		t.Errorf("property = %s", entries[2].Checks[0].Property)
	}

	set := block.Actions[0]
	if set.Value != "2" {
		t.Errorf("set value = %q, want 2", set.Value)
	}
	if _, ok := set.Subject.(element.Setter); !ok {
		t.Errorf("set subject %T is not a setter", set.Subject)
	}
	choose := block.Actions[1]
	if choose.SelectBy != core.SelectByIndex || strings.Join(choose.Keys, ",") != "1,3" {
		t.Errorf("choose = %+v", choose)
	}
}

func TestBuild_NativeExpressionValue(t *testing.T) {
	f := mustParse(t, `
elements:
  amount: {kind: field, locator: "//input[@id='a']"}
checks:
  - expect:
      - element: amount
        value: "${2 * 3}"
`)
	_, blocks, err := Build(f, NewEngine(f, nil))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	spec := blocks[0].Expectations.Entries()[0].Checks[0].Spec
	if spec.Operand != int64(6) {
		t.Errorf("operand = %#v, want int64 6", spec.Operand)
	}
}

func TestBuild_NestedOuterBinding(t *testing.T) {
	f := mustParse(t, `
elements:
  orders: {kind: table, locator: "//table[@id='orders']"}
  lines: {kind: table, locator: "//table", in: orders}
  sku: {kind: cell, in: lines}
checks:
  - expect:
      - element: sku
        row: 1
        column: 2
        outer: {row: 3, column: 4}
        caption: A-1
`)
	_, blocks, err := Build(f, NewEngine(f, nil))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	at := blocks[0].Expectations.Entries()[0].At
	if at.Row != 1 || at.Column != 2 || at.Outer == nil || at.Outer.Row != 3 || at.Outer.Column != 4 {
		t.Errorf("binding = %+v", at)
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		sentinel error
		message string
	}{
		{
			name:     "unknown element in expect",
			content:  "checks:\n  - expect:\n      - element: ghost\n        exists: true\n",
			sentinel: core.ErrInvalidConfig,
			message:  `unknown element "ghost"`,
		},
		{
			name:     "unknown container",
			content:  "elements:\n  c: {kind: cell, in: nowhere}\n",
			sentinel: core.ErrInvalidConfig,
			message:  `unknown element "nowhere"`,
		},
		{
			name:     "in is not a container",
			content:  "elements:\n  user: {kind: field, locator: //input}\n  c: {kind: cell, in: user}\n",
			sentinel: core.ErrInvalidConfig,
			message:  "not a list or table",
		},
		{
			name:     "nesting cycle",
			content:  "elements:\n  a: {kind: table, locator: //t, in: b}\n  b: {kind: table, locator: //t, in: a}\n",
			sentinel: core.ErrInvalidConfig,
			message:  "nested in itself",
		},
		{
			name:     "unknown kind",
			content:  "elements:\n  a: {kind: slider, locator: //x}\n",
			sentinel: core.ErrInvalidConfig,
			message:  "unknown kind",
		},
		{
			name:     "missing locator",
			content:  "elements:\n  a: {kind: field}\n",
			sentinel: core.ErrMissingRequired,
			message:  "locator is required",
		},
		{
			name:     "unknown property",
			content:  "elements:\n  a: //x\nchecks:\n  - expect:\n      - element: a\n        colour: red\n",
			sentinel: core.ErrUnknownProperty,
			message:  `unknown property "colour", want one of: broken,`,
		},
		{
			name:     "unsupported property",
			content:  "elements:\n  a: //x\nchecks:\n  - expect:\n      - element: a\n        checked: true\n",
			sentinel: core.ErrUnsupportedProperty,
		},
		{
			name:     "unknown operator",
			content:  "elements:\n  a: //x\nchecks:\n  - expect:\n      - element: a\n        caption: {roughly: x}\n",
			sentinel: core.ErrInvalidSpec,
			message:  `unknown operator "roughly", want one of: contains,`,
		},
		{
			name:     "non numeric relational",
			content:  "elements:\n  a: //x\nchecks:\n  - expect:\n      - element: a\n        caption: {gt: lots}\n",
			sentinel: core.ErrInvalidSpec,
		},
		{
			name:     "failing expression",
			content:  "elements:\n  a: //x\nchecks:\n  - expect:\n      - element: a\n        caption: ${undefinedThing.x}\n",
			sentinel: core.ErrInvalidConfig,
		},
		{
			name:     "action not supported by kind",
			content:  "elements:\n  a: //x\nchecks:\n  - do:\n      - check: a\n",
			sentinel: core.ErrInvalidConfig,
			message:  "cannot check a (label)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustParse(t, tt.content)
			_, _, err := Build(f, NewEngine(f, nil))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want %v", err, tt.sentinel)
			}
			if !strings.HasPrefix(err.Error(), "checks/sample.yaml:") {
				t.Errorf("error %q should name the file", err)
			}
			if tt.message != "" && !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error = %q, want it to contain %q", err, tt.message)
			}
		})
	}
}

func TestNewEngine_OverridesWin(t *testing.T) {
	f := mustParse(t, "env:\n  WHO: file\n")
	js := NewEngine(f, map[string]string{"WHO": "flag"})

	got, err := js.ExpandVariables("${WHO}")
	if err != nil {
		t.Fatalf("ExpandVariables() error = %v", err)
	}
	if got != "flag" {
		t.Errorf("WHO = %q, want flag", got)
	}
}

func TestPagePath(t *testing.T) {
	tests := []struct {
		page string
		want string
	}{
		{"", ""},
		{"countries.html", "checks/countries.html"},
		{"/abs/page.html", "/abs/page.html"},
	}
	for _, tt := range tests {
		f := &Flow{SourcePath: "checks/sample.yaml", Config: Config{Page: tt.page}}
		if got := f.PagePath(); got != tt.want {
			t.Errorf("PagePath(%q) = %q, want %q", tt.page, got, tt.want)
		}
	}
}
