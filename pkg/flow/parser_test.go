package flow

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const countriesFile = `
name: countries
tags: [smoke, tables]
page: countries.html
locale: en
env:
  CAPITAL: Mexico
elements:
  username: {kind: field, locator: "//input[@id='user']"}
  countries: {kind: table, locator: "//table[@id='countries']"}
  capital: {kind: cell, in: countries}
  agree: {kind: checkbox, locator: "/input", in: countries}
  banner: "//div[@id='banner']"
checks:
  - label: landing
    do:
      - set: {element: username, value: hello}
      - click: agree
      - screenshot: after typing
      - choose: {element: country, text: [Peru, Chile]}
    expect:
      - element: capital
        row: 2
        column: 3
        value: ${CAPITAL}
        visible: true
      - element: username
        value: {starts_with: he}
        exists: true
  - frame: login
    expect:
      - element: username
        value: inner
`

func TestParse_CheckFile(t *testing.T) {
	flow, err := Parse([]byte(countriesFile), "checks/countries.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if flow.Config.Name != "countries" {
		t.Errorf("Name = %q, want countries", flow.Config.Name)
	}
	if !reflect.DeepEqual(flow.Config.Tags, []string{"smoke", "tables"}) {
		t.Errorf("Tags = %v", flow.Config.Tags)
	}
	if flow.Config.Env["CAPITAL"] != "Mexico" {
		t.Errorf("Env = %v", flow.Config.Env)
	}

	var names []string
	for _, e := range flow.Elements {
		names = append(names, e.Name)
	}
	if strings.Join(names, ",") != "username,countries,capital,agree,banner" {
		t.Errorf("element order = %v", names)
	}
	if flow.Elements[2].In != "countries" || flow.Elements[2].Kind != "cell" {
		t.Errorf("capital = %+v", flow.Elements[2])
	}
	if flow.Elements[4].Kind != "label" || flow.Elements[4].Locator != "//div[@id='banner']" {
		t.Errorf("shorthand element = %+v", flow.Elements[4])
	}

	if len(flow.Checks) != 2 {
		t.Fatalf("expected 2 check blocks, got %d", len(flow.Checks))
	}
	first := flow.Checks[0]
	if first.Label != "landing" || len(first.Actions) != 4 || len(first.Expect) != 2 {
		t.Fatalf("first block = %+v", first)
	}
	if flow.Checks[1].Label != "check 2" || flow.Checks[1].Frame != "login" {
		t.Errorf("second block = %+v", flow.Checks[1])
	}
}

func TestParse_PropertyOrderPreserved(t *testing.T) {
	flow, err := Parse([]byte(countriesFile), "countries.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item := flow.Checks[0].Expect[0]
	if item.Element != "capital" || item.Target.Row != 2 || item.Target.Column != 3 {
		t.Errorf("item = %+v", item)
	}
	if len(item.Props) != 2 || item.Props[0].Name != "value" || item.Props[1].Name != "visible" {
		t.Errorf("props = %+v, want value then visible", item.Props)
	}
	if item.Props[0].Value != "${CAPITAL}" {
		t.Errorf("value = %v, expressions are expanded at build time", item.Props[0].Value)
	}

	second := flow.Checks[0].Expect[1]
	m, ok := second.Props[0].Value.(map[string]interface{})
	if !ok || m["starts_with"] != "he" {
		t.Errorf("operator mapping = %#v", second.Props[0].Value)
	}
	if second.Props[1].Name != "exists" || second.Props[1].Value != true {
		t.Errorf("exists prop = %+v", second.Props[1])
	}
}

func TestParse_Actions(t *testing.T) {
	flow, err := Parse([]byte(countriesFile), "countries.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	actions := flow.Checks[0].Actions

	tests := []struct {
		action   Action
		typ      ActionType
		describe string
	}{
		{actions[0], ActionSet, `set username to "hello"`},
		{actions[1], ActionClick, "click agree"},
		{actions[2], ActionScreenshot, `screenshot "after typing"`},
		{actions[3], ActionChoose, "choose [Peru Chile] by text in country"},
	}
	for _, tt := range tests {
		if tt.action.Type != tt.typ {
			t.Errorf("Type = %s, want %s", tt.action.Type, tt.typ)
		}
		if got := tt.action.Describe(); got != tt.describe {
			t.Errorf("Describe() = %q, want %q", got, tt.describe)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"empty", "   \n", "empty check file"},
		{"not a mapping", "- a\n- b\n", "must be a mapping"},
		{"invalid yaml", "name: [unclosed", "invalid yaml"},
		{"elements not mapping", "elements: [a, b]\n", "elements must be a mapping"},
		{"duplicate element", "elements:\n  a: x\n  a: y\n", "duplicate element"},
		{"unknown action", "checks:\n  - do:\n      - tap: a\n", "unknown action: tap"},
		{"action without element", "checks:\n  - do:\n      - click: {row: 1}\n", "click needs an element"},
		{"choose without keys", "checks:\n  - do:\n      - choose: {element: c}\n", "choose needs"},
		{"expect without element", "checks:\n  - expect:\n      - value: 1\n", "needs an element"},
		{"expect without props", "checks:\n  - expect:\n      - element: a\n        row: 1\n", "no properties"},
		{"expect scalar", "checks:\n  - expect:\n      - a\n", "must be a mapping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), "bad.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a ParseError", err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error = %q, want it to contain %q", err, tt.message)
			}
		})
	}
}

func TestParseError_Format(t *testing.T) {
	withLine := &ParseError{Path: "a.yaml", Line: 3, Message: "boom"}
	if withLine.Error() != "a.yaml:3: boom" {
		t.Errorf("Error() = %q", withLine.Error())
	}
	noLine := &ParseError{Path: "a.yaml", Message: "boom"}
	if noLine.Error() != "a.yaml: boom" {
		t.Errorf("Error() = %q", noLine.Error())
	}
}

func TestDisplayName(t *testing.T) {
	f := &Flow{SourcePath: "checks/login.yaml"}
	if f.DisplayName() != "login" {
		t.Errorf("DisplayName() = %q, want login", f.DisplayName())
	}
	f.Config.Name = "Login page"
	if f.DisplayName() != "Login page" {
		t.Errorf("DisplayName() = %q", f.DisplayName())
	}
}

func TestShouldInclude(t *testing.T) {
	flow := &Flow{Config: Config{Tags: []string{"smoke", "tables"}}}

	tests := []struct {
		name    string
		include []string
		exclude []string
		want    bool
	}{
		{"no filters", nil, nil, true},
		{"include match", []string{"smoke"}, nil, true},
		{"include miss", []string{"regression"}, nil, false},
		{"exclude match", nil, []string{"tables"}, false},
		{"include and exclude", []string{"smoke"}, []string{"tables"}, false},
		{"exclude miss", nil, []string{"slow"}, true},
	}
	for _, tt := range tests {
		if got := ShouldInclude(flow, tt.include, tt.exclude); got != tt.want {
			t.Errorf("%s: ShouldInclude() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("b.yaml", "name: b\ntags: [smoke]\n")
	write("nested/a.yml", "name: a\ntags: [slow]\n")
	write("broken.yaml", "name: [")
	write("notes.txt", "ignored")

	files, err := CollectFiles(dir)
	if err != nil {
		t.Fatalf("CollectFiles() error = %v", err)
	}
	if len(files) != 3 {
		t.Errorf("CollectFiles() = %v, want 3 yaml files", files)
	}

	flows, err := ParseDir(dir, nil, []string{"slow"})
	if err != nil {
		t.Fatalf("ParseDir() error = %v", err)
	}
	if len(flows) != 1 || flows[0].Config.Name != "b" {
		t.Errorf("ParseDir() = %v, want only b", flows)
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
