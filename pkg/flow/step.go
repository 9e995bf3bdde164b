package flow

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ActionType is an imperative operation run before a block's expectations.
type ActionType string

// Action type constants.
const (
	ActionClick      ActionType = "click"
	ActionSet        ActionType = "set"
	ActionCheck      ActionType = "check"
	ActionUncheck    ActionType = "uncheck"
	ActionChoose     ActionType = "choose"
	ActionScreenshot ActionType = "screenshot"
)

var actionTypes = map[ActionType]bool{
	ActionClick:      true,
	ActionSet:        true,
	ActionCheck:      true,
	ActionUncheck:    true,
	ActionChoose:     true,
	ActionScreenshot: true,
}

// Action is one parsed action.
//
//	- click: submit
//	- set: {element: username, value: hello}
//	- choose: {element: country, text: Peru}
//	- screenshot: after login
type Action struct {
	Type    ActionType
	Element string
	Target  Target
	Value   string   // set
	By      string   // choose: text, index or value
	Keys    []string // choose
	Label   string   // screenshot
	Line    int
}

// Describe returns a human-readable description of the action.
func (a Action) Describe() string {
	switch a.Type {
	case ActionScreenshot:
		return fmt.Sprintf("screenshot %q", a.Label)
	case ActionSet:
		return fmt.Sprintf("set %s to %q", a.Element, a.Value)
	case ActionChoose:
		return fmt.Sprintf("choose %v by %s in %s", a.Keys, a.By, a.Element)
	default:
		return fmt.Sprintf("%s %s", a.Type, a.Element)
	}
}

type actionRaw struct {
	Target  `yaml:",inline"`
	Element string      `yaml:"element"`
	Value   string      `yaml:"value"`
	Text    interface{} `yaml:"text"`
	Index   interface{} `yaml:"index"`
	Val     interface{} `yaml:"option"`
	Label   string      `yaml:"label"`
}

func parseAction(node *yaml.Node, sourcePath string) (Action, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return Action{}, &ParseError{Path: sourcePath, Line: node.Line, Message: "action must be a mapping with one key"}
	}
	key, value := node.Content[0], node.Content[1]
	a := Action{Type: ActionType(key.Value), Line: key.Line}
	if !actionTypes[a.Type] {
		return Action{}, &ParseError{Path: sourcePath, Line: key.Line, Message: fmt.Sprintf("unknown action: %s", key.Value)}
	}

	if value.Kind == yaml.ScalarNode {
		if a.Type == ActionScreenshot {
			a.Label = value.Value
		} else {
			a.Element = value.Value
		}
		return a, validateAction(a, sourcePath)
	}

	var raw actionRaw
	if err := value.Decode(&raw); err != nil {
		return Action{}, wrapParseError(sourcePath, value.Line, err)
	}
	a.Element = raw.Element
	a.Target = raw.Target
	a.Value = raw.Value
	a.Label = raw.Label

	if a.Type == ActionChoose {
		for by, keys := range map[string]interface{}{"text": raw.Text, "index": raw.Index, "value": raw.Val} {
			if keys == nil {
				continue
			}
			if a.By != "" {
				return Action{}, &ParseError{Path: sourcePath, Line: key.Line, Message: "choose takes one of text, index, option"}
			}
			a.By = by
			a.Keys = stringList(keys)
		}
	}
	return a, validateAction(a, sourcePath)
}

func validateAction(a Action, sourcePath string) error {
	switch {
	case a.Type != ActionScreenshot && a.Element == "":
		return &ParseError{Path: sourcePath, Line: a.Line, Message: fmt.Sprintf("%s needs an element", a.Type)}
	case a.Type == ActionChoose && len(a.Keys) == 0:
		return &ParseError{Path: sourcePath, Line: a.Line, Message: "choose needs text, index or option"}
	}
	return nil
}

func stringList(v interface{}) []string {
	if list, ok := v.([]interface{}); ok {
		out := make([]string, len(list))
		for i, item := range list {
			out[i] = fmt.Sprint(item)
		}
		return out
	}
	return []string{fmt.Sprint(v)}
}
