package flow

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ElementDecl declares one logical element of the page.
// Pure data structure - Build decides how to use it.
type ElementDecl struct {
	Name    string
	Kind    string `yaml:"kind"`
	Locator string `yaml:"locator"`
	In      string `yaml:"in"` // Enclosing list or table

	// Container paths
	Items   string `yaml:"items"`
	Rows    string `yaml:"rows"`
	Columns string `yaml:"columns"`
	Headers string `yaml:"headers"`

	// Cell reading and custom controls
	Candidates []string `yaml:"candidates"`
	Proxy      string   `yaml:"proxy"`
	Overlay    string   `yaml:"overlay"`

	Line int `yaml:"-"`
}

// parseElements decodes the elements mapping, keeping declaration order.
func parseElements(node *yaml.Node, sourcePath string) ([]ElementDecl, error) {
	if node == nil || node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &ParseError{Path: sourcePath, Line: node.Line, Message: "elements must be a mapping"}
	}

	var decls []ElementDecl
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if seen[key.Value] {
			return nil, &ParseError{Path: sourcePath, Line: key.Line, Message: fmt.Sprintf("duplicate element %q", key.Value)}
		}
		seen[key.Value] = true

		var decl ElementDecl
		if value.Kind == yaml.ScalarNode {
			// Shorthand: name: <locator> declares a label
			decl.Kind = "label"
			decl.Locator = value.Value
		} else if err := value.Decode(&decl); err != nil {
			return nil, wrapParseError(sourcePath, value.Line, err)
		}
		decl.Name = key.Value
		decl.Line = key.Line
		decls = append(decls, decl)
	}
	return decls, nil
}
