package flow

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/uicheck/pkg/logger"
)

// ParseError represents a parsing error with location info.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// reserved keys of an expect item; every other key is a property.
var reserved = map[string]bool{"element": true, "row": true, "column": true, "outer": true}

type rawFlow struct {
	Config   `yaml:",inline"`
	Elements yaml.Node  `yaml:"elements"`
	Checks   []rawBlock `yaml:"checks"`
}

type rawBlock struct {
	Label  string      `yaml:"label"`
	Frame  string      `yaml:"frame"`
	Do     []yaml.Node `yaml:"do"`
	Expect []yaml.Node `yaml:"expect"`
}

// ParseFile parses a single check file.
func ParseFile(path string) (*Flow, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is user-provided check file
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data, path)
}

// Parse parses check file content.
func Parse(data []byte, sourcePath string) (*Flow, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, &ParseError{Path: sourcePath, Line: 1, Message: "empty check file"}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: sourcePath, Message: fmt.Sprintf("invalid yaml: %v", err)}
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{Path: sourcePath, Line: root.Line, Message: "check file must be a mapping"}
	}

	var raw rawFlow
	if err := root.Decode(&raw); err != nil {
		return nil, wrapParseError(sourcePath, root.Line, err)
	}

	flow := &Flow{SourcePath: sourcePath, Config: raw.Config}

	elements, err := parseElements(&raw.Elements, sourcePath)
	if err != nil {
		return nil, err
	}
	flow.Elements = elements

	for i, rb := range raw.Checks {
		block, err := parseBlock(rb, sourcePath)
		if err != nil {
			return nil, err
		}
		if block.Label == "" {
			block.Label = fmt.Sprintf("check %d", i+1)
		}
		flow.Checks = append(flow.Checks, block)
	}

	return flow, nil
}

func parseBlock(rb rawBlock, sourcePath string) (CheckBlock, error) {
	block := CheckBlock{Label: rb.Label, Frame: rb.Frame}
	for i := range rb.Do {
		a, err := parseAction(&rb.Do[i], sourcePath)
		if err != nil {
			return CheckBlock{}, err
		}
		block.Actions = append(block.Actions, a)
	}
	for i := range rb.Expect {
		item, err := parseExpect(&rb.Expect[i], sourcePath)
		if err != nil {
			return CheckBlock{}, err
		}
		block.Expect = append(block.Expect, item)
	}
	if len(rb.Expect) > 0 {
		block.Line = rb.Expect[0].Line
	}
	return block, nil
}

// parseExpect walks the item's mapping node so properties keep their
// written order.
func parseExpect(node *yaml.Node, sourcePath string) (ExpectItem, error) {
	if node.Kind != yaml.MappingNode {
		return ExpectItem{}, &ParseError{Path: sourcePath, Line: node.Line, Message: "expect item must be a mapping"}
	}

	item := ExpectItem{Line: node.Line}
	if err := node.Decode(&item.Target); err != nil {
		return ExpectItem{}, wrapParseError(sourcePath, node.Line, err)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Value == "element" {
			item.Element = value.Value
			continue
		}
		if reserved[key.Value] {
			continue
		}
		var v interface{}
		if err := value.Decode(&v); err != nil {
			return ExpectItem{}, wrapParseError(sourcePath, value.Line, err)
		}
		item.Props = append(item.Props, Prop{Name: key.Value, Value: v, Line: key.Line})
	}

	if item.Element == "" {
		return ExpectItem{}, &ParseError{Path: sourcePath, Line: node.Line, Message: "expect item needs an element"}
	}
	if len(item.Props) == 0 {
		return ExpectItem{}, &ParseError{Path: sourcePath, Line: node.Line, Message: fmt.Sprintf("no properties to check for %s", item.Element)}
	}
	return item, nil
}

func wrapParseError(path string, line int, err error) error {
	return &ParseError{
		Path:    path,
		Line:    line,
		Message: err.Error(),
	}
}

// CollectFiles finds all .yaml/.yml files under dir, sorted.
func CollectFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, err
}

// ParseDir parses all check files in a directory. Files that fail to parse
// are skipped with a warning; run the validator first to surface them.
func ParseDir(dir string, includeTags, excludeTags []string) ([]*Flow, error) {
	files, err := CollectFiles(dir)
	if err != nil {
		return nil, err
	}

	var flows []*Flow
	for _, path := range files {
		flow, parseErr := ParseFile(path)
		if parseErr != nil {
			logger.Warn("skipping %s: %v", path, parseErr)
			continue
		}
		if ShouldInclude(flow, includeTags, excludeTags) {
			flows = append(flows, flow)
		}
	}

	return flows, nil
}

// ShouldInclude checks if a flow matches tag filters.
func ShouldInclude(flow *Flow, includeTags, excludeTags []string) bool {
	if len(includeTags) > 0 {
		hasTag := false
		for _, tag := range flow.Config.Tags {
			for _, include := range includeTags {
				if tag == include {
					hasTag = true
					break
				}
			}
		}
		if !hasTag {
			return false
		}
	}

	for _, tag := range flow.Config.Tags {
		for _, exclude := range excludeTags {
			if tag == exclude {
				return false
			}
		}
	}

	return true
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
