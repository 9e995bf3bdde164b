// Package flow handles parsing and representation of uicheck YAML check files.
package flow

// Flow represents a parsed check file.
type Flow struct {
	SourcePath string        // Path to the source file
	Config     Config        // File-level configuration (name, tags, page, env)
	Elements   []ElementDecl // Element declarations in file order
	Checks     []CheckBlock  // Check blocks in file order
}

// Config represents file-level configuration.
type Config struct {
	Name   string            `yaml:"name"`
	Tags   []string          `yaml:"tags"`
	Page   string            `yaml:"page"` // HTML snapshot, relative to the file
	URL    string            `yaml:"url"`  // Live page for the playwright driver
	Locale string            `yaml:"locale"`
	Env    map[string]string `yaml:"env"`
}

// CheckBlock is one labelled group of actions followed by expectations.
type CheckBlock struct {
	Label   string
	Frame   string // Optional nested scope
	Actions []Action
	Expect  []ExpectItem
	Line    int
}

// ExpectItem lists the property checks of one element at one binding.
// Props keep the order they were written in.
type ExpectItem struct {
	Element string
	Target  Target
	Props   []Prop
	Line    int
}

// Target is the row/column address written next to an element name.
type Target struct {
	Row    int     `yaml:"row"`
	Column int     `yaml:"column"`
	Outer  *Target `yaml:"outer"`
}

// Prop is one property check: a literal or a one-operator mapping.
type Prop struct {
	Name  string
	Value interface{}
	Line  int
}

// DisplayName returns the display name of the flow: the configured name, or the
// file name without extension.
func (f *Flow) DisplayName() string {
	if f.Config.Name != "" {
		return f.Config.Name
	}
	return baseName(f.SourcePath)
}
