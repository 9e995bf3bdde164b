package core

// Driver is the DOM query collaborator the verification core runs against.
// Implementations: htmldoc (parsed HTML snapshots), browser (Playwright).
// Waiting for elements to appear is the driver's concern; every call is
// blocking and performed at most once per resolution.
type Driver interface {
	// Find returns the first element matching the query.
	// Absence is reported as (nil, false, nil), never as an error.
	Find(q Query) (Handle, bool, error)

	// Count returns how many elements currently match the locator.
	Count(locator string) (int, error)

	// Text returns the rendered text content of the element.
	Text(h Handle) (string, error)

	// Attribute returns an attribute value and whether it is present.
	Attribute(h Handle, name string) (string, bool, error)

	// Property returns a DOM property (naturalWidth, complete, tagName).
	Property(h Handle, name string) (string, error)

	// Value returns the current form value of an input-like element.
	Value(h Handle) (string, error)

	// SetValue replaces the form value of an input-like element.
	SetValue(h Handle, value string) error

	// Click activates the element.
	Click(h Handle) error

	// Checked reports the checked state of a checkbox or radio.
	Checked(h Handle) (bool, error)

	// Visible reports whether the element is rendered.
	Visible(h Handle) (bool, error)

	// Enabled reports whether the element accepts interaction.
	Enabled(h Handle) (bool, error)

	// Options lists the options of a native select control.
	Options(h Handle) ([]Option, error)

	// SelectOption picks one option of a native select control.
	SelectOption(h Handle, by SelectBy, key string) error

	// EnterFrame scopes subsequent lookups inside the named frame.
	EnterFrame(name string) error

	// ExitFrame restores the top-level document scope.
	ExitFrame() error

	// Screenshot captures the current page as PNG.
	Screenshot() ([]byte, error)
}

// Handle is a driver-specific reference to one resolved element.
type Handle interface {
	// Locator returns the concrete locator the handle was found with.
	Locator() string
}

// Visibility filters Find results.
type Visibility int

const (
	AnyVisibility Visibility = iota // Match hidden elements too
	VisibleOnly                     // Match rendered elements only
)

// Query describes one element lookup.
type Query struct {
	Locator    string
	Kind       string // Element kind tag, informational for drivers
	Visibility Visibility
	Within     Handle // When set, Locator is evaluated relative to this element
}

// Option is one entry of a select control.
type Option struct {
	Text     string `json:"text"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// SelectBy is the strategy used to pick an option.
type SelectBy int

const (
	SelectByText  SelectBy = iota // Visible option caption
	SelectByIndex                 // 1-based position
	SelectByValue                 // Underlying value attribute
)

// String returns the string representation of SelectBy
func (s SelectBy) String() string {
	switch s {
	case SelectByText:
		return "text"
	case SelectByIndex:
		return "index"
	case SelectByValue:
		return "value"
	default:
		return "unknown"
	}
}
