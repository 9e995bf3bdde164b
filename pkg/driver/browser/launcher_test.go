package browser

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/flow"
)

func TestPageURL(t *testing.T) {
	abs, _ := filepath.Abs("checks/login.html")

	tests := []struct {
		name string
		cfg  flow.Config
		want string
	}{
		{"url wins", flow.Config{URL: "http://localhost:8080/login", Page: "login.html"}, "http://localhost:8080/login"},
		{"page snapshot", flow.Config{Page: "login.html"}, "file://" + filepath.ToSlash(abs)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PageURL(&flow.Flow{SourcePath: "checks/login.yaml", Config: tt.cfg})
			if err != nil {
				t.Fatalf("PageURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("PageURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPageURL_Missing(t *testing.T) {
	_, err := PageURL(&flow.Flow{SourcePath: "checks/login.yaml"})
	if !errors.Is(err, core.ErrMissingRequired) {
		t.Errorf("PageURL() error = %v, want missing required", err)
	}
}

func TestOptionIndex(t *testing.T) {
	opts := []core.Option{
		{Text: "Peru", Value: "pe"},
		{Text: "Chile", Value: "cl", Selected: true},
	}
	tests := []struct {
		by   core.SelectBy
		key  string
		want int
	}{
		{core.SelectByText, "Chile", 1},
		{core.SelectByText, " Peru ", 0},
		{core.SelectByValue, "pe", 0},
		{core.SelectByIndex, "2", 1},
		{core.SelectByIndex, "0", -1},
		{core.SelectByIndex, "3", -1},
		{core.SelectByIndex, "x", -1},
		{core.SelectByText, "Narnia", -1},
	}
	for _, tt := range tests {
		if got := optionIndex(opts, tt.by, tt.key); got != tt.want {
			t.Errorf("optionIndex(%s, %q) = %d, want %d", tt.by, tt.key, got, tt.want)
		}
	}
}

func TestSelectors(t *testing.T) {
	if got := xpath("//input[@id='user']"); got != "xpath=//input[@id='user']" {
		t.Errorf("xpath() = %q", got)
	}
	if got := frameSelector("login"); !strings.Contains(got, `iframe[name="login"]`) || !strings.Contains(got, `iframe[id="login"]`) {
		t.Errorf("frameSelector() = %q", got)
	}
}

func TestLocatorOf_ForeignHandle(t *testing.T) {
	_, err := locatorOf(foreign{})
	if !errors.Is(err, core.ErrInvalidBinding) {
		t.Errorf("locatorOf() error = %v", err)
	}
}

type foreign struct{}

func (foreign) Locator() string { return "//x" }
