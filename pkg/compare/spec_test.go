package compare

import (
	"errors"
	"strings"
	"testing"

	"github.com/devicelab-dev/uicheck/pkg/core"
)

func TestSpec_Describe(t *testing.T) {
	tests := []struct {
		spec     Spec
		expected string
	}{
		{Equals(1), "1"},
		{Equals(""), `""`},
		{NotEquals("draft"), "not draft"},
		{GreaterThan(25), "> 25"},
		{GreaterOrEqual(2.5), ">= 2.5"},
		{LessThan(10), "< 10"},
		{LessOrEqual(0), "<= 0"},
		{StartsWith("He"), `starts with "He"`},
		{EndsWith(".pdf"), `ends with ".pdf"`},
		{Contains("x"), `contains "x"`},
		{DoesNotContain("error"), `does not contain "error"`},
		{IsLike("submit"), `like "submit"`},
		{Translate("greeting", CaseAsIs), `translation of "greeting"`},
		{Translate("greeting", CaseTitle), `translation of "greeting" (titlecase)`},
		{Equals([]string{"a", "b"}), "[a, b]"},
	}

	for _, tt := range tests {
		if got := tt.spec.Describe(); got != tt.expected {
			t.Errorf("Describe() = %q, want %q", got, tt.expected)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		tag     string
		operand any
		op      Op
	}{
		{"eq", "x", OpEquals},
		{"ne", "x", OpNotEquals},
		{"gt", 25, OpGreaterThan},
		{"gte", "25", OpGreaterOrEqual},
		{"lt", 1, OpLessThan},
		{"lte", 1.5, OpLessOrEqual},
		{"starts_with", "a", OpStartsWith},
		{"ends_with", "z", OpEndsWith},
		{"contains", "m", OpContains},
		{"not_contains", "m", OpDoesNotContain},
		{"like", "M", OpIsLike},
		{"translate", "greeting", OpTranslate},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			s, err := Parse(tt.tag, tt.operand)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Op != tt.op {
				t.Errorf("Op = %s, want %s", s.Op, tt.op)
			}
			if s.Op.String() != tt.tag {
				t.Errorf("Op.String() = %q, want %q", s.Op.String(), tt.tag)
			}
		})
	}
}

func TestParse_UnknownTag(t *testing.T) {
	_, err := Parse("approximately", 3)
	if !errors.Is(err, core.ErrInvalidSpec) {
		t.Fatalf("err = %v, want ErrInvalidSpec", err)
	}
	if !strings.Contains(err.Error(), "want one of: contains, ") {
		t.Errorf("err = %q, should list the known tags", err)
	}
}

func TestFromMap(t *testing.T) {
	s, err := FromMap(map[string]any{"translate": "greeting", "case": "upcase"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Op != OpTranslate || s.Case != CaseUpper || s.Operand != "greeting" {
		t.Errorf("FromMap() = %+v", s)
	}

	s, err = FromMap(map[string]any{"gt": 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Op != OpGreaterThan {
		t.Errorf("Op = %s, want gt", s.Op)
	}
}

func TestFromMap_Invalid(t *testing.T) {
	tests := []struct {
		name string
		m    map[string]any
	}{
		{"empty", map[string]any{}},
		{"two operators", map[string]any{"gt": 1, "lt": 5}},
		{"case without translate", map[string]any{"eq": "x", "case": "upcase"}},
		{"bad case", map[string]any{"translate": "k", "case": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromMap(tt.m); !errors.Is(err, core.ErrInvalidSpec) {
				t.Errorf("err = %v, want ErrInvalidSpec", err)
			}
		})
	}
}

func TestTags(t *testing.T) {
	tags := Tags()
	if len(tags) != 12 {
		t.Fatalf("len(Tags()) = %d, want 12", len(tags))
	}
	if tags[0] != "contains" {
		t.Errorf("Tags()[0] = %q, want contains (sorted)", tags[0])
	}
}

func TestSpec_Validate_OperandTypes(t *testing.T) {
	valid := []Spec{
		Equals(nil),
		Equals([]any{1, "a", true}),
		Equals([]byte("raw")),
		Contains([]string{"red", "green"}),
		NotEquals(uint8(3)),
	}
	for _, s := range valid {
		if err := s.Validate(); err != nil {
			t.Errorf("%s(%v).Validate() = %v, want nil", s.Op, s.Operand, err)
		}
	}

	invalid := []Spec{
		Equals(map[string]any{"a": 1}),
		NotEquals(struct{ A int }{1}),
		Equals([]any{"ok", map[string]any{}}),
		Contains([]any{struct{}{}}),
	}
	for _, s := range invalid {
		if err := s.Validate(); !errors.Is(err, core.ErrInvalidSpec) {
			t.Errorf("%s(%v).Validate() = %v, want ErrInvalidSpec", s.Op, s.Operand, err)
		}
	}

	_, err := NewEngine(nil).Evaluate(map[string]any{"a": 2}, Equals(map[string]any{"a": 1}))
	if !errors.Is(err, core.ErrInvalidSpec) {
		t.Errorf("Evaluate(map) error = %v, want ErrInvalidSpec", err)
	}
}
