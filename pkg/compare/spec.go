// Package compare judges actual UI values against expectation specs.
package compare

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/devicelab-dev/uicheck/pkg/core"
)

// Op is a comparison operator.
type Op int

const (
	OpEquals Op = iota
	OpNotEquals
	OpGreaterThan
	OpGreaterOrEqual
	OpLessThan
	OpLessOrEqual
	OpStartsWith
	OpEndsWith
	OpContains
	OpDoesNotContain
	OpIsLike
	OpTranslate
)

var opTags = map[Op]string{
	OpEquals:         "eq",
	OpNotEquals:      "ne",
	OpGreaterThan:    "gt",
	OpGreaterOrEqual: "gte",
	OpLessThan:       "lt",
	OpLessOrEqual:    "lte",
	OpStartsWith:     "starts_with",
	OpEndsWith:       "ends_with",
	OpContains:       "contains",
	OpDoesNotContain: "not_contains",
	OpIsLike:         "like",
	OpTranslate:      "translate",
}

// String returns the check-file tag of the operator.
func (o Op) String() string {
	if tag, ok := opTags[o]; ok {
		return tag
	}
	return "unknown"
}

// IsRelational reports whether the operator compares numbers.
func (o Op) IsRelational() bool {
	switch o {
	case OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual:
		return true
	}
	return false
}

// CaseMode is the transform applied to a translated string.
type CaseMode string

const (
	CaseAsIs       CaseMode = ""
	CaseTitle      CaseMode = "titlecase"
	CaseUpper      CaseMode = "upcase"
	CaseLower      CaseMode = "downcase"
	CaseCapitalize CaseMode = "capitalize"
)

func (m CaseMode) valid() bool {
	switch m {
	case CaseAsIs, CaseTitle, CaseUpper, CaseLower, CaseCapitalize:
		return true
	}
	return false
}

// Spec is one expectation: an operator, its operand and, for translations,
// a case mode.
type Spec struct {
	Op      Op
	Operand any
	Case    CaseMode
}

// Spec constructors, one per operator.
func Equals(v any) Spec          { return Spec{Op: OpEquals, Operand: v} }
func NotEquals(v any) Spec       { return Spec{Op: OpNotEquals, Operand: v} }
func GreaterThan(v any) Spec     { return Spec{Op: OpGreaterThan, Operand: v} }
func GreaterOrEqual(v any) Spec  { return Spec{Op: OpGreaterOrEqual, Operand: v} }
func LessThan(v any) Spec        { return Spec{Op: OpLessThan, Operand: v} }
func LessOrEqual(v any) Spec     { return Spec{Op: OpLessOrEqual, Operand: v} }
func StartsWith(s string) Spec   { return Spec{Op: OpStartsWith, Operand: s} }
func EndsWith(s string) Spec     { return Spec{Op: OpEndsWith, Operand: s} }
func Contains(s any) Spec        { return Spec{Op: OpContains, Operand: s} }
func DoesNotContain(s any) Spec  { return Spec{Op: OpDoesNotContain, Operand: s} }
func IsLike(s string) Spec       { return Spec{Op: OpIsLike, Operand: s} }

// Translate looks key up through the engine's translator, applies mode and
// compares the result literally.
func Translate(key string, mode CaseMode) Spec {
	return Spec{Op: OpTranslate, Operand: key, Case: mode}
}

// Validate checks the spec can be evaluated at all.
func (s Spec) Validate() error {
	if _, ok := opTags[s.Op]; !ok {
		return core.ErrInvalidSpec.WithMessagef("unknown operator %d", s.Op)
	}
	if !supportedOperand(s.Operand) {
		return core.ErrInvalidSpec.WithMessagef("%s: unsupported operand type %T", s.Op, s.Operand)
	}
	if s.Case != CaseAsIs && s.Op != OpTranslate {
		return core.ErrInvalidSpec.WithMessagef("case mode %q only applies to translate", s.Case)
	}
	switch {
	case s.Op.IsRelational():
		if _, err := toNumber(s.Operand); err != nil {
			return core.ErrInvalidSpec.WithMessagef("%s needs a numeric operand, got %s", s.Op, Format(s.Operand))
		}
	case s.Op == OpTranslate:
		key, err := cast.ToStringE(s.Operand)
		if err != nil || strings.TrimSpace(key) == "" {
			return core.ErrInvalidSpec.WithMessage("translate needs a key")
		}
		if !s.Case.valid() {
			return core.ErrInvalidSpec.WithMessagef("unknown case mode %q", s.Case)
		}
	case s.Op >= OpStartsWith:
		if _, err := cast.ToStringE(s.Operand); err != nil && !isSequence(s.Operand) {
			return core.ErrInvalidSpec.WithMessagef("%s needs a string operand, got %T", s.Op, s.Operand)
		}
	}
	return nil
}

// supportedOperand reports whether v is a value specs can judge against: nil, a
// number, a boolean, anything cast renders as a string, or a sequence of
// those. Maps and plain structs have no defined comparison.
func supportedOperand(v any) bool {
	switch {
	case v == nil, isNumber(v), isBool(v):
		return true
	}
	if seq, ok := sequence(v); ok {
		for _, e := range seq {
			if !supportedOperand(e) {
				return false
			}
		}
		return true
	}
	_, err := cast.ToStringE(v)
	return err == nil
}

// Describe renders the expected side for diagnostics: 1, > 25, contains "x".
func (s Spec) Describe() string {
	switch s.Op {
	case OpEquals:
		return Format(s.Operand)
	case OpNotEquals:
		return "not " + Format(s.Operand)
	case OpGreaterThan:
		return "> " + Format(s.Operand)
	case OpGreaterOrEqual:
		return ">= " + Format(s.Operand)
	case OpLessThan:
		return "< " + Format(s.Operand)
	case OpLessOrEqual:
		return "<= " + Format(s.Operand)
	case OpStartsWith:
		return fmt.Sprintf("starts with %q", cast.ToString(s.Operand))
	case OpEndsWith:
		return fmt.Sprintf("ends with %q", cast.ToString(s.Operand))
	case OpContains:
		return fmt.Sprintf("contains %q", cast.ToString(s.Operand))
	case OpDoesNotContain:
		return fmt.Sprintf("does not contain %q", cast.ToString(s.Operand))
	case OpIsLike:
		return fmt.Sprintf("like %q", cast.ToString(s.Operand))
	case OpTranslate:
		if s.Case == CaseAsIs {
			return fmt.Sprintf("translation of %q", cast.ToString(s.Operand))
		}
		return fmt.Sprintf("translation of %q (%s)", cast.ToString(s.Operand), s.Case)
	default:
		return Format(s.Operand)
	}
}

// Parse builds a spec from a check-file operator tag and operand.
func Parse(tag string, operand any) (Spec, error) {
	for op, t := range opTags {
		if t == tag {
			s := Spec{Op: op, Operand: operand}
			return s, s.Validate()
		}
	}
	return Spec{}, core.ErrInvalidSpec.WithMessagef("unknown operator %q, want one of: %s", tag, strings.Join(Tags(), ", "))
}

// FromMap builds a spec from a one-operator mapping such as {gt: 25} or
// {translate: greeting, case: titlecase}.
func FromMap(m map[string]any) (Spec, error) {
	var tags []string
	for k := range m {
		if k != "case" {
			tags = append(tags, k)
		}
	}
	if len(tags) != 1 {
		sort.Strings(tags)
		return Spec{}, core.ErrInvalidSpec.WithMessagef("expected exactly one operator, got %v", tags)
	}
	s, err := Parse(tags[0], m[tags[0]])
	if err != nil {
		return Spec{}, err
	}
	if c, ok := m["case"]; ok {
		s.Case = CaseMode(cast.ToString(c))
		if err := s.Validate(); err != nil {
			return Spec{}, err
		}
	}
	return s, nil
}

// Tags lists the recognised operator tags, sorted.
func Tags() []string {
	tags := make([]string, 0, len(opTags))
	for _, t := range opTags {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
