package compare

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/devicelab-dev/uicheck/pkg/core"
)

// Translator resolves localization keys.
type Translator interface {
	Translate(key string) (string, bool)
}

// Result is the outcome of one evaluation. Expected and Actual are always
// populated, on match too.
type Result struct {
	Matched  bool
	Expected string
	Actual   string
	Reason   string
}

// Diagnostic renders "expected X, found Y" plus the reason when present.
func (r Result) Diagnostic() string {
	d := fmt.Sprintf("expected %s, found %s", r.Expected, r.Actual)
	if r.Reason != "" {
		d += "; " + r.Reason
	}
	return d
}

// Mismatch reasons.
const (
	ReasonNotANumber     = "not a number"
	ReasonNoTranslation  = "no translation for key"
	ReasonNotABoolean    = "not a boolean"
	ReasonLengthMismatch = "length differs"
)

// Engine evaluates specs. It is stateless apart from its collaborators.
type Engine struct {
	translator Translator
	lang       language.Tag
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguage sets the language used by case transforms.
func WithLanguage(tag language.Tag) Option {
	return func(e *Engine) { e.lang = tag }
}

// NewEngine creates an engine. The translator may be nil when no spec uses
// translate.
func NewEngine(t Translator, opts ...Option) *Engine {
	e := &Engine{translator: t, lang: language.Und}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate judges actual against s. A mismatch is a Result with Matched
// false; only a spec that cannot be evaluated returns an error.
func (e *Engine) Evaluate(actual any, s Spec) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}
	res := Result{Expected: s.Describe(), Actual: Format(actual)}

	switch s.Op {
	case OpEquals:
		res.Matched, res.Reason = equal(actual, s.Operand)
	case OpNotEquals:
		eq, _ := equal(actual, s.Operand)
		res.Matched = !eq
	case OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual:
		res.Matched, res.Reason = relate(actual, s)
	case OpStartsWith:
		res.Matched = strings.HasPrefix(text(actual), text(s.Operand))
	case OpEndsWith:
		res.Matched = strings.HasSuffix(text(actual), text(s.Operand))
	case OpContains:
		res.Matched = contains(actual, s.Operand)
	case OpDoesNotContain:
		res.Matched = !contains(actual, s.Operand)
	case OpIsLike:
		res.Matched = strings.EqualFold(strings.TrimSpace(text(actual)), strings.TrimSpace(text(s.Operand)))
	case OpTranslate:
		if err := e.Ready(s); err != nil {
			return Result{}, err
		}
		want, ok := e.translator.Translate(cast.ToString(s.Operand))
		if !ok {
			res.Reason = ReasonNoTranslation
			return res, nil
		}
		want = e.applyCase(want, s.Case)
		res.Expected = Format(want)
		res.Matched = text(actual) == want
	}
	return res, nil
}

// Ready reports whether this engine has what s needs: translate specs
// need a translator.
func (e *Engine) Ready(s Spec) error {
	if s.Op == OpTranslate && e.translator == nil {
		return core.ErrInvalidSpec.WithMessagef("translate %q: no translator configured", cast.ToString(s.Operand))
	}
	return nil
}

// equal applies the natural equality of the expected value's type.
func equal(actual, expected any) (bool, string) {
	switch {
	case isNumber(expected):
		want, _ := toNumber(expected)
		got, err := toNumber(actual)
		if err != nil {
			return false, ReasonNotANumber
		}
		if math.IsNaN(want) && math.IsNaN(got) {
			return true, ""
		}
		return got == want, ""
	case isBool(expected):
		got, err := cast.ToBoolE(actual)
		if err != nil || actual == nil {
			return false, ReasonNotABoolean
		}
		return got == expected.(bool), ""
	case isSequence(expected):
		want, _ := sequence(expected)
		got, ok := sequence(actual)
		if !ok {
			return text(actual) == text(expected), ""
		}
		if len(got) != len(want) {
			return false, ReasonLengthMismatch
		}
		for i := range want {
			if ok, _ := equal(got[i], want[i]); !ok {
				return false, ""
			}
		}
		return true, ""
	case expected == nil:
		return actual == nil || text(actual) == "", ""
	default:
		return text(actual) == text(expected), ""
	}
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func relate(actual any, s Spec) (bool, string) {
	want, _ := toNumber(s.Operand)
	got, err := toNumber(actual)
	if err != nil {
		return false, ReasonNotANumber
	}
	switch s.Op {
	case OpGreaterThan:
		return got > want, ""
	case OpGreaterOrEqual:
		return got >= want, ""
	case OpLessThan:
		return got < want, ""
	default:
		return got <= want, ""
	}
}

// contains tests membership for sequences and substring otherwise.
func contains(actual, needle any) bool {
	if seq, ok := sequence(actual); ok && !isSequence(needle) {
		for _, e := range seq {
			if text(e) == text(needle) {
				return true
			}
		}
		return false
	}
	return strings.Contains(text(actual), text(needle))
}

func (e *Engine) applyCase(s string, mode CaseMode) string {
	switch mode {
	case CaseTitle:
		return cases.Title(e.lang).String(s)
	case CaseUpper:
		return cases.Upper(e.lang).String(s)
	case CaseLower:
		return cases.Lower(e.lang).String(s)
	case CaseCapitalize:
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError {
			return s
		}
		return cases.Upper(e.lang).String(string(r)) + cases.Lower(e.lang).String(s[size:])
	default:
		return s
	}
}
