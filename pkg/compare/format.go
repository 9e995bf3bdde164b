package compare

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Format renders a value the way diagnostics show it.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		if x == "" {
			return `""`
		}
		return x
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case bool:
		return strconv.FormatBool(x)
	}
	if seq, ok := sequence(v); ok {
		parts := make([]string, len(seq))
		for i, e := range seq {
			parts[i] = Format(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return reflect.ValueOf(v).String()
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// sequence returns the elements of a slice or array value.
func sequence(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	case string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func isSequence(v any) bool {
	_, ok := sequence(v)
	return ok
}

// text coerces a value to the string the string predicates operate on.
func text(v any) string {
	if v == nil {
		return ""
	}
	if seq, ok := sequence(v); ok {
		parts := make([]string, len(seq))
		for i, e := range seq {
			parts[i] = text(e)
		}
		return strings.Join(parts, ", ")
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return Format(v)
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// toNumber coerces v to float64. Blank strings are not numbers.
func toNumber(v any) (float64, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, strconv.ErrSyntax
		}
		v = s
	}
	if _, ok := v.(bool); ok {
		return 0, strconv.ErrSyntax
	}
	return cast.ToFloat64E(v)
}
