// Package jsengine evaluates the ${...} expressions embedded in check files.
package jsengine

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/devicelab-dev/uicheck/pkg/core"
	"github.com/devicelab-dev/uicheck/pkg/logger"
)

// Engine wraps a goja runtime holding the variables of one check file.
type Engine struct {
	runtime   *goja.Runtime
	variables map[string]interface{}
	locale    string
	file      string
	mu        sync.Mutex
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// New creates a new JS engine instance
func New() *Engine {
	e := &Engine{
		runtime:   goja.New(),
		variables: make(map[string]interface{}),
	}

	e.setupBuiltins()
	return e
}

// setupBuiltins registers all built-in functions and objects
func (e *Engine) setupBuiltins() {
	// Console goes to the log file, never to the terminal
	console := e.runtime.NewObject()
	console.Set("log", e.consoleFunc(logger.Info))
	console.Set("warn", e.consoleFunc(logger.Warn))
	console.Set("error", e.consoleFunc(logger.Error))
	e.runtime.Set("console", console)

	e.runtime.Set("json", e.jsonFunc())
	e.runtime.Set("uicheck", e.uicheckObject())
}

func (e *Engine) consoleFunc(log func(string, ...interface{})) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = fmt.Sprint(arg.Export())
		}
		log("js: %s", strings.Join(parts, " "))
		return goja.Undefined()
	}
}

// jsonFunc returns the json() helper function
func (e *Engine) jsonFunc() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(e.runtime.NewTypeError("json requires 1 argument"))
		}

		str := call.Arguments[0].String()
		result, err := e.runtime.RunString(fmt.Sprintf("JSON.parse(%q)", str))
		if err != nil {
			panic(e.runtime.NewTypeError(fmt.Sprintf("invalid JSON: %v", err)))
		}
		return result
	}
}

// uicheckObject exposes uicheck.locale and uicheck.file to expressions
func (e *Engine) uicheckObject() *goja.Object {
	obj := e.runtime.NewObject()

	obj.DefineAccessorProperty("locale", e.runtime.ToValue(func() string {
		return e.locale
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("file", e.runtime.ToValue(func() string {
		return e.file
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	return obj
}

// SetVariable sets a variable accessible in JS as a global
func (e *Engine) SetVariable(name string, value interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.variables[name] = value
	e.runtime.Set(name, value)
}

// SetVariables sets multiple variables
func (e *Engine) SetVariables(vars map[string]string) {
	for k, v := range vars {
		e.SetVariable(k, v)
	}
}

// ImportEnv exposes the process environment. Names that are not valid
// identifiers are skipped; variables set later win.
func (e *Engine) ImportEnv() {
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !identifier.MatchString(name) {
			continue
		}
		e.mu.Lock()
		if _, set := e.variables[name]; !set {
			e.runtime.Set(name, value)
		}
		e.mu.Unlock()
	}
}

// SetLocale sets uicheck.locale
func (e *Engine) SetLocale(locale string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.locale = locale
}

// SetFile sets uicheck.file
func (e *Engine) SetFile(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.file = path
}

// Eval evaluates a JavaScript expression and returns the result
func (e *Engine) Eval(script string) (interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := e.runtime.RunString(script)
	if err != nil {
		return nil, fmt.Errorf("JS eval error: %w", err)
	}

	return result.Export(), nil
}

// EvalString evaluates a JavaScript expression and returns string result
func (e *Engine) EvalString(script string) (string, error) {
	result, err := e.Eval(script)
	if err != nil {
		return "", err
	}

	if result == nil {
		return "", nil
	}

	return fmt.Sprintf("%v", result), nil
}

// span locates the first ${...} at or after start, honouring nested braces.
// ok is false when there is none; an unmatched ${ returns end == -1.
func span(text string, start int) (idx, end int, ok bool) {
	i := strings.Index(text[start:], "${")
	if i == -1 {
		return 0, 0, false
	}
	idx = start + i

	depth := 1
	end = idx + 2
	for end < len(text) && depth > 0 {
		switch text[end] {
		case '{':
			depth++
		case '}':
			depth--
		}
		end++
	}
	if depth != 0 {
		return idx, -1, true
	}
	return idx, end, true
}

// ExpandVariables expands ${...} expressions in a string using JS
// evaluation. A failing expression is a config error naming it.
func (e *Engine) ExpandVariables(text string) (string, error) {
	result := text
	start := 0

	for {
		idx, end, ok := span(result, start)
		if !ok {
			break
		}
		if end == -1 {
			// Unmatched brace, kept literally
			start = idx + 2
			continue
		}

		expr := result[idx+2 : end-1]
		value, err := e.EvalString(expr)
		if err != nil {
			return "", core.ErrInvalidConfig.WithMessagef("cannot evaluate ${%s}", expr).WithCause(err)
		}

		result = result[:idx] + value + result[end:]
		start = idx + len(value)
	}

	return result, nil
}

// ExpandValue is ExpandVariables for check-file scalars: a string that is
// exactly one ${...} keeps the expression's native type, so ${limit} can
// feed a numeric comparison.
func (e *Engine) ExpandValue(v interface{}) (interface{}, error) {
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	if idx, end, found := span(s, 0); found && idx == 0 && end == len(s) {
		out, err := e.Eval(s[2 : end-1])
		if err != nil {
			return nil, core.ErrInvalidConfig.WithMessagef("cannot evaluate %s", s).WithCause(err)
		}
		return out, nil
	}
	return e.ExpandVariables(s)
}
