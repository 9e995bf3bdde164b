// Package validator checks uicheck files before any page is opened.
// Every file is parsed and bound, so unknown elements, unsupported
// properties and invalid comparisons surface without a driver.
package validator

import (
	"fmt"
	"os"

	"github.com/devicelab-dev/uicheck/pkg/flow"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	File    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Result contains the validation result.
type Result struct {
	// Files is the list of check file paths in run order.
	Files []string
	// Flows holds the parsed check files, parallel to Files.
	Flows []*flow.Flow
	// Errors contains all validation errors found.
	Errors []error
	// Checks counts the element/property pairs across the valid files.
	Checks int
}

// IsValid returns true if there are no validation errors.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Validator validates check files.
type Validator struct {
	includeTags []string
	excludeTags []string
	env         map[string]string
	needPage    bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithEnv supplies the variables ${...} expressions are expanded with.
func WithEnv(env map[string]string) Option {
	return func(v *Validator) { v.env = env }
}

// RequirePage rejects files without a url whose page snapshot is missing.
func RequirePage() Option {
	return func(v *Validator) { v.needPage = true }
}

// New creates a new Validator.
func New(includeTags, excludeTags []string, opts ...Option) *Validator {
	v := &Validator{
		includeTags: includeTags,
		excludeTags: excludeTags,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate validates a file or directory. Unlike a run, a directory with a
// broken file is reported, not skipped.
func (v *Validator) Validate(path string) *Result {
	result := &Result{}

	info, err := os.Stat(path)
	if err != nil {
		result.Errors = append(result.Errors, &ValidationError{
			File:    path,
			Message: fmt.Sprintf("cannot access: %v", err),
		})
		return result
	}

	files := []string{path}
	if info.IsDir() {
		files, err = flow.CollectFiles(path)
		if err != nil {
			result.Errors = append(result.Errors, &ValidationError{
				File:    path,
				Message: fmt.Sprintf("failed to scan directory: %v", err),
			})
			return result
		}
	}

	for _, file := range files {
		v.validateFile(file, result)
	}
	return result
}

// validateFile parses and binds a single file.
func (v *Validator) validateFile(path string, result *Result) {
	f, err := flow.ParseFile(path)
	if err != nil {
		result.Errors = append(result.Errors, &ValidationError{
			File:    path,
			Message: fmt.Sprintf("parse error: %v", err),
		})
		return
	}

	if !flow.ShouldInclude(f, v.includeTags, v.excludeTags) {
		return
	}

	_, blocks, err := flow.Build(f, flow.NewEngine(f, v.env))
	if err != nil {
		result.Errors = append(result.Errors, &ValidationError{
			File:    path,
			Message: err.Error(),
		})
		return
	}

	if v.needPage && f.Config.URL == "" && !f.PageExists() {
		msg := "no url and no page snapshot"
		if f.Config.Page != "" {
			msg = fmt.Sprintf("page %s not found", f.PagePath())
		}
		result.Errors = append(result.Errors, &ValidationError{File: path, Message: msg})
		return
	}

	for _, b := range blocks {
		result.Checks += b.Expectations.Len()
	}
	result.Files = append(result.Files, path)
	result.Flows = append(result.Flows, f)
}
