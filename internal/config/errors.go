package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/indentscope/internal/config/loader"
)

// Errors returned by configuration operations.
var (
	// ErrUnknownSetting indicates an unrecognized setting path.
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrTypeMismatch indicates the value type doesn't match the expected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrOutOfRange indicates a numeric value is out of range.
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidEnum indicates the value is not in the allowed set.
	ErrInvalidEnum = errors.New("invalid value")

	// ErrEmptyGlyph indicates a glyph setting is empty.
	ErrEmptyGlyph = errors.New("empty glyph")
)

// ParseError represents an error while parsing a configuration file.
type ParseError = loader.ParseError

// FieldError describes a problem with one setting.
type FieldError struct {
	// Path is the dot-separated setting path.
	Path string
	// Value is the offending value.
	Value any
	// Err is one of the sentinel errors above.
	Err error
	// Detail is an optional explanation.
	Detail string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Path, e.Err)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	return msg
}

// Unwrap returns the sentinel error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidationError collects field errors.
type ValidationError struct {
	Errors []*FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no validation errors"
	case 1:
		return "invalid configuration: " + e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid configuration: %d errors:\n  - %s", len(e.Errors), strings.Join(msgs, "\n  - "))
}

// Unwrap exposes the field errors to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Add records a field error.
func (e *ValidationError) Add(path string, value any, err error, detail string) {
	e.Errors = append(e.Errors, &FieldError{Path: path, Value: value, Err: err, Detail: detail})
}

// HasErrors returns true if there are any errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ForPath returns the errors recorded for path.
func (e *ValidationError) ForPath(path string) []*FieldError {
	var out []*FieldError
	for _, err := range e.Errors {
		if err.Path == path {
			out = append(out, err)
		}
	}
	return out
}

// AsError returns nil if no errors, otherwise returns self.
func (e *ValidationError) AsError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}
