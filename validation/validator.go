package validation

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/kbukum/httpaccess/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// AddValueError adds a field error that carries the offending value.
func (v *Validator) AddValueError(field, value, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Value: value, Message: message})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an AppError if there are validation errors, nil otherwise.
// A single failure is reported as INVALID_CONFIG carrying the key and value.
func (v *Validator) Validate() error {
	if !v.HasErrors() {
		return nil
	}

	if len(v.errors) == 1 {
		e := v.errors[0]
		return errors.InvalidConfig(e.Field, e.Value, e.Message).
			WithDetail("fields", v.errors)
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return errors.Validation(strings.Join(messages, "; ")).
		WithDetail("fields", v.errors)
}

// Int parses an optional integer value. Blank input yields 0 with no error.
func (v *Validator) Int(field, raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.AddValueError(field, raw, "must be an integer")
		return 0
	}
	return n
}

// Millis parses an optional non-negative number of milliseconds.
func (v *Validator) Millis(field, raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		v.AddValueError(field, raw, "must be a non-negative number of milliseconds")
		return 0
	}
	return time.Duration(n) * time.Millisecond
}

// Charset checks that a non-blank value names a known character encoding.
func (v *Validator) Charset(field, name string) *Validator {
	if strings.TrimSpace(name) == "" {
		return v
	}
	if _, err := htmlindex.Get(name); err != nil {
		v.AddValueError(field, name, "is not a known charset")
	}
	return v
}

// Host checks that a non-blank value can be used as the host part of an
// address: a name, underscores allowed, or an IP literal. Scheme, path,
// userinfo and whitespace are rejected.
func (v *Validator) Host(field, host string) *Validator {
	if host == "" {
		return v
	}
	if strings.Contains(host, ":") {
		if net.ParseIP(host) == nil {
			v.AddValueError(field, host, "must be a host name or IP address")
		}
		return v
	}
	if strings.ContainsAny(host, " \t/@?#[]") {
		v.AddValueError(field, host, "must be a host name or IP address")
	}
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}
