package simulate

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is to classify failures.
var (
	// ErrInvalidConfiguration reports out-of-range correlations, bad
	// proportions, non-positive counts or unresolvable module references.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDimensionMismatch reports an eigengene whose length differs from the
	// configured sample count.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// ConfigError names the offending field and value of a rejected configuration.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
	kind   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s = %v: %s", e.kind, e.Field, e.Value, e.Reason)
}

// Unwrap returns the sentinel the error belongs to.
func (e *ConfigError) Unwrap() error {
	return e.kind
}

func invalidf(field string, value any, format string, args ...any) error {
	return &ConfigError{
		Field:  field,
		Value:  value,
		Reason: fmt.Sprintf(format, args...),
		kind:   ErrInvalidConfiguration,
	}
}

func mismatchf(field string, value any, format string, args ...any) error {
	return &ConfigError{
		Field:  field,
		Value:  value,
		Reason: fmt.Sprintf(format, args...),
		kind:   ErrDimensionMismatch,
	}
}
