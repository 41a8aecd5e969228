package chart

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input detected while constructing a
// chart input. Field names the offending field, using an index suffix for
// series elements (e.g. "values[2]").
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation failed"
	}
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ErrNoCharts is returned by strict builds when every requested chart was skipped.
var ErrNoCharts = errors.New("no charts to render")
