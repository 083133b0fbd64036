package scanpattern

import (
	"errors"
	"fmt"
)

var (
	// ErrParameterOutOfRange is returned when a scan parameter falls outside
	// its documented bounds.
	ErrParameterOutOfRange = errors.New("parameter out of range")

	// ErrComputation is returned when derived values are degenerate, for
	// example a zero-length ramp window or a frame with no retained pulses.
	ErrComputation = errors.New("scan pattern computation failed")

	// ErrSerialization is returned when the pulse sequences cannot be
	// reshaped into per-line matrices. It always indicates a generator bug.
	ErrSerialization = errors.New("scan pattern serialization failed")
)

// ParameterError names the offending field and its valid range.
type ParameterError struct {
	Field string
	Value int
	Min   int
	Max   int // 0 means unbounded
}

func (e *ParameterError) Error() string {
	if e.Max == 0 {
		return fmt.Sprintf("invalid %s %d: must be at least %d", e.Field, e.Value, e.Min)
	}
	return fmt.Sprintf("invalid %s %d: valid range is [%d - %d]", e.Field, e.Value, e.Min, e.Max)
}

func (e *ParameterError) Unwrap() error { return ErrParameterOutOfRange }

func computationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrComputation, fmt.Sprintf(format, args...))
}
