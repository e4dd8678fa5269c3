// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package results

import (
	"github.com/mia-platform/asynciot/internal/exitcode"
)

// Extended is the outcome of an operation that can succeed, succeed with warnings,
// or fail with an exit code.
type Extended[T any] struct {
	value    T
	warnings []string
	err      error
	code     int
}

// Ok returns a successful result.
func Ok[T any](value T) Extended[T] {
	return Extended[T]{value: value}
}

// Fail returns a failed result terminating the process with code.
func Fail[T any](code int, err error) Extended[T] {
	return Extended[T]{err: err, code: code}
}

// Wrap converts a value and error pair; errors carry the code found in their chain.
func Wrap[T any](value T, err error) Extended[T] {
	if err != nil {
		return Fail[T](exitcode.From(err), err)
	}
	return Ok(value)
}

// WithWarnings attaches warnings to a successful result. Failed results are returned unchanged.
func (r Extended[T]) WithWarnings(warnings ...string) Extended[T] {
	if r.err != nil || len(warnings) == 0 {
		return r
	}

	merged := make([]string, 0, len(r.warnings)+len(warnings))
	merged = append(merged, r.warnings...)
	r.warnings = append(merged, warnings...)
	return r
}

// Value returns the value of a successful result; false when the result failed.
func (r Extended[T]) Value() (T, bool) {
	if r.err != nil {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Warnings returns the attached warnings, nil when there are none.
func (r Extended[T]) Warnings() []string {
	return r.warnings
}

// Err returns the failure, nil on success.
func (r Extended[T]) Err() error {
	return r.err
}

// Code returns the exit code of the result.
func (r Extended[T]) Code() int {
	if r.err == nil {
		return exitcode.Success
	}
	return r.code
}

// State converts the result into the state of an envelope entry.
func (r Extended[T]) State() State {
	switch {
	case r.err != nil:
		return ErrorState(r.err.Error())
	case r.warnings != nil:
		return WarningsState(r.warnings)
	default:
		return OkState()
	}
}
