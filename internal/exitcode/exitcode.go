// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package exitcode lists the process exit codes of asynciot and the error type carrying them.
package exitcode

import (
	"errors"
)

const (
	Success              = 0
	UnknownFailure       = 1
	ConfigInvalid        = 2
	RequestedTermination = 9
	SystemReadFailure    = 20
	SystemSetupFailure   = 21
)

// Error pairs an error with the exit code the process should terminate with.
type Error struct {
	Code int
	Err  error
}

// New wraps err so that it carries code.
func New(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// From returns the exit code carried by err: Success for nil, the innermost
// Error code when present, UnknownFailure otherwise.
func From(err error) int {
	if err == nil {
		return Success
	}

	var codeErr *Error
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return UnknownFailure
}
