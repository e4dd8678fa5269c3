// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package results

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	statusKey   = "_status"
	warningsKey = "_warnings"
	errorKey    = "_error"
)

// Status is the outcome of reading a value.
type Status string

const (
	StatusOk    Status = "ok"
	StatusError Status = "error"
)

// State describes how a value was obtained: successfully, successfully with warnings, or not at all.
type State struct {
	Status   Status
	Warnings []string
	Message  string
}

// OkState returns the state of a value read without issues.
func OkState() State {
	return State{Status: StatusOk}
}

// WarningsState returns the state of a value read with warnings.
func WarningsState(warnings []string) State {
	if warnings == nil {
		warnings = []string{}
	}
	return State{Status: StatusOk, Warnings: warnings}
}

// ErrorState returns the state of a value that could not be read.
func ErrorState(message string) State {
	return State{Status: StatusError, Message: message}
}

// IsErr reports whether the state describes a failure.
func (s State) IsErr() bool {
	return s.Status == StatusError
}

// HasWarnings reports whether the state carries warnings.
func (s State) HasWarnings() bool {
	return s.Status != StatusError && s.Warnings != nil
}

func (s State) String() string {
	switch {
	case s.IsErr():
		return "error: " + s.Message
	case s.HasWarnings():
		return fmt.Sprintf("ok with %d warning(s)", len(s.Warnings))
	default:
		return string(StatusOk)
	}
}

// writeFields writes the state members into an already open object.
func (s State) writeFields(obj *objectWriter) error {
	if s.IsErr() {
		if err := obj.member(statusKey, StatusError); err != nil {
			return err
		}
		return obj.member(errorKey, s.Message)
	}

	if err := obj.member(statusKey, StatusOk); err != nil {
		return err
	}
	if s.Warnings != nil {
		return obj.member(warningsKey, s.Warnings)
	}
	return nil
}

func (s State) MarshalJSON() ([]byte, error) {
	buf := new(bytes.Buffer)
	obj := newObjectWriter(buf)
	if err := s.writeFields(obj); err != nil {
		return nil, err
	}
	obj.close()
	return buf.Bytes(), nil
}

func (s *State) UnmarshalJSON(data []byte) error {
	members, isObject, err := decodeObject(data)
	if err != nil {
		return err
	}
	if !isObject {
		return fmt.Errorf("%w: state is not an object", ErrMalformedEnvelope)
	}

	_, err = s.readFields(members)
	return err
}

// readFields fills the state from its reserved members and returns the remaining ones.
func (s *State) readFields(members []member) ([]member, error) {
	*s = OkState()
	others := make([]member, 0, len(members))
	for _, m := range members {
		switch m.key {
		case statusKey:
			if err := json.Unmarshal(m.raw, &s.Status); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrMalformedEnvelope, statusKey, err)
			}
		case warningsKey:
			if err := json.Unmarshal(m.raw, &s.Warnings); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrMalformedEnvelope, warningsKey, err)
			}
		case errorKey:
			if err := json.Unmarshal(m.raw, &s.Message); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrMalformedEnvelope, errorKey, err)
			}
		default:
			others = append(others, m)
		}
	}

	if s.Status != StatusOk && s.Status != StatusError {
		return nil, fmt.Errorf("%w: unknown status %q", ErrMalformedEnvelope, s.Status)
	}
	return others, nil
}
