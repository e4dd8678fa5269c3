// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package results

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	valueKey = "_value"
)

// Entry is a single keyed value of an envelope.
//
// An entry with nil Children is a scalar and serializes to Value; otherwise it is a
// mapping serialized as an object of its children, with Value under "_value" when set.
type Entry struct {
	Key      string
	State    State
	Value    any
	Children []*Entry
}

// NewScalar returns an entry holding a single value.
func NewScalar(key string, state State, value any) *Entry {
	return &Entry{Key: key, State: state, Value: value}
}

// NewMapping returns an entry without children yet.
func NewMapping(key string, state State) *Entry {
	return &Entry{Key: key, State: state, Children: make([]*Entry, 0)}
}

// EntryFromErr returns a scalar entry with a null value in the error state.
func EntryFromErr(key string, err error) *Entry {
	return NewScalar(key, ErrorState(err.Error()), nil)
}

// EntryFromValue converts any JSON serializable value into an entry: objects become
// mappings with one child per member, null and other values become scalars.
func EntryFromValue(key string, value any) *Entry {
	encoded, err := json.Marshal(value)
	if err != nil {
		return EntryFromErr(key, err)
	}
	return entryFromRaw(key, encoded, false)
}

// EntryFromResult converts the outcome of a read into an entry.
func EntryFromResult(key string, value any, err error) *Entry {
	if err != nil {
		return EntryFromErr(key, err)
	}
	return EntryFromValue(key, value)
}

// EntryFromExtended converts an Extended result into an entry, carrying its warnings.
func EntryFromExtended[T any](key string, result Extended[T]) *Entry {
	value, ok := result.Value()
	if !ok {
		return EntryFromErr(key, result.Err())
	}

	entry := EntryFromValue(key, value)
	if result.Warnings() != nil && !entry.State.IsErr() {
		entry.State = WarningsState(result.Warnings())
	}
	return entry
}

// entryFromRaw builds an entry from encoded JSON. When envelope is true, a "_value"
// member is read back as the value of the mapping itself.
func entryFromRaw(key string, raw json.RawMessage, envelope bool) *Entry {
	if isNull(raw) {
		return NewScalar(key, OkState(), nil)
	}

	members, isObject, err := decodeObject(raw)
	if err != nil {
		return EntryFromErr(key, err)
	}
	if !isObject {
		return NewScalar(key, OkState(), json.RawMessage(bytes.Clone(raw)))
	}

	entry := NewMapping(key, OkState())
	for _, m := range members {
		if envelope && m.key == valueKey {
			entry.Value = json.RawMessage(bytes.Clone(m.raw))
			continue
		}
		entry.Children = append(entry.Children, entryFromRaw(m.key, m.raw, envelope))
	}
	return entry
}

// WithChildren appends children to the entry. A scalar entry turns into a mapping and
// keeps its value, which is then serialized under "_value".
func (e *Entry) WithChildren(children ...*Entry) *Entry {
	if e.Children == nil {
		e.Children = make([]*Entry, 0, len(children))
	}
	e.Children = append(e.Children, children...)
	return e
}

// AddChild appends a single child entry.
func (e *Entry) AddChild(child *Entry) *Entry {
	return e.WithChildren(child)
}

// AddScalarChild appends a scalar child built from its parts.
func (e *Entry) AddScalarChild(key string, state State, value any) *Entry {
	return e.WithChildren(NewScalar(key, state, value))
}

// WithState replaces the state of the entry.
func (e *Entry) WithState(state State) *Entry {
	e.State = state
	return e
}

// IsScalar reports whether the entry holds a value only.
func (e *Entry) IsScalar() bool {
	return e.Children == nil
}

// ChildrenCount returns the number of children; false for scalar entries.
func (e *Entry) ChildrenCount() (int, bool) {
	if e.IsScalar() {
		return 0, false
	}
	return len(e.Children), true
}

// Child returns the direct child with the given key.
func (e *Entry) Child(key string) (*Entry, bool) {
	for _, child := range e.Children {
		if child.Key == key {
			return child, true
		}
	}
	return nil, false
}

// Decode unmarshals the serialized value of the entry into target.
func (e *Entry) Decode(target any) error {
	buf := new(bytes.Buffer)
	if err := e.writeValue(buf); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), target)
}

func (e *Entry) writeValue(buf *bytes.Buffer) error {
	if e.IsScalar() {
		encoded, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("value of %s: %w", e.Key, err)
		}
		buf.Write(encoded)
		return nil
	}

	obj := newObjectWriter(buf)
	if e.Value != nil {
		if err := obj.member(valueKey, e.Value); err != nil {
			return fmt.Errorf("value of %s: %w", e.Key, err)
		}
	}
	for _, child := range e.Children {
		if err := obj.key(child.Key); err != nil {
			return err
		}
		if err := child.writeValue(buf); err != nil {
			return err
		}
	}
	obj.close()
	return nil
}

func (e *Entry) writeState(buf *bytes.Buffer) error {
	obj := newObjectWriter(buf)
	if err := e.State.writeFields(obj); err != nil {
		return err
	}
	for _, child := range e.Children {
		if err := obj.key(child.Key); err != nil {
			return err
		}
		if err := child.writeState(buf); err != nil {
			return err
		}
	}
	obj.close()
	return nil
}

// readState applies a serialized state object to the entry and its children.
func (e *Entry) readState(raw json.RawMessage) error {
	members, isObject, err := decodeObject(raw)
	if err != nil {
		return fmt.Errorf("%w: state of %s: %w", ErrMalformedEnvelope, e.Key, err)
	}
	if !isObject {
		return fmt.Errorf("%w: state of %s is not an object", ErrMalformedEnvelope, e.Key)
	}

	childStates, err := e.State.readFields(members)
	if err != nil {
		return err
	}
	for _, m := range childStates {
		child, ok := e.Child(m.key)
		if !ok {
			child = NewScalar(m.key, OkState(), nil)
			e.WithChildren(child)
		}
		if err := child.readState(m.raw); err != nil {
			return err
		}
	}
	return nil
}
