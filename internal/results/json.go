// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// TimestampLayout is the layout of the "_timestamp" member, always in UTC.
	TimestampLayout = "2006-01-02T15:04:05.000000"

	timestampKey = "_timestamp"
	resultsKey   = "_results"
)

// JSON is an ordered collection of entries serialized as a result envelope.
type JSON struct {
	entries []*Entry

	// Timestamp is set when an envelope is decoded. Envelopes built in process
	// are stamped with the current time when serialized.
	Timestamp time.Time
}

// New returns an empty envelope.
func New() *JSON {
	return &JSON{entries: make([]*Entry, 0)}
}

// WithCapacity returns an empty envelope able to hold capacity entries without growing.
func WithCapacity(capacity int) *JSON {
	return &JSON{entries: make([]*Entry, 0, capacity)}
}

// FromErr returns an envelope holding the same error for every key.
func FromErr(err error, keys ...string) *JSON {
	envelope := WithCapacity(len(keys))
	for _, key := range keys {
		envelope.entries = append(envelope.entries, EntryFromErr(key, err))
	}
	return envelope
}

// FromEntry returns an envelope whose entries are the children of entry, or entry
// itself when it is a scalar.
func FromEntry(entry *Entry) *JSON {
	if entry.IsScalar() {
		return New().WithEntries(entry)
	}
	return New().WithEntries(entry.Children...)
}

// WithEntries appends entries to the envelope.
func (j *JSON) WithEntries(entries ...*Entry) *JSON {
	j.entries = append(j.entries, entries...)
	return j
}

// AddResult appends a scalar entry for value. When value cannot be serialized the
// entry records the serialization error instead.
func (j *JSON) AddResult(key string, state State, value any) *JSON {
	encoded, err := json.Marshal(value)
	if err != nil {
		originalState, stateErr := json.Marshal(state)
		if stateErr != nil {
			originalState = []byte("(Cannot serialize state.)")
		}
		message := fmt.Sprintf("Value cannot be JSON serialized due to '%s'. Original state: %s", err, originalState)
		return j.WithEntries(NewScalar(key, ErrorState(message), nil))
	}

	return j.WithEntries(NewScalar(key, state, json.RawMessage(encoded)))
}

// Get returns a new envelope with the entries matching keys, in envelope order.
// Unknown keys are ignored.
func (j *JSON) Get(keys ...string) *JSON {
	wanted := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		wanted[key] = struct{}{}
	}

	subset := WithCapacity(len(keys))
	subset.Timestamp = j.Timestamp
	for _, entry := range j.entries {
		if _, ok := wanted[entry.Key]; ok {
			subset.entries = append(subset.entries, entry)
		}
	}
	return subset
}

// Entry returns the top level entry with the given key.
func (j *JSON) Entry(key string) (*Entry, bool) {
	for _, entry := range j.entries {
		if entry.Key == key {
			return entry, true
		}
	}
	return nil, false
}

// Entries returns the top level entries.
func (j *JSON) Entries() []*Entry {
	return j.entries
}

// Keys returns the top level keys, in order.
func (j *JSON) Keys() []string {
	keys := make([]string, 0, len(j.entries))
	for _, entry := range j.entries {
		keys = append(keys, entry.Key)
	}
	return keys
}

// Len returns the number of top level entries.
func (j *JSON) Len() int {
	return len(j.entries)
}

// HasErrors reports whether any top level entry is in the error state.
func (j *JSON) HasErrors() bool {
	for _, entry := range j.entries {
		if entry.State.IsErr() {
			return true
		}
	}
	return false
}

func (j *JSON) MarshalJSON() ([]byte, error) {
	timestamp := j.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	buf := new(bytes.Buffer)
	obj := newObjectWriter(buf)
	for _, entry := range j.entries {
		if err := obj.key(entry.Key); err != nil {
			return nil, err
		}
		if err := entry.writeValue(buf); err != nil {
			return nil, err
		}
	}

	if err := obj.member(timestampKey, timestamp.UTC().Format(TimestampLayout)); err != nil {
		return nil, err
	}

	if err := obj.key(resultsKey); err != nil {
		return nil, err
	}
	states := newObjectWriter(buf)
	for _, entry := range j.entries {
		if err := states.key(entry.Key); err != nil {
			return nil, err
		}
		if err := entry.writeState(buf); err != nil {
			return nil, err
		}
	}
	states.close()
	obj.close()

	return buf.Bytes(), nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	members, isObject, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	if !isObject {
		return fmt.Errorf("%w: envelope is not an object", ErrMalformedEnvelope)
	}

	decoded := New()
	var states []member
	foundStates := false
	for _, m := range members {
		switch m.key {
		case resultsKey:
			var isStatesObject bool
			states, isStatesObject, err = decodeObject(m.raw)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrMalformedEnvelope, resultsKey, err)
			}
			if !isStatesObject {
				return fmt.Errorf("%w: %s does not contain an object", ErrMalformedEnvelope, resultsKey)
			}
			foundStates = true
		case timestampKey:
			var timestamp string
			if err := json.Unmarshal(m.raw, &timestamp); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrMalformedEnvelope, timestampKey, err)
			}
			parsed, err := time.ParseInLocation(TimestampLayout, timestamp, time.UTC)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrMalformedEnvelope, timestampKey, err)
			}
			decoded.Timestamp = parsed
		default:
			decoded.entries = append(decoded.entries, entryFromRaw(m.key, m.raw, true))
		}
	}

	if !foundStates {
		return fmt.Errorf("%w: missing %s", ErrMalformedEnvelope, resultsKey)
	}

	for _, m := range states {
		entry, ok := decoded.Entry(m.key)
		if !ok {
			entry = NewScalar(m.key, OkState(), nil)
			decoded.entries = append(decoded.entries, entry)
		}
		if err := entry.readState(m.raw); err != nil {
			return err
		}
	}

	*j = *decoded
	return nil
}
