// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package results

import (
	"bytes"
	"encoding/json"
	"errors"
)

var (
	ErrMalformedEnvelope = errors.New("malformed result envelope")
)

// objectWriter writes a JSON object member by member, keeping insertion order.
type objectWriter struct {
	buf   *bytes.Buffer
	empty bool
}

func newObjectWriter(buf *bytes.Buffer) *objectWriter {
	buf.WriteByte('{')
	return &objectWriter{buf: buf, empty: true}
}

func (o *objectWriter) key(key string) error {
	if !o.empty {
		o.buf.WriteByte(',')
	}
	o.empty = false

	encoded, err := json.Marshal(key)
	if err != nil {
		return err
	}
	o.buf.Write(encoded)
	o.buf.WriteByte(':')
	return nil
}

func (o *objectWriter) member(key string, value any) error {
	if err := o.key(key); err != nil {
		return err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	o.buf.Write(encoded)
	return nil
}

func (o *objectWriter) close() {
	o.buf.WriteByte('}')
}

type member struct {
	key string
	raw json.RawMessage
}

// decodeObject splits a JSON object in its members, in document order.
// The boolean is false when data holds any other JSON value.
func decodeObject(data []byte) ([]member, bool, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	token, err := decoder.Token()
	if err != nil {
		return nil, false, err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, false, nil
	}

	members := make([]member, 0)
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, true, err
		}
		key, ok := token.(string)
		if !ok {
			return nil, true, ErrMalformedEnvelope
		}

		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			return nil, true, err
		}
		members = append(members, member{key: key, raw: raw})
	}

	if _, err := decoder.Token(); err != nil {
		return nil, true, err
	}
	return members, true, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
