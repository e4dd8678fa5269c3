// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package destination

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/asynciot/internal/results"
)

func TestCustomMarshaling(t *testing.T) {
	t.Parallel()

	snapshotTime := time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)
	okPayload := results.New().WithEntries(results.NewScalar("relay0", results.OkState(), true))
	okPayload.Timestamp = snapshotTime
	degradedPayload := results.New().WithEntries(results.EntryFromErr("relay0", errors.New("offline")))
	degradedPayload.Timestamp = snapshotTime

	testCases := map[string]struct {
		input    Data
		expected string
	}{
		"healthy snapshot": {
			input: Data{
				ID:      "id-1",
				Device:  "garage",
				Kind:    "shelly1",
				Time:    snapshotTime,
				Payload: okPayload,
			},
			expected: `{"id":"id-1","device":"garage","kind":"shelly1","time":"2024-03-01T10:30:00Z","payload":{"relay0":true,"_timestamp":"2024-03-01T10:30:00.000000","_results":{"relay0":{"_status":"ok"}}},"status":"ok"}`,
		},
		"degraded snapshot": {
			input: Data{
				ID:      "id-2",
				Device:  "garage",
				Kind:    "shelly1",
				Time:    snapshotTime,
				Payload: degradedPayload,
			},
			expected: `{"id":"id-2","device":"garage","kind":"shelly1","time":"2024-03-01T10:30:00Z","payload":{"relay0":null,"_timestamp":"2024-03-01T10:30:00.000000","_results":{"relay0":{"_status":"error","_error":"offline"}}},"status":"degraded"}`,
		},
		"snapshot without payload": {
			input: Data{
				ID:     "id-3",
				Device: "garage",
				Kind:   "shelly1",
				Time:   snapshotTime,
			},
			expected: `{"id":"id-3","device":"garage","kind":"shelly1","time":"2024-03-01T10:30:00Z","payload":null,"status":"ok"}`,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			marshaled, err := json.Marshal(tc.input)
			require.NoError(t, err)
			assert.JSONEq(t, tc.expected, string(marshaled))
		})
	}
}

type closableSender struct {
	closed int
	err    error
}

func (s *closableSender) SendData(context.Context, *Data) error { return nil }

func (s *closableSender) Close(context.Context) error {
	s.closed++
	return s.err
}

type plainSender struct{}

func (plainSender) SendData(context.Context, *Data) error { return nil }

func TestCloseAll(t *testing.T) {
	t.Parallel()

	closeErr := errors.New("close failed")
	first := &closableSender{}
	second := &closableSender{err: closeErr}

	err := CloseAll(t.Context(), first, plainSender{}, second)
	require.ErrorIs(t, err, closeErr)
	assert.Equal(t, 1, first.closed)
	assert.Equal(t, 1, second.closed)

	require.NoError(t, Close(t.Context(), plainSender{}))
}
