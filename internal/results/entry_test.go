// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package results

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryFromValue(t *testing.T) {
	t.Parallel()

	type address struct {
		Addr string `json:"addr"`
		Mask string `json:"mask"`
	}

	t.Run("null becomes an empty scalar", func(t *testing.T) {
		t.Parallel()

		entry := EntryFromValue("temperature", nil)
		assert.True(t, entry.IsScalar())
		assert.Nil(t, entry.Value)
	})

	t.Run("arrays stay scalars", func(t *testing.T) {
		t.Parallel()

		entry := EntryFromValue("address_v4", []address{{Addr: "10.0.0.2", Mask: "255.255.255.0"}})
		assert.True(t, entry.IsScalar())

		var decoded []address
		require.NoError(t, entry.Decode(&decoded))
		assert.Equal(t, []address{{Addr: "10.0.0.2", Mask: "255.255.255.0"}}, decoded)
	})

	t.Run("objects become mappings in field order", func(t *testing.T) {
		t.Parallel()

		entry := EntryFromValue("eth0", address{Addr: "10.0.0.2", Mask: "255.255.255.0"})
		count, ok := entry.ChildrenCount()
		require.True(t, ok)
		assert.Equal(t, 2, count)
		assert.Equal(t, "addr", entry.Children[0].Key)
		assert.Equal(t, "mask", entry.Children[1].Key)
	})

	t.Run("unserializable values become errors", func(t *testing.T) {
		t.Parallel()

		entry := EntryFromValue("broken", func() {})
		assert.True(t, entry.State.IsErr())
	})
}

func TestEntryFromExtended(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		result        Extended[int]
		expectedState State
	}{
		"ok": {
			result:        Ok(4),
			expectedState: OkState(),
		},
		"with warnings": {
			result:        Ok(4).WithWarnings("Failed to get 'usage': busy"),
			expectedState: WarningsState([]string{"Failed to get 'usage': busy"}),
		},
		"failure": {
			result:        Fail[int](20, errors.New("cannot read cpu")),
			expectedState: ErrorState("cannot read cpu"),
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			entry := EntryFromExtended("cpu", test.result)
			assert.Equal(t, test.expectedState, entry.State)
		})
	}
}

func TestEntryChildren(t *testing.T) {
	t.Parallel()

	scalar := NewScalar("cpu", OkState(), "arm64")
	_, ok := scalar.ChildrenCount()
	assert.False(t, ok)

	scalar.AddScalarChild("cores", OkState(), 4).AddChild(EntryFromErr("usage", errors.New("busy")))
	assert.False(t, scalar.IsScalar())

	count, ok := scalar.ChildrenCount()
	require.True(t, ok)
	assert.Equal(t, 2, count)

	usage, ok := scalar.Child("usage")
	require.True(t, ok)
	assert.True(t, usage.State.IsErr())

	_, ok = scalar.Child("missing")
	assert.False(t, ok)

	scalar.WithState(ErrorState("partial"))
	assert.Equal(t, "error: partial", scalar.State.String())
}

func TestEntryFromResult(t *testing.T) {
	t.Parallel()

	assert.True(t, EntryFromResult("key", nil, errors.New("boom")).State.IsErr())
	assert.Equal(t, OkState(), EntryFromResult("key", "value", nil).State)
}
