// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom(t *testing.T) {
	t.Parallel()

	baseErr := errors.New("boom")

	testCases := map[string]struct {
		err          error
		expectedCode int
	}{
		"nil error is a success": {
			expectedCode: Success,
		},
		"plain error is unknown": {
			err:          baseErr,
			expectedCode: UnknownFailure,
		},
		"code is carried": {
			err:          New(SystemReadFailure, baseErr),
			expectedCode: SystemReadFailure,
		},
		"code is found through wrapping": {
			err:          fmt.Errorf("running host: %w", New(RequestedTermination, baseErr)),
			expectedCode: RequestedTermination,
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.expectedCode, From(test.err))
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	require.NoError(t, New(ConfigInvalid, nil))

	baseErr := errors.New("invalid port")
	err := New(ConfigInvalid, baseErr)
	require.ErrorIs(t, err, baseErr)
	assert.Equal(t, "invalid port", err.Error())
}
