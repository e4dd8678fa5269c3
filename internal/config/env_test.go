// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHostEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		envVars, err := LoadHostEnv()
		require.NoError(t, err)
		assert.Equal(t, &HostEnv{
			RefreshInterval: 5 * time.Second,
			LatestVisits:    10,
			ExportInterval:  time.Minute,
		}, envVars)
	})

	t.Run("custom values", func(t *testing.T) {
		t.Setenv("REFRESH_INTERVAL", "500ms")
		t.Setenv("LATEST_VISITS", "3")
		t.Setenv("EXPORT_INTERVAL", "30s")

		envVars, err := LoadHostEnv()
		require.NoError(t, err)
		assert.Equal(t, 500*time.Millisecond, envVars.RefreshInterval)
		assert.Equal(t, 3, envVars.LatestVisits)
		assert.Equal(t, 30*time.Second, envVars.ExportInterval)
	})

	t.Run("unparsable duration", func(t *testing.T) {
		t.Setenv("REFRESH_INTERVAL", "often")

		_, err := LoadHostEnv()
		require.ErrorIs(t, err, ErrEnvVariablesNotValid)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("REFRESH_INTERVAL", "0s")
		t.Setenv("LATEST_VISITS", "0")

		_, err := LoadHostEnv()
		require.ErrorIs(t, err, ErrEnvVariablesNotValid)
		assert.Contains(t, err.Error(), "REFRESH_INTERVAL must be positive")
		assert.Contains(t, err.Error(), "LATEST_VISITS must be at least 1")
	})
}
