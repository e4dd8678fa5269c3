// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/asynciot/internal/auth"
)

func TestNewHostConfigFromPath(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testCases := map[string]struct {
		path             string
		expectedConfig   *HostConfig
		expectedError    error
		expectedMessages []string
	}{
		"empty path returns the default configuration": {
			path:           "",
			expectedConfig: DefaultHostConfig(),
		},
		"valid yaml file": {
			path: filepath.Join("testdata", "devices.yaml"),
			expectedConfig: &HostConfig{
				Devices: []DeviceConfig{
					{Name: "local", Kind: KindSystemState, Path: "/system"},
					{
						Name:    "garage",
						Kind:    KindShelly1PM,
						Path:    "/devices/garage",
						Address: "192.168.1.20",
						Auth:    &auth.Credentials{Username: "admin", Password: "secret"},
					},
					{Name: "kitchen", Kind: KindShelly1L, Path: "/kitchen/light", Address: "http://192.168.1.21"},
					{
						Name:    "attic",
						Kind:    KindRemoteSystemState,
						Path:    "/devices/attic",
						Address: "http://attic.local:4088",
						Auth:    &auth.Credentials{Token: "a-token"},
					},
				},
				Export: ExportConfig{Sinks: []string{SinkStdout}},
			},
		},
		"valid json file": {
			path: filepath.Join("testdata", "devices.json"),
			expectedConfig: &HostConfig{
				Devices: []DeviceConfig{
					{Name: "local", Kind: KindSystemState, Path: "/system"},
					{Name: "garage", Kind: KindShelly1, Path: "/devices/garage", Address: "192.168.1.20"},
				},
			},
		},
		"multiple documents are merged": {
			path: filepath.Join("testdata", "multiple.yaml"),
			expectedConfig: &HostConfig{
				Devices: []DeviceConfig{
					{Name: "local", Kind: KindSystemState, Path: "/system"},
					{Name: "garage", Kind: KindShelly1, Path: "/devices/garage", Address: "192.168.1.20"},
				},
				Export: ExportConfig{Sinks: []string{SinkCollector}},
			},
		},
		"unknown field": {
			path:             filepath.Join("testdata", "unknown-field.yaml"),
			expectedError:    ErrParsing,
			expectedMessages: []string{"field color not found"},
		},
		"invalid devices": {
			path:          filepath.Join("testdata", "invalid.yaml"),
			expectedError: ErrParsing,
			expectedMessages: []string{
				"device 0: missing required fields: name, address",
				"device 0: unknown kind 'toaster'",
				"device 1: missing required fields: address",
				"device 2: path '/info' is reserved",
				"device 2: username and token cannot be set together",
				"unknown sink 'printer'",
			},
		},
		"duplicated devices": {
			path:          filepath.Join("testdata", "duplicates.yaml"),
			expectedError: ErrParsing,
			expectedMessages: []string{
				"device 1: duplicate name 'garage'",
				"device 1: duplicate path '/devices/garage'",
			},
		},
		"file without devices": {
			path:             filepath.Join("testdata", "empty.yaml"),
			expectedError:    ErrParsing,
			expectedMessages: []string{"no devices configured"},
		},
		"missing file": {
			path:          filepath.Join(tempDir, "missing.yaml"),
			expectedError: syscall.ENOENT,
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			config, err := NewHostConfigFromPath(test.path)
			if test.expectedError != nil {
				require.ErrorIs(t, err, test.expectedError)
				assert.Nil(t, config)
				for _, message := range test.expectedMessages {
					assert.Contains(t, err.Error(), message)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expectedConfig, config)
		})
	}
}

func TestDeviceConfigKinds(t *testing.T) {
	t.Parallel()

	assert.False(t, DeviceConfig{Kind: KindSystemState}.IsNetworked())
	assert.True(t, DeviceConfig{Kind: KindRemoteSystemState}.IsNetworked())
	assert.False(t, DeviceConfig{Kind: KindRemoteSystemState}.IsShelly())
	for _, kind := range []string{KindShelly1, KindShelly1PM, KindShelly1L} {
		assert.True(t, DeviceConfig{Kind: kind}.IsShelly(), kind)
	}
}

func TestSystemStateWithAddress(t *testing.T) {
	t.Parallel()

	_, err := newHostConfig(strings.NewReader(`
devices:
  - name: local
    kind: system_state
    address: 10.0.0.1
`), "inline")
	require.ErrorIs(t, err, ErrParsing)
	assert.Contains(t, err.Error(), "a local system state has no address")
}
