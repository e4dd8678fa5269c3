// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package remote

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/asynciot/internal/auth"
	"github.com/mia-platform/asynciot/internal/results"
)

func remoteEnvelope(keys ...string) *results.JSON {
	envelope := results.New()
	for _, key := range keys {
		switch key {
		case "memory":
			envelope.WithEntries(results.EntryFromValue(key, map[string]any{"physical": map[string]any{"total": 1024}}))
		case "cpu":
			envelope.WithEntries(results.EntryFromErr(key, errors.New("cpu unreadable")))
		default:
			envelope.WithEntries(results.EntryFromValue(key, map[string]any{"name": "debian"}))
		}
	}
	return envelope
}

type requestedPaths struct {
	lock  sync.Mutex
	paths []string
}

func (r *requestedPaths) add(path string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.paths = append(r.paths, path)
}

func (r *requestedPaths) list() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.paths...)
}

func newRemoteHost(t *testing.T) (*httptest.Server, *requestedPaths) {
	t.Helper()

	paths := new(requestedPaths)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /system", func(w http.ResponseWriter, r *http.Request) {
		paths.add(r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer remote-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(remoteEnvelope("system", "cpu", "memory"))
	})
	mux.HandleFunc("GET /system/{key}", func(w http.ResponseWriter, r *http.Request) {
		paths.add(r.URL.Path)
		_ = json.NewEncoder(w).Encode(remoteEnvelope(r.PathValue("key")))
	})
	mux.HandleFunc("GET /garbage/system", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an envelope"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, paths
}

func TestNew(t *testing.T) {
	t.Parallel()

	state, err := New("192.168.1.30:4088", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.30:4088/system", state.endpoint.String())

	state, err = New("https://pi.local/other/", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://pi.local/other", state.endpoint.String())

	_, err = New("http://", nil)
	require.ErrorIs(t, err, ErrInvalidAddress)

	assert.Equal(t, []string{"system", "cpu", "temperatures", "memory", "disks", "networks"}, state.AvailableKeys())
}

func TestGet(t *testing.T) {
	t.Parallel()

	server, paths := newRemoteHost(t)
	state, err := New(server.URL, &auth.Credentials{Token: "remote-token"})
	require.NoError(t, err)

	envelope, err := state.Get(t.Context(), []string{"memory", "system", "disks"})
	require.NoError(t, err)
	assert.Equal(t, []string{"system", "memory", "disks"}, envelope.Keys())

	disks, ok := envelope.Entry("disks")
	require.True(t, ok)
	assert.Equal(t, results.ErrorState("Requested key of disks not recognised."), disks.State)

	envelope, err = state.Get(t.Context(), []string{"cpu"})
	require.NoError(t, err)
	cpu, ok := envelope.Entry("cpu")
	require.True(t, ok)
	assert.Equal(t, results.ErrorState("cpu unreadable"), cpu.State)

	assert.Equal(t, []string{"/system", "/system/cpu"}, paths.list())
}

func TestGetErrors(t *testing.T) {
	t.Parallel()

	server, _ := newRemoteHost(t)

	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()

		state, err := New(server.URL, nil)
		require.NoError(t, err)

		_, err = state.Get(t.Context(), []string{"system", "cpu"})
		require.ErrorIs(t, err, ErrUnexpectedResp)

		var hostErr *HostError
		require.ErrorAs(t, err, &hostErr)
	})

	t.Run("response is not an envelope", func(t *testing.T) {
		t.Parallel()

		state, err := New(server.URL+"/garbage/system", nil)
		require.NoError(t, err)

		_, err = state.Get(t.Context(), []string{"system", "cpu"})
		require.ErrorIs(t, err, results.ErrMalformedEnvelope)
	})
}
