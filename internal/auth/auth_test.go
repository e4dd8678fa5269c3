// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransport(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		credentials    *Credentials
		expectedHeader string
	}{
		"no credentials": {},
		"empty credentials": {
			credentials: &Credentials{},
		},
		"basic authentication": {
			credentials:    &Credentials{Username: "admin", Password: "secret"},
			expectedHeader: "Basic YWRtaW46c2VjcmV0",
		},
		"basic authentication without password": {
			credentials:    &Credentials{Username: "admin"},
			expectedHeader: "Basic YWRtaW46",
		},
		"bearer token": {
			credentials:    &Credentials{Token: "my-token"},
			expectedHeader: "Bearer my-token",
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var receivedHeader string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				receivedHeader = r.Header.Get("Authorization")
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			client := &http.Client{Transport: NewTransport(test.credentials, nil)}
			request, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL, nil)
			require.NoError(t, err)

			response, err := client.Do(request)
			require.NoError(t, err)
			defer response.Body.Close()

			assert.Equal(t, test.expectedHeader, receivedHeader)
			assert.Empty(t, request.Header.Get("Authorization"))
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	var nilCredentials *Credentials
	require.NoError(t, nilCredentials.Validate())
	require.NoError(t, (&Credentials{Username: "admin"}).Validate())
	require.ErrorIs(t, (&Credentials{Username: "admin", Token: "token"}).Validate(), ErrConflictingCredentials)
}
