// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/asynciot/internal/info"
	"github.com/mia-platform/asynciot/internal/source"
)

func TestNewApp(t *testing.T) {
	t.Run("successfully creates app with valid config", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "3000")

		srv, err := NewServer(t.Context())
		require.NoError(t, err)
		require.NotNil(t, srv)
		defer srv.App().Shutdown()

		for _, path := range []string{"/-/healthz", "/-/ready"} {
			request := httptest.NewRequest(http.MethodGet, path, nil)
			response, err := srv.App().Test(request)
			require.NoError(t, err)

			require.Equal(t, http.StatusOK, response.StatusCode)
			var body StatusResponse
			require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
			response.Body.Close()
			assert.Equal(t, StatusResponse{Status: "OK", Name: info.AppName, Version: info.Version}, body)
		}
	})

	t.Run("fails with invalid config", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "0")

		srv, err := NewServer(t.Context())
		require.ErrorIs(t, err, ErrEnvVariablesNotValid)
		require.Nil(t, srv)
	})
}

func TestStartServer(t *testing.T) {
	t.Run("starts and stops the server successfully", func(t *testing.T) {
		srv := NewServerWithConfig(t.Context(), &Config{HTTPAddr: "127.0.0.1", HTTPPort: 3001, DisableStartupMessage: true})

		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.Start()
		}()

		require.Eventually(t, func() bool {
			response, err := http.Get("http://127.0.0.1:3001/-/healthz")
			if err != nil {
				return false
			}
			response.Body.Close()
			return response.StatusCode == http.StatusOK
		}, 5*time.Second, 50*time.Millisecond)

		require.NoError(t, srv.Stop())
		require.NoError(t, <-errChan)
	})

	t.Run("listen failure is wrapped", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer listener.Close()

		port := listener.Addr().(*net.TCPAddr).Port
		srv := NewServerWithConfig(t.Context(), &Config{HTTPAddr: "127.0.0.1", HTTPPort: port, DisableStartupMessage: true})
		require.ErrorIs(t, srv.Start(), ErrServerListen)
	})
}

func TestStartAsyncServer(t *testing.T) {
	srv := NewServerWithConfig(t.Context(), &Config{HTTPAddr: "127.0.0.1", HTTPPort: 3003, DisableStartupMessage: true})
	srv.StartAsync(t.Context())

	require.Eventually(t, func() bool {
		response, err := http.Get("http://127.0.0.1:3003/-/ready")
		if err != nil {
			return false
		}
		response.Body.Close()
		return response.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, srv.Stop())
}

func TestAddRoute(t *testing.T) {
	t.Parallel()

	srv := NewServerWithConfig(t.Context(), &Config{HTTPPort: 3000, DisableStartupMessage: true})
	srv.AddRoute(http.MethodGet, "/hello/:name", func(ctx *fiber.Ctx) error {
		return ctx.SendString("hello " + ctx.Params("name"))
	})

	response, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/hello/world", nil))
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "hello world", string(body))
}

func TestAddWebhook(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		handlerErr     error
		expectedStatus int
	}{
		"handler succeeds": {
			expectedStatus: http.StatusNoContent,
		},
		"handler fails": {
			handlerErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			called := false
			srv := NewServerWithConfig(t.Context(), &Config{HTTPPort: 3000, DisableStartupMessage: true})
			srv.AddWebhook(source.Webhook{
				Method: http.MethodPost,
				Path:   "/webhooks/garage",
				Handler: func(_ context.Context, headers http.Header, query url.Values, body []byte) error {
					called = true
					assert.Equal(t, "value", headers.Get("X-Test"))
					assert.Equal(t, "on", query.Get("turn"))
					assert.Equal(t, "payload", string(body))
					return test.handlerErr
				},
			})

			request := httptest.NewRequest(http.MethodPost, "/webhooks/garage?turn=on", strings.NewReader("payload"))
			request.Header.Set("X-Test", "value")
			response, err := srv.App().Test(request)
			require.NoError(t, err)
			defer response.Body.Close()

			assert.True(t, called)
			assert.Equal(t, test.expectedStatus, response.StatusCode)
		})
	}
}
