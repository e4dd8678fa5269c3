// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"bytes"
	"encoding/json"
	netHTTP "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMiddlewareLogger(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		path          string
		requestID     string
		expectedLines int
	}{
		"request is logged twice": {
			path:          "/system/cpu?pretty=true",
			expectedLines: 2,
		},
		"forwarded request id is kept": {
			path:          "/info",
			requestID:     "my-request-id",
			expectedLines: 2,
		},
		"excluded prefix is not logged": {
			path:          "/-/healthz",
			expectedLines: 0,
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			buffer := new(bytes.Buffer)
			logger := NewLogger(buffer)
			logger.SetLevel(TRACE)

			app := fiber.New(fiber.Config{DisableStartupMessage: true})
			app.Use(RequestMiddlewareLogger(logger, []string{"/-/"}))
			app.Get("/*", func(c *fiber.Ctx) error {
				FromContext(c.UserContext()).Debug("inside handler")
				return c.SendString("ok")
			})

			req := httptest.NewRequest(netHTTP.MethodGet, "http://example.com"+test.path, nil)
			req.Header.Set("User-Agent", "UnitTestAgent/1.0")
			if test.requestID != "" {
				req.Header.Set(requestIDHeaderName, test.requestID)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			logs := strings.TrimSpace(buffer.String())
			if test.expectedLines == 0 {
				assert.Empty(t, logs)
				assert.Empty(t, resp.Header.Get(requestIDHeaderName))
				return
			}

			// the handler line sits between the two middleware lines
			lines := strings.Split(logs, "\n")
			require.Len(t, lines, test.expectedLines+1)

			incoming := make(map[string]any)
			require.NoError(t, json.Unmarshal([]byte(lines[0]), &incoming))
			assert.Equal(t, IncomingRequestMessage, incoming["@message"])

			completed := make(map[string]any)
			require.NoError(t, json.Unmarshal([]byte(lines[2]), &completed))
			assert.Equal(t, RequestCompletedMessage, completed["@message"])

			requestID := resp.Header.Get(requestIDHeaderName)
			require.NotEmpty(t, requestID)
			if test.requestID != "" {
				assert.Equal(t, test.requestID, requestID)
			}
			assert.Equal(t, "asynciot:request:"+requestID, completed["@module"])
		})
	}
}
