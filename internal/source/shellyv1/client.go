// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package shellyv1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mia-platform/asynciot/internal/auth"
	"github.com/mia-platform/asynciot/internal/info"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20
)

// Client performs calls against the HTTP API of a single device.
type Client struct {
	baseURL *url.URL
	client  *http.Client
}

// NewClient returns a client for the device at address. The scheme defaults to http.
func NewClient(address string, credentials *auth.Credentials) (*Client, error) {
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	baseURL, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if baseURL.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidAddress, address)
	}
	if err := credentials.Validate(); err != nil {
		return nil, err
	}
	baseURL.Path = strings.TrimSuffix(baseURL.Path, "/")

	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   defaultTimeout,
			Transport: auth.NewTransport(credentials, nil),
		},
	}, nil
}

// Address returns the host of the device.
func (c *Client) Address() string {
	return c.baseURL.Host
}

// Info reads the device identification.
func (c *Client) Info(ctx context.Context) (DeviceInfo, error) {
	return get[DeviceInfo](ctx, c, "/shelly", nil)
}

// Settings reads the device settings.
func (c *Client) Settings(ctx context.Context) (Settings, error) {
	return get[Settings](ctx, c, "/settings", nil)
}

// Relay reads relay id, applying query first when not empty.
func (c *Client) Relay(ctx context.Context, id int, query *RelayQuery) (Relay, error) {
	return get[Relay](ctx, c, "/relay/"+strconv.Itoa(id), query.Values())
}

// Light reads light id, applying query first when not empty.
func (c *Client) Light(ctx context.Context, id int, query *LightQuery) (Light, error) {
	return get[Light](ctx, c, "/light/"+strconv.Itoa(id), query.Values())
}

// Meter reads power meter id.
func (c *Client) Meter(ctx context.Context, id int) (Meter, error) {
	return get[Meter](ctx, c, "/meter/"+strconv.Itoa(id), nil)
}

func get[R any](ctx context.Context, c *Client, path string, query url.Values) (R, error) {
	var response R

	endpoint := *c.baseURL
	endpoint.Path += path
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return response, c.handleError(0, err)
	}
	request.Header.Set("User-Agent", info.UserAgent())
	request.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(request)
	if err != nil {
		return response, c.handleError(0, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return response, c.handleError(resp.StatusCode, ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		return response, c.handleError(resp.StatusCode, fmt.Errorf("%w: %s", ErrNotFound, path))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return response, c.handleError(resp.StatusCode, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&response); err != nil {
		return response, c.handleError(resp.StatusCode, fmt.Errorf("decoding %s: %w", path, err))
	}
	return response, nil
}
