// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package remote reads the system state exposed by another asynciot host.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mia-platform/asynciot/internal/auth"
	"github.com/mia-platform/asynciot/internal/info"
	"github.com/mia-platform/asynciot/internal/results"
	"github.com/mia-platform/asynciot/internal/source"
	"github.com/mia-platform/asynciot/internal/source/systemstate"
)

const (
	// DefaultPath is where hosts mount their own system state.
	DefaultPath = "/system"

	defaultTimeout = 10 * time.Second
	maxBodySize    = 4 << 20
)

var (
	ErrInvalidAddress = errors.New("invalid remote host address")
	ErrUnexpectedResp = errors.New("unexpected response from remote host")
)

// HostError is returned for every failed exchange with a remote host.
type HostError struct {
	Address string
	err     error
}

func (e *HostError) Error() string {
	return fmt.Sprintf("remote host %s: %s", e.Address, e.err)
}

func (e *HostError) Unwrap() error {
	return e.err
}

var _ source.StateSource = &SystemState{}

// SystemState mirrors the system state of a remote host.
type SystemState struct {
	endpoint *url.URL
	client   *http.Client
}

// New returns the remote system state served at address. When address has no path
// the remote system state is expected under DefaultPath.
func New(address string, credentials *auth.Credentials) (*SystemState, error) {
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	endpoint, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if endpoint.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidAddress, address)
	}
	if err := credentials.Validate(); err != nil {
		return nil, err
	}

	endpoint.Path = strings.TrimSuffix(endpoint.Path, "/")
	if endpoint.Path == "" {
		endpoint.Path = DefaultPath
	}

	return &SystemState{
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   defaultTimeout,
			Transport: auth.NewTransport(credentials, nil),
		},
	}, nil
}

func (s *SystemState) AvailableKeys() []string {
	return systemstate.Keys()
}

// Get fetches the requested keys from the remote host. A single key is requested on its
// own path, several keys are read from the full state. Keys the remote host did not
// report are returned as error entries.
func (s *SystemState) Get(ctx context.Context, keys []string) (*results.JSON, error) {
	endpoint := *s.endpoint
	if len(keys) == 1 {
		endpoint.Path += "/" + url.PathEscape(keys[0])
	}

	envelope, err := s.fetch(ctx, endpoint.String())
	if err != nil {
		return nil, err
	}

	subset := envelope.Get(keys...)
	for _, key := range keys {
		if _, ok := subset.Entry(key); !ok {
			subset.WithEntries(results.EntryFromErr(key, &systemstate.UnknownKeyError{Key: key}))
		}
	}
	return subset, nil
}

func (s *SystemState) fetch(ctx context.Context, endpoint string) (*results.JSON, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, s.handleError(err)
	}
	request.Header.Set("User-Agent", info.UserAgent())
	request.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(request)
	if err != nil {
		return nil, s.handleError(err)
	}
	defer resp.Body.Close()

	// hosts answer with an envelope even when reading fails
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusInternalServerError {
		return nil, s.handleError(fmt.Errorf("%w: status code %d", ErrUnexpectedResp, resp.StatusCode))
	}

	envelope := results.New()
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(envelope); err != nil {
		return nil, s.handleError(fmt.Errorf("%w: %w", ErrUnexpectedResp, err))
	}
	return envelope, nil
}

func (s *SystemState) handleError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &HostError{Address: s.endpoint.Host, err: err}
}
