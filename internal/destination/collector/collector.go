// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/caarlos0/env/v11"

	"github.com/mia-platform/asynciot/internal/destination"
	"github.com/mia-platform/asynciot/internal/info"
)

const (
	snapshotIDHeader = "X-Snapshot-Id"
	deviceHeader     = "X-Device"
	deviceKindHeader = "X-Device-Kind"
)

var (
	ErrUnauthorized     = errors.New("invalid token or insufficient permissions")
	ErrEndpointNotFound = errors.New("collector endpoint not found")
)

var _ destination.Sender = &collectorDestination{}

// CollectorError reports a collector failure; StatusCode is zero when no response was received.
type CollectorError struct {
	Device     string
	StatusCode int
	err        error
}

func (e *CollectorError) Error() string {
	switch {
	case e.Device != "" && e.StatusCode != 0:
		return fmt.Sprintf("collector: snapshot of %q rejected with status %d: %s", e.Device, e.StatusCode, e.err)
	case e.Device != "":
		return fmt.Sprintf("collector: snapshot of %q not sent: %s", e.Device, e.err)
	default:
		return "collector: " + e.err.Error()
	}
}

func (e *CollectorError) Unwrap() error {
	return e.err
}

// collectorDestination posts every snapshot to an HTTP collector.
type collectorDestination struct {
	endpoint string
	client   *http.Client
}

// NewDestination returns a destination.Sender posting snapshots to the collector configured
// in the environment.
func NewDestination() (destination.Sender, error) {
	cfg := new(config)
	if err := env.Parse(cfg); err != nil {
		var parseErr env.AggregateError
		if errors.As(err, &parseErr) {
			err = parseErr.Errors[0]
		}
		return nil, &CollectorError{err: err}
	}

	dest, err := newCollectorDestination(cfg)
	if err != nil {
		return nil, &CollectorError{err: err}
	}
	return dest, nil
}

func newCollectorDestination(cfg *config) (*collectorDestination, error) {
	method, err := cfg.authMethod()
	if err != nil {
		return nil, err
	}

	return &collectorDestination{
		endpoint: cfg.Endpoint,
		// token requests outlive the export that triggered them
		client: cfg.httpClient(context.Background(), method),
	}, nil
}

// SendData implements destination.Sender. A cancelled ctx is reported as a failed export.
func (d *collectorDestination) SendData(ctx context.Context, data *destination.Data) error {
	body, err := json.Marshal(data)
	if err != nil {
		return &CollectorError{Device: data.Device, err: err}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return &CollectorError{Device: data.Device, err: err}
	}

	request.Header.Set("User-Agent", info.UserAgent())
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set(snapshotIDHeader, data.ID)
	request.Header.Set(deviceHeader, data.Device)
	request.Header.Set(deviceKindHeader, data.Kind)

	resp, err := d.client.Do(request)
	if err != nil {
		return &CollectorError{Device: data.Device, err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &CollectorError{Device: data.Device, StatusCode: resp.StatusCode, err: responseError(resp)}
}

func responseError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrEndpointNotFound
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		return errors.New(body.Message)
	}
	return errors.New(http.StatusText(resp.StatusCode))
}
