// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package shellyv1

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/mia-platform/asynciot/internal/logger"
	"github.com/mia-platform/asynciot/internal/results"
	"github.com/mia-platform/asynciot/internal/source"
)

// Model identifies a supported device.
type Model string

const (
	Shelly1   Model = "shelly1"
	Shelly1PM Model = "shelly1pm"
	Shelly1L  Model = "shelly1l"
)

const (
	KeyShelly   = "shelly"
	KeySettings = "settings"
	KeyRelay0   = "relay0"
	KeyMeter0   = "meter0"
	KeyLight0   = "light0"
)

var modelKeys = map[Model][]string{
	Shelly1:   {KeyShelly, KeySettings, KeyRelay0},
	Shelly1PM: {KeyShelly, KeySettings, KeyRelay0, KeyMeter0},
	Shelly1L:  {KeyShelly, KeySettings, KeyLight0},
}

// Models returns every supported model.
func Models() []Model {
	return []Model{Shelly1, Shelly1PM, Shelly1L}
}

// ParseModel validates a model name.
func ParseModel(value string) (Model, error) {
	model := Model(value)
	if _, ok := modelKeys[model]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, value)
	}
	return model, nil
}

// HasRelay reports whether the model drives a relay.
func (m Model) HasRelay() bool {
	return slices.Contains(modelKeys[m], KeyRelay0)
}

// HasLight reports whether the model drives a light.
func (m Model) HasLight() bool {
	return slices.Contains(modelKeys[m], KeyLight0)
}

// UnknownKeyError is reported for a key the device model does not expose.
type UnknownKeyError struct {
	Key   string
	Model Model
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("Requested key of %s not recognised by %s.", e.Key, e.Model)
}

var _ source.StateSource = &Device{}
var _ source.WebhookSource = &Device{}

// Device is a Shelly device reporting its channels as state keys.
type Device struct {
	name   string
	model  Model
	client *Client
}

// NewDevice returns the device called name, of the given model, reached through client.
func NewDevice(name string, model Model, client *Client) (*Device, error) {
	if _, ok := modelKeys[model]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}

	return &Device{
		name:   name,
		model:  model,
		client: client,
	}, nil
}

// Model returns the device model.
func (d *Device) Model() Model {
	return d.model
}

func (d *Device) AvailableKeys() []string {
	return slices.Clone(modelKeys[d.model])
}

// Get reads the requested keys concurrently. Device failures are reported as error
// entries for the affected keys; only a done context fails the whole read.
func (d *Device) Get(ctx context.Context, keys []string) (*results.JSON, error) {
	entries := make([]*results.Entry, len(keys))

	group, groupCtx := errgroup.WithContext(ctx)
	for idx, key := range keys {
		group.Go(func() error {
			entries[idx] = d.read(groupCtx, key)
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results.WithCapacity(len(entries)).WithEntries(entries...), nil
}

func (d *Device) read(ctx context.Context, key string) *results.Entry {
	if !slices.Contains(modelKeys[d.model], key) {
		return results.EntryFromErr(key, &UnknownKeyError{Key: key, Model: d.model})
	}

	switch key {
	case KeyShelly:
		value, err := d.client.Info(ctx)
		return results.EntryFromResult(key, value, err)
	case KeySettings:
		value, err := d.client.Settings(ctx)
		return results.EntryFromResult(key, value, err)
	case KeyRelay0:
		value, err := d.client.Relay(ctx, 0, nil)
		return results.EntryFromResult(key, value, err)
	case KeyMeter0:
		value, err := d.client.Meter(ctx, 0)
		return results.EntryFromResult(key, value, err)
	default:
		value, err := d.client.Light(ctx, 0, nil)
		return results.EntryFromResult(key, value, err)
	}
}

// SetRelay sends query to relay id and returns the resulting relay state.
func (d *Device) SetRelay(ctx context.Context, id int, query *RelayQuery) (Relay, error) {
	if !d.model.HasRelay() {
		return Relay{}, fmt.Errorf("%w: %s has no relay", ErrUnsupported, d.model)
	}
	return d.client.Relay(ctx, id, query)
}

// SetLight sends query to light id and returns the resulting light state.
func (d *Device) SetLight(ctx context.Context, id int, query *LightQuery) (Light, error) {
	if !d.model.HasLight() {
		return Light{}, fmt.Errorf("%w: %s has no light", ErrUnsupported, d.model)
	}
	return d.client.Light(ctx, id, query)
}

// GetWebhook returns the endpoint to configure as action URL on the device.
// Shelly devices call action URLs with GET requests.
func (d *Device) GetWebhook(context.Context) (source.Webhook, error) {
	return source.Webhook{
		Method: http.MethodGet,
		Path:   "/webhooks/" + url.PathEscape(d.name),
		Handler: func(ctx context.Context, _ http.Header, query url.Values, _ []byte) error {
			logger.FromContext(ctx).WithName("asynciot:shellyv1:"+d.name).Debug("action received",
				"model", d.model,
				"address", d.client.Address(),
				"event", query.Encode(),
			)
			return nil
		},
	}, nil
}
