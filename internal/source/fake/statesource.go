// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mia-platform/asynciot/internal/results"
	"github.com/mia-platform/asynciot/internal/source"
)

var _ source.StateSource = &StateSource{}
var _ source.WebhookSource = &StateSource{}

// StateSource serves fixed values and counts how many times it has been read.
type StateSource struct {
	tb testing.TB

	keys []string

	lock   sync.Mutex
	values map[string]any
	err    error

	calls    atomic.Int64
	webhooks atomic.Int64
}

// NewStateSource returns a StateSource reporting values for keys, in keys order.
// A key missing from values is reported as an error entry.
func NewStateSource(tb testing.TB, keys []string, values map[string]any) *StateSource {
	tb.Helper()

	return &StateSource{
		tb:     tb,
		keys:   keys,
		values: values,
	}
}

func (f *StateSource) AvailableKeys() []string {
	return f.keys
}

func (f *StateSource) Get(ctx context.Context, keys []string) (*results.JSON, error) {
	f.tb.Helper()
	f.calls.Add(1)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	envelope := results.WithCapacity(len(keys))
	for _, key := range keys {
		value, ok := f.values[key]
		if !ok {
			envelope.WithEntries(results.EntryFromErr(key, fmt.Errorf("Requested key of %s not recognised.", key)))
			continue
		}
		envelope.WithEntries(results.EntryFromValue(key, value))
	}
	return envelope, nil
}

// GetWebhook returns a webhook counting its invocations.
func (f *StateSource) GetWebhook(context.Context) (source.Webhook, error) {
	return source.Webhook{
		Method: http.MethodGet,
		Path:   "/webhooks/fake",
		Handler: func(context.Context, http.Header, url.Values, []byte) error {
			f.webhooks.Add(1)
			return nil
		},
	}, nil
}

// SetValue replaces the value reported for key.
func (f *StateSource) SetValue(key string, value any) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.values[key] = value
}

// SetError makes every following read fail with err; nil restores normal reads.
func (f *StateSource) SetError(err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.err = err
}

// Calls returns the number of reads served so far.
func (f *StateSource) Calls() int {
	return int(f.calls.Load())
}

// WebhookCalls returns the number of webhook invocations so far.
func (f *StateSource) WebhookCalls() int {
	return int(f.webhooks.Load())
}
