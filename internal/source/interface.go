// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package source

import (
	"context"

	"github.com/mia-platform/asynciot/internal/results"
)

// StateSource is implemented by every component able to report a keyed state.
type StateSource interface {
	// AvailableKeys returns the keys the source can report, in the order they are serialized.
	AvailableKeys() []string

	// Get reads the requested keys. A key that cannot be read is reported as an error
	// entry; the returned error is reserved for failures affecting the whole read.
	Get(ctx context.Context, keys []string) (*results.JSON, error)
}

// WebhookSource is implemented by sources that can be notified of a state change.
type WebhookSource interface {
	// GetWebhook returns the webhook the host must expose for the source.
	GetWebhook(ctx context.Context) (Webhook, error)
}

// All reads every key of src.
func All(ctx context.Context, src StateSource) (*results.JSON, error) {
	return src.Get(ctx, src.AvailableKeys())
}
