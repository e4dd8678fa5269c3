// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package destination

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mia-platform/asynciot/internal/results"
)

const (
	StatusOk       = "ok"
	StatusDegraded = "degraded"
)

// Sender delivers device snapshots to a destination.
type Sender interface {
	SendData(ctx context.Context, data *Data) error
}

// Closable is implemented by senders holding connections that must be released on shutdown.
type Closable interface {
	Close(ctx context.Context) error
}

// Data bundles a device snapshot with the metadata needed to route it.
type Data struct {
	ID      string        `json:"id"`
	Device  string        `json:"device"`
	Kind    string        `json:"kind"`
	Time    time.Time     `json:"time"`
	Payload *results.JSON `json:"payload"`
}

// internalData breaks the recursion when customizing JSON marshaling.
type internalData Data

// MarshalJSON labels the snapshot as degraded when any of its entries failed.
func (d Data) MarshalJSON() ([]byte, error) {
	status := StatusOk
	if d.Payload != nil && d.Payload.HasErrors() {
		status = StatusDegraded
	}

	return json.Marshal(struct {
		internalData

		Status string `json:"status"`
	}{
		internalData: internalData(d),
		Status:       status,
	})
}

// Close releases sender when it holds resources, a no-op otherwise.
func Close(ctx context.Context, sender Sender) error {
	closable, ok := sender.(Closable)
	if !ok {
		return nil
	}
	return closable.Close(ctx)
}

// CloseAll closes every sender and joins the errors.
func CloseAll(ctx context.Context, senders ...Sender) error {
	errorsList := make([]error, 0)
	for _, sender := range senders {
		if err := Close(ctx, sender); err != nil {
			errorsList = append(errorsList, err)
		}
	}
	return errors.Join(errorsList...)
}
