// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package azure

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/caarlos0/env/v11"

	"github.com/mia-platform/asynciot/internal/destination"
	"github.com/mia-platform/asynciot/internal/logger"
)

const (
	blobLoggerName = "asynciot:destination:blob"

	// BlobTimeLayout names the uploaded snapshots; it sorts lexicographically.
	BlobTimeLayout = "20060102T150405.000000Z"
)

var _ destination.Sender = &blobDestination{}

// blobDestination uploads every snapshot as a JSON blob named <device>/<time>.json.
type blobDestination struct {
	blobConfig

	client atomic.Pointer[azblob.Client]
}

// NewBlobDestination returns a destination.Sender uploading to the container configured in
// the environment.
func NewBlobDestination() (destination.Sender, error) {
	cfg, err := env.ParseAs[blobConfig]()
	if err != nil {
		return nil, handleError(err)
	}
	if err := cfg.validate(); err != nil {
		return nil, handleError(err)
	}

	return &blobDestination{blobConfig: cfg}, nil
}

// BlobName returns the name of the blob holding data.
func BlobName(data *destination.Data) string {
	return data.Device + "/" + data.Time.UTC().Format(BlobTimeLayout) + ".json"
}

func (d *blobDestination) getClient() (*azblob.Client, error) {
	client := d.client.Load()
	if client != nil {
		return client, nil
	}

	client, err := d.newClient()
	if err != nil {
		return nil, err
	}
	d.client.Store(client)
	return client, nil
}

// SendData implements destination.Sender.
func (d *blobDestination) SendData(ctx context.Context, data *destination.Data) error {
	log := logger.FromContext(ctx).WithName(blobLoggerName)

	body, err := json.Marshal(data)
	if err != nil {
		return handleError(err)
	}

	client, err := d.getClient()
	if err != nil {
		return handleError(err)
	}

	name := BlobName(data)
	_, err = client.UploadBuffer(ctx, d.ContainerName, name, body, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: to.Ptr("application/json"),
		},
		Metadata: map[string]*string{
			"device": to.Ptr(data.Device),
			"kind":   to.Ptr(data.Kind),
		},
	})
	if err != nil {
		return handleError(err)
	}

	log.Trace("snapshot uploaded", "container", d.ContainerName, "blob", name)
	return nil
}
