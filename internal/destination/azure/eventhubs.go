// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package azure

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azeventhubs/v2"
	"github.com/caarlos0/env/v11"

	"github.com/mia-platform/asynciot/internal/destination"
	"github.com/mia-platform/asynciot/internal/logger"
)

const (
	eventHubsLoggerName = "asynciot:destination:eventhubs"
)

var _ destination.Sender = &eventHubsDestination{}
var _ destination.Closable = &eventHubsDestination{}

// eventHubsDestination sends every snapshot as a single event partitioned by device name.
type eventHubsDestination struct {
	eventHubsConfig

	lock     sync.Mutex
	producer *azeventhubs.ProducerClient
}

// NewEventHubsDestination returns a destination.Sender for the event hub configured in the environment.
func NewEventHubsDestination() (destination.Sender, error) {
	cfg, err := env.ParseAs[eventHubsConfig]()
	if err != nil {
		return nil, handleError(err)
	}
	if err := cfg.validate(); err != nil {
		return nil, handleError(err)
	}

	return &eventHubsDestination{eventHubsConfig: cfg}, nil
}

func (d *eventHubsDestination) getProducer() (*azeventhubs.ProducerClient, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.producer != nil {
		return d.producer, nil
	}

	producer, err := d.newProducerClient()
	if err != nil {
		return nil, err
	}
	d.producer = producer
	return producer, nil
}

// newEvent converts data into an event carrying the device metadata as properties.
func newEvent(data *destination.Data) (*azeventhubs.EventData, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &azeventhubs.EventData{
		Body:        body,
		ContentType: to.Ptr("application/json"),
		MessageID:   to.Ptr(data.ID),
		Properties: map[string]any{
			"device": data.Device,
			"kind":   data.Kind,
		},
	}, nil
}

// SendData implements destination.Sender.
func (d *eventHubsDestination) SendData(ctx context.Context, data *destination.Data) error {
	log := logger.FromContext(ctx).WithName(eventHubsLoggerName)

	event, err := newEvent(data)
	if err != nil {
		return handleError(err)
	}

	producer, err := d.getProducer()
	if err != nil {
		return handleError(err)
	}

	batch, err := producer.NewEventDataBatch(ctx, &azeventhubs.EventDataBatchOptions{
		PartitionKey: to.Ptr(data.Device),
	})
	if err != nil {
		return handleError(err)
	}

	if err := batch.AddEventData(event, nil); err != nil {
		return handleError(err)
	}

	if err := producer.SendEventDataBatch(ctx, batch, nil); err != nil {
		return handleError(err)
	}

	log.Trace("snapshot sent", "eventHub", d.EventHubName, "device", data.Device)
	return nil
}

// Close closes the producer when it was previously initialized.
func (d *eventHubsDestination) Close(ctx context.Context) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.producer == nil {
		return nil
	}

	logger.FromContext(ctx).WithName(eventHubsLoggerName).Debug("closing event hubs producer")
	err := d.producer.Close(ctx)
	d.producer = nil
	return handleError(err)
}
