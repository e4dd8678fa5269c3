// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cloud.google.com/go/pubsub/v2"
	"github.com/caarlos0/env/v11"
	"google.golang.org/api/option"
	"google.golang.org/grpc/status"

	"github.com/mia-platform/asynciot/internal/destination"
	"github.com/mia-platform/asynciot/internal/logger"
)

const (
	loggerName = "asynciot:destination:pubsub"

	DeviceAttribute = "device"
	KindAttribute   = "kind"
)

var (
	// ErrMissingEnvVariable reports missing mandatory environment variables.
	ErrMissingEnvVariable = errors.New("missing environment variable")
	// ErrPubSubDestination wraps errors emitted by the Pub/Sub destination.
	ErrPubSubDestination = errors.New("pubsub destination")
)

var _ destination.Sender = &pubSubDestination{}
var _ destination.Closable = &pubSubDestination{}

type config struct {
	ProjectID       string `env:"EXPORT_PUBSUB_PROJECT"`
	TopicID         string `env:"EXPORT_PUBSUB_TOPIC"`
	CredentialsFile string `env:"EXPORT_PUBSUB_CREDENTIALS_FILE"`
}

// checkConfig validates the required configuration for the Pub/Sub client.
func checkConfig(cfg config) error {
	missingEnvs := make([]string, 0)
	if cfg.ProjectID == "" {
		missingEnvs = append(missingEnvs, "EXPORT_PUBSUB_PROJECT")
	}
	if cfg.TopicID == "" {
		missingEnvs = append(missingEnvs, "EXPORT_PUBSUB_TOPIC")
	}

	if len(missingEnvs) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingEnvVariable, strings.Join(missingEnvs, ", "))
	}
	return nil
}

// pubSubDestination publishes every snapshot as a message on a Pub/Sub topic.
// The client is created on the first send and reused afterwards.
type pubSubDestination struct {
	config
	options []option.ClientOption

	lock      sync.Mutex
	client    *pubsub.Client
	publisher *pubsub.Publisher
}

// NewDestination returns a destination.Sender publishing to the topic configured in the environment.
func NewDestination() (destination.Sender, error) {
	return newDestination()
}

func newDestination(options ...option.ClientOption) (*pubSubDestination, error) {
	cfg, err := env.ParseAs[config]()
	if err != nil {
		return nil, handleError(err)
	}
	if err := checkConfig(cfg); err != nil {
		return nil, handleError(err)
	}

	if cfg.CredentialsFile != "" {
		options = append(options, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	return &pubSubDestination{
		config:  cfg,
		options: options,
	}, nil
}

// initPublisher initializes the Pub/Sub client once and reuses it afterwards.
func (d *pubSubDestination) initPublisher(ctx context.Context) (*pubsub.Publisher, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.publisher != nil {
		return d.publisher, nil
	}

	client, err := pubsub.NewClient(ctx, d.ProjectID, d.options...)
	if err != nil {
		return nil, err
	}

	d.client = client
	d.publisher = client.Publisher(d.TopicID)
	return d.publisher, nil
}

// SendData implements destination.Sender. It blocks until the server acknowledges the message.
func (d *pubSubDestination) SendData(ctx context.Context, data *destination.Data) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	body, err := json.Marshal(data)
	if err != nil {
		return handleError(err)
	}

	publisher, err := d.initPublisher(ctx)
	if err != nil {
		return handleError(err)
	}

	result := publisher.Publish(ctx, &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			DeviceAttribute: data.Device,
			KindAttribute:   data.Kind,
		},
	})

	messageID, err := result.Get(ctx)
	if err != nil {
		return handleError(err)
	}

	log.Trace("snapshot published", "device", data.Device, "messageId", messageID)
	return nil
}

// Close flushes the pending messages and closes the client.
func (d *pubSubDestination) Close(ctx context.Context) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	d.lock.Lock()
	defer d.lock.Unlock()

	if d.client == nil {
		return nil
	}

	log.Debug("closing GCP pub/sub client")
	d.publisher.Stop()
	err := d.client.Close()
	d.client = nil
	d.publisher = nil
	return handleError(err)
}

// handleError unwraps known errors and wraps them with ErrPubSubDestination.
func handleError(err error) error {
	if err == nil {
		return nil
	}

	var parseErr env.AggregateError
	if errors.As(err, &parseErr) {
		err = parseErr.Errors[0]
	}

	if statusErr, ok := status.FromError(err); ok {
		err = errors.New(statusErr.Message())
	}

	return fmt.Errorf("%w: %w", ErrPubSubDestination, err)
}
