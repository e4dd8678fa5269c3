// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/mia-platform/asynciot/internal/config"
	"github.com/mia-platform/asynciot/internal/destination"
	"github.com/mia-platform/asynciot/internal/destination/azure"
	"github.com/mia-platform/asynciot/internal/destination/collector"
	"github.com/mia-platform/asynciot/internal/destination/pubsub"
	"github.com/mia-platform/asynciot/internal/destination/writer"
)

var (
	errUnknownSink = errors.New("unknown export sink")

	// sinkGetters returns the destination for every sink name accepted in the host
	// configuration. It can be overridden for testing purposes.
	sinkGetters = map[string]func(out io.Writer) (destination.Sender, error){
		config.SinkStdout: func(out io.Writer) (destination.Sender, error) {
			return writer.NewDestination(out), nil
		},
		config.SinkCollector: func(io.Writer) (destination.Sender, error) {
			return collector.NewDestination()
		},
		config.SinkPubSub: func(io.Writer) (destination.Sender, error) {
			return pubsub.NewDestination()
		},
		config.SinkBlob: func(io.Writer) (destination.Sender, error) {
			return azure.NewBlobDestination()
		},
		config.SinkEventHubs: func(io.Writer) (destination.Sender, error) {
			return azure.NewEventHubsDestination()
		},
	}
)

// newSender builds the destination fanning out to every sink; localOutput adds the stdout
// sink. It returns nil when nothing has to be exported.
func newSender(sinks []string, localOutput bool, out io.Writer) (destination.Sender, error) {
	if localOutput && !slices.Contains(sinks, config.SinkStdout) {
		sinks = append(slices.Clone(sinks), config.SinkStdout)
	}
	if len(sinks) == 0 {
		return nil, nil
	}

	senders := make([]destination.Sender, 0, len(sinks))
	for _, sink := range sinks {
		getter, ok := sinkGetters[sink]
		if !ok {
			return nil, fmt.Errorf("%w: %s", errUnknownSink, sink)
		}

		sender, err := getter(out)
		if err != nil {
			return nil, err
		}
		senders = append(senders, sender)
	}

	return destination.NewMulti(senders...), nil
}
