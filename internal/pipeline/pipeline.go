// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mia-platform/asynciot/internal/destination"
	"github.com/mia-platform/asynciot/internal/logger"
	"github.com/mia-platform/asynciot/internal/source"
)

const (
	loggerName = "asynciot:pipeline"
)

// Target is a device cache exported by the pipeline.
type Target struct {
	Device string
	Kind   string
	Cache  *source.Cache
}

type Pipeline struct {
	targets     []Target
	destination destination.Sender
	interval    time.Duration

	now   func() time.Time
	newID func() string
}

func New(targets []Target, destination destination.Sender, interval time.Duration) (*Pipeline, error) {
	if interval <= 0 {
		return nil, errInvalidInterval
	}
	if destination == nil {
		return nil, errMissingDestination
	}

	return &Pipeline{
		targets:     targets,
		destination: destination,
		interval:    interval,
		now:         time.Now,
		newID:       uuid.NewString,
	}, nil
}

// Start exports a snapshot of every target each interval until ctx is done.
func (p *Pipeline) Start(ctx context.Context) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	log.Trace("starting export pipeline", "targets", len(p.targets), "interval", p.interval.String())
	channel := make(chan *destination.Data)

	// use channel to signal when the sending goroutine has drained the queue
	sendingDone := make(chan struct{})
	go func() {
		log.Trace("starting data sending goroutine")
		p.sendingData(ctx, channel)
		close(sendingDone)
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for running := true; running; {
		select {
		case <-ctx.Done():
			log.Debug("pipeline cancelled from context", "error", ctx.Err())
			running = false
		case <-ticker.C:
			running = p.collect(ctx, channel)
		}
	}

	log.Trace("export loop finished, closing data channel")
	close(channel)

	<-sendingDone
	log.Trace("data sending goroutine finished")
	return nil
}

// Export reads every target once and sends the snapshots synchronously.
func (p *Pipeline) Export(ctx context.Context) error {
	log := logger.FromContext(ctx).WithName(loggerName)
	var failed int
	for _, target := range p.targets {
		data, err := p.snapshot(ctx, target)
		if err != nil {
			log.Warn("cannot read device state, skipping export", "device", target.Device, "error", err)
			failed++
			continue
		}
		if err := p.destination.SendData(ctx, data); err != nil {
			log.Error("error sending data to destination", "device", target.Device, "error", err)
			failed++
		}
	}

	if failed > 0 {
		return &exportError{Failed: failed, Total: len(p.targets)}
	}
	return nil
}

// Stop releases the destination.
func (p *Pipeline) Stop(ctx context.Context) error {
	log := logger.FromContext(ctx).WithName(loggerName)
	log.Debug("stop destination")
	return destination.Close(ctx, p.destination)
}

// collect queues a snapshot of every target; it reports false when ctx ends while waiting.
func (p *Pipeline) collect(ctx context.Context, channel chan<- *destination.Data) bool {
	log := logger.FromContext(ctx).WithName(loggerName)
	for _, target := range p.targets {
		data, err := p.snapshot(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			log.Warn("cannot read device state, skipping export", "device", target.Device, "error", err)
			continue
		}

		select {
		case <-ctx.Done():
			return false
		case channel <- data:
		}
	}
	return true
}

func (p *Pipeline) snapshot(ctx context.Context, target Target) (*destination.Data, error) {
	payload, err := target.Cache.AllOrUpdate(ctx)
	if err != nil {
		return nil, err
	}

	return &destination.Data{
		ID:      p.newID(),
		Device:  target.Device,
		Kind:    target.Kind,
		Time:    p.now().UTC(),
		Payload: payload,
	}, nil
}

func (p *Pipeline) sendingData(ctx context.Context, channel <-chan *destination.Data) {
	log := logger.FromContext(ctx).WithName(loggerName)
	for data := range channel {
		log.Debug("sending data", "device", data.Device, "kind", data.Kind)
		if err := p.destination.SendData(ctx, data); err != nil {
			log.Error("error sending data to destination", "device", data.Device, "error", err)
			continue
		}
		log.Debug("data sent", "device", data.Device, "id", data.ID)
	}
}
