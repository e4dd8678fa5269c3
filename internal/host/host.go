// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mia-platform/asynciot/internal/exitcode"
	"github.com/mia-platform/asynciot/internal/logger"
	"github.com/mia-platform/asynciot/internal/pipeline"
	"github.com/mia-platform/asynciot/internal/results"
	"github.com/mia-platform/asynciot/internal/server"
	"github.com/mia-platform/asynciot/internal/source"
)

const (
	loggerName = "asynciot:host"

	stopTimeout = 10 * time.Second
)

var (
	ErrSystemStateRead = errors.New("cannot read the system state")
	ErrInvalidOptions  = errors.New("invalid host options")

	errTerminationRequested = errors.New("termination requested")
)

// Options configures a Host.
type Options struct {
	// Server serves the host routes.
	Server server.Server
	// Address is the address the server listens on, used for logging.
	Address string
	// Devices mounted on the host.
	Devices []*Device
	// RefreshInterval between two background updates of every device.
	RefreshInterval time.Duration
	// LatestVisits is the number of visits remembered by the app state.
	LatestVisits int
	// Exporter periodically exports the device state; nil disables exports.
	Exporter *pipeline.Pipeline
}

// Host serves the state of its devices and keeps it fresh in the background.
type Host struct {
	server          server.Server
	address         string
	devices         []*Device
	refreshInterval time.Duration
	exporter        *pipeline.Pipeline

	state *AppState
	token *TerminationToken
	log   logger.Logger
}

// New returns a Host with every route registered on opts.Server.
func New(ctx context.Context, opts Options) (*Host, error) {
	if opts.Server == nil {
		return nil, fmt.Errorf("%w: missing server", ErrInvalidOptions)
	}
	if len(opts.Devices) == 0 {
		return nil, fmt.Errorf("%w: no devices", ErrInvalidOptions)
	}
	if opts.RefreshInterval <= 0 {
		return nil, fmt.Errorf("%w: refresh interval must be positive", ErrInvalidOptions)
	}

	h := &Host{
		server:          opts.Server,
		address:         opts.Address,
		devices:         opts.Devices,
		refreshInterval: opts.RefreshInterval,
		exporter:        opts.Exporter,
		state:           NewAppState(opts.LatestVisits),
		token:           NewTerminationToken(),
		log:             logger.FromContext(ctx).WithName(loggerName),
	}

	if err := h.registerRoutes(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

// State returns the usage statistics of the host.
func (h *Host) State() *AppState {
	return h.state
}

// Terminate returns the token used to request the host termination.
func (h *Host) Terminate() *TerminationToken {
	return h.token
}

// ExportTargets returns the pipeline targets for devices.
func ExportTargets(devices []*Device) []pipeline.Target {
	targets := make([]pipeline.Target, 0, len(devices))
	for _, device := range devices {
		targets = append(targets, pipeline.Target{
			Device: device.Name,
			Kind:   device.Kind,
			Cache:  device.Cache,
		})
	}
	return targets
}

// Run serves the host until ctx is done, a termination is requested or a fatal error
// occurs.
func (h *Host) Run(ctx context.Context) results.Extended[struct{}] {
	for _, device := range h.devices {
		if !device.IsSystemState() {
			continue
		}
		if err := device.Cache.Update(ctx); err != nil {
			return results.Fail[struct{}](exitcode.SystemReadFailure, fmt.Errorf("%w: %w", ErrSystemStateRead, err))
		}
	}

	h.log.Info(fmt.Sprintf("Starting app on %s.", h.address))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := h.server.Start(); err != nil {
			return exitcode.New(exitcode.SystemSetupFailure, err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		h.log.Debug("stopping server")
		return h.server.Stop()
	})

	for _, device := range h.devices {
		policy := func(error) error { return nil }
		if device.IsSystemState() {
			policy = func(err error) error {
				return exitcode.New(exitcode.SystemReadFailure, fmt.Errorf("%w: %w", ErrSystemStateRead, err))
			}
		}
		group.Go(func() error {
			return source.Refresh(groupCtx, device.Cache, h.refreshInterval, policy)
		})
	}

	if h.exporter != nil {
		group.Go(func() error {
			return h.exporter.Start(groupCtx)
		})
	}

	group.Go(func() error {
		if _, err := h.token.Wait(groupCtx); err != nil {
			return nil
		}
		return errTerminationRequested
	})

	err := group.Wait()
	h.stopExporter(ctx)

	switch {
	case errors.Is(err, errTerminationRequested):
		result, _ := h.token.Result()
		return result
	case err != nil:
		return results.Wrap(struct{}{}, err)
	default:
		h.log.Info("Shutdown requested, app completed.")
		return results.Ok(struct{}{})
	}
}

func (h *Host) stopExporter(ctx context.Context) {
	if h.exporter == nil {
		return
	}

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()
	if err := h.exporter.Stop(stopCtx); err != nil {
		h.log.Error("cannot stop exporter", "error", err)
	}
}
