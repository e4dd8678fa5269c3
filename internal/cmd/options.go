// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mia-platform/asynciot/internal/config"
	"github.com/mia-platform/asynciot/internal/destination"
	"github.com/mia-platform/asynciot/internal/exitcode"
	"github.com/mia-platform/asynciot/internal/host"
	"github.com/mia-platform/asynciot/internal/logger"
	"github.com/mia-platform/asynciot/internal/pipeline"
	"github.com/mia-platform/asynciot/internal/results"
	"github.com/mia-platform/asynciot/internal/server"
	"github.com/mia-platform/asynciot/internal/source/systemstate"
	"github.com/mia-platform/asynciot/internal/version"
	"github.com/mia-platform/asynciot/internal/welcome"
)

const (
	serveLoggerName = "asynciot:serve"
)

// serveOptions holds everything needed to start a host.
type serveOptions struct {
	hostConfig   *config.HostConfig
	hostEnv      *config.HostEnv
	serverConfig *server.Config
	sender       destination.Sender
	probe        systemstate.Probe

	// serverGetter builds the HTTP server, it can be overridden for testing purposes.
	serverGetter func(context.Context, *server.Config) server.Server
}

// execute runs the host until it terminates or a SIGINT or SIGTERM is received.
func (o *serveOptions) execute(ctx context.Context) results.Extended[struct{}] {
	log := logger.FromContext(ctx)
	welcome.Announce(log)
	log.WithName(serveLoggerName).Debug("host build", "version", version.ServiceVersionInformation())

	h, err := o.host(ctx)
	if err != nil {
		if closeErr := destination.Close(ctx, o.sender); closeErr != nil {
			log.WithName(serveLoggerName).Warn("cannot close export destination", "error", closeErr)
		}
		return results.Fail[struct{}](exitcode.SystemSetupFailure, err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return h.Run(ctx)
}

// host assembles the devices, the exporter and the server into a host.
func (o *serveOptions) host(ctx context.Context) (*host.Host, error) {
	devices, err := host.NewDevices(o.hostConfig, o.probe)
	if err != nil {
		return nil, err
	}

	var exporter *pipeline.Pipeline
	if o.sender != nil {
		exporter, err = pipeline.New(host.ExportTargets(devices), o.sender, o.hostEnv.ExportInterval)
		if err != nil {
			return nil, err
		}
	}

	return host.New(ctx, host.Options{
		Server:          o.serverGetter(ctx, o.serverConfig),
		Address:         o.serverConfig.ListenAddress(),
		Devices:         devices,
		RefreshInterval: o.hostEnv.RefreshInterval,
		LatestVisits:    o.hostEnv.LatestVisits,
		Exporter:        exporter,
	})
}
