// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mia-platform/asynciot/internal/config"
	"github.com/mia-platform/asynciot/internal/exitcode"
	"github.com/mia-platform/asynciot/internal/server"
	"github.com/mia-platform/asynciot/internal/source/systemstate"
)

const (
	configPathFlagName  = "config"
	configPathFlagShort = "c"
	configPathFlagUsage = "Path to the host configuration file listing the devices to serve"

	localOutputFlagName  = "local-output"
	localOutputFlagUsage = "If set, also writes the exported device state to stdout"
	defaultLocalOutput   = false
)

// serveFlags collects the CLI options of the serve command.
type serveFlags struct {
	configPath  string
	localOutput bool
}

// addFlags registers the CLI flags on cmd.
func (f *serveFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, configPathFlagName, configPathFlagShort, "", configPathFlagUsage)
	cmd.Flags().BoolVar(&f.localOutput, localOutputFlagName, defaultLocalOutput, localOutputFlagUsage)
}

// toOptions builds a serveOptions instance from the parsed flags and the environment.
// Every failure is a configuration error.
func (f *serveFlags) toOptions(cmd *cobra.Command) (*serveOptions, error) {
	hostConfig, err := config.NewHostConfigFromPath(f.configPath)
	if err != nil {
		return nil, exitcode.New(exitcode.ConfigInvalid, err)
	}

	hostEnv, err := config.LoadHostEnv()
	if err != nil {
		return nil, exitcode.New(exitcode.ConfigInvalid, err)
	}

	serverConfig, err := server.LoadServerConfig()
	if err != nil {
		return nil, exitcode.New(exitcode.ConfigInvalid, err)
	}

	sender, err := newSender(hostConfig.Export.Sinks, f.localOutput, cmd.OutOrStdout())
	if err != nil {
		return nil, exitcode.New(exitcode.ConfigInvalid, err)
	}

	return &serveOptions{
		hostConfig:   hostConfig,
		hostEnv:      hostEnv,
		serverConfig: serverConfig,
		sender:       sender,
		probe:        systemstate.NewProbe(),
		serverGetter: server.NewServerWithConfig,
	}, nil
}
