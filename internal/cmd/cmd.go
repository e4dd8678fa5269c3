// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const (
	serveCmdUsage = "serve"
	serveCmdShort = "start the host serving the state of the configured devices"
	serveCmdLong  = `Start the host serving the state of the configured devices.
	Every device is mounted on its own path and refreshed in the background.
	Without a configuration file only the local system state is served on /system.

	The server address is read from the HTTP_ADDR and HTTP_PORT environment
	variables, the refresh interval from REFRESH_INTERVAL. When sinks are configured
	the state of every device is exported every EXPORT_INTERVAL.`

	serveCmdExample = `# Serve the local system state on 0.0.0.0:4088
	asynciot serve

	# Serve the devices listed in a configuration file, printing exports on stdout
	asynciot serve --config devices.yaml --local-output`

	stateCmdUsage = "state [KEY...]"
	stateCmdShort = "print the state of the local machine"
	stateCmdLong  = `Print the state of the local machine as a result envelope.
	Without arguments every key is read, otherwise only the requested ones.

	The available keys are: system, cpu, temperatures, memory, disks, networks.`

	stateCmdExample = `# Print the whole system state
	asynciot state

	# Print only memory and disks
	asynciot state memory disks`
)

// ServeCmd returns the Cobra command that starts the host.
func ServeCmd() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:     serveCmdUsage,
		Short:   heredoc.Doc(serveCmdShort),
		Long:    heredoc.Doc(serveCmdLong),
		Example: heredoc.Doc(serveCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			return reportResult(cmd, opts.execute(cmd.Context()))
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// StateCmd returns the Cobra command that prints the local system state.
func StateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     stateCmdUsage,
		Short:   heredoc.Doc(stateCmdShort),
		Long:    heredoc.Doc(stateCmdLong),
		Example: heredoc.Doc(stateCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		ValidArgsFunction: validKeysFunc,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := newStateOptions(args)
			if err := opts.execute(cmd.Context(), cmd.OutOrStdout()); err != nil {
				return handleError(cmd, err)
			}
			return nil
		},
	}

	return cmd
}
