// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mia-platform/asynciot/internal/exitcode"
	"github.com/mia-platform/asynciot/internal/logger"
	"github.com/mia-platform/asynciot/internal/results"
	"github.com/mia-platform/asynciot/internal/source/systemstate"
)

// handleError prints err and returns it so that the caller exits with its exit code.
func handleError(cmd *cobra.Command, err error) error {
	cmd.PrintErrln(err)
	return err
}

// reportResult prints the outcome of a command and converts it into the error carrying
// the exit code; a successful result returns nil.
func reportResult[T any](cmd *cobra.Command, result results.Extended[T]) error {
	code := results.Report(result, cmd.ErrOrStderr(), logger.FromContext(cmd.Context()))
	if code == exitcode.Success {
		return nil
	}
	return exitcode.New(code, result.Err())
}

// validKeysFunc completes the system state keys not already on the command line.
func validKeysFunc(_ *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	var comps []cobra.Completion
	for _, key := range systemstate.Keys() {
		if slices.Contains(args, key) || !strings.HasPrefix(key, toComplete) {
			continue
		}
		comps = append(comps, cobra.CompletionWithDesc(key, keyDescriptions[key]))
	}

	return comps, cobra.ShellCompDirectiveNoFileComp
}

var keyDescriptions = map[string]string{
	systemstate.KeySystem:       "operating system and host information",
	systemstate.KeyCPU:          "processor information, usage and load",
	systemstate.KeyTemperatures: "temperature sensors",
	systemstate.KeyMemory:       "physical and swap memory",
	systemstate.KeyDisks:        "mounted partitions and their usage",
	systemstate.KeyNetworks:     "network interfaces, addresses and counters",
}
