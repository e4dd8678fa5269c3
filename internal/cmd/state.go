// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mia-platform/asynciot/internal/exitcode"
	"github.com/mia-platform/asynciot/internal/source/systemstate"
)

// stateOptions configures a one shot read of the local system state.
type stateOptions struct {
	keys  []string
	probe systemstate.Probe
}

func newStateOptions(keys []string) *stateOptions {
	if len(keys) == 0 {
		keys = systemstate.Keys()
	}
	return &stateOptions{
		keys:  keys,
		probe: systemstate.NewProbe(),
	}
}

// execute reads the requested keys and prints the envelope as indented JSON.
func (o *stateOptions) execute(ctx context.Context, out io.Writer) error {
	envelope, err := systemstate.New(o.probe).Get(ctx, o.keys)
	if err != nil {
		return exitcode.New(exitcode.SystemReadFailure, err)
	}

	encoded, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	indented := new(bytes.Buffer)
	if err := json.Indent(indented, encoded, "", "  "); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, indented.String())
	return err
}
