// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package results

import (
	"fmt"
	"io"

	"github.com/mia-platform/asynciot/internal/logger"
)

// Report logs the final result of the process, prints a summary to w and returns
// the exit code to terminate with.
func Report[T any](result Extended[T], w io.Writer, log logger.Logger) int {
	if err := result.Err(); err != nil {
		log.Critical("Error: " + err.Error())
		fmt.Fprintf(w, "Error:\n\n%s\n", err)
		return result.Code()
	}

	if warnings := result.Warnings(); len(warnings) > 0 {
		log.Warn(fmt.Sprintf("%d warning(s) generated upon exit.", len(warnings)))
		fmt.Fprintln(w, "The following warnings are generated upon exit:")
		fmt.Fprintln(w)
		for _, warning := range warnings {
			fmt.Fprintln(w, "- "+warning)
		}
	}

	return result.Code()
}
