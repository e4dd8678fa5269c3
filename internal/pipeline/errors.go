// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"errors"
	"fmt"
)

var (
	errInvalidInterval    = errors.New("export interval must be greater than zero")
	errMissingDestination = errors.New("export pipeline needs a destination")
)

// exportError reports how many targets could not be exported in a single round.
type exportError struct {
	Failed int
	Total  int
}

func (e *exportError) Error() string {
	return fmt.Sprintf("failed to export %d of %d devices", e.Failed, e.Total)
}
