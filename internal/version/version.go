// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package version describes the running build.
package version

import (
	"runtime"

	"github.com/mia-platform/asynciot/internal/info"
)

// Information is the build metadata of the running binary.
type Information struct {
	Version   string
	BuildDate string
	GoVersion string
}

// Current returns the metadata injected at link time in the info package.
func Current() Information {
	return Information{
		Version:   info.Version,
		BuildDate: info.BuildDate,
		GoVersion: runtime.Version(),
	}
}

// String renders the version, the build date when known and the Go version.
func (i Information) String() string {
	outputString := i.Version
	if i.BuildDate != "" {
		outputString += " (" + i.BuildDate + ")"
	}

	return outputString + ", Go Version: " + i.GoVersion
}

// ServiceVersionInformation renders the metadata of the running build.
func ServiceVersionInformation() string {
	return Current().String()
}
