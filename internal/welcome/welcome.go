// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package welcome emits the announcement logged when the host comes up.
package welcome

import (
	"github.com/mia-platform/asynciot/internal/logger"
)

const (
	loggerName = "asynciot:welcome"

	GreetingMessage    = "Welcome to async_iot!"
	DescriptionMessage = "An asynchronous unified interface for various IoT devices around a private household."
	InstalledMessage   = "If you see this message, this means that the Python package was installed correctly, and __init__.py had run during import."
	EmptyMessage       = "This package is currently empty; it does not contain anything of any usefulness."
	PopulateMessage    = "Please populate me!"
)

// Announce emits the five announcement records, one per severity from INFO to CRITICAL.
// Records below the logger level are dropped by the logger itself.
func Announce(log logger.Logger) {
	log = log.WithName(loggerName)

	log.Info(GreetingMessage)
	log.Debug(DescriptionMessage)
	log.Warn(InstalledMessage)
	log.Error(EmptyMessage)
	log.Critical(PopulateMessage)
}
