// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package pipeline periodically exports the cached state of the configured devices.
// A pipeline is composed of a list of device caches and a destination; a producer loop
// reads the caches on every tick and a consumer goroutine delivers the snapshots.
package pipeline
