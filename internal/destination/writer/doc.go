// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package writer implements a destination that prints the received device snapshots to the
// given io.Writer instance.
// It is primarily useful for debugging purposes, or for checking the exported snapshots
// before sending them to a real destination.
package writer
