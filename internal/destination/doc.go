// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package destination defines the primitives used to implement the sinks receiving the
// periodic device snapshots exported by the host.
// It standardizes initialization and lifecycle handling so sinks can share the same contracts.
package destination
