// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package source defines the contracts implemented by everything able to report a state:
// the local system, Shelly devices and remote hosts. A Cache keeps the latest snapshot
// of a source so that HTTP handlers never wait on a device.
package source
