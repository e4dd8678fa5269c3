// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package systemstate reports the state of the machine running the host: operating system,
// CPU, temperatures, memory, disks and network interfaces.
package systemstate
