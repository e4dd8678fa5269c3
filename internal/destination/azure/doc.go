// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package azure implements the destinations exporting device snapshots to Azure: blobs in a
// storage container and events on an event hub. Both authenticate with a connection string
// or with the default Azure credential chain.
package azure
