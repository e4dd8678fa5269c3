// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package pubsub implements a destination publishing device snapshots on a Google Cloud
// Pub/Sub topic. Messages carry the device name and kind as attributes.
package pubsub
