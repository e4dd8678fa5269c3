// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package host serves the state of the configured devices over HTTP.
//
// Every device is mounted on its own path and read through a cache refreshed in the
// background. The host also exposes its usage statistics on /info and accepts remote
// termination requests on /terminate.
package host
