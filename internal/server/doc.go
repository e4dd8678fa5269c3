// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package server contains the HTTP server of the asynciot host.
// It sets up the Fiber application, configures the request logging middleware,
// and defines the routes for health checks and service status.
package server
