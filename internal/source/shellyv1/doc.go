// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package shellyv1 talks to first generation Shelly devices through their local HTTP API
// and exposes them as state sources.
package shellyv1
