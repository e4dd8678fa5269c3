// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package collector implements a destination posting device snapshots as JSON to an HTTP
// collector endpoint. Requests carry the snapshot id, device and kind as headers and are
// authenticated with a static token, OAuth2 client credentials or a JWT bearer grant.
package collector
