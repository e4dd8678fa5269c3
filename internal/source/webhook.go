// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package source

import (
	"context"
	"net/http"
	"net/url"
)

// WebhookHandler receives the callback sent by a device. Query holds the parameters of the
// callback URL since devices encode their events there.
type WebhookHandler func(ctx context.Context, headers http.Header, query url.Values, body []byte) error

type Webhook struct {
	Method  string
	Path    string
	Handler WebhookHandler
}
