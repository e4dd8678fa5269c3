// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package collector

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/jwt"
)

// tokenSource returns the token source for method, nil when requests are not authenticated.
// ctx is kept by the source for every token request.
func (c *config) tokenSource(ctx context.Context, method authMethod) oauth2.TokenSource {
	switch method {
	case authToken:
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.Token, TokenType: "Bearer"})
	case authClientCredentials:
		config := clientcredentials.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			TokenURL:     c.AuthEndpoint,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		return config.TokenSource(ctx)
	case authJWT:
		config := &jwt.Config{
			Subject:      c.ClientID,
			PrivateKey:   []byte(c.PrivateKey),
			PrivateKeyID: c.PrivateKeyID,
			TokenURL:     c.AuthEndpoint,
		}
		return config.TokenSource(ctx)
	default:
		return nil
	}
}

// httpClient returns a client authenticating every request with method.
func (c *config) httpClient(ctx context.Context, method authMethod) *http.Client {
	source := c.tokenSource(ctx, method)
	if source == nil {
		return &http.Client{}
	}
	return oauth2.NewClient(ctx, source)
}
