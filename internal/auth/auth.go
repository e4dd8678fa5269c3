// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package auth builds the HTTP transports used to reach devices and remote hosts.
package auth

import (
	"errors"
	"net/http"

	"golang.org/x/oauth2"
)

var (
	ErrConflictingCredentials = errors.New("username and token cannot be set together")
)

// Credentials of a device: a username with an optional password for basic
// authentication, or a bearer token.
type Credentials struct {
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Token    string `json:"token,omitempty" yaml:"token,omitempty"`
}

// Validate checks that at most one authentication scheme is configured.
func (c *Credentials) Validate() error {
	if c == nil {
		return nil
	}
	if c.Username != "" && c.Token != "" {
		return ErrConflictingCredentials
	}
	return nil
}

// IsZero reports whether no credentials are configured.
func (c *Credentials) IsZero() bool {
	return c == nil || (c.Username == "" && c.Token == "")
}

// NewTransport wraps base so that every request carries the credentials.
// A nil base means http.DefaultTransport.
func NewTransport(credentials *Credentials, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	switch {
	case credentials.IsZero():
		return base
	case credentials.Token != "":
		return &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credentials.Token, TokenType: "Bearer"}),
			Base:   base,
		}
	default:
		return &basicAuthTransport{
			username: credentials.Username,
			password: credentials.Password,
			base:     base,
		}
	}
}

type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// a RoundTripper must not modify the request it receives
	authenticated := req.Clone(req.Context())
	authenticated.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(authenticated)
}
