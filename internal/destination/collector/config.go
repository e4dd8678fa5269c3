// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package collector

import (
	"errors"
	"net/url"
)

var (
	errMultipleAuthMethods = errors.New("only one authentication method can be configured")
	errMissingClientID     = errors.New("EXPORT_COLLECTOR_CLIENT_ID is required")
	errMissingClientSecret = errors.New("EXPORT_COLLECTOR_CLIENT_SECRET is required")
)

type authMethod int

const (
	authNone authMethod = iota
	authToken
	authClientCredentials
	authJWT
)

// config is read from the environment when the collector sink is enabled.
type config struct {
	Endpoint     string `env:"EXPORT_COLLECTOR_ENDPOINT,required"`
	Token        string `env:"EXPORT_COLLECTOR_TOKEN"`
	ClientID     string `env:"EXPORT_COLLECTOR_CLIENT_ID"`
	ClientSecret string `env:"EXPORT_COLLECTOR_CLIENT_SECRET"`
	PrivateKey   string `env:"EXPORT_COLLECTOR_PRIVATE_KEY"`
	PrivateKeyID string `env:"EXPORT_COLLECTOR_PRIVATE_KEY_ID"`
	AuthEndpoint string `env:"EXPORT_COLLECTOR_AUTH_ENDPOINT"`
}

// authMethod validates the endpoints and returns the single authentication method configured.
// A missing auth endpoint defaults to /oauth/token on the collector host.
func (c *config) authMethod() (authMethod, error) {
	endpoint, err := url.Parse(c.Endpoint)
	if err != nil {
		return authNone, err
	}

	if c.AuthEndpoint == "" {
		c.AuthEndpoint = endpoint.Scheme + "://" + endpoint.Host + "/oauth/token"
	} else if _, err := url.Parse(c.AuthEndpoint); err != nil {
		return authNone, err
	}

	hasToken := c.Token != ""
	hasSecret := c.ClientSecret != ""
	hasKey := c.PrivateKey != ""

	switch {
	case hasToken && (c.ClientID != "" || hasSecret || hasKey), hasKey && hasSecret:
		return authNone, errMultipleAuthMethods
	case hasToken:
		return authToken, nil
	case (hasKey || hasSecret) && c.ClientID == "":
		return authNone, errMissingClientID
	case hasKey:
		return authJWT, nil
	case hasSecret:
		return authClientCredentials, nil
	case c.ClientID != "":
		return authNone, errMissingClientSecret
	default:
		return authNone, nil
	}
}
