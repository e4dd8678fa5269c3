// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

var (
	ErrEnvVariablesNotValid = errors.New("environment variables not valid")
)

// HostEnv holds the host settings read from the environment.
type HostEnv struct {
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"5s"`
	LatestVisits    int           `env:"LATEST_VISITS" envDefault:"10"`
	ExportInterval  time.Duration `env:"EXPORT_INTERVAL" envDefault:"1m"`
}

func LoadHostEnv() (*HostEnv, error) {
	envVars, err := env.ParseAs[HostEnv]()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEnvVariablesNotValid, err.Error())
	}

	if err := validateHostEnv(&envVars); err != nil {
		return nil, err
	}
	return &envVars, nil
}

func validateHostEnv(envVars *HostEnv) error {
	envError := make([]string, 0)

	if envVars.RefreshInterval <= 0 {
		envError = append(envError, "REFRESH_INTERVAL must be positive")
	}
	if envVars.LatestVisits < 1 {
		envError = append(envError, "LATEST_VISITS must be at least 1")
	}
	if envVars.ExportInterval <= 0 {
		envError = append(envError, "EXPORT_INTERVAL must be positive")
	}

	if len(envError) > 0 {
		return fmt.Errorf("%w: %s", ErrEnvVariablesNotValid, strings.Join(envError, ", "))
	}
	return nil
}
