// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package host

import (
	"errors"
	"fmt"

	"github.com/mia-platform/asynciot/internal/config"
	"github.com/mia-platform/asynciot/internal/source"
	"github.com/mia-platform/asynciot/internal/source/remote"
	"github.com/mia-platform/asynciot/internal/source/shellyv1"
	"github.com/mia-platform/asynciot/internal/source/systemstate"
)

var (
	ErrDeviceSetup = errors.New("cannot set up device")
)

// Device is a configured device together with the cache serving its state.
type Device struct {
	config.DeviceConfig

	Cache *source.Cache
}

// IsSystemState reports whether the device is the local system state.
func (d *Device) IsSystemState() bool {
	return d.Kind == config.KindSystemState
}

// Shelly returns the Shelly device behind the cache, if any.
func (d *Device) Shelly() (*shellyv1.Device, bool) {
	shelly, ok := d.Cache.Source().(*shellyv1.Device)
	return shelly, ok
}

// NewDevice builds the source described by cfg and wraps it in a cache.
func NewDevice(cfg config.DeviceConfig, probe systemstate.Probe) (*Device, error) {
	src, err := newSource(cfg, probe)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrDeviceSetup, cfg.Name, err)
	}

	return &Device{
		DeviceConfig: cfg,
		Cache:        source.NewCache(cfg.Name, src),
	}, nil
}

// NewDevices builds every configured device, reading the local system state through probe.
func NewDevices(cfg *config.HostConfig, probe systemstate.Probe) ([]*Device, error) {
	devices := make([]*Device, 0, len(cfg.Devices))
	for _, deviceConfig := range cfg.Devices {
		device, err := NewDevice(deviceConfig, probe)
		if err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	return devices, nil
}

func newSource(cfg config.DeviceConfig, probe systemstate.Probe) (source.StateSource, error) {
	switch {
	case cfg.Kind == config.KindSystemState:
		return systemstate.New(probe), nil
	case cfg.Kind == config.KindRemoteSystemState:
		return remote.New(cfg.Address, cfg.Auth)
	case cfg.IsShelly():
		model, err := shellyv1.ParseModel(cfg.Kind)
		if err != nil {
			return nil, err
		}
		client, err := shellyv1.NewClient(cfg.Address, cfg.Auth)
		if err != nil {
			return nil, err
		}
		return shellyv1.NewDevice(cfg.Name, model, client)
	default:
		return nil, fmt.Errorf("unknown device kind %q", cfg.Kind)
	}
}
