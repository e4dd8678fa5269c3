// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mia-platform/asynciot/internal/auth"
)

const (
	KindSystemState       = "system_state"
	KindRemoteSystemState = "remote_system_state"
	KindShelly1           = "shelly1"
	KindShelly1PM         = "shelly1pm"
	KindShelly1L          = "shelly1l"

	SinkStdout    = "stdout"
	SinkCollector = "collector"
	SinkPubSub    = "pubsub"
	SinkBlob      = "blob"
	SinkEventHubs = "eventhubs"

	SystemStatePath   = "/system"
	DevicesPathPrefix = "/devices/"

	NameField    = "name"
	KindField    = "kind"
	AddressField = "address"
)

var (
	// ErrParsing reports failures that occur while decoding host configuration files.
	ErrParsing = errors.New("error parsing")

	Kinds = []string{KindSystemState, KindRemoteSystemState, KindShelly1, KindShelly1PM, KindShelly1L}
	Sinks = []string{SinkStdout, SinkCollector, SinkPubSub, SinkBlob, SinkEventHubs}

	reservedPaths = []string{"/", "/info", "/terminate", "/webhooks", "/-"}
)

// HostConfig describes the devices a host exposes and where their state is exported.
type HostConfig struct {
	Devices []DeviceConfig `json:"devices" yaml:"devices"`
	Export  ExportConfig   `json:"export,omitempty" yaml:"export,omitempty"`
}

// DeviceConfig describes a single device mounted on the host.
type DeviceConfig struct {
	Name    string            `json:"name" yaml:"name"`
	Kind    string            `json:"kind" yaml:"kind"`
	Path    string            `json:"path,omitempty" yaml:"path,omitempty"`
	Address string            `json:"address,omitempty" yaml:"address,omitempty"`
	Auth    *auth.Credentials `json:"auth,omitempty" yaml:"auth,omitempty"`
}

// ExportConfig lists the sinks receiving the periodic device snapshots.
type ExportConfig struct {
	Sinks []string `json:"sinks,omitempty" yaml:"sinks,omitempty"`
}

// IsNetworked reports whether the device is reached over the network.
func (d DeviceConfig) IsNetworked() bool {
	return d.Kind != KindSystemState
}

// IsShelly reports whether the device is a Shelly Gen1 device.
func (d DeviceConfig) IsShelly() bool {
	return strings.HasPrefix(d.Kind, "shelly")
}

// DefaultHostConfig returns the configuration used when no file is provided:
// the local system state mounted on its default path.
func DefaultHostConfig() *HostConfig {
	return &HostConfig{
		Devices: []DeviceConfig{
			{
				Name: KindSystemState,
				Kind: KindSystemState,
				Path: SystemStatePath,
			},
		},
	}
}

// NewHostConfigFromPath parses the file at path. Multiple YAML documents are merged in order.
// An empty path returns DefaultHostConfig.
func NewHostConfigFromPath(path string) (*HostConfig, error) {
	if path == "" {
		return DefaultHostConfig(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return newHostConfig(file, path)
}

func newHostConfig(reader io.Reader, path string) (*HostConfig, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	merged := new(HostConfig)
	for {
		config := new(HostConfig)
		err := decoder.Decode(&config)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w %q: %w", ErrParsing, path, err)
		}

		// Skip empty documents.
		if config == nil {
			continue
		}

		merged.Devices = append(merged.Devices, config.Devices...)
		merged.Export.Sinks = append(merged.Export.Sinks, config.Export.Sinks...)
	}

	if len(merged.Devices) == 0 {
		return nil, fmt.Errorf("%w %q: no devices configured", ErrParsing, path)
	}

	if err := merged.normalize(); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrParsing, path, err)
	}
	return merged, nil
}

// normalize fills default paths and validates every device and sink.
func (c *HostConfig) normalize() error {
	errorsList := []string{}
	names := make(map[string]struct{}, len(c.Devices))
	paths := make(map[string]struct{}, len(c.Devices))

	for idx := range c.Devices {
		device := &c.Devices[idx]
		device.Path = strings.TrimSuffix(device.Path, "/")
		if device.Path == "" {
			device.Path = defaultPath(*device)
		}

		for _, problem := range validateDevice(*device) {
			errorsList = append(errorsList, fmt.Sprintf("device %d: %s", idx, problem))
		}

		if device.Name != "" {
			if _, found := names[device.Name]; found {
				errorsList = append(errorsList, fmt.Sprintf("device %d: duplicate name '%s'", idx, device.Name))
			}
			names[device.Name] = struct{}{}
		}
		if _, found := paths[device.Path]; found {
			errorsList = append(errorsList, fmt.Sprintf("device %d: duplicate path '%s'", idx, device.Path))
		}
		paths[device.Path] = struct{}{}
	}

	seenSinks := make(map[string]struct{}, len(c.Export.Sinks))
	for _, sink := range c.Export.Sinks {
		if !slices.Contains(Sinks, sink) {
			errorsList = append(errorsList, fmt.Sprintf("unknown sink '%s'", sink))
		}
		if _, found := seenSinks[sink]; found {
			errorsList = append(errorsList, fmt.Sprintf("duplicate sink '%s'", sink))
		}
		seenSinks[sink] = struct{}{}
	}

	if len(errorsList) > 0 {
		return errors.New(strings.Join(errorsList, "; "))
	}
	return nil
}

func defaultPath(device DeviceConfig) string {
	if device.Kind == KindSystemState {
		return SystemStatePath
	}
	return DevicesPathPrefix + device.Name
}

func validateDevice(device DeviceConfig) []string {
	errorsList := []string{}

	missingFields := []string{}
	if device.Name == "" {
		missingFields = append(missingFields, NameField)
	}
	if device.Kind == "" {
		missingFields = append(missingFields, KindField)
	}
	if device.IsNetworked() && device.Kind != "" && device.Address == "" {
		missingFields = append(missingFields, AddressField)
	}
	if len(missingFields) > 0 {
		errorsList = append(errorsList, "missing required fields: "+strings.Join(missingFields, ", "))
	}

	if device.Kind != "" && !slices.Contains(Kinds, device.Kind) {
		errorsList = append(errorsList, fmt.Sprintf("unknown kind '%s'", device.Kind))
	}
	if device.Kind == KindSystemState && device.Address != "" {
		errorsList = append(errorsList, "a local system state has no address")
	}
	if strings.Contains(device.Name, "/") {
		errorsList = append(errorsList, fmt.Sprintf("name '%s' cannot contain '/'", device.Name))
	}

	if !strings.HasPrefix(device.Path, "/") {
		errorsList = append(errorsList, fmt.Sprintf("path '%s' must start with '/'", device.Path))
	}
	for _, reserved := range reservedPaths {
		if device.Path == reserved || (reserved != "/" && strings.HasPrefix(device.Path, reserved+"/")) {
			errorsList = append(errorsList, fmt.Sprintf("path '%s' is reserved", device.Path))
			break
		}
	}

	if err := device.Auth.Validate(); err != nil {
		errorsList = append(errorsList, err.Error())
	}
	return errorsList
}
