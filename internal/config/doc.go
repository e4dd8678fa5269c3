// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package config loads the host configuration: the devices file, decoded with yaml.v3, and
// the host settings read from the environment.
package config
