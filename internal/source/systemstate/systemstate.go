// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package systemstate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mia-platform/asynciot/internal/results"
	"github.com/mia-platform/asynciot/internal/source"
)

const (
	KeySystem       = "system"
	KeyCPU          = "cpu"
	KeyTemperatures = "temperatures"
	KeyMemory       = "memory"
	KeyDisks        = "disks"
	KeyNetworks     = "networks"
)

var availableKeys = []string{
	KeySystem,
	KeyCPU,
	KeyTemperatures,
	KeyMemory,
	KeyDisks,
	KeyNetworks,
}

// Keys returns the keys reported by a system state, in serialization order.
func Keys() []string {
	return append([]string(nil), availableKeys...)
}

// UnknownKeyError is reported for a key a system state does not know about.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("Requested key of %s not recognised.", e.Key)
}

var _ source.StateSource = &SystemState{}

// SystemState reads the state of the local machine through a Probe.
type SystemState struct {
	probe Probe
}

// New returns a SystemState reading from probe.
func New(probe Probe) *SystemState {
	return &SystemState{probe: probe}
}

func (s *SystemState) AvailableKeys() []string {
	return Keys()
}

// Get reads the requested keys concurrently. Each key that fails, including unknown
// ones, is reported as an error entry; only a done context fails the whole read.
func (s *SystemState) Get(ctx context.Context, keys []string) (*results.JSON, error) {
	entries := make([]*results.Entry, len(keys))

	group, groupCtx := errgroup.WithContext(ctx)
	for idx, key := range keys {
		group.Go(func() error {
			entries[idx] = s.collect(groupCtx, key)
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results.WithCapacity(len(entries)).WithEntries(entries...), nil
}

func (s *SystemState) collect(ctx context.Context, key string) *results.Entry {
	switch key {
	case KeySystem:
		return s.system(ctx)
	case KeyCPU:
		return s.cpu(ctx)
	case KeyTemperatures:
		return s.temperatures(ctx)
	case KeyMemory:
		return s.memory(ctx)
	case KeyDisks:
		return s.disks(ctx)
	case KeyNetworks:
		return s.networks(ctx)
	default:
		return results.EntryFromErr(key, &UnknownKeyError{Key: key})
	}
}

func failedField(field string, err error) string {
	return fmt.Sprintf("Failed to get '%s': %s", field, err)
}

// fraction returns used/total, nil when total is zero.
func fraction(used, total uint64) *float64 {
	if total == 0 {
		return nil
	}
	value := float64(used) / float64(total)
	return &value
}
