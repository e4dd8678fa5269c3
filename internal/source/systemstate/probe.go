// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package systemstate

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/sensors"
)

// Probe reads raw figures from the operating system.
type Probe interface {
	Host(ctx context.Context) (*host.InfoStat, error)
	CPUInfo(ctx context.Context) ([]cpu.InfoStat, error)
	CPUUsage(ctx context.Context, perCPU bool) ([]float64, error)
	PhysicalCores(ctx context.Context) (int, error)
	Load(ctx context.Context) (*load.AvgStat, error)
	VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	SwapMemory(ctx context.Context) (*mem.SwapMemoryStat, error)
	Partitions(ctx context.Context) ([]disk.PartitionStat, error)
	Usage(ctx context.Context, path string) (*disk.UsageStat, error)
	Interfaces(ctx context.Context) (net.InterfaceStatList, error)
	IOCounters(ctx context.Context) ([]net.IOCountersStat, error)
	Temperatures(ctx context.Context) ([]sensors.TemperatureStat, error)
}

var _ Probe = gopsutilProbe{}

type gopsutilProbe struct{}

// NewProbe returns the Probe reading the running machine.
func NewProbe() Probe {
	return gopsutilProbe{}
}

func (gopsutilProbe) Host(ctx context.Context) (*host.InfoStat, error) {
	return host.InfoWithContext(ctx)
}

func (gopsutilProbe) CPUInfo(ctx context.Context) ([]cpu.InfoStat, error) {
	return cpu.InfoWithContext(ctx)
}

func (gopsutilProbe) CPUUsage(ctx context.Context, perCPU bool) ([]float64, error) {
	// a zero interval compares against the previous call instead of sleeping
	return cpu.PercentWithContext(ctx, 0, perCPU)
}

func (gopsutilProbe) PhysicalCores(ctx context.Context) (int, error) {
	return cpu.CountsWithContext(ctx, false)
}

func (gopsutilProbe) Load(ctx context.Context) (*load.AvgStat, error) {
	return load.AvgWithContext(ctx)
}

func (gopsutilProbe) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

func (gopsutilProbe) SwapMemory(ctx context.Context) (*mem.SwapMemoryStat, error) {
	return mem.SwapMemoryWithContext(ctx)
}

func (gopsutilProbe) Partitions(ctx context.Context) ([]disk.PartitionStat, error) {
	return disk.PartitionsWithContext(ctx, false)
}

func (gopsutilProbe) Usage(ctx context.Context, path string) (*disk.UsageStat, error) {
	return disk.UsageWithContext(ctx, path)
}

func (gopsutilProbe) Interfaces(ctx context.Context) (net.InterfaceStatList, error) {
	return net.InterfacesWithContext(ctx)
}

func (gopsutilProbe) IOCounters(ctx context.Context) ([]net.IOCountersStat, error) {
	return net.IOCountersWithContext(ctx, true)
}

func (gopsutilProbe) Temperatures(ctx context.Context) ([]sensors.TemperatureStat, error) {
	return sensors.TemperaturesWithContext(ctx)
}
