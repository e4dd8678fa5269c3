// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package systemstate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/sensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/asynciot/internal/results"
)

var errUnsupported = errors.New("not implemented yet")

type fakeProbe struct {
	hostErr    error
	usageErr   error
	loadErr    error
	swapErr    error
	sensorsErr error
	temps      []sensors.TemperatureStat
	counters   []net.IOCountersStat
}

func (p *fakeProbe) Host(context.Context) (*host.InfoStat, error) {
	if p.hostErr != nil {
		return nil, p.hostErr
	}
	return &host.InfoStat{
		Hostname:        "raspberrypi",
		Uptime:          3600,
		OS:              "linux",
		Platform:        "debian",
		PlatformVersion: "12.5",
		KernelVersion:   "6.6.20+rpt-rpi-v8",
		KernelArch:      "aarch64",
	}, nil
}

func (p *fakeProbe) CPUInfo(context.Context) ([]cpu.InfoStat, error) {
	return []cpu.InfoStat{
		{CPU: 0, VendorID: "ARM", ModelName: "Cortex-A72", Mhz: 1800},
		{CPU: 1, VendorID: "ARM", ModelName: "Cortex-A72", Mhz: 1800},
	}, nil
}

func (p *fakeProbe) CPUUsage(_ context.Context, perCPU bool) ([]float64, error) {
	if p.usageErr != nil {
		return nil, p.usageErr
	}
	if perCPU {
		return []float64{10, 30}, nil
	}
	return []float64{20}, nil
}

func (p *fakeProbe) PhysicalCores(context.Context) (int, error) {
	return 2, nil
}

func (p *fakeProbe) Load(context.Context) (*load.AvgStat, error) {
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	return &load.AvgStat{Load1: 0.5, Load5: 0.25, Load15: 0.125}, nil
}

func (p *fakeProbe) VirtualMemory(context.Context) (*mem.VirtualMemoryStat, error) {
	return &mem.VirtualMemoryStat{Total: 1000, Available: 750, Free: 500}, nil
}

func (p *fakeProbe) SwapMemory(context.Context) (*mem.SwapMemoryStat, error) {
	if p.swapErr != nil {
		return nil, p.swapErr
	}
	return &mem.SwapMemoryStat{}, nil
}

func (p *fakeProbe) Partitions(context.Context) ([]disk.PartitionStat, error) {
	return []disk.PartitionStat{
		{Device: "/dev/mmcblk0p2", Mountpoint: "/", Fstype: "ext4", Opts: []string{"rw"}},
		{Device: "/dev/sda1", Mountpoint: "/mnt/usb", Fstype: "vfat"},
	}, nil
}

func (p *fakeProbe) Usage(_ context.Context, path string) (*disk.UsageStat, error) {
	if path == "/mnt/usb" {
		return nil, errors.New("device not ready")
	}
	return &disk.UsageStat{Path: path, Total: 200, Used: 50, Free: 150}, nil
}

func (p *fakeProbe) Interfaces(context.Context) (net.InterfaceStatList, error) {
	return net.InterfaceStatList{
		{Name: "eth0", Addrs: net.InterfaceAddrList{{Addr: "192.168.1.10/24"}, {Addr: "fe80::1/64"}}},
		{Name: "wlan0", Addrs: net.InterfaceAddrList{}},
	}, nil
}

func (p *fakeProbe) IOCounters(context.Context) ([]net.IOCountersStat, error) {
	return p.counters, nil
}

func (p *fakeProbe) Temperatures(context.Context) ([]sensors.TemperatureStat, error) {
	return p.temps, p.sensorsErr
}

func decodeEntry(t *testing.T, entry *results.Entry) map[string]any {
	t.Helper()

	decoded := make(map[string]any)
	require.NoError(t, entry.Decode(&decoded))
	return decoded
}

func TestGetKeys(t *testing.T) {
	t.Parallel()

	state := New(&fakeProbe{})
	assert.Equal(t, []string{"system", "cpu", "temperatures", "memory", "disks", "networks"}, state.AvailableKeys())

	envelope, err := state.Get(t.Context(), []string{"memory", "unknown", "system"})
	require.NoError(t, err)
	assert.Equal(t, []string{"memory", "unknown", "system"}, envelope.Keys())

	unknown, ok := envelope.Entry("unknown")
	require.True(t, ok)
	assert.Equal(t, results.ErrorState("Requested key of unknown not recognised."), unknown.State)
}

func TestGetWithDoneContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := New(&fakeProbe{}).Get(ctx, Keys())
	require.ErrorIs(t, err, context.Canceled)
}

func TestSystem(t *testing.T) {
	t.Parallel()

	t.Run("reports host information", func(t *testing.T) {
		t.Parallel()

		entry := New(&fakeProbe{}).system(t.Context())
		assert.Equal(t, results.OkState(), entry.State)
		assert.Equal(t, map[string]any{
			"name":            "debian",
			"osVersion":       "12.5",
			"osKernelVersion": "6.6.20+rpt-rpi-v8",
			"hostName":        "raspberrypi",
			"platform":        "linux/aarch64",
			"uptime":          float64(3600),
		}, decodeEntry(t, entry))
	})

	t.Run("host failure is an error entry", func(t *testing.T) {
		t.Parallel()

		entry := New(&fakeProbe{hostErr: errUnsupported}).system(t.Context())
		assert.Equal(t, results.ErrorState(errUnsupported.Error()), entry.State)
	})
}

func TestCPU(t *testing.T) {
	t.Parallel()

	t.Run("complete read", func(t *testing.T) {
		t.Parallel()

		entry := New(&fakeProbe{}).cpu(t.Context())
		assert.Equal(t, results.OkState(), entry.State)

		decoded := decodeEntry(t, entry)
		assert.Equal(t, "cpu", decoded["name"])
		assert.InDelta(t, 20, decoded["usage"], 0)
		assert.Equal(t, "Cortex-A72", decoded["brand"])
		assert.InDelta(t, 2, decoded["physicalCoreCounts"], 0)
		require.Len(t, decoded["core"], 2)
		assert.Equal(t, map[string]any{"one": 0.5, "five": 0.25, "fifteen": 0.125}, decoded["load"])
	})

	t.Run("failing fields become warnings", func(t *testing.T) {
		t.Parallel()

		entry := New(&fakeProbe{usageErr: errUnsupported, loadErr: errUnsupported}).cpu(t.Context())
		assert.Equal(t, results.WarningsState([]string{
			"Failed to get 'usage': not implemented yet",
			"Failed to get 'core': not implemented yet",
			"Failed to get 'load': not implemented yet",
		}), entry.State)

		decoded := decodeEntry(t, entry)
		assert.Nil(t, decoded["usage"])
		assert.Nil(t, decoded["load"])
		assert.Empty(t, decoded["core"])
	})
}

func TestTemperatures(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		probe            *fakeProbe
		expectedCPU      results.State
		expectedSensors  results.State
		expectedCPUValue any
	}{
		"highest cpu sensor is reported": {
			probe: &fakeProbe{temps: []sensors.TemperatureStat{
				{SensorKey: "coretemp_core_0", Temperature: 48},
				{SensorKey: "coretemp_core_1", Temperature: 52},
				{SensorKey: "nvme_composite", Temperature: 60},
			}},
			expectedCPU:      results.OkState(),
			expectedSensors:  results.OkState(),
			expectedCPUValue: float64(52),
		},
		"no cpu sensor": {
			probe:           &fakeProbe{temps: []sensors.TemperatureStat{{SensorKey: "nvme_composite", Temperature: 60}}},
			expectedCPU:     results.ErrorState(ErrNoCPUSensor.Error()),
			expectedSensors: results.OkState(),
		},
		"partial read adds a warning": {
			probe: &fakeProbe{
				temps:      []sensors.TemperatureStat{{SensorKey: "cpu_thermal", Temperature: 45}},
				sensorsErr: errors.New("acpitz: permission denied"),
			},
			expectedCPU:      results.OkState(),
			expectedSensors:  results.WarningsState([]string{"acpitz: permission denied"}),
			expectedCPUValue: float64(45),
		},
		"unsupported platform": {
			probe:           &fakeProbe{sensorsErr: errUnsupported},
			expectedCPU:     results.ErrorState(errUnsupported.Error()),
			expectedSensors: results.ErrorState(errUnsupported.Error()),
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			entry := New(test.probe).temperatures(t.Context())
			cpuEntry, ok := entry.Child("cpu")
			require.True(t, ok)
			assert.Equal(t, test.expectedCPU, cpuEntry.State)

			sensorsEntry, ok := entry.Child("sensors")
			require.True(t, ok)
			assert.Equal(t, test.expectedSensors, sensorsEntry.State)

			if test.expectedCPUValue != nil {
				var value float64
				require.NoError(t, cpuEntry.Decode(&value))
				assert.InDelta(t, test.expectedCPUValue, value, 0)
			}
		})
	}
}

func TestMemory(t *testing.T) {
	t.Parallel()

	entry := New(&fakeProbe{}).memory(t.Context())
	decoded := decodeEntry(t, entry)

	assert.Equal(t, map[string]any{
		"total":        float64(1000),
		"available":    float64(750),
		"free":         float64(500),
		"used":         float64(250),
		"percent_used": 0.25,
	}, decoded["physical"])
	assert.Equal(t, map[string]any{
		"total":        float64(0),
		"free":         float64(0),
		"used":         float64(0),
		"percent_used": nil,
	}, decoded["swap"])

	failing := New(&fakeProbe{swapErr: errUnsupported}).memory(t.Context())
	swap, ok := failing.Child("swap")
	require.True(t, ok)
	assert.True(t, swap.State.IsErr())
}

func TestDisks(t *testing.T) {
	t.Parallel()

	entry := New(&fakeProbe{}).disks(t.Context())
	assert.Equal(t, results.WarningsState([]string{"Failed to get '/mnt/usb': device not ready"}), entry.State)
	require.True(t, entry.IsScalar())

	var disks []diskReport
	require.NoError(t, entry.Decode(&disks))
	require.Len(t, disks, 1)
	assert.Equal(t, "/dev/mmcblk0p2", disks[0].Name)
	assert.Equal(t, "ext4", disks[0].FileSystem)
	require.NotNil(t, disks[0].PercentUsed)
	assert.InDelta(t, 0.25, *disks[0].PercentUsed, 0)
}

func TestNetworks(t *testing.T) {
	t.Parallel()

	probe := &fakeProbe{counters: []net.IOCountersStat{{Name: "eth0", BytesSent: 10, BytesRecv: 20}}}
	entry := New(probe).networks(t.Context())

	eth0, ok := entry.Child("eth0")
	require.True(t, ok)
	assert.Equal(t, results.OkState(), eth0.State)

	var report networkReport
	require.NoError(t, eth0.Decode(&report))
	assert.Equal(t, []networkAddress{{Addr: "192.168.1.10", Mask: "255.255.255.0"}}, report.AddressV4)
	assert.Equal(t, []networkAddress{{Addr: "fe80::1", Mask: "ffff:ffff:ffff:ffff::"}}, report.AddressV6)
	require.NotNil(t, report.Stats)
	assert.Equal(t, uint64(20), report.Stats.BytesRecv)

	wlan0, ok := entry.Child("wlan0")
	require.True(t, ok)
	assert.Equal(t, results.WarningsState([]string{"Cannot get a network address for interface `wlan0`: no counters reported"}), wlan0.State)
}

func TestEnvelopeSerialization(t *testing.T) {
	t.Parallel()

	envelope, err := New(&fakeProbe{}).Get(t.Context(), Keys())
	require.NoError(t, err)

	data, err := json.Marshal(envelope)
	require.NoError(t, err)

	decoded := make(map[string]any)
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range Keys() {
		assert.Contains(t, decoded, key)
	}
	assert.Contains(t, decoded, "_results")
	assert.Contains(t, decoded, "_timestamp")
}
