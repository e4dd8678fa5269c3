// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package systemstate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/mia-platform/asynciot/internal/results"
)

var (
	ErrNoCPUSensor = errors.New("no CPU temperature sensor found")
)

// cpuSensorMarkers identify sensors measuring the CPU package across platforms.
var cpuSensorMarkers = []string{"coretemp", "k10temp", "cpu", "x86_pkg_temp", "soc_thermal", "package"}

type systemReport struct {
	Name            string `json:"name"`
	OSVersion       string `json:"osVersion"`
	OSKernelVersion string `json:"osKernelVersion"`
	HostName        string `json:"hostName"`
	Platform        string `json:"platform"`
	Uptime          uint64 `json:"uptime"`
}

func (s *SystemState) system(ctx context.Context) *results.Entry {
	info, err := s.probe.Host(ctx)
	if err != nil {
		return results.EntryFromErr(KeySystem, err)
	}

	return results.EntryFromValue(KeySystem, systemReport{
		Name:            info.Platform,
		OSVersion:       info.PlatformVersion,
		OSKernelVersion: info.KernelVersion,
		HostName:        info.Hostname,
		Platform:        info.OS + "/" + info.KernelArch,
		Uptime:          info.Uptime,
	})
}

type cpuCore struct {
	Name      string   `json:"name"`
	Frequency *float64 `json:"frequency"`
	Usage     *float64 `json:"usage"`
	VendorID  *string  `json:"vendorId"`
	Brand     *string  `json:"brand"`
}

type cpuLoad struct {
	One     float64 `json:"one"`
	Five    float64 `json:"five"`
	Fifteen float64 `json:"fifteen"`
}

type cpuReport struct {
	cpuCore
	PhysicalCoreCounts *int      `json:"physicalCoreCounts"`
	Core               []cpuCore `json:"core"`
	Load               *cpuLoad  `json:"load"`
}

func coreFromInfo(name string, info *cpu.InfoStat, usage *float64) cpuCore {
	core := cpuCore{Name: name, Usage: usage}
	if info != nil {
		frequency := info.Mhz
		core.Frequency = &frequency
		vendorID := info.VendorID
		core.VendorID = &vendorID
		brand := info.ModelName
		core.Brand = &brand
	}
	return core
}

func (s *SystemState) cpu(ctx context.Context) *results.Entry {
	warnings := make([]string, 0)

	infos, err := s.probe.CPUInfo(ctx)
	if err != nil {
		warnings = append(warnings, failedField("info", err))
	}

	var globalUsage *float64
	if usage, err := s.probe.CPUUsage(ctx, false); err != nil {
		warnings = append(warnings, failedField("usage", err))
	} else if len(usage) > 0 {
		globalUsage = &usage[0]
	}

	var global *cpu.InfoStat
	if len(infos) > 0 {
		global = &infos[0]
	}
	report := cpuReport{cpuCore: coreFromInfo("cpu", global, globalUsage)}

	if cores, err := s.probe.PhysicalCores(ctx); err != nil {
		warnings = append(warnings, failedField("physicalCoreCounts", err))
	} else {
		report.PhysicalCoreCounts = &cores
	}

	perCore, err := s.probe.CPUUsage(ctx, true)
	if err != nil {
		warnings = append(warnings, failedField("core", err))
	}
	report.Core = make([]cpuCore, 0, len(perCore))
	for idx := range perCore {
		var info *cpu.InfoStat
		if idx < len(infos) {
			info = &infos[idx]
		}
		report.Core = append(report.Core, coreFromInfo(fmt.Sprintf("cpu%d", idx), info, &perCore[idx]))
	}

	if avg, err := s.probe.Load(ctx); err != nil {
		warnings = append(warnings, failedField("load", err))
	} else {
		report.Load = &cpuLoad{One: avg.Load1, Five: avg.Load5, Fifteen: avg.Load15}
	}

	return results.EntryFromExtended(KeyCPU, results.Ok(report).WithWarnings(warnings...))
}

func isCPUSensor(key string) bool {
	key = strings.ToLower(key)
	return slices.ContainsFunc(cpuSensorMarkers, func(marker string) bool {
		return strings.Contains(key, marker)
	})
}

func (s *SystemState) temperatures(ctx context.Context) *results.Entry {
	temperatures, err := s.probe.Temperatures(ctx)
	if err != nil && len(temperatures) == 0 {
		return results.NewMapping(KeyTemperatures, results.OkState()).WithChildren(
			results.EntryFromErr("cpu", err),
			results.EntryFromErr("sensors", err),
		)
	}

	sensors := make(map[string]float64, len(temperatures))
	var cpuTemperature *float64
	for _, stat := range temperatures {
		sensors[stat.SensorKey] = stat.Temperature
		if isCPUSensor(stat.SensorKey) && (cpuTemperature == nil || stat.Temperature > *cpuTemperature) {
			value := stat.Temperature
			cpuTemperature = &value
		}
	}

	cpuEntry := results.EntryFromValue("cpu", cpuTemperature)
	if cpuTemperature == nil {
		cpuEntry = results.EntryFromErr("cpu", ErrNoCPUSensor)
	}

	// partial reads come with an error listing the sensors that failed
	sensorsResult := results.Ok(sensors)
	if err != nil {
		sensorsResult = sensorsResult.WithWarnings(err.Error())
	}

	return results.NewMapping(KeyTemperatures, results.OkState()).WithChildren(
		cpuEntry,
		results.EntryFromExtended("sensors", sensorsResult),
	)
}

type physicalMemory struct {
	Total       uint64   `json:"total"`
	Available   uint64   `json:"available"`
	Free        uint64   `json:"free"`
	Used        uint64   `json:"used"`
	PercentUsed *float64 `json:"percent_used"`
}

type swapMemory struct {
	Total       uint64   `json:"total"`
	Free        uint64   `json:"free"`
	Used        uint64   `json:"used"`
	PercentUsed *float64 `json:"percent_used"`
}

func (s *SystemState) memory(ctx context.Context) *results.Entry {
	entry := results.NewMapping(KeyMemory, results.OkState())

	if virtual, err := s.probe.VirtualMemory(ctx); err != nil {
		entry.AddChild(results.EntryFromErr("physical", err))
	} else {
		used := virtual.Total - virtual.Available
		entry.AddChild(results.EntryFromValue("physical", physicalMemory{
			Total:       virtual.Total,
			Available:   virtual.Available,
			Free:        virtual.Free,
			Used:        used,
			PercentUsed: fraction(used, virtual.Total),
		}))
	}

	if swap, err := s.probe.SwapMemory(ctx); err != nil {
		entry.AddChild(results.EntryFromErr("swap", err))
	} else {
		entry.AddChild(results.EntryFromValue("swap", swapMemory{
			Total:       swap.Total,
			Free:        swap.Free,
			Used:        swap.Used,
			PercentUsed: fraction(swap.Used, swap.Total),
		}))
	}

	return entry
}

type diskReport struct {
	Name        string   `json:"name"`
	FileSystem  string   `json:"file_system"`
	MountPoint  string   `json:"mount_point"`
	Total       uint64   `json:"total"`
	Used        uint64   `json:"used"`
	Free        uint64   `json:"free"`
	PercentUsed *float64 `json:"percent_used"`
	Options     []string `json:"options"`
}

func (s *SystemState) disks(ctx context.Context) *results.Entry {
	partitions, err := s.probe.Partitions(ctx)
	if err != nil {
		return results.EntryFromErr(KeyDisks, err)
	}

	warnings := make([]string, 0)
	disks := make([]diskReport, 0, len(partitions))
	for _, partition := range partitions {
		usage, err := s.probe.Usage(ctx, partition.Mountpoint)
		if err != nil {
			warnings = append(warnings, failedField(partition.Mountpoint, err))
			continue
		}

		disks = append(disks, diskReport{
			Name:        partition.Device,
			FileSystem:  partition.Fstype,
			MountPoint:  partition.Mountpoint,
			Total:       usage.Total,
			Used:        usage.Used,
			Free:        usage.Free,
			PercentUsed: fraction(usage.Used, usage.Total),
			Options:     partition.Opts,
		})
	}

	return results.EntryFromExtended(KeyDisks, results.Ok(disks).WithWarnings(warnings...))
}

type networkAddress struct {
	Addr string `json:"addr"`
	Mask string `json:"mask"`
}

type networkStats struct {
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
	ErrorsIn    uint64 `json:"errors_in"`
	ErrorsOut   uint64 `json:"errors_out"`
	DropIn      uint64 `json:"drop_in"`
	DropOut     uint64 `json:"drop_out"`
}

type networkReport struct {
	AddressV4 []networkAddress `json:"address_v4"`
	AddressV6 []networkAddress `json:"address_v6"`
	Stats     *networkStats    `json:"stats"`
}

var errNoCounters = errors.New("no counters reported")

// splitAddress converts a CIDR notation into an address and a mask, reporting whether
// the address is IPv4.
func splitAddress(cidr string) (networkAddress, bool, error) {
	ip, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return networkAddress{}, false, err
	}

	if ip4 := ip.To4(); ip4 != nil {
		return networkAddress{Addr: ip4.String(), Mask: net.IP(ipNet.Mask).String()}, true, nil
	}
	return networkAddress{Addr: ip.String(), Mask: net.IP(ipNet.Mask).String()}, false, nil
}

func (s *SystemState) networks(ctx context.Context) *results.Entry {
	interfaces, err := s.probe.Interfaces(ctx)
	if err != nil {
		return results.EntryFromErr(KeyNetworks, err)
	}

	counters, countersErr := s.probe.IOCounters(ctx)
	countersByName := make(map[string]networkStats, len(counters))
	for _, counter := range counters {
		countersByName[counter.Name] = networkStats{
			BytesSent:   counter.BytesSent,
			BytesRecv:   counter.BytesRecv,
			PacketsSent: counter.PacketsSent,
			PacketsRecv: counter.PacketsRecv,
			ErrorsIn:    counter.Errin,
			ErrorsOut:   counter.Errout,
			DropIn:      counter.Dropin,
			DropOut:     counter.Dropout,
		}
	}

	entry := results.NewMapping(KeyNetworks, results.OkState())
	for _, iface := range interfaces {
		warnings := make([]string, 0)
		report := networkReport{
			AddressV4: make([]networkAddress, 0),
			AddressV6: make([]networkAddress, 0),
		}

		for _, addr := range iface.Addrs {
			address, isV4, err := splitAddress(addr.Addr)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("Cannot parse address %q of interface `%s`: %s", addr.Addr, iface.Name, err))
				continue
			}
			if isV4 {
				report.AddressV4 = append(report.AddressV4, address)
			} else {
				report.AddressV6 = append(report.AddressV6, address)
			}
		}

		if stats, ok := countersByName[iface.Name]; ok {
			report.Stats = &stats
		} else {
			reason := countersErr
			if reason == nil {
				reason = errNoCounters
			}
			warnings = append(warnings, fmt.Sprintf("Cannot get a network address for interface `%s`: %s", iface.Name, reason))
		}

		entry.AddChild(results.EntryFromExtended(iface.Name, results.Ok(report).WithWarnings(warnings...)))
	}

	return entry
}
