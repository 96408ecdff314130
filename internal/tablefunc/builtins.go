package tablefunc

import (
	"fmt"

	"github.com/Guliveer/sysstats/internal/collector"
	"github.com/Guliveer/sysstats/internal/models"
	"github.com/Guliveer/sysstats/internal/units"
)

// Table function names.
const (
	CPUInfo       = "sys_cpu_info"
	MemoryInfo    = "sys_memory_info"
	DiskInfo      = "sys_disk_info"
	NetworkInfo   = "sys_network_info"
	OSInfo        = "sys_os_info"
	ProcessStatus = "sys_process_status"
)

func text(name string) Column    { return Column{Name: name, Type: Text} }
func integer(name string) Column { return Column{Name: name, Type: Integer} }

func builtins() []*Function {
	return []*Function{
		{
			Name:        CPUInfo,
			Description: "CPU model, topology, cache sizes, clock speed and byte order",
			Collector:   collector.CPUName,
			Columns: []Column{
				text("model_name"), text("cpu_vendor"), text("architecture"),
				integer("logical_processor"), integer("physical_processor"), integer("num_cores"),
				integer("cpu_clock_speed_Hz"),
				integer("l1dcache_size_KiB"), integer("l1icache_size_KiB"),
				integer("l2cache_size_KiB"), integer("l3cache_size_KiB"),
				text("cpu_family"), text("cpu_type"), text("cpu_byte_order"),
			},
			build: buildCPU,
		},
		{
			Name:        MemoryInfo,
			Description: "Physical memory and swap usage",
			Collector:   collector.MemoryName,
			AcceptsUnit: true,
			Columns: []Column{
				integer("total_memory"), integer("used_memory"), integer("free_memory"),
				integer("cached_memory"), integer("buffers_memory"), integer("available_memory"),
				integer("total_swap"), integer("used_swap"), integer("free_swap"),
			},
			build: buildMemory,
		},
		{
			Name:        DiskInfo,
			Description: "Mounted filesystems with capacity and inode counts",
			Collector:   collector.DiskName,
			AcceptsUnit: true,
			Columns: []Column{
				text("mount_point"), text("file_system"), text("file_system_type"),
				integer("total_space"), integer("used_space"), integer("free_space"),
				integer("total_inodes"), integer("used_inodes"), integer("free_inodes"),
			},
			build: buildDisks,
		},
		{
			Name:        NetworkInfo,
			Description: "Network interfaces with IPv4 address and traffic counters",
			Collector:   collector.NetworkName,
			Columns: []Column{
				text("interface_name"), text("ip_address"),
				integer("tx_bytes"), integer("tx_packets"), integer("tx_errors"), integer("tx_dropped"),
				integer("rx_bytes"), integer("rx_packets"), integer("rx_errors"), integer("rx_dropped"),
				integer("link_speed_mbps"),
			},
			build: buildNetwork,
		},
		{
			Name:        OSInfo,
			Description: "Operating system name, version, host and process totals",
			Collector:   collector.OSInfoName,
			Columns: []Column{
				text("name"), text("version"), text("host_name"),
				integer("handle_count"), integer("process_count"), integer("thread_count"),
				text("architecture"), integer("os_up_since_seconds"),
			},
			build: buildOS,
		},
		{
			Name:        ProcessStatus,
			Description: "Process counts by scheduling state and total threads",
			Collector:   collector.ProcessStatusName,
			Columns: []Column{
				integer("total_processes"), integer("running"), integer("sleeping"),
				integer("stopped"), integer("zombie"), integer("threads"),
			},
			build: buildProcessStatus,
		},
	}
}

func unexpected(data interface{}) error {
	return fmt.Errorf("unexpected snapshot type %T", data)
}

func buildCPU(data interface{}, _ units.MemoryUnit) (interface{}, [][]interface{}, error) {
	s, ok := data.(models.CPUSnapshot)
	if !ok {
		return nil, nil, unexpected(data)
	}
	row := []interface{}{
		s.ModelName, s.Vendor, s.Architecture,
		s.LogicalProcessors, s.PhysicalProcessors, s.Cores,
		s.ClockSpeedHz,
		s.L1DCacheKiB, s.L1ICacheKiB, s.L2CacheKiB, s.L3CacheKiB,
		s.Family, s.Type, s.ByteOrder,
	}
	return s, [][]interface{}{row}, nil
}

func buildMemory(data interface{}, unit units.MemoryUnit) (interface{}, [][]interface{}, error) {
	s, ok := data.(models.MemorySnapshot)
	if !ok {
		return nil, nil, unexpected(data)
	}
	conv := func(v uint64) uint64 { return units.ConvertBytes(v, unit) }
	s = models.MemorySnapshot{
		Total:     conv(s.Total),
		Used:      conv(s.Used),
		Free:      conv(s.Free),
		Cached:    conv(s.Cached),
		Buffers:   conv(s.Buffers),
		Available: conv(s.Available),
		SwapTotal: conv(s.SwapTotal),
		SwapUsed:  conv(s.SwapUsed),
		SwapFree:  conv(s.SwapFree),
	}
	row := []interface{}{
		s.Total, s.Used, s.Free, s.Cached, s.Buffers, s.Available,
		s.SwapTotal, s.SwapUsed, s.SwapFree,
	}
	return s, [][]interface{}{row}, nil
}

func buildDisks(data interface{}, unit units.MemoryUnit) (interface{}, [][]interface{}, error) {
	entries, ok := data.([]models.DiskEntry)
	if !ok {
		return nil, nil, unexpected(data)
	}
	converted := make([]models.DiskEntry, len(entries))
	rows := make([][]interface{}, len(entries))
	for i, e := range entries {
		e.Total = units.ConvertBytes(e.Total, unit)
		e.Used = units.ConvertBytes(e.Used, unit)
		e.Free = units.ConvertBytes(e.Free, unit)
		converted[i] = e
		rows[i] = []interface{}{
			e.MountPoint, e.FileSystem, e.FileSystemType,
			e.Total, e.Used, e.Free,
			e.InodesTotal, e.InodesUsed, e.InodesFree,
		}
	}
	return converted, rows, nil
}

func buildNetwork(data interface{}, _ units.MemoryUnit) (interface{}, [][]interface{}, error) {
	entries, ok := data.([]models.NetworkInterfaceEntry)
	if !ok {
		return nil, nil, unexpected(data)
	}
	rows := make([][]interface{}, len(entries))
	for i, e := range entries {
		rows[i] = []interface{}{
			e.Name, e.IPAddress,
			e.TxBytes, e.TxPackets, e.TxErrors, e.TxDropped,
			e.RxBytes, e.RxPackets, e.RxErrors, e.RxDropped,
			e.LinkSpeedMbps,
		}
	}
	if entries == nil {
		entries = []models.NetworkInterfaceEntry{}
	}
	return entries, rows, nil
}

func buildOS(data interface{}, _ units.MemoryUnit) (interface{}, [][]interface{}, error) {
	s, ok := data.(models.OSSnapshot)
	if !ok {
		return nil, nil, unexpected(data)
	}
	row := []interface{}{
		s.Name, s.Version, s.HostName,
		s.HandleCount, s.ProcessCount, s.ThreadCount,
		s.Architecture, s.UptimeSeconds,
	}
	return s, [][]interface{}{row}, nil
}

func buildProcessStatus(data interface{}, _ units.MemoryUnit) (interface{}, [][]interface{}, error) {
	s, ok := data.(models.ProcessStatusSummary)
	if !ok {
		return nil, nil, unexpected(data)
	}
	row := []interface{}{s.Total, s.Running, s.Sleeping, s.Stopped, s.Zombie, s.Threads}
	return s, [][]interface{}{row}, nil
}
