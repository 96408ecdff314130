// Package models defines the snapshot structures produced by the collectors.
// Field tags carry the column names used by the table functions, so the
// JSON, YAML and CBOR renderings match the tabular output.
package models

// Byte order labels reported in CPUSnapshot.ByteOrder.
const (
	ByteOrderLittle  = "Little Endian"
	ByteOrderBig     = "Big Endian"
	ByteOrderUnknown = "(Unknown)"
)

// CPUSnapshot describes processor identity, topology and caches.
// Unknown values are left at their zero value.
type CPUSnapshot struct {
	ModelName          string `json:"model_name" yaml:"model_name"`
	Vendor             string `json:"cpu_vendor" yaml:"cpu_vendor"`
	Architecture       string `json:"architecture" yaml:"architecture"`
	LogicalProcessors  uint64 `json:"logical_processor" yaml:"logical_processor"`
	PhysicalProcessors uint64 `json:"physical_processor" yaml:"physical_processor"`
	Cores              uint64 `json:"num_cores" yaml:"num_cores"`
	ClockSpeedHz       uint64 `json:"cpu_clock_speed_Hz" yaml:"cpu_clock_speed_Hz"`
	L1DCacheKiB        uint64 `json:"l1dcache_size_KiB" yaml:"l1dcache_size_KiB"`
	L1ICacheKiB        uint64 `json:"l1icache_size_KiB" yaml:"l1icache_size_KiB"`
	L2CacheKiB         uint64 `json:"l2cache_size_KiB" yaml:"l2cache_size_KiB"`
	L3CacheKiB         uint64 `json:"l3cache_size_KiB" yaml:"l3cache_size_KiB"`
	Family             string `json:"cpu_family" yaml:"cpu_family"`
	Type               string `json:"cpu_type" yaml:"cpu_type"`
	ByteOrder          string `json:"cpu_byte_order" yaml:"cpu_byte_order"`
}

// MemorySnapshot holds physical memory and swap usage in bytes.
type MemorySnapshot struct {
	Total     uint64 `json:"total_memory" yaml:"total_memory"`
	Used      uint64 `json:"used_memory" yaml:"used_memory"`
	Free      uint64 `json:"free_memory" yaml:"free_memory"`
	Cached    uint64 `json:"cached_memory" yaml:"cached_memory"`
	Buffers   uint64 `json:"buffers_memory" yaml:"buffers_memory"`
	Available uint64 `json:"available_memory" yaml:"available_memory"`
	SwapTotal uint64 `json:"total_swap" yaml:"total_swap"`
	SwapUsed  uint64 `json:"used_swap" yaml:"used_swap"`
	SwapFree  uint64 `json:"free_swap" yaml:"free_swap"`
}

// DiskEntry represents one mounted filesystem with nonzero capacity.
type DiskEntry struct {
	MountPoint     string `json:"mount_point" yaml:"mount_point"`
	FileSystem     string `json:"file_system" yaml:"file_system"`
	FileSystemType string `json:"file_system_type" yaml:"file_system_type"`
	Total          uint64 `json:"total_space" yaml:"total_space"`
	Used           uint64 `json:"used_space" yaml:"used_space"`
	Free           uint64 `json:"free_space" yaml:"free_space"`
	InodesTotal    uint64 `json:"total_inodes" yaml:"total_inodes"`
	InodesUsed     uint64 `json:"used_inodes" yaml:"used_inodes"`
	InodesFree     uint64 `json:"free_inodes" yaml:"free_inodes"`
}

// NetworkInterfaceEntry holds counters for one (interface, IPv4 address) pair.
type NetworkInterfaceEntry struct {
	Name          string `json:"interface_name" yaml:"interface_name"`
	IPAddress     string `json:"ip_address" yaml:"ip_address"`
	TxBytes       uint64 `json:"tx_bytes" yaml:"tx_bytes"`
	TxPackets     uint64 `json:"tx_packets" yaml:"tx_packets"`
	TxErrors      uint64 `json:"tx_errors" yaml:"tx_errors"`
	TxDropped     uint64 `json:"tx_dropped" yaml:"tx_dropped"`
	RxBytes       uint64 `json:"rx_bytes" yaml:"rx_bytes"`
	RxPackets     uint64 `json:"rx_packets" yaml:"rx_packets"`
	RxErrors      uint64 `json:"rx_errors" yaml:"rx_errors"`
	RxDropped     uint64 `json:"rx_dropped" yaml:"rx_dropped"`
	LinkSpeedMbps uint64 `json:"link_speed_mbps" yaml:"link_speed_mbps"`
}

// ProcessStatusSummary aggregates the process table by scheduling state.
// Processes with an unknown state count toward Total only.
type ProcessStatusSummary struct {
	Total    uint64 `json:"total_processes" yaml:"total_processes"`
	Running  uint64 `json:"running" yaml:"running"`
	Sleeping uint64 `json:"sleeping" yaml:"sleeping"`
	Stopped  uint64 `json:"stopped" yaml:"stopped"`
	Zombie   uint64 `json:"zombie" yaml:"zombie"`
	Threads  uint64 `json:"threads" yaml:"threads"`
}

// Classified returns the number of processes assigned to a state bucket.
func (s ProcessStatusSummary) Classified() uint64 {
	return s.Running + s.Sleeping + s.Stopped + s.Zombie
}

// OSSnapshot describes the operating system and its process table totals.
type OSSnapshot struct {
	Name          string `json:"name" yaml:"name"`
	Version       string `json:"version" yaml:"version"`
	HostName      string `json:"host_name" yaml:"host_name"`
	HandleCount   uint64 `json:"handle_count" yaml:"handle_count"`
	ProcessCount  uint64 `json:"process_count" yaml:"process_count"`
	ThreadCount   uint64 `json:"thread_count" yaml:"thread_count"`
	Architecture  string `json:"architecture" yaml:"architecture"`
	UptimeSeconds uint64 `json:"os_up_since_seconds" yaml:"os_up_since_seconds"`
}

// CollectorResult holds the output of a single collector run.
type CollectorResult struct {
	Name  string
	Data  interface{}
	Error error
}
