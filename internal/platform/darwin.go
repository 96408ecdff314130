//go:build darwin

package platform

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/Guliveer/sysstats/internal/filter"
	"github.com/Guliveer/sysstats/internal/models"
)

// Process states of kinfo_proc.kp_proc.p_stat.
const (
	sIdl  = 1
	sRun  = 2
	sSlp  = 3
	sStop = 4
	sZomb = 5
)

// routeTableRetries bounds the re-queries when the interface table grows
// between the size probe and the read.
const routeTableRetries = 3

// DarwinProvider reads sysctl MIBs, getfsstat(2) and the routing table.
type DarwinProvider struct {
	filter *filter.Filter
	logger *zap.Logger
}

func newProvider(opts Options, logger *zap.Logger) Provider {
	return NewDarwinProvider(opts, logger)
}

// NewDarwinProvider creates a provider for the running macOS host. Path
// roots in opts do not apply on this platform.
func NewDarwinProvider(opts Options, logger *zap.Logger) *DarwinProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := opts.Filter
	if f == nil {
		f = filter.Default()
	}
	return &DarwinProvider{filter: f, logger: logger}
}

// Name returns the platform name.
func (p *DarwinProvider) Name() string { return "darwin" }

func (p *DarwinProvider) sysctlUint32(name string) (uint32, bool) {
	v, err := unix.SysctlUint32(name)
	if err != nil {
		p.logger.Debug("sysctl failed", zap.String("name", name), zap.Error(err))
		return 0, false
	}
	return v, true
}

func (p *DarwinProvider) sysctlUint64(name string) (uint64, bool) {
	v, err := unix.SysctlUint64(name)
	if err != nil {
		p.logger.Debug("sysctl failed", zap.String("name", name), zap.Error(err))
		return 0, false
	}
	return v, true
}

func (p *DarwinProvider) sysctlString(name string) string {
	v, err := unix.Sysctl(name)
	if err != nil {
		p.logger.Debug("sysctl failed", zap.String("name", name), zap.Error(err))
		return ""
	}
	return v
}

// CPU queries the hw.* and machdep.cpu.* MIBs.
func (p *DarwinProvider) CPU(ctx context.Context) (models.CPUSnapshot, error) {
	var snap models.CPUSnapshot
	if err := ctx.Err(); err != nil {
		return snap, err
	}

	cores, ok := p.sysctlUint32("hw.availcpu")
	if !ok || cores < 1 {
		cores, _ = p.sysctlUint32("hw.ncpu")
	}
	if cores < 1 {
		cores = 1
	}
	snap.Cores = uint64(cores)

	if v, ok := p.sysctlUint32("hw.logicalcpu"); ok {
		snap.LogicalProcessors = uint64(v)
	}
	if v, ok := p.sysctlUint32("hw.physicalcpu"); ok {
		snap.PhysicalProcessors = uint64(v)
	}

	caches := []struct {
		name string
		dst  *uint64
	}{
		{"hw.l1dcachesize", &snap.L1DCacheKiB},
		{"hw.l1icachesize", &snap.L1ICacheKiB},
		{"hw.l2cachesize", &snap.L2CacheKiB},
		{"hw.l3cachesize", &snap.L3CacheKiB},
	}
	for _, c := range caches {
		if v, ok := p.sysctlUint64(c.name); ok {
			*c.dst = v / 1024
		}
	}

	// Apple silicon does not publish hw.cpufrequency.
	if v, ok := p.sysctlUint64("hw.cpufrequency"); ok {
		snap.ClockSpeedHz = v
	}

	snap.ByteOrder = models.ByteOrderUnknown
	if v, ok := p.sysctlUint32("hw.byteorder"); ok {
		snap.ByteOrder = byteOrderLabel(v)
	}

	if v, ok := p.sysctlUint32("hw.cpufamily"); ok {
		snap.Family = strconv.FormatUint(uint64(v), 10)
	}
	if v, ok := p.sysctlUint32("hw.cputype"); ok {
		snap.Type = strconv.FormatUint(uint64(v), 10)
	}
	snap.Vendor = p.sysctlString("machdep.cpu.vendor")
	snap.ModelName = p.sysctlString("machdep.cpu.brand_string")
	if snap.ModelName == "" {
		snap.ModelName = p.sysctlString("hw.model")
	}
	snap.Architecture = p.sysctlString("hw.machine")
	return snap, nil
}

// Memory combines hw.memsize, the VM page statistics and vm.swapusage.
// A failing source leaves the fields gathered so far in place.
func (p *DarwinProvider) Memory(ctx context.Context) (models.MemorySnapshot, error) {
	var snap models.MemorySnapshot

	total, ok := p.sysctlUint64("hw.memsize")
	if !ok {
		return snap, ctx.Err()
	}
	snap.Total = total

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return snap, ctxErr
		}
		p.logger.Debug("Failed to read VM statistics", zap.Error(err))
		return snap, nil
	}
	snap.Free = vm.Free + vm.Inactive
	snap.Used = saturatingSub(snap.Total, snap.Free)
	snap.Cached = vm.Inactive
	snap.Available = vm.Available

	raw, err := unix.SysctlRaw("vm.swapusage")
	if err != nil {
		p.logger.Debug("sysctl failed", zap.String("name", "vm.swapusage"), zap.Error(err))
		return snap, nil
	}
	if swap, ok := parseSwapUsage(raw); ok {
		snap.SwapTotal = swap.Total
		snap.SwapUsed = swap.Used
		snap.SwapFree = swap.Avail
	}
	return snap, nil
}

// Disks enumerates mounts with getfsstat(2), falling back to gopsutil.
func (p *DarwinProvider) Disks(ctx context.Context) ([]models.DiskEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mounts, err := getfsstatMounts()
	if err != nil {
		p.logger.Debug("getfsstat failed, falling back to partition list", zap.Error(err))
		parts, err := disk.PartitionsWithContext(ctx, true)
		if err != nil {
			p.logger.Debug("Failed to list partitions", zap.Error(err))
			return nil, nil
		}
		for _, part := range parts {
			mounts = append(mounts, mountEntry{Device: part.Device, MountPoint: part.Mountpoint, FSType: part.Fstype})
		}
	}

	return collectDisks(mounts, p.filter, statfsDarwin, func(m mountEntry, err error) {
		p.logger.Debug("statfs failed, skipping mount",
			zap.String("mount", m.MountPoint),
			zap.String("fstype", m.FSType),
			zap.Error(err))
	}), nil
}

func getfsstatMounts() ([]mountEntry, error) {
	n, err := unix.Getfsstat(nil, unix.MNT_NOWAIT)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]unix.Statfs_t, n)
	n, err = unix.Getfsstat(buf, unix.MNT_NOWAIT)
	if err != nil {
		return nil, err
	}
	mounts := make([]mountEntry, 0, n)
	for _, st := range buf[:n] {
		mounts = append(mounts, mountEntry{
			Device:     unix.ByteSliceToString(st.Mntfromname[:]),
			MountPoint: unix.ByteSliceToString(st.Mntonname[:]),
			FSType:     unix.ByteSliceToString(st.Fstypename[:]),
		})
	}
	return mounts, nil
}

func statfsDarwin(path string) (fsStats, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return fsStats{}, err
	}
	return fsStats{
		BlockSize:   uint64(st.Bsize),
		Blocks:      st.Blocks,
		BlocksFree:  st.Bfree,
		BlocksAvail: st.Bavail,
		Files:       st.Files,
		FilesFree:   st.Ffree,
	}, nil
}

// Network reads the interface counters from one NET_RT_IFLIST2 routing
// table dump and attaches IPv4 addresses by interface name.
func (p *DarwinProvider) Network(ctx context.Context) ([]models.NetworkInterfaceEntry, error) {
	addrs, err := listIPv4Addrs(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		p.logger.Debug("Failed to list interface addresses", zap.Error(err))
		return nil, nil
	}

	buf, err := routeTable()
	if err != nil {
		p.logger.Debug("net.route sysctl failed", zap.Error(err))
		return nil, nil
	}
	if len(buf) == 0 {
		return nil, nil
	}
	return joinRouteCounters(parseIfList2(buf), addrs), nil
}

// routeTable sizes and reads the interface list. SysctlRaw returns the
// length of the second call, and ENOMEM means the table grew in between.
func routeTable() ([]byte, error) {
	var err error
	for i := 0; i < routeTableRetries; i++ {
		var buf []byte
		buf, err = unix.SysctlRaw("net.route", 0, 0, unix.NET_RT_IFLIST2, 0)
		if !errors.Is(err, unix.ENOMEM) {
			return buf, err
		}
	}
	return nil, err
}

// ProcessStatus buckets kern.proc.all by p_stat and sums thread counts.
func (p *DarwinProvider) ProcessStatus(ctx context.Context) (models.ProcessStatusSummary, error) {
	summary, _, err := p.scanProcesses(ctx, false)
	return summary, err
}

// scanProcesses walks the kernel process table. Per-process thread and
// descriptor queries that fail contribute 0. Descriptor counts are only
// gathered when withFDs is set.
func (p *DarwinProvider) scanProcesses(ctx context.Context, withFDs bool) (models.ProcessStatusSummary, uint64, error) {
	var (
		summary models.ProcessStatusSummary
		fds     uint64
	)

	procs, err := unix.SysctlKinfoProcSlice("kern.proc.all")
	if err != nil {
		p.logger.Debug("sysctl failed", zap.String("name", "kern.proc.all"), zap.Error(err))
		return summary, 0, nil
	}

	for i := range procs {
		if err := ctx.Err(); err != nil {
			return summary, fds, err
		}
		kp := &procs[i].Proc
		summary.Total++
		switch kp.P_stat {
		case sRun:
			summary.Running++
		case sSlp:
			summary.Sleeping++
		case sStop:
			summary.Stopped++
		case sZomb:
			summary.Zombie++
		}

		proc, err := process.NewProcessWithContext(ctx, kp.P_pid)
		if err != nil {
			continue
		}
		if n, err := proc.NumThreadsWithContext(ctx); err == nil && n > 0 {
			summary.Threads += uint64(n)
		}
		if withFDs {
			if n, err := proc.NumFDsWithContext(ctx); err == nil && n > 0 {
				fds += uint64(n)
			}
		}
	}
	return summary, fds, nil
}

// OS combines sw_vers, uname and the process table.
func (p *DarwinProvider) OS(ctx context.Context) (models.OSSnapshot, error) {
	var snap models.OSSnapshot

	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		p.logger.Debug("uname failed", zap.Error(err))
	}
	sysname := unix.ByteSliceToString(uts.Sysname[:])
	snap.Architecture = unix.ByteSliceToString(uts.Machine[:])

	snap.Name = swVers(ctx, "-productName")
	if snap.Name == "" {
		snap.Name = sysname
	}
	if version := swVers(ctx, "-productVersion"); version != "" {
		snap.Version = version
	} else if sysname != "" {
		snap.Version = sysname + " " + unix.ByteSliceToString(uts.Release[:])
	}

	if hostName, err := os.Hostname(); err == nil {
		snap.HostName = hostName
	} else {
		p.logger.Debug("Failed to read host name", zap.Error(err))
	}

	// kern.num_files is the system-wide open file count; summing per-process
	// descriptor lists is the fallback.
	numFiles, hasNumFiles := p.sysctlUint32("kern.num_files")
	summary, fds, err := p.scanProcesses(ctx, !hasNumFiles)
	if err != nil {
		return snap, err
	}
	snap.ProcessCount = summary.Total
	snap.ThreadCount = summary.Threads
	snap.HandleCount = fds
	if hasNumFiles {
		snap.HandleCount = uint64(numFiles)
	}

	if up, err := host.UptimeWithContext(ctx); err == nil {
		snap.UptimeSeconds = up
	} else {
		p.logger.Debug("Failed to read uptime", zap.Error(err))
	}
	return snap, nil
}

func swVers(ctx context.Context, flag string) string {
	out, err := exec.CommandContext(ctx, "sw_vers", flag).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
