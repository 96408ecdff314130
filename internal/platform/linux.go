//go:build linux

package platform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/Guliveer/sysstats/internal/filter"
	"github.com/Guliveer/sysstats/internal/models"
	"github.com/Guliveer/sysstats/internal/textkv"
)

// LinuxProvider reads procfs, sysfs and /etc. All roots are configurable
// so a host filesystem mounted into a container can be inspected.
type LinuxProvider struct {
	procRoot   string
	sysRoot    string
	etcRoot    string
	mountTable string
	filter     *filter.Filter
	logger     *zap.Logger

	statfs func(path string) (fsStats, error)
	addrs  func(ctx context.Context) ([]ifAddr, error)
	uname  func(buf *unix.Utsname) error
}

func newProvider(opts Options, logger *zap.Logger) Provider {
	return NewLinuxProvider(opts, logger)
}

// NewLinuxProvider creates a provider reading from the roots in opts.
func NewLinuxProvider(opts Options, logger *zap.Logger) *LinuxProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &LinuxProvider{
		procRoot:   orDefault(opts.ProcRoot, "/proc"),
		sysRoot:    orDefault(opts.SysRoot, "/sys"),
		etcRoot:    orDefault(opts.EtcRoot, "/etc"),
		mountTable: opts.MountTable,
		filter:     opts.Filter,
		logger:     logger,
		statfs:     statfsLinux,
		addrs:      listIPv4Addrs,
		uname:      unix.Uname,
	}
	if p.filter == nil {
		p.filter = filter.Default()
	}
	if p.mountTable == "" {
		p.mountTable = filepath.Join(p.etcRoot, "mtab")
	}
	return p
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Name returns the platform name.
func (p *LinuxProvider) Name() string { return "linux" }

func (p *LinuxProvider) readFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.logger.Debug("Failed to read file", zap.String("path", path), zap.Error(err))
		return "", false
	}
	return string(data), true
}

func (p *LinuxProvider) utsname() (unix.Utsname, bool) {
	var uts unix.Utsname
	if err := p.uname(&uts); err != nil {
		p.logger.Debug("uname failed", zap.Error(err))
		return uts, false
	}
	return uts, true
}

// CPU reads the architecture from uname, cache sizes from sysfs and the
// remaining identity fields from /proc/cpuinfo.
func (p *LinuxProvider) CPU(ctx context.Context) (models.CPUSnapshot, error) {
	snap := models.CPUSnapshot{ByteOrder: nativeByteOrder()}
	if err := ctx.Err(); err != nil {
		return snap, err
	}

	if uts, ok := p.utsname(); ok {
		snap.Architecture = unix.ByteSliceToString(uts.Machine[:])
	}

	caches := []*uint64{&snap.L1DCacheKiB, &snap.L1ICacheKiB, &snap.L2CacheKiB, &snap.L3CacheKiB}
	for i, dst := range caches {
		path := filepath.Join(p.sysRoot, "devices", "system", "cpu", "cpu0", "cache", fmt.Sprintf("index%d", i), "size")
		if content, ok := p.readFile(path); ok {
			*dst = parseCacheSize(content)
		}
	}

	if content, ok := p.readFile(filepath.Join(p.procRoot, "cpuinfo")); ok {
		parseCPUInfo(content, &snap)
	}
	return snap, nil
}

// Memory parses /proc/meminfo. An unreadable file yields an empty snapshot.
func (p *LinuxProvider) Memory(ctx context.Context) (models.MemorySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.MemorySnapshot{}, err
	}
	content, ok := p.readFile(filepath.Join(p.procRoot, "meminfo"))
	if !ok {
		return models.MemorySnapshot{}, nil
	}
	return parseMeminfo(content), nil
}

// Disks reads the mount table, falling back to /proc/mounts.
func (p *LinuxProvider) Disks(ctx context.Context) ([]models.DiskEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, ok := p.readFile(p.mountTable)
	if !ok {
		content, ok = p.readFile(filepath.Join(p.procRoot, "mounts"))
	}
	if !ok {
		return nil, nil
	}

	return collectDisks(parseMountTable(content), p.filter, p.statfs, func(m mountEntry, err error) {
		p.logger.Debug("statfs failed, skipping mount",
			zap.String("mount", m.MountPoint),
			zap.String("fstype", m.FSType),
			zap.Error(err))
	}), nil
}

func statfsLinux(path string) (fsStats, error) {
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

// Network joins the IPv4 address list with the sysfs statistics of each
// interface.
func (p *LinuxProvider) Network(ctx context.Context) ([]models.NetworkInterfaceEntry, error) {
	addrs, err := p.addrs(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		p.logger.Debug("Failed to list interface addresses", zap.Error(err))
		return nil, nil
	}

	entries := make([]models.NetworkInterfaceEntry, 0, len(addrs))
	for _, a := range addrs {
		dir := filepath.Join(p.sysRoot, "class", "net", a.Name)
		stat := func(name string) uint64 {
			return p.readCounter(filepath.Join(dir, "statistics", name))
		}
		entries = append(entries, models.NetworkInterfaceEntry{
			Name:          a.Name,
			IPAddress:     a.IP,
			TxBytes:       stat("tx_bytes"),
			TxPackets:     stat("tx_packets"),
			TxErrors:      stat("tx_errors"),
			TxDropped:     stat("tx_dropped"),
			RxBytes:       stat("rx_bytes"),
			RxPackets:     stat("rx_packets"),
			RxErrors:      stat("rx_errors"),
			RxDropped:     stat("rx_dropped"),
			LinkSpeedMbps: p.readCounter(filepath.Join(dir, "speed")),
		})
	}
	return entries, nil
}

// readCounter reads a single integer file. Missing, malformed and negative
// values (speed is -1 on links that are down) read as 0.
func (p *LinuxProvider) readCounter(path string) uint64 {
	content, ok := p.readFile(path)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(textkv.Trim(content), 10, 64)
	if err != nil {
		p.logger.Debug("Malformed counter", zap.String("path", path), zap.Error(err))
		return 0
	}
	if n < 0 {
		return 0
	}
	return uint64(n)
}

// ProcessStatus scans /proc/<pid>/stat for every process.
func (p *LinuxProvider) ProcessStatus(ctx context.Context) (models.ProcessStatusSummary, error) {
	return p.scanProcesses(ctx)
}

func (p *LinuxProvider) scanProcesses(ctx context.Context) (models.ProcessStatusSummary, error) {
	var summary models.ProcessStatusSummary

	entries, err := os.ReadDir(p.procRoot)
	if err != nil {
		p.logger.Debug("Failed to read process directory", zap.String("path", p.procRoot), zap.Error(err))
		return summary, nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if !isPID(entry.Name()) {
			continue
		}
		path := filepath.Join(p.procRoot, entry.Name(), "stat")
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, unix.ESRCH) {
				p.logger.Debug("Failed to read process stat", zap.String("path", path), zap.Error(err))
			}
			continue
		}

		st, ok := parseProcStat(textkv.Trim(string(data)))
		if !ok {
			p.logger.Debug("Malformed process stat record", zap.String("path", path))
			summary.Total++
			continue
		}
		addProcessState(&summary, st.State)
		summary.Threads += st.Threads
	}
	return summary, nil
}

// OS combines os-release, uname and the process table.
func (p *LinuxProvider) OS(ctx context.Context) (models.OSSnapshot, error) {
	var snap models.OSSnapshot

	uts, hasUname := p.utsname()
	sysname := unix.ByteSliceToString(uts.Sysname[:])
	if hasUname {
		snap.Version = sysname + " " + unix.ByteSliceToString(uts.Release[:])
		snap.Architecture = unix.ByteSliceToString(uts.Machine[:])
	}

	if content, ok := p.readFile(filepath.Join(p.etcRoot, "os-release")); ok {
		snap.Name = osReleaseName(content)
	}
	if snap.Name == "" {
		snap.Name = sysname
	}

	if host, err := os.Hostname(); err == nil {
		snap.HostName = host
	} else {
		p.logger.Debug("Failed to read host name", zap.Error(err))
		snap.HostName = unix.ByteSliceToString(uts.Nodename[:])
	}

	summary, err := p.scanProcesses(ctx)
	if err != nil {
		return snap, err
	}
	snap.ProcessCount = summary.Total
	snap.ThreadCount = summary.Threads

	snap.HandleCount = p.handleCount(ctx)
	snap.UptimeSeconds = p.uptime()
	return snap, nil
}

// handleCount prefers the kernel-wide allocated handle count and falls back
// to counting /proc/<pid>/fd entries, which only covers visible processes.
func (p *LinuxProvider) handleCount(ctx context.Context) uint64 {
	if content, ok := p.readFile(filepath.Join(p.procRoot, "sys", "fs", "file-nr")); ok {
		if n, ok := parseFileNr(content); ok {
			return n
		}
	}

	entries, err := os.ReadDir(p.procRoot)
	if err != nil {
		return 0
	}
	var total uint64
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !isPID(entry.Name()) {
			continue
		}
		fds, err := os.ReadDir(filepath.Join(p.procRoot, entry.Name(), "fd"))
		if err != nil {
			continue
		}
		total += uint64(len(fds))
	}
	return total
}

func (p *LinuxProvider) uptime() uint64 {
	if content, ok := p.readFile(filepath.Join(p.procRoot, "uptime")); ok {
		if secs, ok := parseUptime(content); ok {
			return secs
		}
	}
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		p.logger.Debug("sysinfo failed", zap.Error(err))
		return 0
	}
	if info.Uptime < 0 {
		return 0
	}
	return uint64(info.Uptime)
}
