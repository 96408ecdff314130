package platform

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/sysstats/internal/filter"
	"github.com/Guliveer/sysstats/internal/models"
)

const x86CPUInfo = `processor	: 0
vendor_id	: GenuineIntel
cpu family	: 6
model		: 85
model name	: Intel(R) Xeon(R) Gold 6230 CPU @ 2.10GHz
stepping	: 7
cpu MHz		: 2100.000
cache size	: 28160 KB
physical id	: 0
cpu cores	: 2

processor	: 1
vendor_id	: GenuineIntel
cpu family	: 6
model		: 85
model name	: Intel(R) Xeon(R) Gold 6230 CPU @ 2.10GHz
cpu MHz		: 2300.000
physical id	: 0
cpu cores	: 2

processor	: 2
vendor_id	: GenuineIntel
cpu family	: 6
model		: 85
model name	: Intel(R) Xeon(R) Gold 6230 CPU @ 2.10GHz
cpu MHz		: 2100.000
physical id	: 1
cpu cores	: 2
`

const armCPUInfo = `processor	: 0
BogoMIPS	: 48.00
Features	: fp asimd evtstrm aes pmull sha1 sha2 crc32 cpuid
CPU implementer	: 0x41
CPU architecture: 8
CPU variant	: 0x3
CPU part	: 0xd0c
CPU revision	: 1

processor	: 1
BogoMIPS	: 48.00
CPU implementer	: 0x41
CPU architecture: 8
CPU variant	: 0x3
CPU part	: 0xd0c
CPU revision	: 1
`

func TestParseCPUInfoX86(t *testing.T) {
	var snap models.CPUSnapshot
	parseCPUInfo(x86CPUInfo, &snap)

	assert.Equal(t, "Intel(R) Xeon(R) Gold 6230 CPU @ 2.10GHz", snap.ModelName)
	assert.Equal(t, "GenuineIntel", snap.Vendor)
	assert.Equal(t, "6", snap.Family)
	assert.Equal(t, "85", snap.Type)
	assert.Equal(t, uint64(3), snap.LogicalProcessors)
	assert.Equal(t, uint64(2), snap.PhysicalProcessors)
	assert.Equal(t, uint64(2), snap.Cores)
	assert.Equal(t, uint64(2_100_000_000), snap.ClockSpeedHz)
}

func TestParseCPUInfoARM(t *testing.T) {
	var snap models.CPUSnapshot
	parseCPUInfo(armCPUInfo, &snap)

	assert.Equal(t, uint64(2), snap.LogicalProcessors)
	assert.Equal(t, uint64(1), snap.PhysicalProcessors)
	assert.Equal(t, uint64(2), snap.Cores)
	assert.Equal(t, "ARM", snap.Vendor)
	assert.Equal(t, "ARM CPU architecture 8 variant 0x3 part 0xd0c", snap.ModelName)
	assert.Zero(t, snap.ClockSpeedHz)
}

func TestParseCPUInfoUnknownImplementer(t *testing.T) {
	var snap models.CPUSnapshot
	parseCPUInfo("processor\t: 0\nCPU implementer\t: 0x99\nCPU part\t: 0x001\n", &snap)

	assert.Empty(t, snap.Vendor)
	assert.Equal(t, "implementer 0x99 CPU part 0x001", snap.ModelName)
}

func TestParseCPUInfoEmpty(t *testing.T) {
	var snap models.CPUSnapshot
	parseCPUInfo("", &snap)
	assert.Equal(t, models.CPUSnapshot{}, snap)
}

func TestParseCacheSize(t *testing.T) {
	tests := []struct {
		content string
		want    uint64
	}{
		{"32K\n", 32},
		{"1024K", 1024},
		{"32768K\n", 32768},
		{"  48K\n", 48},
		{"", 0},
		{"K", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCacheSize(tt.content), "%q", tt.content)
	}
}

func TestByteOrderLabel(t *testing.T) {
	assert.Equal(t, models.ByteOrderLittle, byteOrderLabel(byteOrderLittle))
	assert.Equal(t, models.ByteOrderBig, byteOrderLabel(byteOrderBig))
	assert.Equal(t, models.ByteOrderUnknown, byteOrderLabel(0))
	assert.Contains(t, []string{models.ByteOrderLittle, models.ByteOrderBig}, nativeByteOrder())
}

func TestParseMeminfoDerivesAvailable(t *testing.T) {
	content := `MemTotal:       16384000 kB
MemFree:         4096000 kB
Cached:          2048000 kB
SwapTotal:       2048000 kB
SwapFree:         512000 kB
`
	snap := parseMeminfo(content)

	assert.Equal(t, uint64(16384000*1024), snap.Total)
	assert.Equal(t, uint64(4096000*1024), snap.Free)
	assert.Equal(t, uint64(2048000*1024), snap.Cached)
	assert.Zero(t, snap.Buffers)
	assert.Equal(t, snap.Total-snap.Free, snap.Used)
	assert.Equal(t, snap.Free+snap.Buffers+snap.Cached, snap.Available)
	assert.Equal(t, uint64(2048000*1024), snap.SwapTotal)
	assert.Equal(t, uint64(512000*1024), snap.SwapFree)
	assert.Equal(t, snap.SwapTotal-snap.SwapFree, snap.SwapUsed)
}

func TestParseMeminfoReportedAvailable(t *testing.T) {
	content := `MemTotal:        8000000 kB
MemFree:         1000000 kB
MemAvailable:    5000000 kB
Buffers:          200000 kB
Cached:          3000000 kB
HugePages_Total:       0
SwapTotal:             0 kB
SwapFree:              0 kB
`
	snap := parseMeminfo(content)

	assert.Equal(t, uint64(5000000*1024), snap.Available)
	assert.Equal(t, uint64(200000*1024), snap.Buffers)
	assert.Equal(t, uint64(7000000*1024), snap.Used)
	assert.Zero(t, snap.SwapUsed)
}

func TestParseMeminfoSaturates(t *testing.T) {
	snap := parseMeminfo("MemTotal: 10 kB\nMemFree: 20 kB\nSwapFree: 5 kB\n")
	assert.Zero(t, snap.Used)
	assert.Zero(t, snap.SwapUsed)
}

func TestParseProcStat(t *testing.T) {
	line := "1234 (my (weird) proc) S 1 1234 1234 0 -1 4194560 120 0 0 0 3 1 0 0 20 0 7 0 5000 1000000 200 18446744073709551615"
	st, ok := parseProcStat(line)
	require.True(t, ok)
	assert.Equal(t, 1234, st.PID)
	assert.Equal(t, "my (weird) proc", st.Comm)
	assert.Equal(t, byte('S'), st.State)
	assert.Equal(t, uint64(7), st.Threads)
}

func TestParseProcStatRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"no parens":      "1 bash S 0 1 1 0 -1 0 0 0 0 0 0 0 0 0 20 0 1",
		"no pid":         "(bash) S 0 1 1 0 -1 0 0 0 0 0 0 0 0 0 20 0 1",
		"bad pid":        "x (bash) S 0 1 1 0 -1 0 0 0 0 0 0 0 0 0 20 0 1",
		"too short":      "1 (bash) S 0 1 1",
		"long state":     "1 (bash) SS 0 1 1 0 -1 0 0 0 0 0 0 0 0 0 20 0 1",
		"bad threads":    "1 (bash) S 0 1 1 0 -1 0 0 0 0 0 0 0 0 0 20 0 x",
		"negative":       "1 (bash) S 0 1 1 0 -1 0 0 0 0 0 0 0 0 0 20 0 -3",
		"close before (": "1 )bash( S 0 1 1 0 -1 0 0 0 0 0 0 0 0 0 20 0 1",
	}
	for name, line := range tests {
		t.Run(name, func(t *testing.T) {
			_, ok := parseProcStat(line)
			assert.False(t, ok)
		})
	}
}

func TestProcessStateBucketsNeverExceedTotal(t *testing.T) {
	var summary models.ProcessStatusSummary
	for _, state := range []byte("RSDTZIXWKPtx?") {
		addProcessState(&summary, state)
		assert.LessOrEqual(t, summary.Classified(), summary.Total)
	}
	assert.Equal(t, uint64(13), summary.Total)
	assert.Equal(t, uint64(1), summary.Running)
	assert.Equal(t, uint64(2), summary.Sleeping)
	assert.Equal(t, uint64(1), summary.Stopped)
	assert.Equal(t, uint64(1), summary.Zombie)
}

func TestParseMountTable(t *testing.T) {
	content := `# comment
/dev/sda1 / ext4 rw,relatime 0 0
proc /proc proc rw,nosuid,nodev,noexec,relatime 0 0
/dev/sdb1 /mnt/my\040disk vfat rw 0 0

short line
`
	entries := parseMountTable(content)
	require.Len(t, entries, 3)
	assert.Equal(t, mountEntry{Device: "/dev/sda1", MountPoint: "/", FSType: "ext4"}, entries[0])
	assert.Equal(t, mountEntry{Device: "proc", MountPoint: "/proc", FSType: "proc"}, entries[1])
	assert.Equal(t, "/mnt/my disk", entries[2].MountPoint)
}

func TestUnescapeOctal(t *testing.T) {
	tests := map[string]string{
		`/plain`:         "/plain",
		`/a\040b`:        "/a b",
		`/tab\011x`:      "/tab\tx",
		`/back\134slash`: `/back\slash`,
		`/short\04`:      `/short\04`,
		`/not\089`:       `/not\089`,
		`\`:              `\`,
	}
	for in, want := range tests {
		assert.Equal(t, want, unescapeOctal(in), in)
	}
}

func TestDiskEntry(t *testing.T) {
	m := mountEntry{Device: "/dev/sda1", MountPoint: "/", FSType: "ext4"}
	e, ok := diskEntry(m, fsStats{
		BlockSize: 4096, Blocks: 1000000, BlocksFree: 200000, BlocksAvail: 150000,
		Files: 65536, FilesFree: 60000,
	})
	require.True(t, ok)
	assert.Equal(t, uint64(4096000000), e.Total)
	assert.Equal(t, uint64(3276800000), e.Used)
	assert.Equal(t, uint64(614400000), e.Free)
	assert.Equal(t, uint64(65536), e.InodesTotal)
	assert.Equal(t, uint64(5536), e.InodesUsed)
	assert.Equal(t, uint64(60000), e.InodesFree)
	assert.Equal(t, "/dev/sda1", e.FileSystem)

	_, ok = diskEntry(m, fsStats{BlockSize: 4096})
	assert.False(t, ok)
}

func TestCollectDisksFiltersBeforeStatfs(t *testing.T) {
	mounts := []mountEntry{
		{Device: "proc", MountPoint: "/proc", FSType: "proc"},
		{Device: "/dev/sda1", MountPoint: "/", FSType: "ext4"},
		{Device: "sysfs", MountPoint: "/sys", FSType: "sysfs"},
		{Device: "/dev/sdb1", MountPoint: "/data", FSType: "xfs"},
		{Device: "/dev/sdc1", MountPoint: "/broken", FSType: "xfs"},
		{Device: "none", MountPoint: "/empty", FSType: "zfs"},
	}
	var called []string
	statfs := func(path string) (fsStats, error) {
		called = append(called, path)
		switch path {
		case "/broken":
			return fsStats{}, errors.New("permission denied")
		case "/empty":
			return fsStats{BlockSize: 4096}, nil
		default:
			return fsStats{BlockSize: 4096, Blocks: 1000000, BlocksFree: 200000, BlocksAvail: 200000}, nil
		}
	}
	var skipped []string
	entries := collectDisks(mounts, filter.Default(), statfs, func(m mountEntry, _ error) {
		skipped = append(skipped, m.MountPoint)
	})

	assert.Equal(t, []string{"/", "/data", "/broken", "/empty"}, called)
	assert.Equal(t, []string{"/broken"}, skipped)
	require.Len(t, entries, 2)
	assert.Equal(t, "/", entries[0].MountPoint)
	assert.Equal(t, "/data", entries[1].MountPoint)
	for _, e := range entries {
		assert.NotZero(t, e.Total)
	}
}

// buildIfInfo2 encodes an RTM_IFINFO2 record followed by its sockaddr_dl.
func buildIfInfo2(c ifCounters) []byte {
	sdlLen := sdlDataOff + len(c.Name)
	msg := make([]byte, ifMsghdr2Len+sdlLen)
	order := binary.NativeEndian
	order.PutUint16(msg[ifmMsglenOff:], uint16(len(msg)))
	msg[ifmTypeOff] = rtmIfInfo2
	order.PutUint64(msg[ifiIPacketsOff:], c.RxPackets)
	order.PutUint64(msg[ifiIErrorsOff:], c.RxErrors)
	order.PutUint64(msg[ifiOPacketsOff:], c.TxPackets)
	order.PutUint64(msg[ifiOErrorsOff:], c.TxErrors)
	order.PutUint64(msg[ifiIBytesOff:], c.RxBytes)
	order.PutUint64(msg[ifiOBytesOff:], c.TxBytes)
	order.PutUint64(msg[ifiIQDropsOff:], c.RxDropped)
	sdl := msg[ifMsghdr2Len:]
	sdl[0] = byte(sdlLen)
	sdl[sdlNlenOff] = byte(len(c.Name))
	copy(sdl[sdlDataOff:], c.Name)
	return msg
}

func TestParseIfList2(t *testing.T) {
	en0 := ifCounters{Name: "en0", RxBytes: 1000, RxPackets: 10, RxErrors: 1, RxDropped: 2, TxBytes: 500, TxPackets: 5, TxErrors: 3}
	lo0 := ifCounters{Name: "lo0", RxBytes: 42, TxBytes: 42}

	other := make([]byte, 20)
	binary.NativeEndian.PutUint16(other, uint16(len(other)))
	other[ifmTypeOff] = 0x13

	var buf []byte
	buf = append(buf, buildIfInfo2(lo0)...)
	buf = append(buf, other...)
	buf = append(buf, buildIfInfo2(en0)...)
	// A truncated trailing record is ignored.
	buf = append(buf, buildIfInfo2(en0)[:40]...)

	got := parseIfList2(buf)
	assert.Equal(t, []ifCounters{lo0, en0}, got)

	assert.Empty(t, parseIfList2(nil))
	assert.Empty(t, parseIfList2(make([]byte, 8)))
}

func TestParseSwapUsage(t *testing.T) {
	buf := make([]byte, 32)
	binary.NativeEndian.PutUint64(buf[0:], 2<<30)
	binary.NativeEndian.PutUint64(buf[8:], 1<<30)
	binary.NativeEndian.PutUint64(buf[16:], 1<<30)

	swap, ok := parseSwapUsage(buf)
	require.True(t, ok)
	assert.Equal(t, swapUsage{Total: 2 << 30, Avail: 1 << 30, Used: 1 << 30}, swap)

	_, ok = parseSwapUsage(buf[:10])
	assert.False(t, ok)
}

func TestIPv4String(t *testing.T) {
	tests := map[string]string{
		"192.168.1.10/24":    "192.168.1.10",
		"10.0.0.1":           "10.0.0.1",
		"fe80::1/64":         "",
		"::ffff:10.0.0.1/96": "",
		"garbage":            "",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ipv4String(in), in)
	}
}

func TestJoinRouteCounters(t *testing.T) {
	records := []ifCounters{
		{Name: "lo0", RxBytes: 1},
		{Name: "en0", RxBytes: 2, RxDropped: 9},
		{Name: "utun0", RxBytes: 3},
	}
	addrs := []ifAddr{
		{Name: "en0", IP: "192.168.1.2"},
		{Name: "lo0", IP: "127.0.0.1"},
		{Name: "en0", IP: "10.0.0.2"},
	}
	entries := joinRouteCounters(records, addrs)
	require.Len(t, entries, 3)
	assert.Equal(t, "lo0", entries[0].Name)
	assert.Equal(t, "en0", entries[1].Name)
	assert.Equal(t, "192.168.1.2", entries[1].IPAddress)
	assert.Equal(t, "10.0.0.2", entries[2].IPAddress)
	assert.Equal(t, uint64(9), entries[2].RxDropped)
	assert.Zero(t, entries[2].TxDropped)
	assert.Zero(t, entries[2].LinkSpeedMbps)
}

func TestOSReleaseName(t *testing.T) {
	assert.Equal(t, "Ubuntu 22.04.3 LTS", osReleaseName("NAME=\"Ubuntu\"\nPRETTY_NAME=\"Ubuntu 22.04.3 LTS\"\n"))
	assert.Equal(t, "Alpine Linux", osReleaseName("NAME=\"Alpine Linux\"\nID=alpine\n"))
	assert.Empty(t, osReleaseName("# nothing\n"))
}

func TestParseFileNrAndUptime(t *testing.T) {
	n, ok := parseFileNr("9472\t0\t9223372036854775807\n")
	require.True(t, ok)
	assert.Equal(t, uint64(9472), n)
	_, ok = parseFileNr("")
	assert.False(t, ok)

	secs, ok := parseUptime("35064.71 138263.61\n")
	require.True(t, ok)
	assert.Equal(t, uint64(35064), secs)
	_, ok = parseUptime("abc")
	assert.False(t, ok)
}

func TestIsPID(t *testing.T) {
	assert.True(t, isPID("1"))
	assert.True(t, isPID("4242"))
	assert.False(t, isPID(""))
	assert.False(t, isPID("self"))
	assert.False(t, isPID("12a"))
}
