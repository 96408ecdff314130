package platform

import (
	"strings"

	"github.com/Guliveer/sysstats/internal/filter"
	"github.com/Guliveer/sysstats/internal/models"
)

// mountEntry is one line of a mount table.
type mountEntry struct {
	Device     string
	MountPoint string
	FSType     string
}

// fsStats carries the statfs(2) counters needed for a DiskEntry. Block
// counts are in units of BlockSize.
type fsStats struct {
	BlockSize   uint64
	Blocks      uint64
	BlocksFree  uint64
	BlocksAvail uint64
	Files       uint64
	FilesFree   uint64
}

// parseMountTable parses fstab-formatted content (/etc/mtab, /proc/mounts).
// Octal escapes such as \040 in the device and mount point are decoded.
func parseMountTable(content string) []mountEntry {
	var entries []mountEntry
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		entries = append(entries, mountEntry{
			Device:     unescapeOctal(fields[0]),
			MountPoint: unescapeOctal(fields[1]),
			FSType:     fields[2],
		})
	}
	return entries
}

// unescapeOctal decodes the \ooo sequences the kernel uses for whitespace
// and backslashes in mount table fields.
func unescapeOctal(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && isOctal(s[i+1]) && isOctal(s[i+2]) && isOctal(s[i+3]) {
			v := (s[i+1]-'0')<<6 | (s[i+2]-'0')<<3 | (s[i+3] - '0')
			b.WriteByte(v)
			i += 3
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isOctal(c byte) bool { return c >= '0' && c <= '7' }

// diskEntry computes the capacity and inode columns for a mount. ok is
// false when the filesystem reports zero total space.
func diskEntry(m mountEntry, st fsStats) (models.DiskEntry, bool) {
	total := st.Blocks * st.BlockSize
	if total == 0 {
		return models.DiskEntry{}, false
	}
	return models.DiskEntry{
		MountPoint:     m.MountPoint,
		FileSystem:     m.Device,
		FileSystemType: m.FSType,
		Total:          total,
		Used:           saturatingSub(st.Blocks, st.BlocksFree) * st.BlockSize,
		Free:           st.BlocksAvail * st.BlockSize,
		InodesTotal:    st.Files,
		InodesUsed:     saturatingSub(st.Files, st.FilesFree),
		InodesFree:     st.FilesFree,
	}, true
}

// collectDisks filters mounts before calling statfs on the survivors and
// keeps mount table order. A failing statfs skips only that mount.
func collectDisks(mounts []mountEntry, f *filter.Filter, statfs func(path string) (fsStats, error), skipped func(m mountEntry, err error)) []models.DiskEntry {
	var entries []models.DiskEntry
	for _, m := range mounts {
		if f.Ignore(m.FSType, m.MountPoint) {
			continue
		}
		st, err := statfs(m.MountPoint)
		if err != nil {
			if skipped != nil {
				skipped(m, err)
			}
			continue
		}
		if e, ok := diskEntry(m, st); ok {
			entries = append(entries, e)
		}
	}
	return entries
}
