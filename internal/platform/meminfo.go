package platform

import (
	"strconv"
	"strings"

	"github.com/Guliveer/sysstats/internal/models"
	"github.com/Guliveer/sysstats/internal/textkv"
)

// parseMeminfo converts /proc/meminfo content into a snapshot. Values are
// reported in kB and converted to bytes. All derived fields come from the
// counters of this single read.
func parseMeminfo(content string) models.MemorySnapshot {
	var (
		snap         models.MemorySnapshot
		hasAvailable bool
	)

	for _, line := range strings.Split(content, "\n") {
		key, value, _, ok := textkv.SplitFields(line)
		if !ok {
			continue
		}
		kb, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			continue
		}
		bytes := kb * 1024

		switch key {
		case "MemTotal":
			snap.Total = bytes
		case "MemFree":
			snap.Free = bytes
		case "MemAvailable":
			snap.Available = bytes
			hasAvailable = true
		case "Buffers":
			snap.Buffers = bytes
		case "Cached":
			snap.Cached = bytes
		case "SwapTotal":
			snap.SwapTotal = bytes
		case "SwapFree":
			snap.SwapFree = bytes
		}
	}

	if !hasAvailable {
		snap.Available = snap.Free + snap.Buffers + snap.Cached
	}
	snap.Used = saturatingSub(snap.Total, snap.Free)
	snap.SwapUsed = saturatingSub(snap.SwapTotal, snap.SwapFree)
	return snap
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
