package platform

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/Guliveer/sysstats/internal/models"
	"github.com/Guliveer/sysstats/internal/textkv"
)

// armImplementers maps the "CPU implementer" codes of /proc/cpuinfo to vendor names.
var armImplementers = map[string]string{
	"0x41": "ARM",
	"0x42": "Broadcom",
	"0x43": "Cavium",
	"0x46": "Fujitsu",
	"0x48": "HiSilicon",
	"0x4e": "NVIDIA",
	"0x50": "Applied Micro",
	"0x51": "Qualcomm",
	"0x53": "Samsung",
	"0x56": "Marvell",
	"0x61": "Apple",
	"0x69": "Intel",
	"0xc0": "Ampere",
}

// parseCPUInfo fills the identity and topology fields of snap from the
// contents of /proc/cpuinfo. Cache sizes and architecture are left alone.
func parseCPUInfo(content string, snap *models.CPUSnapshot) {
	var (
		mhzRecords    uint64
		processors    uint64
		maxPhysicalID = -1
		implementer   string
		architecture  string
		variant       string
		part          string
	)

	for _, line := range strings.Split(content, "\n") {
		key, value, ok := textkv.Split(line, ':')
		if !ok {
			continue
		}
		switch key {
		case "processor":
			processors++
		case "vendor_id":
			snap.Vendor = value
		case "cpu family":
			snap.Family = value
		case "model":
			if snap.Type == "" {
				snap.Type = value
			}
		case "model name":
			if snap.ModelName == "" {
				snap.ModelName = value
			}
		case "cpu MHz":
			mhzRecords++
			if snap.ClockSpeedHz == 0 {
				if mhz, err := strconv.ParseFloat(value, 64); err == nil && mhz > 0 {
					snap.ClockSpeedHz = uint64(mhz * 1e6)
				}
			}
		case "physical id":
			if id, err := strconv.Atoi(value); err == nil && id > maxPhysicalID {
				maxPhysicalID = id
			}
		case "cpu cores":
			if n, err := strconv.ParseUint(value, 10, 32); err == nil {
				snap.Cores = n
			}
		case "CPU implementer":
			implementer = strings.ToLower(value)
		case "CPU architecture":
			architecture = value
		case "CPU variant":
			variant = value
		case "CPU part":
			part = value
		}
	}

	snap.LogicalProcessors = mhzRecords
	if snap.LogicalProcessors == 0 {
		snap.LogicalProcessors = processors
	}

	switch {
	case maxPhysicalID >= 0:
		snap.PhysicalProcessors = uint64(maxPhysicalID) + 1
	case snap.LogicalProcessors > 0:
		snap.PhysicalProcessors = 1
	}

	if snap.Vendor == "" && implementer != "" {
		snap.Vendor = armImplementers[implementer]
	}
	if snap.ModelName == "" && implementer != "" {
		snap.ModelName = armModelName(implementer, architecture, variant, part)
	}
	if snap.Cores == 0 {
		snap.Cores = snap.LogicalProcessors
	}
}

func armModelName(implementer, architecture, variant, part string) string {
	vendor, ok := armImplementers[implementer]
	if !ok {
		vendor = "implementer " + implementer
	}
	name := fmt.Sprintf("%s CPU", vendor)
	if architecture != "" {
		name += " architecture " + architecture
	}
	if variant != "" {
		name += " variant " + variant
	}
	if part != "" {
		name += " part " + part
	}
	return name
}

// parseCacheSize reads the leading decimal digits of a sysfs cache size
// file such as "32K". The value is already in KiB.
func parseCacheSize(content string) uint64 {
	line, _, _ := strings.Cut(content, "\n")
	return textkv.LeadingUint(textkv.Trim(line))
}

// nativeByteOrder labels the byte order of the running binary.
func nativeByteOrder() string {
	var probe [2]byte
	binary.NativeEndian.PutUint16(probe[:], 1)
	if probe[0] == 1 {
		return models.ByteOrderLittle
	}
	return models.ByteOrderBig
}

const (
	byteOrderLittle = 1234
	byteOrderBig    = 4321
)

// byteOrderLabel maps the hw.byteorder sysctl convention to a label.
func byteOrderLabel(v uint32) string {
	switch v {
	case byteOrderLittle:
		return models.ByteOrderLittle
	case byteOrderBig:
		return models.ByteOrderBig
	default:
		return models.ByteOrderUnknown
	}
}
