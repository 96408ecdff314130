// Package units converts byte counts into the decimal and binary units
// accepted by the unit parameter of the memory and disk tables.
package units

import (
	"errors"
	"fmt"
	"strings"
)

// MemoryUnit selects the unit byte values are reported in.
type MemoryUnit int

const (
	Bytes MemoryUnit = iota
	KB               // 1000 bytes
	KiB              // 1024 bytes
	MB               // 1000^2 bytes
	MiB              // 1024^2 bytes
	GB               // 1000^3 bytes
	GiB              // 1024^3 bytes
	TB               // 1000^4 bytes
	TiB              // 1024^4 bytes
)

// Supported lists the accepted spellings, used in validation messages.
const Supported = "bytes, KB, KiB, MB, MiB, GB, GiB, TB, TiB"

// ErrInvalidUnit is returned by ParseUnit for unrecognized unit names.
var ErrInvalidUnit = errors.New("invalid unit")

var divisors = map[MemoryUnit]uint64{
	Bytes: 1,
	KB:    1000,
	KiB:   1024,
	MB:    1000 * 1000,
	MiB:   1024 * 1024,
	GB:    1000 * 1000 * 1000,
	GiB:   1024 * 1024 * 1024,
	TB:    1000 * 1000 * 1000 * 1000,
	TiB:   1024 * 1024 * 1024 * 1024,
}

var names = map[string]MemoryUnit{
	"b":     Bytes,
	"bytes": Bytes,
	"kb":    KB,
	"kib":   KiB,
	"mb":    MB,
	"mib":   MiB,
	"gb":    GB,
	"gib":   GiB,
	"tb":    TB,
	"tib":   TiB,
}

// String returns the canonical spelling of the unit.
func (u MemoryUnit) String() string {
	switch u {
	case Bytes:
		return "bytes"
	case KB:
		return "KB"
	case KiB:
		return "KiB"
	case MB:
		return "MB"
	case MiB:
		return "MiB"
	case GB:
		return "GB"
	case GiB:
		return "GiB"
	case TB:
		return "TB"
	case TiB:
		return "TiB"
	default:
		return fmt.Sprintf("MemoryUnit(%d)", int(u))
	}
}

// ParseUnit parses a unit name case-insensitively. Both "b" and "bytes"
// select Bytes.
func ParseUnit(s string) (MemoryUnit, error) {
	if u, ok := names[strings.ToLower(strings.TrimSpace(s))]; ok {
		return u, nil
	}
	return Bytes, fmt.Errorf("%w '%s'. Supported units: %s", ErrInvalidUnit, s, Supported)
}

// ConvertBytes converts n bytes into unit using integer division.
// Unknown units leave the value unchanged.
func ConvertBytes(n uint64, unit MemoryUnit) uint64 {
	d, ok := divisors[unit]
	if !ok {
		return n
	}
	return n / d
}

// Divisor returns the number of bytes in one unit.
func Divisor(unit MemoryUnit) uint64 {
	if d, ok := divisors[unit]; ok {
		return d
	}
	return 1
}
