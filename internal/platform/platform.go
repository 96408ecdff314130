// Package platform gathers host telemetry through an OS abstraction layer.
// Each supported OS implements the Provider interface; the variant is
// selected at build time.
package platform

import (
	"context"
	"errors"

	"github.com/Guliveer/sysstats/internal/filter"
	"github.com/Guliveer/sysstats/internal/models"
	"go.uber.org/zap"
)

// ErrUnsupportedPlatform is returned by every operation when the running OS
// has no collection backend.
var ErrUnsupportedPlatform = errors.New("system information is not supported on this platform")

// Provider collects point-in-time snapshots from the running host.
// Individual fields that cannot be read are left at their zero value and
// logged at debug level; only ErrUnsupportedPlatform and context
// cancellation are returned as errors.
type Provider interface {
	// Name returns the platform name (linux, darwin, unsupported).
	Name() string

	CPU(ctx context.Context) (models.CPUSnapshot, error)
	Memory(ctx context.Context) (models.MemorySnapshot, error)

	// Disks lists mounted filesystems in mount table order, skipping
	// excluded and zero-capacity entries.
	Disks(ctx context.Context) ([]models.DiskEntry, error)

	// Network lists one entry per (interface, IPv4 address) pair.
	Network(ctx context.Context) ([]models.NetworkInterfaceEntry, error)

	ProcessStatus(ctx context.Context) (models.ProcessStatusSummary, error)
	OS(ctx context.Context) (models.OSSnapshot, error)
}

// Options configures where a provider reads kernel data from. Empty fields
// select the live host locations.
type Options struct {
	// ProcRoot is the procfs mount, "/proc" by default.
	ProcRoot string
	// SysRoot is the sysfs mount, "/sys" by default.
	SysRoot string
	// EtcRoot holds os-release and mtab, "/etc" by default.
	EtcRoot string
	// MountTable overrides the primary mount table path.
	MountTable string
	// Filter excludes pseudo filesystems and system mount points.
	// Nil selects filter.Default().
	Filter *filter.Filter
}

// New returns the provider for the running OS.
func New(opts Options, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Filter == nil {
		opts.Filter = filter.Default()
	}
	return newProvider(opts, logger)
}
