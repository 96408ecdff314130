// Disk usage collector: per-mount capacity and inode counts.
package collector

import (
	"context"

	"github.com/Guliveer/sysstats/internal/platform"
)

// DiskName is the identifier of the disk collector.
const DiskName = "disk"

// DiskCollector collects []models.DiskEntry. Pseudo filesystems and system
// mount points are excluded by the provider's filter.
type DiskCollector struct {
	provider platform.Provider
}

// NewDiskCollector creates a new disk collector.
func NewDiskCollector(provider platform.Provider) *DiskCollector {
	return &DiskCollector{provider: provider}
}

// Name returns the collector identifier.
func (c *DiskCollector) Name() string { return DiskName }

// Collect returns []models.DiskEntry in mount table order.
func (c *DiskCollector) Collect(ctx context.Context) (interface{}, error) {
	return c.provider.Disks(ctx)
}

// IsAvailable returns true when a provider is configured.
func (c *DiskCollector) IsAvailable() bool { return c.provider != nil }
