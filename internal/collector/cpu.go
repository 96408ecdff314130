// CPU identity collector: model, topology, caches, frequency and byte order.
package collector

import (
	"context"

	"github.com/Guliveer/sysstats/internal/platform"
)

// CPUName is the identifier of the CPU collector.
const CPUName = "cpu"

// CPUCollector collects a models.CPUSnapshot.
type CPUCollector struct {
	provider platform.Provider
}

// NewCPUCollector creates a new CPU collector.
func NewCPUCollector(provider platform.Provider) *CPUCollector {
	return &CPUCollector{provider: provider}
}

// Name returns the collector identifier.
func (c *CPUCollector) Name() string { return CPUName }

// Collect returns a models.CPUSnapshot.
func (c *CPUCollector) Collect(ctx context.Context) (interface{}, error) {
	return c.provider.CPU(ctx)
}

// IsAvailable returns true when a provider is configured.
func (c *CPUCollector) IsAvailable() bool { return c.provider != nil }
