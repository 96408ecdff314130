// RAM and swap usage collector.
package collector

import (
	"context"

	"github.com/Guliveer/sysstats/internal/platform"
)

// MemoryName is the identifier of the memory collector.
const MemoryName = "memory"

// MemoryCollector collects a models.MemorySnapshot.
type MemoryCollector struct {
	provider platform.Provider
}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector(provider platform.Provider) *MemoryCollector {
	return &MemoryCollector{provider: provider}
}

// Name returns the collector identifier.
func (c *MemoryCollector) Name() string { return MemoryName }

// Collect returns a models.MemorySnapshot with values in bytes.
func (c *MemoryCollector) Collect(ctx context.Context) (interface{}, error) {
	return c.provider.Memory(ctx)
}

// IsAvailable returns true when a provider is configured.
func (c *MemoryCollector) IsAvailable() bool { return c.provider != nil }
