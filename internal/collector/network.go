// Network interface collector: IPv4 address and traffic counters.
package collector

import (
	"context"

	"github.com/Guliveer/sysstats/internal/platform"
)

// NetworkName is the identifier of the network collector.
const NetworkName = "network"

// NetworkCollector collects []models.NetworkInterfaceEntry. Counters are
// the cumulative values reported by the kernel, not deltas.
type NetworkCollector struct {
	provider platform.Provider
}

// NewNetworkCollector creates a new network collector.
func NewNetworkCollector(provider platform.Provider) *NetworkCollector {
	return &NetworkCollector{provider: provider}
}

// Name returns the collector identifier.
func (c *NetworkCollector) Name() string { return NetworkName }

// Collect returns one entry per (interface, IPv4 address) pair.
func (c *NetworkCollector) Collect(ctx context.Context) (interface{}, error) {
	return c.provider.Network(ctx)
}

// IsAvailable returns true when a provider is configured.
func (c *NetworkCollector) IsAvailable() bool { return c.provider != nil }
