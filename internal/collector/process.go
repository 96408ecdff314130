// Process table collector: process counts by scheduling state and total threads.
package collector

import (
	"context"

	"github.com/Guliveer/sysstats/internal/platform"
)

// ProcessStatusName is the identifier of the process status collector.
const ProcessStatusName = "processes"

// ProcessStatusCollector collects a models.ProcessStatusSummary.
type ProcessStatusCollector struct {
	provider platform.Provider
}

// NewProcessStatusCollector creates a new process status collector.
func NewProcessStatusCollector(provider platform.Provider) *ProcessStatusCollector {
	return &ProcessStatusCollector{provider: provider}
}

// Name returns the collector identifier.
func (c *ProcessStatusCollector) Name() string { return ProcessStatusName }

// Collect returns a models.ProcessStatusSummary. Processes that exit during
// the scan are skipped.
func (c *ProcessStatusCollector) Collect(ctx context.Context) (interface{}, error) {
	return c.provider.ProcessStatus(ctx)
}

// IsAvailable returns true when a provider is configured.
func (c *ProcessStatusCollector) IsAvailable() bool { return c.provider != nil }
