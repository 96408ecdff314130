// OS info collector: name, version, host, handle and process totals, uptime.
// Uses platform-specific sources to determine the OS name:
//   - Linux: PRETTY_NAME from /etc/os-release, uname sysname otherwise
//   - macOS: sw_vers, uname otherwise
package collector

import (
	"context"

	"github.com/Guliveer/sysstats/internal/platform"
)

// OSInfoName is the identifier of the OS info collector.
const OSInfoName = "osinfo"

// OSInfoCollector collects a models.OSSnapshot. Nothing is cached because
// process counts and uptime change between calls.
type OSInfoCollector struct {
	provider platform.Provider
}

// NewOSInfoCollector creates a new OS info collector.
func NewOSInfoCollector(provider platform.Provider) *OSInfoCollector {
	return &OSInfoCollector{provider: provider}
}

// Name returns the collector identifier.
func (c *OSInfoCollector) Name() string { return OSInfoName }

// Collect returns a models.OSSnapshot.
func (c *OSInfoCollector) Collect(ctx context.Context) (interface{}, error) {
	return c.provider.OS(ctx)
}

// IsAvailable returns true when a provider is configured.
func (c *OSInfoCollector) IsAvailable() bool { return c.provider != nil }
