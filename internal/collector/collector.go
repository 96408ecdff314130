// Package collector defines the Collector interface and the collectors that
// expose each platform snapshot under a stable name.
package collector

import "context"

// Collector is the interface that all metric collectors must implement.
// Each collector gathers one kind of snapshot on demand.
type Collector interface {
	// Name returns the unique identifier for this collector.
	Name() string

	// Collect gathers the snapshot and returns it.
	// The context allows for cancellation.
	Collect(ctx context.Context) (interface{}, error)

	// IsAvailable reports whether this collector has a backend.
	// Collectors that return false will not be registered.
	IsAvailable() bool
}
