package collector

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Guliveer/sysstats/internal/models"
	"github.com/Guliveer/sysstats/internal/platform"
)

// Registry manages all registered collectors and runs them on request.
type Registry struct {
	collectors []Collector
	byName     map[string]Collector
	logger     *zap.Logger
}

// NewRegistry creates a new collector registry with the given logger.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		collectors: make([]Collector, 0),
		byName:     make(map[string]Collector),
		logger:     logger,
	}
}

// NewDefaultRegistry registers one collector per snapshot kind, all backed
// by provider.
func NewDefaultRegistry(provider platform.Provider, logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(NewCPUCollector(provider))
	r.Register(NewMemoryCollector(provider))
	r.Register(NewDiskCollector(provider))
	r.Register(NewNetworkCollector(provider))
	r.Register(NewOSInfoCollector(provider))
	r.Register(NewProcessStatusCollector(provider))
	return r
}

// Register adds a collector if it's available. Unavailable collectors are
// logged and skipped; a second collector with the same name replaces the first.
func (r *Registry) Register(c Collector) {
	if !c.IsAvailable() {
		r.logger.Warn("Collector not available, skipping", zap.String("name", c.Name()))
		return
	}
	if _, exists := r.byName[c.Name()]; exists {
		for i, existing := range r.collectors {
			if existing.Name() == c.Name() {
				r.collectors[i] = c
			}
		}
	} else {
		r.collectors = append(r.collectors, c)
	}
	r.byName[c.Name()] = c
	r.logger.Debug("Registered collector", zap.String("name", c.Name()))
}

// Get returns the collector registered under name.
func (r *Registry) Get(name string) (Collector, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Collect runs a single collector by name.
func (r *Registry) Collect(ctx context.Context, name string) (interface{}, error) {
	c, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown collector %q", name)
	}
	data, err := c.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", name, err)
	}
	return data, nil
}

// CollectAll runs all registered collectors concurrently and returns a map
// of collector name -> result. Snapshots taken this way are not a
// consistent point in time across collectors. Failed collectors are logged
// and reported in their result without affecting the others.
func (r *Registry) CollectAll(ctx context.Context) map[string]models.CollectorResult {
	return r.run(ctx, r.collectors)
}

// CollectNames is CollectAll restricted to the named collectors, each run
// once. Unknown names are reported as failed results.
func (r *Registry) CollectNames(ctx context.Context, names []string) map[string]models.CollectorResult {
	selected := make([]Collector, 0, len(names))
	results := make(map[string]models.CollectorResult)
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		c, ok := r.byName[name]
		if !ok {
			results[name] = models.CollectorResult{Name: name, Error: fmt.Errorf("unknown collector %q", name)}
			continue
		}
		selected = append(selected, c)
	}
	for name, res := range r.run(ctx, selected) {
		results[name] = res
	}
	return results
}

func (r *Registry) run(ctx context.Context, collectors []Collector) map[string]models.CollectorResult {
	results := make(map[string]models.CollectorResult, len(collectors))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, c := range collectors {
		wg.Add(1)
		go func(col Collector) {
			defer wg.Done()
			data, err := col.Collect(ctx)
			if err != nil {
				r.logger.Error("Collection failed",
					zap.String("collector", col.Name()),
					zap.Error(err))
			}
			mu.Lock()
			results[col.Name()] = models.CollectorResult{Name: col.Name(), Data: data, Error: err}
			mu.Unlock()
		}(c)
	}

	wg.Wait()
	return results
}

// Collectors returns a copy of all registered collectors in registration order.
func (r *Registry) Collectors() []Collector {
	result := make([]Collector, len(r.collectors))
	copy(result, r.collectors)
	return result
}
