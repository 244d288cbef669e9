package collector

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Registry manages all registered collectors and orchestrates concurrent collection.
type Registry struct {
	collectors []Collector
	logger     *zap.Logger
}

// NewRegistry creates a new collector registry with the given logger.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		collectors: make([]Collector, 0),
		logger:     logger,
	}
}

// Register adds a collector if it's available on the current host.
// Unavailable collectors are logged and skipped.
func (r *Registry) Register(c Collector) {
	if c.IsAvailable() {
		r.collectors = append(r.collectors, c)
		r.logger.Info("Registered collector", zap.String("name", c.Name()))
	} else {
		r.logger.Warn("Collector not available, skipping", zap.String("name", c.Name()))
	}
}

// CollectAll runs all registered collectors concurrently and returns a map
// of collector name -> result data. Failed collectors are absent from the
// map; the caller substitutes defaults for them.
//
// CollectAll returns once every collector finishes or ctx is done, whichever
// comes first. Collectors still running at that point are abandoned and
// their late results discarded.
func (r *Registry) CollectAll(ctx context.Context) map[string]interface{} {
	results := make(map[string]interface{}, len(r.collectors))
	var mu sync.Mutex
	closed := false
	var wg sync.WaitGroup

	for _, c := range r.collectors {
		wg.Add(1)
		go func(col Collector) {
			defer wg.Done()
			data, err := col.Collect(ctx)
			if err != nil {
				// Reads are best effort and repeat every tick.
				r.logger.Debug("Collection failed",
					zap.String("collector", col.Name()),
					zap.Error(err))
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if closed {
				r.logger.Debug("Discarding late result", zap.String("collector", col.Name()))
				return
			}
			results[col.Name()] = data
		}(c)
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		r.logger.Debug("Collection deadline reached, returning partial results",
			zap.Error(ctx.Err()))
	}

	mu.Lock()
	defer mu.Unlock()
	closed = true
	out := make(map[string]interface{}, len(results))
	for name, data := range results {
		out[name] = data
	}
	return out
}

// Collectors returns a copy of all registered collectors.
func (r *Registry) Collectors() []Collector {
	result := make([]Collector, len(r.collectors))
	copy(result, r.collectors)
	return result
}

// Names returns the names of the registered collectors, in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.collectors))
	for _, c := range r.Collectors() {
		names = append(names, c.Name())
	}
	return names
}
