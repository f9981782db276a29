package search

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"fundscout/internal/logging"
	"fundscout/internal/taxonomy"
	"fundscout/internal/types"
)

// FanoutOptions bound the fanout's concurrency and per-call budget.
type FanoutOptions struct {
	PerBackendConcurrency int64                      // simultaneous calls per backend
	PerBackendLimits      map[taxonomy.Backend]int64 // per-backend overrides of the default
	OverallConcurrency    int64                      // simultaneous calls across all backends
	PerQueryTimeout       time.Duration              // deadline for one backend call
	ResultsPerQuery       int
}

// FanoutStats counts what happened during one Execute. Read after the result
// channel closes (or any time: the counters are atomic).
type FanoutStats struct {
	QueriesRun    atomic.Int64
	QueriesFailed atomic.Int64
	Results       atomic.Int64
}

// Fanout schedules query batches across the registered backends. A circuit
// breaker per backend stops hammering a provider that is down; tripped calls
// count as transient failures.
type Fanout struct {
	backends map[taxonomy.Backend]SearchBackend
	breakers map[taxonomy.Backend]*gobreaker.CircuitBreaker
	opts     FanoutOptions
}

// NewFanout wires the given backends. Queries for an unregistered backend
// fail transiently at execution time.
func NewFanout(backends []SearchBackend, opts FanoutOptions) *Fanout {
	if opts.PerBackendConcurrency <= 0 {
		opts.PerBackendConcurrency = 2
	}
	if opts.OverallConcurrency <= 0 {
		opts.OverallConcurrency = 6
	}
	if opts.PerQueryTimeout <= 0 {
		opts.PerQueryTimeout = 30 * time.Second
	}
	if opts.ResultsPerQuery <= 0 {
		opts.ResultsPerQuery = 10
	}

	f := &Fanout{
		backends: make(map[taxonomy.Backend]SearchBackend),
		breakers: make(map[taxonomy.Backend]*gobreaker.CircuitBreaker),
		opts:     opts,
	}
	for _, b := range backends {
		name := b.Name()
		f.backends[name] = b
		f.breakers[name] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        string(name),
			MaxRequests: 1,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Search("backend %s circuit %s -> %s", name, from, to)
			},
		})
	}
	return f
}

// Backends lists the registered backend identifiers in no particular order.
func (f *Fanout) Backends() []taxonomy.Backend {
	return lo.Keys(f.backends)
}

// Execute runs the batch and streams results on the returned channel, which
// closes when every query has finished or ctx is cancelled. Results carry no
// global order. Failed queries are counted in stats and never abort the
// batch.
func (f *Fanout) Execute(ctx context.Context, queries []Query) (<-chan types.SearchResult, *FanoutStats) {
	out := make(chan types.SearchResult, 64)
	stats := &FanoutStats{}

	overall := semaphore.NewWeighted(f.opts.OverallConcurrency)
	perBackend := make(map[taxonomy.Backend]*semaphore.Weighted, len(f.backends))
	for name := range f.backends {
		limit := f.opts.PerBackendConcurrency
		if override, ok := f.opts.PerBackendLimits[name]; ok && override > 0 {
			limit = override
		}
		perBackend[name] = semaphore.NewWeighted(limit)
	}

	go func() {
		defer close(out)

		eg, egCtx := errgroup.WithContext(ctx)
		for _, q := range queries {
			q := q
			eg.Go(func() error {
				if err := overall.Acquire(egCtx, 1); err != nil {
					stats.QueriesFailed.Add(1)
					return nil
				}
				defer overall.Release(1)

				sem, ok := perBackend[q.Request.Backend]
				if !ok {
					stats.QueriesFailed.Add(1)
					logging.SearchError("no backend registered for %s, dropping %q", q.Request.Backend, q.Text)
					return nil
				}
				if err := sem.Acquire(egCtx, 1); err != nil {
					stats.QueriesFailed.Add(1)
					return nil
				}
				defer sem.Release(1)

				stats.QueriesRun.Add(1)
				results, err := f.searchOne(egCtx, q)
				if err != nil {
					stats.QueriesFailed.Add(1)
					logging.SearchError("query %q on %s failed: %v", q.Text, q.Request.Backend, err)
					return nil
				}
				for _, r := range results {
					select {
					case out <- r:
						stats.Results.Add(1)
					case <-egCtx.Done():
						return nil
					}
				}
				return nil
			})
		}
		eg.Wait()
	}()

	return out, stats
}

func (f *Fanout) searchOne(ctx context.Context, q Query) ([]types.SearchResult, error) {
	backend := f.backends[q.Request.Backend]
	breaker := f.breakers[q.Request.Backend]

	qctx, cancel := context.WithTimeout(ctx, f.opts.PerQueryTimeout)
	defer cancel()

	v, err := breaker.Execute(func() (interface{}, error) {
		return backend.Search(qctx, q.Text, f.opts.ResultsPerQuery)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = errors.Join(err, ErrTransient)
		}
		return nil, err
	}

	results := v.([]types.SearchResult)
	for i := range results {
		results[i].Request = q.Request
	}
	return results, nil
}
