package search

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"fundscout/internal/taxonomy"
	"fundscout/internal/types"
)

// fakeBackend serves canned results and tracks its peak concurrency.
type fakeBackend struct {
	name       taxonomy.Backend
	perQuery   int
	delay      time.Duration
	failAlways bool

	mu     sync.Mutex
	active int
	peak   int
	calls  atomic.Int64
}

func (f *fakeBackend) Name() taxonomy.Backend { return f.name }

func (f *fakeBackend) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("cancelled: %w", ctx.Err())
		}
	}
	if f.failAlways {
		return nil, fmt.Errorf("backend down (%w)", ErrTransient)
	}

	out := make([]types.SearchResult, 0, f.perQuery)
	for i := 0; i < f.perQuery; i++ {
		out = append(out, types.SearchResult{
			URL:      fmt.Sprintf("https://site-%s-%d.org/%s", f.name, i, query),
			Title:    "result",
			Backend:  f.name,
			Query:    query,
			Position: i + 1,
		})
	}
	return out, nil
}

func queriesFor(backend taxonomy.Backend, n int) []Query {
	out := make([]Query, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Query{
			Text: fmt.Sprintf("query-%d", i),
			Request: types.QueryRequest{
				Category:        taxonomy.CategorySTEMEducation,
				Scope:           taxonomy.ScopeBulgaria,
				Backend:         backend,
				NumberOfQueries: 1,
			},
		})
	}
	return out
}

func drain(ch <-chan types.SearchResult) []types.SearchResult {
	var out []types.SearchResult
	for r := range ch {
		out = append(out, r)
	}
	return out
}

func TestFanoutStreamsAllResults(t *testing.T) {
	defer goleak.VerifyNone(t)

	fb := &fakeBackend{name: taxonomy.BackendBrave, perQuery: 3}
	f := NewFanout([]SearchBackend{fb}, FanoutOptions{})

	ch, stats := f.Execute(context.Background(), queriesFor(taxonomy.BackendBrave, 4))
	results := drain(ch)

	assert.Len(t, results, 12)
	assert.Equal(t, int64(4), stats.QueriesRun.Load())
	assert.Equal(t, int64(0), stats.QueriesFailed.Load())
	assert.Equal(t, int64(12), stats.Results.Load())
	for _, r := range results {
		assert.Equal(t, taxonomy.ScopeBulgaria, r.Request.Scope, "results carry the originating intent")
	}
}

func TestFanoutRespectsPerBackendConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	fb := &fakeBackend{name: taxonomy.BackendBrave, perQuery: 1, delay: 20 * time.Millisecond}
	f := NewFanout([]SearchBackend{fb}, FanoutOptions{
		PerBackendConcurrency: 2,
		OverallConcurrency:    10,
	})

	ch, _ := f.Execute(context.Background(), queriesFor(taxonomy.BackendBrave, 8))
	drain(ch)

	fb.mu.Lock()
	peak := fb.peak
	fb.mu.Unlock()
	assert.LessOrEqual(t, peak, 2, "per-backend limit breached")
}

func TestFanoutFailedQueryDoesNotAbortBatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	good := &fakeBackend{name: taxonomy.BackendBrave, perQuery: 2}
	bad := &fakeBackend{name: taxonomy.BackendSerper, failAlways: true}
	f := NewFanout([]SearchBackend{good, bad}, FanoutOptions{})

	queries := append(queriesFor(taxonomy.BackendBrave, 3), queriesFor(taxonomy.BackendSerper, 2)...)
	ch, stats := f.Execute(context.Background(), queries)
	results := drain(ch)

	assert.Len(t, results, 6)
	assert.Equal(t, int64(2), stats.QueriesFailed.Load())
}

func TestFanoutUnregisteredBackend(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := NewFanout([]SearchBackend{&fakeBackend{name: taxonomy.BackendBrave, perQuery: 1}}, FanoutOptions{})
	ch, stats := f.Execute(context.Background(), queriesFor(taxonomy.BackendTavily, 2))
	results := drain(ch)

	assert.Empty(t, results)
	assert.Equal(t, int64(2), stats.QueriesFailed.Load())
	assert.Equal(t, int64(0), stats.QueriesRun.Load())
}

func TestFanoutPerQueryTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	slow := &fakeBackend{name: taxonomy.BackendBrave, perQuery: 1, delay: time.Second}
	f := NewFanout([]SearchBackend{slow}, FanoutOptions{PerQueryTimeout: 30 * time.Millisecond})

	ch, stats := f.Execute(context.Background(), queriesFor(taxonomy.BackendBrave, 2))
	results := drain(ch)

	assert.Empty(t, results)
	assert.Equal(t, int64(2), stats.QueriesFailed.Load())
}

func TestFanoutBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	bad := &fakeBackend{name: taxonomy.BackendBrave, failAlways: true}
	f := NewFanout([]SearchBackend{bad}, FanoutOptions{
		PerBackendConcurrency: 1,
		OverallConcurrency:    1,
	})

	ch, stats := f.Execute(context.Background(), queriesFor(taxonomy.BackendBrave, 10))
	drain(ch)

	assert.Equal(t, int64(10), stats.QueriesFailed.Load())
	assert.Less(t, bad.calls.Load(), int64(10), "open breaker must stop reaching the backend")
}

func TestFanoutCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	slow := &fakeBackend{name: taxonomy.BackendBrave, perQuery: 1, delay: 50 * time.Millisecond}
	f := NewFanout([]SearchBackend{slow}, FanoutOptions{PerBackendConcurrency: 1, OverallConcurrency: 1})

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := f.Execute(ctx, queriesFor(taxonomy.BackendBrave, 20))
	cancel()

	results := drain(ch)
	assert.Less(t, len(results), 20, "cancellation must stop the batch early")
}

func TestIsTransient(t *testing.T) {
	require.True(t, IsTransient(fmt.Errorf("wrapped: %w", ErrTransient)))
	require.True(t, IsTransient(context.DeadlineExceeded))
	require.False(t, IsTransient(fmt.Errorf("permanent auth failure")))
}
