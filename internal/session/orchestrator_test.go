package session

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundscout/internal/judge"
	"fundscout/internal/pipeline"
	"fundscout/internal/planner"
	"fundscout/internal/querygen"
	"fundscout/internal/registry"
	"fundscout/internal/search"
	"fundscout/internal/taxonomy"
	"fundscout/internal/types"
)

// stubBackend returns one plausible high-confidence result per query.
type stubBackend struct {
	name  taxonomy.Backend
	calls atomic.Int64
}

func (s *stubBackend) Name() taxonomy.Backend { return s.name }

func (s *stubBackend) Search(_ context.Context, query string, _ int) ([]types.SearchResult, error) {
	n := s.calls.Add(1)
	return []types.SearchResult{{
		URL:         fmt.Sprintf("https://grants-%s-%d.gov.bg/call", s.name, n),
		Title:       "Grant call for proposals in Bulgaria",
		Description: "Ministry funding opportunity",
		Backend:     s.name,
		Query:       query,
		Position:    1,
	}}, nil
}

func newOrchestrator(t *testing.T, backends ...search.SearchBackend) (*Orchestrator, *registry.Registry) {
	t.Helper()
	reg, err := registry.New(":memory:", registry.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })

	jdg, err := judge.New(nil, nil)
	require.NoError(t, err)

	names := make([]taxonomy.Backend, 0, len(backends))
	for _, b := range backends {
		names = append(names, b.Name())
	}

	o := New(
		planner.New(6, 3, names),
		querygen.New(nil, 0), // template-only, deterministic
		search.NewFanout(backends, search.FanoutOptions{}),
		pipeline.New(reg, jdg, nil, pipeline.Options{Workers: 2, RetryBaseDelay: time.Millisecond}),
		reg,
		time.Minute,
	)
	return o, reg
}

func TestRunNightlyEndToEnd(t *testing.T) {
	backend := &stubBackend{name: taxonomy.BackendBrave}
	o, reg := newOrchestrator(t, backend)

	date := time.Date(2026, time.March, 2, 2, 0, 0, 0, time.UTC) // Monday
	sess, err := o.RunNightly(context.Background(), date)
	require.NoError(t, err)

	assert.Equal(t, time.Monday, sess.TargetDay)
	assert.Equal(t, 6, sess.QueryCount)
	assert.Equal(t, int64(6), backend.calls.Load(), "one call per generated query")
	assert.Equal(t, int64(6), sess.Stats.TotalResults)
	assert.Equal(t, int64(6), sess.Stats.HighConfidenceCreated, "every stub domain is unique and credible")

	stored, err := reg.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.False(t, stored.CompletedAt.IsZero())
	assert.Equal(t, sess.Stats, stored.Stats)

	cands, err := reg.CandidatesForSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Len(t, cands, 6)
}

func TestRunNightlySessionsAreIndependent(t *testing.T) {
	backend := &stubBackend{name: taxonomy.BackendBrave}
	o, reg := newOrchestrator(t, backend)

	date := time.Date(2026, time.March, 3, 2, 0, 0, 0, time.UTC) // Tuesday
	first, err := o.RunNightly(context.Background(), date)
	require.NoError(t, err)
	second, err := o.RunNightly(context.Background(), date)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	// The stub mints fresh domains each call, so the second session also
	// creates candidates rather than tripping the cool-down.
	assert.Equal(t, first.Stats.TotalResults, second.Stats.TotalResults)

	cands, err := reg.CandidatesForSession(context.Background(), second.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, cands)
}

func TestRunNightlyWithFailingBackend(t *testing.T) {
	o, reg := newOrchestrator(t, &failingBackend{})

	sess, err := o.RunNightly(context.Background(), time.Date(2026, time.March, 2, 2, 0, 0, 0, time.UTC))
	require.NoError(t, err, "backend failures never fail the session")
	assert.Equal(t, int64(0), sess.Stats.TotalResults)

	stored, err := reg.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.False(t, stored.CompletedAt.IsZero(), "empty sessions still complete")
}

func TestRunNightlyCancelledMidRunStillCompletesSession(t *testing.T) {
	backend := &blockingBackend{}
	o, reg := newOrchestrator(t, backend)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	sess, err := o.RunNightly(ctx, time.Date(2026, time.March, 2, 2, 0, 0, 0, time.UTC))
	require.NoError(t, err, "cancellation must not fail the session")

	stored, err := reg.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.False(t, stored.CompletedAt.IsZero(), "cancelled sessions still complete")
	assert.Equal(t, sess.Stats, stored.Stats, "partial statistics are persisted")
}

// blockingBackend answers its first call and holds every later one until the
// session is cancelled.
type blockingBackend struct {
	answered atomic.Bool
}

func (b *blockingBackend) Name() taxonomy.Backend { return taxonomy.BackendBrave }

func (b *blockingBackend) Search(ctx context.Context, query string, _ int) ([]types.SearchResult, error) {
	if b.answered.CompareAndSwap(false, true) {
		return []types.SearchResult{{
			URL:         "https://grants.gov.bg/call",
			Title:       "Grant call for proposals in Bulgaria",
			Description: "Ministry funding opportunity",
			Backend:     taxonomy.BackendBrave,
			Query:       query,
			Position:    1,
		}}, nil
	}
	<-ctx.Done()
	return nil, fmt.Errorf("search cancelled (%w)", ctx.Err())
}

type failingBackend struct{}

func (failingBackend) Name() taxonomy.Backend { return taxonomy.BackendBrave }

func (failingBackend) Search(context.Context, string, int) ([]types.SearchResult, error) {
	return nil, fmt.Errorf("backend down (%w)", search.ErrTransient)
}
