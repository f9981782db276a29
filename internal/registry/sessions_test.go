package registry

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundscout/internal/types"
)

func TestSessionLifecycle(t *testing.T) {
	r, clock, _ := newTestRegistry(t)
	ctx := context.Background()

	id := uuid.NewString()
	require.NoError(t, r.CreateSession(ctx, types.DiscoverySession{
		ID:         id,
		StartedAt:  clock.Now(),
		TargetDay:  time.Wednesday,
		QueryCount: 20,
	}))

	running, err := r.GetSession(ctx, id)
	require.NoError(t, err)
	assert.True(t, running.CompletedAt.IsZero())
	assert.Equal(t, time.Wednesday, running.TargetDay)
	assert.Equal(t, 20, running.QueryCount)

	stats := types.ProcessingStatistics{
		TotalResults:          180,
		SpamTLDFiltered:       12,
		BlacklistedSkipped:    7,
		DuplicatesSkipped:     40,
		HighConfidenceCreated: 9,
		LowConfidenceCreated:  3,
		InvalidURLsSkipped:    2,
		RecentSkipped:         100,
		TransientFailures:     7,
	}
	clock.Advance(45 * time.Minute)
	require.NoError(t, r.CompleteSession(ctx, id, stats))

	done, err := r.GetSession(ctx, id)
	require.NoError(t, err)
	assert.False(t, done.CompletedAt.IsZero())
	assert.Equal(t, stats, done.Stats)
	assert.Equal(t, int64(12), done.Stats.TotalCandidatesCreated())

	// Completed stats are immutable.
	err = r.CompleteSession(ctx, id, types.ProcessingStatistics{})
	assert.Error(t, err)
	again, err := r.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, stats, again.Stats)
}

func TestCompleteUnknownSession(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	err := r.CompleteSession(context.Background(), "no-such-session", types.ProcessingStatistics{})
	assert.Error(t, err)
}

func TestCandidateRoundTrip(t *testing.T) {
	r, clock, _ := newTestRegistry(t)
	ctx := context.Background()

	d, err := r.RegisterOrGet(ctx, "foundation.bg", "s1")
	require.NoError(t, err)

	c := types.Candidate{
		ID:           uuid.NewString(),
		DomainID:     d.ID,
		SessionID:    "s1",
		SourceURL:    "https://foundation.bg/grants/open-call",
		OrgName:      "Example Foundation",
		Description:  "Grants for STEM education in Bulgaria",
		Confidence:   decimal.RequireFromString("0.85"),
		Status:       types.CandidatePendingCrawl,
		DiscoveredAt: clock.Now(),
		RawMetadata:  `{"backend":"brave","position":1}`,
	}
	require.NoError(t, r.InsertCandidate(ctx, c))

	got, err := r.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.SourceURL, got.SourceURL)
	assert.Equal(t, "SYSTEM", got.DiscoveredBy)
	assert.True(t, got.Confidence.Equal(c.Confidence))
	assert.Equal(t, types.CandidatePendingCrawl, got.Status)

	// A second candidate in the same session lists after the first.
	c2 := c
	c2.ID = uuid.NewString()
	c2.SourceURL = "https://foundation.bg/grants/closed-call"
	c2.Status = types.CandidateLowConfidence
	c2.Confidence = decimal.RequireFromString("0.41")
	require.NoError(t, r.InsertCandidate(ctx, c2))

	list, err := r.CandidatesForSession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, c.ID, list[0].ID)
	assert.Equal(t, c2.ID, list[1].ID)
}

func TestInsertCandidateRejectsMissingID(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	err := r.InsertCandidate(context.Background(), types.Candidate{DomainID: 1})
	assert.Error(t, err)
}
