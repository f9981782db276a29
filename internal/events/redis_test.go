package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(t *testing.T) (*RedisPublisher, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	pub, err := NewRedisPublisher(context.Background(), mr.Addr(), "", 1000)
	require.NoError(t, err)
	t.Cleanup(func() { pub.Close() })

	reader := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { reader.Close() })
	return pub, reader
}

func TestPublishCandidateCreated(t *testing.T) {
	pub, reader := newTestPublisher(t)
	ctx := context.Background()

	ev := CandidateCreated{
		CandidateID: "cand-1",
		DomainName:  "ec.europa.eu",
		SourceURL:   "https://ec.europa.eu/research",
		Confidence:  "0.85",
		SessionID:   "sess-1",
		Timestamp:   time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.PublishCandidateCreated(ctx, ev))

	entries, err := reader.XRange(ctx, TopicCandidateCreated, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	fields := entries[0].Values
	assert.Equal(t, "cand-1", fields["candidate_id"])
	assert.Equal(t, "ec.europa.eu", fields["domain_name"])
	assert.Equal(t, "0.85", fields["confidence"])
	assert.Equal(t, "sess-1", fields["session_id"])
}

func TestPublishDomainStatusChangeOrdering(t *testing.T) {
	pub, reader := newTestPublisher(t)
	ctx := context.Background()

	first := DomainStatusChange{
		DomainName: "scam-grants.com",
		OldStatus:  "ACTIVE",
		NewStatus:  "BLACKLISTED",
		Reason:     "known scam",
		Actor:      "ops@example.org",
		Timestamp:  time.Now(),
	}
	second := first
	second.OldStatus = "BLACKLISTED"
	second.NewStatus = "ACTIVE"
	second.Reason = "appeal accepted"

	require.NoError(t, pub.PublishDomainStatusChange(ctx, first))
	require.NoError(t, pub.PublishDomainStatusChange(ctx, second))

	entries, err := reader.XRange(ctx, TopicDomainStatusChange, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Streams preserve append order.
	assert.Equal(t, "BLACKLISTED", entries[0].Values["new_status"])
	assert.Equal(t, "ACTIVE", entries[1].Values["new_status"])
}

func TestNewRedisPublisherBadAddr(t *testing.T) {
	_, err := NewRedisPublisher(context.Background(), "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}

func TestLogPublisherNeverFails(t *testing.T) {
	var pub LogPublisher
	assert.NoError(t, pub.PublishCandidateCreated(context.Background(), CandidateCreated{}))
	assert.NoError(t, pub.PublishDomainStatusChange(context.Background(), DomainStatusChange{}))
	assert.NoError(t, pub.Close())
}
