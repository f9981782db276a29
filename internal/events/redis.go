package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"fundscout/internal/logging"
)

// RedisPublisher appends events to Redis Streams, one stream per topic.
// Streams give us the durable ordered log the bus contract requires; MaxLen
// is approximate trimming so retention stays bounded without blocking XADD.
type RedisPublisher struct {
	client *redis.Client
	maxLen int64
}

// NewRedisPublisher connects to Redis and verifies the connection.
func NewRedisPublisher(ctx context.Context, addr, password string, maxLen int64) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	if maxLen <= 0 {
		maxLen = 100000
	}
	logging.Events("redis publisher connected: %s", addr)
	return &RedisPublisher{client: client, maxLen: maxLen}, nil
}

// PublishCandidateCreated appends to the candidate-created stream.
func (p *RedisPublisher) PublishCandidateCreated(ctx context.Context, ev CandidateCreated) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: TopicCandidateCreated,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"candidate_id": ev.CandidateID,
			"domain_name":  ev.DomainName,
			"source_url":   ev.SourceURL,
			"confidence":   ev.Confidence,
			"session_id":   ev.SessionID,
			"timestamp":    ev.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish candidate-created for %s: %w", ev.DomainName, err)
	}
	logging.EventsDebug("published candidate-created: %s (%s)", ev.DomainName, ev.CandidateID)
	return nil
}

// PublishDomainStatusChange appends to the domain-status-changes stream.
func (p *RedisPublisher) PublishDomainStatusChange(ctx context.Context, ev DomainStatusChange) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: TopicDomainStatusChange,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"domain_name": ev.DomainName,
			"old_status":  ev.OldStatus,
			"new_status":  ev.NewStatus,
			"reason":      ev.Reason,
			"actor":       ev.Actor,
			"timestamp":   ev.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish domain-status-change for %s: %w", ev.DomainName, err)
	}
	logging.EventsDebug("published domain-status-change: %s %s -> %s", ev.DomainName, ev.OldStatus, ev.NewStatus)
	return nil
}

// Close releases the Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// LogPublisher is the fallback when no bus is configured: events go to the
// category log and nowhere else. Never fails.
type LogPublisher struct{}

func (LogPublisher) PublishCandidateCreated(_ context.Context, ev CandidateCreated) error {
	logging.Events("candidate-created (log only): %s (%s) confidence=%s", ev.DomainName, ev.CandidateID, ev.Confidence)
	return nil
}

func (LogPublisher) PublishDomainStatusChange(_ context.Context, ev DomainStatusChange) error {
	logging.Events("domain-status-change (log only): %s %s -> %s by %s", ev.DomainName, ev.OldStatus, ev.NewStatus, ev.Actor)
	return nil
}

func (LogPublisher) Close() error { return nil }
