// Package events publishes pipeline events to the event bus. Topics are
// durable append-only ordered logs; the production implementation uses Redis
// Streams. Consumers are out of scope and expected to be idempotent on
// candidate ID, since publishes are at-least-once.
package events

import (
	"context"
	"time"
)

// Topic names on the bus.
const (
	TopicCandidateCreated   = "candidate-created"
	TopicDomainStatusChange = "domain-status-changes"
)

// CandidateCreated is the payload emitted when the pipeline persists a
// candidate.
type CandidateCreated struct {
	CandidateID string
	DomainName  string
	SourceURL   string
	Confidence  string // decimal scale 2, as text
	SessionID   string
	Timestamp   time.Time
}

// DomainStatusChange is the payload emitted on authoritative registry
// transitions (blacklist, no-funds, lift).
type DomainStatusChange struct {
	DomainName string
	OldStatus  string
	NewStatus  string
	Reason     string
	Actor      string
	Timestamp  time.Time
}

// Publisher abstracts the event bus. Implementations must be safe for
// concurrent use by the pipeline workers.
type Publisher interface {
	PublishCandidateCreated(ctx context.Context, ev CandidateCreated) error
	PublishDomainStatusChange(ctx context.Context, ev DomainStatusChange) error
	Close() error
}
