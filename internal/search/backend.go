// Package search runs query batches across web-search backends. Each backend
// is a thin HTTP client normalizing its provider's response shape into
// types.SearchResult; the fanout schedules them concurrently under
// per-backend and overall limits.
package search

import (
	"context"
	"errors"

	"fundscout/internal/taxonomy"
	"fundscout/internal/types"
)

// ErrTransient marks failures worth retrying in a later session: timeouts,
// rate limits, 5xx. Wrap it with %w.
var ErrTransient = errors.New("transient search failure")

// IsTransient reports whether an error is retryable.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// SearchBackend is one search provider. Implementations must be safe for
// concurrent use; the fanout enforces their rate limits via semaphores.
type SearchBackend interface {
	Name() taxonomy.Backend
	Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error)
}

// Query couples a concrete search string with the planner intent that
// produced it, so every result can carry the intent to the judge.
type Query struct {
	Text    string
	Request types.QueryRequest
}
