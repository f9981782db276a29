package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fundscout/internal/logging"
	"fundscout/internal/types"
)

// CreateSession records the start of a nightly discovery run.
func (r *Registry) CreateSession(ctx context.Context, s types.DiscoverySession) error {
	if s.ID == "" {
		return fmt.Errorf("session has no id")
	}

	ctx, cancel := r.txContext(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO discovery_session (id, started_at, target_day_of_week, query_count)
		VALUES (?, ?, ?, ?)`,
		s.ID, s.StartedAt.Unix(), int(s.TargetDay), s.QueryCount)
	if err != nil {
		return fmt.Errorf("create session %s: %w", s.ID, err)
	}
	logging.Session("session %s started (%s, %d queries)", s.ID, s.TargetDay, s.QueryCount)
	return nil
}

// CompleteSession writes the final statistics and the completion time. The
// stats become immutable from the caller's point of view; this is the only
// write path for them.
func (r *Registry) CompleteSession(ctx context.Context, sessionID string, stats types.ProcessingStatistics) error {
	now := r.clock.Now()

	ctx, cancel := r.txContext(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE discovery_session SET
			completed_at = ?,
			total_results = ?,
			spam_tld_filtered = ?,
			blacklisted_skipped = ?,
			duplicates_skipped = ?,
			high_confidence_created = ?,
			low_confidence_created = ?,
			invalid_urls_skipped = ?,
			recent_skipped = ?,
			transient_failures = ?
		WHERE id = ? AND completed_at = 0`,
		now.Unix(), stats.TotalResults, stats.SpamTLDFiltered, stats.BlacklistedSkipped,
		stats.DuplicatesSkipped, stats.HighConfidenceCreated, stats.LowConfidenceCreated,
		stats.InvalidURLsSkipped, stats.RecentSkipped, stats.TransientFailures, sessionID)
	if err != nil {
		return fmt.Errorf("complete session %s: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete session %s rows: %w", sessionID, err)
	}
	if n == 0 {
		return fmt.Errorf("session %s is unknown or already completed", sessionID)
	}
	logging.Session("session %s completed: %d results, %d candidates",
		sessionID, stats.TotalResults, stats.TotalCandidatesCreated())
	return nil
}

// GetSession reads a session row back, stats included.
func (r *Registry) GetSession(ctx context.Context, sessionID string) (types.DiscoverySession, error) {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	var (
		s                    types.DiscoverySession
		started, completed   int64
		day                  int
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, started_at, completed_at, target_day_of_week, query_count,
		       total_results, spam_tld_filtered, blacklisted_skipped, duplicates_skipped,
		       high_confidence_created, low_confidence_created, invalid_urls_skipped,
		       recent_skipped, transient_failures
		FROM discovery_session WHERE id = ?`, sessionID).
		Scan(&s.ID, &started, &completed, &day, &s.QueryCount,
			&s.Stats.TotalResults, &s.Stats.SpamTLDFiltered, &s.Stats.BlacklistedSkipped,
			&s.Stats.DuplicatesSkipped, &s.Stats.HighConfidenceCreated, &s.Stats.LowConfidenceCreated,
			&s.Stats.InvalidURLsSkipped, &s.Stats.RecentSkipped, &s.Stats.TransientFailures)
	if errors.Is(err, sql.ErrNoRows) {
		return types.DiscoverySession{}, fmt.Errorf("session %s not found", sessionID)
	}
	if err != nil {
		return types.DiscoverySession{}, fmt.Errorf("read session %s: %w", sessionID, err)
	}
	s.StartedAt = time.Unix(started, 0)
	if completed > 0 {
		s.CompletedAt = time.Unix(completed, 0)
	}
	s.TargetDay = time.Weekday(day)
	return s, nil
}
