package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fundscout/internal/logging"
	"fundscout/internal/types"
)

// InsertCandidate persists a funding-source candidate row. Candidate IDs are
// fresh UUIDs, so a double insert is a caller bug and surfaces as a constraint
// error rather than being silently absorbed.
func (r *Registry) InsertCandidate(ctx context.Context, c types.Candidate) error {
	if c.ID == "" {
		return fmt.Errorf("candidate for domain %d has no id", c.DomainID)
	}
	if c.DiscoveredBy == "" {
		c.DiscoveredBy = "SYSTEM"
	}

	ctx, cancel := r.txContext(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO funding_source_candidate
			(id, domain_id, discovery_session_id, source_url, organization_name,
			 description, confidence_score, status, discovered_at, discovered_by, raw_metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.DomainID, c.SessionID, c.SourceURL, c.OrgName,
		c.Description, c.Confidence.StringFixed(2), string(c.Status),
		c.DiscoveredAt.Unix(), c.DiscoveredBy, c.RawMetadata)
	if err != nil {
		return fmt.Errorf("insert candidate %s: %w", c.ID, err)
	}
	logging.RegistryDebug("candidate %s stored for domain %d (%s)", c.ID, c.DomainID, c.Status)
	return nil
}

// GetCandidate fetches one candidate by ID.
func (r *Registry) GetCandidate(ctx context.Context, id string) (types.Candidate, error) {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	var (
		c            types.Candidate
		conf         string
		discoveredAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, domain_id, discovery_session_id, source_url, organization_name,
		       description, confidence_score, status, discovered_at, discovered_by, raw_metadata
		FROM funding_source_candidate WHERE id = ?`, id).
		Scan(&c.ID, &c.DomainID, &c.SessionID, &c.SourceURL, &c.OrgName,
			&c.Description, &conf, &c.Status, &discoveredAt, &c.DiscoveredBy, &c.RawMetadata)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Candidate{}, fmt.Errorf("candidate %s not found", id)
	}
	if err != nil {
		return types.Candidate{}, fmt.Errorf("read candidate %s: %w", id, err)
	}
	c.Confidence, err = decimal.NewFromString(conf)
	if err != nil {
		return types.Candidate{}, fmt.Errorf("corrupt confidence %q on candidate %s: %w", conf, id, err)
	}
	c.DiscoveredAt = time.Unix(discoveredAt, 0)
	return c, nil
}

// CandidatesForSession lists every candidate a session produced, insertion
// order.
func (r *Registry) CandidatesForSession(ctx context.Context, sessionID string) ([]types.Candidate, error) {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, domain_id, discovery_session_id, source_url, organization_name,
		       description, confidence_score, status, discovered_at, discovered_by, raw_metadata
		FROM funding_source_candidate WHERE discovery_session_id = ?
		ORDER BY rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list candidates for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var out []types.Candidate
	for rows.Next() {
		var (
			c            types.Candidate
			conf         string
			discoveredAt int64
		)
		if err := rows.Scan(&c.ID, &c.DomainID, &c.SessionID, &c.SourceURL, &c.OrgName,
			&c.Description, &conf, &c.Status, &discoveredAt, &c.DiscoveredBy, &c.RawMetadata); err != nil {
			return nil, fmt.Errorf("scan candidate for session %s: %w", sessionID, err)
		}
		c.Confidence, err = decimal.NewFromString(conf)
		if err != nil {
			return nil, fmt.Errorf("corrupt confidence %q in session %s: %w", conf, sessionID, err)
		}
		c.DiscoveredAt = time.Unix(discoveredAt, 0)
		out = append(out, c)
	}
	return out, rows.Err()
}
