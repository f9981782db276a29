// Package registry is the durable deduplication and lifecycle store for
// discovered domains, backed by SQLite. It is the only heavy shared mutable
// state in the pipeline: every multi-step mutation runs inside a single
// transaction, and per-domain operations serialize on the single-writer
// connection, so operations on the same domain name are linearizable.
//
// Processing locks are lease-based: a lock carries an absolute expiration and
// an expired lease counts as free, so a crashed worker's lock recovers after
// the TTL without any sweeper having to run first.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"fundscout/internal/events"
	"fundscout/internal/logging"
	"fundscout/internal/types"
)

// Options tune the registry's policy knobs. Zero values get defaults.
type Options struct {
	Clock             Clock
	Cooldown          time.Duration // recent-processing cool-down
	LockTTL           time.Duration // default processing-lock lease
	TxTimeout         time.Duration // per-transaction budget
	BlacklistCacheTTL time.Duration // read-through cache bound, never authoritative
	Publisher         events.Publisher
}

// Registry implements the domain registry contract over SQLite.
type Registry struct {
	db        *sql.DB
	clock     Clock
	cooldown  time.Duration
	lockTTL   time.Duration
	txTimeout time.Duration
	pub       events.Publisher

	// blacklistCache is strictly a read-through accelerator for IsBlacklisted.
	// Writes that change blacklist state invalidate the key.
	blacklistCache *gocache.Cache
}

// New opens (creating if needed) the registry database at path and applies
// the schema. Use ":memory:" for tests.
func New(path string, opts Options) (*Registry, error) {
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 24 * time.Hour
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = time.Hour
	}
	if opts.TxTimeout <= 0 {
		opts.TxTimeout = 10 * time.Second
	}
	if opts.BlacklistCacheTTL <= 0 || opts.BlacklistCacheTTL > time.Hour {
		opts.BlacklistCacheTTL = 30 * time.Minute
	}
	if opts.Publisher == nil {
		opts.Publisher = events.LogPublisher{}
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create registry directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}
	// Single writer connection: SQLite serializes anyway, and this keeps the
	// pool from fighting over the file lock under the worker pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.RegistryDebug("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.RegistryDebug("failed to set journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logging.RegistryDebug("failed to set foreign_keys=ON: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize registry schema: %w", err)
	}

	r := &Registry{
		db:             db,
		clock:          opts.Clock,
		cooldown:       opts.Cooldown,
		lockTTL:        opts.LockTTL,
		txTimeout:      opts.TxTimeout,
		pub:            opts.Publisher,
		// No janitor goroutine: Get already treats expired entries as absent,
		// and the key space is small.
		blacklistCache: gocache.New(opts.BlacklistCacheTTL, 0),
	}
	logging.Registry("registry opened at %s (cooldown=%v lock_ttl=%v)", path, opts.Cooldown, opts.LockTTL)
	return r, nil
}

// Close releases the database handle.
func (r *Registry) Close() error {
	return r.db.Close()
}

// DefaultLockTTL exposes the configured lease for callers that pass it back
// into AcquireProcessingLock.
func (r *Registry) DefaultLockTTL() time.Duration { return r.lockTTL }

func (r *Registry) txContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.txTimeout)
}

// ShouldProcess decides whether a domain may enter the pipeline right now.
// Unknown domains are OK. The cool-down, no-funds revisit window, transient
// retry backoff and lease checks are all enforced here, not by callers.
func (r *Registry) ShouldProcess(ctx context.Context, domainName string) (types.CheckResult, error) {
	name := types.NormalizeDomain(domainName)
	now := r.clock.Now()

	ctx, cancel := r.txContext(ctx)
	defer cancel()

	var (
		status        string
		reason        string
		lastProcessed int64
		revisitAfter  int64
		nextRetryAt   int64
		lockExpires   int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT status, blacklist_reason, last_processed_at, revisit_after, next_retry_at, lock_expires_at
		FROM domain WHERE domain_name = ?`, name).
		Scan(&status, &reason, &lastProcessed, &revisitAfter, &nextRetryAt, &lockExpires)
	if errors.Is(err, sql.ErrNoRows) {
		return types.CheckResult{Status: types.CheckOK}, nil
	}
	if err != nil {
		return types.CheckResult{}, fmt.Errorf("shouldProcess read for %s: %w", name, err)
	}

	if types.DomainStatus(status) == types.DomainBlacklisted {
		return types.CheckResult{Status: types.CheckSkipBlacklisted, Reason: reason}, nil
	}
	if types.DomainStatus(status) == types.DomainNoFunds && now.Unix() < revisitAfter {
		return types.CheckResult{
			Status: types.CheckSkipNoFunds,
			Until:  time.Unix(revisitAfter, 0),
		}, nil
	}
	if lockExpires > now.Unix() {
		return types.CheckResult{Status: types.CheckSkipProcessing}, nil
	}
	if lastProcessed > 0 {
		cooldownEnd := time.Unix(lastProcessed, 0).Add(r.cooldown)
		if now.Before(cooldownEnd) {
			return types.CheckResult{Status: types.CheckSkipRecent, Until: cooldownEnd}, nil
		}
	}
	if nextRetryAt > now.Unix() {
		return types.CheckResult{
			Status: types.CheckSkipRecent,
			Reason: "transient-failure backoff",
			Until:  time.Unix(nextRetryAt, 0),
		}, nil
	}
	return types.CheckResult{Status: types.CheckOK}, nil
}

// RegisterOrGet inserts the domain on first sighting or bumps last_seen_at
// and discovery_count on every later one. Idempotent on domain identity:
// calling twice yields the same row with discovery_count incremented once per
// call.
func (r *Registry) RegisterOrGet(ctx context.Context, domainName, sessionID string) (types.Domain, error) {
	name := types.NormalizeDomain(domainName)
	now := r.clock.Now().Unix()

	ctx, cancel := r.txContext(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO domain (domain_name, status, first_discovered_at, last_seen_at, discovery_count)
		VALUES (?, 'ACTIVE', ?, ?, 1)
		ON CONFLICT(domain_name) DO UPDATE SET
			last_seen_at = excluded.last_seen_at,
			discovery_count = domain.discovery_count + 1`,
		name, now, now)
	if err != nil {
		return types.Domain{}, fmt.Errorf("registerOrGet upsert for %s: %w", name, err)
	}

	d, err := r.getDomain(ctx, name)
	if err != nil {
		return types.Domain{}, err
	}
	logging.RegistryDebug("registerOrGet %s: id=%d count=%d (session %s)", name, d.ID, d.DiscoveryCount, sessionID)
	return d, nil
}

func (r *Registry) getDomain(ctx context.Context, name string) (types.Domain, error) {
	var (
		d                                                 types.Domain
		firstSeen, lastSeen, lastProc, blAt, revisit, nra int64
		best                                              string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, domain_name, status, first_discovered_at, last_seen_at, discovery_count,
		       last_processed_at, best_confidence_score, high_quality_candidate_count,
		       low_quality_candidate_count, blacklist_reason, blacklisted_by, blacklisted_at,
		       no_funds_reason, revisit_after, failure_count, next_retry_at
		FROM domain WHERE domain_name = ?`, name).
		Scan(&d.ID, &d.Name, &d.Status, &firstSeen, &lastSeen, &d.DiscoveryCount,
			&lastProc, &best, &d.HighQualityCount,
			&d.LowQualityCount, &d.BlacklistReason, &d.BlacklistedBy, &blAt,
			&d.NoFundsReason, &revisit, &d.FailureCount, &nra)
	if err != nil {
		return types.Domain{}, fmt.Errorf("read domain %s: %w", name, err)
	}
	d.FirstDiscovered = time.Unix(firstSeen, 0)
	d.LastSeen = time.Unix(lastSeen, 0)
	if lastProc > 0 {
		d.LastProcessed = time.Unix(lastProc, 0)
	}
	if blAt > 0 {
		d.BlacklistedAt = time.Unix(blAt, 0)
	}
	if revisit > 0 {
		d.RevisitAfter = time.Unix(revisit, 0)
	}
	if nra > 0 {
		d.NextRetryAt = time.Unix(nra, 0)
	}
	d.BestConfidence, err = decimal.NewFromString(best)
	if err != nil {
		return types.Domain{}, fmt.Errorf("corrupt best_confidence_score %q for %s: %w", best, name, err)
	}
	return d, nil
}

// GetDomain returns the domain row for a normalized or raw host name.
func (r *Registry) GetDomain(ctx context.Context, domainName string) (types.Domain, error) {
	ctx, cancel := r.txContext(ctx)
	defer cancel()
	return r.getDomain(ctx, types.NormalizeDomain(domainName))
}

// AcquireProcessingLock takes the non-blocking row lease for a domain. An
// expired lease counts as free. Returns false when another worker holds a
// live lease. Non-reentrant: the holder cannot re-acquire before expiry.
func (r *Registry) AcquireProcessingLock(ctx context.Context, domainID int64, workerID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = r.lockTTL
	}
	now := r.clock.Now()

	ctx, cancel := r.txContext(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE domain SET locked_by = ?, lock_expires_at = ?
		WHERE id = ? AND lock_expires_at <= ?`,
		workerID, now.Add(ttl).Unix(), domainID, now.Unix())
	if err != nil {
		return false, fmt.Errorf("acquire lock for domain %d: %w", domainID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("acquire lock rows for domain %d: %w", domainID, err)
	}
	if n == 0 {
		logging.RegistryDebug("lock contention on domain %d (worker %s)", domainID, workerID)
		return false, nil
	}
	return true, nil
}

// ReleaseProcessingLock frees the lease if the worker still holds it. After
// lease expiry another worker may own the row; the release is then a no-op,
// which is the best-effort semantics the lease model demands.
func (r *Registry) ReleaseProcessingLock(ctx context.Context, domainID int64, workerID string) error {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		UPDATE domain SET locked_by = '', lock_expires_at = 0
		WHERE id = ? AND locked_by = ?`, domainID, workerID)
	if err != nil {
		return fmt.Errorf("release lock for domain %d: %w", domainID, err)
	}
	return nil
}

// RecordProcessing appends a processing-log row and updates the domain's
// last_processed_at plus the quality counters for candidate outcomes. The
// counters only move forward; best_confidence_score only improves.
func (r *Registry) RecordProcessing(ctx context.Context, domainID int64, sessionID, candidateID string, outcome types.Outcome, confidence decimal.Decimal) error {
	now := r.clock.Now().Unix()

	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recordProcessing begin for domain %d: %w", domainID, err)
	}
	defer tx.Rollback()

	var cand interface{}
	if candidateID != "" {
		cand = candidateID
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO domain_processing_log (domain_id, processed_at, discovery_session_id, candidate_id, outcome)
		VALUES (?, ?, ?, ?, ?)`,
		domainID, now, sessionID, cand, string(outcome)); err != nil {
		return fmt.Errorf("recordProcessing log insert for domain %d: %w", domainID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE domain SET last_processed_at = ? WHERE id = ?`, now, domainID); err != nil {
		return fmt.Errorf("recordProcessing touch for domain %d: %w", domainID, err)
	}

	switch outcome {
	case types.OutcomeCandidateCreated:
		if _, err := tx.ExecContext(ctx, `
			UPDATE domain SET
				high_quality_candidate_count = high_quality_candidate_count + 1,
				failure_count = 0, next_retry_at = 0,
				best_confidence_score = MAX(best_confidence_score, ?)
			WHERE id = ?`, confidence.StringFixed(2), domainID); err != nil {
			return fmt.Errorf("recordProcessing counters for domain %d: %w", domainID, err)
		}
	case types.OutcomeSkippedLowScore:
		if _, err := tx.ExecContext(ctx, `
			UPDATE domain SET
				low_quality_candidate_count = low_quality_candidate_count + 1,
				best_confidence_score = MAX(best_confidence_score, ?)
			WHERE id = ?`, confidence.StringFixed(2), domainID); err != nil {
			return fmt.Errorf("recordProcessing counters for domain %d: %w", domainID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recordProcessing commit for domain %d: %w", domainID, err)
	}
	logging.RegistryDebug("recorded %s for domain %d (session %s)", outcome, domainID, sessionID)
	return nil
}

// RecordSkip appends a processing-log row for a skip outcome without
// touching last_processed_at: a skip is not a processing pass and must not
// extend the cool-down.
func (r *Registry) RecordSkip(ctx context.Context, domainID int64, sessionID string, outcome types.Outcome) error {
	now := r.clock.Now().Unix()

	ctx, cancel := r.txContext(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO domain_processing_log (domain_id, processed_at, discovery_session_id, candidate_id, outcome)
		VALUES (?, ?, ?, NULL, ?)`,
		domainID, now, sessionID, string(outcome))
	if err != nil {
		return fmt.Errorf("recordSkip %s for domain %d: %w", outcome, domainID, err)
	}
	return nil
}

// ProcessingLog returns a domain's history, oldest first.
func (r *Registry) ProcessingLog(ctx context.Context, domainID int64) ([]types.ProcessingLogEntry, error) {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT domain_id, processed_at, discovery_session_id, COALESCE(candidate_id, ''), outcome
		FROM domain_processing_log WHERE domain_id = ? ORDER BY id`, domainID)
	if err != nil {
		return nil, fmt.Errorf("processingLog query for domain %d: %w", domainID, err)
	}
	defer rows.Close()

	var out []types.ProcessingLogEntry
	for rows.Next() {
		var e types.ProcessingLogEntry
		var processedAt int64
		var outcome string
		if err := rows.Scan(&e.DomainID, &processedAt, &e.SessionID, &e.CandidateID, &outcome); err != nil {
			return nil, fmt.Errorf("processingLog scan for domain %d: %w", domainID, err)
		}
		e.ProcessedAt = time.Unix(processedAt, 0)
		e.Outcome = types.Outcome(outcome)
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkTransientFailure bumps the failure counter and schedules the next
// retry; the domain automatically re-enters the ACTIVE pool once next_retry_at
// passes (enforced in ShouldProcess).
func (r *Registry) MarkTransientFailure(ctx context.Context, domainID int64, nextRetryAt time.Time) error {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		UPDATE domain SET failure_count = failure_count + 1, next_retry_at = ?
		WHERE id = ?`, nextRetryAt.Unix(), domainID)
	if err != nil {
		return fmt.Errorf("markTransientFailure for domain %d: %w", domainID, err)
	}
	return nil
}

// Blacklist is the authoritative terminal transition. The domain row is
// created if it was never seen. Emits a domain-status-change event and
// invalidates the blacklist cache entry.
func (r *Registry) Blacklist(ctx context.Context, domainName, reason, actor string) error {
	name := types.NormalizeDomain(domainName)
	now := r.clock.Now()

	tctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(tctx, nil)
	if err != nil {
		return fmt.Errorf("blacklist begin for %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(tctx, `
		INSERT INTO domain (domain_name, status, first_discovered_at, last_seen_at, discovery_count)
		VALUES (?, 'ACTIVE', ?, ?, 0)
		ON CONFLICT(domain_name) DO NOTHING`, name, now.Unix(), now.Unix()); err != nil {
		return fmt.Errorf("blacklist ensure-row for %s: %w", name, err)
	}

	var oldStatus string
	if err := tx.QueryRowContext(tctx,
		`SELECT status FROM domain WHERE domain_name = ?`, name).Scan(&oldStatus); err != nil {
		return fmt.Errorf("blacklist read for %s: %w", name, err)
	}

	if _, err := tx.ExecContext(tctx, `
		UPDATE domain SET status = 'BLACKLISTED', blacklist_reason = ?, blacklisted_by = ?, blacklisted_at = ?
		WHERE domain_name = ?`, reason, actor, now.Unix(), name); err != nil {
		return fmt.Errorf("blacklist update for %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("blacklist commit for %s: %w", name, err)
	}

	r.blacklistCache.Delete(name)
	logging.Registry("blacklisted %s (%s) by %s", name, reason, actor)

	if err := r.pub.PublishDomainStatusChange(ctx, events.DomainStatusChange{
		DomainName: name,
		OldStatus:  oldStatus,
		NewStatus:  string(types.DomainBlacklisted),
		Reason:     reason,
		Actor:      actor,
		Timestamp:  now,
	}); err != nil {
		// The transition is already durable; a bus hiccup is not a rollback.
		logging.RegistryError("failed to publish status change for %s: %v", name, err)
	}
	return nil
}

// LiftBlacklist returns a blacklisted domain to the ACTIVE pool. Operator
// action only.
func (r *Registry) LiftBlacklist(ctx context.Context, domainName, actor string) error {
	name := types.NormalizeDomain(domainName)
	now := r.clock.Now()

	tctx, cancel := r.txContext(ctx)
	defer cancel()

	res, err := r.db.ExecContext(tctx, `
		UPDATE domain SET status = 'ACTIVE', blacklist_reason = '', blacklisted_by = '', blacklisted_at = 0
		WHERE domain_name = ? AND status = 'BLACKLISTED'`, name)
	if err != nil {
		return fmt.Errorf("liftBlacklist for %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("liftBlacklist rows for %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("domain %s is not blacklisted", name)
	}

	r.blacklistCache.Delete(name)
	logging.Registry("blacklist lifted for %s by %s", name, actor)

	if err := r.pub.PublishDomainStatusChange(ctx, events.DomainStatusChange{
		DomainName: name,
		OldStatus:  string(types.DomainBlacklisted),
		NewStatus:  string(types.DomainActive),
		Reason:     "blacklist lifted",
		Actor:      actor,
		Timestamp:  now,
	}); err != nil {
		logging.RegistryError("failed to publish status change for %s: %v", name, err)
	}
	return nil
}

// MarkNoFunds records that a domain has no funds this cycle; it re-enters the
// ACTIVE pool automatically once revisitAfter passes.
func (r *Registry) MarkNoFunds(ctx context.Context, domainName, reason string, revisitAfter time.Time, actor string) error {
	name := types.NormalizeDomain(domainName)
	now := r.clock.Now()

	tctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(tctx, nil)
	if err != nil {
		return fmt.Errorf("markNoFunds begin for %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(tctx, `
		INSERT INTO domain (domain_name, status, first_discovered_at, last_seen_at, discovery_count)
		VALUES (?, 'ACTIVE', ?, ?, 0)
		ON CONFLICT(domain_name) DO NOTHING`, name, now.Unix(), now.Unix()); err != nil {
		return fmt.Errorf("markNoFunds ensure-row for %s: %w", name, err)
	}

	var oldStatus string
	if err := tx.QueryRowContext(tctx,
		`SELECT status FROM domain WHERE domain_name = ?`, name).Scan(&oldStatus); err != nil {
		return fmt.Errorf("markNoFunds read for %s: %w", name, err)
	}
	if types.DomainStatus(oldStatus) == types.DomainBlacklisted {
		return fmt.Errorf("domain %s is blacklisted; lift the blacklist first", name)
	}

	if _, err := tx.ExecContext(tctx, `
		UPDATE domain SET status = 'NO_FUNDS_CURRENT_YEAR', no_funds_reason = ?, revisit_after = ?
		WHERE domain_name = ?`, reason, revisitAfter.Unix(), name); err != nil {
		return fmt.Errorf("markNoFunds update for %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("markNoFunds commit for %s: %w", name, err)
	}
	logging.Registry("marked %s NO_FUNDS until %v by %s", name, revisitAfter, actor)

	if err := r.pub.PublishDomainStatusChange(ctx, events.DomainStatusChange{
		DomainName: name,
		OldStatus:  oldStatus,
		NewStatus:  string(types.DomainNoFunds),
		Reason:     reason,
		Actor:      actor,
		Timestamp:  now,
	}); err != nil {
		logging.RegistryError("failed to publish status change for %s: %v", name, err)
	}
	return nil
}

// IsBlacklisted is the fast read used by the pipeline's stage 4. Unknown
// domains and read errors both answer false: the pipeline must not lose a
// result to a cache or store hiccup, and a false negative only costs a score.
func (r *Registry) IsBlacklisted(ctx context.Context, domainName string) bool {
	name := types.NormalizeDomain(domainName)

	if v, found := r.blacklistCache.Get(name); found {
		return v.(bool)
	}

	ctx, cancel := r.txContext(ctx)
	defer cancel()

	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM domain WHERE domain_name = ?`, name).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		r.blacklistCache.SetDefault(name, false)
		return false
	}
	if err != nil {
		logging.RegistryError("isBlacklisted read for %s: %v", name, err)
		return false
	}

	black := types.DomainStatus(status) == types.DomainBlacklisted
	r.blacklistCache.SetDefault(name, black)
	return black
}

// ReleaseExpired is the maintenance sweep: expired leases are cleared and
// NO_FUNDS domains whose revisit window has passed return to ACTIVE. Both
// transitions also happen lazily in ShouldProcess / AcquireProcessingLock;
// the sweep just keeps the table tidy between sessions.
func (r *Registry) ReleaseExpired(ctx context.Context) (locksCleared, domainsReactivated int64, err error) {
	now := r.clock.Now().Unix()

	ctx, cancel := r.txContext(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE domain SET locked_by = '', lock_expires_at = 0
		WHERE lock_expires_at > 0 AND lock_expires_at <= ?`, now)
	if err != nil {
		return 0, 0, fmt.Errorf("release expired locks: %w", err)
	}
	locksCleared, _ = res.RowsAffected()

	res, err = r.db.ExecContext(ctx, `
		UPDATE domain SET status = 'ACTIVE', no_funds_reason = '', revisit_after = 0
		WHERE status = 'NO_FUNDS_CURRENT_YEAR' AND revisit_after > 0 AND revisit_after <= ?`, now)
	if err != nil {
		return locksCleared, 0, fmt.Errorf("reactivate no-funds domains: %w", err)
	}
	domainsReactivated, _ = res.RowsAffected()

	if locksCleared > 0 || domainsReactivated > 0 {
		logging.Registry("maintenance sweep: %d locks cleared, %d domains reactivated", locksCleared, domainsReactivated)
	}
	return locksCleared, domainsReactivated, nil
}
