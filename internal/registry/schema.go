package registry

// The relational schema is authoritative; in-memory mapping is manual and
// narrow (each transaction reads only the columns it needs). Timestamps are
// unix seconds; zero means "never". Confidence decimals are stored as text to
// keep scale-2 precision exact.
const schema = `
CREATE TABLE IF NOT EXISTS domain (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	domain_name TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL DEFAULT 'ACTIVE',
	first_discovered_at INTEGER NOT NULL,
	last_seen_at INTEGER NOT NULL,
	discovery_count INTEGER NOT NULL DEFAULT 1,
	last_processed_at INTEGER NOT NULL DEFAULT 0,
	best_confidence_score TEXT NOT NULL DEFAULT '0.00',
	high_quality_candidate_count INTEGER NOT NULL DEFAULT 0,
	low_quality_candidate_count INTEGER NOT NULL DEFAULT 0,
	blacklist_reason TEXT NOT NULL DEFAULT '',
	blacklisted_by TEXT NOT NULL DEFAULT '',
	blacklisted_at INTEGER NOT NULL DEFAULT 0,
	no_funds_reason TEXT NOT NULL DEFAULT '',
	revisit_after INTEGER NOT NULL DEFAULT 0,
	failure_count INTEGER NOT NULL DEFAULT 0,
	next_retry_at INTEGER NOT NULL DEFAULT 0,
	locked_by TEXT NOT NULL DEFAULT '',
	lock_expires_at INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_domain_status ON domain(status);
CREATE INDEX IF NOT EXISTS idx_domain_last_processed ON domain(last_processed_at);

CREATE TABLE IF NOT EXISTS domain_processing_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	domain_id INTEGER NOT NULL REFERENCES domain(id),
	processed_at INTEGER NOT NULL,
	discovery_session_id TEXT NOT NULL,
	candidate_id TEXT,
	outcome TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_processing_log_domain ON domain_processing_log(domain_id);
CREATE INDEX IF NOT EXISTS idx_processing_log_session ON domain_processing_log(discovery_session_id);

CREATE TABLE IF NOT EXISTS funding_source_candidate (
	id TEXT PRIMARY KEY,
	domain_id INTEGER NOT NULL REFERENCES domain(id),
	discovery_session_id TEXT NOT NULL,
	source_url TEXT NOT NULL,
	organization_name TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	confidence_score TEXT NOT NULL,
	status TEXT NOT NULL,
	discovered_at INTEGER NOT NULL,
	discovered_by TEXT NOT NULL DEFAULT 'SYSTEM',
	raw_metadata TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_candidate_domain ON funding_source_candidate(domain_id);
CREATE INDEX IF NOT EXISTS idx_candidate_session ON funding_source_candidate(discovery_session_id);

CREATE TABLE IF NOT EXISTS discovery_session (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	completed_at INTEGER NOT NULL DEFAULT 0,
	target_day_of_week INTEGER NOT NULL,
	query_count INTEGER NOT NULL DEFAULT 0,
	total_results INTEGER NOT NULL DEFAULT 0,
	spam_tld_filtered INTEGER NOT NULL DEFAULT 0,
	blacklisted_skipped INTEGER NOT NULL DEFAULT 0,
	duplicates_skipped INTEGER NOT NULL DEFAULT 0,
	high_confidence_created INTEGER NOT NULL DEFAULT 0,
	low_confidence_created INTEGER NOT NULL DEFAULT 0,
	invalid_urls_skipped INTEGER NOT NULL DEFAULT 0,
	recent_skipped INTEGER NOT NULL DEFAULT 0,
	transient_failures INTEGER NOT NULL DEFAULT 0
);
`
