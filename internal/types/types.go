// Package types provides shared type definitions used across fundscout
// packages. This package exists to break import cycles between the registry,
// the pipeline and the search layer. Types here are foundational data
// structures with no complex dependencies.
package types

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fundscout/internal/taxonomy"
)

// QueryRequest is a fully-specified discovery intent produced by the planner.
// Category, Scope and Backend are always set; the optional dimensions add
// keywords but never contradict the required ones. Immutable after creation.
type QueryRequest struct {
	Category        taxonomy.Category
	Scope           taxonomy.GeographicScope
	Backend         taxonomy.Backend
	NumberOfQueries int

	// Optional dimensions.
	FunderType      taxonomy.FunderType
	Mechanism       taxonomy.Mechanism
	ProjectScale    taxonomy.ProjectScale
	Beneficiaries   []taxonomy.Beneficiary
	RecipientType   taxonomy.RecipientType
	UserLanguage    string
	SearchLanguages []string
}

// Validate checks the request invariants: required dimensions present, known
// backend, positive query count.
func (q QueryRequest) Validate() error {
	if q.Category == "" {
		return fmt.Errorf("query request missing category")
	}
	if !q.Scope.Valid() {
		return fmt.Errorf("query request has invalid scope %q", q.Scope)
	}
	if !q.Backend.Valid() {
		return fmt.Errorf("query request has invalid backend %q", q.Backend)
	}
	if q.NumberOfQueries <= 0 {
		return fmt.Errorf("query request needs a positive query count, got %d", q.NumberOfQueries)
	}
	return nil
}

// SearchResult is the normalized output of a search backend. Transient; it
// lives only for the duration of one pipeline invocation.
type SearchResult struct {
	URL         string
	Title       string
	Description string
	Backend     taxonomy.Backend
	Query       string
	Position    int

	// Request is the originating intent, carried along for the judge.
	Request QueryRequest
}

// NormalizeDomain lowers the host and strips a leading "www." so the registry
// is case- and www-alias free. Deeper subdomains stay distinct on purpose:
// erasmus-plus.ec.europa.eu and ec.europa.eu are different funding surfaces.
func NormalizeDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimSuffix(host, ".")
	host = strings.TrimPrefix(host, "www.")
	return host
}

// ExtractDomain parses a result URL and returns the normalized host. An
// absolute URL with an extractable host is required; anything else is an
// INVALID_URL skip upstream.
func ExtractDomain(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("unparseable url %q: %w", rawURL, err)
	}
	if !u.IsAbs() || u.Hostname() == "" {
		return "", fmt.Errorf("url %q has no extractable host", rawURL)
	}
	host := NormalizeDomain(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("url %q normalizes to an empty host", rawURL)
	}
	return host, nil
}

// DomainStatus is the lifecycle state of a registered domain.
type DomainStatus string

const (
	DomainActive      DomainStatus = "ACTIVE"
	DomainBlacklisted DomainStatus = "BLACKLISTED"
	DomainNoFunds     DomainStatus = "NO_FUNDS_CURRENT_YEAR"
	DomainInactive    DomainStatus = "INACTIVE"
)

// Domain is the durable deduplication entity keyed by normalized host.
// Counters only ever increase; rows are never deleted, only transitioned.
type Domain struct {
	ID               int64
	Name             string
	Status           DomainStatus
	FirstDiscovered  time.Time
	LastSeen         time.Time
	DiscoveryCount   int64
	LastProcessed    time.Time // zero when never processed
	BestConfidence   decimal.Decimal
	HighQualityCount int64
	LowQualityCount  int64

	BlacklistReason string
	BlacklistedBy   string
	BlacklistedAt   time.Time

	NoFundsReason string
	RevisitAfter  time.Time

	FailureCount int64
	NextRetryAt  time.Time
}

// CheckStatus is the outcome of DomainRegistry.ShouldProcess.
type CheckStatus string

const (
	CheckOK              CheckStatus = "OK"
	CheckSkipBlacklisted CheckStatus = "SKIP_BLACKLISTED"
	CheckSkipNoFunds     CheckStatus = "SKIP_NO_FUNDS"
	CheckSkipRecent      CheckStatus = "SKIP_RECENT"
	CheckSkipProcessing  CheckStatus = "SKIP_PROCESSING"
)

// CheckResult carries the decision and, for skips, why and until when.
type CheckResult struct {
	Status CheckStatus
	Reason string
	Until  time.Time // cool-down end or revisit-after, when applicable
}

// Outcome is the terminal disposition of one processed result, recorded in
// the domain processing log.
type Outcome string

const (
	OutcomeCandidateCreated   Outcome = "CANDIDATE_CREATED"
	OutcomeSkippedBlacklisted Outcome = "SKIPPED_BLACKLISTED"
	OutcomeSkippedRecent      Outcome = "SKIPPED_RECENT"
	OutcomeSkippedDuplicate   Outcome = "SKIPPED_DUPLICATE_IN_SESSION"
	OutcomeSkippedSpamTLD     Outcome = "SKIPPED_SPAM_TLD"
	OutcomeSkippedLowScore    Outcome = "SKIPPED_LOW_CONFIDENCE"
	OutcomeSkippedInvalidURL  Outcome = "SKIPPED_INVALID_URL"
	OutcomeFailedTransient    Outcome = "FAILED_TRANSIENT"
)

// ProcessingLogEntry is one row of a domain's processing history.
type ProcessingLogEntry struct {
	DomainID    int64
	ProcessedAt time.Time
	SessionID   string
	CandidateID string // empty unless a candidate was created
	Outcome     Outcome
}

// CandidateStatus is the downstream lifecycle state of a candidate.
type CandidateStatus string

const (
	CandidatePendingCrawl  CandidateStatus = "PENDING_CRAWL"
	CandidateLowConfidence CandidateStatus = "SKIPPED_LOW_CONFIDENCE"
)

// Candidate is the durable record of a result that crossed the confidence
// threshold (or an audit row for one that did not, when so configured).
type Candidate struct {
	ID           string // uuid
	DomainID     int64
	SessionID    string
	SourceURL    string
	OrgName      string
	Description  string
	Confidence   decimal.Decimal // scale 2, 0.00..1.00
	Status       CandidateStatus
	DiscoveredAt time.Time
	DiscoveredBy string // always "SYSTEM" for pipeline inserts
	RawMetadata  string // title + description + backend, for audit
}

// ProcessingStatistics is the immutable end-of-session summary.
type ProcessingStatistics struct {
	TotalResults          int64
	SpamTLDFiltered       int64
	BlacklistedSkipped    int64
	DuplicatesSkipped     int64
	HighConfidenceCreated int64
	LowConfidenceCreated  int64
	InvalidURLsSkipped    int64
	RecentSkipped         int64
	TransientFailures     int64
}

// TotalCandidatesCreated is the derived high + low total.
func (s ProcessingStatistics) TotalCandidatesCreated() int64 {
	return s.HighConfidenceCreated + s.LowConfidenceCreated
}

// TotalProcessed sums every terminal outcome.
func (s ProcessingStatistics) TotalProcessed() int64 {
	return s.SpamTLDFiltered + s.BlacklistedSkipped + s.DuplicatesSkipped +
		s.HighConfidenceCreated + s.LowConfidenceCreated + s.InvalidURLsSkipped +
		s.RecentSkipped + s.TransientFailures
}

// DiscoverySession is the per-nightly-run aggregate.
type DiscoverySession struct {
	ID          string // uuid
	StartedAt   time.Time
	CompletedAt time.Time // zero while running
	TargetDay   time.Weekday
	QueryCount  int
	Stats       ProcessingStatistics
}
