// Package pipeline applies the per-result stage sequence to everything the
// search fanout produces: extract domain, spam gate, in-session dedupe,
// blacklist check, score, threshold, persist. A fixed worker pool consumes
// the result channel; results are independent until they touch the registry.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fundscout/internal/events"
	"fundscout/internal/judge"
	"fundscout/internal/logging"
	"fundscout/internal/registry"
	"fundscout/internal/types"
)

// Options tune the pipeline. Zero values get defaults.
type Options struct {
	Threshold            decimal.Decimal // inclusive; zero value means 0.60
	Workers              int
	PersistLowConfidence bool
	MaxAttempts          int           // registry retry attempts per result
	RetryBaseDelay       time.Duration // first backoff step
	LockTTL              time.Duration
}

// Scorer is the judge surface the pipeline needs: the spam-TLD gate and the
// metadata verdict.
type Scorer interface {
	IsSpamTLD(domain string) bool
	Evaluate(res types.SearchResult) judge.Verdict
}

// Pipeline is safe for one Run at a time per instance; the session-local
// dedupe set belongs to the Run call, not the instance.
type Pipeline struct {
	reg  *registry.Registry
	jdg  Scorer
	pub  events.Publisher
	opts Options
}

// New wires a pipeline over its collaborators.
func New(reg *registry.Registry, jdg Scorer, pub events.Publisher, opts Options) *Pipeline {
	if opts.Threshold.IsZero() {
		opts.Threshold = decimal.RequireFromString("0.60")
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = 250 * time.Millisecond
	}
	if pub == nil {
		pub = events.LogPublisher{}
	}
	return &Pipeline{reg: reg, jdg: jdg, pub: pub, opts: opts}
}

// counters mirrors types.ProcessingStatistics with atomics for the workers.
type counters struct {
	totalResults          atomic.Int64
	spamTLDFiltered       atomic.Int64
	blacklistedSkipped    atomic.Int64
	duplicatesSkipped     atomic.Int64
	highConfidenceCreated atomic.Int64
	lowConfidenceCreated  atomic.Int64
	invalidURLsSkipped    atomic.Int64
	recentSkipped         atomic.Int64
	transientFailures     atomic.Int64
}

func (c *counters) snapshot() types.ProcessingStatistics {
	return types.ProcessingStatistics{
		TotalResults:          c.totalResults.Load(),
		SpamTLDFiltered:       c.spamTLDFiltered.Load(),
		BlacklistedSkipped:    c.blacklistedSkipped.Load(),
		DuplicatesSkipped:     c.duplicatesSkipped.Load(),
		HighConfidenceCreated: c.highConfidenceCreated.Load(),
		LowConfidenceCreated:  c.lowConfidenceCreated.Load(),
		InvalidURLsSkipped:    c.invalidURLsSkipped.Load(),
		RecentSkipped:         c.recentSkipped.Load(),
		TransientFailures:     c.transientFailures.Load(),
	}
}

// seenSet is the session-local dedupe set. Add is a single insert-or-found
// operation.
type seenSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newSeenSet() *seenSet {
	return &seenSet{seen: make(map[string]struct{})}
}

// Add returns false when the domain was already present.
func (s *seenSet) Add(domain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[domain]; ok {
		return false
	}
	s.seen[domain] = struct{}{}
	return true
}

// Run consumes results until the channel closes or ctx is cancelled. Workers
// finish their current result on cancellation, so the partial statistics are
// always consistent. Returns the session's statistics.
func (p *Pipeline) Run(ctx context.Context, sessionID string, results <-chan types.SearchResult) types.ProcessingStatistics {
	stats := &counters{}
	seen := newSeenSet()

	eg := &errgroup.Group{}
	for w := 0; w < p.opts.Workers; w++ {
		workerID := fmt.Sprintf("%s-w%d", sessionID, w)
		eg.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case res, ok := <-results:
					if !ok {
						return nil
					}
					p.processOne(ctx, sessionID, workerID, res, seen, stats)
				}
			}
		})
	}
	eg.Wait()

	out := stats.snapshot()
	logging.Pipeline("session %s processed %d results: %d candidates, %d skipped as duplicate, %d blacklisted, %d spam, %d recent, %d invalid, %d transient",
		sessionID, out.TotalResults, out.TotalCandidatesCreated(), out.DuplicatesSkipped,
		out.BlacklistedSkipped, out.SpamTLDFiltered, out.RecentSkipped, out.InvalidURLsSkipped, out.TransientFailures)
	return out
}

// processOne applies the ordered stages to one result. Every exit path bumps
// exactly one counter.
func (p *Pipeline) processOne(ctx context.Context, sessionID, workerID string, res types.SearchResult, seen *seenSet, stats *counters) {
	stats.totalResults.Add(1)

	// Stage 1: extract and validate the domain.
	domain, err := types.ExtractDomain(res.URL)
	if err != nil {
		stats.invalidURLsSkipped.Add(1)
		logging.PipelineDebug("invalid url %q: %v", res.URL, err)
		return
	}

	// Stage 2: spam-TLD gate, before dedupe so spam never claims a seen slot.
	if p.jdg.IsSpamTLD(domain) {
		stats.spamTLDFiltered.Add(1)
		logging.PipelineDebug("spam tld: %s", domain)
		return
	}

	// Stage 3: in-session dedupe. The duplicate result is dropped but the
	// sighting still counts: last-seen and discovery-count advance, and the
	// skip lands in the processing log.
	if !seen.Add(domain) {
		stats.duplicatesSkipped.Add(1)
		d, err := p.reg.RegisterOrGet(ctx, domain, sessionID)
		if err != nil {
			logging.PipelineError("registering duplicate sighting of %s: %v", domain, err)
			return
		}
		if err := p.reg.RecordSkip(ctx, d.ID, sessionID, types.OutcomeSkippedDuplicate); err != nil {
			logging.PipelineError("recording duplicate sighting of %s: %v", domain, err)
		}
		return
	}

	// Stage 4: blacklist.
	if p.reg.IsBlacklisted(ctx, domain) {
		stats.blacklistedSkipped.Add(1)
		p.logSkip(ctx, sessionID, domain, types.OutcomeSkippedBlacklisted)
		return
	}

	// Stage 5: score. Always computed once stages 1-4 pass.
	verdict := p.jdg.Evaluate(res)
	logging.PipelineDebug("scored %s at %s (funding=%s cred=%s geo=%s org=%s)",
		domain, verdict.Score, verdict.Funding, verdict.Credibility, verdict.Geography, verdict.OrgType)

	// Stage 6: threshold.
	if verdict.Score.LessThan(p.opts.Threshold) {
		stats.lowConfidenceCreated.Add(1)
		if p.opts.PersistLowConfidence {
			if err := p.persistResult(ctx, sessionID, workerID, domain, res, verdict.Score, false); err != nil {
				logging.PipelineError("audit persist for %s failed: %v", domain, err)
			}
		}
		return
	}

	// Stage 7: persist the candidate, with retries on transient registry
	// errors within this result's budget.
	var lastErr error
	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(p.opts.RetryBaseDelay << uint(attempt-2)):
			case <-ctx.Done():
				stats.transientFailures.Add(1)
				return
			}
		}

		outcome, err := p.persistCandidate(ctx, sessionID, workerID, domain, res, verdict.Score)
		if err == nil {
			switch outcome {
			case types.OutcomeCandidateCreated:
				stats.highConfidenceCreated.Add(1)
			case types.OutcomeSkippedRecent:
				stats.recentSkipped.Add(1)
			case types.OutcomeSkippedBlacklisted:
				stats.blacklistedSkipped.Add(1)
			}
			return
		}
		lastErr = err
	}

	stats.transientFailures.Add(1)
	logging.PipelineError("persisting %s failed after %d attempts: %v", domain, p.opts.MaxAttempts, lastErr)
	p.markFailed(ctx, sessionID, domain)
}

// persistCandidate is one attempt at stage 7. A skip decision is a success
// with a non-created outcome; an error is worth retrying.
func (p *Pipeline) persistCandidate(ctx context.Context, sessionID, workerID, domain string, res types.SearchResult, score decimal.Decimal) (types.Outcome, error) {
	check, err := p.reg.ShouldProcess(ctx, domain)
	if err != nil {
		return "", err
	}
	switch check.Status {
	case types.CheckSkipBlacklisted:
		return types.OutcomeSkippedBlacklisted, nil
	case types.CheckSkipRecent, types.CheckSkipNoFunds, types.CheckSkipProcessing:
		logging.PipelineDebug("skipping %s: %s until %v", domain, check.Status, check.Until)
		return types.OutcomeSkippedRecent, nil
	}

	if err := p.persistResult(ctx, sessionID, workerID, domain, res, score, true); err != nil {
		return "", err
	}
	return types.OutcomeCandidateCreated, nil
}

// persistResult registers the domain, takes the processing lease, writes the
// candidate row (PENDING_CRAWL above threshold, audit row below), records the
// outcome and publishes the event. The lease is released on every path.
func (p *Pipeline) persistResult(ctx context.Context, sessionID, workerID, domain string, res types.SearchResult, score decimal.Decimal, aboveThreshold bool) error {
	d, err := p.reg.RegisterOrGet(ctx, domain, sessionID)
	if err != nil {
		return err
	}

	locked, err := p.reg.AcquireProcessingLock(ctx, d.ID, workerID, p.opts.LockTTL)
	if err != nil {
		return err
	}
	if !locked {
		return fmt.Errorf("domain %s is locked by another worker", domain)
	}
	defer func() {
		if err := p.reg.ReleaseProcessingLock(ctx, d.ID, workerID); err != nil {
			logging.PipelineError("releasing lock for %s: %v", domain, err)
		}
	}()

	status := types.CandidatePendingCrawl
	outcome := types.OutcomeCandidateCreated
	if !aboveThreshold {
		status = types.CandidateLowConfidence
		outcome = types.OutcomeSkippedLowScore
	}

	cand := types.Candidate{
		ID:           uuid.NewString(),
		DomainID:     d.ID,
		SessionID:    sessionID,
		SourceURL:    res.URL,
		OrgName:      strings.TrimSpace(res.Title),
		Description:  strings.TrimSpace(res.Description),
		Confidence:   score,
		Status:       status,
		DiscoveredAt: time.Now(),
		DiscoveredBy: "SYSTEM",
		RawMetadata:  fmt.Sprintf("%s | %s | %s", res.Title, res.Description, res.Backend),
	}
	if err := p.reg.InsertCandidate(ctx, cand); err != nil {
		return err
	}
	if err := p.reg.RecordProcessing(ctx, d.ID, sessionID, cand.ID, outcome, score); err != nil {
		return err
	}

	if aboveThreshold {
		if err := p.pub.PublishCandidateCreated(ctx, events.CandidateCreated{
			CandidateID: cand.ID,
			DomainName:  domain,
			SourceURL:   res.URL,
			Confidence:  score.StringFixed(2),
			SessionID:   sessionID,
			Timestamp:   time.Now(),
		}); err != nil {
			// The candidate is durable; consumers reconcile from the store.
			logging.PipelineError("publishing candidate %s: %v", cand.ID, err)
		}
		logging.Pipeline("candidate created: %s (%s, confidence %s)", domain, cand.ID, score.StringFixed(2))
	}
	return nil
}

func (p *Pipeline) logSkip(ctx context.Context, sessionID, domain string, outcome types.Outcome) {
	d, err := p.reg.GetDomain(ctx, domain)
	if err != nil {
		return
	}
	if err := p.reg.RecordSkip(ctx, d.ID, sessionID, outcome); err != nil {
		logging.PipelineError("recording %s for %s: %v", outcome, domain, err)
	}
}

// markFailed schedules the domain for a later session after a persistent
// transient failure. Best effort: if even this write fails, the domain just
// stays eligible.
func (p *Pipeline) markFailed(ctx context.Context, sessionID, domain string) {
	d, err := p.reg.RegisterOrGet(ctx, domain, sessionID)
	if err != nil {
		return
	}
	retryAt := time.Now().Add(time.Hour)
	if err := p.reg.MarkTransientFailure(ctx, d.ID, retryAt); err != nil {
		logging.PipelineError("marking transient failure for %s: %v", domain, err)
		return
	}
	if err := p.reg.RecordSkip(ctx, d.ID, sessionID, types.OutcomeFailedTransient); err != nil {
		logging.PipelineError("recording transient failure for %s: %v", domain, err)
	}
}
