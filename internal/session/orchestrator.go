// Package session orchestrates one nightly discovery run end to end: plan
// the batch, expand it to queries, fan out across search backends, pipe every
// result through the candidate pipeline, and persist the session record.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"fundscout/internal/logging"
	"fundscout/internal/pipeline"
	"fundscout/internal/planner"
	"fundscout/internal/querygen"
	"fundscout/internal/registry"
	"fundscout/internal/search"
	"fundscout/internal/types"
)

// Orchestrator owns the wiring for nightly runs. Build one at startup and
// reuse it; every RunNightly call is an independent session.
type Orchestrator struct {
	planner  *planner.Planner
	gen      *querygen.Generator
	fanout   *search.Fanout
	pipe     *pipeline.Pipeline
	reg      *registry.Registry
	deadline time.Duration // soft wall-clock budget for one session
}

// New wires an orchestrator. deadline <= 0 means 2 hours.
func New(pl *planner.Planner, gen *querygen.Generator, f *search.Fanout, pipe *pipeline.Pipeline, reg *registry.Registry, deadline time.Duration) *Orchestrator {
	if deadline <= 0 {
		deadline = 2 * time.Hour
	}
	return &Orchestrator{
		planner:  pl,
		gen:      gen,
		fanout:   f,
		pipe:     pipe,
		reg:      reg,
		deadline: deadline,
	}
}

// RunNightly executes the discovery session for the given date and returns
// the completed session record. The deadline is soft: on breach the fanout
// drains and workers finish their current result, and the partial statistics
// are still persisted.
func (o *Orchestrator) RunNightly(ctx context.Context, date time.Time) (types.DiscoverySession, error) {
	sess := types.DiscoverySession{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		TargetDay: date.Weekday(),
	}

	// Tidy up leases and revisit windows left over from earlier sessions.
	if locks, reactivated, err := o.reg.ReleaseExpired(ctx); err != nil {
		logging.SessionDebug("maintenance sweep failed: %v", err)
	} else if locks > 0 || reactivated > 0 {
		logging.Session("pre-session sweep: %d locks cleared, %d domains reactivated", locks, reactivated)
	}

	batch := o.planner.PlanDailyBatch(date)
	for _, req := range batch {
		sess.QueryCount += req.NumberOfQueries
	}
	if err := o.reg.CreateSession(ctx, sess); err != nil {
		return types.DiscoverySession{}, fmt.Errorf("creating session: %w", err)
	}

	sctx, cancel := context.WithTimeout(ctx, o.deadline)
	defer cancel()

	queries := o.expandBatch(sctx, batch)
	logging.Session("session %s: %d requests expanded to %d queries", sess.ID, len(batch), len(queries))

	results, fanStats := o.fanout.Execute(sctx, queries)
	stats := o.pipe.Run(sctx, sess.ID, results)

	// Complete outside the cancellation chain: a breached deadline or a
	// cancelled session must not lose the statistics. The registry's own tx
	// timeout still bounds the write.
	if err := o.reg.CompleteSession(context.WithoutCancel(ctx), sess.ID, stats); err != nil {
		return types.DiscoverySession{}, fmt.Errorf("completing session: %w", err)
	}
	sess.CompletedAt = time.Now()
	sess.Stats = stats

	logging.Session("session %s done: %d/%d queries succeeded, %d results, %d candidates",
		sess.ID, fanStats.QueriesRun.Load()-fanStats.QueriesFailed.Load(), fanStats.QueriesRun.Load(),
		stats.TotalResults, stats.TotalCandidatesCreated())
	return sess, nil
}

// expandBatch runs the query generator over the batch with a small worker
// group; LLM latency dominates, not CPU. Output order follows the batch, so
// the whole ladder stays deterministic when the generator falls back to
// templates.
func (o *Orchestrator) expandBatch(ctx context.Context, batch []types.QueryRequest) []search.Query {
	expanded := make([][]search.Query, len(batch))

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for i, req := range batch {
		i, req := i, req
		eg.Go(func() error {
			for _, text := range o.gen.Generate(ectx, req) {
				expanded[i] = append(expanded[i], search.Query{Text: text, Request: req})
			}
			return nil
		})
	}
	eg.Wait()

	return lo.Flatten(expanded)
}
