package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fundscout/internal/config"
	"fundscout/internal/events"
	"fundscout/internal/judge"
	"fundscout/internal/pipeline"
	"fundscout/internal/planner"
	"fundscout/internal/querygen"
	"fundscout/internal/registry"
	"fundscout/internal/search"
	"fundscout/internal/session"
	"fundscout/internal/taxonomy"
)

var discoverDate string

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run one nightly discovery session",
	Long: `Runs the complete discovery ladder for a date: plan the day's batch,
expand queries, fan out across search backends, score and persist candidates.
Defaults to today.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date := time.Now()
		if discoverDate != "" {
			var err error
			date, err = time.Parse("2006-01-02", discoverDate)
			if err != nil {
				return fmt.Errorf("invalid --date %q (want YYYY-MM-DD): %w", discoverDate, err)
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pub := buildPublisher(ctx, cfg)
		defer pub.Close()

		reg, err := openRegistry(cfg, pub)
		if err != nil {
			return err
		}
		defer reg.Close()

		backends := buildBackends(cfg)
		if len(backends) == 0 {
			return fmt.Errorf("no search backend has an API key configured")
		}
		names := make([]taxonomy.Backend, 0, len(backends))
		for _, b := range backends {
			names = append(names, b.Name())
		}

		var llm querygen.LLMClient
		if cfg.LLM.APIKey != "" {
			llm = querygen.NewGeminiClient(querygen.GeminiConfig{
				APIKey:  cfg.LLM.APIKey,
				BaseURL: cfg.LLM.BaseURL,
				Model:   cfg.LLM.Model,
				Timeout: cfg.LLMTimeout(),
			})
		} else {
			logger.Warn("no LLM API key configured, query expansion runs template-only")
		}

		jdg, err := judge.New(cfg.Judge.Weights, cfg.Judge.SpamTLDs)
		if err != nil {
			return fmt.Errorf("invalid judge configuration: %w", err)
		}

		orch := session.New(
			planner.New(cfg.Planner.QueriesPerNight, cfg.Planner.QueriesPerRequest, names),
			querygen.New(llm, cfg.LLMTimeout()),
			search.NewFanout(backends, search.FanoutOptions{
				PerBackendLimits:   backendLimits(cfg),
				OverallConcurrency: int64(cfg.Search.FanoutLimit),
				PerQueryTimeout:    cfg.PerQueryTimeout(),
				ResultsPerQuery:    cfg.Search.ResultsPerQuery,
			}),
			pipeline.New(reg, jdg, pub, pipeline.Options{
				Threshold:            cfg.ConfidenceThreshold(),
				Workers:              cfg.Pipeline.Workers,
				PersistLowConfidence: cfg.Pipeline.PersistLowConfidence,
				MaxAttempts:          cfg.Pipeline.MaxAttempts,
				LockTTL:              cfg.LockTTL(),
			}),
			reg,
			cfg.SessionDeadline(),
		)

		sess, err := orch.RunNightly(ctx, date)
		if err != nil {
			return fmt.Errorf("discovery session failed: %w", err)
		}

		logger.Info("discovery session complete",
			zap.String("session_id", sess.ID),
			zap.String("day", sess.TargetDay.String()),
			zap.Int("queries", sess.QueryCount),
			zap.Int64("results", sess.Stats.TotalResults),
			zap.Int64("candidates", sess.Stats.TotalCandidatesCreated()),
			zap.Int64("duplicates", sess.Stats.DuplicatesSkipped),
			zap.Int64("spam", sess.Stats.SpamTLDFiltered),
			zap.Int64("transient_failures", sess.Stats.TransientFailures))
		fmt.Printf("session %s: %d results, %d candidates created\n",
			sess.ID, sess.Stats.TotalResults, sess.Stats.TotalCandidatesCreated())
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverDate, "date", "", "session date as YYYY-MM-DD (default: today)")
}

func openRegistry(cfg *config.Config, pub events.Publisher) (*registry.Registry, error) {
	reg, err := registry.New(filepath.Join(cfg.DataDir, "registry.db"), registry.Options{
		Cooldown:          cfg.Cooldown(),
		LockTTL:           cfg.LockTTL(),
		TxTimeout:         cfg.TxTimeout(),
		BlacklistCacheTTL: cfg.BlacklistCacheTTL(),
		Publisher:         pub,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open domain registry: %w", err)
	}
	return reg, nil
}

func buildPublisher(ctx context.Context, cfg *config.Config) events.Publisher {
	if cfg.Events.RedisAddr == "" {
		return events.LogPublisher{}
	}
	pub, err := events.NewRedisPublisher(ctx, cfg.Events.RedisAddr, cfg.Events.RedisPassword, cfg.Events.StreamMaxLen)
	if err != nil {
		logger.Warn("event bus unreachable, events go to logs only", zap.Error(err))
		return events.LogPublisher{}
	}
	return pub
}

func backendLimits(cfg *config.Config) map[taxonomy.Backend]int64 {
	out := make(map[taxonomy.Backend]int64, len(cfg.Search.PerBackendConcurrency))
	for name, limit := range cfg.Search.PerBackendConcurrency {
		out[taxonomy.Backend(name)] = int64(limit)
	}
	return out
}

func buildBackends(cfg *config.Config) []search.SearchBackend {
	var out []search.SearchBackend
	timeout := cfg.PerQueryTimeout()
	if cfg.Search.BraveAPIKey != "" {
		out = append(out, search.NewBraveBackend(cfg.Search.BraveAPIKey, "", timeout))
	}
	if cfg.Search.TavilyAPIKey != "" {
		out = append(out, search.NewTavilyBackend(cfg.Search.TavilyAPIKey, "", timeout))
	}
	if cfg.Search.SerperAPIKey != "" {
		out = append(out, search.NewSerperBackend(cfg.Search.SerperAPIKey, "", timeout))
	}
	return out
}
