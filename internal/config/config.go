// Package config loads and validates fundscout configuration.
//
// Configuration is a single YAML file with one section per component. All
// durations are strings ("24h", "30s") validated at load time so a bad value
// fails the session at startup rather than mid-run.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"fundscout/internal/taxonomy"
)

// Config holds all fundscout configuration.
type Config struct {
	// DataDir is where the sqlite database and debug logs live.
	DataDir string `yaml:"data_dir"`

	Planner  PlannerConfig  `yaml:"planner"`
	LLM      LLMConfig      `yaml:"llm"`
	Search   SearchConfig   `yaml:"search"`
	Registry RegistryConfig `yaml:"registry"`
	Judge    JudgeConfig    `yaml:"judge"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Events   EventsConfig   `yaml:"events"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PlannerConfig configures the taxonomy batch planner.
type PlannerConfig struct {
	QueriesPerNight   int `yaml:"queries_per_night"`
	QueriesPerRequest int `yaml:"queries_per_request"`
}

// LLMConfig configures the query-expansion LLM.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// SearchConfig configures the fan-out across search backends.
type SearchConfig struct {
	// Per-backend API keys; a backend without a key is skipped at wiring time.
	BraveAPIKey  string `yaml:"brave_api_key"`
	TavilyAPIKey string `yaml:"tavily_api_key"`
	SerperAPIKey string `yaml:"serper_api_key"`

	PerQueryTimeout string `yaml:"per_query_timeout"`
	// Concurrency limit per backend (rate-limit protection).
	PerBackendConcurrency map[string]int `yaml:"per_backend_concurrency"`
	// Overall in-flight query limit across all backends.
	FanoutLimit int `yaml:"fanout_limit"`
	// Results requested per query.
	ResultsPerQuery int `yaml:"results_per_query"`
}

// RegistryConfig configures the durable domain registry.
type RegistryConfig struct {
	RecentProcessingCooldown string `yaml:"recent_processing_cooldown"`
	ProcessingLockTTL        string `yaml:"processing_lock_ttl"`
	TxTimeout                string `yaml:"tx_timeout"`
	// BlacklistCacheTTL bounds the read-through blacklist cache. The cache is
	// never authoritative; keep this at or below an hour.
	BlacklistCacheTTL string `yaml:"blacklist_cache_ttl"`
}

// JudgeConfig configures metadata scoring.
type JudgeConfig struct {
	// Weights for funding / credibility / geography / org-type sub-judges.
	// Must sum to 1.00; all equal when omitted.
	Weights  []float64 `yaml:"weights"`
	SpamTLDs []string  `yaml:"spam_tlds"`
}

// PipelineConfig configures the candidate pipeline.
type PipelineConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	Workers             int     `yaml:"workers"`
	// PersistLowConfidence keeps below-threshold results as audit rows instead
	// of only counting them.
	PersistLowConfidence bool   `yaml:"persist_low_confidence"`
	SessionDeadline      string `yaml:"session_deadline"`
	MaxAttempts          int    `yaml:"max_attempts"`
}

// EventsConfig configures the event bus publisher.
type EventsConfig struct {
	// RedisAddr empty disables publishing (events are logged only).
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	StreamMaxLen  int64  `yaml:"stream_max_len"`
}

// LoggingConfig configures categorized debug logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
}

// Default returns a Config with every field set to its documented default.
func Default() *Config {
	return &Config{
		DataDir: ".fundscout",
		Planner: PlannerConfig{
			QueriesPerNight:   20,
			QueriesPerRequest: 3,
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
			BaseURL:  "https://generativelanguage.googleapis.com/v1beta",
			Timeout:  "45s",
		},
		Search: SearchConfig{
			PerQueryTimeout: "30s",
			PerBackendConcurrency: map[string]int{
				string(taxonomy.BackendBrave):  2,
				string(taxonomy.BackendTavily): 1,
				string(taxonomy.BackendSerper): 2,
			},
			FanoutLimit:     6,
			ResultsPerQuery: 10,
		},
		Registry: RegistryConfig{
			RecentProcessingCooldown: "24h",
			ProcessingLockTTL:        "1h",
			TxTimeout:                "10s",
			BlacklistCacheTTL:        "30m",
		},
		Judge: JudgeConfig{
			Weights:  []float64{0.25, 0.25, 0.25, 0.25},
			SpamTLDs: []string{".xyz", ".click", ".top", ".loan", ".win", ".gq", ".cf"},
		},
		Pipeline: PipelineConfig{
			ConfidenceThreshold:  0.60,
			Workers:              4,
			PersistLowConfidence: true,
			SessionDeadline:      "4h",
			MaxAttempts:          3,
		},
		Events: EventsConfig{
			StreamMaxLen: 100000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path, applies defaults for absent fields, env
// overrides for secrets, and validates the result. A missing file yields the
// defaults (still env-overridden and validated).
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides pulls secrets from the environment. Env always wins over
// the file so keys never need to live on disk.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
		if c.LLM.Provider == "" {
			c.LLM.Provider = "gemini"
		}
	}
	if v := os.Getenv("BRAVE_API_KEY"); v != "" {
		c.Search.BraveAPIKey = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		c.Search.TavilyAPIKey = v
	}
	if v := os.Getenv("SERPER_API_KEY"); v != "" {
		c.Search.SerperAPIKey = v
	}
	if v := os.Getenv("FUNDSCOUT_REDIS_ADDR"); v != "" {
		c.Events.RedisAddr = v
	}
}

// Validate checks invariants that would otherwise surface mid-session.
func (c *Config) Validate() error {
	if c.Planner.QueriesPerNight <= 0 {
		return fmt.Errorf("planner.queries_per_night must be positive, got %d", c.Planner.QueriesPerNight)
	}
	if c.Planner.QueriesPerRequest <= 0 {
		return fmt.Errorf("planner.queries_per_request must be positive, got %d", c.Planner.QueriesPerRequest)
	}
	if c.Pipeline.ConfidenceThreshold < 0 || c.Pipeline.ConfidenceThreshold > 1 {
		return fmt.Errorf("pipeline.confidence_threshold must be in [0,1], got %v", c.Pipeline.ConfidenceThreshold)
	}
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline.workers must be positive, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.MaxAttempts <= 0 {
		return fmt.Errorf("pipeline.max_attempts must be positive, got %d", c.Pipeline.MaxAttempts)
	}

	if len(c.Judge.Weights) != 4 {
		return fmt.Errorf("judge.weights must have exactly 4 entries, got %d", len(c.Judge.Weights))
	}
	var sum float64
	for _, w := range c.Judge.Weights {
		if w < 0 {
			return fmt.Errorf("judge.weights must be non-negative, got %v", w)
		}
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("judge.weights must sum to 1.00, got %v", sum)
	}

	for name, limit := range c.Search.PerBackendConcurrency {
		if !taxonomy.Backend(name).Valid() {
			return fmt.Errorf("search.per_backend_concurrency: unknown backend %q", name)
		}
		if limit <= 0 {
			return fmt.Errorf("search.per_backend_concurrency[%s] must be positive, got %d", name, limit)
		}
	}
	if c.Search.FanoutLimit <= 0 {
		return fmt.Errorf("search.fanout_limit must be positive, got %d", c.Search.FanoutLimit)
	}

	durations := []struct {
		name  string
		value string
	}{
		{"llm.timeout", c.LLM.Timeout},
		{"search.per_query_timeout", c.Search.PerQueryTimeout},
		{"registry.recent_processing_cooldown", c.Registry.RecentProcessingCooldown},
		{"registry.processing_lock_ttl", c.Registry.ProcessingLockTTL},
		{"registry.tx_timeout", c.Registry.TxTimeout},
		{"registry.blacklist_cache_ttl", c.Registry.BlacklistCacheTTL},
		{"pipeline.session_deadline", c.Pipeline.SessionDeadline},
	}
	for _, d := range durations {
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", d.name, d.value, err)
		}
	}

	if ttl := c.BlacklistCacheTTL(); ttl > time.Hour {
		return fmt.Errorf("registry.blacklist_cache_ttl must not exceed 1h, got %v", ttl)
	}
	return nil
}

// Duration accessors. Validate has already proven these parse; the panic path
// is unreachable after Load.

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Sprintf("config duration %q not validated: %v", s, err))
	}
	return d
}

func (c *Config) LLMTimeout() time.Duration        { return mustDuration(c.LLM.Timeout) }
func (c *Config) PerQueryTimeout() time.Duration   { return mustDuration(c.Search.PerQueryTimeout) }
func (c *Config) Cooldown() time.Duration          { return mustDuration(c.Registry.RecentProcessingCooldown) }
func (c *Config) LockTTL() time.Duration           { return mustDuration(c.Registry.ProcessingLockTTL) }
func (c *Config) TxTimeout() time.Duration         { return mustDuration(c.Registry.TxTimeout) }
func (c *Config) BlacklistCacheTTL() time.Duration { return mustDuration(c.Registry.BlacklistCacheTTL) }
func (c *Config) SessionDeadline() time.Duration   { return mustDuration(c.Pipeline.SessionDeadline) }

// ConfidenceThreshold returns the pipeline threshold at scale 2.
func (c *Config) ConfidenceThreshold() decimal.Decimal {
	return decimal.NewFromFloat(c.Pipeline.ConfidenceThreshold).Round(2)
}
