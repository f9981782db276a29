package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 20, cfg.Planner.QueriesPerNight)
	assert.Equal(t, 3, cfg.Planner.QueriesPerRequest)
	assert.Equal(t, 0.60, cfg.Pipeline.ConfidenceThreshold)
	assert.Equal(t, 24*time.Hour, cfg.Cooldown())
	assert.Equal(t, time.Hour, cfg.LockTTL())
	assert.Contains(t, cfg.Judge.SpamTLDs, ".xyz")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Planner.QueriesPerNight)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fundscout.yaml")
	body := `
planner:
  queries_per_night: 5
pipeline:
  confidence_threshold: 0.75
registry:
  recent_processing_cooldown: 12h
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Planner.QueriesPerNight)
	assert.Equal(t, 0.75, cfg.Pipeline.ConfidenceThreshold)
	assert.Equal(t, 12*time.Hour, cfg.Cooldown())
	// Untouched sections keep defaults.
	assert.Equal(t, 4, cfg.Pipeline.Workers)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("BRAVE_API_KEY", "brv-key")

	cfg := Default()
	cfg.applyEnvOverrides()

	assert.Equal(t, "gem-key", cfg.LLM.APIKey)
	assert.Equal(t, "brv-key", cfg.Search.BraveAPIKey)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero queries per night", func(c *Config) { c.Planner.QueriesPerNight = 0 }},
		{"threshold above one", func(c *Config) { c.Pipeline.ConfidenceThreshold = 1.5 }},
		{"three judge weights", func(c *Config) { c.Judge.Weights = []float64{0.5, 0.3, 0.2} }},
		{"weights not summing to one", func(c *Config) { c.Judge.Weights = []float64{0.5, 0.3, 0.3, 0.3} }},
		{"negative weight", func(c *Config) { c.Judge.Weights = []float64{-0.5, 0.5, 0.5, 0.5} }},
		{"bad duration", func(c *Config) { c.Registry.ProcessingLockTTL = "one hour" }},
		{"unknown backend", func(c *Config) { c.Search.PerBackendConcurrency["altavista"] = 1 }},
		{"cache ttl above an hour", func(c *Config) { c.Registry.BlacklistCacheTTL = "2h" }},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
