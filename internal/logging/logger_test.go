package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigureDisabledIsNoop(t *testing.T) {
	t.Cleanup(CloseAll)
	if err := Configure("", Settings{DebugMode: false}); err != nil {
		t.Fatalf("Configure with debug off should not fail: %v", err)
	}
	// Must not panic or create files.
	Registry("this goes nowhere")
	if IsDebugMode() {
		t.Error("debug mode should be off")
	}
}

func TestCategoryFiltering(t *testing.T) {
	t.Cleanup(CloseAll)
	dir := t.TempDir()
	err := Configure(dir, Settings{
		DebugMode: true,
		Level:     "debug",
		Categories: map[string]bool{
			"registry": true,
			"search":   false,
		},
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if !IsCategoryEnabled(CategoryRegistry) {
		t.Error("registry category should be enabled")
	}
	if IsCategoryEnabled(CategorySearch) {
		t.Error("search category should be disabled")
	}
	// Unlisted categories default to enabled.
	if !IsCategoryEnabled(CategoryJudge) {
		t.Error("unlisted category should default to enabled")
	}
}

func TestLogWritesToCategoryFile(t *testing.T) {
	t.Cleanup(CloseAll)
	dir := t.TempDir()
	if err := Configure(dir, Settings{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	Pipeline("candidate created for %s", "example.org")
	CloseAll()

	matches, err := filepath.Glob(filepath.Join(dir, "logs", "*_pipeline.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one pipeline log file, got %v (err=%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "candidate created for example.org") {
		t.Errorf("log file missing entry, got: %s", data)
	}
}

func TestLevelSuppressesDebug(t *testing.T) {
	t.Cleanup(CloseAll)
	dir := t.TempDir()
	if err := Configure(dir, Settings{DebugMode: true, Level: "warn"}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	l := Get(CategoryRegistry)
	l.Debug("should be suppressed")
	l.Warn("should appear")
	CloseAll()

	matches, _ := filepath.Glob(filepath.Join(dir, "logs", "*_registry.log"))
	if len(matches) != 1 {
		t.Fatalf("expected one registry log file, got %v", matches)
	}
	data, _ := os.ReadFile(matches[0])
	if strings.Contains(string(data), "suppressed") {
		t.Error("debug entry should have been suppressed at warn level")
	}
	if !strings.Contains(string(data), "should appear") {
		t.Error("warn entry missing")
	}
}
