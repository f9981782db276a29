// Package logging provides config-driven categorized file-based logging for
// fundscout. Logs are written to <data_dir>/logs/ with separate files per
// category so a nightly session can be audited component by component.
// When debug mode is off, category loggers are silent no-ops; the process-level
// zap logger in cmd/fundscout is unaffected.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/system.
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup, wiring, config
	CategorySession  Category = "session"  // Discovery session lifecycle
	CategoryPlanner  Category = "planner"  // Daily batch planning
	CategoryQueryGen Category = "querygen" // Query generation, LLM calls
	CategorySearch   Category = "search"   // Backend calls, fanout
	CategoryRegistry Category = "registry" // Domain registry transactions
	CategoryJudge    Category = "judge"    // Metadata scoring
	CategoryPipeline Category = "pipeline" // Per-result stage decisions
	CategoryEvents   Category = "events"   // Event bus publishes
)

// Settings mirrors config.LoggingConfig to avoid a circular import with the
// config package. Main wires the parsed config in via Configure.
type Settings struct {
	DebugMode  bool
	Level      string
	Categories map[string]bool
}

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	settings  Settings
	setMu     sync.RWMutex
	logLevel  = LevelInfo
)

// Configure sets up the logging directory and applies settings. Call once at
// startup; calling it again reconfigures (used by tests).
func Configure(dataDir string, s Settings) error {
	setMu.Lock()
	settings = s
	switch s.Level {
	case "debug":
		logLevel = LevelDebug
	case "info", "":
		logLevel = LevelInfo
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	setMu.Unlock()

	if !s.DebugMode {
		return nil // silent no-op in production mode
	}
	if dataDir == "" {
		return fmt.Errorf("data dir required when debug logging is enabled")
	}

	logsDir = filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== fundscout logging initialized ===")
	boot.Info("Logs directory: %s", logsDir)
	boot.Info("Log level: %s", s.Level)
	return nil
}

// IsDebugMode returns whether debug logging is enabled.
func IsDebugMode() bool {
	setMu.RLock()
	defer setMu.RUnlock()
	return settings.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled.
func IsCategoryEnabled(category Category) bool {
	setMu.RLock()
	defer setMu.RUnlock()

	if !settings.DebugMode {
		return false
	}
	if settings.Categories == nil {
		return true // all enabled by default in debug mode
	}
	enabled, exists := settings.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category. Returns a no-op
// logger if debug mode or the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date-prefixed filenames keep rotation trivial for a nightly job.
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message (only if level <= debug).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message (only if level <= info).
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning (only if level <= warn).
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes all open log files. Call on shutdown.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for cat, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
		delete(loggers, cat)
	}
}

// Convenience functions per category.

func Boot(format string, args ...interface{})          { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{})     { Get(CategoryBoot).Debug(format, args...) }
func Session(format string, args ...interface{})       { Get(CategorySession).Info(format, args...) }
func SessionDebug(format string, args ...interface{})  { Get(CategorySession).Debug(format, args...) }
func Planner(format string, args ...interface{})       { Get(CategoryPlanner).Info(format, args...) }
func PlannerDebug(format string, args ...interface{})  { Get(CategoryPlanner).Debug(format, args...) }
func QueryGen(format string, args ...interface{})      { Get(CategoryQueryGen).Info(format, args...) }
func QueryGenDebug(format string, args ...interface{}) { Get(CategoryQueryGen).Debug(format, args...) }
func QueryGenError(format string, args ...interface{}) { Get(CategoryQueryGen).Error(format, args...) }
func Search(format string, args ...interface{})        { Get(CategorySearch).Info(format, args...) }
func SearchDebug(format string, args ...interface{})   { Get(CategorySearch).Debug(format, args...) }
func SearchError(format string, args ...interface{})   { Get(CategorySearch).Error(format, args...) }
func Registry(format string, args ...interface{})      { Get(CategoryRegistry).Info(format, args...) }
func RegistryDebug(format string, args ...interface{}) { Get(CategoryRegistry).Debug(format, args...) }
func RegistryError(format string, args ...interface{}) { Get(CategoryRegistry).Error(format, args...) }
func Judge(format string, args ...interface{})         { Get(CategoryJudge).Info(format, args...) }
func JudgeDebug(format string, args ...interface{})    { Get(CategoryJudge).Debug(format, args...) }
func Pipeline(format string, args ...interface{})      { Get(CategoryPipeline).Info(format, args...) }
func PipelineDebug(format string, args ...interface{}) { Get(CategoryPipeline).Debug(format, args...) }
func PipelineError(format string, args ...interface{}) { Get(CategoryPipeline).Error(format, args...) }
func Events(format string, args ...interface{})        { Get(CategoryEvents).Info(format, args...) }
func EventsDebug(format string, args ...interface{})   { Get(CategoryEvents).Debug(format, args...) }
