// Package logging provides config-driven categorized logging for rezepte.
// Every category is a named child of one zap logger, so a single level and
// sink govern the whole process. Until Initialize is called all loggers are
// no-ops, which keeps library packages silent in tests.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config loading
	CategoryAPI     Category = "api"     // Backend HTTP calls
	CategorySession Category = "session" // Session file, login state
	CategoryStore   Category = "store"   // Recipe store reloads
	CategoryUI      Category = "ui"      // TUI events
	CategoryServer  Category = "server"  // Development backend
	CategoryAudit   Category = "audit"   // Mutations (create/delete)
)

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	Level      string          // debug, info, warn, error
	Format     string          // json, console
	File       string          // empty means stderr
	Categories map[string]bool // nil enables all
}

var (
	mu      sync.RWMutex
	root    = zap.NewNop()
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	enabled map[string]bool
	sink    *os.File
	loggers = make(map[Category]*zap.SugaredLogger)
)

// Initialize builds the root logger. Calling it again replaces the previous
// configuration and closes the previous log file.
func Initialize(opts Options) error {
	lvl, err := zapcore.ParseLevel(defaultString(opts.Level, "info"))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	var out zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	var file *os.File
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err = os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = zapcore.AddSync(file)
	}

	level.SetLevel(lvl)
	Install(zapcore.NewCore(newEncoder(opts.Format), out, level), opts.Categories)

	mu.Lock()
	if sink != nil {
		_ = sink.Close()
	}
	sink = file
	mu.Unlock()

	Get(CategoryBoot).Debugw("logging initialized", "level", lvl.String(), "file", opts.File)
	return nil
}

// Install replaces the root core directly. Tests use it with zaptest/observer.
func Install(core zapcore.Core, categories map[string]bool) {
	mu.Lock()
	defer mu.Unlock()
	root = zap.New(core)
	enabled = categories
	loggers = make(map[Category]*zap.SugaredLogger)
}

// Reset restores the no-op logger and closes any open log file.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	_ = root.Sync()
	if sink != nil {
		_ = sink.Close()
		sink = nil
	}
	root = zap.NewNop()
	enabled = nil
	loggers = make(map[Category]*zap.SugaredLogger)
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	if enabled == nil {
		return true
	}
	on, exists := enabled[string(category)]
	if !exists {
		return true
	}
	return on
}

// Get returns (or creates) a logger for the given category.
// Disabled categories get a no-op logger.
func Get(category Category) *zap.SugaredLogger {
	if !IsCategoryEnabled(category) {
		return zap.NewNop().Sugar()
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := root.Named(string(category)).Sugar()
	loggers[category] = l
	return l
}

// Level returns the current minimum level.
func Level() zapcore.Level {
	return level.Level()
}

func newEncoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if format == "json" {
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Infof(format, args...)
}

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Debugf(format, args...)
}

// Session logs to the session category
func Session(format string, args ...interface{}) {
	Get(CategorySession).Infof(format, args...)
}

// SessionWarn logs warning to the session category
func SessionWarn(format string, args ...interface{}) {
	Get(CategorySession).Warnf(format, args...)
}

// Store logs to the store category
func Store(format string, args ...interface{}) {
	Get(CategoryStore).Infof(format, args...)
}

// StoreDebug logs debug to the store category
func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debugf(format, args...)
}

// UIDebug logs debug to the ui category
func UIDebug(format string, args ...interface{}) {
	Get(CategoryUI).Debugf(format, args...)
}

// Server logs to the server category
func Server(format string, args ...interface{}) {
	Get(CategoryServer).Infof(format, args...)
}

// ServerError logs error to the server category
func ServerError(format string, args ...interface{}) {
	Get(CategoryServer).Errorf(format, args...)
}
