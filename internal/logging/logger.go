// Package logging provides category-tagged zap loggers for who-read-whom.
// Interactive console runs log to a file under the configured directory so
// log lines never corrupt the terminal UI; one-shot commands log to stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category tags a log line with the subsystem that produced it.
type Category string

const (
	CategoryAPI      Category = "api"      // REST client traffic
	CategoryStore    Category = "store"    // state container actions
	CategoryGraph    Category = "graph"    // graph assembly
	CategoryImporter Category = "importer" // CSV bulk import
	CategoryCSV      Category = "csv"      // CSV codec
	CategoryUI       Category = "ui"       // console pages
	CategoryCLI      Category = "cli"      // one-shot commands
)

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

// Initialize builds the process-wide logger. When dir is non-empty, output
// goes to wrw.log inside it; otherwise to stderr. Safe to call more than
// once; later calls replace the logger.
func Initialize(level, dir string) error {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		cfg.OutputPaths = []string{filepath.Join(dir, "wrw.log")}
		cfg.ErrorOutputPaths = cfg.OutputPaths
	} else {
		cfg.OutputPaths = []string{"stderr"}
	}

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	mu.Lock()
	base = logger
	mu.Unlock()
	return nil
}

// Get returns a logger tagged with the given category.
func Get(cat Category) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return base.Sugar().Named(string(cat))
}

// Sync flushes buffered log entries. Called on shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
