// Package log is the kernel's ambient structured logger: env-gated
// verbosity, a package-level singleton so any leaf package can get a
// logger without dependency injection, and structured output via
// go.uber.org/zap.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	logger *zap.SugaredLogger
)

// init sets the default level from the PLANNER_DEBUG env var.
func init() {
	level := zapcore.InfoLevel
	if os.Getenv("PLANNER_DEBUG") != "" {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	built, err := cfg.Build()
	if err != nil {
		built = zap.NewNop()
	}
	logger = built.Sugar()
}

// L returns the package-global structured logger.
func L() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// SetVerbose raises or lowers the logger's level at runtime.
func SetVerbose(verbose bool) {
	mu.Lock()
	defer mu.Unlock()
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	built, err := cfg.Build()
	if err != nil {
		return
	}
	logger = built.Sugar()
}
