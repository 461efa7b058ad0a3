// Package logging provides the structured logger shared by the watcher,
// server, and CLI commands. It wraps go.uber.org/zap the way the pack's
// service binaries do (see withObsrvr-ttp-processor-demo's main.go: a
// zap.Logger constructed once at startup and threaded through by value),
// with the level selected from an environment variable instead of being
// hardcoded to production defaults.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvVar is the environment variable that selects the log level: one of
// "error", "warn", "info", "debug". Empty or unrecognized defaults to info.
const EnvVar = "ZHANG_LOG"

// New builds a logger with the level read from ZHANG_LOG. It logs
// human-readable console output to stderr, matching the pack's preference
// for zap.NewProduction/NewDevelopment style construction over bespoke
// stdlib log.Logger wrappers.
func New() (*zap.Logger, error) {
	return NewAtLevel(os.Getenv(EnvVar))
}

// NewAtLevel builds a logger at an explicit level, bypassing the
// environment. Tests use this to avoid depending on process environment.
func NewAtLevel(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
