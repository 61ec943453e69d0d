// Package logging builds the zap loggers used by the CLI and the terminal UI.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	// Path is a log file. Empty means stderr.
	Path    string
	Verbose bool
	// Quiet raises the level to warn. Verbose wins over Quiet.
	Quiet bool
}

// New builds a production zap logger. The terminal UI passes a file path
// so log lines never land on the screen it is drawing.
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	switch {
	case opts.Verbose:
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case opts.Quiet:
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		config.OutputPaths = []string{opts.Path}
		config.ErrorOutputPaths = []string{opts.Path}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
