// Package logging builds the process logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the log written under the config directory while the TUI owns
// the terminal.
const FileName = "katabasis.log"

type Options struct {
	Verbose bool
	// Dir, when set, sends output to Dir/katabasis.log instead of stderr.
	Dir string
}

func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if opts.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		path := filepath.Join(opts.Dir, FileName)
		config.OutputPaths = []string{path}
		config.ErrorOutputPaths = []string{path}
		// the file is only read after the fact; keep info there too
		if !opts.Verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
