// Package logger provides a configured zerolog instance.
package logger

import (
	"github.com/ilindan-dev/safeguard/internal/config"
	"github.com/rs/zerolog"
	"io"
	"os"
)

// NewLogger creates the root zerolog.Logger shared by every component.
// Components derive their own sub-logger with a "layer" or "component" field.
func NewLogger(cfg *config.Config) (*zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Logger.Level)
	if err != nil || cfg.Logger.Level == "" {
		level = zerolog.InfoLevel
	}

	// Release builds emit plain JSON; everything else gets the console writer.
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if cfg.HTTP.GinMode == "release" {
		out = os.Stderr
	}

	logger := zerolog.New(out).With().
		Timestamp().
		Str("service", "safeguard").
		Caller().
		Logger().
		Level(level)

	return &logger, nil
}
