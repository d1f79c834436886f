// ============================================================================
// Frege - minimal scripting engine
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating the process logger from config
// Author:      msto63
// Created:     2025-12-06
// Modified:    2026-10-16
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	flog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/pkg/core/config"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Component name
	ServiceName string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format: "auto", "json", "text" or "console" (default: auto)
	Format string

	// Destination, defaults to stderr so stdout stays reserved for program output
	Output io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "warn",
		Format:      "auto",
	}
}

// FromConfig derives a LoggerConfig from the application configuration
func FromConfig(serviceName string, cfg *config.Config) LoggerConfig {
	lc := DefaultLoggerConfig(serviceName)
	if cfg != nil {
		lc.Level = cfg.General.LogLevel
		lc.Format = cfg.General.LogFormat
	}
	return lc
}

// NewLogger creates a new Foundation logger
func NewLogger(cfg LoggerConfig) *flog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	return flog.NewWithConfig(flog.Config{
		Level:  resolveLevel(cfg.Level),
		Format: resolveFormat(cfg.Format, output),
		Output: output,
		Name:   cfg.ServiceName,
	})
}

// resolveLevel falls back to warn for levels the logger does not know
func resolveLevel(level string) flog.Level {
	parsed, err := flog.ParseLevel(level)
	if err != nil {
		return flog.LevelWarn
	}
	return parsed
}

// resolveFormat picks the console formatter on a terminal and JSON otherwise
// when the format is "auto" or unknown.
func resolveFormat(format string, output io.Writer) flog.Format {
	if parsed, err := flog.ParseFormat(format); err == nil {
		return parsed
	}
	if isTerminal(output) {
		return flog.FormatConsole
	}
	return flog.FormatJSON
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
