// Package log provides structured logging for Frege.
//
// Package: log
// Title: Frege Structured Logging
// Description: Leveled, structured logging with JSON, text and colored console
//              output. Loggers are immutable once configured; WithField and
//              WithRunID derive tagged copies. Coded errors from the error
//              package are logged at the level their severity maps to.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-16 v0.2.0: Trimmed for the script engine, run ID context
//
// Usage:
//
//	import flog "github.com/msto63/frege/foundation/core/log"
//
//	logger := flog.New().
//		WithLevel(flog.LevelDebug).
//		WithField("component", "engine")
//
//	timer := logger.StartTimer("script_run")
//	timer.Checkpoint("ir_built")
//	timer.Stop()
//
//	logger.LogError("run failed", err)
package log
