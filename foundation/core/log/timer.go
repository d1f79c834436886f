// File: timer.go
// Title: Performance Timer
// Description: Measures how long an operation takes and logs checkpoints and
//              the final outcome through the owning logger.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with performance timing
// - 2026-10-16 v0.2.0: Checkpoints recorded for later inspection

package log

import (
	"time"
)

// Checkpoint is a named point in time within a timed operation
type Checkpoint struct {
	Name    string
	Elapsed time.Duration
}

// Timer represents a performance timer for measuring operation duration
type Timer struct {
	logger      *Logger
	operation   string
	startTime   time.Time
	fields      Fields
	checkpoints []Checkpoint
	stopped     bool
}

// NewTimer creates a new timer for the given operation
func NewTimer(logger *Logger, operation string) *Timer {
	return &Timer{
		logger:    logger,
		operation: operation,
		startTime: time.Now(),
		fields:    make(Fields),
	}
}

// WithField adds a field to every message the timer logs
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Elapsed returns the elapsed time since the timer was started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Checkpoint records and logs an intermediate timing at debug level
func (t *Timer) Checkpoint(name string) {
	if t.stopped {
		return
	}
	elapsed := t.Elapsed()
	t.checkpoints = append(t.checkpoints, Checkpoint{Name: name, Elapsed: elapsed})

	if t.logger != nil {
		t.logger.Debug(t.operation+" checkpoint: "+name, t.fields.Merge(Fields{
			"operation":  t.operation,
			"checkpoint": name,
			"elapsed_ms": float64(elapsed.Nanoseconds()) / 1e6,
		}))
	}
}

// Checkpoints returns the checkpoints recorded so far
func (t *Timer) Checkpoints() []Checkpoint {
	out := make([]Checkpoint, len(t.checkpoints))
	copy(out, t.checkpoints)
	return out
}

// Stop stops the timer and logs the elapsed time at debug level
func (t *Timer) Stop() time.Duration {
	if t.stopped {
		return 0
	}
	elapsed := t.Elapsed()
	t.stopped = true

	if t.logger != nil {
		t.logger.Debug(t.operation+" completed", t.fields.Merge(Fields{
			"operation":   t.operation,
			"duration_ms": float64(elapsed.Nanoseconds()) / 1e6,
		}))
	}
	return elapsed
}

// StopWithError stops the timer and logs err with the elapsed time
func (t *Timer) StopWithError(err error) time.Duration {
	if t.stopped {
		return 0
	}
	elapsed := t.Elapsed()
	t.stopped = true

	if t.logger != nil {
		t.logger.WarnWithErr(t.operation+" failed", err, t.fields.Merge(Fields{
			"operation":   t.operation,
			"duration_ms": float64(elapsed.Nanoseconds()) / 1e6,
			"success":     false,
		}))
	}
	return elapsed
}

// Cancel stops the timer without logging and returns the elapsed time
func (t *Timer) Cancel() time.Duration {
	if t.stopped {
		return 0
	}
	t.stopped = true
	return t.Elapsed()
}

// IsRunning returns true if the timer is still running
func (t *Timer) IsRunning() bool {
	return !t.stopped
}
