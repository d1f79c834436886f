// File: timer_test.go
// Title: Timer Tests
// Description: Tests for checkpoints and stop behaviour.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16

package log

import (
	"errors"
	"strings"
	"testing"
)

func TestTimerCheckpoints(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatJSON)
	timer := logger.StartTimer("script_run")

	timer.Checkpoint("ir_built")
	timer.Checkpoint("executed")
	elapsed := timer.Stop()

	cps := timer.Checkpoints()
	if len(cps) != 2 || cps[0].Name != "ir_built" || cps[1].Name != "executed" {
		t.Fatalf("unexpected checkpoints: %+v", cps)
	}
	if cps[1].Elapsed < cps[0].Elapsed {
		t.Error("checkpoints are not monotonic")
	}
	if elapsed < cps[1].Elapsed {
		t.Error("total elapsed smaller than last checkpoint")
	}
	if timer.IsRunning() {
		t.Error("timer still running after Stop")
	}

	lines := decodeLines(t, buf)
	if len(lines) != 3 {
		t.Fatalf("got %d log lines, want 3", len(lines))
	}
	if lines[2]["message"] != "script_run completed" {
		t.Errorf("final message = %v", lines[2]["message"])
	}
}

func TestTimerStopTwice(t *testing.T) {
	timer := NewTimer(nil, "noop")
	timer.Stop()
	if d := timer.Stop(); d != 0 {
		t.Errorf("second Stop() = %v, want 0", d)
	}
	timer.Checkpoint("late")
	if len(timer.Checkpoints()) != 0 {
		t.Error("checkpoint recorded after Stop")
	}
}

func TestTimerStopWithError(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatText)
	logger.StartTimer("script_run").WithField("origin", "cli").StopWithError(errors.New("boom"))

	got := buf.String()
	for _, want := range []string{"[WRN]", "script_run failed", "origin=cli", `error="boom"`} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestTimerCancel(t *testing.T) {
	logger, buf := newBufferLogger(LevelTrace, FormatJSON)
	timer := logger.StartTimer("script_run")

	if d := timer.Cancel(); d < 0 {
		t.Errorf("Cancel() = %v", d)
	}
	if timer.Stop() != 0 {
		t.Error("Stop() after Cancel() should be a no-op")
	}
	if buf.Len() != 0 {
		t.Errorf("Cancel() logged: %q", buf.String())
	}
}
