// File: logger_test.go
// Title: Logger Tests
// Description: Tests for level filtering, formats, context fields and
//              coded error logging.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	ferror "github.com/msto63/frege/foundation/core/error"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewWithConfig(Config{Level: level, Format: format, Output: buf}), buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatJSON)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Error("shown too")

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0]["level"] != "warn" || lines[1]["level"] != "error" {
		t.Errorf("unexpected levels: %v, %v", lines[0]["level"], lines[1]["level"])
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	parent, buf := newBufferLogger(LevelInfo, FormatJSON)
	child := parent.WithField("component", "evaluator").WithRunID("run-7")

	parent.Info("from parent")
	child.Info("from child", Field("statement", 2))

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if _, ok := lines[0]["component"]; ok {
		t.Error("parent logger picked up child field")
	}
	if lines[1]["component"] != "evaluator" {
		t.Errorf("component = %v, want evaluator", lines[1]["component"])
	}
	if lines[1]["run_id"] != "run-7" {
		t.Errorf("run_id = %v, want run-7", lines[1]["run_id"])
	}
	if lines[1]["statement"] != float64(2) {
		t.Errorf("statement = %v, want 2", lines[1]["statement"])
	}
}

func TestLogErrorUsesSeverity(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
		check     func(t *testing.T, line map[string]interface{})
	}{
		{
			name:      "syntax error logs at info",
			err:       ferror.New("unexpected token").WithCode(ferror.CodeScriptSyntax),
			wantLevel: "info",
			check: func(t *testing.T, line map[string]interface{}) {
				if line["error_code"] != "SCRIPT_SYNTAX" {
					t.Errorf("error_code = %v", line["error_code"])
				}
			},
		},
		{
			name:      "runtime error logs at warn",
			err:       ferror.New("unknown function").WithCode(ferror.CodeScriptRuntime).WithDetail("function", "foo"),
			wantLevel: "warn",
			check: func(t *testing.T, line map[string]interface{}) {
				if line["error_function"] != "foo" {
					t.Errorf("error_function = %v", line["error_function"])
				}
			},
		},
		{
			name:      "plain error logs at error",
			err:       errors.New("disk full"),
			wantLevel: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(LevelTrace, FormatJSON)
			logger.LogError("run failed", tt.err)

			lines := decodeLines(t, buf)
			if len(lines) != 1 {
				t.Fatalf("got %d lines, want 1", len(lines))
			}
			if lines[0]["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %v", lines[0]["level"], tt.wantLevel)
			}
			if lines[0]["error"] != tt.err.Error() {
				t.Errorf("error = %v, want %v", lines[0]["error"], tt.err.Error())
			}
			if tt.check != nil {
				tt.check(t, lines[0])
			}
		})
	}
}

func TestTextFormatSortsFields(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatText)
	logger.WithName("engine").Info("done", Fields{"b": 2, "a": 1})

	got := buf.String()
	if !strings.Contains(got, "[INF] {engine} done [a=1 b=2]") {
		t.Errorf("unexpected text line: %q", got)
	}
}

func TestConsoleFormatColors(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatConsole)
	logger.Warn("careful")

	got := buf.String()
	if !strings.HasPrefix(got, LevelWarn.Color()) || !strings.HasSuffix(got, "\033[0m\n") {
		t.Errorf("console line not colored: %q", got)
	}
}

func TestConcurrentLogging(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.WithField("worker", n).Info("tick")
		}(i)
	}
	wg.Wait()

	if lines := decodeLines(t, buf); len(lines) != 20 {
		t.Errorf("got %d lines, want 20", len(lines))
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	levels := map[string]Level{"trace": LevelTrace, "DEBUG": LevelDebug, "warning": LevelWarn, "": LevelInfo}
	for in, want := range levels {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) should fail")
	}
	if f, err := ParseFormat("console"); err != nil || f != FormatConsole {
		t.Errorf("ParseFormat(console) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}
