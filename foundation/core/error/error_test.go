// File: error_test.go
// Title: Error Module Tests
// Description: Tests for error creation, wrapping, codes and severity.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16

package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New("test error message")

	if err.Error() != "test error message" {
		t.Errorf("Error() = %q, want %q", err.Error(), "test error message")
	}
	if err.Code() != CodeUnknown {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeUnknown)
	}
	if err.Severity() != SeverityMedium {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityMedium)
	}
	if err.Timestamp().IsZero() {
		t.Error("Timestamp() should not be zero")
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
		wantNil bool
		wantMsg string
	}{
		{name: "wrap nil error", err: nil, message: "context", wantNil: true},
		{name: "wrap standard error", err: errors.New("boom"), message: "context", wantMsg: "context: boom"},
		{name: "wrap coded error", err: New("inner").WithCode(CodeScriptRuntime), message: "outer", wantMsg: "outer: inner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.err, tt.message)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Wrap() = %v, want nil", got)
				}
				return
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got.Error(), tt.wantMsg)
			}
			if !errors.Is(got, tt.err) {
				t.Error("wrapped error should match its cause with errors.Is")
			}
		})
	}
}

func TestWrapInheritsCodeAndDetails(t *testing.T) {
	inner := New("unresolved variable: x").
		WithCode(CodeScriptRuntime).
		WithDetail("variable", "x").
		WithRunID("run-1")

	wrapped := Wrap(inner, "print failed")

	if wrapped.Code() != CodeScriptRuntime {
		t.Errorf("Code() = %v, want %v", wrapped.Code(), CodeScriptRuntime)
	}
	if wrapped.Details()["variable"] != "x" {
		t.Errorf("Details()[variable] = %v, want x", wrapped.Details()["variable"])
	}
	if wrapped.RunID() != "run-1" {
		t.Errorf("RunID() = %q, want run-1", wrapped.RunID())
	}
}

func TestWrapTruncatesDeepChains(t *testing.T) {
	var err error = errors.New("root")
	for i := 0; i < MaxErrorChainDepth+2; i++ {
		err = Wrap(err, fmt.Sprintf("level %d", i))
	}

	if chainDepth(err) > MaxErrorChainDepth+1 {
		t.Errorf("chain depth %d exceeds limit", chainDepth(err))
	}
	if !strings.Contains(err.Error(), "root") {
		t.Errorf("truncated error lost its root cause: %q", err.Error())
	}
}

func TestWithCodeSetsSeverity(t *testing.T) {
	tests := []struct {
		code Code
		want Severity
	}{
		{CodeScriptSyntax, SeverityLow},
		{CodeScriptSemantic, SeverityLow},
		{CodeScriptRuntime, SeverityMedium},
		{CodeDatabaseError, SeverityHigh},
		{CodeInternal, SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			if got := New("x").WithCode(tt.code).Severity(); got != tt.want {
				t.Errorf("Severity() = %v, want %v", got, tt.want)
			}
		})
	}

	explicit := New("x").WithSeverity(SeverityCritical).WithCode(CodeScriptSyntax)
	if explicit.Severity() != SeverityCritical {
		t.Errorf("explicit severity overwritten: %v", explicit.Severity())
	}
}

func TestHasCodeAndGetCode(t *testing.T) {
	inner := New("bad").WithCode(CodeScriptSemantic)
	outer := fmt.Errorf("build: %w", inner)

	if !HasCode(outer, CodeScriptSemantic) {
		t.Error("HasCode() should find the code through fmt wrapping")
	}
	if HasCode(outer, CodeScriptRuntime) {
		t.Error("HasCode() reported a code that is not in the chain")
	}
	if GetCode(outer) != CodeScriptSemantic {
		t.Errorf("GetCode() = %v, want %v", GetCode(outer), CodeScriptSemantic)
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Error("GetCode() of a plain error should be CodeUnknown")
	}
}

func TestMarshalJSON(t *testing.T) {
	err := New("unknown function: foo").
		WithCode(CodeScriptRuntime).
		WithOperation("evaluator.Execute").
		WithDetail("function", "foo")

	data, marshalErr := json.Marshal(err)
	if marshalErr != nil {
		t.Fatalf("MarshalJSON() error = %v", marshalErr)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["code"] != string(CodeScriptRuntime) {
		t.Errorf("code = %v, want %v", decoded["code"], CodeScriptRuntime)
	}
	if decoded["operation"] != "evaluator.Execute" {
		t.Errorf("operation = %v", decoded["operation"])
	}
}

func TestString(t *testing.T) {
	err := New("boom").WithCode(CodeDatabaseError).WithDetail("path", "runs.db").WithDetail("attempt", 2)
	s := err.String()

	for _, want := range []string{"Error: boom", "Code: DATABASE_ERROR", "Severity: high", "Details: {attempt=2, path=runs.db}"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q in:\n%s", want, s)
		}
	}
}

type joined struct{ errs []error }

func (j joined) Error() string   { return "joined" }
func (j joined) Unwrap() []error { return j.errs }

func TestHasCodeMultiUnwrap(t *testing.T) {
	err := joined{errs: []error{errors.New("unresolved variable: x"), New("x").WithCode(CodeScriptRuntime)}}

	if !HasCode(err, CodeScriptRuntime) {
		t.Error("HasCode() should search Unwrap() []error")
	}
	if GetCode(err) != CodeScriptRuntime {
		t.Errorf("GetCode() = %v, want %v", GetCode(err), CodeScriptRuntime)
	}
}
