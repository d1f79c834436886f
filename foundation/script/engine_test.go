// File: engine_test.go
// Title: Script Engine Tests
// Description: End-to-end tests for building and running programs.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16

package script

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	ferror "github.com/msto63/frege/foundation/core/error"
	flog "github.com/msto63/frege/foundation/core/log"
)

func newTestEngine() *Engine {
	return NewEngine(Options{Logger: flog.Discard()})
}

func TestEngine_Run(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		want     []string
		wantKind ErrorKind
		wantMsg  string
	}{
		{name: "demo program", source: DemoProgram, want: []string{"8"}},
		{name: "literal round trip", source: "x = 0.125; print(x);", want: []string{"0.125"}},
		{name: "number then string", source: `print(4 + "a");`, want: []string{"4a"}},
		{name: "string variable then number", source: `y="a"; print(y + 4);`, want: []string{"a4"}},
		{name: "subtract with variable fails", source: "x = 2; print(3 - x);", want: []string{}, wantKind: KindRuntime,
			wantMsg: "invalid argument: unsupported operands for -: number and variable"},
		{name: "ieee division", source: "print(1 / 0); print(0 / 0);", want: []string{"inf", "NaN"}},
		{name: "unassigned variable", source: "print(x);", want: []string{}, wantKind: KindRuntime,
			wantMsg: "invalid argument: unresolved variable: x"},
		{name: "syntax error prints nothing", source: "print(1);\nprint((2);", want: nil, wantKind: KindSyntax,
			wantMsg: `on Line: (2, 9) -> Syntax Error: expected operator, found ")" -> print((2);`},
		{name: "unknown function halts", source: "print(1); say(2); print(3);", want: []string{"1"}, wantKind: KindRuntime,
			wantMsg: "unknown function: say"},
		{name: "bare expression ignored", source: "1 + 1; print('ok');", want: []string{"ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newTestEngine().Run(context.Background(), tt.source)

			if got := KindOf(err); got != tt.wantKind {
				t.Fatalf("KindOf(err) = %q, want %q (err = %v)", got, tt.wantKind, err)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("error = %q\nwant    %q", err.Error(), tt.wantMsg)
			}
			if !reflect.DeepEqual(result.Output, tt.want) {
				t.Errorf("output = %#v, want %#v", result.Output, tt.want)
			}
		})
	}
}

func TestEngine_OutputWriter(t *testing.T) {
	var live bytes.Buffer
	engine := NewEngine(Options{Logger: flog.Discard(), Output: &live})

	result, err := engine.Run(context.Background(), `print("a", 1); nope();`)
	if err == nil {
		t.Fatal("expected runtime error")
	}
	if live.String() != "a\n1\n" {
		t.Errorf("live output = %q", live.String())
	}
	if !reflect.DeepEqual(result.Output, []string{"a", "1"}) {
		t.Errorf("collected output = %v", result.Output)
	}
}

func TestEngine_Checkpoints(t *testing.T) {
	var logs bytes.Buffer
	logger := flog.NewWithConfig(flog.Config{Level: flog.LevelDebug, Format: flog.FormatText, Output: &logs})
	engine := NewEngine(Options{Logger: logger})

	result, err := engine.RunWithID(context.Background(), "run-42", DemoProgram)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Statements) != 2 {
		t.Errorf("statements = %d, want 2", len(result.Statements))
	}
	if result.Duration <= 0 {
		t.Error("duration should be positive")
	}

	text := logs.String()
	for _, want := range []string{"checkpoint: ir_built", "checkpoint: executed", "script_run completed", "(run=run-42)"} {
		if !strings.Contains(text, want) {
			t.Errorf("logs missing %q:\n%s", want, text)
		}
	}
}

func TestEngine_ErrorCodes(t *testing.T) {
	engine := newTestEngine()
	tests := []struct {
		source string
		code   ferror.Code
		prefix bool
	}{
		{"print(", ferror.CodeScriptSyntax, true},
		{"print(" + strings.Repeat("9", 400) + ");", ferror.CodeScriptSemantic, true},
		{"print(q);", ferror.CodeScriptRuntime, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			_, err := engine.Run(context.Background(), tt.source)
			if Code(err) != tt.code {
				t.Errorf("Code() = %v, want %v", Code(err), tt.code)
			}
			if got := strings.HasPrefix(Describe(err), "Error: "); got != tt.prefix {
				t.Errorf("Describe() = %q, prefix %v", Describe(err), tt.prefix)
			}
		})
	}

	if Describe(nil) != "" || KindOf(fmt.Errorf("plain")) != KindInternal {
		t.Error("nil and plain errors misclassified")
	}
}

func TestEngine_MaxSourceLength(t *testing.T) {
	engine := NewEngine(Options{Logger: flog.Discard(), MaxSourceLength: 8})
	_, err := engine.Run(context.Background(), "print(12345);")
	if KindOf(err) != KindSyntax {
		t.Errorf("error = %v, want syntax error", err)
	}
}

func TestEngine_MaxResolveDepth(t *testing.T) {
	engine := NewEngine(Options{Logger: flog.Discard(), MaxResolveDepth: 16})
	_, err := engine.Run(context.Background(), "a = b; b = a; print(a);")
	if KindOf(err) != KindRuntime || !strings.Contains(err.Error(), "exceeded depth 16") {
		t.Errorf("error = %v", err)
	}
}

func TestEngine_SelfReferenceOnLeftOfAdd(t *testing.T) {
	for _, depth := range []int{0, 50} {
		t.Run(fmt.Sprintf("max depth %d", depth), func(t *testing.T) {
			engine := NewEngine(Options{Logger: flog.Discard(), MaxResolveDepth: depth})

			done := make(chan error, 1)
			go func() {
				_, err := engine.Run(context.Background(), "x = x; print(x + 1);")
				done <- err
			}()

			select {
			case err := <-done:
				if KindOf(err) != KindRuntime {
					t.Errorf("error = %v, want runtime error", err)
				}
			case <-time.After(3 * time.Second):
				t.Fatal("Run did not return")
			}
		})
	}
}

func TestEngine_ConcurrentRuns(t *testing.T) {
	engine := newTestEngine()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			result, err := engine.Run(context.Background(), fmt.Sprintf("v = %d; print(v);", n))
			if err != nil {
				errs <- err
				return
			}
			if len(result.Output) != 1 || result.Output[0] != fmt.Sprint(n) {
				errs <- fmt.Errorf("run %d printed %v", n, result.Output)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
