// File: builtins.go
// Title: Builtin Function Registry
// Description: The fixed table of functions scripts can call. Only print
//              exists; the table is static and read-only.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation with print

// Package builtins holds the functions callable from Frege scripts.
package builtins

import (
	"fmt"
	"io"
	"sort"

	"github.com/msto63/frege/foundation/script/value"
)

// Func runs a builtin. out receives the function's output lines.
type Func func(args []value.Value, scope value.Scope, out io.Writer) error

// ArgumentError reports an argument that failed to evaluate
type ArgumentError struct {
	Index int
	Err   error
}

func (e *ArgumentError) Error() string {
	return "invalid argument: " + e.Err.Error()
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

var table = map[string]Func{
	"print": Print,
}

// Lookup returns the builtin registered under name
func Lookup(name string) (Func, bool) {
	fn, ok := table[name]
	return fn, ok
}

// Names returns the registered names in sorted order
func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Print evaluates the arguments in order and writes one line per argument.
// It stops at the first argument that fails; lines already written stay.
func Print(args []value.Value, scope value.Scope, out io.Writer) error {
	for i, arg := range args {
		text, err := value.Evaluate(arg, scope)
		if err != nil {
			return &ArgumentError{Index: i, Err: err}
		}
		if _, err := fmt.Fprintln(out, text); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}
