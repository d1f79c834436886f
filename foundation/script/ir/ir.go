// File: ir.go
// Title: Intermediate Representation
// Description: The two statement kinds a Frege program compiles to.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

// Package ir translates parse trees into an ordered list of statements.
package ir

import (
	"strings"

	"github.com/msto63/frege/foundation/script/value"
)

// Statement is a Function call or an Assignment
type Statement interface {
	// Line is the 1-based source line the statement starts on
	Line() int
	// String renders the statement as source text
	String() string
	isStatement()
}

// Function calls a builtin with its arguments
type Function struct {
	Name       string
	Args       []value.Value
	SourceLine int
}

// Assignment binds Name to an unevaluated Value
type Assignment struct {
	Name       string
	Value      value.Value
	SourceLine int
}

func (f Function) Line() int   { return f.SourceLine }
func (a Assignment) Line() int { return a.SourceLine }

func (Function) isStatement()   {}
func (Assignment) isStatement() {}

func (f Function) String() string {
	args := make([]string, len(f.Args))
	for i, arg := range f.Args {
		args[i] = arg.String()
	}
	return f.Name + "(" + strings.Join(args, ", ") + ");"
}

func (a Assignment) String() string {
	return a.Name + " = " + a.Value.String() + ";"
}
