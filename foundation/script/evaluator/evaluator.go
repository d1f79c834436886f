// File: evaluator.go
// Title: Statement Evaluator
// Description: Executes IR statements in order against an environment and
//              dispatches calls to the builtin registry. Execution stops at
//              the first failing statement; earlier effects stay.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

// Package evaluator runs Frege statements.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	ferror "github.com/msto63/frege/foundation/core/error"
	flog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/script/builtins"
	"github.com/msto63/frege/foundation/script/ir"
)

// ErrUnknownFunction is wrapped by errors for calls to unregistered names
var ErrUnknownFunction = errors.New("unknown function")

// RuntimeError reports the statement that stopped execution. Its message is
// the message of the underlying failure.
type RuntimeError struct {
	// Index is the position of the failing statement in the executed slice
	Index int
	Line  int
	Err   error

	cause *ferror.Error
}

func newRuntimeError(index int, stmt ir.Statement, err error) *RuntimeError {
	return &RuntimeError{
		Index: index,
		Line:  stmt.Line(),
		Err:   err,
		cause: ferror.New(err.Error()).
			WithCode(ferror.CodeScriptRuntime).
			WithOperation("evaluator.Execute").
			WithDetail("statement", index).
			WithDetail("line", stmt.Line()),
	}
}

func (e *RuntimeError) Error() string {
	return e.Err.Error()
}

// Unwrap exposes both the underlying failure and the coded error
func (e *RuntimeError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.cause}
}

// Options configures an Evaluator
type Options struct {
	Logger *flog.Logger
	// Output receives builtin output; defaults to os.Stdout
	Output io.Writer
	// MaxResolveDepth bounds variable chains; 0 means unbounded
	MaxResolveDepth int
}

// Evaluator executes statement lists
type Evaluator struct {
	logger  *flog.Logger
	output  io.Writer
	options Options
}

// New creates an evaluator with the given options
func New(opts Options) *Evaluator {
	if opts.Logger == nil {
		opts.Logger = flog.GetDefault()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.MaxResolveDepth < 0 {
		opts.MaxResolveDepth = 0
	}
	return &Evaluator{
		logger:  opts.Logger.WithField("component", "script-evaluator"),
		output:  opts.Output,
		options: opts,
	}
}

// Execute runs statements against a fresh environment
func (e *Evaluator) Execute(ctx context.Context, statements []ir.Statement) error {
	return e.run(ctx, statements, NewEnvironment(e.options.MaxResolveDepth))
}

func (e *Evaluator) run(ctx context.Context, statements []ir.Statement, env *Environment) error {
	for i, stmt := range statements {
		if err := ctx.Err(); err != nil {
			return newRuntimeError(i, stmt, fmt.Errorf("execution cancelled: %w", err))
		}

		switch s := stmt.(type) {
		case ir.Assignment:
			env.Set(s.Name, s.Value)
			e.logger.Trace("assigned", flog.Fields{"name": s.Name, "line": s.SourceLine})

		case ir.Function:
			fn, ok := builtins.Lookup(s.Name)
			if !ok {
				return newRuntimeError(i, stmt, fmt.Errorf("%w: %s", ErrUnknownFunction, s.Name))
			}
			if err := fn(s.Args, env, e.output); err != nil {
				return newRuntimeError(i, stmt, err)
			}
			e.logger.Trace("called", flog.Fields{"function": s.Name, "args": len(s.Args), "line": s.SourceLine})

		default:
			return newRuntimeError(i, stmt, fmt.Errorf("unsupported statement %T", stmt))
		}
	}
	return nil
}

// Session keeps one environment across several Execute calls
type Session struct {
	evaluator *Evaluator
	env       *Environment
}

// NewSession creates a session with an empty environment
func (e *Evaluator) NewSession() *Session {
	return &Session{evaluator: e, env: NewEnvironment(e.options.MaxResolveDepth)}
}

// Execute runs statements against the session environment. Bindings made
// before a failure remain.
func (s *Session) Execute(ctx context.Context, statements []ir.Statement) error {
	return s.evaluator.run(ctx, statements, s.env)
}

// Environment returns the live session environment
func (s *Session) Environment() *Environment {
	return s.env
}

// Reset drops all bindings
func (s *Session) Reset() {
	s.env = NewEnvironment(s.evaluator.options.MaxResolveDepth)
}
