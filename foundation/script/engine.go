// File: engine.go
// Title: Script Engine
// Description: Coordinates build and execution of a program and collects
//              its output and timing.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

package script

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	ferror "github.com/msto63/frege/foundation/core/error"
	flog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/script/evaluator"
	"github.com/msto63/frege/foundation/script/grammar"
	"github.com/msto63/frege/foundation/script/ir"
)

// DemoProgram is run by the CLI when no source is given
const DemoProgram = "x=4 * 2;print(x);"

// Error types returned by Build and Run
type (
	SyntaxError   = grammar.SyntaxError
	SemanticError = ir.SemanticError
	RuntimeError  = evaluator.RuntimeError
)

// ErrorKind classifies a failed run
type ErrorKind string

const (
	KindNone     ErrorKind = ""
	KindSyntax   ErrorKind = "syntax"
	KindSemantic ErrorKind = "semantic"
	KindRuntime  ErrorKind = "runtime"
	KindInternal ErrorKind = "internal"
)

// Options configures the engine
type Options struct {
	Logger *flog.Logger

	// MaxSourceLength bounds the accepted source size in bytes
	MaxSourceLength int

	// MaxResolveDepth bounds variable chains; 0 means unbounded
	MaxResolveDepth int

	// Output additionally receives every printed line as it is written
	Output io.Writer
}

// Result describes a finished run
type Result struct {
	Statements []ir.Statement
	Output     []string
	Duration   time.Duration
}

// Engine builds and runs programs. It holds no per-run state and may be
// shared between goroutines.
type Engine struct {
	builder *ir.Builder
	logger  *flog.Logger
	options Options
}

// NewEngine creates an engine with the given options
func NewEngine(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = flog.GetDefault()
	}
	if opts.MaxSourceLength <= 0 {
		opts.MaxSourceLength = grammar.DefaultMaxInputLength
	}

	logger := opts.Logger.WithField("component", "script-engine")
	return &Engine{
		builder: ir.NewBuilder(ir.Options{
			Logger:  opts.Logger,
			Grammar: grammar.Options{Logger: opts.Logger, MaxInputLength: opts.MaxSourceLength},
		}),
		logger:  logger,
		options: opts,
	}
}

// Build parses and translates source without running it
func (e *Engine) Build(source string) ([]ir.Statement, error) {
	return e.builder.Build(source)
}

// Run builds and executes source. On failure the returned Result still
// holds the output written before the failing statement.
func (e *Engine) Run(ctx context.Context, source string) (*Result, error) {
	return e.run(ctx, source, e.logger)
}

// RunWithID is Run with every log entry tagged by runID
func (e *Engine) RunWithID(ctx context.Context, runID, source string) (*Result, error) {
	return e.run(ctx, source, e.logger.WithRunID(runID))
}

func (e *Engine) run(ctx context.Context, source string, logger *flog.Logger) (*Result, error) {
	timer := logger.StartTimer("script_run").WithField("source_length", len(source))
	result := &Result{}

	statements, err := e.builder.Build(source)
	if err != nil {
		result.Duration = timer.Cancel()
		logger.LogError("build failed", err)
		return result, err
	}
	result.Statements = statements
	timer.Checkpoint("ir_built")

	var buf bytes.Buffer
	var out io.Writer = &buf
	if e.options.Output != nil {
		out = io.MultiWriter(&buf, e.options.Output)
	}

	ev := evaluator.New(evaluator.Options{
		Logger:          logger,
		Output:          out,
		MaxResolveDepth: e.options.MaxResolveDepth,
	})
	err = ev.Execute(ctx, statements)
	result.Output = splitOutput(buf.String())

	if err != nil {
		result.Duration = timer.Cancel()
		logger.LogError("execution failed", err)
		return result, err
	}

	timer.Checkpoint("executed")
	result.Duration = timer.Stop()
	return result, nil
}

func splitOutput(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

// KindOf classifies err
func KindOf(err error) ErrorKind {
	var (
		syntaxErr   *SyntaxError
		semanticErr *SemanticError
		runtimeErr  *RuntimeError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &syntaxErr):
		return KindSyntax
	case errors.As(err, &semanticErr):
		return KindSemantic
	case errors.As(err, &runtimeErr):
		return KindRuntime
	default:
		return KindInternal
	}
}

// Describe renders err the way the command line reports it: build errors
// get an "Error: " prefix, runtime errors are shown as they are.
func Describe(err error) string {
	switch KindOf(err) {
	case KindNone:
		return ""
	case KindSyntax, KindSemantic:
		return "Error: " + err.Error()
	default:
		return err.Error()
	}
}

// Code returns the error code carried by err
func Code(err error) ferror.Code {
	return ferror.GetCode(err)
}
