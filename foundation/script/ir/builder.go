// File: builder.go
// Title: IR Builder
// Description: Walks the program node and emits statements in source order.
//              Arguments and assigned values that do not form a Value abort
//              the build with a SemanticError.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16

package ir

import (
	"fmt"

	ferror "github.com/msto63/frege/foundation/core/error"
	flog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/script/grammar"
	"github.com/msto63/frege/foundation/script/value"
)

// SemanticError reports a statement part that cannot be turned into a Value
type SemanticError struct {
	Text string
	Line int

	cause *ferror.Error
}

func newSemanticError(text string, line int) *SemanticError {
	return &SemanticError{
		Text: text,
		Line: line,
		cause: ferror.New("invalid argument").
			WithCode(ferror.CodeScriptSemantic).
			WithOperation("ir.Build").
			WithDetail("text", text).
			WithDetail("line", line),
	}
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("Invalid argument: %s On line: %d", e.Text, e.Line)
}

// Unwrap exposes the coded error for logging and HasCode
func (e *SemanticError) Unwrap() error {
	if e.cause == nil {
		return nil
	}
	return e.cause
}

// Options configures the builder
type Options struct {
	Logger  *flog.Logger
	Grammar grammar.Options
}

// Builder parses source and translates the tree to statements
type Builder struct {
	parser *grammar.Parser
	logger *flog.Logger
}

// NewBuilder creates a builder with the given options
func NewBuilder(opts Options) *Builder {
	if opts.Logger == nil {
		opts.Logger = flog.GetDefault()
	}
	if opts.Grammar.Logger == nil {
		opts.Grammar.Logger = opts.Logger
	}
	return &Builder{
		parser: grammar.New(opts.Grammar),
		logger: opts.Logger.WithField("component", "script-ir"),
	}
}

// Build parses source with default options and translates it
func Build(source string) ([]Statement, error) {
	return NewBuilder(Options{}).Build(source)
}

// Build returns the statements of source, a *grammar.SyntaxError or a *SemanticError
func (b *Builder) Build(source string) ([]Statement, error) {
	program, err := b.parser.Parse(source)
	if err != nil {
		return nil, err
	}

	statements, err := Translate(program)
	if err != nil {
		b.logger.Debug("build failed", flog.Fields{"error": err.Error()})
		return nil, err
	}

	b.logger.Trace("build completed", flog.Fields{"statements": len(statements)})
	return statements, nil
}

// Translate turns a program node into statements. Children other than
// statements are skipped, as are bare expression statements.
func Translate(program *grammar.Node) ([]Statement, error) {
	statements := make([]Statement, 0, len(program.Children))

	for _, child := range program.Children {
		if child.Rule != grammar.RuleStatement {
			continue
		}
		body := child.Inner()
		if body == nil {
			continue
		}

		switch body.Rule {
		case grammar.RuleFunctionCall:
			fn, err := translateCall(body)
			if err != nil {
				return nil, err
			}
			statements = append(statements, fn)

		case grammar.RuleAssignment:
			assign, err := translateAssignment(body)
			if err != nil {
				return nil, err
			}
			statements = append(statements, assign)

		default:
			// bare math_expression and unknown kinds produce nothing
		}
	}

	return statements, nil
}

func translateCall(call *grammar.Node) (Function, error) {
	line := call.Line()
	if len(call.Children) == 0 {
		return Function{SourceLine: line}, nil
	}

	fn := Function{Name: call.Children[0].Text, SourceLine: line}
	for _, arg := range call.Children[1:] {
		v, ok := value.Parse(arg.Inner())
		if !ok {
			return Function{}, newSemanticError(arg.Text, line)
		}
		fn.Args = append(fn.Args, v)
	}
	return fn, nil
}

func translateAssignment(assign *grammar.Node) (Assignment, error) {
	line := assign.Line()
	if len(assign.Children) != 2 {
		name := ""
		if len(assign.Children) > 0 {
			name = assign.Children[0].Text
		}
		return Assignment{}, newSemanticError(name, line)
	}

	name := assign.Children[0].Text
	v, ok := value.Parse(assign.Children[1])
	if !ok {
		return Assignment{}, newSemanticError(name, line)
	}
	return Assignment{Name: name, Value: v, SourceLine: line}, nil
}
