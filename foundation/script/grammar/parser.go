// File: parser.go
// Title: Recursive Descent Parser
// Description: Builds the parse tree from the token stream. One Parser can be
//              shared; every Parse call keeps its state on the stack.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16

package grammar

import (
	"fmt"

	flog "github.com/msto63/frege/foundation/core/log"
)

// DefaultMaxInputLength bounds the source size accepted by Parse
const DefaultMaxInputLength = 64 * 1024

// Options configures parser behavior
type Options struct {
	Logger         *flog.Logger
	MaxInputLength int
}

// Parser parses Frege source into a parse tree
type Parser struct {
	logger  *flog.Logger
	options Options
}

// New creates a parser with the given options
func New(opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = flog.GetDefault()
	}
	if opts.MaxInputLength <= 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}
	return &Parser{
		logger:  opts.Logger.WithField("component", "script-grammar"),
		options: opts,
	}
}

// Parse parses source with default options
func Parse(source string) (*Node, error) {
	return New(Options{}).Parse(source)
}

// Parse returns the program node for source or a *SyntaxError
func (p *Parser) Parse(source string) (*Node, error) {
	if len(source) > p.options.MaxInputLength {
		return nil, newSyntaxError(source, Position{Line: 1, Column: 1},
			fmt.Sprintf("input exceeds maximum length: %d > %d", len(source), p.options.MaxInputLength))
	}

	s := &state{source: source, tokens: NewLexer(source).Tokenize()}
	program, err := s.parseProgram()
	if err != nil {
		p.logger.Debug("parse failed", flog.Fields{"length": len(source), "error": err.Error()})
		return nil, err
	}

	p.logger.Trace("parse completed", flog.Fields{
		"length":     len(source),
		"statements": len(program.Children) - 1,
	})
	return program, nil
}

type state struct {
	source  string
	tokens  []Token
	pos     int
	lastEnd int
}

func (s *state) peek() Token {
	return s.peekAt(0)
}

// peekAt looks ahead n tokens; past the end it repeats the final token
func (s *state) peekAt(n int) Token {
	if s.pos+n < len(s.tokens) {
		return s.tokens[s.pos+n]
	}
	return s.tokens[len(s.tokens)-1]
}

func (s *state) next() Token {
	tok := s.peek()
	if s.pos < len(s.tokens)-1 {
		s.pos++
	}
	s.lastEnd = tok.Pos.Offset + len(tok.Value)
	return tok
}

func (s *state) errorAt(tok Token, expected string) *SyntaxError {
	if tok.Type == TokenIllegal {
		return newSyntaxError(s.source, tok.Pos, tok.Problem)
	}
	return newSyntaxError(s.source, tok.Pos, fmt.Sprintf("expected %s, found %s", expected, tok.describe()))
}

func (s *state) expect(tt TokenType, expected string) (Token, error) {
	tok := s.peek()
	if tok.Type != tt {
		return tok, s.errorAt(tok, expected)
	}
	return s.next(), nil
}

func (s *state) span(from Position) string {
	return s.source[from.Offset:s.lastEnd]
}

func (s *state) parseProgram() (*Node, error) {
	program := &Node{Rule: RuleProgram, Text: s.source, Pos: Position{Line: 1, Column: 1}}

	for s.peek().Type != TokenEOF {
		stmt, err := s.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Children = append(program.Children, stmt)
	}

	eoi := s.peek()
	program.Children = append(program.Children, &Node{Rule: RuleEOI, Pos: eoi.Pos})
	return program, nil
}

func (s *state) parseStatement() (*Node, error) {
	start := s.peek()

	var body *Node
	var err error
	switch {
	case start.Type == TokenIdentifier && s.peekAt(1).Type == TokenEquals:
		body, err = s.parseAssignment()
	case start.Type == TokenIdentifier && s.peekAt(1).Type == TokenLeftParen:
		body, err = s.parseFunctionCall()
	default:
		body, err = s.parseMathExpression()
	}
	if err != nil {
		return nil, err
	}

	switch end := s.peek(); end.Type {
	case TokenSemicolon:
		s.next()
	case TokenEOF:
	default:
		return nil, s.errorAt(end, `";"`)
	}

	return &Node{Rule: RuleStatement, Text: s.span(start.Pos), Pos: start.Pos, Children: []*Node{body}}, nil
}

func (s *state) parseAssignment() (*Node, error) {
	name := s.next()
	s.next() // =

	value, err := s.parseValue()
	if err != nil {
		return nil, err
	}
	return &Node{
		Rule:     RuleAssignment,
		Text:     s.span(name.Pos),
		Pos:      name.Pos,
		Children: []*Node{identifierNode(name), value},
	}, nil
}

func (s *state) parseFunctionCall() (*Node, error) {
	name := s.next()
	s.next() // (

	call := &Node{Rule: RuleFunctionCall, Pos: name.Pos, Children: []*Node{identifierNode(name)}}
	if s.peek().Type != TokenRightParen {
		for {
			start := s.peek()
			value, err := s.parseValue()
			if err != nil {
				return nil, err
			}
			call.Children = append(call.Children, &Node{
				Rule:     RuleArgument,
				Text:     s.span(start.Pos),
				Pos:      start.Pos,
				Children: []*Node{value},
			})
			if s.peek().Type != TokenComma {
				break
			}
			s.next()
		}
	}

	if _, err := s.expect(TokenRightParen, `"," or ")"`); err != nil {
		return nil, err
	}
	call.Text = s.span(name.Pos)
	return call, nil
}

// parseValue parses a math expression if an operator follows the first
// operand, otherwise the operand alone
func (s *state) parseValue() (*Node, error) {
	start := s.peek()
	left, err := s.parseOperand()
	if err != nil {
		return nil, err
	}
	if s.peek().Type != TokenOperator {
		return left, nil
	}
	return s.continueExpression(left, start.Pos)
}

// parseMathExpression requires an operator after the first operand
func (s *state) parseMathExpression() (*Node, error) {
	start := s.peek()
	left, err := s.parseOperand()
	if err != nil {
		return nil, err
	}
	if tok := s.peek(); tok.Type != TokenOperator {
		if start.Type == TokenIdentifier {
			return nil, s.errorAt(tok, `"=", "(" or operator`)
		}
		return nil, s.errorAt(tok, "operator")
	}
	return s.continueExpression(left, start.Pos)
}

func (s *state) continueExpression(left *Node, start Position) (*Node, error) {
	opTok := s.next()
	operator := &Node{Rule: RuleOperator, Text: opTok.Value, Pos: opTok.Pos}

	right, err := s.parseValue()
	if err != nil {
		return nil, err
	}
	return &Node{
		Rule:     RuleMathExpression,
		Text:     s.span(start),
		Pos:      start,
		Children: []*Node{left, operator, right},
	}, nil
}

func (s *state) parseOperand() (*Node, error) {
	tok := s.peek()
	switch tok.Type {
	case TokenNumber:
		s.next()
		return literalNode(RuleNumber, tok), nil
	case TokenString:
		s.next()
		return literalNode(RuleString, tok), nil
	case TokenIdentifier:
		s.next()
		return identifierNode(tok), nil
	case TokenLeftParen:
		s.next()
		expr, err := s.parseMathExpression()
		if err != nil {
			return nil, err
		}
		if _, err := s.expect(TokenRightParen, `")"`); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, s.errorAt(tok, "value")
	}
}

func identifierNode(tok Token) *Node {
	return &Node{Rule: RuleIdentifier, Text: tok.Value, Pos: tok.Pos}
}

func literalNode(rule Rule, tok Token) *Node {
	return &Node{
		Rule:     rule,
		Text:     tok.Value,
		Pos:      tok.Pos,
		Children: []*Node{{Rule: RuleInner, Text: tok.Value, Pos: tok.Pos}},
	}
}
