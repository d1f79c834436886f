// File: lexer.go
// Title: Lexical Analyzer
// Description: Splits source text into tokens with line and column
//              information. Whitespace separates tokens and is discarded.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16

package grammar

import (
	"fmt"
	"unicode/utf8"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	TokenIdentifier // x, print
	TokenNumber     // 4, 2.5
	TokenString     // "a", 'b'

	TokenOperator   // + - * /
	TokenEquals     // =
	TokenLeftParen  // (
	TokenRightParen // )
	TokenComma      // ,
	TokenSemicolon  // ;
)

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenIdentifier:
		return "IDENTIFIER"
	case TokenNumber:
		return "NUMBER"
	case TokenString:
		return "STRING"
	case TokenOperator:
		return "OPERATOR"
	case TokenEquals:
		return "EQUALS"
	case TokenLeftParen:
		return "LEFT_PAREN"
	case TokenRightParen:
		return "RIGHT_PAREN"
	case TokenComma:
		return "COMMA"
	case TokenSemicolon:
		return "SEMICOLON"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token. Value is the exact source text,
// including the quotes of a string literal.
type Token struct {
	Type  TokenType
	Value string
	Pos   Position
	// Problem explains why an illegal token was rejected
	Problem string
}

// describe renders the token for "found ..." in error messages
func (t Token) describe() string {
	switch t.Type {
	case TokenEOF:
		return "end of input"
	case TokenIllegal:
		return fmt.Sprintf("illegal input %q", t.Value)
	default:
		return fmt.Sprintf("%q", t.Value)
	}
}

// Lexer performs lexical analysis of Frege source
type Lexer struct {
	input  string
	offset int
	line   int
	column int
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, column: 1}
}

// NextToken returns the next token. After the input is exhausted every
// call returns TokenEOF.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := Position{Offset: l.offset, Line: l.line, Column: l.column}
	if l.offset >= len(l.input) {
		return Token{Type: TokenEOF, Pos: pos}
	}

	ch := l.input[l.offset]
	switch {
	case ch == '+' || ch == '-' || ch == '*' || ch == '/':
		return l.single(TokenOperator, pos)
	case ch == '=':
		return l.single(TokenEquals, pos)
	case ch == '(':
		return l.single(TokenLeftParen, pos)
	case ch == ')':
		return l.single(TokenRightParen, pos)
	case ch == ',':
		return l.single(TokenComma, pos)
	case ch == ';':
		return l.single(TokenSemicolon, pos)
	case ch == '"' || ch == '\'':
		return l.readString(ch, pos)
	case isLetter(ch):
		l.advanceWhile(func(c byte) bool { return isLetter(c) || isDigit(c) })
		return Token{Type: TokenIdentifier, Value: l.input[pos.Offset:l.offset], Pos: pos}
	case isDigit(ch):
		return l.readNumber(pos)
	default:
		r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
		l.advance()
		return Token{
			Type:    TokenIllegal,
			Value:   string(r),
			Pos:     pos,
			Problem: fmt.Sprintf("unexpected character %q", r),
		}
	}
}

// Tokenize returns all tokens up to and including EOF, stopping early at
// the first illegal token
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenIllegal {
			return tokens
		}
	}
}

func (l *Lexer) single(tt TokenType, pos Position) Token {
	l.advance()
	return Token{Type: tt, Value: l.input[pos.Offset:l.offset], Pos: pos}
}

// readNumber reads digits with an optional fraction. A dot must be followed
// by at least one digit.
func (l *Lexer) readNumber(pos Position) Token {
	l.advanceWhile(isDigit)
	if l.offset+1 < len(l.input) && l.input[l.offset] == '.' && isDigit(l.input[l.offset+1]) {
		l.advance()
		l.advanceWhile(isDigit)
	}
	return Token{Type: TokenNumber, Value: l.input[pos.Offset:l.offset], Pos: pos}
}

// readString reads up to the matching quote. There are no escapes; a
// literal may span lines.
func (l *Lexer) readString(quote byte, pos Position) Token {
	l.advance()
	for l.offset < len(l.input) && l.input[l.offset] != quote {
		l.advance()
	}
	if l.offset >= len(l.input) {
		return Token{
			Type:    TokenIllegal,
			Value:   l.input[pos.Offset:],
			Pos:     pos,
			Problem: "unterminated string literal",
		}
	}
	l.advance()
	return Token{Type: TokenString, Value: l.input[pos.Offset:l.offset], Pos: pos}
}

func (l *Lexer) skipWhitespace() {
	l.advanceWhile(func(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' })
}

func (l *Lexer) advanceWhile(pred func(byte) bool) {
	for l.offset < len(l.input) && pred(l.input[l.offset]) {
		l.advance()
	}
}

// advance moves past one rune and keeps line and column current
func (l *Lexer) advance() {
	if l.offset >= len(l.input) {
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.offset:])
	l.offset += size
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
