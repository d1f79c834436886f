// File: errors.go
// Title: Syntax Errors
// Description: SyntaxError carries the position, message and offending
//              source line of a parse failure.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16

package grammar

import (
	"fmt"

	ferror "github.com/msto63/frege/foundation/core/error"
	"github.com/msto63/frege/foundation/utils/stringx"
)

// SyntaxError reports input the grammar rejects
type SyntaxError struct {
	Line     int
	Column   int
	Message  string
	LineText string

	cause *ferror.Error
}

func newSyntaxError(source string, pos Position, message string) *SyntaxError {
	lineText := ""
	if lines := stringx.SplitLines(source); pos.Line >= 1 && pos.Line <= len(lines) {
		lineText = lines[pos.Line-1]
	}
	return &SyntaxError{
		Line:     pos.Line,
		Column:   pos.Column,
		Message:  message,
		LineText: lineText,
		cause: ferror.New(message).
			WithCode(ferror.CodeScriptSyntax).
			WithOperation("grammar.Parse").
			WithDetail("line", pos.Line).
			WithDetail("column", pos.Column),
	}
}

// Error renders the diagnostic shown to users
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("on Line: (%d, %d) -> Syntax Error: %s -> %s", e.Line, e.Column, e.Message, e.LineText)
}

// Unwrap exposes the coded error for logging and HasCode
func (e *SyntaxError) Unwrap() error {
	if e.cause == nil {
		return nil
	}
	return e.cause
}
