// Package grammar turns Frege source text into a parse tree.
//
// Package: grammar
// Title: Frege Grammar Parser
// Description: Hand-written lexer and recursive-descent parser. The parser
//              emits a tree of rule-tagged nodes (program, statement,
//              assignment, function_call, argument, math_expression,
//              operator, identifier, number, string, inner, EOI) and reports
//              failures as *SyntaxError with a 1-based line and column.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation
//
// Grammar:
//
//	program         = statement* EOI
//	statement       = (assignment | function_call | math_expression) ";"
//	assignment      = identifier "=" value
//	function_call   = identifier "(" [argument ("," argument)*] ")"
//	argument        = value
//	value           = math_expression | number | string | identifier
//	math_expression = operand operator (math_expression | operand)
//	operand         = "(" math_expression ")" | number | string | identifier
//	operator        = "+" | "-" | "*" | "/"
//
// Operators associate to the right and share one precedence level. The ";"
// after the last statement may be omitted.
//
// Usage:
//
//	tree, err := grammar.Parse(`x = 4 * 2; print(x);`)
//	var syntaxErr *grammar.SyntaxError
//	if errors.As(err, &syntaxErr) {
//		fmt.Println(syntaxErr.Line, syntaxErr.Column)
//	}
package grammar
