// Package value implements the runtime values of Frege scripts.
//
// Package: value
// Title: Frege Value Model
// Description: A Value is a Number, a String, a Variable reference or a
//              MathExpression over two Values. Values are immutable trees
//              built from parse nodes; Evaluate reduces one to its printed
//              text against a Scope without modifying either.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Operator rules:
//
//	+  Number+Number   sum
//	   Number+String   number text followed by the string, right side taken as is
//	   String+any      string followed by the evaluated right side
//	-*/ Number,Number  arithmetic result
//
// A Variable on the left of + is first replaced by the value it is bound to.
// Every other combination fails with *OperandError. In particular -, * and /
// never resolve a Variable or a nested expression.
package value
