// File: value.go
// Title: Value Variants and Parsing
// Description: Value variants and their construction from parse nodes.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16

package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/msto63/frege/foundation/script/grammar"
)

// Kind identifies a Value variant
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindVariable
	KindMathExpression
)

// String returns the lower case variant name used in error messages
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindVariable:
		return "variable"
	case KindMathExpression:
		return "math expression"
	default:
		return "unknown"
	}
}

// Value is one of Number, String, Variable or MathExpression
type Value interface {
	Kind() Kind
	// String renders the value as source text that parses back to the same value
	String() string
	isValue()
}

// Number is a numeric literal or computed result
type Number float64

// String is a string literal with all quote characters removed
type String string

// Variable is an unresolved reference to a binding
type Variable string

// MathExpression applies Op to two operand values
type MathExpression struct {
	Left  Value
	Op    Operator
	Right Value
}

func (Number) Kind() Kind         { return KindNumber }
func (String) Kind() Kind         { return KindString }
func (Variable) Kind() Kind       { return KindVariable }
func (MathExpression) Kind() Kind { return KindMathExpression }

func (Number) isValue()         {}
func (String) isValue()         {}
func (Variable) isValue()       {}
func (MathExpression) isValue() {}

func (n Number) String() string   { return FormatNumber(float64(n)) }
func (s String) String() string   { return `"` + string(s) + `"` }
func (v Variable) String() string { return string(v) }

// String parenthesizes a nested left operand; the grammar groups to the right
func (m MathExpression) String() string {
	left := m.Left.String()
	if m.Left.Kind() == KindMathExpression {
		left = "(" + left + ")"
	}
	return left + " " + m.Op.String() + " " + m.Right.String()
}

// Parse builds a Value from a number, string, math_expression or identifier
// node. It reports false for any other node and for malformed literals.
func Parse(node *grammar.Node) (Value, bool) {
	if node == nil {
		return nil, false
	}

	switch node.Rule {
	case grammar.RuleNumber:
		inner := node.Inner()
		if inner == nil {
			return nil, false
		}
		f, err := strconv.ParseFloat(inner.Text, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, false
		}
		return Number(f), true

	case grammar.RuleString:
		inner := node.Inner()
		if inner == nil {
			return nil, false
		}
		return String(stripQuotes(inner.Text)), true

	case grammar.RuleMathExpression:
		if len(node.Children) != 3 {
			return nil, false
		}
		left, ok := Parse(node.Children[0])
		if !ok {
			return nil, false
		}
		op, ok := ParseOperator(node.Children[1].Text)
		if !ok {
			return nil, false
		}
		right, ok := Parse(node.Children[2])
		if !ok {
			return nil, false
		}
		return MathExpression{Left: left, Op: op, Right: right}, true

	case grammar.RuleIdentifier:
		return Variable(node.Text), true

	default:
		return nil, false
	}
}

var quoteStripper = strings.NewReplacer(`"`, "", "'", "")

func stripQuotes(s string) string {
	return quoteStripper.Replace(s)
}

// FormatNumber renders f as the shortest decimal that round-trips, without
// an exponent. Infinities print as inf and -inf, NaN as NaN.
func FormatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}
