// File: operator.go
// Title: Binary Operators
// Description: The four arithmetic operators and their operand rules.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16

package value

// Operator is one of + - * /
type Operator int

const (
	OpAdd Operator = iota
	OpSubtract
	OpMultiply
	OpDivide
)

// ParseOperator maps the operator text to an Operator
func ParseOperator(text string) (Operator, bool) {
	switch text {
	case "+":
		return OpAdd, true
	case "-":
		return OpSubtract, true
	case "*":
		return OpMultiply, true
	case "/":
		return OpDivide, true
	default:
		return 0, false
	}
}

// String returns the operator symbol
func (op Operator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	default:
		return "?"
	}
}

// Apply evaluates left op right against scope
func (op Operator) Apply(left, right Value, scope Scope) (string, error) {
	return op.apply(left, right, newResolver(scope))
}

func (op Operator) apply(left, right Value, r *resolver) (string, error) {
	if op == OpAdd {
		// A variable on the left is followed to its bound value, which is then
		// matched like a literal: y = "a"; y + 4 gives "a4", while a bound
		// expression on the left still fails. Sub, Mul and Div never resolve.
		if name, ok := left.(Variable); ok {
			bound, err := r.deref(string(name))
			if err != nil {
				return "", err
			}
			left = bound
		}
		switch l := left.(type) {
		case Number:
			switch rv := right.(type) {
			case Number:
				return FormatNumber(float64(l) + float64(rv)), nil
			case String:
				// right side is used as written, never resolved
				return FormatNumber(float64(l)) + string(rv), nil
			}
		case String:
			rs, err := r.evaluate(right)
			if err != nil {
				return "", err
			}
			return string(l) + rs, nil
		}
		return "", &OperandError{Op: op, Left: left.Kind(), Right: right.Kind()}
	}

	l, lok := left.(Number)
	rv, rok := right.(Number)
	if !lok || !rok {
		return "", &OperandError{Op: op, Left: left.Kind(), Right: right.Kind()}
	}

	switch op {
	case OpSubtract:
		return FormatNumber(float64(l) - float64(rv)), nil
	case OpMultiply:
		return FormatNumber(float64(l) * float64(rv)), nil
	case OpDivide:
		return FormatNumber(float64(l) / float64(rv)), nil
	default:
		return "", &OperandError{Op: op, Left: left.Kind(), Right: right.Kind()}
	}
}
