// File: evaluate.go
// Title: Value Evaluation
// Description: Reduces values to text, resolving variables through a Scope.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16

package value

import (
	"fmt"
)

// Scope resolves variable names. Evaluation only reads from it.
type Scope interface {
	Lookup(name string) (Value, bool)
}

// DepthLimiter is implemented by scopes that bound variable resolution.
// A limit of 0 or less means unbounded.
type DepthLimiter interface {
	MaxResolveDepth() int
}

// UnresolvedError reports a variable without a binding
type UnresolvedError struct {
	Name string
}

func (e *UnresolvedError) Error() string {
	return "unresolved variable: " + e.Name
}

// OperandError reports an operator applied to operands it does not accept
type OperandError struct {
	Op    Operator
	Left  Kind
	Right Kind
}

func (e *OperandError) Error() string {
	return fmt.Sprintf("unsupported operands for %s: %s and %s", e.Op, e.Left, e.Right)
}

// DepthError reports a variable chain longer than the scope allows
type DepthError struct {
	Name  string
	Limit int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("variable resolution exceeded depth %d at %s", e.Limit, e.Name)
}

// CycleError reports a variable chain that leads back to itself
type CycleError struct {
	Name string
}

func (e *CycleError) Error() string {
	return "variable refers back to itself: " + e.Name
}

// Evaluate reduces v to its printed text
func Evaluate(v Value, scope Scope) (string, error) {
	return newResolver(scope).evaluate(v)
}

type resolver struct {
	scope Scope
	limit int
	depth int
}

func newResolver(scope Scope) *resolver {
	r := &resolver{scope: scope}
	if dl, ok := scope.(DepthLimiter); ok {
		r.limit = dl.MaxResolveDepth()
	}
	return r
}

func (r *resolver) evaluate(v Value) (string, error) {
	switch x := v.(type) {
	case Number:
		return FormatNumber(float64(x)), nil
	case String:
		return string(x), nil
	case MathExpression:
		return x.Op.apply(x.Left, x.Right, r)
	case Variable:
		return r.resolve(string(x))
	default:
		return "", fmt.Errorf("unknown value %T", v)
	}
}

// deref follows a chain of variables to the first bound value that is not
// itself a variable. Without a depth limit a chain that revisits a name is
// reported as a cycle, since the loop would never end.
func (r *resolver) deref(name string) (Value, error) {
	steps := r.depth
	var seen map[string]bool
	for {
		bound, ok := r.lookup(name)
		if !ok {
			return nil, &UnresolvedError{Name: name}
		}
		if r.limit > 0 && steps >= r.limit {
			return nil, &DepthError{Name: name, Limit: r.limit}
		}
		if r.limit <= 0 {
			if seen[name] {
				return nil, &CycleError{Name: name}
			}
			if seen == nil {
				seen = make(map[string]bool)
			}
			seen[name] = true
		}
		steps++
		next, isVar := bound.(Variable)
		if !isVar {
			return bound, nil
		}
		name = string(next)
	}
}

func (r *resolver) lookup(name string) (Value, bool) {
	if r.scope == nil {
		return nil, false
	}
	return r.scope.Lookup(name)
}

func (r *resolver) resolve(name string) (string, error) {
	bound, ok := r.lookup(name)
	if !ok {
		return "", &UnresolvedError{Name: name}
	}

	if r.limit > 0 && r.depth >= r.limit {
		return "", &DepthError{Name: name, Limit: r.limit}
	}
	r.depth++
	defer func() { r.depth-- }()

	return r.evaluate(bound)
}
