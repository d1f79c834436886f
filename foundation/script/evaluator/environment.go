// File: environment.go
// Title: Variable Environment
// Description: Name to Value bindings for one run or one REPL session.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16

package evaluator

import (
	"sort"

	"github.com/msto63/frege/foundation/script/value"
)

// Environment maps variable names to unevaluated values. It is owned by a
// single run and is not safe for concurrent use.
type Environment struct {
	bindings        map[string]value.Value
	maxResolveDepth int
}

// Binding is one entry of an environment snapshot
type Binding struct {
	Name  string
	Value value.Value
}

// NewEnvironment creates an empty environment. maxResolveDepth bounds
// variable chains during evaluation; 0 means unbounded.
func NewEnvironment(maxResolveDepth int) *Environment {
	return &Environment{
		bindings:        make(map[string]value.Value),
		maxResolveDepth: maxResolveDepth,
	}
}

// Set binds name to v, replacing any earlier binding
func (e *Environment) Set(name string, v value.Value) {
	e.bindings[name] = v
}

// Lookup implements value.Scope
func (e *Environment) Lookup(name string) (value.Value, bool) {
	v, ok := e.bindings[name]
	return v, ok
}

// MaxResolveDepth implements value.DepthLimiter
func (e *Environment) MaxResolveDepth() int {
	return e.maxResolveDepth
}

// Len returns the number of bindings
func (e *Environment) Len() int {
	return len(e.bindings)
}

// Snapshot returns the bindings sorted by name
func (e *Environment) Snapshot() []Binding {
	out := make([]Binding, 0, len(e.bindings))
	for name, v := range e.bindings {
		out = append(out, Binding{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
