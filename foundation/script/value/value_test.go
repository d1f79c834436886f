// File: value_test.go
// Title: Value Model Tests
// Description: Tests for parsing values from nodes, number formatting,
//              operator rules and variable resolution.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16

package value

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/msto63/frege/foundation/script/grammar"
)

type mapScope map[string]Value

func (m mapScope) Lookup(name string) (Value, bool) {
	v, ok := m[name]
	return v, ok
}

type limitedScope struct {
	mapScope
	limit int
}

func (l limitedScope) MaxResolveDepth() int { return l.limit }

// argumentNode parses "print(<src>);" and returns the argument's value node
func argumentNode(t *testing.T, src string) *grammar.Node {
	t.Helper()
	program, err := grammar.Parse("print(" + src + ");")
	if err != nil {
		t.Fatalf("grammar.Parse(%q) error = %v", src, err)
	}
	return program.Children[0].Children[0].Children[1].Inner()
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, v Value)
	}{
		{
			name: "integer",
			src:  "42",
			check: func(t *testing.T, v Value) {
				if v != Number(42) {
					t.Errorf("got %#v, want Number(42)", v)
				}
			},
		},
		{
			name: "fraction",
			src:  "2.50",
			check: func(t *testing.T, v Value) {
				if v != Number(2.5) {
					t.Errorf("got %#v, want Number(2.5)", v)
				}
			},
		},
		{
			name: "apostrophe inside double quotes removed",
			src:  `"it's"`,
			check: func(t *testing.T, v Value) {
				if v != String("its") {
					t.Errorf("got %#v, want String(its)", v)
				}
			},
		},
		{
			name: "single quoted with inner double quote",
			src:  `'say "hi"'`,
			check: func(t *testing.T, v Value) {
				if v != String("say hi") {
					t.Errorf("got %#v, want String(say hi)", v)
				}
			},
		},
		{
			name: "identifier",
			src:  "counter",
			check: func(t *testing.T, v Value) {
				if v != Variable("counter") {
					t.Errorf("got %#v", v)
				}
			},
		},
		{
			name: "nested expression keeps operand order",
			src:  `(1 - 2) * "x"`,
			check: func(t *testing.T, v Value) {
				m, ok := v.(MathExpression)
				if !ok || m.Op != OpMultiply || m.Right != String("x") {
					t.Fatalf("got %#v", v)
				}
				inner, ok := m.Left.(MathExpression)
				if !ok || inner.Left != Number(1) || inner.Op != OpSubtract || inner.Right != Number(2) {
					t.Errorf("left = %#v", m.Left)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := Parse(argumentNode(t, tt.src))
			if !ok {
				t.Fatalf("Parse(%q) failed", tt.src)
			}
			tt.check(t, v)
		})
	}
}

func TestParse_Failures(t *testing.T) {
	huge := "1" + strings.Repeat("0", 400)
	tests := []struct {
		name string
		node *grammar.Node
	}{
		{"nil node", nil},
		{"number without inner", &grammar.Node{Rule: grammar.RuleNumber, Text: "1"}},
		{"number with bad text", &grammar.Node{Rule: grammar.RuleNumber, Children: []*grammar.Node{{Rule: grammar.RuleInner, Text: "1.2.3"}}}},
		{"number out of range", &grammar.Node{Rule: grammar.RuleNumber, Children: []*grammar.Node{{Rule: grammar.RuleInner, Text: huge}}}},
		{"string without inner", &grammar.Node{Rule: grammar.RuleString, Text: `"a"`}},
		{"unknown operator", &grammar.Node{Rule: grammar.RuleMathExpression, Children: []*grammar.Node{
			{Rule: grammar.RuleIdentifier, Text: "a"},
			{Rule: grammar.RuleOperator, Text: "%"},
			{Rule: grammar.RuleIdentifier, Text: "b"},
		}}},
		{"bad right operand", &grammar.Node{Rule: grammar.RuleMathExpression, Children: []*grammar.Node{
			{Rule: grammar.RuleIdentifier, Text: "a"},
			{Rule: grammar.RuleOperator, Text: "+"},
			{Rule: grammar.RuleStatement, Text: "b"},
		}}},
		{"other rule", &grammar.Node{Rule: grammar.RuleFunctionCall, Text: "print()"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v, ok := Parse(tt.node); ok {
				t.Errorf("Parse() = %#v, want failure", v)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{8, "8"},
		{2.5, "2.5"},
		{0.1 + 0.2, "0.30000000000000004"},
		{1e21, "1000000000000000000000"},
		{-3, "-3"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEvaluate_Operators(t *testing.T) {
	scope := mapScope{
		"y":    String("a"),
		"n":    Number(2),
		"expr": MathExpression{Left: Number(4), Op: OpMultiply, Right: Number(2)},
	}

	tests := []struct {
		name    string
		value   Value
		want    string
		wantErr string
	}{
		{"number plus number", MathExpression{Number(1), OpAdd, Number(2)}, "3", ""},
		{"number plus string", MathExpression{Number(4), OpAdd, String("a")}, "4a", ""},
		{"string plus number", MathExpression{String("a"), OpAdd, Number(4)}, "a4", ""},
		{"string plus variable resolves deeply", MathExpression{String("x="), OpAdd, Variable("expr")}, "x=8", ""},
		{"string variable plus number", MathExpression{Variable("y"), OpAdd, Number(4)}, "a4", ""},
		{"number variable plus number", MathExpression{Variable("n"), OpAdd, Number(1)}, "3", ""},
		{"variable bound to expression plus number fails", MathExpression{Variable("expr"), OpAdd, Number(1)}, "", "unsupported operands for +: math expression and number"},
		{"number plus variable fails", MathExpression{Number(4), OpAdd, Variable("y")}, "", "unsupported operands for +: number and variable"},
		{"subtract", MathExpression{Number(3), OpSubtract, Number(1)}, "2", ""},
		{"multiply", MathExpression{Number(4), OpMultiply, Number(2)}, "8", ""},
		{"divide", MathExpression{Number(1), OpDivide, Number(4)}, "0.25", ""},
		{"divide by zero", MathExpression{Number(1), OpDivide, Number(0)}, "inf", ""},
		{"nested left operand of divide fails", MathExpression{MathExpression{Number(0), OpSubtract, Number(1)}, OpDivide, Number(0)}, "", "unsupported operands for /: math expression and number"},
		{"zero by zero", MathExpression{Number(0), OpDivide, Number(0)}, "NaN", ""},
		{"subtract variable fails", MathExpression{Number(3), OpSubtract, Variable("n")}, "", "unsupported operands for -: number and variable"},
		{"multiply nested fails", MathExpression{Number(3), OpMultiply, MathExpression{Number(1), OpAdd, Number(1)}}, "", "unsupported operands for *: number and math expression"},
		{"divide strings fails", MathExpression{String("a"), OpDivide, String("b")}, "", "unsupported operands for /: string and string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.value, scope)
			if tt.wantErr != "" {
				var opErr *OperandError
				if !errors.As(err, &opErr) {
					t.Fatalf("error = %v, want *OperandError", err)
				}
				if err.Error() != tt.wantErr {
					t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvaluate_Variables(t *testing.T) {
	scope := mapScope{
		"a": Variable("b"),
		"b": Variable("c"),
		"c": Number(7),
		"s": Variable("s"),
	}

	got, err := Evaluate(Variable("a"), scope)
	if err != nil || got != "7" {
		t.Errorf("Evaluate(a) = %q, %v; want 7", got, err)
	}

	_, err = Evaluate(Variable("missing"), scope)
	var unresolved *UnresolvedError
	if !errors.As(err, &unresolved) || unresolved.Name != "missing" {
		t.Errorf("error = %v, want unresolved missing", err)
	}
	if err.Error() != "unresolved variable: missing" {
		t.Errorf("message = %q", err.Error())
	}

	if _, err := Evaluate(Variable("x"), nil); err == nil {
		t.Error("nil scope should leave every variable unresolved")
	}
}

func TestEvaluate_DepthLimit(t *testing.T) {
	chain := mapScope{"a": Variable("b"), "b": Variable("c"), "c": String("end"), "self": Variable("self")}

	if got, err := Evaluate(Variable("a"), limitedScope{chain, 3}); err != nil || got != "end" {
		t.Errorf("chain of 3 within limit 3: %q, %v", got, err)
	}

	_, err := Evaluate(Variable("a"), limitedScope{chain, 2})
	var depthErr *DepthError
	if !errors.As(err, &depthErr) || depthErr.Limit != 2 || depthErr.Name != "c" {
		t.Errorf("error = %v, want depth error at c", err)
	}

	_, err = Evaluate(Variable("self"), limitedScope{chain, 50})
	if !errors.As(err, &depthErr) {
		t.Errorf("self reference error = %v, want *DepthError", err)
	}
}

func TestEvaluate_AddDerefsLeftVariable(t *testing.T) {
	scope := mapScope{"a": Variable("b"), "b": String("s"), "loop": Variable("loop")}

	if got, err := Evaluate(MathExpression{Variable("a"), OpAdd, Number(1)}, scope); err != nil || got != "s1" {
		t.Errorf("chained left operand: %q, %v", got, err)
	}

	_, err := Evaluate(MathExpression{Variable("nope"), OpAdd, Number(1)}, scope)
	var unresolved *UnresolvedError
	if !errors.As(err, &unresolved) || unresolved.Name != "nope" {
		t.Errorf("error = %v, want unresolved nope", err)
	}

	_, err = Evaluate(MathExpression{Variable("loop"), OpAdd, Number(1)}, limitedScope{scope, 10})
	var depthErr *DepthError
	if !errors.As(err, &depthErr) {
		t.Errorf("error = %v, want *DepthError", err)
	}
}

func TestEvaluate_AddUnboundedCycle(t *testing.T) {
	scope := mapScope{
		"loop": Variable("loop"),
		"a":    Variable("b"),
		"b":    Variable("c"),
		"c":    Variable("a"),
	}

	for _, name := range []string{"loop", "a"} {
		t.Run(name, func(t *testing.T) {
			done := make(chan error, 1)
			go func() {
				_, err := Evaluate(MathExpression{Variable(name), OpAdd, Number(1)}, scope)
				done <- err
			}()

			select {
			case err := <-done:
				var cycleErr *CycleError
				if !errors.As(err, &cycleErr) || cycleErr.Name != name {
					t.Errorf("error = %v, want cycle at %s", err, name)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Evaluate did not return on a variable cycle")
			}
		})
	}
}

func TestEvaluate_DoesNotMutate(t *testing.T) {
	expr := MathExpression{Left: String("v"), Op: OpAdd, Right: Variable("n")}
	scope := mapScope{"n": Number(1)}

	for i := 0; i < 2; i++ {
		if got, err := Evaluate(expr, scope); err != nil || got != "v1" {
			t.Fatalf("run %d: %q, %v", i, got, err)
		}
	}
	if len(scope) != 1 || scope["n"] != Number(1) {
		t.Errorf("scope changed: %v", scope)
	}
	if expr.Right != Variable("n") {
		t.Errorf("expression changed: %#v", expr)
	}
}

func TestValueString(t *testing.T) {
	v, ok := Parse(argumentNode(t, `(1 + x) * 2 - "a b"`))
	if !ok {
		t.Fatal("Parse failed")
	}
	rendered := v.String()
	if rendered != `(1 + x) * 2 - "a b"` {
		t.Errorf("String() = %q", rendered)
	}

	again, ok := Parse(argumentNode(t, rendered))
	if !ok || again.String() != rendered {
		t.Errorf("rendering does not round-trip: %v", again)
	}
}
