// File: node.go
// Title: Parse Tree Nodes
// Description: Rule-tagged parse tree nodes with source spans.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16

package grammar

import (
	"fmt"
	"strings"
)

// Rule tags a parse tree node with the grammar rule that produced it
type Rule int

const (
	RuleProgram Rule = iota
	RuleStatement
	RuleAssignment
	RuleFunctionCall
	RuleArgument
	RuleMathExpression
	RuleOperator
	RuleIdentifier
	RuleNumber
	RuleString
	RuleInner
	RuleEOI
)

var ruleNames = map[Rule]string{
	RuleProgram:        "program",
	RuleStatement:      "statement",
	RuleAssignment:     "assignment",
	RuleFunctionCall:   "function_call",
	RuleArgument:       "argument",
	RuleMathExpression: "math_expression",
	RuleOperator:       "operator",
	RuleIdentifier:     "identifier",
	RuleNumber:         "number",
	RuleString:         "string",
	RuleInner:          "inner",
	RuleEOI:            "EOI",
}

// String returns the rule name as written in the grammar
func (r Rule) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("rule(%d)", int(r))
}

// Position is a location in the source. Line and Column are 1-based,
// Column counts runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Node is a parse tree node. Text is the exact source slice the node covers.
type Node struct {
	Rule     Rule
	Text     string
	Pos      Position
	Children []*Node
}

// Line returns the 1-based line the node starts on
func (n *Node) Line() int {
	return n.Pos.Line
}

// Inner returns the first child, or nil for a leaf
func (n *Node) Inner() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Dump renders the subtree one node per line, indented by depth
func (n *Node) Dump() string {
	var b strings.Builder
	n.dump(&b, 0)
	return b.String()
}

func (n *Node) dump(b *strings.Builder, depth int) {
	fmt.Fprintf(b, "%s%s %q\n", strings.Repeat("  ", depth), n.Rule, n.Text)
	for _, child := range n.Children {
		child.dump(b, depth+1)
	}
}
