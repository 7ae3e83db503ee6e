// Copyright (C) 2024 Daniel Walterskoetter
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package expr implements the logical-plan expression AST: Col, Lit,
// Binary, Alias and Agg nodes, plus a Visitor/Rewriter traversal pair in
// the style of go/ast. There is no wire encoding: Node only needs
// Equals, text rendering and traversal.
package expr

import (
	"fmt"
	"strings"
)

// Visitor's Visit method is invoked for each node encountered by Walk.
// If the returned visitor w is non-nil, Walk visits each child of node
// with w, followed by a call to w.Visit(nil).
type Visitor interface {
	Visit(Node) Visitor
}

// Rewriter rewrites nodes in depth-first order; Walk controls whether
// traversal proceeds past a given node.
type Rewriter interface {
	Rewrite(Node) Node
	Walk(Node) Rewriter
}

type nonleaf interface {
	rewrite(r Rewriter) Node
}

// Rewrite recursively applies r to n in depth-first order.
func Rewrite(r Rewriter, n Node) Node {
	if n == nil {
		return nil
	}
	if nl, ok := n.(nonleaf); ok {
		if rc := r.Walk(n); rc != nil {
			n = nl.rewrite(rc)
		}
	}
	return r.Rewrite(n)
}

// Walk traverses an AST in depth-first order, mirroring go/ast.Walk.
func Walk(v Visitor, n Node) {
	w := v.Visit(n)
	if w != nil {
		n.walk(w)
		w.Visit(nil)
	}
}

// Node is an expression AST node.
type Node interface {
	// Text renders n in an approximately SQL-like surface syntax, used
	// only for diagnostics/logging (there is no parser to round-trip
	// through).
	Text() string
	Equals(Node) bool
	walk(Visitor)
}

// Col references a frame column by name.
type Col struct {
	Name string
}

func (c Col) Text() string { return c.Name }
func (c Col) Equals(n Node) bool {
	o, ok := n.(Col)
	return ok && o.Name == c.Name
}
func (c Col) walk(Visitor) {}

// Lit is a literal scalar value: one of int32, int64, float64, string,
// bool, or nil (representing a SQL-style NULL literal).
type Lit struct {
	Value any
}

func (l Lit) Text() string {
	if l.Value == nil {
		return "NULL"
	}
	switch v := l.Value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
func (l Lit) Equals(n Node) bool {
	o, ok := n.(Lit)
	return ok && o.Value == l.Value
}
func (l Lit) walk(Visitor) {}

// BinOp enumerates the binary operators:
// `+ − × ÷ == ≠ < ≤ > ≥ ∧ ∨`.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
)

func (o BinOp) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	default:
		return "?"
	}
}

// IsComparison reports whether o is one of the six comparison operators,
// used by the planner's Filter(Col ⊙ Lit) recognizer.
func (o BinOp) IsComparison() bool {
	return o >= OpEq && o <= OpGte
}

// IsArithmetic reports whether o is one of +-*/, used by Project lowering.
func (o BinOp) IsArithmetic() bool {
	return o <= OpDiv
}

// Binary is a two-operand expression: lhs ⊙ rhs.
type Binary struct {
	Op          BinOp
	Left, Right Node
}

func (b *Binary) Text() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.Text(), b.Op, b.Right.Text())
}
func (b *Binary) Equals(n Node) bool {
	o, ok := n.(*Binary)
	return ok && o.Op == b.Op && b.Left.Equals(o.Left) && b.Right.Equals(o.Right)
}
func (b *Binary) walk(v Visitor) {
	Walk(v, b.Left)
	Walk(v, b.Right)
}
func (b *Binary) rewrite(r Rewriter) Node {
	b.Left = Rewrite(r, b.Left)
	b.Right = Rewrite(r, b.Right)
	return b
}

// Alias names the result of child as Name, used by Project to pin an
// output column name (e.g. `(Val*2+5).As("R")`).
type Alias struct {
	Child Node
	Name  string
}

func (a *Alias) Text() string {
	return fmt.Sprintf("%s AS %s", a.Child.Text(), a.Name)
}
func (a *Alias) Equals(n Node) bool {
	o, ok := n.(*Alias)
	return ok && o.Name == a.Name && a.Child.Equals(o.Child)
}
func (a *Alias) walk(v Visitor) { Walk(v, a.Child) }
func (a *Alias) rewrite(r Rewriter) Node {
	a.Child = Rewrite(r, a.Child)
	return a
}

// As wraps n in an Alias.
func As(n Node, name string) *Alias { return &Alias{Child: n, Name: name} }

// AggOp enumerates the five aggregation kernels.
type AggOp int

const (
	AggSum AggOp = iota
	AggMean
	AggMin
	AggMax
	AggCount
)

func (a AggOp) String() string {
	switch a {
	case AggSum:
		return "Sum"
	case AggMean:
		return "Mean"
	case AggMin:
		return "Min"
	case AggMax:
		return "Max"
	case AggCount:
		return "Count"
	default:
		return "?"
	}
}

// Agg is an aggregation expression, e.g. Agg{Op: AggSum, Child: Col{"x"}}.
type Agg struct {
	Op    AggOp
	Child Node
}

func (a *Agg) Text() string {
	return fmt.Sprintf("%s(%s)", a.Op, a.Child.Text())
}
func (a *Agg) Equals(n Node) bool {
	o, ok := n.(*Agg)
	return ok && o.Op == a.Op && a.Child.Equals(o.Child)
}
func (a *Agg) walk(v Visitor) { Walk(v, a.Child) }
func (a *Agg) rewrite(r Rewriter) Node {
	a.Child = Rewrite(r, a.Child)
	return a
}

// Render is a convenience wrapper around Node.Text for diagnostics.
func Render(n Node) string {
	if n == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(n.Text())
	return b.String()
}
