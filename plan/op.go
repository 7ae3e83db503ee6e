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

// Package plan implements the lazy relational plan and physical
// planner: LazyFrame's fluent builder over Scan/Filter/Project/Join/
// Aggregate/OrderBy nodes, the pattern-matching lowering to the group-by
// and aggregation kernels, sort/join/filter, and the zero-allocation
// streaming iterator. Plan nodes operate directly on in-memory Frames;
// there is no SQL or wire boundary.
package plan

import (
	"github.com/dwalterskoetter/leichtframe-sub001/expr"
	"github.com/dwalterskoetter/leichtframe-sub001/frame"
)

// Op is one node of the lazy plan tree. Scan is the only Op with no
// input; every other Op wraps exactly one upstream Op (Join additionally
// references a second, independent Op tree for its right side).
type Op interface {
	input() Op
}

// Nonterminal is embedded by every non-Scan Op to provide the input()
// plumbing.
type Nonterminal struct {
	From Op
}

func (n *Nonterminal) input() Op { return n.From }

// ScanOp is the plan's leaf: a direct reference to a materialized Frame.
type ScanOp struct {
	Frame *frame.Frame
}

func (s *ScanOp) input() Op { return nil }

// FilterOp keeps only rows for which Predicate evaluates truthy.
type FilterOp struct {
	Nonterminal
	Predicate expr.Node
}

// ProjectOp replaces the column set with the evaluated Exprs, each
// optionally wrapped in expr.Alias to name its output column.
type ProjectOp struct {
	Nonterminal
	Exprs []expr.Node
}

// JoinKind selects Inner or Left join semantics.
type JoinKind int

const (
	Inner JoinKind = iota
	Left
)

// JoinOp equi-joins its (left) input against Right on Key, a column name
// present in both sides.
type JoinOp struct {
	Nonterminal
	Right Op
	Key   string
	Kind  JoinKind
}

// AggregateOp groups its input by GroupExprs (each must be expr.Col) and
// evaluates AggExprs (each expr.Agg, optionally wrapped in expr.Alias)
// per group.
type AggregateOp struct {
	Nonterminal
	GroupExprs []expr.Node
	AggExprs   []expr.Node
}

// OrderByOp permutes rows by Keys (column names), each direction set by
// the corresponding entry of Ascending.
type OrderByOp struct {
	Nonterminal
	Keys      []string
	Ascending []bool
}

// LazyFrame is the fluent plan builder exposed to callers:
// every method returns a new LazyFrame wrapping one more Op, leaving the
// receiver (and the underlying source Frame) untouched.
type LazyFrame struct {
	op Op
}

// FromFrame wraps f in a LazyFrame rooted at a ScanOp.
func FromFrame(f *frame.Frame) LazyFrame {
	return LazyFrame{op: &ScanOp{Frame: f}}
}

// Filter appends a FilterOp.
func (l LazyFrame) Filter(predicate expr.Node) LazyFrame {
	return LazyFrame{op: &FilterOp{Nonterminal: Nonterminal{l.op}, Predicate: predicate}}
}

// Project appends a ProjectOp.
func (l LazyFrame) Project(exprs ...expr.Node) LazyFrame {
	return LazyFrame{op: &ProjectOp{Nonterminal: Nonterminal{l.op}, Exprs: exprs}}
}

// Join appends a JoinOp against right's plan.
func (l LazyFrame) Join(right LazyFrame, key string, kind JoinKind) LazyFrame {
	return LazyFrame{op: &JoinOp{Nonterminal: Nonterminal{l.op}, Right: right.op, Key: key, Kind: kind}}
}

// Aggregate appends an AggregateOp.
func (l LazyFrame) Aggregate(groupExprs, aggExprs []expr.Node) LazyFrame {
	return LazyFrame{op: &AggregateOp{Nonterminal: Nonterminal{l.op}, GroupExprs: groupExprs, AggExprs: aggExprs}}
}

// OrderBy appends an OrderByOp.
func (l LazyFrame) OrderBy(keys []string, ascending []bool) LazyFrame {
	return LazyFrame{op: &OrderByOp{Nonterminal: Nonterminal{l.op}, Keys: keys, Ascending: ascending}}
}
