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

package plan

import (
	"github.com/dwalterskoetter/leichtframe-sub001/colerr"
	"github.com/dwalterskoetter/leichtframe-sub001/column"
	"github.com/dwalterskoetter/leichtframe-sub001/expr"
	"github.com/dwalterskoetter/leichtframe-sub001/frame"
)

// evalFilter returns the set of row indices for which predicate is
// truthy. It first tries the vectorized Col ⊙ Lit recognizer; any
// other predicate shape falls back to the general row-at-a-time
// evaluator. A null operand makes the predicate false for that row,
// never true (three-valued logic collapsed to boolean).
func evalFilter(f *frame.Frame, predicate expr.Node) ([]int, error) {
	if b, ok := predicate.(*expr.Binary); ok {
		if rows, ok, err := tryVectorizedComparison(f, b); ok {
			return rows, err
		}
	}
	return evalFilterGeneral(f, predicate)
}

// tryVectorizedComparison recognizes `Col ⊙ Lit` (or `Lit ⊙ Col`) with a
// comparison operator over an Int32, Float64 or String column, and
// evaluates it with a direct column scan rather than per-row scalarEval
// dispatch. The second return value reports whether the shape was
// recognized at all; when false the caller must fall back.
func tryVectorizedComparison(f *frame.Frame, b *expr.Binary) ([]int, bool, error) {
	if !b.Op.IsComparison() {
		return nil, false, nil
	}
	col, ok := b.Left.(expr.Col)
	lit, litOk := b.Right.(expr.Lit)
	op := b.Op
	if !ok || !litOk {
		// try the reversed shape: Lit ⊙ Col
		col, ok = b.Right.(expr.Col)
		lit, litOk = b.Left.(expr.Lit)
		if !ok || !litOk {
			return nil, false, nil
		}
		op = reverseComparison(op)
	}

	c, err := f.ColumnNamed(col.Name)
	if err != nil {
		return nil, true, err
	}

	switch typed := c.(type) {
	case *column.Int32Column:
		rows, err := filterInt32(typed, toInt32(lit.Value), op)
		return rows, true, err
	case *column.Float64Column:
		rows, err := filterFloat64(typed, toFloat64(lit.Value), op)
		return rows, true, err
	case *column.StringColumn:
		s, isStr := lit.Value.(string)
		if !isStr {
			return nil, true, &colerr.SchemaMismatch{Column: col.Name, Msg: "literal is not a string"}
		}
		rows, err := filterString(typed, s, op)
		return rows, true, err
	default:
		return nil, false, nil
	}
}

func reverseComparison(op expr.BinOp) expr.BinOp {
	switch op {
	case expr.OpLt:
		return expr.OpGt
	case expr.OpLte:
		return expr.OpGte
	case expr.OpGt:
		return expr.OpLt
	case expr.OpGte:
		return expr.OpLte
	default:
		return op
	}
}

func compareInt32(a, b int32, op expr.BinOp) bool {
	switch op {
	case expr.OpEq:
		return a == b
	case expr.OpNeq:
		return a != b
	case expr.OpLt:
		return a < b
	case expr.OpLte:
		return a <= b
	case expr.OpGt:
		return a > b
	case expr.OpGte:
		return a >= b
	default:
		return false
	}
}

func compareFloat64(a, b float64, op expr.BinOp) bool {
	switch op {
	case expr.OpEq:
		return a == b
	case expr.OpNeq:
		return a != b
	case expr.OpLt:
		return a < b
	case expr.OpLte:
		return a <= b
	case expr.OpGt:
		return a > b
	case expr.OpGte:
		return a >= b
	default:
		return false
	}
}

func compareString(a, b string, op expr.BinOp) bool {
	switch op {
	case expr.OpEq:
		return a == b
	case expr.OpNeq:
		return a != b
	case expr.OpLt:
		return a < b
	case expr.OpLte:
		return a <= b
	case expr.OpGt:
		return a > b
	case expr.OpGte:
		return a >= b
	default:
		return false
	}
}

func filterInt32(c *column.Int32Column, lit int32, op expr.BinOp) ([]int, error) {
	var out []int
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		if compareInt32(c.Get(i), lit, op) {
			out = append(out, i)
		}
	}
	return out, nil
}

func filterFloat64(c *column.Float64Column, lit float64, op expr.BinOp) ([]int, error) {
	var out []int
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		if compareFloat64(c.Get(i), lit, op) {
			out = append(out, i)
		}
	}
	return out, nil
}

func filterString(c *column.StringColumn, lit string, op expr.BinOp) ([]int, error) {
	var out []int
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		if compareString(c.Get(i), lit, op) {
			out = append(out, i)
		}
	}
	return out, nil
}

// evalFilterGeneral handles arbitrary predicate trees (nested AND/OR,
// comparisons against expressions rather than bare Col/Lit) via the
// row-at-a-time scalarEval fallback.
func evalFilterGeneral(f *frame.Frame, predicate expr.Node) ([]int, error) {
	var out []int
	for row := 0; row < f.RowCount(); row++ {
		v, isNull, err := scalarEval(f, predicate, row)
		if err != nil {
			return nil, err
		}
		if isNull {
			continue
		}
		if b, ok := v.(bool); ok && b {
			out = append(out, row)
		}
	}
	return out, nil
}

// scalarEval evaluates e against a single row, returning (value, isNull,
// err). It supports Col, Lit, and Binary (arithmetic, comparison, and
// logical AND/OR), every Node kind a Filter predicate can contain.
func scalarEval(f *frame.Frame, e expr.Node, row int) (any, bool, error) {
	switch n := e.(type) {
	case expr.Col:
		c, err := f.ColumnNamed(n.Name)
		if err != nil {
			return nil, false, err
		}
		return scalarFromColumn(c, row)
	case expr.Lit:
		return n.Value, n.Value == nil, nil
	case *expr.Binary:
		return scalarBinary(f, n, row)
	case *expr.Alias:
		return scalarEval(f, n.Child, row)
	default:
		return nil, false, &colerr.Unsupported{Op: "Filter", Msg: "expression kind not supported in scalar evaluation"}
	}
}

func scalarFromColumn(c column.Column, row int) (any, bool, error) {
	if c.IsNull(row) {
		return nil, true, nil
	}
	switch typed := c.(type) {
	case *column.Int32Column:
		return typed.Get(row), false, nil
	case *column.Int64Column:
		return typed.Get(row), false, nil
	case *column.Float64Column:
		return typed.Get(row), false, nil
	case *column.BoolColumn:
		return typed.Get(row), false, nil
	case *column.TimestampColumn:
		return typed.Get(row), false, nil
	case *column.StringColumn:
		return typed.Get(row), false, nil
	case *column.CategoryColumn:
		s, _ := typed.Get(row)
		return s, false, nil
	default:
		return nil, false, &colerr.Unsupported{Op: "Filter", Msg: "unsupported column kind in scalar evaluation"}
	}
}

func scalarBinary(f *frame.Frame, b *expr.Binary, row int) (any, bool, error) {
	if b.Op == expr.OpAnd || b.Op == expr.OpOr {
		lv, lNull, err := scalarEval(f, b.Left, row)
		if err != nil {
			return nil, false, err
		}
		rv, rNull, err := scalarEval(f, b.Right, row)
		if err != nil {
			return nil, false, err
		}
		lb, _ := lv.(bool)
		rb, _ := rv.(bool)
		if b.Op == expr.OpAnd {
			if (!lNull && !lb) || (!rNull && !rb) {
				return false, false, nil
			}
			if lNull || rNull {
				return nil, true, nil
			}
			return true, false, nil
		}
		if (!lNull && lb) || (!rNull && rb) {
			return true, false, nil
		}
		if lNull || rNull {
			return nil, true, nil
		}
		return false, false, nil
	}

	lv, lNull, err := scalarEval(f, b.Left, row)
	if err != nil {
		return nil, false, err
	}
	rv, rNull, err := scalarEval(f, b.Right, row)
	if err != nil {
		return nil, false, err
	}
	if lNull || rNull {
		return nil, true, nil
	}

	if b.Op.IsComparison() {
		return scalarCompare(lv, rv, b.Op)
	}
	return scalarArithmetic(lv, rv, b.Op, row)
}

func scalarCompare(lv, rv any, op expr.BinOp) (any, bool, error) {
	switch l := lv.(type) {
	case int32:
		return compareInt32(l, toInt32(rv), op), false, nil
	case int64:
		return compareInt32(int32(l), toInt32(rv), op), false, nil
	case float64:
		return compareFloat64(l, toFloat64(rv), op), false, nil
	case string:
		r, _ := rv.(string)
		return compareString(l, r, op), false, nil
	case bool:
		r, _ := rv.(bool)
		switch op {
		case expr.OpEq:
			return l == r, false, nil
		case expr.OpNeq:
			return l != r, false, nil
		default:
			return false, false, &colerr.Unsupported{Op: op.String(), Msg: "ordering comparisons are not defined on Bool"}
		}
	default:
		return false, false, &colerr.Unsupported{Op: op.String(), Msg: "unsupported comparison operand type"}
	}
}

func scalarArithmetic(lv, rv any, op expr.BinOp, row int) (any, bool, error) {
	switch l := lv.(type) {
	case int32:
		r := toInt32(rv)
		if op == expr.OpDiv && r == 0 {
			return nil, true, &colerr.ArithError{Row: row, Msg: "division by zero"}
		}
		return scalarArithInt32(l, r, op), false, nil
	default:
		lf, rf := toFloat64(lv), toFloat64(rv)
		return scalarArithFloat64(lf, rf, op), false, nil
	}
}

func scalarArithInt32(a, b int32, op expr.BinOp) int32 {
	switch op {
	case expr.OpAdd:
		return a + b
	case expr.OpSub:
		return a - b
	case expr.OpMul:
		return a * b
	case expr.OpDiv:
		return a / b
	default:
		return 0
	}
}

func scalarArithFloat64(a, b float64, op expr.BinOp) float64 {
	switch op {
	case expr.OpAdd:
		return a + b
	case expr.OpSub:
		return a - b
	case expr.OpMul:
		return a * b
	case expr.OpDiv:
		return a / b
	default:
		return 0
	}
}
