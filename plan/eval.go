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
	"github.com/dwalterskoetter/leichtframe-sub001/arith"
	"github.com/dwalterskoetter/leichtframe-sub001/colerr"
	"github.com/dwalterskoetter/leichtframe-sub001/column"
	"github.com/dwalterskoetter/leichtframe-sub001/expr"
	"github.com/dwalterskoetter/leichtframe-sub001/frame"
)

// evalProjectExpr lowers Project's per-output expression to a column,
// chaining arithmetic kernels as it recurses. It unwraps a
// leading Alias (the output name is read by the caller, not here), then
// recurses over Col/Lit/Binary.
func evalProjectExpr(f *frame.Frame, e expr.Node) (column.Column, error) {
	switch n := e.(type) {
	case *expr.Alias:
		return evalProjectExpr(f, n.Child)
	case expr.Col:
		return f.ColumnNamed(n.Name)
	case *expr.Binary:
		return evalArithmetic(f, n)
	default:
		return nil, &colerr.Unsupported{Op: "Project", Msg: "expression kind not supported in Project"}
	}
}

// outputName returns the name Project should give e's result column:
// the Alias name if present, else the textual rendering of e.
func outputName(e expr.Node) string {
	if a, ok := e.(*expr.Alias); ok {
		return a.Name
	}
	return expr.Render(e)
}

func evalArithmetic(f *frame.Frame, b *expr.Binary) (column.Column, error) {
	if !b.Op.IsArithmetic() {
		return nil, &colerr.Unsupported{Op: b.Op.String(), Msg: "only +-*/ are supported in Project expressions"}
	}
	op := arithOpOf(b.Op)

	lLit, lIsLit := b.Left.(expr.Lit)
	rLit, rIsLit := b.Right.(expr.Lit)

	switch {
	case !lIsLit && rIsLit:
		lhs, err := evalProjectExpr(f, b.Left)
		if err != nil {
			return nil, err
		}
		return applyScalar(lhs, rLit.Value, op)
	case lIsLit && !rIsLit:
		rhs, err := evalProjectExpr(f, b.Right)
		if err != nil {
			return nil, err
		}
		return applyScalarReversed(lLit.Value, rhs, op)
	default:
		lhs, err := evalProjectExpr(f, b.Left)
		if err != nil {
			return nil, err
		}
		rhs, err := evalProjectExpr(f, b.Right)
		if err != nil {
			return nil, err
		}
		return applyColumns(lhs, rhs, op)
	}
}

func arithOpOf(op expr.BinOp) arith.Op {
	switch op {
	case expr.OpAdd:
		return arith.Add
	case expr.OpSub:
		return arith.Sub
	case expr.OpMul:
		return arith.Mul
	default:
		return arith.Div
	}
}

func applyScalar(lhs column.Column, scalar any, op arith.Op) (column.Column, error) {
	switch c := lhs.(type) {
	case *column.Int32Column:
		return arith.Int32Scalar(c, toInt32(scalar), op)
	case *column.Float64Column:
		return arith.Float64Scalar(c, toFloat64(scalar), op)
	default:
		return nil, &colerr.Unsupported{Op: op.String(), Msg: "arithmetic only supported on Int32/Float64 columns"}
	}
}

// applyScalarReversed evaluates `scalar ⊙ rhs` by building a one-off
// scalar-as-lhs column; subtraction/division are not commutative so the
// operands must stay in their original order.
func applyScalarReversed(scalar any, rhs column.Column, op arith.Op) (column.Column, error) {
	switch c := rhs.(type) {
	case *column.Int32Column:
		lhs := column.NewInt32Column(true, c.Len())
		for i := 0; i < c.Len(); i++ {
			lhs.Append(toInt32(scalar)) //nolint:errcheck
		}
		return arith.Int32Int32(lhs, c, op)
	case *column.Float64Column:
		lhs := column.NewFloat64Column(true, c.Len())
		for i := 0; i < c.Len(); i++ {
			lhs.Append(toFloat64(scalar)) //nolint:errcheck
		}
		return arith.Float64Float64(lhs, c, op)
	default:
		return nil, &colerr.Unsupported{Op: op.String(), Msg: "arithmetic only supported on Int32/Float64 columns"}
	}
}

func applyColumns(lhs, rhs column.Column, op arith.Op) (column.Column, error) {
	switch l := lhs.(type) {
	case *column.Int32Column:
		r, ok := rhs.(*column.Int32Column)
		if !ok {
			return nil, &colerr.SchemaMismatch{Msg: "arithmetic operands must share a column kind"}
		}
		return arith.Int32Int32(l, r, op)
	case *column.Float64Column:
		r, ok := rhs.(*column.Float64Column)
		if !ok {
			return nil, &colerr.SchemaMismatch{Msg: "arithmetic operands must share a column kind"}
		}
		return arith.Float64Float64(l, r, op)
	default:
		return nil, &colerr.Unsupported{Op: op.String(), Msg: "arithmetic only supported on Int32/Float64 columns"}
	}
}

func toInt32(v any) int32 {
	switch x := v.(type) {
	case int32:
		return x
	case int:
		return int32(x)
	case int64:
		return int32(x)
	case float64:
		return int32(x)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int32:
		return float64(x)
	case int:
		return float64(x)
	default:
		return 0
	}
}
