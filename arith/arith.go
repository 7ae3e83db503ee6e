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

// Package arith implements the element-wise arithmetic kernels consumed
// by the physical planner when lowering Project: `+ − × ÷`
// for Int32 and Float64 columns, in both column⊕column and
// column⊕scalar forms. Every kernel processes 8-element lanes at a time
// with a scalar tail, a portable stand-in for hardware SIMD lanes. Null
// bitmaps combine with AND for binary operators.
package arith

import (
	"errors"

	"github.com/dwalterskoetter/leichtframe-sub001/colerr"
	"github.com/dwalterskoetter/leichtframe-sub001/column"
)

// Op names a binary arithmetic operator.
type Op int

const (
	Add Op = iota
	Sub
	Mul
	Div
)

func (o Op) String() string {
	switch o {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	default:
		return "?"
	}
}

// lanes is the unrolled lane width used by every kernel below.
const lanes = 8

// Int32Int32 computes lhs⊕rhs element-wise; both columns must have the
// same length. Division by zero fails that element with ArithError and
// marks it null in the result rather than aborting the whole column.
func Int32Int32(lhs, rhs *column.Int32Column, op Op) (*column.Int32Column, error) {
	if lhs.Len() != rhs.Len() {
		return nil, &colerr.SchemaMismatch{Msg: "arithmetic operands have different lengths"}
	}
	n := lhs.Len()
	out := column.NewInt32Column(true, n)
	a, b := lhs.Raw(), rhs.Raw()
	amask, bmask := lhs.Mask(), rhs.Mask()

	var firstErr error
	i := 0
	for ; i+lanes <= n; i += lanes {
		for l := 0; l < lanes; l++ {
			r := i + l
			if err := combineInt32(out, r, a[r], b[r], amask.IsNull(r) || bmask.IsNull(r), op); err != nil {
				if !isArithError(err) {
					return nil, err
				}
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	for ; i < n; i++ {
		if err := combineInt32(out, i, a[i], b[i], amask.IsNull(i) || bmask.IsNull(i), op); err != nil {
			if !isArithError(err) {
				return nil, err
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return out, firstErr
}

// isArithError distinguishes a per-element failure (the element is
// already null in out; the pass continues and the first such error is
// reported alongside the completed column) from structural failures that
// abort the kernel outright.
func isArithError(err error) bool {
	var ae *colerr.ArithError
	return errors.As(err, &ae)
}

func combineInt32(out *column.Int32Column, row int, a, b int32, null bool, op Op) error {
	if null {
		return out.AppendNull()
	}
	switch op {
	case Add:
		return out.Append(a + b)
	case Sub:
		return out.Append(a - b)
	case Mul:
		return out.Append(a * b)
	case Div:
		if b == 0 {
			if err := out.AppendNull(); err != nil {
				return err
			}
			return &colerr.ArithError{Row: row, Msg: "division by zero"}
		}
		return out.Append(a / b)
	default:
		return &colerr.Unsupported{Op: op.String(), Msg: "unknown Int32 operator"}
	}
}

// Int32Scalar computes lhs⊕scalar element-wise.
func Int32Scalar(lhs *column.Int32Column, scalar int32, op Op) (*column.Int32Column, error) {
	n := lhs.Len()
	out := column.NewInt32Column(true, n)
	a := lhs.Raw()
	amask := lhs.Mask()

	var firstErr error
	i := 0
	for ; i+lanes <= n; i += lanes {
		for l := 0; l < lanes; l++ {
			r := i + l
			if err := combineInt32(out, r, a[r], scalar, amask.IsNull(r), op); err != nil {
				if !isArithError(err) {
					return nil, err
				}
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	for ; i < n; i++ {
		if err := combineInt32(out, i, a[i], scalar, amask.IsNull(i), op); err != nil {
			if !isArithError(err) {
				return nil, err
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return out, firstErr
}

// Float64Float64 computes lhs⊕rhs element-wise. Division by zero is a
// pass-through (produces +-Inf/NaN, per IEEE 754) rather than an
// ArithError.
func Float64Float64(lhs, rhs *column.Float64Column, op Op) (*column.Float64Column, error) {
	if lhs.Len() != rhs.Len() {
		return nil, &colerr.SchemaMismatch{Msg: "arithmetic operands have different lengths"}
	}
	n := lhs.Len()
	out := column.NewFloat64Column(true, n)
	a, b := lhs.Raw(), rhs.Raw()
	amask, bmask := lhs.Mask(), rhs.Mask()

	i := 0
	for ; i+lanes <= n; i += lanes {
		for l := 0; l < lanes; l++ {
			r := i + l
			combineFloat64(out, a[r], b[r], amask.IsNull(r) || bmask.IsNull(r), op) //nolint:errcheck // Float64Column.Append never fails
		}
	}
	for ; i < n; i++ {
		combineFloat64(out, a[i], b[i], amask.IsNull(i) || bmask.IsNull(i), op) //nolint:errcheck
	}
	return out, nil
}

func combineFloat64(out *column.Float64Column, a, b float64, null bool, op Op) error {
	if null {
		return out.AppendNull()
	}
	switch op {
	case Add:
		return out.Append(a + b)
	case Sub:
		return out.Append(a - b)
	case Mul:
		return out.Append(a * b)
	case Div:
		return out.Append(a / b) // IEEE 754 pass-through: +-Inf or NaN on zero divisor
	default:
		return &colerr.Unsupported{Op: op.String(), Msg: "unknown Float64 operator"}
	}
}

// Float64Scalar computes lhs⊕scalar element-wise.
func Float64Scalar(lhs *column.Float64Column, scalar float64, op Op) (*column.Float64Column, error) {
	n := lhs.Len()
	out := column.NewFloat64Column(true, n)
	a := lhs.Raw()
	amask := lhs.Mask()

	i := 0
	for ; i+lanes <= n; i += lanes {
		for l := 0; l < lanes; l++ {
			r := i + l
			combineFloat64(out, a[r], scalar, amask.IsNull(r), op) //nolint:errcheck
		}
	}
	for ; i < n; i++ {
		combineFloat64(out, a[i], scalar, amask.IsNull(i), op) //nolint:errcheck
	}
	return out, nil
}
