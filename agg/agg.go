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

// Package agg implements the single-pass aggregation kernels consumed by
// the physical planner once a GroupResult (CSR) is available:
// Sum, Mean, Min, Max and Count. Each kernel walks every group's row window
// exactly once; a fast path skips per-row null checks entirely when the
// source column has no nulls at all.
package agg

import (
	"github.com/dwalterskoetter/leichtframe-sub001/colerr"
	"github.com/dwalterskoetter/leichtframe-sub001/column"
	"github.com/dwalterskoetter/leichtframe-sub001/groupby"
)

// Op names an aggregation kernel.
type Op int

const (
	Sum Op = iota
	Mean
	Min
	Max
	Count
)

func (o Op) String() string {
	switch o {
	case Sum:
		return "Sum"
	case Mean:
		return "Mean"
	case Min:
		return "Min"
	case Max:
		return "Max"
	case Count:
		return "Count"
	default:
		return "Unknown"
	}
}

// Definition pairs a source column with the operator to run over it, plus
// the name the result column should carry in the output frame.
type Definition struct {
	Source column.Column
	Op     Op
	Output string
}

// windowCount returns the number of output rows: one per proper group, plus
// a trailing null-group row if the source had any null keys.
func windowCount(gr *groupby.GroupResult) int {
	n := gr.GroupCount
	if len(gr.NullGroupIndices) > 0 {
		n++
	}
	return n
}

// rowsForWindow returns the source row indices for output window w.
func rowsForWindow(gr *groupby.GroupResult, w int) []int {
	if w < gr.GroupCount {
		start, end := gr.Window(w)
		return gr.RowIndices[start:end]
	}
	return gr.NullGroupIndices
}

// Run computes every definition over gr, returning one result column per
// definition in the same order, sized windowCount(gr).
func Run(gr *groupby.GroupResult, defs []Definition) ([]column.Column, error) {
	out := make([]column.Column, len(defs))
	for i, d := range defs {
		col, err := runOne(gr, d)
		if err != nil {
			return nil, err
		}
		out[i] = col
	}
	return out, nil
}

func runOne(gr *groupby.GroupResult, d Definition) (column.Column, error) {
	if d.Op == Count {
		return runCount(gr), nil
	}
	switch src := d.Source.(type) {
	case *column.Int32Column:
		return runInt32(gr, src, d.Op)
	case *column.Float64Column:
		return runFloat64(gr, src, d.Op)
	case *column.TimestampColumn:
		return runTimestamp(gr, src, d.Op)
	default:
		return nil, &colerr.Unsupported{Op: d.Op.String(), Msg: "aggregation source must be Int32, Float64 or Timestamp"}
	}
}

func runCount(gr *groupby.GroupResult) column.Column {
	n := windowCount(gr)
	out := column.NewInt32Column(false, n)
	for w := 0; w < n; w++ {
		out.Append(int32(len(rowsForWindow(gr, w)))) //nolint:errcheck // non-nullable, fixed-size append never fails
	}
	return out
}

// sumWindowInt32/minMaxWindowInt32 compute over an arbitrary slice of row
// numbers of an Int32 column with a plain per-row loop that skips nulls.
// They do not call column.Int32Column.ComputeSum/ComputeMinMax, so they also
// serve the null group, whose entries are scattered row numbers collected
// independently of RowIndices.
func sumWindowInt32(src *column.Int32Column, rows []int) (sum int64, nonNull int) {
	any := src.Mask().AnyNull()
	for _, r := range rows {
		if any && src.IsNull(r) {
			continue
		}
		sum += int64(src.Get(r))
		nonNull++
	}
	return sum, nonNull
}

func minMaxWindowInt32(src *column.Int32Column, rows []int, wantMax bool) (v int32, nonNull int) {
	any := src.Mask().AnyNull()
	first := true
	for _, r := range rows {
		if any && src.IsNull(r) {
			continue
		}
		x := src.Get(r)
		if first {
			v = x
			first = false
		} else if wantMax && x > v {
			v = x
		} else if !wantMax && x < v {
			v = x
		}
		nonNull++
	}
	return v, nonNull
}

// sumWindowInt32Fast/minMaxWindowInt32Fast dispatch to
// column.Int32Column.ComputeSum/ComputeMinMax when given a genuine
// RowIndices[start:end) CSR window, the dense fast path.
func sumWindowInt32Fast(gr *groupby.GroupResult, src *column.Int32Column, group int) (sum int64, nonNull int) {
	start, end := gr.Window(group)
	return src.ComputeSum(gr.RowIndices, start, end)
}

func minMaxWindowInt32Fast(gr *groupby.GroupResult, src *column.Int32Column, group int, wantMax bool) (v int32, nonNull int) {
	start, end := gr.Window(group)
	min, max, nn := src.ComputeMinMax(gr.RowIndices, start, end)
	if wantMax {
		return max, nn
	}
	return min, nn
}

func runInt32(gr *groupby.GroupResult, src *column.Int32Column, op Op) (column.Column, error) {
	n := windowCount(gr)
	sumAt := func(w int) (int64, int) {
		if w < gr.GroupCount {
			return sumWindowInt32Fast(gr, src, w)
		}
		return sumWindowInt32(src, gr.NullGroupIndices)
	}
	minMaxAt := func(w int, wantMax bool) (int32, int) {
		if w < gr.GroupCount {
			return minMaxWindowInt32Fast(gr, src, w, wantMax)
		}
		return minMaxWindowInt32(src, gr.NullGroupIndices, wantMax)
	}

	switch op {
	case Sum:
		// Int32 sums widen to Int64; overflow wraps modulo 2^64
		// rather than being checked, matching plain Go int64 arithmetic.
		out := column.NewInt64Column(true, n)
		for w := 0; w < n; w++ {
			sum, nonNull := sumAt(w)
			if nonNull == 0 {
				out.AppendNull() //nolint:errcheck
				continue
			}
			out.Append(sum) //nolint:errcheck
		}
		return out, nil
	case Mean:
		out := column.NewFloat64Column(true, n)
		for w := 0; w < n; w++ {
			sum, nonNull := sumAt(w)
			if nonNull == 0 {
				out.AppendNull() //nolint:errcheck
				continue
			}
			out.Append(float64(sum) / float64(nonNull)) //nolint:errcheck
		}
		return out, nil
	case Min, Max:
		out := column.NewInt32Column(true, n)
		for w := 0; w < n; w++ {
			v, nonNull := minMaxAt(w, op == Max)
			if nonNull == 0 {
				out.AppendNull() //nolint:errcheck
				continue
			}
			out.Append(v) //nolint:errcheck
		}
		return out, nil
	default:
		return nil, &colerr.Unsupported{Op: op.String(), Msg: "unsupported Int32 aggregation"}
	}
}

func runFloat64(gr *groupby.GroupResult, src *column.Float64Column, op Op) (column.Column, error) {
	n := windowCount(gr)
	any := src.Mask().AnyNull()
	sumFallback := func(rows []int) (sum float64, nonNull int) {
		for _, r := range rows {
			if any && src.IsNull(r) {
				continue
			}
			sum += src.Get(r)
			nonNull++
		}
		return sum, nonNull
	}
	minMaxFallback := func(rows []int, wantMax bool) (v float64, nonNull int) {
		first := true
		for _, r := range rows {
			if any && src.IsNull(r) {
				continue
			}
			x := src.Get(r)
			if first {
				v = x
				first = false
			} else if wantMax && x > v {
				v = x
			} else if !wantMax && x < v {
				v = x
			}
			nonNull++
		}
		return v, nonNull
	}
	// Proper groups use column.Float64Column's accelerated CSR-window
	// ComputeSum/ComputeMinMax; only the
	// non-contiguous null group falls back to the per-row scan above.
	sumAt := func(w int) (float64, int) {
		if w < gr.GroupCount {
			start, end := gr.Window(w)
			return src.ComputeSum(gr.RowIndices, start, end)
		}
		return sumFallback(gr.NullGroupIndices)
	}
	minMaxAt := func(w int, wantMax bool) (float64, int) {
		if w < gr.GroupCount {
			start, end := gr.Window(w)
			min, max, nn := src.ComputeMinMax(gr.RowIndices, start, end)
			if wantMax {
				return max, nn
			}
			return min, nn
		}
		return minMaxFallback(gr.NullGroupIndices, wantMax)
	}

	switch op {
	case Sum:
		out := column.NewFloat64Column(true, n)
		for w := 0; w < n; w++ {
			sum, nonNull := sumAt(w)
			if nonNull == 0 {
				out.AppendNull() //nolint:errcheck
				continue
			}
			out.Append(sum) //nolint:errcheck
		}
		return out, nil
	case Mean:
		out := column.NewFloat64Column(true, n)
		for w := 0; w < n; w++ {
			sum, nonNull := sumAt(w)
			if nonNull == 0 {
				out.AppendNull() //nolint:errcheck
				continue
			}
			out.Append(sum / float64(nonNull)) //nolint:errcheck
		}
		return out, nil
	case Min, Max:
		out := column.NewFloat64Column(true, n)
		for w := 0; w < n; w++ {
			v, nonNull := minMaxAt(w, op == Max)
			if nonNull == 0 {
				out.AppendNull() //nolint:errcheck
				continue
			}
			out.Append(v) //nolint:errcheck
		}
		return out, nil
	default:
		return nil, &colerr.Unsupported{Op: op.String(), Msg: "unsupported Float64 aggregation"}
	}
}

func runTimestamp(gr *groupby.GroupResult, src *column.TimestampColumn, op Op) (column.Column, error) {
	if op != Min && op != Max {
		return nil, &colerr.Unsupported{Op: op.String(), Msg: "Timestamp aggregation only supports Min/Max"}
	}
	n := windowCount(gr)
	any := src.Mask().AnyNull()
	out := column.NewTimestampColumn(true, n)
	for w := 0; w < n; w++ {
		rows := rowsForWindow(gr, w)
		var v int64
		first := true
		nonNull := 0
		for _, r := range rows {
			if any && src.IsNull(r) {
				continue
			}
			x := src.Get(r)
			if first {
				v = x
				first = false
			} else if op == Max && x > v {
				v = x
			} else if op == Min && x < v {
				v = x
			}
			nonNull++
		}
		if nonNull == 0 {
			out.AppendNull() //nolint:errcheck
			continue
		}
		out.Append(v) //nolint:errcheck
	}
	return out, nil
}
