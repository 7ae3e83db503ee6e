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

package agg

import (
	"testing"

	"github.com/dwalterskoetter/leichtframe-sub001/column"
	"github.com/dwalterskoetter/leichtframe-sub001/config"
	"github.com/dwalterskoetter/leichtframe-sub001/groupby"
)

func buildInt32(t *testing.T, nullable bool, vals []int32, nulls []int) *column.Int32Column {
	t.Helper()
	c := column.NewInt32Column(nullable, len(vals))
	nullSet := make(map[int]bool, len(nulls))
	for _, i := range nulls {
		nullSet[i] = true
	}
	for i, v := range vals {
		if nullSet[i] {
			if err := c.AppendNull(); err != nil {
				t.Fatalf("AppendNull: %v", err)
			}
			continue
		}
		if err := c.Append(v); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return c
}

func buildFloat64(t *testing.T, nullable bool, vals []float64, nulls []int) *column.Float64Column {
	t.Helper()
	c := column.NewFloat64Column(nullable, len(vals))
	nullSet := make(map[int]bool, len(nulls))
	for _, i := range nulls {
		nullSet[i] = true
	}
	for i, v := range vals {
		if nullSet[i] {
			if err := c.AppendNull(); err != nil {
				t.Fatalf("AppendNull: %v", err)
			}
			continue
		}
		if err := c.Append(v); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return c
}

// TestRunSumCountDense: Id=[1,1,2,3,3,3]
// grouped and aggregated with both Count and Sum over a parallel Value
// column, using the direct-addressing strategy.
func TestRunSumCountDense(t *testing.T) {
	id := buildInt32(t, false, []int32{1, 1, 2, 3, 3, 3}, nil)
	val := buildInt32(t, false, []int32{10, 20, 5, 1, 2, 3}, nil)

	gr := groupby.DirectAddress(id)
	defer gr.Release()

	cols, err := Run(gr, []Definition{
		{Source: val, Op: Count, Output: "n"},
		{Source: val, Op: Sum, Output: "total"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	counts := cols[0].(*column.Int32Column)
	sums := cols[1].(*column.Int64Column)

	// Keys are emitted in ascending order [1,2,3] by direct addressing.
	wantCount := []int32{2, 1, 3}
	wantSum := []int64{30, 5, 6}
	for i := range wantCount {
		if counts.Get(i) != wantCount[i] {
			t.Fatalf("count[%d] = %d, want %d", i, counts.Get(i), wantCount[i])
		}
		if sums.Get(i) != wantSum[i] {
			t.Fatalf("sum[%d] = %d, want %d", i, sums.Get(i), wantSum[i])
		}
		if sums.IsNull(i) {
			t.Fatalf("sum[%d] unexpectedly null", i)
		}
	}
}

// TestRunNullGroup: a null key produces a trailing
// null-group row whose aggregates are computed over exactly those rows.
func TestRunNullGroup(t *testing.T) {
	cat := buildInt32(t, true, []int32{1, 0, 1, 0}, []int{1, 3})
	val := buildInt32(t, false, []int32{10, 99, 20, 77}, nil)

	cfg := config.DefaultEngine()
	gr, _ := groupby.Dispatch([]column.Column{cat}, cat.Len(), cfg)
	defer gr.Release()

	if len(gr.NullGroupIndices) != 2 {
		t.Fatalf("expected 2 null rows, got %d", len(gr.NullGroupIndices))
	}

	cols, err := Run(gr, []Definition{{Source: val, Op: Sum, Output: "total"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	sums := cols[0].(*column.Int64Column)
	if sums.Len() != gr.GroupCount+1 {
		t.Fatalf("expected a trailing null-group row, got %d rows for %d groups", sums.Len(), gr.GroupCount)
	}
	last := sums.Len() - 1
	if sums.Get(last) != 176 {
		t.Fatalf("null group sum = %d, want 176 (rows 1,3: 99+77)", sums.Get(last))
	}
}

// TestRunMeanAllNull verifies an all-null group's Mean is null rather than
// NaN or zero.
func TestRunMeanAllNull(t *testing.T) {
	id := buildInt32(t, false, []int32{5, 5}, nil)
	val := buildFloat64(t, true, []float64{0, 0}, []int{0, 1})

	gr := groupby.DirectAddress(id)
	defer gr.Release()

	cols, err := Run(gr, []Definition{{Source: val, Op: Mean, Output: "avg"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	avg := cols[0].(*column.Float64Column)
	if !avg.IsNull(0) {
		t.Fatalf("expected Mean of all-null group to be null, got %v", avg.Get(0))
	}
}

// TestRunMinMaxFloat64 exercises the Float64 Min/Max fast path over a
// contiguous CSR window.
func TestRunMinMaxFloat64(t *testing.T) {
	id := buildInt32(t, false, []int32{1, 1, 1, 2}, nil)
	val := buildFloat64(t, false, []float64{3.5, 1.5, 2.5, 9.0}, nil)

	gr := groupby.DirectAddress(id)
	defer gr.Release()

	cols, err := Run(gr, []Definition{
		{Source: val, Op: Min, Output: "lo"},
		{Source: val, Op: Max, Output: "hi"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	lo := cols[0].(*column.Float64Column)
	hi := cols[1].(*column.Float64Column)
	if lo.Get(0) != 1.5 || hi.Get(0) != 3.5 {
		t.Fatalf("group 0 min/max = %v/%v, want 1.5/3.5", lo.Get(0), hi.Get(0))
	}
	if lo.Get(1) != 9.0 || hi.Get(1) != 9.0 {
		t.Fatalf("group 1 min/max = %v/%v, want 9.0/9.0", lo.Get(1), hi.Get(1))
	}
}

// TestRunEmptyGroupResult is the "empty frame" boundary: zero groups and no
// null rows yields a zero-row output column per definition.
func TestRunEmptyGroupResult(t *testing.T) {
	id := buildInt32(t, false, nil, nil)
	val := buildInt32(t, false, nil, nil)

	gr := groupby.DirectAddress(id)
	defer gr.Release()

	cols, err := Run(gr, []Definition{
		{Source: val, Op: Count, Output: "n"},
		{Source: val, Op: Sum, Output: "total"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, c := range cols {
		if c.Len() != 0 {
			t.Fatalf("expected empty output column, got %d rows", c.Len())
		}
	}
}

func TestRunUnsupportedSourceKind(t *testing.T) {
	id := buildInt32(t, false, []int32{1}, nil)
	str := column.NewStringColumn(false)
	if err := str.Append("x"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	gr := groupby.DirectAddress(id)
	defer gr.Release()

	_, err := Run(gr, []Definition{{Source: str, Op: Sum, Output: "total"}})
	if err == nil {
		t.Fatalf("expected an error aggregating Sum over a String column")
	}
}
