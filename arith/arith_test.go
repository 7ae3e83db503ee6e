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

package arith

import (
	"math"
	"testing"

	"github.com/dwalterskoetter/leichtframe-sub001/column"
)

func float64Col(vals []float64) *column.Float64Column {
	c := column.NewFloat64Column(true, len(vals))
	for _, v := range vals {
		c.Append(v) //nolint:errcheck
	}
	return c
}

func int32Col(vals []int32) *column.Int32Column {
	c := column.NewInt32Column(true, len(vals))
	for _, v := range vals {
		c.Append(v) //nolint:errcheck
	}
	return c
}

// TestProjectRoundTrip: (Val*2+5) then (-5)/2 returns the original
// values within an absolute tolerance of 1e-9.
func TestProjectRoundTrip(t *testing.T) {
	val := float64Col([]float64{10, 20, 30})
	scaled, err := Float64Scalar(val, 2, Mul)
	if err != nil {
		t.Fatal(err)
	}
	shifted, err := Float64Scalar(scaled, 5, Add)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{25, 45, 65}
	for i, w := range want {
		if shifted.Get(i) != w {
			t.Fatalf("row %d: got %v want %v", i, shifted.Get(i), w)
		}
	}

	back, err := Float64Scalar(shifted, 5, Sub)
	if err != nil {
		t.Fatal(err)
	}
	back, err = Float64Scalar(back, 2, Div)
	if err != nil {
		t.Fatal(err)
	}
	for i, w := range []float64{10, 20, 30} {
		if math.Abs(back.Get(i)-w) > 1e-9 {
			t.Fatalf("round trip row %d: got %v want %v", i, back.Get(i), w)
		}
	}
}

func TestInt32DivisionByZeroProducesNullAndError(t *testing.T) {
	lhs := int32Col([]int32{10, 20, 30})
	rhs := int32Col([]int32{2, 0, 5})
	out, err := Int32Int32(lhs, rhs, Div)
	if err == nil {
		t.Fatal("expected ArithError for division by zero")
	}
	if !out.IsNull(1) {
		t.Fatal("row 1 should be null after division by zero")
	}
	if out.IsNull(0) || out.Get(0) != 5 {
		t.Fatalf("row 0: got null=%v val=%v want 5", out.IsNull(0), out.Get(0))
	}
}

func TestFloat64DivisionByZeroIsPassThrough(t *testing.T) {
	lhs := float64Col([]float64{1, -1, 0})
	rhs := float64Col([]float64{0, 0, 0})
	out, err := Float64Float64(lhs, rhs, Div)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(out.Get(0), 1) {
		t.Fatalf("expected +Inf, got %v", out.Get(0))
	}
	if !math.IsInf(out.Get(1), -1) {
		t.Fatalf("expected -Inf, got %v", out.Get(1))
	}
	if !math.IsNaN(out.Get(2)) {
		t.Fatalf("expected NaN, got %v", out.Get(2))
	}
}

func TestNullBitmapsCombineWithAnd(t *testing.T) {
	lhs := column.NewInt32Column(true, 2)
	lhs.Append(1)    //nolint:errcheck
	lhs.AppendNull() //nolint:errcheck
	rhs := column.NewInt32Column(true, 2)
	rhs.AppendNull() //nolint:errcheck
	rhs.Append(2)    //nolint:errcheck

	out, err := Int32Int32(lhs, rhs, Add)
	if err != nil {
		t.Fatal(err)
	}
	if !out.IsNull(0) || !out.IsNull(1) {
		t.Fatal("both rows should be null: each has exactly one null operand")
	}
}

func TestMismatchedLengthsFail(t *testing.T) {
	lhs := int32Col([]int32{1, 2})
	rhs := int32Col([]int32{1, 2, 3})
	if _, err := Int32Int32(lhs, rhs, Add); err == nil {
		t.Fatal("expected SchemaMismatch for mismatched lengths")
	}
}

// TestInt32ScalarRoundTrip: column ⊕ scalar then result ⊖ scalar is
// bitwise-equal for in-range Int32 values.
func TestInt32ScalarRoundTrip(t *testing.T) {
	vals := []int32{-100, 0, 7, 1 << 20}
	c := int32Col(vals)
	up, err := Int32Scalar(c, 13, Add)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Int32Scalar(up, 13, Sub)
	if err != nil {
		t.Fatal(err)
	}
	for i, w := range vals {
		if back.Get(i) != w {
			t.Fatalf("row %d: got %d want %d", i, back.Get(i), w)
		}
	}
}
