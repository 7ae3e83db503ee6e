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

package column

import "testing"

func TestInt32CloneSubset(t *testing.T) {
	c := NewInt32Column(true, 4)
	for _, v := range []int32{10, 20, 30} {
		if err := c.Append(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.AppendNull(); err != nil {
		t.Fatal(err)
	}

	idx := []int{3, 0, 2}
	clone := c.CloneSubset(idx)
	for i, src := range idx {
		if clone.IsNull(i) != c.IsNull(src) {
			t.Fatalf("row %d: null mismatch", i)
		}
		if !clone.IsNull(i) && clone.Get(i) != c.Get(src) {
			t.Fatalf("row %d: value mismatch: got %d want %d", i, clone.Get(i), c.Get(src))
		}
	}
}

func TestInt32NonNullableRejectsNull(t *testing.T) {
	c := NewInt32Column(false, 1)
	c.Append(1) //nolint:errcheck
	if err := c.AppendNull(); err == nil {
		t.Fatal("expected NullabilityViolated error")
	}
	if err := c.SetNull(0); err == nil {
		t.Fatal("expected NullabilityViolated error")
	}
}

func TestFloat64NaNIsNotNull(t *testing.T) {
	c := NewFloat64Column(true, 1)
	c.Append(nan()) //nolint:errcheck
	if c.IsNull(0) {
		t.Fatal("NaN must not be treated as null")
	}
	if !isNaN(c.Get(0)) {
		t.Fatal("expected NaN to round-trip")
	}
}

func TestInt32SliceSharesBuffer(t *testing.T) {
	c := NewInt32Column(false, 8)
	for i := int32(0); i < 5; i++ {
		c.Append(i) //nolint:errcheck
	}
	view, err := c.Slice(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if view.Len() != 3 || view.Get(0) != 1 || view.Get(2) != 3 {
		t.Fatalf("unexpected view contents: %+v", view.data)
	}
	if err := view.Append(99); err == nil {
		t.Fatal("expected view Append to fail")
	}
}

func TestInt32SliceOutOfRange(t *testing.T) {
	c := NewInt32Column(false, 4)
	c.Append(1) //nolint:errcheck
	if _, err := c.Slice(0, 5); err == nil {
		t.Fatal("expected OutOfRange")
	}
}

func TestBoolHasNoSlice(t *testing.T) {
	c := NewBoolColumn(false)
	c.Append(true) //nolint:errcheck
	if _, err := c.Slice(0, 1); err == nil {
		t.Fatal("expected Unsupported for Bool.Slice")
	}
}

func TestStringOffsetsInvariant(t *testing.T) {
	c := NewStringColumn(true)
	for _, s := range []string{"a", "bcd", ""} {
		c.Append(s) //nolint:errcheck
	}
	c.AppendNull() //nolint:errcheck

	if len(c.offsets) != c.Len()+1 {
		t.Fatalf("offsets length invariant violated")
	}
	if c.offsets[0] != 0 {
		t.Fatalf("offsets[0] must be 0")
	}
	if int(c.offsets[c.Len()]) != len(c.bytes) {
		t.Fatalf("offsets[length] must equal len(bytes)")
	}
	if c.Get(1) != "bcd" {
		t.Fatalf("got %q want %q", c.Get(1), "bcd")
	}
	if !c.IsNull(3) {
		t.Fatalf("row 3 should be null")
	}
}

func TestCategoryDictionarySharing(t *testing.T) {
	c := NewCategoryColumn(true)
	c.Append("IT")
	c.Append("HR")
	c.AppendNull() //nolint:errcheck

	clone := c.CloneSubset([]int{2, 0, 1})
	if !clone.IsNull(0) {
		t.Fatal("row 0 should be null (code 0)")
	}
	s, null := clone.Get(1)
	if null || s != "IT" {
		t.Fatalf("got (%q,%v) want (IT,false)", s, null)
	}

	// appending a fresh string to the clone must not affect the source's
	// dictionary (copy-on-write fork).
	clone.Append("Sales")
	if c.Cardinality() != 2 {
		t.Fatalf("source dictionary must be unaffected by clone append, got cardinality %d", c.Cardinality())
	}
}

func nan() float64         { var z float64; return z / z }
func isNaN(f float64) bool { return f != f }
