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

import "github.com/dwalterskoetter/leichtframe-sub001/colerr"

// Int32Column is a contiguous, doubling-capacity buffer of int32 values
// plus a null mask. A column produced by Slice shares its value buffer with
// the column it was sliced from but carries its own null mask, copied from
// the source rows; it cannot Append, and becomes invalid if the source's
// backing array is reallocated by a subsequent Append.
type Int32Column struct {
	data     []int32
	mask     *NullMask
	nullable bool
	isView   bool
}

// NewInt32Column returns an empty column with the given nullability and
// starting capacity.
func NewInt32Column(nullable bool, capacity int) *Int32Column {
	return &Int32Column{
		data:     make([]int32, 0, capacity),
		mask:     NewNullMask(0),
		nullable: nullable,
	}
}

func (c *Int32Column) Kind() Kind     { return Int32Kind }
func (c *Int32Column) Len() int       { return len(c.data) }
func (c *Int32Column) Nullable() bool { return c.nullable }
func (c *Int32Column) IsNull(i int) bool {
	return c.mask.IsNull(i)
}

// Append adds a non-null value to the column. Doubling growth is left to
// Go's append; views cannot Append.
func (c *Int32Column) Append(v int32) error {
	if c.isView {
		return &colerr.Unsupported{Op: "Append", Msg: "cannot append to a slice view"}
	}
	c.data = append(c.data, v)
	c.mask.Append(false)
	return nil
}

// AppendNull adds a null row; fails if the column is non-nullable.
func (c *Int32Column) AppendNull() error {
	if c.isView {
		return &colerr.Unsupported{Op: "AppendNull", Msg: "cannot append to a slice view"}
	}
	if !c.nullable {
		return &colerr.NullabilityViolated{}
	}
	c.data = append(c.data, 0)
	c.mask.Append(true)
	return nil
}

// Set overwrites row i with a non-null value.
func (c *Int32Column) Set(i int, v int32) error {
	if err := checkIndex(i, len(c.data)); err != nil {
		return err
	}
	c.data[i] = v
	c.mask.ClearNull(i)
	return nil
}

// SetNull marks row i as null; fails if the column is non-nullable.
func (c *Int32Column) SetNull(i int) error {
	if err := checkIndex(i, len(c.data)); err != nil {
		return err
	}
	if !c.nullable {
		return &colerr.NullabilityViolated{}
	}
	c.data[i] = 0
	c.mask.SetNull(i)
	return nil
}

// Get returns the value at row i; the result is meaningless (the type's
// zero value) if IsNull(i) is true.
func (c *Int32Column) Get(i int) int32 {
	return c.data[i]
}

// Raw exposes the backing buffer directly, used by the fast aggregation
// and arithmetic paths that walk contiguous memory without per-element
// Get calls.
func (c *Int32Column) Raw() []int32 { return c.data }

// Mask exposes the null mask directly for kernels that need to test
// AnyNull() once rather than per element.
func (c *Int32Column) Mask() *NullMask { return c.mask }

// Slice returns a view over [start, start+length) sharing this column's
// backing array. The view cannot Append and becomes invalid if the
// source's buffer is reallocated by a later Append.
func (c *Int32Column) Slice(start, length int) (*Int32Column, error) {
	if err := checkSlice(start, length, len(c.data)); err != nil {
		return nil, err
	}
	view := &Int32Column{
		data:     c.data[start : start+length : start+length],
		nullable: c.nullable,
		isView:   true,
	}
	view.mask = NewNullMask(length)
	for i := 0; i < length; i++ {
		if c.mask.IsNull(start + i) {
			view.mask.SetNull(i)
		}
	}
	return view, nil
}

// CloneSubset materializes a new column whose i-th row equals
// self.Get(indices[i]), preserving null flags.
func (c *Int32Column) CloneSubset(indices []int) *Int32Column {
	out := NewInt32Column(c.nullable, len(indices))
	out.data = out.data[:len(indices)]
	for i, src := range indices {
		out.data[i] = c.data[src]
	}
	out.mask = c.mask.CloneSubset(indices)
	return out
}

func (c *Int32Column) CloneSubsetAny(indices []int) Column {
	return c.CloneSubset(indices)
}

// ComputeSum and ComputeMinMax implement the accelerated CSR-window
// aggregation path: a direct walk over rowIndices[start:end]
// with no per-row bounds checking beyond what Go requires, used by the
// agg package's dense fast path.
func (c *Int32Column) ComputeSum(rowIndices []int, start, end int) (sum int64, nonNull int) {
	any := c.mask.AnyNull()
	for _, r := range rowIndices[start:end] {
		if any && c.mask.IsNull(r) {
			continue
		}
		sum += int64(c.data[r])
		nonNull++
	}
	return sum, nonNull
}

func (c *Int32Column) ComputeMinMax(rowIndices []int, start, end int) (min, max int32, nonNull int) {
	any := c.mask.AnyNull()
	first := true
	for _, r := range rowIndices[start:end] {
		if any && c.mask.IsNull(r) {
			continue
		}
		v := c.data[r]
		if first {
			min, max = v, v
			first = false
		} else {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		nonNull++
	}
	return min, max, nonNull
}
