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

// Float64Column mirrors Int32Column's layout. NaN is always a legitimate,
// non-null value here: nullability lives exclusively in the mask, never in
// the bit pattern of the stored float.
type Float64Column struct {
	data     []float64
	mask     *NullMask
	nullable bool
	isView   bool
}

func NewFloat64Column(nullable bool, capacity int) *Float64Column {
	return &Float64Column{
		data:     make([]float64, 0, capacity),
		mask:     NewNullMask(0),
		nullable: nullable,
	}
}

func (c *Float64Column) Kind() Kind     { return Float64Kind }
func (c *Float64Column) Len() int       { return len(c.data) }
func (c *Float64Column) Nullable() bool { return c.nullable }
func (c *Float64Column) IsNull(i int) bool {
	return c.mask.IsNull(i)
}

func (c *Float64Column) Append(v float64) error {
	if c.isView {
		return &colerr.Unsupported{Op: "Append", Msg: "cannot append to a slice view"}
	}
	c.data = append(c.data, v)
	c.mask.Append(false)
	return nil
}

func (c *Float64Column) AppendNull() error {
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

func (c *Float64Column) Set(i int, v float64) error {
	if err := checkIndex(i, len(c.data)); err != nil {
		return err
	}
	c.data[i] = v
	c.mask.ClearNull(i)
	return nil
}

func (c *Float64Column) SetNull(i int) error {
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

func (c *Float64Column) Get(i int) float64 { return c.data[i] }
func (c *Float64Column) Raw() []float64    { return c.data }
func (c *Float64Column) Mask() *NullMask   { return c.mask }

func (c *Float64Column) Slice(start, length int) (*Float64Column, error) {
	if err := checkSlice(start, length, len(c.data)); err != nil {
		return nil, err
	}
	view := &Float64Column{
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

func (c *Float64Column) CloneSubset(indices []int) *Float64Column {
	out := NewFloat64Column(c.nullable, len(indices))
	out.data = out.data[:len(indices)]
	for i, src := range indices {
		out.data[i] = c.data[src]
	}
	out.mask = c.mask.CloneSubset(indices)
	return out
}

func (c *Float64Column) CloneSubsetAny(indices []int) Column {
	return c.CloneSubset(indices)
}

func (c *Float64Column) ComputeSum(rowIndices []int, start, end int) (sum float64, nonNull int) {
	any := c.mask.AnyNull()
	for _, r := range rowIndices[start:end] {
		if any && c.mask.IsNull(r) {
			continue
		}
		sum += c.data[r]
		nonNull++
	}
	return sum, nonNull
}

func (c *Float64Column) ComputeMinMax(rowIndices []int, start, end int) (min, max float64, nonNull int) {
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
