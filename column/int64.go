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

// Int64Column mirrors Int32Column's layout. It exists for the widened
// output of summing an Int32 column; there
// is no Int64 source column kind, since no ingestion path produces one.
type Int64Column struct {
	data     []int64
	mask     *NullMask
	nullable bool
	isView   bool
}

func NewInt64Column(nullable bool, capacity int) *Int64Column {
	return &Int64Column{
		data:     make([]int64, 0, capacity),
		mask:     NewNullMask(0),
		nullable: nullable,
	}
}

func (c *Int64Column) Kind() Kind { return Int64Kind }
func (c *Int64Column) Len() int   { return len(c.data) }
func (c *Int64Column) Nullable() bool {
	return c.nullable
}
func (c *Int64Column) IsNull(i int) bool {
	return c.mask.IsNull(i)
}

func (c *Int64Column) Append(v int64) error {
	if c.isView {
		return &colerr.Unsupported{Op: "Append", Msg: "cannot append to a slice view"}
	}
	c.data = append(c.data, v)
	c.mask.Append(false)
	return nil
}

func (c *Int64Column) AppendNull() error {
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

func (c *Int64Column) Set(i int, v int64) error {
	if err := checkIndex(i, len(c.data)); err != nil {
		return err
	}
	c.data[i] = v
	c.mask.ClearNull(i)
	return nil
}

func (c *Int64Column) SetNull(i int) error {
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

func (c *Int64Column) Get(i int) int64 { return c.data[i] }
func (c *Int64Column) Raw() []int64    { return c.data }
func (c *Int64Column) Mask() *NullMask { return c.mask }

func (c *Int64Column) Slice(start, length int) (*Int64Column, error) {
	if err := checkSlice(start, length, len(c.data)); err != nil {
		return nil, err
	}
	view := &Int64Column{
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

func (c *Int64Column) CloneSubset(indices []int) *Int64Column {
	out := NewInt64Column(c.nullable, len(indices))
	out.data = out.data[:len(indices)]
	for i, src := range indices {
		out.data[i] = c.data[src]
	}
	out.mask = c.mask.CloneSubset(indices)
	return out
}

func (c *Int64Column) CloneSubsetAny(indices []int) Column {
	return c.CloneSubset(indices)
}
