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

// BoolColumn stores one bit per row (8 values/byte). Unlike
// the numeric columns it offers no Slice view: a sub-byte window cannot be
// reinterpreted as an independent buffer without copying, so Slice fails
// with Unsupported rather than silently materializing.
type BoolColumn struct {
	data     []byte
	length   int
	mask     *NullMask
	nullable bool
}

func NewBoolColumn(nullable bool) *BoolColumn {
	return &BoolColumn{mask: NewNullMask(0), nullable: nullable}
}

func (c *BoolColumn) Kind() Kind     { return BoolKind }
func (c *BoolColumn) Len() int       { return c.length }
func (c *BoolColumn) Nullable() bool { return c.nullable }
func (c *BoolColumn) IsNull(i int) bool {
	return c.mask.IsNull(i)
}

func (c *BoolColumn) ensureCap() {
	need := (c.length + 8) / 8
	for len(c.data) < need {
		c.data = append(c.data, 0)
	}
}

func (c *BoolColumn) Append(v bool) error {
	c.length++
	c.ensureCap()
	if v {
		c.setBit(c.length-1, true)
	}
	c.mask.Append(false)
	return nil
}

func (c *BoolColumn) AppendNull() error {
	if !c.nullable {
		return &colerr.NullabilityViolated{}
	}
	c.length++
	c.ensureCap()
	c.mask.Append(true)
	return nil
}

func (c *BoolColumn) setBit(i int, v bool) {
	byteIdx, bitIdx := i/8, uint(i%8)
	if v {
		c.data[byteIdx] |= 1 << bitIdx
	} else {
		c.data[byteIdx] &^= 1 << bitIdx
	}
}

func (c *BoolColumn) Set(i int, v bool) error {
	if err := checkIndex(i, c.length); err != nil {
		return err
	}
	c.setBit(i, v)
	c.mask.ClearNull(i)
	return nil
}

func (c *BoolColumn) SetNull(i int) error {
	if err := checkIndex(i, c.length); err != nil {
		return err
	}
	if !c.nullable {
		return &colerr.NullabilityViolated{}
	}
	c.setBit(i, false)
	c.mask.SetNull(i)
	return nil
}

func (c *BoolColumn) Get(i int) bool {
	byteIdx, bitIdx := i/8, uint(i%8)
	return c.data[byteIdx]&(1<<bitIdx) != 0
}

func (c *BoolColumn) Mask() *NullMask { return c.mask }

// Slice is unsupported for Bool columns.
func (c *BoolColumn) Slice(start, length int) (*BoolColumn, error) {
	return nil, &colerr.Unsupported{Op: "Slice", Msg: "bool columns have no slice view"}
}

func (c *BoolColumn) CloneSubset(indices []int) *BoolColumn {
	out := NewBoolColumn(c.nullable)
	for _, src := range indices {
		if c.mask.IsNull(src) {
			out.AppendNull() //nolint:errcheck // nullable matches source
		} else {
			out.Append(c.Get(src)) //nolint:errcheck // Append never fails here
		}
	}
	return out
}

func (c *BoolColumn) CloneSubsetAny(indices []int) Column {
	return c.CloneSubset(indices)
}
