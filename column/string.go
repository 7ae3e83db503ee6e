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

// StringColumn stores all row values back-to-back in a single byte buffer,
// with offsets[i]..offsets[i+1] delimiting row i. offsets always
// has length+1 entries, is monotonically non-decreasing, offsets[0]==0,
// and offsets[length]==len(bytes).
//
// There is no Slice view for String columns: a byte-range view would still
// need its own offsets array rebased to zero, which is exactly the work
// CloneSubset already does, so StringColumn offers CloneSubset only and has
// no separate sharing mechanism.
type StringColumn struct {
	bytes    []byte
	offsets  []int32
	mask     *NullMask
	nullable bool
}

func NewStringColumn(nullable bool) *StringColumn {
	return &StringColumn{
		offsets:  []int32{0},
		mask:     NewNullMask(0),
		nullable: nullable,
	}
}

func (c *StringColumn) Kind() Kind     { return StringKind }
func (c *StringColumn) Len() int       { return len(c.offsets) - 1 }
func (c *StringColumn) Nullable() bool { return c.nullable }
func (c *StringColumn) IsNull(i int) bool {
	return c.mask.IsNull(i)
}

func (c *StringColumn) Append(s string) error {
	c.bytes = append(c.bytes, s...)
	c.offsets = append(c.offsets, int32(len(c.bytes)))
	c.mask.Append(false)
	return nil
}

func (c *StringColumn) AppendNull() error {
	if !c.nullable {
		return &colerr.NullabilityViolated{}
	}
	c.offsets = append(c.offsets, int32(len(c.bytes)))
	c.mask.Append(true)
	return nil
}

// Set overwrites row i. Because rows are variable-length and
// back-to-back, Set on anything but the trailing row requires rebuilding
// the tail of the buffer; this is deliberately simple (not amortized) since
// the hot ingestion path is Append, not random-access Set.
func (c *StringColumn) Set(i int, s string) error {
	n := c.Len()
	if err := checkIndex(i, n); err != nil {
		return err
	}
	before := c.bytes[:c.offsets[i]]
	after := append([]byte{}, c.bytes[c.offsets[i+1]:]...)
	newBytes := append(append(append([]byte{}, before...), s...), after...)
	delta := int32(len(s)) - (c.offsets[i+1] - c.offsets[i])
	c.bytes = newBytes
	for j := i + 1; j < len(c.offsets); j++ {
		c.offsets[j] += delta
	}
	c.mask.ClearNull(i)
	return nil
}

func (c *StringColumn) SetNull(i int) error {
	n := c.Len()
	if err := checkIndex(i, n); err != nil {
		return err
	}
	if !c.nullable {
		return &colerr.NullabilityViolated{}
	}
	return c.Set(i, "")
}

// Get returns the string at row i as a view into the shared byte buffer;
// callers that need to retain it beyond the column's lifetime should copy.
func (c *StringColumn) Get(i int) string {
	return string(c.bytes[c.offsets[i]:c.offsets[i+1]])
}

// GetBytes returns the raw bytes of row i without a string conversion,
// used by the string Swiss table to hash/compare without allocating.
func (c *StringColumn) GetBytes(i int) []byte {
	return c.bytes[c.offsets[i]:c.offsets[i+1]]
}

func (c *StringColumn) Mask() *NullMask { return c.mask }

func (c *StringColumn) CloneSubset(indices []int) *StringColumn {
	out := NewStringColumn(c.nullable)
	for i, src := range indices {
		if c.mask.IsNull(src) {
			out.AppendNull() //nolint:errcheck
		} else {
			out.Append(c.Get(src)) //nolint:errcheck
		}
		_ = i
	}
	return out
}

func (c *StringColumn) CloneSubsetAny(indices []int) Column {
	return c.CloneSubset(indices)
}
