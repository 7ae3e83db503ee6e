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

import (
	"time"

	"github.com/dwalterskoetter/leichtframe-sub001/colerr"
)

// TicksPerSecond pins the Timestamp resolution: 100ns ticks since the
// Unix epoch.
const TicksPerSecond = 10_000_000

// TimestampColumn stores ticks (int64, 100ns since the Unix epoch) in a
// contiguous buffer, identical in shape to Int32Column but over int64.
type TimestampColumn struct {
	data     []int64
	mask     *NullMask
	nullable bool
	isView   bool
}

func NewTimestampColumn(nullable bool, capacity int) *TimestampColumn {
	return &TimestampColumn{
		data:     make([]int64, 0, capacity),
		mask:     NewNullMask(0),
		nullable: nullable,
	}
}

func (c *TimestampColumn) Kind() Kind     { return TimestampKind }
func (c *TimestampColumn) Len() int       { return len(c.data) }
func (c *TimestampColumn) Nullable() bool { return c.nullable }
func (c *TimestampColumn) IsNull(i int) bool {
	return c.mask.IsNull(i)
}

// FromTime converts a time.Time to ticks at this column's pinned resolution.
func FromTime(t time.Time) int64 {
	return t.Unix()*TicksPerSecond + int64(t.Nanosecond())/100
}

// ToTime converts ticks back to a time.Time (UTC).
func ToTime(ticks int64) time.Time {
	sec := ticks / TicksPerSecond
	rem := ticks % TicksPerSecond
	return time.Unix(sec, rem*100).UTC()
}

func (c *TimestampColumn) Append(ticks int64) error {
	if c.isView {
		return &colerr.Unsupported{Op: "Append", Msg: "cannot append to a slice view"}
	}
	c.data = append(c.data, ticks)
	c.mask.Append(false)
	return nil
}

func (c *TimestampColumn) AppendNull() error {
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

func (c *TimestampColumn) Set(i int, ticks int64) error {
	if err := checkIndex(i, len(c.data)); err != nil {
		return err
	}
	c.data[i] = ticks
	c.mask.ClearNull(i)
	return nil
}

func (c *TimestampColumn) SetNull(i int) error {
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

func (c *TimestampColumn) Get(i int) int64 { return c.data[i] }
func (c *TimestampColumn) Raw() []int64    { return c.data }
func (c *TimestampColumn) Mask() *NullMask { return c.mask }

func (c *TimestampColumn) Slice(start, length int) (*TimestampColumn, error) {
	if err := checkSlice(start, length, len(c.data)); err != nil {
		return nil, err
	}
	view := &TimestampColumn{
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

func (c *TimestampColumn) CloneSubset(indices []int) *TimestampColumn {
	out := NewTimestampColumn(c.nullable, len(indices))
	out.data = out.data[:len(indices)]
	for i, src := range indices {
		out.data[i] = c.data[src]
	}
	out.mask = c.mask.CloneSubset(indices)
	return out
}

func (c *TimestampColumn) CloneSubsetAny(indices []int) Column {
	return c.CloneSubset(indices)
}
