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

package groupby

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/dwalterskoetter/leichtframe-sub001/column"
	"github.com/dwalterskoetter/leichtframe-sub001/internal/xhash"
)

// packRow serializes row across cols into buf, appending a
// [null_flag:1][value:k] record per column. Fixed-width
// numeric/bool/timestamp/category columns get a fixed k; String columns
// are a pragmatic variable-width extension (a 4-byte length prefix
// followed by the raw bytes) since a fixed per-column width cannot bound
// arbitrary string length -- composite keys made only of numeric/category
// columns stay fully fixed-width.
//
// If any column is null at row, the whole composite key is treated as
// null (the single-column null policy extended to the multi-column
// case).
func packRow(cols []column.Column, row int, buf []byte) (out []byte, isNull bool) {
	for _, c := range cols {
		switch v := c.(type) {
		case *column.Int32Column:
			if v.IsNull(row) {
				isNull = true
			}
			buf = append(buf, nullByte(v.IsNull(row)))
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(v.Get(row)))
			buf = append(buf, b[:]...)
		case *column.Float64Column:
			if v.IsNull(row) {
				isNull = true
			}
			buf = append(buf, nullByte(v.IsNull(row)))
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(v.Get(row)))
			buf = append(buf, b[:]...)
		case *column.BoolColumn:
			if v.IsNull(row) {
				isNull = true
			}
			buf = append(buf, nullByte(v.IsNull(row)))
			var bb byte
			if v.Get(row) {
				bb = 1
			}
			buf = append(buf, bb)
		case *column.TimestampColumn:
			if v.IsNull(row) {
				isNull = true
			}
			buf = append(buf, nullByte(v.IsNull(row)))
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], uint64(v.Get(row)))
			buf = append(buf, b[:]...)
		case *column.CategoryColumn:
			if v.IsNull(row) {
				isNull = true
			}
			buf = append(buf, nullByte(v.IsNull(row)))
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(v.Code(row)))
			buf = append(buf, b[:]...)
		case *column.StringColumn:
			if v.IsNull(row) {
				isNull = true
			}
			buf = append(buf, nullByte(v.IsNull(row)))
			sb := v.GetBytes(row)
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(len(sb)))
			buf = append(buf, b[:]...)
			buf = append(buf, sb...)
		}
	}
	return buf, isNull
}

func nullByte(null bool) byte {
	if null {
		return 1
	}
	return 0
}

type rowPackTable struct {
	meta      *swissMeta
	slotBytes [][]byte
	slotGroup []int
	repRow    []int64
	numGroups int
	cols      []column.Column
}

func newRowPackTable(cols []column.Column) *rowPackTable {
	t := &rowPackTable{meta: newSwissMeta(groupSize), cols: cols}
	t.slotBytes = make([][]byte, t.meta.capacity)
	t.slotGroup = make([]int, t.meta.capacity)
	return t
}

func (t *rowPackTable) grow() {
	nm := newSwissMeta(t.meta.capacity + 1)
	nb := make([][]byte, nm.capacity)
	ng := make([]int, nm.capacity)
	for _, old := range t.meta.occupied() {
		b := t.slotBytes[old]
		gid := t.slotGroup[old]
		h := xhash.Bytes(b)
		slot, _ := nm.find(h, func(idx int) bool { return bytes.Equal(nb[idx], b) })
		nm.occupy(slot, h)
		nb[slot] = b
		ng[slot] = gid
	}
	t.meta, t.slotBytes, t.slotGroup = nm, nb, ng
}

func (t *rowPackTable) groupFor(packed []byte) int {
	h := xhash.Bytes(packed)
	for {
		slot, ok := t.meta.find(h, func(idx int) bool { return bytes.Equal(t.slotBytes[idx], packed) })
		if slot == -1 || (!ok && t.meta.full()) {
			t.grow()
			continue
		}
		if ok {
			return t.slotGroup[slot]
		}
		t.meta.occupy(slot, h)
		t.slotBytes[slot] = packed
		gid := t.numGroups
		t.slotGroup[slot] = gid
		t.numGroups++
		return gid
	}
}

// RowPackTable implements the multi-column row-packed Swiss table
// path. n is the shared row count of every column in cols.
func RowPackTable(cols []column.Column, n int) *GroupResult {
	t := newRowPackTable(cols)
	repRowOf := make(map[int]int64) // group id -> representative row, filled lazily

	ids := make([]int, n)
	isNullRow := make([]bool, n)
	for row := 0; row < n; row++ {
		packed, isNull := packRow(cols, row, nil)
		if isNull {
			isNullRow[row] = true
			continue
		}
		gid := t.groupFor(packed)
		ids[row] = gid
		if _, ok := repRowOf[gid]; !ok {
			repRowOf[gid] = int64(row)
		}
	}

	keys := make([]int64, t.numGroups)
	for gid, row := range repRowOf {
		keys[gid] = row
	}

	offsets, rowIndices, nullGroupIndices := buildCSR(n, t.numGroups, func(row int) (int, bool) {
		if isNullRow[row] {
			return 0, true
		}
		return ids[row], false
	})

	return &GroupResult{
		GroupCount:        t.numGroups,
		Keys:              keys,
		KeysAreRowIndices: true,
		Offsets:           offsets,
		RowIndices:        rowIndices,
		NullGroupIndices:  nullGroupIndices,
	}
}
