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

	"github.com/dwalterskoetter/leichtframe-sub001/column"
	"github.com/dwalterskoetter/leichtframe-sub001/internal/xhash"
)

// stringSlot caches length and a 4-byte prefix alongside the slot's
// representative row, so equality checks can reject most collisions
// without touching the full string.
type stringSlot struct {
	row    int
	length int
	prefix uint32
}

type stringTable struct {
	meta      *swissMeta
	slots     []stringSlot
	slotGroup []int
	repRow    []int64 // representative row index per group, in first-encounter order
	numGroups int
	col       *column.StringColumn
}

func newStringTable(col *column.StringColumn) *stringTable {
	t := &stringTable{meta: newSwissMeta(groupSize), col: col}
	t.slots = make([]stringSlot, t.meta.capacity)
	t.slotGroup = make([]int, t.meta.capacity)
	return t
}

func (t *stringTable) grow() {
	nm := newSwissMeta(t.meta.capacity + 1)
	ns := make([]stringSlot, nm.capacity)
	ng := make([]int, nm.capacity)
	for _, old := range t.meta.occupied() {
		s := t.slots[old]
		gid := t.slotGroup[old]
		h := uint64(xhash.String(t.col.GetBytes(s.row)))
		slot, _ := nm.find(h, func(idx int) bool { return t.sameBytes(ns[idx], s) })
		nm.occupy(slot, h)
		ns[slot] = s
		ng[slot] = gid
	}
	t.meta, t.slots, t.slotGroup = nm, ns, ng
}

func (t *stringTable) sameBytes(a, b stringSlot) bool {
	if a.length != b.length || a.prefix != b.prefix {
		return false
	}
	return bytes.Equal(t.col.GetBytes(a.row), t.col.GetBytes(b.row))
}

// groupFor returns the group id for the string at row, allocating a new
// group on first encounter.
func (t *stringTable) groupFor(row int) int {
	b := t.col.GetBytes(row)
	h := uint64(xhash.String(b))
	cand := stringSlot{row: row, length: len(b), prefix: xhash.Prefix4(b)}
	for {
		slot, ok := t.meta.find(h, func(idx int) bool { return t.sameBytes(t.slots[idx], cand) })
		if slot == -1 || (!ok && t.meta.full()) {
			t.grow()
			continue
		}
		if ok {
			return t.slotGroup[slot]
		}
		t.meta.occupy(slot, h)
		t.slots[slot] = cand
		gid := t.numGroups
		t.slotGroup[slot] = gid
		t.numGroups++
		t.repRow = append(t.repRow, int64(row))
		return gid
	}
}

// StringTable implements the string Swiss table group-by path. Keys in
// the returned GroupResult are representative row indices
// (KeysAreRowIndices==true); callers reconstruct the string key by
// projecting col at each key row.
func StringTable(col *column.StringColumn) *GroupResult {
	n := col.Len()
	mask := col.Mask()
	t := newStringTable(col)

	ids := make([]int, n)
	isNull := make([]bool, n)
	for row := 0; row < n; row++ {
		if mask.IsNull(row) {
			isNull[row] = true
			continue
		}
		ids[row] = t.groupFor(row)
	}

	offsets, rowIndices, nullGroupIndices := buildCSR(n, t.numGroups, func(row int) (int, bool) {
		if isNull[row] {
			return 0, true
		}
		return ids[row], false
	})

	return &GroupResult{
		GroupCount:        t.numGroups,
		Keys:              t.repRow,
		KeysAreRowIndices: true,
		Offsets:           offsets,
		RowIndices:        rowIndices,
		NullGroupIndices:  nullGroupIndices,
	}
}
