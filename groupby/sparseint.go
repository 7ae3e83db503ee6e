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
	"github.com/dwalterskoetter/leichtframe-sub001/column"
	"github.com/dwalterskoetter/leichtframe-sub001/internal/xhash"
)

// sparseIntTable is the open-addressing Swiss table over int32 keys,
// used whenever direct addressing is not eligible.
type sparseIntTable struct {
	meta      *swissMeta
	slotKey   []int32
	slotGroup []int
	groupKeys []int64
	numGroups int
}

func newSparseIntTable() *sparseIntTable {
	t := &sparseIntTable{meta: newSwissMeta(groupSize)}
	t.slotKey = make([]int32, t.meta.capacity)
	t.slotGroup = make([]int, t.meta.capacity)
	return t
}

func (t *sparseIntTable) grow() {
	nm := newSwissMeta(t.meta.capacity + 1)
	nk := make([]int32, nm.capacity)
	ng := make([]int, nm.capacity)
	for _, old := range t.meta.occupied() {
		v := t.slotKey[old]
		gid := t.slotGroup[old]
		h := uint64(xhash.Int32(v))
		slot, _ := nm.find(h, func(s int) bool { return nk[s] == v })
		nm.occupy(slot, h)
		nk[slot] = v
		ng[slot] = gid
	}
	t.meta, t.slotKey, t.slotGroup = nm, nk, ng
}

// groupFor returns the group id for v, allocating a new group on first
// encounter.
func (t *sparseIntTable) groupFor(v int32) int {
	h := uint64(xhash.Int32(v))
	for {
		slot, ok := t.meta.find(h, func(s int) bool { return t.slotKey[s] == v })
		if slot == -1 || (!ok && t.meta.full()) {
			t.grow()
			continue
		}
		if ok {
			return t.slotGroup[slot]
		}
		t.meta.occupy(slot, h)
		t.slotKey[slot] = v
		gid := t.numGroups
		t.slotGroup[slot] = gid
		t.numGroups++
		t.groupKeys = append(t.groupKeys, int64(v))
		return gid
	}
}

// SparseIntTable implements the sparse-integer Swiss table group-by
// path.
func SparseIntTable(col *column.Int32Column) *GroupResult {
	n := col.Len()
	mask := col.Mask()
	t := newSparseIntTable()

	// buildCSR needs numGroups up front but the Swiss table discovers
	// group count while scanning; run a first pass purely to populate the
	// table and record each row's group id, then hand the now-known
	// numGroups and a cached-id lookup to buildCSR.
	ids := make([]int, n)
	isNull := make([]bool, n)
	for row := 0; row < n; row++ {
		if mask.IsNull(row) {
			isNull[row] = true
			continue
		}
		ids[row] = t.groupFor(col.Get(row))
	}

	offsets, rowIndices, nullGroupIndices := buildCSR(n, t.numGroups, func(row int) (int, bool) {
		if isNull[row] {
			return 0, true
		}
		return ids[row], false
	})

	return &GroupResult{
		GroupCount:       t.numGroups,
		Keys:             t.groupKeys,
		Offsets:          offsets,
		RowIndices:       rowIndices,
		NullGroupIndices: nullGroupIndices,
	}
}
