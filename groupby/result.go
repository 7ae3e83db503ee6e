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

// Package groupby implements the CSR group result and the dispatcher
// across six grouping strategies: direct addressing, the sparse integer
// Swiss table, the string Swiss table, the category-dictionary pre-pass,
// the multi-column row-packed Swiss table, and the partitioned-parallel
// variant.
package groupby

import (
	"github.com/dwalterskoetter/leichtframe-sub001/internal/arena"
)

// GroupResult is the Compressed Sparse Row (CSR) representation of a
// grouping: GroupCount groups, Offsets[0..g] delimiting each group's rows
// within RowIndices, and an optional trailing null group.
//
// Keys[i] is either the literal group key (direct-addressing and sparse
// integer paths) or a representative source row index to reconstruct the
// key from (string, category, and row-pack paths); KeysAreRowIndices tells
// callers which interpretation applies.
type GroupResult struct {
	GroupCount        int
	Keys              []int64
	KeysAreRowIndices bool
	Offsets           []int
	RowIndices        []int
	NullGroupIndices  []int

	// arena is non-nil when Offsets/RowIndices were allocated natively
	// (see internal/arena); Release returns them to it. A nil arena means
	// the buffers are ordinary Go-heap slices, reclaimed by the GC.
	arena       *arena.Arena
	arenaOffBuf []byte
	arenaRowBuf []byte
}

// Released reports whether Release has already been called, so repeated
// calls are safe no-ops.
func (g *GroupResult) Released() bool {
	return g.arena == nil && g.arenaOffBuf == nil && g.arenaRowBuf == nil && g.Offsets == nil && g.RowIndices == nil
}

// Release returns any natively-allocated buffers to their arena. It is a
// no-op for managed (Go-heap) group results, and is idempotent.
func (g *GroupResult) Release() {
	if g.arena != nil {
		if g.arenaOffBuf != nil {
			g.arena.Release(g.arenaOffBuf)
			g.arenaOffBuf = nil
		}
		if g.arenaRowBuf != nil {
			g.arena.Release(g.arenaRowBuf)
			g.arenaRowBuf = nil
		}
		g.arena = nil
	}
	g.Offsets = nil
	g.RowIndices = nil
}

// Window returns the half-open row-index window [start,end) for group i.
func (g *GroupResult) Window(i int) (start, end int) {
	return g.Offsets[i], g.Offsets[i+1]
}

// NullGroup reports the trailing null-group row indices, or nil if the
// source column was non-nullable or no row had a null key.
func (g *GroupResult) NullGroup() []int {
	return g.NullGroupIndices
}

// TotalRows returns the number of source rows accounted for across
// every proper group plus the null group, which must equal the source
// row count.
func (g *GroupResult) TotalRows() int {
	if g.GroupCount == 0 {
		return len(g.NullGroupIndices)
	}
	return g.Offsets[g.GroupCount] + len(g.NullGroupIndices)
}

// buildCSR performs a stable two-pass counting sort over n source rows,
// given a function that assigns each row either a group id in
// [0,numGroups) or marks it null. It is the common finishing step shared
// by every dispatch strategy below (direct addressing assigns ids in
// ascending-key order up front; the Swiss-table strategies assign ids in
// first-encounter order), so that group row order is always stable
// ascending-source-order regardless of how ids were assigned.
func buildCSR(n, numGroups int, groupID func(row int) (id int, isNull bool)) (offsets, rowIndices, nullGroupIndices []int) {
	counts := make([]int, numGroups)
	isNullRow := make([]bool, n)
	ids := make([]int, n)
	nNull := 0
	for row := 0; row < n; row++ {
		id, isNull := groupID(row)
		if isNull {
			isNullRow[row] = true
			nNull++
			continue
		}
		ids[row] = id
		counts[id]++
	}

	offsets = make([]int, numGroups+1)
	for i := 0; i < numGroups; i++ {
		offsets[i+1] = offsets[i] + counts[i]
	}

	cursor := make([]int, numGroups)
	copy(cursor, offsets[:numGroups])
	rowIndices = make([]int, offsets[numGroups])
	nullGroupIndices = make([]int, 0, nNull)

	for row := 0; row < n; row++ {
		if isNullRow[row] {
			nullGroupIndices = append(nullGroupIndices, row)
			continue
		}
		id := ids[row]
		rowIndices[cursor[id]] = row
		cursor[id]++
	}
	if len(nullGroupIndices) == 0 {
		nullGroupIndices = nil
	}
	return offsets, rowIndices, nullGroupIndices
}
