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
	"math/bits"

	"golang.org/x/sync/errgroup"

	"github.com/dwalterskoetter/leichtframe-sub001/column"
	"github.com/dwalterskoetter/leichtframe-sub001/internal/xhash"
)

// partitionResult is one partition's local grouping: localID holds a
// local group id per entry of rows, and localKeys holds each local
// group's key (literal int32 key or representative row index) in
// first-encounter order.
type partitionResult struct {
	rows      []int // global row indices belonging to this partition
	localID   []int // per-entry-in-rows local group id
	localKeys []int64
}

// partitionedParallel is the radix-partition/build/merge core shared by
// the integer and string variants: rows are partitioned by
// the high bits of hashOf into a power-of-two partition count, each
// partition builds an independent Swiss table concurrently
// (golang.org/x/sync/errgroup), and the partitions' local group ids are
// merged into one global id space before the shared buildCSR pass
// restores stable ascending-source-row order.
//
// Every partition hashes a disjoint key set (radix partitioning on the
// hash guarantees equal keys land in the same partition), so no
// cross-partition key merge is needed: the global group for a key is its
// partition-local group, offset by the group counts of all earlier
// partitions.
func partitionedParallel(n, partitions int, mask *column.NullMask, hashOf func(row int) uint32, build func(rows []int) *partitionResult, keysAreRowIndices bool) *GroupResult {
	if partitions < 1 {
		partitions = 1
	}
	partitions = 1 << bits.Len(uint(partitions-1)) // round up to a power of two
	shift := 32 - bits.Len(uint(partitions-1))
	if partitions == 1 {
		shift = 0
	}

	partRows := make([][]int, partitions)
	isNull := make([]bool, n)
	for row := 0; row < n; row++ {
		if mask.IsNull(row) {
			isNull[row] = true
			continue
		}
		p := int(hashOf(row) >> uint(shift))
		if p >= partitions {
			p = partitions - 1
		}
		partRows[p] = append(partRows[p], row)
	}

	results := make([]*partitionResult, partitions)
	var g errgroup.Group
	for p := 0; p < partitions; p++ {
		p := p
		g.Go(func() error {
			results[p] = build(partRows[p])
			return nil
		})
	}
	_ = g.Wait()

	globalOffset := make([]int, partitions)
	total := 0
	for p, r := range results {
		globalOffset[p] = total
		total += len(r.localKeys)
	}

	ids := make([]int, n)
	keys := make([]int64, total)
	for p, r := range results {
		off := globalOffset[p]
		for i, row := range r.rows {
			ids[row] = off + r.localID[i]
		}
		copy(keys[off:off+len(r.localKeys)], r.localKeys)
	}

	offsets, rowIndices, nullGroupIndices := buildCSR(n, total, func(row int) (int, bool) {
		if isNull[row] {
			return 0, true
		}
		return ids[row], false
	})

	return &GroupResult{
		GroupCount:        total,
		Keys:              keys,
		KeysAreRowIndices: keysAreRowIndices,
		Offsets:           offsets,
		RowIndices:        rowIndices,
		NullGroupIndices:  nullGroupIndices,
	}
}

// PartitionedParallel implements the partitioned-parallel group-by path
// over a single Int32 key. Each partition builds
// its own sparse integer Swiss table; merged keys stay literal values.
func PartitionedParallel(col *column.Int32Column, partitions int) *GroupResult {
	return partitionedParallel(col.Len(), partitions, col.Mask(),
		func(row int) uint32 { return xhash.Int32(col.Get(row)) },
		func(rows []int) *partitionResult {
			t := newSparseIntTable()
			localID := make([]int, len(rows))
			for i, row := range rows {
				localID[i] = t.groupFor(col.Get(row))
			}
			return &partitionResult{rows: rows, localID: localID, localKeys: t.groupKeys}
		}, false)
}

// PartitionedParallelString is the string-key variant: partitions are
// formed over the FNV-1a hash and each builds an independent string
// Swiss table. Keys in the merged result are representative row indices,
// same as StringTable's.
func PartitionedParallelString(col *column.StringColumn, partitions int) *GroupResult {
	return partitionedParallel(col.Len(), partitions, col.Mask(),
		func(row int) uint32 { return xhash.String(col.GetBytes(row)) },
		func(rows []int) *partitionResult {
			t := newStringTable(col)
			localID := make([]int, len(rows))
			for i, row := range rows {
				localID[i] = t.groupFor(row)
			}
			return &partitionResult{rows: rows, localID: localID, localKeys: t.repRow}
		}, true)
}
