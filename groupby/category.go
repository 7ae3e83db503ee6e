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
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dwalterskoetter/leichtframe-sub001/column"
)

// CategoryPrepass implements the category-dictionary pre-pass: if col's
// cardinality is bounded by catCardinalityCap, it is converted to Int32
// codes (null strings deterministically receiving code 0) and the caller
// falls back to the integer group-by path on the result. If the cap is
// exceeded, ok is false and the caller should use StringTable directly
// instead.
//
// Above parallelThreshold rows, the dictionary is built by partitioning
// rows across a bounded worker pool (golang.org/x/sync/errgroup): each
// worker builds a local dictionary and local codes, then a merge step
// builds the global dictionary and remaps codes.
func CategoryPrepass(col *column.StringColumn, catCardinalityCap, parallelThreshold int) (codes []int32, cardinality int, ok bool) {
	n := col.Len()
	if n < parallelThreshold || n == 0 {
		return categoryPrepassSequential(col, catCardinalityCap)
	}
	return categoryPrepassParallel(col, catCardinalityCap)
}

func categoryPrepassSequential(col *column.StringColumn, cap int) ([]int32, int, bool) {
	dict := make(map[string]int32, 64)
	codes := make([]int32, col.Len())
	next := int32(1)
	mask := col.Mask()
	for row := 0; row < col.Len(); row++ {
		if mask.IsNull(row) {
			codes[row] = 0
			continue
		}
		s := col.Get(row)
		c, found := dict[s]
		if !found {
			if int(next)-1 >= cap {
				return nil, 0, false
			}
			c = next
			dict[s] = c
			next++
		}
		codes[row] = c
	}
	return codes, int(next) - 1, true
}

type localDict struct {
	start, end int
	dict       map[string]int32
	codes      []int32 // local codes, local dictionary numbering starting at 1
}

func categoryPrepassParallel(col *column.StringColumn, cap int) ([]int32, int, bool) {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	n := col.Len()
	chunk := (n + workers - 1) / workers
	locals := make([]*localDict, 0, workers)
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		locals = append(locals, &localDict{start: start, end: end})
	}

	var g errgroup.Group
	mask := col.Mask()
	for _, loc := range locals {
		loc := loc
		g.Go(func() error {
			loc.dict = make(map[string]int32, 64)
			loc.codes = make([]int32, loc.end-loc.start)
			next := int32(1)
			for row := loc.start; row < loc.end; row++ {
				if mask.IsNull(row) {
					continue
				}
				s := col.Get(row)
				c, found := loc.dict[s]
				if !found {
					c = next
					loc.dict[s] = c
					next++
				}
				loc.codes[row-loc.start] = c
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return an error

	// merge: walk locals in order, interning each local string into the
	// global dictionary the first time it's seen, and remap each local's
	// codes to global codes.
	global := make(map[string]int32, 64)
	globalNext := int32(1)
	codes := make([]int32, n)
	for _, loc := range locals {
		localToGlobal := make(map[int32]int32, len(loc.dict))
		for s, lc := range loc.dict {
			gc, found := global[s]
			if !found {
				if int(globalNext)-1 >= cap {
					return nil, 0, false
				}
				gc = globalNext
				global[s] = gc
				globalNext++
			}
			localToGlobal[lc] = gc
		}
		for i, lc := range loc.codes {
			row := loc.start + i
			if mask.IsNull(row) {
				codes[row] = 0
				continue
			}
			codes[row] = localToGlobal[lc]
		}
	}
	return codes, int(globalNext) - 1, true
}

// CategoryTable builds a GroupResult directly from pre-computed category
// codes (1..cardinality, 0 == null), produced by CategoryPrepass. Since
// codes are densely packed by construction, this is direct addressing
// over the code space rather than a second Swiss-table pass. The
// returned Keys (KeysAreRowIndices==true) are the first source row at
// which each code appeared, letting callers recover the original string
// from the column they ran CategoryPrepass against.
func CategoryTable(codes []int32, cardinality int) *GroupResult {
	n := len(codes)
	repRow := make([]int64, cardinality+1)
	seen := make([]bool, cardinality+1)
	for row, c := range codes {
		if c != 0 && !seen[c] {
			seen[c] = true
			repRow[c] = int64(row)
		}
	}

	offsets, rowIndices, nullGroupIndices := buildCSR(n, cardinality, func(row int) (int, bool) {
		c := codes[row]
		if c == 0 {
			return 0, true
		}
		return int(c) - 1, false
	})

	keys := make([]int64, cardinality)
	for c := 1; c <= cardinality; c++ {
		keys[c-1] = repRow[c]
	}

	return &GroupResult{
		GroupCount:        cardinality,
		Keys:              keys,
		KeysAreRowIndices: true,
		Offsets:           offsets,
		RowIndices:        rowIndices,
		NullGroupIndices:  nullGroupIndices,
	}
}

// CategoryColumnGroups groups a Category column by its dictionary codes
// directly: the codes are already dense small integers, so this is direct
// addressing over the code space with no hashing or pre-pass at all.
// Unlike CategoryTable's pre-pass output, a category column's dictionary
// may hold strings no surviving row references (flyweight clones share
// the dictionary), so codes with zero occurrences are skipped rather
// than emitted as empty groups. Keys are representative row indices.
func CategoryColumnGroups(col *column.CategoryColumn) *GroupResult {
	codes := col.Codes()
	n := len(codes)
	dictLen := col.Cardinality() + 1
	repRow := make([]int64, dictLen)
	seen := make([]bool, dictLen)
	for row, c := range codes {
		if c != 0 && !seen[c] {
			seen[c] = true
			repRow[c] = int64(row)
		}
	}

	groupOf := make([]int, dictLen)
	keys := make([]int64, 0, dictLen-1)
	numGroups := 0
	for c := 1; c < dictLen; c++ {
		if !seen[c] {
			continue
		}
		groupOf[c] = numGroups
		keys = append(keys, repRow[c])
		numGroups++
	}

	offsets, rowIndices, nullGroupIndices := buildCSR(n, numGroups, func(row int) (int, bool) {
		c := codes[row]
		if c == 0 {
			return 0, true
		}
		return groupOf[c], false
	})

	return &GroupResult{
		GroupCount:        numGroups,
		Keys:              keys,
		KeysAreRowIndices: true,
		Offsets:           offsets,
		RowIndices:        rowIndices,
		NullGroupIndices:  nullGroupIndices,
	}
}
