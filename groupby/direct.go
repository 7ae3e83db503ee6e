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
)

// directRange returns the [min,max] of the non-null values in col and
// whether any value is present at all (an all-null or empty column has no
// meaningful range).
func directRange(col *column.Int32Column) (min, max int32, any bool) {
	n := col.Len()
	mask := col.Mask()
	for i := 0; i < n; i++ {
		if mask.IsNull(i) {
			continue
		}
		v := col.Get(i)
		if !any {
			min, max = v, v
			any = true
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, any
}

// DenseRangeFits reports whether direct addressing is eligible for col
// under the configured dense_range_factor: max-min+1 <= factor*n, with n
// the total row count (not the non-null count).
func DenseRangeFits(col *column.Int32Column, denseRangeFactor int) bool {
	n := col.Len()
	if n == 0 {
		return true
	}
	min, max, any := directRange(col)
	if !any {
		return true // all-null: trivially within any range
	}
	rangeSize := int64(max) - int64(min) + 1
	return rangeSize <= int64(denseRangeFactor)*int64(n)
}

// DirectAddress implements the dense-integer group-by path:
// one bucket per possible value in [min,max], histogrammed over v-min with
// no hashing at all, producing keys in strictly ascending order. Callers
// must have checked DenseRangeFits first; the bucket array is sized to the
// full value range.
func DirectAddress(col *column.Int32Column) *GroupResult {
	n := col.Len()
	min, max, any := directRange(col)
	if !any {
		// every row null (or the column is empty): a single null group,
		// no proper groups.
		null := make([]int, 0, n)
		for i := 0; i < n; i++ {
			null = append(null, i)
		}
		if len(null) == 0 {
			null = nil
		}
		return &GroupResult{NullGroupIndices: null}
	}

	mask := col.Mask()
	span := int(int64(max) - int64(min) + 1)
	counts := make([]int, span)
	for i := 0; i < n; i++ {
		if mask.IsNull(i) {
			continue
		}
		counts[col.Get(i)-min]++
	}

	// assign group ids by ascending bucket, skipping empty buckets, so
	// only observed keys are emitted and they come out strictly ascending.
	groupOf := make([]int, span)
	keys := make([]int64, 0, span)
	numGroups := 0
	for b := 0; b < span; b++ {
		if counts[b] == 0 {
			continue
		}
		groupOf[b] = numGroups
		keys = append(keys, int64(b)+int64(min))
		numGroups++
	}

	offsets, rowIndices, nullGroupIndices := buildCSR(n, numGroups, func(row int) (int, bool) {
		if mask.IsNull(row) {
			return 0, true
		}
		return groupOf[col.Get(row)-min], false
	})

	return &GroupResult{
		GroupCount:       numGroups,
		Keys:             keys,
		Offsets:          offsets,
		RowIndices:       rowIndices,
		NullGroupIndices: nullGroupIndices,
	}
}
