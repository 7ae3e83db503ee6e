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

package plan

import (
	"sort"

	"github.com/dwalterskoetter/leichtframe-sub001/colerr"
	"github.com/dwalterskoetter/leichtframe-sub001/column"
	"github.com/dwalterskoetter/leichtframe-sub001/frame"
	"github.com/dwalterskoetter/leichtframe-sub001/sorting"
)

// evalOrderBy returns the row permutation that stably sorts f by keys,
// each direction set by the matching entry of ascending.
// Nulls sort last on every key regardless of direction. A single Int32
// key sorted descending uses a radix-partition pass instead of the
// general comparison sort; every other shape falls back to the stable
// comparison sort.
func evalOrderBy(f *frame.Frame, keys []string, ascending []bool) ([]int, error) {
	if len(keys) != len(ascending) {
		return nil, &colerr.InvalidPlan{Msg: "OrderBy keys and ascending must have equal length"}
	}
	cols := make([]column.Column, len(keys))
	for i, k := range keys {
		c, err := f.ColumnNamed(k)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}

	if len(cols) == 1 && !ascending[0] {
		if ic, ok := cols[0].(*column.Int32Column); ok {
			return radixDescendingInt32(ic), nil
		}
	}

	idx := make([]int, f.RowCount())
	for i := range idx {
		idx[i] = i
	}
	orderings := make([]sorting.Ordering, len(keys))
	for i, asc := range ascending {
		dir := sorting.Descending
		if asc {
			dir = sorting.Ascending
		}
		orderings[i] = sorting.Ordering{Direction: dir, Nulls: sorting.NullsLast}
	}

	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := idx[a], idx[b]
		for k, c := range cols {
			cmp := compareRows(c, ra, rb, orderings[k])
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	return idx, nil
}

// compareRows three-way compares row a against row b of column c under
// ordering o, treating nulls as always-last.
func compareRows(c column.Column, a, b int, o sorting.Ordering) int {
	aNull, bNull := c.IsNull(a), c.IsNull(b)
	return sorting.Compare(aNull, bNull, func() int {
		switch typed := c.(type) {
		case *column.Int32Column:
			return compareOrdered(typed.Get(a), typed.Get(b))
		case *column.Int64Column:
			return compareOrdered(typed.Get(a), typed.Get(b))
		case *column.Float64Column:
			return compareOrdered(typed.Get(a), typed.Get(b))
		case *column.TimestampColumn:
			return compareOrdered(typed.Get(a), typed.Get(b))
		case *column.StringColumn:
			return compareOrdered(typed.Get(a), typed.Get(b))
		case *column.CategoryColumn:
			sa, _ := typed.Get(a)
			sb, _ := typed.Get(b)
			return compareOrdered(sa, sb)
		case *column.BoolColumn:
			return compareOrdered(boolToInt(typed.Get(a)), boolToInt(typed.Get(b)))
		default:
			return 0
		}
	}, o)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type ordered interface {
	~int | ~int32 | ~int64 | ~float64 | ~string
}

func compareOrdered[T ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// radixBuckets is the fixed partition count used by radixDescendingInt32.
const radixBuckets = 256

// radixDescendingInt32 implements a single-key descending partition sort
// over a dense Int32 range: values
// are bucketed by their position within [min,max] into radixBuckets
// partitions, buckets emitted high-to-low, each stably sorted internally
// to resolve ties. Nulls are appended last, matching the general sort's
// NullsLast policy. Falls back to a single bucket (a plain stable sort)
// when every value is equal.
func radixDescendingInt32(c *column.Int32Column) []int {
	n := c.Len()
	idx := make([]int, 0, n)
	var nulls []int
	min, max := int32(0), int32(0)
	first := true
	for i := 0; i < n; i++ {
		if c.IsNull(i) {
			nulls = append(nulls, i)
			continue
		}
		v := c.Get(i)
		if first {
			min, max = v, v
			first = false
		} else {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		idx = append(idx, i)
	}
	if len(idx) == 0 {
		return nulls
	}

	span := int64(max) - int64(min) + 1
	bucketOf := func(row int) int {
		v := c.Get(row)
		return int((int64(max) - int64(v)) * radixBuckets / span)
	}
	buckets := make([][]int, radixBuckets)
	for _, row := range idx {
		b := bucketOf(row)
		buckets[b] = append(buckets[b], row)
	}

	out := idx[:0]
	for _, b := range buckets {
		if len(b) == 0 {
			continue
		}
		sort.SliceStable(b, func(a, bb int) bool {
			return c.Get(b[a]) > c.Get(b[bb])
		})
		out = append(out, b...)
	}
	return append(out, nulls...)
}
