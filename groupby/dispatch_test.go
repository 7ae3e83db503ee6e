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
	"testing"

	"github.com/dwalterskoetter/leichtframe-sub001/column"
	"github.com/dwalterskoetter/leichtframe-sub001/config"
)

func TestDispatchPicksDirectForDenseInt(t *testing.T) {
	c := buildInt32(t, false, []int32{1, 2, 3, 2, 1}, nil)
	cfg := config.DefaultEngine()
	gr, strat := Dispatch([]column.Column{c}, c.Len(), cfg)
	if strat != StrategyDirect {
		t.Fatalf("expected direct strategy, got %s", strat)
	}
	if gr.GroupCount != 3 {
		t.Fatalf("expected 3 groups, got %d", gr.GroupCount)
	}
}

func TestDispatchPicksSparseIntForSparseInt(t *testing.T) {
	c := buildInt32(t, false, []int32{0, 100000, 500000}, nil)
	cfg := config.DefaultEngine()
	_, strat := Dispatch([]column.Column{c}, c.Len(), cfg)
	if strat != StrategySparseInt {
		t.Fatalf("expected sparse_int strategy, got %s", strat)
	}
}

func TestDispatchPicksCategoryForLowCardinalityString(t *testing.T) {
	c := buildString(t, false, []string{"a", "b", "a", "c", "b"}, nil)
	cfg := config.DefaultEngine()
	gr, strat := Dispatch([]column.Column{c}, c.Len(), cfg)
	if strat != StrategyCategory {
		t.Fatalf("expected category strategy, got %s", strat)
	}
	if gr.GroupCount != 3 {
		t.Fatalf("expected 3 groups, got %d", gr.GroupCount)
	}
}

func TestDispatchFallsBackToStringOverCardinalityCap(t *testing.T) {
	vals := make([]string, 200)
	for i := range vals {
		vals[i] = string(rune('a'+i%26)) + string(rune('A'+i%7)) + string(rune('0'+i%10))
	}
	c := buildString(t, false, vals, nil)
	cfg := config.DefaultEngine()
	cfg.CatCardinalityCap = 5
	_, strat := Dispatch([]column.Column{c}, c.Len(), cfg)
	if strat != StrategyString {
		t.Fatalf("expected string strategy once cardinality cap is exceeded, got %s", strat)
	}
}

func TestDispatchUsesRowPackForMultipleColumns(t *testing.T) {
	a := buildInt32(t, false, []int32{1, 1, 2}, nil)
	b := buildInt32(t, false, []int32{1, 1, 2}, nil)
	cfg := config.DefaultEngine()
	_, strat := Dispatch([]column.Column{a, b}, 3, cfg)
	if strat != StrategyRowPack {
		t.Fatalf("expected row_pack strategy, got %s", strat)
	}
}

func TestDispatchUsesPartitionedParallelForLargeSparseInt(t *testing.T) {
	n := 600_000
	vals := make([]int32, n)
	for i := range vals {
		vals[i] = int32(i) * 1_000_003 // wide spread, never dense
	}
	c := buildInt32(t, false, vals, nil)
	cfg := config.DefaultEngine()
	_, strat := Dispatch([]column.Column{c}, c.Len(), cfg)
	if strat != StrategyPartitioned {
		t.Fatalf("expected partitioned_parallel strategy, got %s", strat)
	}
}

func TestDispatchSkipsPartitionedWhenNullsPresent(t *testing.T) {
	// the partitioned-parallel path requires a null-free key column; a
	// single null key forces the plain sparse table even past the trigger.
	n := 600_000
	vals := make([]int32, n)
	for i := range vals {
		vals[i] = int32(i) * 1_000_003
	}
	c := buildInt32(t, true, vals, []int{42})
	cfg := config.DefaultEngine()
	_, strat := Dispatch([]column.Column{c}, c.Len(), cfg)
	if strat != StrategySparseInt {
		t.Fatalf("expected sparse_int strategy for a nullable key, got %s", strat)
	}
}

func TestDispatchGroupsCategoryColumnByCodes(t *testing.T) {
	c := column.NewCategoryColumn(true)
	c.Append("x")
	c.Append("y")
	c.Append("x")
	if err := c.AppendNull(); err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultEngine()
	gr, strat := Dispatch([]column.Column{c}, c.Len(), cfg)
	if strat != StrategyCategory {
		t.Fatalf("expected category strategy for a Category key, got %s", strat)
	}
	if gr.GroupCount != 2 || !gr.KeysAreRowIndices {
		t.Fatalf("expected 2 row-indexed groups, got %d (rowIndices=%v)", gr.GroupCount, gr.KeysAreRowIndices)
	}
	if len(gr.NullGroupIndices) != 1 || gr.NullGroupIndices[0] != 3 {
		t.Fatalf("expected null group {3}, got %v", gr.NullGroupIndices)
	}
}

func TestDispatchCategoryColumnSkipsUnreferencedDictEntries(t *testing.T) {
	src := column.NewCategoryColumn(false)
	src.Append("a")
	src.Append("b")
	src.Append("a")
	// the clone shares a dictionary containing "b" but selects only "a"
	// rows; no empty "b" group may appear.
	clone := src.CloneSubset([]int{0, 2})
	cfg := config.DefaultEngine()
	gr, _ := Dispatch([]column.Column{clone}, clone.Len(), cfg)
	if gr.GroupCount != 1 {
		t.Fatalf("expected 1 group (only 'a' present), got %d", gr.GroupCount)
	}
}

func TestDispatchDenseRangeBoundary(t *testing.T) {
	// n=8, factor=4: a key range of exactly 32 stays direct, 33 tips over
	// to the sparse table; both must produce identical groupings.
	cfg := config.DefaultEngine()
	countsOf := func(maxVal int32) (Strategy, map[int64]int) {
		vals := []int32{0, maxVal, 0, 5, maxVal, 5, 0, 5}
		c := buildInt32(t, false, vals, nil)
		gr, strat := Dispatch([]column.Column{c}, c.Len(), cfg)
		out := make(map[int64]int, gr.GroupCount)
		for g := 0; g < gr.GroupCount; g++ {
			start, end := gr.Window(g)
			out[gr.Keys[g]] = end - start
		}
		return strat, out
	}

	stratAt, atBoundary := countsOf(31)     // range 32 == 4*8
	stratPast, pastBoundary := countsOf(32) // range 33 > 4*8
	if stratAt != StrategyDirect {
		t.Fatalf("range == factor*n should stay direct, got %s", stratAt)
	}
	if stratPast != StrategySparseInt {
		t.Fatalf("range > factor*n should use the sparse table, got %s", stratPast)
	}
	for _, counts := range []map[int64]int{atBoundary, pastBoundary} {
		if len(counts) != 3 || counts[0] != 3 || counts[5] != 3 {
			t.Fatalf("unexpected grouping %v", counts)
		}
	}
}
