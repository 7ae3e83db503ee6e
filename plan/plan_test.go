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
	"context"
	"testing"

	"github.com/dwalterskoetter/leichtframe-sub001/column"
	"github.com/dwalterskoetter/leichtframe-sub001/expr"
	"github.com/dwalterskoetter/leichtframe-sub001/frame"
)

func int32Frame(t *testing.T, name string, vals []int32, nullable bool) *frame.Frame {
	t.Helper()
	c := column.NewInt32Column(nullable, len(vals))
	for _, v := range vals {
		if err := c.Append(v); err != nil {
			t.Fatal(err)
		}
	}
	f, err := frame.New(frame.Schema{{Name: name, Kind: column.Int32Kind, Nullable: nullable}}, []column.Column{c})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func mustCol(t *testing.T, f *frame.Frame, name string) column.Column {
	t.Helper()
	c, err := f.ColumnNamed(name)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// TestDenseIntGroupByCount: counting rows grouped by a dense integer key.
func TestDenseIntGroupByCount(t *testing.T) {
	f := int32Frame(t, "Id", []int32{1, 1, 2, 3, 3, 3}, false)
	out, err := FromFrame(f).Aggregate([]expr.Node{expr.Col{Name: "Id"}}, []expr.Node{AggCount("Id")}).Collect()
	if err != nil {
		t.Fatal(err)
	}
	if out.RowCount() != 3 {
		t.Fatalf("expected 3 groups, got %d", out.RowCount())
	}
	ids := mustCol(t, out, "Id").(*column.Int32Column)
	counts := mustCol(t, out, "count").(*column.Int32Column)
	want := map[int32]int32{1: 2, 2: 1, 3: 3}
	for i := 0; i < out.RowCount(); i++ {
		if counts.Get(i) != want[ids.Get(i)] {
			t.Fatalf("group %d: id=%d count=%d want %d", i, ids.Get(i), counts.Get(i), want[ids.Get(i)])
		}
	}
}

// TestCategorySum: summing a value column grouped by a category key.
func TestCategorySum(t *testing.T) {
	dept := column.NewCategoryColumn(false)
	dept.Append("IT")
	dept.Append("IT")
	dept.Append("HR")
	salary := column.NewInt32Column(false, 3)
	for _, v := range []int32{5000, 4000, 3000} {
		if err := salary.Append(v); err != nil {
			t.Fatal(err)
		}
	}
	f, err := frame.New(frame.Schema{
		{Name: "Dept", Kind: column.CategoryKind, Nullable: false},
		{Name: "Salary", Kind: column.Int32Kind, Nullable: false},
	}, []column.Column{dept, salary})
	if err != nil {
		t.Fatal(err)
	}

	out, err := FromFrame(f).Aggregate([]expr.Node{expr.Col{Name: "Dept"}}, []expr.Node{AggSum("Salary", "Total")}).Collect()
	if err != nil {
		t.Fatal(err)
	}
	if out.RowCount() != 2 {
		t.Fatalf("expected 2 groups, got %d", out.RowCount())
	}
	depts := mustCol(t, out, "Dept").(*column.CategoryColumn)
	totals := mustCol(t, out, "Total").(*column.Int64Column)
	want := map[string]int64{"IT": 9000, "HR": 3000}
	for i := 0; i < out.RowCount(); i++ {
		s, _ := depts.Get(i)
		if totals.Get(i) != want[s] {
			t.Fatalf("group %d: dept=%s total=%d want %d", i, s, totals.Get(i), want[s])
		}
	}
}

// TestNullGroupCount: null keys collect into one trailing null-key row.
func TestNullGroupCount(t *testing.T) {
	cat := column.NewStringColumn(true)
	cat.Append("A")  //nolint:errcheck
	cat.AppendNull() //nolint:errcheck
	cat.Append("A")  //nolint:errcheck
	cat.AppendNull() //nolint:errcheck
	f, err := frame.New(frame.Schema{{Name: "Cat", Kind: column.StringKind, Nullable: true}}, []column.Column{cat})
	if err != nil {
		t.Fatal(err)
	}

	out, err := FromFrame(f).Aggregate([]expr.Node{expr.Col{Name: "Cat"}}, []expr.Node{AggCount("Cat")}).Collect()
	if err != nil {
		t.Fatal(err)
	}
	if out.RowCount() != 2 {
		t.Fatalf("expected 2 rows (1 proper + 1 null group), got %d", out.RowCount())
	}
	cats := mustCol(t, out, "Cat").(*column.StringColumn)
	counts := mustCol(t, out, "count").(*column.Int32Column)
	foundA, foundNull := false, false
	for i := 0; i < out.RowCount(); i++ {
		if cats.IsNull(i) {
			foundNull = true
			if counts.Get(i) != 2 {
				t.Fatalf("null group count = %d, want 2", counts.Get(i))
			}
		} else if cats.Get(i) == "A" {
			foundA = true
			if counts.Get(i) != 2 {
				t.Fatalf("A group count = %d, want 2", counts.Get(i))
			}
		}
	}
	if !foundA || !foundNull {
		t.Fatal("expected both an 'A' group and a null group")
	}
}

// TestLeftJoinMissingMatch: an unmatched left row keeps its right
// columns null.
func TestLeftJoinMissingMatch(t *testing.T) {
	left := int32Frame(t, "Id", []int32{1}, false)

	rightID := column.NewInt32Column(false, 1)
	if err := rightID.Append(2); err != nil {
		t.Fatal(err)
	}
	rightInfo := column.NewStringColumn(true)
	if err := rightInfo.Append("m"); err != nil {
		t.Fatal(err)
	}
	right, err := frame.New(frame.Schema{
		{Name: "Id", Kind: column.Int32Kind, Nullable: false},
		{Name: "Info", Kind: column.StringKind, Nullable: true},
	}, []column.Column{rightID, rightInfo})
	if err != nil {
		t.Fatal(err)
	}

	out, err := FromFrame(left).Join(FromFrame(right), "Id", Left).Collect()
	if err != nil {
		t.Fatal(err)
	}
	if out.RowCount() != 1 {
		t.Fatalf("expected 1 row, got %d", out.RowCount())
	}
	ids := mustCol(t, out, "Id").(*column.Int32Column)
	info := mustCol(t, out, "Info").(*column.StringColumn)
	if ids.Get(0) != 1 {
		t.Fatalf("expected Id=1, got %d", ids.Get(0))
	}
	if !info.IsNull(0) {
		t.Fatal("expected Info to be null for the unmatched left row")
	}
}

// TestStreamingCountIterator: the streaming count yields exactly two
// items (A,2),(B,1), each Row only valid until the next Next() call.
func TestStreamingCountIterator(t *testing.T) {
	grp := column.NewStringColumn(false)
	for _, s := range []string{"A", "A", "B"} {
		if err := grp.Append(s); err != nil {
			t.Fatal(err)
		}
	}
	f, err := frame.New(frame.Schema{{Name: "Grp", Kind: column.StringKind, Nullable: false}}, []column.Column{grp})
	if err != nil {
		t.Fatal(err)
	}

	it, err := FromFrame(f).Aggregate([]expr.Node{expr.Col{Name: "Grp"}}, []expr.Node{AggCount("Grp")}).CollectStream()
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]int32{}
	n := 0
	for it.Next() {
		n++
		s, isNull := it.Row().String(0)
		if isNull {
			t.Fatal("unexpected null group key")
		}
		c, _ := it.Row().Count(0)
		got[s] = c
	}
	if err := it.Err(); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 items, got %d", n)
	}
	if got["A"] != 2 || got["B"] != 1 {
		t.Fatalf("got %v, want A=2 B=1", got)
	}
}

// TestOrderByStability checks a stable sort on an already-sorted column is
// the identity permutation.
func TestOrderByStability(t *testing.T) {
	f := int32Frame(t, "Id", []int32{1, 2, 3, 4}, false)
	out, err := FromFrame(f).OrderBy([]string{"Id"}, []bool{true}).Collect()
	if err != nil {
		t.Fatal(err)
	}
	ids := mustCol(t, out, "Id").(*column.Int32Column)
	for i := 0; i < out.RowCount(); i++ {
		if ids.Get(i) != int32(i+1) {
			t.Fatalf("row %d: got %d want %d", i, ids.Get(i), i+1)
		}
	}
}

// TestOrderByDescendingRadixBoundary exercises the single-Int32-key
// descending radix path directly against a dense value range.
func TestOrderByDescendingRadixBoundary(t *testing.T) {
	f := int32Frame(t, "Id", []int32{3, 1, 4, 1, 5, 9, 2, 6}, false)
	out, err := FromFrame(f).OrderBy([]string{"Id"}, []bool{false}).Collect()
	if err != nil {
		t.Fatal(err)
	}
	ids := mustCol(t, out, "Id").(*column.Int32Column)
	for i := 1; i < out.RowCount(); i++ {
		if ids.Get(i-1) < ids.Get(i) {
			t.Fatalf("not descending at row %d: %d then %d", i, ids.Get(i-1), ids.Get(i))
		}
	}
}

// TestProjectVectorizedArithmetic drives (Val*2+5).As("R") end-to-end
// through the planner rather than the arith package directly.
func TestProjectVectorizedArithmetic(t *testing.T) {
	c := column.NewFloat64Column(false, 3)
	for _, v := range []float64{10, 20, 30} {
		if err := c.Append(v); err != nil {
			t.Fatal(err)
		}
	}
	f, err := frame.New(frame.Schema{{Name: "Val", Kind: column.Float64Kind, Nullable: false}}, []column.Column{c})
	if err != nil {
		t.Fatal(err)
	}

	projExpr := expr.As(&expr.Binary{
		Op:    expr.OpAdd,
		Left:  &expr.Binary{Op: expr.OpMul, Left: expr.Col{Name: "Val"}, Right: expr.Lit{Value: float64(2)}},
		Right: expr.Lit{Value: float64(5)},
	}, "R")
	out, err := FromFrame(f).Project(projExpr).Collect()
	if err != nil {
		t.Fatal(err)
	}
	r := mustCol(t, out, "R").(*column.Float64Column)
	for i, want := range []float64{25, 45, 65} {
		if r.Get(i) != want {
			t.Fatalf("row %d: got %v want %v", i, r.Get(i), want)
		}
	}
}

// TestFilterVectorizedComparison exercises the Col ⊙ Lit filter recognizer.
func TestFilterVectorizedComparison(t *testing.T) {
	f := int32Frame(t, "Id", []int32{1, 2, 3, 4, 5}, false)
	out, err := FromFrame(f).Filter(&expr.Binary{Op: expr.OpGt, Left: expr.Col{Name: "Id"}, Right: expr.Lit{Value: int32(3)}}).Collect()
	if err != nil {
		t.Fatal(err)
	}
	ids := mustCol(t, out, "Id").(*column.Int32Column)
	if out.RowCount() != 2 || ids.Get(0) != 4 || ids.Get(1) != 5 {
		t.Fatalf("expected [4,5], got rowcount=%d", out.RowCount())
	}
}

// TestFilterGeneralFallbackAndOr exercises the row-at-a-time general
// evaluator on a predicate shape the vectorized recognizer can't handle:
// a nested AND of two comparisons.
func TestFilterGeneralFallbackAnd(t *testing.T) {
	id := int32Frame(t, "Id", []int32{1, 2, 3, 4, 5}, false)
	pred := &expr.Binary{
		Op:    expr.OpAnd,
		Left:  &expr.Binary{Op: expr.OpGt, Left: expr.Col{Name: "Id"}, Right: expr.Lit{Value: int32(1)}},
		Right: &expr.Binary{Op: expr.OpLt, Left: expr.Col{Name: "Id"}, Right: expr.Lit{Value: int32(4)}},
	}
	out, err := FromFrame(id).Filter(pred).Collect()
	if err != nil {
		t.Fatal(err)
	}
	ids := mustCol(t, out, "Id").(*column.Int32Column)
	want := []int32{2, 3}
	if out.RowCount() != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), out.RowCount())
	}
	for i, w := range want {
		if ids.Get(i) != w {
			t.Fatalf("row %d: got %d want %d", i, ids.Get(i), w)
		}
	}
}

// TestInnerJoinCartesianExpand covers duplicate-key Cartesian expansion on
// an Inner join.
func TestInnerJoinCartesianExpand(t *testing.T) {
	left := int32Frame(t, "Id", []int32{1, 1, 2}, false)

	rightID := column.NewInt32Column(false, 3)
	for _, v := range []int32{1, 1, 2} {
		if err := rightID.Append(v); err != nil {
			t.Fatal(err)
		}
	}
	rightTag := column.NewStringColumn(false)
	for _, s := range []string{"r1", "r2", "r3"} {
		if err := rightTag.Append(s); err != nil {
			t.Fatal(err)
		}
	}
	right, err := frame.New(frame.Schema{
		{Name: "Id", Kind: column.Int32Kind, Nullable: false},
		{Name: "Tag", Kind: column.StringKind, Nullable: false},
	}, []column.Column{rightID, rightTag})
	if err != nil {
		t.Fatal(err)
	}

	out, err := FromFrame(left).Join(FromFrame(right), "Id", Inner).Collect()
	if err != nil {
		t.Fatal(err)
	}
	// Id=1 appears twice on the left and twice on the right: 2x2=4 rows;
	// Id=2 appears once on each side: 1 row. Total 5.
	if out.RowCount() != 5 {
		t.Fatalf("expected 5 rows from Cartesian expansion, got %d", out.RowCount())
	}
}

// TestEmptyFrameAggregation covers the boundary case: aggregating an empty
// frame yields an empty result with the declared output schema.
func TestEmptyFrameAggregation(t *testing.T) {
	f := int32Frame(t, "Id", nil, false)
	out, err := FromFrame(f).Aggregate([]expr.Node{expr.Col{Name: "Id"}}, []expr.Node{AggCount("Id")}).Collect()
	if err != nil {
		t.Fatal(err)
	}
	if out.RowCount() != 0 {
		t.Fatalf("expected empty result, got %d rows", out.RowCount())
	}
	if out.NumColumns() != 2 {
		t.Fatalf("expected 2 columns (Id, count), got %d", out.NumColumns())
	}
}

// TestCollectContextCancelled verifies a pre-cancelled context aborts
// before any kernel runs.
func TestCollectContextCancelled(t *testing.T) {
	f := int32Frame(t, "Id", []int32{1, 2, 3}, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FromFrame(f).Filter(&expr.Binary{Op: expr.OpGt, Left: expr.Col{Name: "Id"}, Right: expr.Lit{Value: int32(1)}}).CollectContext(ctx); err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
	if _, err := FromFrame(f).CollectStreamContext(ctx); err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
}
