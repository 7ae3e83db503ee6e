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

	"github.com/google/uuid"

	"github.com/dwalterskoetter/leichtframe-sub001/colerr"
	"github.com/dwalterskoetter/leichtframe-sub001/column"
	"github.com/dwalterskoetter/leichtframe-sub001/config"
	"github.com/dwalterskoetter/leichtframe-sub001/expr"
	"github.com/dwalterskoetter/leichtframe-sub001/frame"
	"github.com/dwalterskoetter/leichtframe-sub001/groupby"
	"github.com/dwalterskoetter/leichtframe-sub001/logging"
)

// Row is a borrowed view onto one output row: valid only until the next
// call to RowIterator.Next.
type Row interface {
	// Int32 returns the Int32-kinded value at column i and whether it is
	// null.
	Int32(i int) (int32, bool)
	// String returns the String/Category-kinded value at column i and
	// whether it is null.
	String(i int) (string, bool)
	// Count returns a count value and whether it is null. On the
	// count-by-one-column fast path, Count(0) is the current group's row
	// count, separate from Int32(0)/String(0), which return the group key;
	// on the materializing fallback, Count(i) is the same as Int32(i) and
	// reads the Int32 column at position i.
	Count(i int) (int32, bool)
}

// RowIterator streams plan results one row at a time. Next returns false
// once exhausted (or on error, retrievable via Err).
type RowIterator interface {
	Next() bool
	Row() Row
	Err() error
}

// CollectStream executes l's plan, preferring the zero-allocation
// streaming fast path when the plan is exactly
// Aggregate(group=[single_col], aggs=[Count() as X]), and
// falling back to materializing Collect()'s result and iterating its
// rows for every other shape.
func (l LazyFrame) CollectStream(cfg ...config.Engine) (RowIterator, error) {
	return l.CollectStreamContext(context.Background(), cfg...)
}

// CollectStreamContext is CollectStream with caller-controlled
// cancellation, checked between kernel invocations only: once
// iteration begins, Next never consults the context.
func (l LazyFrame) CollectStreamContext(ctx context.Context, cfg ...config.Engine) (RowIterator, error) {
	c := config.DefaultEngine()
	if len(cfg) > 0 {
		c = cfg[0]
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := uuid.New().String()
	if it, ok, err := tryCountGroupStream(l.op, c); ok {
		logging.Default().Log(logging.Debug, "plan.CollectStream fast path", "correlation_id", id)
		return it, err
	}
	logging.Default().Log(logging.Debug, "plan.CollectStream materializing fallback", "correlation_id", id)
	f, err := materialize(ctx, l.op, c)
	if err != nil {
		logging.Default().Log(logging.Warn, "plan.CollectStream failed", "correlation_id", id, "error", err)
		return nil, err
	}
	return &materializedIterator{frame: f, row: -1}, nil
}

// tryCountGroupStream recognizes Aggregate(group=[single Col], aggs=[Count
// as name]) directly on top of a Scan, the only shape given a dedicated
// zero-allocation iterator; every other plan shape returns ok=false so the
// caller materializes instead.
func tryCountGroupStream(op Op, cfg config.Engine) (RowIterator, bool, error) {
	agg, ok := op.(*AggregateOp)
	if !ok || len(agg.GroupExprs) != 1 || len(agg.AggExprs) != 1 {
		return nil, false, nil
	}
	groupCol, ok := agg.GroupExprs[0].(expr.Col)
	if !ok {
		return nil, false, nil
	}
	alias, ok := agg.AggExprs[0].(*expr.Alias)
	if !ok {
		return nil, false, nil
	}
	aggExpr, ok := alias.Child.(*expr.Agg)
	if !ok || aggExpr.Op != expr.AggCount {
		return nil, false, nil
	}
	scan, ok := agg.From.(*ScanOp)
	if !ok {
		return nil, false, nil
	}

	col, err := scan.Frame.ColumnNamed(groupCol.Name)
	if err != nil {
		return nil, true, err
	}
	switch col.(type) {
	case *column.Int32Column, *column.StringColumn, *column.CategoryColumn:
		// supported by the borrowed-row fast path below
	default:
		// Row only exposes Int32/String keys; any other key kind falls
		// back to the materializing iterator.
		return nil, false, nil
	}
	gr, _ := groupby.Dispatch([]column.Column{col}, scan.Frame.RowCount(), cfg)
	if scan.Frame.RowCount() >= cfg.ParallelThreshold {
		if err := gr.MoveToArena(groupby.DefaultArena()); err != nil {
			gr.Release()
			return nil, true, err
		}
	}

	return &countGroupIterator{gr: gr, keyCol: col, group: -1}, true, nil
}

// countGroupIterator is the streaming fast path: it walks gr's groups
// directly, borrowing gr's own buffers rather than materializing a result
// Frame. The trailing null-group row, if any, is emitted last.
type countGroupIterator struct {
	gr     *groupby.GroupResult
	keyCol column.Column
	group  int
	err    error
}

func (it *countGroupIterator) Next() bool {
	total := it.gr.GroupCount
	if len(it.gr.NullGroupIndices) > 0 {
		total++
	}
	it.group++
	if it.group >= total {
		it.gr.Release()
		return false
	}
	return true
}

func (it *countGroupIterator) Row() Row { return it }

func (it *countGroupIterator) Err() error { return it.err }

// Int32 returns the group key for the current group with no heap
// allocation: a literal key (direct/sparse-int addressing) is decoded
// straight from gr.Keys, and a row-index key reads the single
// representative row out of the original source column.
func (it *countGroupIterator) Int32(i int) (int32, bool) {
	if i != 0 {
		it.err = &colerr.OutOfRange{Index: i, Length: 1}
		return 0, false
	}
	ic, ok := it.keyCol.(*column.Int32Column)
	if !ok {
		it.err = &colerr.Unsupported{Op: "Stream", Msg: "group key column is not Int32"}
		return 0, false
	}
	if it.group >= it.gr.GroupCount {
		return 0, true
	}
	key := it.gr.Keys[it.group]
	if !it.gr.KeysAreRowIndices {
		return int32(key), false
	}
	row := int(key)
	return ic.Get(row), ic.IsNull(row)
}

// String returns the group key for the current group as a string,
// supporting the String/Category key columns.
func (it *countGroupIterator) String(i int) (string, bool) {
	if i != 0 {
		it.err = &colerr.OutOfRange{Index: i, Length: 1}
		return "", false
	}
	if it.group >= it.gr.GroupCount {
		return "", true
	}
	row := int(it.gr.Keys[it.group])
	switch c := it.keyCol.(type) {
	case *column.StringColumn:
		return c.Get(row), c.IsNull(row)
	case *column.CategoryColumn:
		s, _ := c.Get(row)
		return s, c.IsNull(row)
	default:
		it.err = &colerr.Unsupported{Op: "Stream", Msg: "group key column is not String/Category"}
		return "", false
	}
}

func (it *countGroupIterator) Count(i int) (int32, bool) {
	if i != 0 {
		it.err = &colerr.OutOfRange{Index: i, Length: 1}
		return 0, false
	}
	var rows []int
	if it.group < it.gr.GroupCount {
		start, end := it.gr.Window(it.group)
		rows = it.gr.RowIndices[start:end]
	} else {
		rows = it.gr.NullGroupIndices
	}
	return int32(len(rows)), false
}

// materializedIterator is the general fallback RowIterator: it
// materializes the full result Frame up front and walks it row by row.
type materializedIterator struct {
	frame *frame.Frame
	row   int
}

func (it *materializedIterator) Next() bool {
	it.row++
	return it.row < it.frame.RowCount()
}

func (it *materializedIterator) Row() Row { return it }

func (it *materializedIterator) Err() error { return nil }

func (it *materializedIterator) Int32(i int) (int32, bool) {
	c := it.frame.Column(i)
	ic, ok := c.(*column.Int32Column)
	if !ok {
		return 0, true
	}
	return ic.Get(it.row), ic.IsNull(it.row)
}

func (it *materializedIterator) Count(i int) (int32, bool) {
	return it.Int32(i)
}

func (it *materializedIterator) String(i int) (string, bool) {
	switch c := it.frame.Column(i).(type) {
	case *column.StringColumn:
		return c.Get(it.row), c.IsNull(it.row)
	case *column.CategoryColumn:
		s, _ := c.Get(it.row)
		return s, c.IsNull(it.row)
	default:
		return "", true
	}
}
