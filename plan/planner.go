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

	"github.com/dwalterskoetter/leichtframe-sub001/agg"
	"github.com/dwalterskoetter/leichtframe-sub001/colerr"
	"github.com/dwalterskoetter/leichtframe-sub001/column"
	"github.com/dwalterskoetter/leichtframe-sub001/config"
	"github.com/dwalterskoetter/leichtframe-sub001/expr"
	"github.com/dwalterskoetter/leichtframe-sub001/frame"
	"github.com/dwalterskoetter/leichtframe-sub001/groupby"
	"github.com/dwalterskoetter/leichtframe-sub001/logging"
)

// Collect executes l's plan tree bottom-up against cfg and materializes
// the result as a Frame. Passing no config uses
// config.DefaultEngine(). Each call is tagged with a correlation id
// logged at start and completion.
func (l LazyFrame) Collect(cfg ...config.Engine) (*frame.Frame, error) {
	return l.CollectContext(context.Background(), cfg...)
}

// CollectContext is Collect with caller-controlled cancellation. The
// context is checked between (not within) kernel invocations: a kernel
// that has started always runs to completion.
func (l LazyFrame) CollectContext(ctx context.Context, cfg ...config.Engine) (*frame.Frame, error) {
	c := config.DefaultEngine()
	if len(cfg) > 0 {
		c = cfg[0]
	}
	id := uuid.New().String()
	logging.Default().Log(logging.Debug, "plan.Collect start", "correlation_id", id)
	f, err := materialize(ctx, l.op, c)
	if err != nil {
		logging.Default().Log(logging.Warn, "plan.Collect failed", "correlation_id", id, "error", err)
		return nil, err
	}
	logging.Default().Log(logging.Debug, "plan.Collect done", "correlation_id", id, "rows", f.RowCount())
	return f, nil
}

func materialize(ctx context.Context, op Op, cfg config.Engine) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch n := op.(type) {
	case *ScanOp:
		return n.Frame, nil
	case *FilterOp:
		return materializeFilter(ctx, n, cfg)
	case *ProjectOp:
		return materializeProject(ctx, n, cfg)
	case *JoinOp:
		return materializeJoin(ctx, n, cfg)
	case *AggregateOp:
		return materializeAggregate(ctx, n, cfg)
	case *OrderByOp:
		return materializeOrderBy(ctx, n, cfg)
	default:
		return nil, &colerr.InvalidPlan{Msg: "unknown plan node"}
	}
}

func materializeFilter(ctx context.Context, n *FilterOp, cfg config.Engine) (*frame.Frame, error) {
	in, err := materialize(ctx, n.From, cfg)
	if err != nil {
		return nil, err
	}
	rows, err := evalFilter(in, n.Predicate)
	if err != nil {
		return nil, err
	}
	cols := make([]column.Column, in.NumColumns())
	for i := 0; i < in.NumColumns(); i++ {
		cols[i] = in.Column(i).CloneSubsetAny(rows)
	}
	return frame.WithColumns(in.Schema(), cols)
}

func materializeProject(ctx context.Context, n *ProjectOp, cfg config.Engine) (*frame.Frame, error) {
	in, err := materialize(ctx, n.From, cfg)
	if err != nil {
		return nil, err
	}
	schema := make(frame.Schema, len(n.Exprs))
	cols := make([]column.Column, len(n.Exprs))
	for i, e := range n.Exprs {
		c, err := evalProjectExpr(in, e)
		if err != nil {
			return nil, err
		}
		cols[i] = c
		schema[i] = frame.FieldSchema{Name: outputName(e), Kind: c.Kind(), Nullable: c.Nullable()}
	}
	return frame.WithColumns(schema, cols)
}

func materializeJoin(ctx context.Context, n *JoinOp, cfg config.Engine) (*frame.Frame, error) {
	left, err := materialize(ctx, n.From, cfg)
	if err != nil {
		return nil, err
	}
	right, err := materialize(ctx, n.Right, cfg)
	if err != nil {
		return nil, err
	}
	results, err := evalJoin(left, right, n.Key, n.Kind)
	if err != nil {
		return nil, err
	}
	return assembleJoin(left, right, n.Key, results)
}

func materializeAggregate(ctx context.Context, n *AggregateOp, cfg config.Engine) (*frame.Frame, error) {
	in, err := materialize(ctx, n.From, cfg)
	if err != nil {
		return nil, err
	}

	keyCols := make([]column.Column, len(n.GroupExprs))
	keyNames := make([]string, len(n.GroupExprs))
	for i, e := range n.GroupExprs {
		c, ok := e.(expr.Col)
		if !ok {
			return nil, &colerr.InvalidPlan{Msg: "Aggregate group expressions must be plain column references"}
		}
		col, err := in.ColumnNamed(c.Name)
		if err != nil {
			return nil, err
		}
		keyCols[i] = col
		keyNames[i] = c.Name
	}

	gr, _ := groupby.Dispatch(keyCols, in.RowCount(), cfg)
	defer gr.Release()
	if in.RowCount() >= cfg.ParallelThreshold {
		// large CSR payloads move off the Go heap; a failed move aborts
		// the plan with OutOfMemory, leaving inputs untouched.
		if err := gr.MoveToArena(groupby.DefaultArena()); err != nil {
			return nil, err
		}
	}

	defs := make([]agg.Definition, len(n.AggExprs))
	for i, e := range n.AggExprs {
		def, err := resolveAggDef(in, e)
		if err != nil {
			return nil, err
		}
		defs[i] = def
	}
	aggCols, err := agg.Run(gr, defs)
	if err != nil {
		return nil, err
	}

	schema := make(frame.Schema, 0, len(keyCols)+len(defs))
	cols := make([]column.Column, 0, cap(schema))
	for i, kc := range keyCols {
		outCol, err := buildGroupKeyColumn(gr, kc)
		if err != nil {
			return nil, err
		}
		schema = append(schema, frame.FieldSchema{Name: keyNames[i], Kind: outCol.Kind(), Nullable: outCol.Nullable()})
		cols = append(cols, outCol)
	}
	for i, d := range defs {
		schema = append(schema, frame.FieldSchema{Name: d.Output, Kind: aggCols[i].Kind(), Nullable: aggCols[i].Nullable()})
		cols = append(cols, aggCols[i])
	}
	return frame.WithColumns(schema, cols)
}

func resolveAggDef(f *frame.Frame, e expr.Node) (agg.Definition, error) {
	name := outputName(e)
	inner := e
	if a, ok := e.(*expr.Alias); ok {
		inner = a.Child
	}
	aggExpr, ok := inner.(*expr.Agg)
	if !ok {
		return agg.Definition{}, &colerr.InvalidPlan{Msg: "Aggregate aggregation expressions must be Agg nodes"}
	}
	col, ok := aggExpr.Child.(expr.Col)
	if !ok {
		return agg.Definition{}, &colerr.InvalidPlan{Msg: "Agg child must be a plain column reference"}
	}
	src, err := f.ColumnNamed(col.Name)
	if err != nil {
		return agg.Definition{}, err
	}
	return agg.Definition{Source: src, Op: aggOpOf(aggExpr.Op), Output: name}, nil
}

func aggOpOf(op expr.AggOp) agg.Op {
	switch op {
	case expr.AggSum:
		return agg.Sum
	case expr.AggMean:
		return agg.Mean
	case expr.AggMin:
		return agg.Min
	case expr.AggMax:
		return agg.Max
	default:
		return agg.Count
	}
}

func materializeOrderBy(ctx context.Context, n *OrderByOp, cfg config.Engine) (*frame.Frame, error) {
	in, err := materialize(ctx, n.From, cfg)
	if err != nil {
		return nil, err
	}
	rows, err := evalOrderBy(in, n.Keys, n.Ascending)
	if err != nil {
		return nil, err
	}
	cols := make([]column.Column, in.NumColumns())
	for i := 0; i < in.NumColumns(); i++ {
		cols[i] = in.Column(i).CloneSubsetAny(rows)
	}
	return frame.WithColumns(in.Schema(), cols)
}
