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
	"github.com/dwalterskoetter/leichtframe-sub001/config"
	"github.com/dwalterskoetter/leichtframe-sub001/logging"
)

// Strategy names the dispatch decision Dispatch made, exposed for logging
// and tests rather than for behavioral branching by callers.
type Strategy string

const (
	StrategyDirect      Strategy = "direct"
	StrategySparseInt   Strategy = "sparse_int"
	StrategyString      Strategy = "string"
	StrategyCategory    Strategy = "category"
	StrategyRowPack     Strategy = "row_pack"
	StrategyPartitioned Strategy = "partitioned_parallel"
)

// Dispatch selects and runs the appropriate grouping strategy for a set
// of key columns: a single Int32 key tries direct addressing
// first, then -- for large null-free inputs -- the partitioned-parallel
// path, else the sparse integer Swiss table; a single String key tries
// the category pre-pass before the (possibly partitioned) string Swiss
// table; a single Category key groups its dictionary codes directly; more
// than one key column always uses the row-packed Swiss table. The
// partitioned-parallel path applies only to the single-key sparse-int and
// string paths, and only when the key column has no nulls, since its
// per-partition tables have no null side channel to merge.
func Dispatch(cols []column.Column, n int, cfg config.Engine) (*GroupResult, Strategy) {
	gr, strat := dispatch(cols, n, cfg)
	logging.Default().Log(logging.Debug, "groupby dispatch",
		"strategy", string(strat), "rows", n, "groups", gr.GroupCount, "key_columns", len(cols))
	return gr, strat
}

func dispatch(cols []column.Column, n int, cfg config.Engine) (*GroupResult, Strategy) {
	if len(cols) == 1 {
		switch c := cols[0].(type) {
		case *column.Int32Column:
			if DenseRangeFits(c, cfg.DenseRangeFactor) {
				return DirectAddress(c), StrategyDirect
			}
			if n >= cfg.PartitionedParallelTrigger && !c.Mask().AnyNull() {
				return PartitionedParallel(c, cfg.PartitionCount(n)), StrategyPartitioned
			}
			return SparseIntTable(c), StrategySparseInt
		case *column.StringColumn:
			codes, cardinality, ok := CategoryPrepass(c, cfg.CatCardinalityCap, cfg.ParallelThreshold)
			if ok {
				return CategoryTable(codes, cardinality), StrategyCategory
			}
			if n >= cfg.PartitionedParallelTrigger && !c.Mask().AnyNull() {
				return PartitionedParallelString(c, cfg.PartitionCount(n)), StrategyPartitioned
			}
			return StringTable(c), StrategyString
		case *column.CategoryColumn:
			return CategoryColumnGroups(c), StrategyCategory
		}
	}
	return RowPackTable(cols, n), StrategyRowPack
}
