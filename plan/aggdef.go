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

import "github.com/dwalterskoetter/leichtframe-sub001/expr"

// AggSum, AggMean, AggMin, AggMax and AggCount are the aggregation
// definition constructors: each wraps an expr.Agg in an
// expr.Alias carrying either the supplied alias or a default name derived
// from the operator and source column.
func aggNode(op expr.AggOp, col, defaultPrefix string, alias []string) expr.Node {
	name := defaultPrefix + "_" + col
	if len(alias) > 0 && alias[0] != "" {
		name = alias[0]
	}
	return expr.As(&expr.Agg{Op: op, Child: expr.Col{Name: col}}, name)
}

// AggSum builds a Sum(col) aggregation definition, output named alias if
// given, else "sum_<col>".
func AggSum(col string, alias ...string) expr.Node { return aggNode(expr.AggSum, col, "sum", alias) }

// AggMean builds a Mean(col) aggregation definition.
func AggMean(col string, alias ...string) expr.Node { return aggNode(expr.AggMean, col, "mean", alias) }

// AggMin builds a Min(col) aggregation definition.
func AggMin(col string, alias ...string) expr.Node { return aggNode(expr.AggMin, col, "min", alias) }

// AggMax builds a Max(col) aggregation definition.
func AggMax(col string, alias ...string) expr.Node { return aggNode(expr.AggMax, col, "max", alias) }

// AggCount builds a Count() aggregation definition. Count does not read
// its child's values, but still requires a column name to
// anchor the default output alias ("count") and to satisfy the uniform
// Agg{Op,Child} shape; pass any column present in the input frame.
func AggCount(col string, alias ...string) expr.Node {
	name := "count"
	if len(alias) > 0 && alias[0] != "" {
		name = alias[0]
	}
	return expr.As(&expr.Agg{Op: expr.AggCount, Child: expr.Col{Name: col}}, name)
}
