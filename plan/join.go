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
	"github.com/dwalterskoetter/leichtframe-sub001/colerr"
	"github.com/dwalterskoetter/leichtframe-sub001/column"
	"github.com/dwalterskoetter/leichtframe-sub001/frame"
)

// joinResult pairs a left row index with a right row index (or -1 for a
// Left-join row with no match), the intermediate shape evalJoin hands to
// the planner for column assembly.
type joinResult struct {
	left, right int
}

// evalJoin equi-joins left against right on the Key column.
// Unlike groupby's Swiss tables, which only assign a group id to a value
// seen during a single build pass, a join needs to look up a previously
// built key against each probe row, so this builds its own Go-native
// hash index over the right side rather than reusing groupby.
func evalJoin(left, right *frame.Frame, key string, kind JoinKind) ([]joinResult, error) {
	leftCol, err := left.ColumnNamed(key)
	if err != nil {
		return nil, err
	}
	rightCol, err := right.ColumnNamed(key)
	if err != nil {
		return nil, err
	}
	if leftCol.Kind() != rightCol.Kind() {
		return nil, &colerr.SchemaMismatch{Column: key, Msg: "join key columns have different kinds"}
	}

	index := make(map[any][]int, right.RowCount())
	for i := 0; i < right.RowCount(); i++ {
		if rightCol.IsNull(i) {
			continue
		}
		k := joinKeyAt(rightCol, i)
		index[k] = append(index[k], i)
	}

	var out []joinResult
	for i := 0; i < left.RowCount(); i++ {
		if leftCol.IsNull(i) {
			if kind == Left {
				out = append(out, joinResult{left: i, right: -1})
			}
			continue
		}
		matches, ok := index[joinKeyAt(leftCol, i)]
		if !ok {
			if kind == Left {
				out = append(out, joinResult{left: i, right: -1})
			}
			continue
		}
		// Cartesian-expand duplicate right keys.
		for _, r := range matches {
			out = append(out, joinResult{left: i, right: r})
		}
	}
	return out, nil
}

// joinKeyAt extracts a hashable, comparable Go value for row i of c, used
// as the hash join's map key.
func joinKeyAt(c column.Column, i int) any {
	switch typed := c.(type) {
	case *column.Int32Column:
		return typed.Get(i)
	case *column.Int64Column:
		return typed.Get(i)
	case *column.TimestampColumn:
		return typed.Get(i)
	case *column.StringColumn:
		return typed.Get(i)
	case *column.CategoryColumn:
		s, _ := typed.Get(i)
		return s
	case *column.Float64Column:
		return typed.Get(i)
	case *column.BoolColumn:
		return typed.Get(i)
	default:
		return nil
	}
}

// assembleJoin materializes the output Frame for results: every left
// column followed by every right column except the duplicated join key,
// nulling right-side values for unmatched Left-join rows.
func assembleJoin(left, right *frame.Frame, key string, results []joinResult) (*frame.Frame, error) {
	leftIdx := make([]int, len(results))
	rightIdx := make([]int, len(results))
	rightMiss := make([]bool, len(results))
	for i, r := range results {
		leftIdx[i] = r.left
		if r.right < 0 {
			rightMiss[i] = true
		} else {
			rightIdx[i] = r.right
		}
	}

	schema := make(frame.Schema, 0, left.NumColumns()+right.NumColumns())
	cols := make([]column.Column, 0, cap(schema))

	for i, f := range left.Schema() {
		schema = append(schema, frame.FieldSchema{Name: f.Name, Kind: f.Kind, Nullable: f.Nullable})
		cols = append(cols, left.Column(i).CloneSubsetAny(leftIdx))
	}

	for i, f := range right.Schema() {
		if f.Name == key {
			continue
		}
		nullable := f.Nullable || hasAnyMiss(rightMiss)
		schema = append(schema, frame.FieldSchema{Name: f.Name, Kind: f.Kind, Nullable: nullable})
		col := cloneRightColumn(right.Column(i), rightIdx, rightMiss, f, nullable)
		cols = append(cols, col)
	}

	return frame.New(schema, cols)
}

func hasAnyMiss(miss []bool) bool {
	for _, m := range miss {
		if m {
			return true
		}
	}
	return false
}

// cloneRightColumn builds the right-side output column for a join,
// substituting null for rows with no right match (Left join misses).
func cloneRightColumn(src column.Column, rightIdx []int, rightMiss []bool, f frame.FieldSchema, nullable bool) column.Column {
	if !hasAnyMiss(rightMiss) {
		return src.CloneSubsetAny(rightIdx)
	}
	switch typed := src.(type) {
	case *column.Int32Column:
		out := column.NewInt32Column(nullable, len(rightIdx))
		for i, row := range rightIdx {
			if rightMiss[i] {
				out.AppendNull() //nolint:errcheck
				continue
			}
			out.Append(typed.Get(row)) //nolint:errcheck
		}
		return out
	case *column.Int64Column:
		out := column.NewInt64Column(nullable, len(rightIdx))
		for i, row := range rightIdx {
			if rightMiss[i] {
				out.AppendNull() //nolint:errcheck
				continue
			}
			out.Append(typed.Get(row)) //nolint:errcheck
		}
		return out
	case *column.Float64Column:
		out := column.NewFloat64Column(nullable, len(rightIdx))
		for i, row := range rightIdx {
			if rightMiss[i] {
				out.AppendNull() //nolint:errcheck
				continue
			}
			out.Append(typed.Get(row)) //nolint:errcheck
		}
		return out
	case *column.BoolColumn:
		out := column.NewBoolColumn(nullable)
		for i, row := range rightIdx {
			if rightMiss[i] {
				out.AppendNull() //nolint:errcheck
				continue
			}
			out.Append(typed.Get(row)) //nolint:errcheck
		}
		return out
	case *column.TimestampColumn:
		out := column.NewTimestampColumn(nullable, len(rightIdx))
		for i, row := range rightIdx {
			if rightMiss[i] {
				out.AppendNull() //nolint:errcheck
				continue
			}
			out.Append(typed.Get(row)) //nolint:errcheck
		}
		return out
	case *column.StringColumn:
		out := column.NewStringColumn(nullable)
		for i, row := range rightIdx {
			if rightMiss[i] {
				out.AppendNull() //nolint:errcheck
				continue
			}
			out.Append(typed.Get(row)) //nolint:errcheck
		}
		return out
	case *column.CategoryColumn:
		out := column.NewCategoryColumn(nullable)
		for i, row := range rightIdx {
			if rightMiss[i] {
				out.AppendNull() //nolint:errcheck
				continue
			}
			s, _ := typed.Get(row)
			out.Append(s)
		}
		return out
	default:
		return src.CloneSubsetAny(rightIdx)
	}
}
