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
	"github.com/dwalterskoetter/leichtframe-sub001/groupby"
)

// buildGroupKeyColumn reconstructs the output key column for one
// GroupExprs entry: one value per group (gr.GroupCount rows), plus a
// trailing null row if gr had a null group.
func buildGroupKeyColumn(gr *groupby.GroupResult, keyCol column.Column) (column.Column, error) {
	n := gr.GroupCount
	hasNull := len(gr.NullGroupIndices) > 0
	total := n
	if hasNull {
		total++
	}

	if !gr.KeysAreRowIndices {
		if _, ok := keyCol.(*column.Int32Column); !ok {
			return nil, &colerr.Unsupported{Op: "Aggregate", Msg: "literal group keys are only produced for Int32 columns"}
		}
		out := column.NewInt32Column(hasNull, total)
		for i := 0; i < n; i++ {
			out.Append(int32(gr.Keys[i])) //nolint:errcheck
		}
		if hasNull {
			out.AppendNull() //nolint:errcheck
		}
		return out, nil
	}

	switch typed := keyCol.(type) {
	case *column.Int32Column:
		out := column.NewInt32Column(hasNull, total)
		for i := 0; i < n; i++ {
			out.Append(typed.Get(int(gr.Keys[i]))) //nolint:errcheck
		}
		if hasNull {
			out.AppendNull() //nolint:errcheck
		}
		return out, nil
	case *column.Int64Column:
		out := column.NewInt64Column(hasNull, total)
		for i := 0; i < n; i++ {
			out.Append(typed.Get(int(gr.Keys[i]))) //nolint:errcheck
		}
		if hasNull {
			out.AppendNull() //nolint:errcheck
		}
		return out, nil
	case *column.Float64Column:
		out := column.NewFloat64Column(hasNull, total)
		for i := 0; i < n; i++ {
			out.Append(typed.Get(int(gr.Keys[i]))) //nolint:errcheck
		}
		if hasNull {
			out.AppendNull() //nolint:errcheck
		}
		return out, nil
	case *column.TimestampColumn:
		out := column.NewTimestampColumn(hasNull, total)
		for i := 0; i < n; i++ {
			out.Append(typed.Get(int(gr.Keys[i]))) //nolint:errcheck
		}
		if hasNull {
			out.AppendNull() //nolint:errcheck
		}
		return out, nil
	case *column.BoolColumn:
		out := column.NewBoolColumn(hasNull)
		for i := 0; i < n; i++ {
			out.Append(typed.Get(int(gr.Keys[i]))) //nolint:errcheck
		}
		if hasNull {
			out.AppendNull() //nolint:errcheck
		}
		return out, nil
	case *column.StringColumn:
		out := column.NewStringColumn(hasNull)
		for i := 0; i < n; i++ {
			out.Append(typed.Get(int(gr.Keys[i]))) //nolint:errcheck
		}
		if hasNull {
			out.AppendNull() //nolint:errcheck
		}
		return out, nil
	case *column.CategoryColumn:
		out := column.NewCategoryColumn(hasNull)
		for i := 0; i < n; i++ {
			s, _ := typed.Get(int(gr.Keys[i]))
			out.Append(s)
		}
		if hasNull {
			if err := out.AppendNull(); err != nil {
				return nil, err
			}
		}
		return out, nil
	default:
		return nil, &colerr.Unsupported{Op: "Aggregate", Msg: "unsupported group key column kind"}
	}
}
