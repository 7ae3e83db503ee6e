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

// Package frame implements the public Frame/Schema surface: an ordered,
// name-unique column registry plus a fluent Builder. Everything resolves
// against an explicit schema; nothing reflects over Go values at
// runtime.
package frame

import (
	"github.com/dwalterskoetter/leichtframe-sub001/colerr"
	"github.com/dwalterskoetter/leichtframe-sub001/column"
)

// FieldSchema is one (name, kind, nullable) triple in a Frame's Schema.
type FieldSchema struct {
	Name     string
	Kind     column.Kind
	Nullable bool
}

// Schema is an ordered, name-unique sequence of field descriptions.
type Schema []FieldSchema

// IndexOf returns the position of name in the schema, or -1.
func (s Schema) IndexOf(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Frame holds an ordered sequence of named Columns all sharing one row
// count. Columns are addressable by name (unique) or position.
type Frame struct {
	schema  Schema
	columns []column.Column
	rows    int
}

// New constructs a Frame directly from parallel schema/columns slices,
// validating name-uniqueness and that every column's length matches.
// This is the primitive constructor that Builder.Build and every plan
// operator's output funnels through.
func New(schema Schema, columns []column.Column) (*Frame, error) {
	if len(schema) != len(columns) {
		return nil, &colerr.SchemaMismatch{Msg: "schema/column count mismatch"}
	}
	seen := make(map[string]bool, len(schema))
	rows := 0
	for i, f := range schema {
		if seen[f.Name] {
			return nil, &colerr.SchemaMismatch{Column: f.Name, Msg: "duplicate column name"}
		}
		seen[f.Name] = true
		if columns[i].Kind() != f.Kind {
			return nil, &colerr.SchemaMismatch{Column: f.Name, Msg: "column kind does not match schema"}
		}
		if i == 0 {
			rows = columns[i].Len()
		} else if columns[i].Len() != rows {
			return nil, &colerr.SchemaMismatch{Column: f.Name, Msg: "column length does not match frame row count"}
		}
	}
	return &Frame{schema: append(Schema(nil), schema...), columns: append([]column.Column(nil), columns...), rows: rows}, nil
}

// Schema returns the frame's schema.
func (f *Frame) Schema() Schema { return f.schema }

// RowCount returns the number of rows every column in the frame shares.
func (f *Frame) RowCount() int { return f.rows }

// NumColumns returns the column count.
func (f *Frame) NumColumns() int { return len(f.columns) }

// Column returns the column at position i.
func (f *Frame) Column(i int) column.Column { return f.columns[i] }

// ColumnNamed returns the column named name, or SchemaMismatch if absent.
func (f *Frame) ColumnNamed(name string) (column.Column, error) {
	i := f.schema.IndexOf(name)
	if i < 0 {
		return nil, &colerr.SchemaMismatch{Column: name, Msg: "column not found"}
	}
	return f.columns[i], nil
}

// ColumnNames returns the ordered list of column names.
func (f *Frame) ColumnNames() []string {
	out := make([]string, len(f.schema))
	for i, s := range f.schema {
		out[i] = s.Name
	}
	return out
}

// WithColumns returns a new Frame with the same row count but a
// different set of columns, used by Project/Aggregate/OrderBy/Join to
// assemble their output without mutating the source frame.
func WithColumns(schema Schema, columns []column.Column) (*Frame, error) {
	return New(schema, columns)
}
