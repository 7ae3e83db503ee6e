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

package frame

import (
	"github.com/dwalterskoetter/leichtframe-sub001/colerr"
	"github.com/dwalterskoetter/leichtframe-sub001/column"
)

// Builder is the fluent, column-wise frame construction surface; it
// pre-allocates one typed column per schema field and exposes per-field
// Append methods.
type Builder struct {
	schema  Schema
	columns []column.Column
	err     error
}

// NewFrameBuilder allocates a Builder for schema, sizing each column's
// initial capacity to rowCapacity.
func NewFrameBuilder(schema Schema, rowCapacity int) *Builder {
	b := &Builder{schema: append(Schema(nil), schema...)}
	b.columns = make([]column.Column, len(schema))
	for i, f := range schema {
		switch f.Kind {
		case column.Int32Kind:
			b.columns[i] = column.NewInt32Column(f.Nullable, rowCapacity)
		case column.Int64Kind:
			b.columns[i] = column.NewInt64Column(f.Nullable, rowCapacity)
		case column.Float64Kind:
			b.columns[i] = column.NewFloat64Column(f.Nullable, rowCapacity)
		case column.BoolKind:
			b.columns[i] = column.NewBoolColumn(f.Nullable)
		case column.TimestampKind:
			b.columns[i] = column.NewTimestampColumn(f.Nullable, rowCapacity)
		case column.StringKind:
			b.columns[i] = column.NewStringColumn(f.Nullable)
		case column.CategoryKind:
			b.columns[i] = column.NewCategoryColumn(f.Nullable)
		}
	}
	return b
}

// fieldIndex resolves name to a position, recording a sticky error (read
// by Build) if the name does not exist, so call sites can chain appends
// without checking every call.
func (b *Builder) fieldIndex(name string) int {
	i := b.schema.IndexOf(name)
	if i < 0 && b.err == nil {
		b.err = &colerr.SchemaMismatch{Column: name, Msg: "column not found in builder schema"}
	}
	return i
}

// AppendInt32 appends v to the named Int32 column.
func (b *Builder) AppendInt32(name string, v int32) *Builder {
	i := b.fieldIndex(name)
	if i < 0 {
		return b
	}
	c, ok := b.columns[i].(*column.Int32Column)
	if !ok {
		b.err = &colerr.SchemaMismatch{Column: name, Msg: "not an Int32 column"}
		return b
	}
	if err := c.Append(v); err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// AppendFloat64 appends v to the named Float64 column.
func (b *Builder) AppendFloat64(name string, v float64) *Builder {
	i := b.fieldIndex(name)
	if i < 0 {
		return b
	}
	c, ok := b.columns[i].(*column.Float64Column)
	if !ok {
		b.err = &colerr.SchemaMismatch{Column: name, Msg: "not a Float64 column"}
		return b
	}
	if err := c.Append(v); err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// AppendString appends v to the named String or Category column.
func (b *Builder) AppendString(name string, v string) *Builder {
	i := b.fieldIndex(name)
	if i < 0 {
		return b
	}
	switch c := b.columns[i].(type) {
	case *column.StringColumn:
		if err := c.Append(v); err != nil && b.err == nil {
			b.err = err
		}
	case *column.CategoryColumn:
		c.Append(v)
	default:
		b.err = &colerr.SchemaMismatch{Column: name, Msg: "not a String or Category column"}
	}
	return b
}

// AppendBool appends v to the named Bool column.
func (b *Builder) AppendBool(name string, v bool) *Builder {
	i := b.fieldIndex(name)
	if i < 0 {
		return b
	}
	c, ok := b.columns[i].(*column.BoolColumn)
	if !ok {
		b.err = &colerr.SchemaMismatch{Column: name, Msg: "not a Bool column"}
		return b
	}
	if err := c.Append(v); err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// AppendTimestamp appends ticks to the named Timestamp column.
func (b *Builder) AppendTimestamp(name string, ticks int64) *Builder {
	i := b.fieldIndex(name)
	if i < 0 {
		return b
	}
	c, ok := b.columns[i].(*column.TimestampColumn)
	if !ok {
		b.err = &colerr.SchemaMismatch{Column: name, Msg: "not a Timestamp column"}
		return b
	}
	if err := c.Append(ticks); err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// AppendInt64 appends v to the named Int64 column (the widened Sum
// output kind; no ingestion path produces Int64 source columns, but
// FrameFromRecords supports it for completeness).
func (b *Builder) AppendInt64(name string, v int64) *Builder {
	i := b.fieldIndex(name)
	if i < 0 {
		return b
	}
	c, ok := b.columns[i].(*column.Int64Column)
	if !ok {
		b.err = &colerr.SchemaMismatch{Column: name, Msg: "not an Int64 column"}
		return b
	}
	if err := c.Append(v); err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// AppendNull appends a null to the named column, regardless of kind.
func (b *Builder) AppendNull(name string) *Builder {
	i := b.fieldIndex(name)
	if i < 0 {
		return b
	}
	var err error
	switch c := b.columns[i].(type) {
	case *column.Int32Column:
		err = c.AppendNull()
	case *column.Int64Column:
		err = c.AppendNull()
	case *column.Float64Column:
		err = c.AppendNull()
	case *column.BoolColumn:
		err = c.AppendNull()
	case *column.TimestampColumn:
		err = c.AppendNull()
	case *column.StringColumn:
		err = c.AppendNull()
	case *column.CategoryColumn:
		err = c.AppendNull()
	}
	if err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// Build finalizes the Builder into a Frame, returning the first error
// recorded by any Append call, if any.
func (b *Builder) Build() (*Frame, error) {
	if b.err != nil {
		return nil, b.err
	}
	return New(b.schema, b.columns)
}

// Record is a single row of named scalar values, consumed by
// FrameFromRecords. Values follow the same dynamic typing as Lit: int32,
// int64, float64, string, bool, int64-as-ticks for Timestamp, or nil.
type Record map[string]any

// FrameFromRecords is a row-oriented convenience constructor, off the
// hot ingestion path: it builds a Frame from a slice of Records against
// an explicit schema, one column-wise Append per row.
func FrameFromRecords(schema Schema, rows []Record) (*Frame, error) {
	b := NewFrameBuilder(schema, len(rows))
	for _, row := range rows {
		for _, f := range schema {
			v, present := row[f.Name]
			if !present || v == nil {
				b.AppendNull(f.Name)
				continue
			}
			switch f.Kind {
			case column.Int32Kind:
				b.AppendInt32(f.Name, toInt32(v))
			case column.Int64Kind:
				b.AppendInt64(f.Name, toInt64(v))
			case column.TimestampKind:
				b.AppendTimestamp(f.Name, toInt64(v))
			case column.Float64Kind:
				b.AppendFloat64(f.Name, toFloat64(v))
			case column.BoolKind:
				b.AppendBool(f.Name, v.(bool))
			case column.StringKind, column.CategoryKind:
				b.AppendString(f.Name, v.(string))
			}
		}
	}
	return b.Build()
}

func toInt32(v any) int32 {
	switch x := v.(type) {
	case int32:
		return x
	case int:
		return int32(x)
	case int64:
		return int32(x)
	default:
		return 0
	}
}

func toInt64(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int32:
		return int64(x)
	case int:
		return int64(x)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	default:
		return 0
	}
}
