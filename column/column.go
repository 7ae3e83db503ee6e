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

// Package column implements the typed, contiguous columnar buffers that
// back every Frame: Int32, Float64, Bool, Timestamp, String and Category.
// Every column kind tracks nullability in a NullMask rather than using a
// sentinel value, so NaN (Float64) remains a legitimate, non-null value.
package column

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/dwalterskoetter/leichtframe-sub001/colerr"
)

// Kind identifies the concrete storage and semantics of a Column.
type Kind int

const (
	Int32Kind Kind = iota
	Int64Kind
	Float64Kind
	BoolKind
	TimestampKind
	StringKind
	CategoryKind
)

func (k Kind) String() string {
	switch k {
	case Int32Kind:
		return "Int32"
	case Int64Kind:
		return "Int64"
	case Float64Kind:
		return "Float64"
	case BoolKind:
		return "Bool"
	case TimestampKind:
		return "Timestamp"
	case StringKind:
		return "String"
	case CategoryKind:
		return "Category"
	default:
		return "Unknown"
	}
}

// Column is the type-erased handle every column kind satisfies, used by
// frame.Frame's column registry and anywhere row counts/nullability need
// to be inspected without switching on the concrete type.
type Column interface {
	Kind() Kind
	Len() int
	IsNull(i int) bool
	Nullable() bool
	// CloneSubsetAny produces a materialized copy of this column selecting
	// row indices; see the typed CloneSubset methods for a non-erased
	// return value. It exists so generic code (e.g. plan.OrderBy/Join) can
	// operate over a slice of heterogeneous Column without a type switch
	// at every call site.
	CloneSubsetAny(indices []int) Column
}

// NullMask tracks, for a column of a given length, which rows are null.
// It is backed by a roaring bitmap rather than a hand-rolled []uint64:
// real tabular data is frequently either entirely non-null or sparsely
// null, and roaring collapses both cases to compact run/array containers
// instead of paying for a dense scan on every IsNull check.
type NullMask struct {
	bits   *roaring.Bitmap
	length int
}

// NewNullMask returns a mask for n rows, all initially non-null.
func NewNullMask(n int) *NullMask {
	return &NullMask{bits: roaring.New(), length: n}
}

// Len reports the number of rows this mask covers.
func (m *NullMask) Len() int { return m.length }

// IsNull reports whether row i is null.
func (m *NullMask) IsNull(i int) bool {
	return m.bits.Contains(uint32(i))
}

// SetNull marks row i as null.
func (m *NullMask) SetNull(i int) {
	m.bits.Add(uint32(i))
}

// ClearNull marks row i as non-null.
func (m *NullMask) ClearNull(i int) {
	m.bits.Remove(uint32(i))
}

// Append grows the mask by one row, optionally null.
func (m *NullMask) Append(null bool) {
	if null {
		m.bits.Add(uint32(m.length))
	}
	m.length++
}

// AnyNull reports whether any row in the mask is null, used by the
// aggregation fast path to skip bitmap checks entirely for dense data.
func (m *NullMask) AnyNull() bool {
	return !m.bits.IsEmpty()
}

// Count returns how many rows are null.
func (m *NullMask) Count() int {
	return int(m.bits.GetCardinality())
}

// CloneSubset produces a mask of len(indices) rows, where output row i is
// null iff input row indices[i] was null.
func (m *NullMask) CloneSubset(indices []int) *NullMask {
	out := NewNullMask(len(indices))
	for i, src := range indices {
		if m.IsNull(src) {
			out.SetNull(i)
		}
	}
	return out
}

// checkIndex is a shared bounds helper used by every column kind's Get/Set.
func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return &colerr.OutOfRange{Index: i, Length: n}
	}
	return nil
}

// checkSlice is a shared bounds helper for Slice(start, len) windows.
func checkSlice(start, length, n int) error {
	if start < 0 || length < 0 || start+length > n {
		return &colerr.OutOfRange{Msg: "slice window out of range"}
	}
	return nil
}
