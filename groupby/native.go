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
	"unsafe"

	"github.com/dwalterskoetter/leichtframe-sub001/internal/arena"
)

// defaultArena backs every native-owned GroupResult produced through the
// planner. One shared pool (rather than one Arena per result) keeps the
// mmap churn bounded.
var defaultArena = arena.New()

// DefaultArena returns the process-wide arena used for native-owned CSR
// buffers.
func DefaultArena() *arena.Arena { return defaultArena }

const intSize = int(unsafe.Sizeof(int(0)))

// MoveToArena re-homes Offsets and RowIndices into a, making g
// native-owned: the buffers leave the Go heap and must be returned via
// Release. Ownership of g then transfers to whichever aggregator
// consumes it. Calling MoveToArena on an already-native result is a
// no-op; an allocation failure leaves g untouched on its original heap
// buffers and returns OutOfMemory.
func (g *GroupResult) MoveToArena(a *arena.Arena) error {
	if a == nil || g.arena != nil {
		return nil
	}
	offBuf, err := a.Alloc(len(g.Offsets) * intSize)
	if err != nil {
		return err
	}
	rowBuf, err := a.Alloc(len(g.RowIndices) * intSize)
	if err != nil {
		a.Release(offBuf)
		return err
	}
	if offBuf != nil {
		off := unsafe.Slice((*int)(unsafe.Pointer(&offBuf[0])), len(g.Offsets))
		copy(off, g.Offsets)
		g.Offsets = off
	}
	if rowBuf != nil {
		rows := unsafe.Slice((*int)(unsafe.Pointer(&rowBuf[0])), len(g.RowIndices))
		copy(rows, g.RowIndices)
		g.RowIndices = rows
	}
	g.arena = a
	g.arenaOffBuf = offBuf
	g.arenaRowBuf = rowBuf
	return nil
}

// Native reports whether this result's CSR buffers are arena-owned.
func (g *GroupResult) Native() bool { return g.arena != nil }
