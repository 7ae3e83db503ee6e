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

// Package arena implements a pool of unmanaged, page-granular buffers
// used by native-owned group results (see groupby.GroupResult.Native):
// mmap-backed chunks, a bitmap tracking which chunks are checked out,
// and an explicit Release path instead of relying on GC. The arena grows
// on demand in page-count chunks; nothing here needs absolute
// addressing, only a way to keep large CSR buffers off the Go heap.
package arena

import (
	"math/bits"
	"sync"

	"github.com/dwalterskoetter/leichtframe-sub001/colerr"
)

// PageSize is the allocation granularity.
const PageSize = 1 << 20

// MaxPages bounds how large a single Arena may grow, guarding against a
// runaway caller exhausting host memory; OutOfMemory is returned once hit.
const MaxPages = 1 << 14 // 16GiB worth of pages

// Arena is a pool of page-granular byte buffers. It is not owned by the
// Go garbage collector: callers must call Release on every buffer returned
// by Alloc, and Close the Arena once no more allocations will be made.
//
// An Arena is safe for concurrent use.
type Arena struct {
	mu     sync.Mutex
	pages  [][]byte // backing storage, one slice per mapped chunk of pages
	inUse  []uint64 // bitmap, one bit per page across all chunks
	npages int
	closed bool
}

// New returns an empty Arena.
func New() *Arena {
	return &Arena{}
}

// Alloc returns a zeroed buffer of exactly n bytes, rounded up internally
// to whole pages. The returned slice must be passed to Release (not simply
// dropped) once the caller is done with it.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	pagesNeeded := (n + PageSize - 1) / PageSize

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, &colerr.OutOfMemory{Requested: n}
	}

	// contiguous allocations only ever request one logical buffer, so we
	// map one fresh chunk per request rather than hunting for a
	// contiguous run across existing chunks -- this keeps Alloc O(1)
	// instead of O(pages), at the cost of some internal fragmentation
	// for odd sizes.
	if a.npages+pagesNeeded > MaxPages {
		return nil, &colerr.OutOfMemory{Requested: n}
	}
	buf, err := mapPages(pagesNeeded)
	if err != nil {
		return nil, &colerr.OutOfMemory{Requested: n}
	}
	a.pages = append(a.pages, buf)
	a.npages += pagesNeeded
	a.growBitmap()
	a.markUsed(len(a.pages)-1, pagesNeeded)
	return buf[:n:n], nil
}

func (a *Arena) growBitmap() {
	need := (a.npages + 63) / 64
	for len(a.inUse) < need {
		a.inUse = append(a.inUse, 0)
	}
}

func (a *Arena) markUsed(chunkIdx, pagesNeeded int) {
	// chunk index doubles as a coarse "slot" id for bookkeeping; the
	// bitmap here tracks chunk occupancy (used/free), not byte-level
	// detail, since Release always frees an entire chunk at once.
	bit := uint(chunkIdx)
	word, off := bit/64, bit%64
	a.inUse[word] |= 1 << off
}

func (a *Arena) clearUsed(chunkIdx int) {
	bit := uint(chunkIdx)
	word, off := bit/64, bit%64
	a.inUse[word] &^= 1 << off
}

// Release returns buf to the arena. buf must be a slice previously
// returned by Alloc on this Arena (the exact, un-reindexed slice header).
func (a *Arena) Release(buf []byte) {
	if buf == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, chunk := range a.pages {
		if len(chunk) > 0 && &chunk[0] == &buf[:1][0] {
			a.clearUsed(i)
			unmapPages(chunk)
			a.pages[i] = nil
			return
		}
	}
}

// PagesUsed reports how many chunks are currently checked out, for
// diagnostics and leak checks in tests.
func (a *Arena) PagesUsed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, w := range a.inUse {
		n += bits.OnesCount64(w)
	}
	return n
}

// Close releases every chunk still outstanding and marks the arena unusable.
func (a *Arena) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, chunk := range a.pages {
		if chunk != nil {
			unmapPages(chunk)
			a.pages[i] = nil
		}
	}
	a.closed = true
}
