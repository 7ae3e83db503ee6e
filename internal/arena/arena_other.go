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

//go:build !linux && !darwin

package arena

// mapPages falls back to a plain Go-heap allocation on platforms without
// a wired mmap syscall path (e.g. windows, wasm). The Arena bookkeeping
// (bitmap, chunk tracking, OutOfMemory once MaxPages is hit) is
// identical; only the source of the backing memory changes.
func mapPages(n int) ([]byte, error) {
	return make([]byte, n*PageSize), nil
}

func unmapPages(buf []byte) {
	// nothing to do; the GC reclaims it once the Arena drops the reference.
}
