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

//go:build linux || darwin

package arena

import "golang.org/x/sys/unix"

// mapPages reserves n pages of anonymous, zeroed memory via mmap.
func mapPages(n int) ([]byte, error) {
	size := n * PageSize
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// unmapPages hints the kernel that buf is no longer needed and then
// unmaps it outright; each Arena chunk is mapped and unmapped
// independently, with no region kept reserved for reuse.
func unmapPages(buf []byte) {
	_ = unix.Madvise(buf, unix.MADV_FREE)
	_ = unix.Munmap(buf)
}
