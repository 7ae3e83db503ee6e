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

// Package xhash holds the hash primitives used by the group-by Swiss
// tables: a Murmur-style finalizer for int32 keys, FNV-1a for string
// keys, and xxhash for packed multi-column row keys.
package xhash

import (
	"hash/fnv"

	"github.com/cespare/xxhash/v2"
)

// Int32 applies a Murmur3-style 32-bit finalizer (fmix32) to v, used to
// seed the sparse integer Swiss table.
func Int32(v int32) uint32 {
	h := uint32(v)
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// String hashes b with FNV-1a, via the stdlib hash/fnv implementation.
func String(b []byte) uint32 {
	h := fnv.New32a()
	h.Write(b) //nolint:errcheck // hash.Hash32.Write never errors
	return h.Sum32()
}

// Prefix4 returns the first up-to-4 bytes of b as a little-endian uint32,
// zero-padded, used by the string Swiss table to short-circuit equality
// checks before a full byte comparison.
func Prefix4(b []byte) uint32 {
	var p uint32
	for i := 0; i < 4 && i < len(b); i++ {
		p |= uint32(b[i]) << (8 * i)
	}
	return p
}

// Bytes hashes an arbitrary byte slice (a packed multi-column row key)
// with xxhash.
func Bytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// Tag derives the Swiss-table metadata byte from the low 7 bits of a hash
// plus one: values in [1,128], with 0 reserved as the "empty slot" sentinel.
func Tag(h uint64) uint8 {
	return uint8(h&0x7f) + 1
}
