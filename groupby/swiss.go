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

import "github.com/dwalterskoetter/leichtframe-sub001/internal/xhash"

// swissMeta is the open-addressing probe core shared by the sparse
// integer, string and row-pack Swiss tables: one 7-bit tag byte per slot
// (0 is the empty sentinel), slots probed in groups of 32. Key storage
// and equality are left to the caller (each concrete table keeps its own
// parallel key/value arrays), since the three Swiss tables store
// differently-shaped keys.
//
// Real Swiss tables compare a whole group's 32 tag bytes against the
// target tag in one SIMD instruction. This Go implementation has no
// portable access to that: groups are scanned with an 8-wide unrolled
// loop instead, four times per group, which preserves the group-of-32
// probing shape without depending on assembly.
const (
	groupSize = 32
	laneWidth = 8
)

type swissMeta struct {
	tags     []uint8
	capacity int
	mask     int
	count    int
}

// newSwissMeta returns a probe table sized to comfortably hold
// minEntries at a load factor <= 0.75, rounded up to a multiple of
// groupSize (and a power of two, so the group-index modulo is cheap).
func newSwissMeta(minEntries int) *swissMeta {
	cap := groupSize
	for cap < 1 || float64(minEntries) > float64(cap)*0.75 {
		cap *= 2
	}
	return &swissMeta{tags: make([]uint8, cap), capacity: cap, mask: cap - 1}
}

func (s *swissMeta) loadFactor() float64 {
	return float64(s.count) / float64(s.capacity)
}

func (s *swissMeta) full() bool {
	return s.loadFactor() > 0.75
}

// find scans for a slot whose tag matches xhash.Tag(h) and for which
// eq(slot) reports a true key match, or -- if no match exists -- the
// first empty slot the key should be inserted into. ok reports whether an
// existing match was found (slot is always valid and usable as an insert
// target when ok is false, as long as the table is not completely full).
func (s *swissMeta) find(h uint64, eq func(slot int) bool) (slot int, ok bool) {
	h2 := xhash.Tag(h)
	numGroups := s.capacity / groupSize
	startGroup := int(h>>7) % numGroups

	for g := 0; g < numGroups; g++ {
		base := ((startGroup + g) % numGroups) * groupSize
		emptySlot := -1
		for lane := 0; lane < groupSize; lane += laneWidth {
			for j := 0; j < laneWidth; j++ {
				idx := base + lane + j
				tag := s.tags[idx]
				if tag == 0 {
					if emptySlot == -1 {
						emptySlot = idx
					}
					continue
				}
				if tag == h2 && eq(idx) {
					return idx, true
				}
			}
		}
		if emptySlot != -1 {
			return emptySlot, false
		}
	}
	return -1, false
}

// occupy marks slot as holding a value tagged for hash h.
func (s *swissMeta) occupy(slot int, h uint64) {
	s.tags[slot] = xhash.Tag(h)
	s.count++
}

// occupied reports every non-empty slot index in ascending order, used
// when rehashing into a larger table.
func (s *swissMeta) occupied() []int {
	out := make([]int, 0, s.count)
	for i, t := range s.tags {
		if t != 0 {
			out = append(out, i)
		}
	}
	return out
}
