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
	"fmt"
	"testing"
)

func TestCategoryPrepassSequential(t *testing.T) {
	c := buildString(t, true, []string{"a", "b", "a", "c", "b"}, []int{4})
	codes, cardinality, ok := CategoryPrepass(c, 100, 1000) // below parallelThreshold: sequential path
	if !ok {
		t.Fatalf("expected cardinality cap not exceeded")
	}
	if cardinality != 3 {
		t.Fatalf("expected 3 distinct non-null strings, got %d", cardinality)
	}
	if codes[4] != 0 {
		t.Fatalf("expected null row to have code 0, got %d", codes[4])
	}
	if codes[0] != codes[2] {
		t.Fatalf("expected repeated string 'a' to share a code, got %d and %d", codes[0], codes[2])
	}
	if codes[1] == codes[0] {
		t.Fatalf("distinct strings must not share a code")
	}
}

func TestCategoryPrepassAbortsOverCap(t *testing.T) {
	vals := make([]string, 50)
	for i := range vals {
		vals[i] = fmt.Sprintf("v%d", i)
	}
	c := buildString(t, false, vals, nil)
	_, _, ok := CategoryPrepass(c, 10, 1000)
	if ok {
		t.Fatalf("expected cardinality cap of 10 to abort for 50 distinct strings")
	}
}

func TestCategoryPrepassParallelMatchesSequential(t *testing.T) {
	n := 2000
	vals := make([]string, n)
	for i := range vals {
		vals[i] = fmt.Sprintf("k%d", i%37)
	}
	seqCol := buildString(t, false, vals, nil)
	parCol := buildString(t, false, vals, nil)

	seqCodes, seqCard, ok := CategoryPrepass(seqCol, 1000, n+1) // force sequential
	if !ok {
		t.Fatalf("sequential prepass should not abort")
	}
	parCodes, parCard, ok := CategoryPrepass(parCol, 1000, 1) // force parallel
	if !ok {
		t.Fatalf("parallel prepass should not abort")
	}
	if seqCard != parCard {
		t.Fatalf("cardinality mismatch: sequential=%d parallel=%d", seqCard, parCard)
	}
	// Global dictionary order can legitimately differ between the
	// sequential and worker-merge paths; what must
	// hold is that rows sharing a string share a code and rows with
	// distinct strings hold distinct codes.
	for i := 1; i < n; i++ {
		sameString := vals[i] == vals[i-1]
		if sameString != (seqCodes[i] == seqCodes[i-1]) {
			t.Fatalf("sequential codes disagree with string equality at row %d", i)
		}
		if sameString != (parCodes[i] == parCodes[i-1]) {
			t.Fatalf("parallel codes disagree with string equality at row %d", i)
		}
	}
}

func TestCategoryTable(t *testing.T) {
	c := buildString(t, true, []string{"a", "b", "a", "c"}, []int{3})
	codes, cardinality, ok := CategoryPrepass(c, 100, 1000)
	if !ok {
		t.Fatalf("prepass should succeed")
	}
	gr := CategoryTable(codes, cardinality)
	if gr.GroupCount != cardinality {
		t.Fatalf("group count %d != cardinality %d", gr.GroupCount, cardinality)
	}
	if len(gr.NullGroupIndices) != 1 || gr.NullGroupIndices[0] != 3 {
		t.Fatalf("expected null group {3}, got %v", gr.NullGroupIndices)
	}
	if gr.TotalRows() != c.Len() {
		t.Fatalf("TotalRows mismatch: %d != %d", gr.TotalRows(), c.Len())
	}
}
