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

package sorting

import "testing"

func TestCompareBothNonNull(t *testing.T) {
	asc := Ordering{Direction: Ascending, Nulls: NullsLast}
	if got := Compare(false, false, func() int { return -1 }, asc); got != -1 {
		t.Fatalf("ascending compare = %d, want -1", got)
	}
	desc := Ordering{Direction: Descending, Nulls: NullsLast}
	if got := Compare(false, false, func() int { return -1 }, desc); got != 1 {
		t.Fatalf("descending compare = %d, want 1 (direction flips cmp)", got)
	}
}

// TestCompareNullsSortLast checks that nulls sort last regardless of
// direction, for both Ascending and Descending orderings.
func TestCompareNullsSortLast(t *testing.T) {
	neverCalled := func() int {
		t.Fatalf("cmp should not be invoked when either side is null")
		return 0
	}
	for _, dir := range []Direction{Ascending, Descending} {
		o := Ordering{Direction: dir, Nulls: NullsLast}
		if got := Compare(true, false, neverCalled, o); got != 1 {
			t.Fatalf("dir=%v: null-vs-value compare = %d, want 1 (null sorts after)", dir, got)
		}
		if got := Compare(false, true, neverCalled, o); got != -1 {
			t.Fatalf("dir=%v: value-vs-null compare = %d, want -1 (value sorts before)", dir, got)
		}
		if got := Compare(true, true, neverCalled, o); got != 0 {
			t.Fatalf("dir=%v: null-vs-null compare = %d, want 0", dir, got)
		}
	}
}
