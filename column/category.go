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

package column

import "github.com/dwalterskoetter/leichtframe-sub001/colerr"

// categoryDict is the shared, ordered dictionary backing one or more
// CategoryColumn clones. Slot 0 is always reserved for null;
// slots 1.. hold the distinct non-null strings seen so far. Clones
// produced by CloneSubset share the *categoryDict read-only; Append on a
// clone that needs a new string forks a private copy first
// (copy-on-write).
type categoryDict struct {
	strings []string         // strings[0] is an unused placeholder for slot 0
	index   map[string]int32 // string -> code, excludes the null slot
}

func newCategoryDict() *categoryDict {
	return &categoryDict{
		strings: []string{""},
		index:   make(map[string]int32),
	}
}

func (d *categoryDict) codeFor(s string) int32 {
	if c, ok := d.index[s]; ok {
		return c
	}
	return 0
}

// intern returns the code for s, appending a new dictionary slot if novel.
func (d *categoryDict) intern(s string) int32 {
	if c, ok := d.index[s]; ok {
		return c
	}
	code := int32(len(d.strings))
	d.strings = append(d.strings, s)
	d.index[s] = code
	return code
}

func (d *categoryDict) clone() *categoryDict {
	nd := &categoryDict{
		strings: append([]string(nil), d.strings...),
		index:   make(map[string]int32, len(d.index)),
	}
	for k, v := range d.index {
		nd.index[k] = v
	}
	return nd
}

// Len returns the dictionary size including the reserved null slot.
func (d *categoryDict) Len() int { return len(d.strings) }

// CategoryColumn is a logical string column stored as Int32 codes into a
// shared dictionary. Nullability is derived: code==0 means null,
// so there is no separate null mask to keep in sync.
type CategoryColumn struct {
	codes    []int32
	dict     *categoryDict
	shared   bool // true once this column's dict may be referenced elsewhere
	nullable bool
}

// NewCategoryColumn returns an empty category column with a fresh dictionary.
func NewCategoryColumn(nullable bool) *CategoryColumn {
	return &CategoryColumn{dict: newCategoryDict(), nullable: nullable}
}

func (c *CategoryColumn) Kind() Kind     { return CategoryKind }
func (c *CategoryColumn) Len() int       { return len(c.codes) }
func (c *CategoryColumn) Nullable() bool { return c.nullable }

func (c *CategoryColumn) IsNull(i int) bool {
	return c.codes[i] == 0
}

// forkIfShared gives this column a private dictionary before a mutating
// append, if its current dictionary might be referenced by another clone.
func (c *CategoryColumn) forkIfShared() {
	if c.shared {
		c.dict = c.dict.clone()
		c.shared = false
	}
}

// Append adds a non-null string, interning it into the dictionary (forking
// a private copy first if this column's dictionary is currently shared).
func (c *CategoryColumn) Append(s string) {
	c.forkIfShared()
	c.codes = append(c.codes, c.dict.intern(s))
}

// AppendNull adds a null row (code 0); fails semantics are not possible
// here since code 0 always exists, but a non-nullable category column
// still must not accept it, matching the other column kinds' contract.
func (c *CategoryColumn) AppendNull() error {
	if !c.nullable {
		return &colerr.NullabilityViolated{}
	}
	c.codes = append(c.codes, 0)
	return nil
}

// Code returns the raw dictionary code at row i.
func (c *CategoryColumn) Code(i int) int32 { return c.codes[i] }

// Codes exposes the raw code buffer, used by the group-by category
// pre-pass once strings have already been interned elsewhere.
func (c *CategoryColumn) Codes() []int32 { return c.codes }

// Get returns the string at row i, or ("", true) if null.
func (c *CategoryColumn) Get(i int) (string, bool) {
	code := c.codes[i]
	if code == 0 {
		return "", true
	}
	return c.dict.strings[code], false
}

// DictString returns the dictionary string for a raw code (0 => null).
func (c *CategoryColumn) DictString(code int32) (string, bool) {
	if code == 0 {
		return "", true
	}
	return c.dict.strings[code], false
}

// Cardinality returns the number of distinct non-null strings interned.
func (c *CategoryColumn) Cardinality() int {
	return c.dict.Len() - 1
}

// CloneSubset materializes a new category column sharing this column's
// dictionary read-only; both the source and the clone are marked shared so
// either one forks on its next novel Append.
func (c *CategoryColumn) CloneSubset(indices []int) *CategoryColumn {
	c.shared = true
	out := &CategoryColumn{
		dict:     c.dict,
		shared:   true,
		nullable: c.nullable,
		codes:    make([]int32, len(indices)),
	}
	for i, src := range indices {
		out.codes[i] = c.codes[src]
	}
	return out
}

func (c *CategoryColumn) CloneSubsetAny(indices []int) Column {
	return c.CloneSubset(indices)
}
