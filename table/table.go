/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Authors:
 *	- Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// Package table provides the schema'd, typed tables that hold counts and
// scores for barcodes and variants, along with their tab-separated on-disk
// form and a Store that can evict tables to disk and reload them by key.
package table

import (
	"math"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrDuplicateIndex = Error("index values are not unique")
	ErrLength         = Error("column length does not match table length")
	ErrNoColumn       = Error("column not found")
	ErrKind           = Error("column has the wrong kind")
)

// Kind is the type of the cells in a Column.
type Kind int

const (
	// Int columns hold whole numbers (stored as float64 so that missing
	// values can be NaN).
	Int Kind = iota

	// Float columns hold real numbers; NaN means missing.
	Float

	// String columns hold text.
	String
)

// Column is a named, typed column of a Table.
type Column struct {
	Name string
	Kind Kind
	nums []float64
	strs []string
}

func (c *Column) clone() *Column {
	nc := &Column{Name: c.Name, Kind: c.Kind}

	if c.nums != nil {
		nc.nums = append([]float64(nil), c.nums...)
	}

	if c.strs != nil {
		nc.strs = append([]string(nil), c.strs...)
	}

	return nc
}

func (c *Column) keep(rows []int) {
	if c.Kind == String {
		kept := make([]string, len(rows))
		for i, r := range rows {
			kept[i] = c.strs[r]
		}

		c.strs = kept

		return
	}

	kept := make([]float64, len(rows))
	for i, r := range rows {
		kept[i] = c.nums[r]
	}

	c.nums = kept
}

// Table is a named table indexed by unique entity identifiers (barcode or
// variant strings), with an ordered set of typed columns.
type Table struct {
	name   string
	index  []string
	rows   map[string]int
	cols   []*Column
	byName map[string]int
}

// New returns an empty Table with the given name and index. The index values
// must be unique.
func New(name string, index []string) (*Table, error) {
	t := &Table{
		name:   name,
		index:  append([]string(nil), index...),
		byName: make(map[string]int),
	}

	if err := t.reindex(); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Table) reindex() error {
	t.rows = make(map[string]int, len(t.index))

	for i, id := range t.index {
		if _, exists := t.rows[id]; exists {
			return ErrDuplicateIndex
		}

		t.rows[id] = i
	}

	return nil
}

// Name returns the name of the table, eg. "variants".
func (t *Table) Name() string { return t.name }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.index) }

// Index returns the row identifiers in row order. Do not alter the returned
// slice.
func (t *Table) Index() []string { return t.index }

// Row returns the row number of the given identifier.
func (t *Table) Row(id string) (int, bool) {
	i, ok := t.rows[id]

	return i, ok
}

// Columns returns the names of the columns in order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))

	for i, c := range t.cols {
		names[i] = c.Name
	}

	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}

	return t.cols[i], true
}

// HasColumn tells you if the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.byName[name]

	return ok
}

// Floats returns the values of the named numeric column, or nil if there is no
// such numeric column. Do not alter the returned slice; use SetFloats.
func (t *Table) Floats(name string) []float64 {
	c, ok := t.Column(name)
	if !ok || c.Kind == String {
		return nil
	}

	return c.nums
}

// Strings returns the values of the named String column, or nil.
func (t *Table) Strings(name string) []string {
	c, ok := t.Column(name)
	if !ok || c.Kind != String {
		return nil
	}

	return c.strs
}

// Value returns the numeric value at the given row and column, or NaN if
// either doesn't exist.
func (t *Table) Value(id, column string) float64 {
	r, ok := t.rows[id]
	if !ok {
		return math.NaN()
	}

	vals := t.Floats(column)
	if vals == nil {
		return math.NaN()
	}

	return vals[r]
}

// SetFloats adds or replaces a numeric column. A replaced column keeps its
// position.
func (t *Table) SetFloats(name string, kind Kind, values []float64) error {
	if kind == String {
		return ErrKind
	}

	if len(values) != t.Len() {
		return ErrLength
	}

	t.set(&Column{Name: name, Kind: kind, nums: values})

	return nil
}

// SetStrings adds or replaces a String column.
func (t *Table) SetStrings(name string, values []string) error {
	if len(values) != t.Len() {
		return ErrLength
	}

	t.set(&Column{Name: name, Kind: String, strs: values})

	return nil
}

func (t *Table) set(c *Column) {
	if i, ok := t.byName[c.Name]; ok {
		t.cols[i] = c

		return
	}

	t.byName[c.Name] = len(t.cols)
	t.cols = append(t.cols, c)
}

// RemoveColumn deletes the named column if it exists.
func (t *Table) RemoveColumn(name string) {
	i, ok := t.byName[name]
	if !ok {
		return
	}

	t.cols = append(t.cols[:i], t.cols[i+1:]...)
	t.byName = make(map[string]int, len(t.cols))

	for j, c := range t.cols {
		t.byName[c.Name] = j
	}
}

// Filter removes the rows for which keep returns false, and returns the number
// of rows removed. keep is given the row number in the unfiltered table.
func (t *Table) Filter(keep func(row int) bool) int {
	kept := make([]int, 0, t.Len())

	for i := range t.index {
		if keep(i) {
			kept = append(kept, i)
		}
	}

	removed := t.Len() - len(kept)
	if removed == 0 {
		return 0
	}

	t.permute(kept)

	return removed
}

// permute reorders (and possibly subsets) the rows so that new row i is old
// row order[i].
func (t *Table) permute(order []int) {
	index := make([]string, len(order))
	for i, r := range order {
		index[i] = t.index[r]
	}

	t.index = index

	for _, c := range t.cols {
		c.keep(order)
	}

	t.reindex() //nolint:errcheck
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	nt := &Table{
		name:   t.name,
		index:  append([]string(nil), t.index...),
		byName: make(map[string]int, len(t.cols)),
	}

	nt.reindex() //nolint:errcheck

	for _, c := range t.cols {
		nt.set(c.clone())
	}

	return nt
}

// Rename returns the table after changing its name.
func (t *Table) Rename(name string) *Table {
	t.name = name

	return t
}

// Equal tells you if the other table has the same index, the same column
// names in the same order, and the same values (with NaN equal to NaN). Table
// names and column kinds are not compared.
func (t *Table) Equal(o *Table) bool {
	if t.Len() != o.Len() || len(t.cols) != len(o.cols) {
		return false
	}

	for i, id := range t.index {
		if o.index[i] != id {
			return false
		}
	}

	for i, c := range t.cols {
		if !c.equal(o.cols[i]) {
			return false
		}
	}

	return true
}

func (c *Column) equal(o *Column) bool {
	if c.Name != o.Name || (c.Kind == String) != (o.Kind == String) {
		return false
	}

	if c.Kind == String {
		for i, s := range c.strs {
			if o.strs[i] != s {
				return false
			}
		}

		return true
	}

	for i, v := range c.nums {
		w := o.nums[i]
		if v != w && !(math.IsNaN(v) && math.IsNaN(w)) {
			return false
		}
	}

	return true
}
