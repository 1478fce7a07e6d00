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

package table

import (
	"math"
	"sort"
	"strconv"
)

// Entity kinds, used as the keys of count tables.
const (
	KindBarcodes             = "barcodes"
	KindVariants             = "variants"
	KindBarcodesUnmapped     = "barcodes_unmapped"
	KindBarcodesLowAbundance = "barcodes_low_abundance"
)

// Column names.
const (
	ColCount          = "count"
	ColScore          = "score"
	ColRSquared       = "r_sq"
	ColSlope          = "slope"
	ColIntercept      = "intercept"
	ColBarcodeCount   = "barcode.count"
	ColScoredBarcodes = "scored.unique.barcodes"
	ColBarcodeCV      = "barcode.cv"
	ColVariant        = "variant"
	countPrefix       = "count."
	frequencyPrefix   = "frequency."
	ratioPrefix       = "ratio."
)

// CountCol returns the name of the count column for the given timepoint.
func CountCol(tp int) string { return countPrefix + strconv.Itoa(tp) }

// FrequencyCol returns the name of the frequency column for the given
// timepoint.
func FrequencyCol(tp int) string { return frequencyPrefix + strconv.Itoa(tp) }

// RatioCol returns the name of the ratio column for the given timepoint.
func RatioCol(tp int) string { return ratioPrefix + strconv.Itoa(tp) }

// Counter tallies entities in the order they are first encountered.
type Counter struct {
	counts map[string]int64
	order  []string
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int64)}
}

// Add adds n to the count for id.
func (c *Counter) Add(id string, n int64) {
	if _, seen := c.counts[id]; !seen {
		c.order = append(c.order, id)
	}

	c.counts[id] += n
}

// Len returns the number of distinct entities counted.
func (c *Counter) Len() int { return len(c.order) }

// Total returns the sum of all counts.
func (c *Counter) Total() int64 {
	var total int64

	for _, n := range c.counts {
		total += n
	}

	return total
}

// Table returns a count table with the given name and a single "count" column,
// sorted by descending count. Ties keep encounter order.
func (c *Counter) Table(name string) *Table {
	ids := append([]string(nil), c.order...)

	sort.SliceStable(ids, func(i, j int) bool {
		return c.counts[ids[i]] > c.counts[ids[j]]
	})

	counts := make([]float64, len(ids))
	for i, id := range ids {
		counts[i] = float64(c.counts[id])
	}

	t, _ := New(name, ids)             //nolint:errcheck
	t.SetFloats(ColCount, Int, counts) //nolint:errcheck

	return t
}

// Sum returns a new count table that is the outer join of the given count
// tables with their counts added together; an entity missing from a table
// counts as 0 for that table. Row order is first-seen order across the tables.
func Sum(name string, tables ...*Table) (*Table, error) {
	c := NewCounter()

	for _, t := range tables {
		counts := t.Floats(ColCount)
		if counts == nil {
			return nil, ErrNoColumn
		}

		for i, id := range t.Index() {
			c.Add(id, int64(counts[i]))
		}
	}

	index := append([]string(nil), c.order...)
	counts := make([]float64, len(index))

	for i, id := range index {
		counts[i] = float64(c.counts[id])
	}

	t, err := New(name, index)
	if err != nil {
		return nil, err
	}

	return t, t.SetFloats(ColCount, Int, counts)
}

// SortDescending stably sorts the rows by the given numeric column, largest
// first, with NaN values always placed last.
func (t *Table) SortDescending(column string) error {
	vals := t.Floats(column)
	if vals == nil {
		return ErrNoColumn
	}

	order := make([]int, t.Len())
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := vals[order[i]], vals[order[j]]

		switch {
		case math.IsNaN(a):
			return false
		case math.IsNaN(b):
			return true
		default:
			return a > b
		}
	})

	t.permute(order)

	return nil
}
