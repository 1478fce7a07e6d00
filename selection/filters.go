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

package selection

import (
	"fmt"
	"math"

	"github.com/wtsi-hgi/enrich/filter"
	"github.com/wtsi-hgi/enrich/mutation"
	"github.com/wtsi-hgi/enrich/table"
	"github.com/wtsi-hgi/enrich/types"
)

// rowFilter decides, for a single variant filter, which rows of the variants
// table to keep.
type rowFilter struct {
	key  filter.Key
	keep func(t *table.Table) func(row int) bool
}

func (s *Selection) rowFilters() []rowFilter {
	f := s.filters

	return []rowFilter{
		{filter.MaxBarcodeVariation, func(t *table.Table) func(int) bool {
			cvs := t.Floats(table.ColBarcodeCV)

			return func(i int) bool { return math.IsNaN(cvs[i]) || cvs[i] <= f.MaxBarcodeVariation }
		}},
		{filter.MinCount, func(t *table.Table) func(int) bool {
			cols := s.countColumns(t)

			return func(i int) bool {
				least := minCount(cols, i)

				return math.IsNaN(least) || least >= f.MinCount
			}
		}},
		{filter.MinInputCount, func(t *table.Table) func(int) bool {
			input := t.Floats(table.CountCol(types.ReferenceTimepoint))

			return func(i int) bool { return input[i] >= f.MinInputCount }
		}},
		{filter.MinRSquared, func(t *table.Table) func(int) bool {
			rsq := t.Floats(table.ColRSquared)

			return func(i int) bool { return math.IsNaN(rsq[i]) || rsq[i] >= f.MinRSquared }
		}},
	}
}

func (s *Selection) countColumns(t *table.Table) [][]float64 {
	cols := make([][]float64, len(s.timepoints))

	for j, tp := range s.timepoints {
		cols[j] = t.Floats(table.CountCol(tp))
	}

	return cols
}

// minCount returns the smallest count in the row, or NaN if the row is
// missing a count at any timepoint.
func minCount(cols [][]float64, row int) float64 {
	least := math.Inf(1)

	for _, col := range cols {
		c := col[row]
		if math.IsNaN(c) {
			return c
		}

		least = math.Min(least, c)
	}

	return least
}

// filterVariants snapshots every table to the pre-filter subdirectory, then
// applies the active variant filters in order, recording how many rows each
// removed. Scores are then recalculated for the surviving variants.
func (s *Selection) filterVariants() error {
	if err := s.snapshot(PreFilterDir); err != nil {
		return err
	}

	t := s.mustTable(table.KindVariants)

	for _, rf := range s.rowFilters() {
		if !s.filters.Enabled(rf.key) {
			continue
		}

		removed := t.Filter(rf.keep(t))
		s.stats.Fail(int64(removed), rf.key)

		s.log.Info("applied variant filter", "filter", string(rf.key), "removed", removed)
	}

	if t.Len() == 0 {
		return types.NewDataError(s.name, fmt.Errorf("%w: all %s were filtered out",
			types.ErrEmptyTable, table.KindVariants))
	}

	s.score(t)

	return t.SortDescending(table.ColScore)
}

// normalizeToWT snapshots every table to the pre-wtnorm subdirectory, then
// subtracts the wild type's score from every variant score.
func (s *Selection) normalizeToWT() error {
	t := s.mustTable(table.KindVariants)

	wt := t.Value(mutation.WildType, table.ColScore)
	if math.IsNaN(wt) {
		s.log.Warn("wild type score not available; skipping wild type normalization")

		return nil
	}

	if err := s.snapshot(PreWTNormDir); err != nil {
		return err
	}

	scores := t.Floats(table.ColScore)
	normalized := make([]float64, len(scores))

	for i, score := range scores {
		normalized[i] = score - wt
	}

	s.log.Info("normalized scores to wild type", "wt_score", wt)

	return t.SetFloats(table.ColScore, table.Float, normalized)
}
